// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cartesian

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DensityField returns a snapshot of every cell's density, in whatever
// unit system the grid's Primitives are currently stored in (SI before
// Integrator.Initialise, internal after). Index order matches CellAt's
// flat (i,j,k) layout.
func (g *Grid) DensityField() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rho := make([]float64, len(g.primitives))
	for i, p := range g.primitives {
		rho[i] = p.Rho
	}
	return rho
}

// TotalVolume returns the sum of every cell's volume.
func (g *Grid) TotalVolume() float64 {
	vols := make([]float64, g.NumCells())
	for i := range vols {
		vols[i] = g.dx * g.dy * g.dz
	}
	return floats.Sum(vols)
}

// DensityResidualL2 returns the L2 norm of the difference between this
// grid's current density field and a previously captured one (e.g. from
// DensityField before a step), divided by the L2 norm of the current
// field: a relative residual with no volume weighting. If previous does
// not have one entry per cell, it returns the standard deviation of the
// current density field instead.
func (g *Grid) DensityResidualL2(previous []float64) float64 {
	current := g.DensityField()
	if len(previous) != len(current) {
		return stat.StdDev(current, nil)
	}
	diff := make([]float64, len(current))
	for i := range diff {
		diff[i] = current[i] - previous[i]
	}
	return floats.Norm(diff, 2) / floats.Norm(current, 2)
}
