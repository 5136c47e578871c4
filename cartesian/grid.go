// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package cartesian implements a structured, uniform 3-D Cartesian mesh
// as a hydro.Grid: a flat slice of cell storage indexed by (i,j,k), with
// per-axis periodic wraparound and precomputed neighbor geometry.
package cartesian

import (
	"fmt"
	"sync"
	"sync/atomic"

	hydro "github.com/relhydro/hydrocore"
)

// Grid is a structured nx×ny×nz mesh of cubic or rectangular cells of
// uniform size, with a fixed domain origin and per-axis periodicity. It
// implements hydro.Grid. The grid itself never moves: InterfaceVelocity
// always reports zero and Evolve is a no-op, which is sufficient for
// demos and the core's own tests; a moving-mesh Grid is out of scope
// here.
type Grid struct {
	nx, ny, nz int
	dx, dy, dz float64
	origin     hydro.Vec3
	periodic   [3]bool

	mu sync.RWMutex

	primitives   []hydro.Primitives
	gradients    []hydro.Gradients
	conserved    []hydro.Conserved
	fluxDelta    []hydro.Conserved
	ionisation   []hydro.Ionisation
	acceleration []hydro.Vec3
	sourceRate   []float64
	sourceEnergy []float64

	// accessed marks cells whose primitives have been read since the
	// last ResetAccessFlags, stored as relaxed atomics because the
	// integrator's parallel flux pass reads a cell's primitives from both
	// the cell's own worker and its neighbors' workers concurrently.
	accessed []uint32
}

// New builds an empty Grid of size nx×ny×nz cells spanning [origin,
// origin+sides) with the given per-axis periodicity. Cell state is
// zero-valued; callers populate it with SetPrimitives/SetIonisation (and
// SetAcceleration/AddSourceTerm for external source terms) before
// calling Integrator.Initialise.
func New(nx, ny, nz int, origin, sides hydro.Vec3, periodic [3]bool) (*Grid, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("cartesian: grid dimensions must be positive, got (%d,%d,%d)", nx, ny, nz)
	}
	if sides[0] <= 0 || sides[1] <= 0 || sides[2] <= 0 {
		return nil, fmt.Errorf("cartesian: domain side lengths must be positive, got %v", sides)
	}
	n := nx * ny * nz
	g := &Grid{
		nx: nx, ny: ny, nz: nz,
		dx:       sides[0] / float64(nx),
		dy:       sides[1] / float64(ny),
		dz:       sides[2] / float64(nz),
		origin:   origin,
		periodic: periodic,

		primitives:   make([]hydro.Primitives, n),
		gradients:    make([]hydro.Gradients, n),
		conserved:    make([]hydro.Conserved, n),
		fluxDelta:    make([]hydro.Conserved, n),
		ionisation:   make([]hydro.Ionisation, n),
		acceleration: make([]hydro.Vec3, n),
		sourceRate:   make([]float64, n),
		sourceEnergy: make([]float64, n),
		accessed:     make([]uint32, n),
	}
	return g, nil
}

// index returns the flat storage index for cell coordinates (i,j,k).
func (g *Grid) index(i, j, k int) int { return i + g.nx*(j+g.ny*k) }

// coords returns the (i,j,k) grid coordinates of a CellID.
func (g *Grid) coords(c hydro.CellID) (i, j, k int) {
	idx := int(c)
	i = idx % g.nx
	idx /= g.nx
	j = idx % g.ny
	k = idx / g.ny
	return
}

// CellAt returns the CellID of the cell at grid coordinates (i,j,k),
// useful for test fixtures and the demo CLI that build up initial
// conditions coordinate-by-coordinate.
func (g *Grid) CellAt(i, j, k int) hydro.CellID { return hydro.CellID(g.index(i, j, k)) }

func (g *Grid) NumCells() int { return g.nx * g.ny * g.nz }

func (g *Grid) Midpoint(c hydro.CellID) hydro.Vec3 {
	i, j, k := g.coords(c)
	return hydro.Vec3{
		g.origin[0] + (float64(i)+0.5)*g.dx,
		g.origin[1] + (float64(j)+0.5)*g.dy,
		g.origin[2] + (float64(k)+0.5)*g.dz,
	}
}

func (g *Grid) Volume(c hydro.CellID) float64 { return g.dx * g.dy * g.dz }

func (g *Grid) Ionisation(c hydro.CellID) hydro.Ionisation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ionisation[c]
}

func (g *Grid) SetIonisation(c hydro.CellID, temperature, numberDensity float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ion := g.ionisation[c]
	ion.T = temperature
	ion.N = numberDensity
	g.ionisation[c] = ion
}

// SetNeutralFraction sets the x_H owned by the ionisation subsystem,
// which the core never writes itself (grid.go's SetIonisation doc
// comment).
func (g *Grid) SetNeutralFraction(c hydro.CellID, xH float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ionisation[c].XH = xH
}

func (g *Grid) Primitives(c hydro.CellID) hydro.Primitives {
	g.mu.RLock()
	defer g.mu.RUnlock()
	atomic.StoreUint32(&g.accessed[c], 1)
	return g.primitives[c]
}

func (g *Grid) SetPrimitives(c hydro.CellID, p hydro.Primitives) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.primitives[c] = p
}

func (g *Grid) Gradients(c hydro.CellID) hydro.Gradients {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gradients[c]
}

func (g *Grid) SetGradients(c hydro.CellID, grad hydro.Gradients) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gradients[c] = grad
}

func (g *Grid) Conserved(c hydro.CellID) hydro.Conserved {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conserved[c]
}

func (g *Grid) SetConserved(c hydro.CellID, cs hydro.Conserved) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conserved[c] = cs
}

func (g *Grid) FluxDelta(c hydro.CellID) hydro.Conserved {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fluxDelta[c]
}

func (g *Grid) AddFluxDelta(c hydro.CellID, d hydro.Conserved) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fluxDelta[c] = g.fluxDelta[c].Add(d)
}

func (g *Grid) ZeroFluxDelta(c hydro.CellID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fluxDelta[c] = hydro.Conserved{}
}

func (g *Grid) Acceleration(c hydro.CellID) hydro.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.acceleration[c]
}

// SetAcceleration sets the gravitational acceleration an external
// collaborator computed for c; the core only ever reads
// this back through Grid.Acceleration.
func (g *Grid) SetAcceleration(c hydro.CellID, a hydro.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acceleration[c] = a
}

func (g *Grid) SourceTerms(c hydro.CellID) (energyRate, energy float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sourceRate[c], g.sourceEnergy[c]
}

// AddSourceTerm accumulates an external energy source into c: rate is a
// power applied over the step's Δt, energy is a one-shot addition.
func (g *Grid) AddSourceTerm(c hydro.CellID, rate, energy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sourceRate[c] += rate
	g.sourceEnergy[c] += energy
}

func (g *Grid) ClearSourceTerms(c hydro.CellID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sourceRate[c] = 0
	g.sourceEnergy[c] = 0
}

// Neighbors enumerates the six faces of c in -x,+x,-y,+y,-z,+z order,
// matching hydro's faceIndex = axis*2+side convention. A periodic axis
// wraps to the opposite face of the domain; a non-periodic axis reports
// hydro.NoNeighbor, leaving the boundary policy table to supply the
// right-side state.
func (g *Grid) Neighbors(c hydro.CellID) []hydro.NeighborFace {
	i, j, k := g.coords(c)
	mid := g.Midpoint(c)

	face := func(axis, delta int) hydro.NeighborFace {
		ii, jj, kk := i, j, k
		switch axis {
		case 0:
			ii += delta
		case 1:
			jj += delta
		case 2:
			kk += delta
		}

		dims := [3]int{g.nx, g.ny, g.nz}
		spacing := [3]float64{g.dx, g.dy, g.dz}
		coord := [3]int{ii, jj, kk}

		neighbor := hydro.NoNeighbor
		wrapped := coord
		if coord[axis] < 0 || coord[axis] >= dims[axis] {
			if g.periodic[axis] {
				wrapped[axis] = ((coord[axis] % dims[axis]) + dims[axis]) % dims[axis]
				neighbor = hydro.CellID(g.index(wrapped[0], wrapped[1], wrapped[2]))
			}
		} else {
			neighbor = hydro.CellID(g.index(coord[0], coord[1], coord[2]))
		}

		normal := hydro.Vec3{}
		normal[axis] = float64(delta)
		var area float64
		switch axis {
		case 0:
			area = g.dy * g.dz
		case 1:
			area = g.dx * g.dz
		case 2:
			area = g.dx * g.dy
		}

		offset := hydro.Vec3{}
		offset[axis] = float64(delta) * spacing[axis]

		faceMid := mid
		faceMid[axis] += float64(delta) * 0.5 * spacing[axis]

		return hydro.NeighborFace{
			Neighbor:     neighbor,
			FaceMidpoint: faceMid,
			Normal:       normal,
			Area:         area,
			Offset:       offset,
		}
	}

	return []hydro.NeighborFace{
		face(0, -1), face(0, +1),
		face(1, -1), face(1, +1),
		face(2, -1), face(2, +1),
	}
}

// InterfaceVelocity always returns zero: this Grid's geometry is static
// (see the Grid doc comment).
func (g *Grid) InterfaceVelocity(c hydro.CellID, n hydro.NeighborFace) hydro.Vec3 {
	return hydro.Vec3{}
}

// SetGridVelocity is a no-op for this static mesh.
func (g *Grid) SetGridVelocity(gamma, vUnitSI float64) {}

// Evolve is a no-op for this static mesh.
func (g *Grid) Evolve(dtSI float64) error { return nil }

func (g *Grid) ResetAccessFlags() {
	for i := range g.accessed {
		atomic.StoreUint32(&g.accessed[i], 0)
	}
}

func (g *Grid) CheckAccess() bool {
	for i := range g.accessed {
		if atomic.LoadUint32(&g.accessed[i]) == 0 {
			return false
		}
	}
	return true
}

func (g *Grid) Box() (origin, sides hydro.Vec3, periodic [3]bool) {
	return g.origin, hydro.Vec3{float64(g.nx) * g.dx, float64(g.ny) * g.dy, float64(g.nz) * g.dz}, g.periodic
}
