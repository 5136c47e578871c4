// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import "math"

// Vec3 is a three-component Cartesian vector, used throughout the core
// for velocities, gradients, normals and offsets.
type Vec3 [3]float64

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Component returns the i'th axis component of v.
func (v Vec3) Component(i int) float64 { return v[i] }

// WithComponent returns a copy of v with its i'th axis component
// replaced by x.
func (v Vec3) WithComponent(i int, x float64) Vec3 {
	o := v
	o[i] = x
	return o
}

// Primitives is the intuitive fluid state of a cell: density, velocity
// and pressure.
type Primitives struct {
	Rho float64
	V   Vec3
	P   float64
}

// Gradients holds the five three-vector primitive gradients of a cell:
// ∇ρ, ∇vx, ∇vy, ∇vz, ∇p.
type Gradients struct {
	Rho Vec3
	Vx  Vec3
	Vy  Vec3
	Vz  Vec3
	P   Vec3
}

// Divergence returns the velocity divergence ∂vx/∂x + ∂vy/∂y + ∂vz/∂z
// implied by these gradients, used by the Hancock predictor.
func (g Gradients) Divergence() float64 {
	return g.Vx[0] + g.Vy[1] + g.Vz[2]
}

// Conserved is the conservative hydrodynamic state of a cell: mass,
// momentum and total energy.
type Conserved struct {
	Mass     float64
	Momentum Vec3
	Energy   float64
}

// Add returns c + d componentwise.
func (c Conserved) Add(d Conserved) Conserved {
	return Conserved{
		Mass:     c.Mass + d.Mass,
		Momentum: c.Momentum.Add(d.Momentum),
		Energy:   c.Energy + d.Energy,
	}
}

// Sub returns c - d componentwise.
func (c Conserved) Sub(d Conserved) Conserved {
	return Conserved{
		Mass:     c.Mass - d.Mass,
		Momentum: c.Momentum.Sub(d.Momentum),
		Energy:   c.Energy - d.Energy,
	}
}

// Scale returns c scaled by s.
func (c Conserved) Scale(s float64) Conserved {
	return Conserved{
		Mass:     c.Mass * s,
		Momentum: c.Momentum.Scale(s),
		Energy:   c.Energy * s,
	}
}

// Ionisation holds the per-cell ionisation state read from (and, for T
// and N, written back to) the ionisation/radiative-transfer subsystem:
// the hydrogen neutral fraction, temperature and number density.
type Ionisation struct {
	XH float64
	T  float64
	N  float64
}

// Mu returns the mean molecular mass fraction ½(1+x_H).
func (ion Ionisation) Mu() float64 {
	return 0.5 * (1 + ion.XH)
}
