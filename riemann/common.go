// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package riemann provides concrete hydro.RiemannSolver implementations:
// an exact iterative solver and the HLLC approximate solver, selected by
// name through New.
package riemann

import (
	"fmt"
	"math"

	hydro "github.com/relhydro/hydrocore"
)

// New looks up a RiemannSolver by its configured name, dispatching
// through a small string-keyed option table.
func New(name string) (hydro.RiemannSolver, error) {
	switch name {
	case "Exact":
		return Exact{Gamma: defaultGamma}, nil
	case "HLLC":
		return HLLC{Gamma: defaultGamma}, nil
	default:
		return nil, fmt.Errorf("riemann: unknown solver %q; valid options are \"Exact\", \"HLLC\"", name)
	}
}

// NewWithGamma is like New but binds the solver to a specific polytropic
// index instead of the package default, for callers that already know γ
// from their Config before the solver is constructed. The exact solver's
// rarefaction relations divide by γ-1, so an isothermal (γ=1)
// configuration must use HLLC.
func NewWithGamma(name string, gamma float64) (hydro.RiemannSolver, error) {
	switch name {
	case "Exact":
		if gamma == 1 {
			return nil, fmt.Errorf("riemann: the Exact solver does not support gamma=1; use HLLC for isothermal runs")
		}
		return Exact{Gamma: gamma}, nil
	case "HLLC":
		return HLLC{Gamma: gamma}, nil
	default:
		return nil, fmt.Errorf("riemann: unknown solver %q; valid options are \"Exact\", \"HLLC\"", name)
	}
}

const defaultGamma = 5.0 / 3.0

// faceFrame decomposes a lab-frame velocity into its component along the
// outward face normal and its tangential remainder, both already
// expressed relative to the interface frame velocity vf.
func faceFrame(v, vf, normal hydro.Vec3) (normalVelocity float64, tangential hydro.Vec3) {
	rel := v.Sub(vf)
	un := rel.Dot(normal)
	ut := rel.Sub(normal.Scale(un))
	return un, ut
}

// composeVelocity reassembles a lab-frame velocity from a normal-frame
// normal-component speed and tangential vector, undoing faceFrame.
func composeVelocity(un float64, ut, vf, normal hydro.Vec3) hydro.Vec3 {
	return ut.Add(normal.Scale(un)).Add(vf)
}

// soundSpeed returns √(γp/ρ), floored to avoid a NaN for a vacuum state.
func soundSpeed(gamma, rho, p float64) float64 {
	if rho <= 0 || p <= 0 {
		return 0
	}
	a2 := gamma * p / rho
	if a2 < 0 {
		return 0
	}
	return math.Sqrt(a2)
}

// internalEnergyDensity returns p/(γ-1), the thermal part of the total
// energy density. Under an isothermal configuration (γ=1) the caller's
// energy flux is discarded by hydro.ComputeFaceFlux, so this returns 0
// rather than the +Inf that a bare division would produce.
func internalEnergyDensity(gamma, p float64) float64 {
	if gamma <= 1 {
		return 0
	}
	return p / (gamma - 1)
}
