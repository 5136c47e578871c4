// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import (
	"math"
	"testing"
)

// constantFluxSolver is a stub RiemannSolver returning a fixed flux
// regardless of its inputs, used to exercise the clamp/limiter logic in
// ComputeFaceFlux in isolation from any real Riemann physics.
type constantFluxSolver struct {
	mass   float64
	mom    Vec3
	energy float64
}

func (s constantFluxSolver) Name() string { return "constant" }

func (s constantFluxSolver) SolveForFlux(left, right Primitives, normal, frameVelocity Vec3) (float64, Vec3, float64, error) {
	return s.mass, s.mom, s.energy, nil
}

func baseFaceInputs() FaceInputs {
	return FaceInputs{
		Left:           Primitives{Rho: 1, P: 1},
		Right:          Primitives{Rho: 1, P: 1},
		LeftConserved:  Conserved{Mass: 1, Momentum: Vec3{0, 0, 0}, Energy: 1},
		RightConserved: &Conserved{Mass: 1, Momentum: Vec3{0, 0, 0}, Energy: 1},
		Normal:         Vec3{1, 0, 0},
		Area:           1,
		Dt:             1,
	}
}

// TestFluxLimiterCapsMassDrain checks that the flux limiter never lets a
// single face drain more than FluxLimiter times the donor cell's mass.
func TestFluxLimiterCapsMassDrain(t *testing.T) {
	cfg := DefaultConfig()
	solver := constantFluxSolver{mass: 100} // wildly larger than FluxLimiter*mass

	in := baseFaceInputs()
	in.LeftConserved.Mass = 1

	delta, err := ComputeFaceFlux(cfg, solver, in)
	if err != nil {
		t.Fatalf("ComputeFaceFlux: %v", err)
	}
	limit := FluxLimiter * in.LeftConserved.Mass
	if delta.Mass > limit+1e-9 {
		t.Errorf("limited mass flux = %g, want <= %g", delta.Mass, limit)
	}
}

// TestFluxLimiterIsNoOpBelowThreshold checks that a flux well within the
// limiter's allowance passes through unscaled.
func TestFluxLimiterIsNoOpBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	solver := constantFluxSolver{mass: 0.1, mom: Vec3{0.05, 0, 0}, energy: 0.1}

	in := baseFaceInputs()
	delta, err := ComputeFaceFlux(cfg, solver, in)
	if err != nil {
		t.Fatalf("ComputeFaceFlux: %v", err)
	}
	wantMass := solver.mass * in.Area * in.Dt
	if math.Abs(delta.Mass-wantMass) > 1e-9 {
		t.Errorf("unlimited mass flux = %g, want %g", delta.Mass, wantMass)
	}
}

func TestClampNonNegativeSafeHydro(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SafeHydro = true
	got, err := clampNonNegative(cfg, "rho", -1)
	if err != nil {
		t.Fatalf("clampNonNegative: %v", err)
	}
	if got != 0 {
		t.Errorf("clampNonNegative(-1) = %g, want 0 under SafeHydro", got)
	}
}

func TestClampNonNegativeRejectsWithoutSafeHydro(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SafeHydro = false
	if _, err := clampNonNegative(cfg, "rho", -1); err == nil {
		t.Fatal("clampNonNegative(-1): expected a ContractViolation without SafeHydro")
	}
}

func TestComputeFaceFluxRejectsNaNFromSolver(t *testing.T) {
	cfg := DefaultConfig()
	solver := constantFluxSolver{mass: math.NaN()}
	if _, err := ComputeFaceFlux(cfg, solver, baseFaceInputs()); err == nil {
		t.Fatal("ComputeFaceFlux: expected a ContractViolation for a NaN solver flux")
	}
}
