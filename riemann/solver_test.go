// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package riemann

import (
	"math"
	"testing"

	hydro "github.com/relhydro/hydrocore"
)

func solvers(t *testing.T, gamma float64) []hydro.RiemannSolver {
	t.Helper()
	exact, err := NewWithGamma("Exact", gamma)
	if err != nil {
		t.Fatalf("NewWithGamma(Exact): %v", err)
	}
	hllc, err := NewWithGamma("HLLC", gamma)
	if err != nil {
		t.Fatalf("NewWithGamma(HLLC): %v", err)
	}
	return []hydro.RiemannSolver{exact, hllc}
}

// TestIdenticalRestStatesGivePressureOnlyFlux checks the textbook
// consistency property of any Euler flux function: for two identical,
// at-rest states the mass and energy fluxes vanish and the momentum flux
// reduces to the normal pressure term, for both shipped solvers.
func TestIdenticalRestStatesGivePressureOnlyFlux(t *testing.T) {
	normal := hydro.Vec3{1, 0, 0}
	left := hydro.Primitives{Rho: 1, V: hydro.Vec3{}, P: 2}
	right := left

	for _, s := range solvers(t, 5.0/3.0) {
		mass, mom, energy, err := s.SolveForFlux(left, right, normal, hydro.Vec3{})
		if err != nil {
			t.Fatalf("%s: SolveForFlux: %v", s.Name(), err)
		}
		if math.Abs(mass) > 1e-9 {
			t.Errorf("%s: mass flux = %g, want 0", s.Name(), mass)
		}
		if math.Abs(energy) > 1e-9 {
			t.Errorf("%s: energy flux = %g, want 0", s.Name(), energy)
		}
		want := hydro.Vec3{left.P, 0, 0}
		if math.Abs(mom[0]-want[0]) > 1e-9 || math.Abs(mom[1]) > 1e-9 || math.Abs(mom[2]) > 1e-9 {
			t.Errorf("%s: momentum flux = %v, want %v", s.Name(), mom, want)
		}
	}
}

// TestVacuumBothSidesGivesZeroFlux checks that no flux crosses a face
// where both sides are vacuum, for both solvers.
func TestVacuumBothSidesGivesZeroFlux(t *testing.T) {
	normal := hydro.Vec3{1, 0, 0}
	vac := hydro.Primitives{}

	for _, s := range solvers(t, 5.0/3.0) {
		mass, mom, energy, err := s.SolveForFlux(vac, vac, normal, hydro.Vec3{})
		if err != nil {
			t.Fatalf("%s: SolveForFlux: %v", s.Name(), err)
		}
		if mass != 0 || energy != 0 || mom != (hydro.Vec3{}) {
			t.Errorf("%s: vacuum-vacuum flux = (%g, %v, %g), want all zero", s.Name(), mass, mom, energy)
		}
	}
}

// TestAdvectingUniformStateGivesPureAdvectiveFlux checks that a uniform
// stream moving at a constant normal velocity un carries mass at rate
// rho*un and momentum at rate rho*un^2+p through a comoving face, for
// both solvers.
func TestAdvectingUniformStateGivesPureAdvectiveFlux(t *testing.T) {
	normal := hydro.Vec3{1, 0, 0}
	rho, un, p := 1.2, 3.0, 2.0
	left := hydro.Primitives{Rho: rho, V: hydro.Vec3{un, 0, 0}, P: p}
	right := left

	for _, s := range solvers(t, 5.0/3.0) {
		mass, mom, _, err := s.SolveForFlux(left, right, normal, hydro.Vec3{})
		if err != nil {
			t.Fatalf("%s: SolveForFlux: %v", s.Name(), err)
		}
		wantMass := rho * un
		if math.Abs(mass-wantMass) > 1e-8*math.Abs(wantMass) {
			t.Errorf("%s: mass flux = %g, want %g", s.Name(), mass, wantMass)
		}
		wantMom := rho*un*un + p
		if math.Abs(mom[0]-wantMom) > 1e-8*math.Abs(wantMom) {
			t.Errorf("%s: momentum flux = %g, want %g", s.Name(), mom[0], wantMom)
		}
	}
}

func TestNewRejectsUnknownSolverName(t *testing.T) {
	if _, err := New("bogus"); err == nil {
		t.Fatal("New(\"bogus\"): expected an error")
	}
}

func TestNewWithGammaRejectsIsothermalExact(t *testing.T) {
	if _, err := NewWithGamma("Exact", 1); err == nil {
		t.Fatal("NewWithGamma(\"Exact\", 1): expected an error")
	}
	if _, err := NewWithGamma("HLLC", 1); err != nil {
		t.Fatalf("NewWithGamma(\"HLLC\", 1): %v", err)
	}
}
