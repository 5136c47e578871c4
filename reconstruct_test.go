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

// TestSlopeLimiterIdempotent checks that clamping an already-clamped candidate into the same window
// must return the same value, i.e. the limiter's bounding window is a
// fixed point once a candidate lands inside it.
func TestSlopeLimiterIdempotent(t *testing.T) {
	cases := []struct {
		phiL, phiR, phiOwn, phiNeighbor, dRatio float64
		grad                                    Vec3
		d                                       Vec3
	}{
		{phiL: 1, phiR: 3, phiOwn: 1, phiNeighbor: 3, dRatio: 0.4, grad: Vec3{5, 0, 0}, d: Vec3{0.3, 0, 0}},
		{phiL: 3, phiR: 1, phiOwn: 3, phiNeighbor: 1, dRatio: 0.25, grad: Vec3{-8, 2, 0}, d: Vec3{0.2, 0.1, 0}},
		{phiL: -2, phiR: 5, phiOwn: -2, phiNeighbor: 5, dRatio: 0.6, grad: Vec3{20, 0, 0}, d: Vec3{0.5, 0, 0}},
	}

	for i, c := range cases {
		first := reconstructOneSide(c.phiL, c.phiR, c.phiOwn, c.phiNeighbor, c.grad, c.d, c.dRatio)

		// Feed the clamped result back in as the raw reconstructed
		// candidate: zero displacement so phiPrime = phiOwn, with phiOwn
		// replaced by `first` so phiBar's own-side term also reads
		// `first`. Re-deriving phiBar from the already-clamped value and
		// re-clamping must reproduce it exactly.
		second := reconstructOneSide(c.phiL, c.phiR, first, c.phiNeighbor, Vec3{}, Vec3{}, c.dRatio)

		if math.Abs(second-first) > 1e-12 {
			t.Errorf("case %d: re-clamping %g produced %g, not idempotent", i, first, second)
		}
	}
}

func TestReconstructEqualEndpointsShortCircuits(t *testing.T) {
	got := reconstructOneSide(2, 2, 2, 2, Vec3{100, 0, 0}, Vec3{1, 0, 0}, 0.5)
	if got != 2 {
		t.Errorf("equal endpoints: got %g, want 2 (gradient/displacement ignored)", got)
	}
}

func TestReconstructFaceStateComponentwise(t *testing.T) {
	left := Primitives{Rho: 1, V: Vec3{0, 0, 0}, P: 1}
	right := Primitives{Rho: 0.125, V: Vec3{0, 0, 0}, P: 0.1}
	var leftG, rightG Gradients

	l, r := ReconstructFaceState(left, leftG, right, rightG, Vec3{0.005, 0, 0}, Vec3{-0.005, 0, 0}, 0.5, 0.5)

	if l.Rho < 0.125 || l.Rho > 1 {
		t.Errorf("left density %g escaped the [0.125,1] window", l.Rho)
	}
	if r.Rho < 0.125 || r.Rho > 1 {
		t.Errorf("right density %g escaped the [0.125,1] window", r.Rho)
	}
	if l.P < 0.1 || l.P > 1 {
		t.Errorf("left pressure %g escaped the [0.1,1] window", l.P)
	}
}

func TestLimiterWindowPlusMinusBracketEndpoints(t *testing.T) {
	w := newLimiterWindow(1, 3)
	if w.plus() < w.phiMax {
		t.Errorf("plus() = %g, want >= phiMax = %g", w.plus(), w.phiMax)
	}
	if w.minus() > w.phiMin {
		t.Errorf("minus() = %g, want <= phiMin = %g", w.minus(), w.phiMin)
	}
}
