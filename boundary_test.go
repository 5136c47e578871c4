// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import "testing"

func TestAxisSideDerivesFromNormal(t *testing.T) {
	cases := []struct {
		normal   Vec3
		wantAxis int
		wantSide int
	}{
		{Vec3{1, 0, 0}, 0, 1},
		{Vec3{-1, 0, 0}, 0, 0},
		{Vec3{0, 1, 0}, 1, 1},
		{Vec3{0, -1, 0}, 1, 0},
		{Vec3{0, 0, 1}, 2, 1},
		{Vec3{0, 0, -1}, 2, 0},
	}
	for _, c := range cases {
		axis, side := axisSide(c.normal)
		if axis != c.wantAxis || side != c.wantSide {
			t.Errorf("axisSide(%v) = (%d,%d), want (%d,%d)", c.normal, axis, side, c.wantAxis, c.wantSide)
		}
	}
}

// TestReflectiveBoundarySymmetry checks that density and pressure pass through unchanged and only
// the normal velocity component flips sign.
func TestReflectiveBoundarySymmetry(t *testing.T) {
	left := Primitives{Rho: 1.5, V: Vec3{2, -3, 4}, P: 0.8}
	var leftG Gradients
	leftG.Rho = Vec3{1, 2, 3}
	leftG.P = Vec3{4, 5, 6}
	leftG.Vx = Vec3{7, 8, 9}
	leftG.Vy = Vec3{10, 11, 12}
	leftG.Vz = Vec3{13, 14, 15}

	p, _ := reflect(left, leftG, 0)
	if p.Rho != left.Rho {
		t.Errorf("reflect: Rho changed from %g to %g", left.Rho, p.Rho)
	}
	if p.P != left.P {
		t.Errorf("reflect: P changed from %g to %g", left.P, p.P)
	}
	if p.V[0] != -left.V[0] {
		t.Errorf("reflect: normal velocity component = %g, want %g", p.V[0], -left.V[0])
	}
	if p.V[1] != left.V[1] || p.V[2] != left.V[2] {
		t.Errorf("reflect: tangential velocity changed: got %v, want %v", p.V, Vec3{left.V[0], left.V[1], left.V[2]})
	}
}

func TestOutflowPassesThroughWhenFlowLeavesDomain(t *testing.T) {
	left := Primitives{Rho: 1, V: Vec3{5, 0, 0}, P: 1}
	var leftG Gradients
	leftG.Vx = Vec3{1, 2, 3}

	p, g := outflow(left, leftG, 0, Vec3{1, 0, 0})
	if p != left {
		t.Errorf("outflow: outgoing flow should pass through unchanged, got %v want %v", p, left)
	}
	if g.Vx != leftG.Vx {
		t.Errorf("outflow: gradient should be untouched for outgoing flow")
	}
}

func TestOutflowMirrorsInflowingVelocity(t *testing.T) {
	left := Primitives{Rho: 1, V: Vec3{-5, 0, 0}, P: 1}
	var leftG Gradients
	leftG.Vx = Vec3{1, 2, 3}

	p, g := outflow(left, leftG, 0, Vec3{1, 0, 0})
	if p.V[0] != 5 {
		t.Errorf("outflow: inflowing normal velocity should be mirrored, got %g want 5", p.V[0])
	}
	if g.Vx != (Vec3{}) {
		t.Errorf("outflow: gradient row for the mirrored component should be zeroed, got %v", g.Vx)
	}
}
