// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import "math"

// RightState is the right-side reconstruction input the boundary oracle
// produces for a face: primitives and gradients.
type RightState struct {
	P Primitives
	G Gradients
}

// axisSide derives the face's axis (0=x, 1=y, 2=z) and side (0=low,
// 1=high) from the sign and magnitude of the outward normal's
// largest component.
func axisSide(normal Vec3) (axis, side int) {
	axis = 0
	maxAbs := math.Abs(normal[0])
	for i := 1; i < 3; i++ {
		if math.Abs(normal[i]) > maxAbs {
			maxAbs = math.Abs(normal[i])
			axis = i
		}
	}
	if normal[axis] < 0 {
		side = 0
	} else {
		side = 1
	}
	return axis, side
}

// ResolveBoundary returns the right-side primitives and gradients for a
// face whose neighbor is a domain boundary (face.Neighbor == NoNeighbor),
// dispatching on the per-axis policy table in cfg. Interior
// faces never reach here — the caller resolves those directly from the
// neighbor's own state via Grid.
func (cfg Config) ResolveBoundary(left Primitives, leftG Gradients, leftMidpoint Vec3, face NeighborFace) (RightState, error) {
	axis, side := axisSide(face.Normal)
	policy := cfg.Boundaries[faceIndex(axis, side)]
	switch policy {
	case BoundaryPeriodic:
		// The grid enumerates periodic neighbors as interior faces; the
		// oracle is never asked to resolve a periodic boundary directly.
		return RightState{}, &ConfigError{Reason: "boundary oracle invoked for a periodic face; the grid should have resolved this as an interior neighbor"}

	case BoundaryReflective, BoundaryInflow:
		// inflow has no distinct logic of its own and is treated as a
		// documented synonym of reflective.
		p, g := reflect(left, leftG, axis)
		return RightState{P: p, G: g}, nil

	case BoundaryOutflow:
		p, g := outflow(left, leftG, axis, face.Normal)
		return RightState{P: p, G: g}, nil

	case BoundaryBondi:
		if cfg.Bondi == nil {
			return RightState{}, &ConfigError{Reason: "bondi boundary face has no profile configured"}
		}
		xR := leftMidpoint.Add(face.Offset)
		rho, v, p, _ := cfg.Bondi.HydrodynamicVariables(xR)
		return RightState{P: Primitives{Rho: rho, V: v, P: p}}, nil

	default:
		return RightState{}, &ConfigError{Reason: "unrecognized boundary policy"}
	}
}

// reflect mirrors the primitive and gradient state of a cell across a
// reflective (or inflow-as-reflective) face whose outward normal lies
// along axis i: ρ and p pass through unchanged, the i'th velocity
// component flips sign, and ∇ρ/∇p/∇v are mirrored.
func reflect(left Primitives, leftG Gradients, i int) (Primitives, Gradients) {
	p := Primitives{Rho: left.Rho, P: left.P, V: left.V.WithComponent(i, -left.V[i])}

	g := leftG
	g.Rho = g.Rho.WithComponent(i, -leftG.Rho[i])
	g.P = g.P.WithComponent(i, -leftG.P[i])

	velGrad := [3]Vec3{leftG.Vx, leftG.Vy, leftG.Vz}
	for j := 0; j < 3; j++ {
		if j != i {
			velGrad[j] = velGrad[j].WithComponent(i, -velGrad[j][i])
		}
	}
	g.Vx, g.Vy, g.Vz = velGrad[0], velGrad[1], velGrad[2]
	return p, g
}

// outflow copies the left state through unchanged unless the flow is
// directed into the domain (v_L·n̂ < 0), in which case the i'th velocity
// component is mirrored (to prevent an unphysical sink) and its gradient
// row is zeroed.
func outflow(left Primitives, leftG Gradients, i int, normal Vec3) (Primitives, Gradients) {
	p := left
	g := leftG
	if left.V.Dot(normal) < 0 {
		p.V = p.V.WithComponent(i, -left.V[i])
		switch i {
		case 0:
			g.Vx = Vec3{}
		case 1:
			g.Vy = Vec3{}
		case 2:
			g.Vz = Vec3{}
		}
	}
	return p, g
}
