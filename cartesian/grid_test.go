// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package cartesian

import (
	"math"
	"testing"

	hydro "github.com/relhydro/hydrocore"
)

func TestNewRejectsBadDimensions(t *testing.T) {
	if _, err := New(0, 1, 1, hydro.Vec3{}, hydro.Vec3{1, 1, 1}, [3]bool{}); err == nil {
		t.Error("New with nx=0: expected an error")
	}
	if _, err := New(1, 1, 1, hydro.Vec3{}, hydro.Vec3{-1, 1, 1}, [3]bool{}); err == nil {
		t.Error("New with a non-positive side length: expected an error")
	}
}

// TestCellAtCoordsRoundTrip checks that CellAt and the internal flat
// index are mutual inverses across every coordinate in a small grid.
func TestCellAtCoordsRoundTrip(t *testing.T) {
	g, err := New(4, 3, 2, hydro.Vec3{}, hydro.Vec3{4, 3, 2}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for k := 0; k < 2; k++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				c := g.CellAt(i, j, k)
				gi, gj, gk := g.coords(c)
				if gi != i || gj != j || gk != k {
					t.Errorf("coords(CellAt(%d,%d,%d)) = (%d,%d,%d)", i, j, k, gi, gj, gk)
				}
			}
		}
	}
}

// TestMidpointAndVolumeMatchUnitCells checks the geometry of a domain
// that divides evenly into unit cubes.
func TestMidpointAndVolumeMatchUnitCells(t *testing.T) {
	g, err := New(2, 2, 2, hydro.Vec3{}, hydro.Vec3{2, 2, 2}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := g.CellAt(1, 0, 1)
	want := hydro.Vec3{1.5, 0.5, 1.5}
	if got := g.Midpoint(c); got != want {
		t.Errorf("Midpoint = %v, want %v", got, want)
	}
	if v := g.Volume(c); v != 1 {
		t.Errorf("Volume = %g, want 1", v)
	}
	if n := g.NumCells(); n != 8 {
		t.Errorf("NumCells = %d, want 8", n)
	}
}

// TestNeighborsPeriodicWrapsAroundDomain checks that a periodic axis
// wraps the boundary cell's neighbor to the opposite edge of the domain.
func TestNeighborsPeriodicWrapsAroundDomain(t *testing.T) {
	g, err := New(3, 1, 1, hydro.Vec3{}, hydro.Vec3{3, 1, 1}, [3]bool{true, false, false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first := g.CellAt(0, 0, 0)
	faces := g.Neighbors(first)
	minusX := faces[0]
	if minusX.Neighbor != g.CellAt(2, 0, 0) {
		t.Errorf("-x neighbor of cell 0 = %d, want cell (2,0,0)", minusX.Neighbor)
	}
	if minusX.Normal != (hydro.Vec3{-1, 0, 0}) {
		t.Errorf("-x neighbor normal = %v, want (-1,0,0)", minusX.Normal)
	}
}

// TestNeighborsNonPeriodicReportsNoNeighbor checks that a non-periodic
// axis reports hydro.NoNeighbor at the domain edge instead of wrapping.
func TestNeighborsNonPeriodicReportsNoNeighbor(t *testing.T) {
	g, err := New(3, 1, 1, hydro.Vec3{}, hydro.Vec3{3, 1, 1}, [3]bool{false, false, false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	last := g.CellAt(2, 0, 0)
	faces := g.Neighbors(last)
	plusX := faces[1]
	if plusX.Neighbor != hydro.NoNeighbor {
		t.Errorf("+x neighbor of the last cell = %d, want NoNeighbor", plusX.Neighbor)
	}
}

// TestNeighborsInteriorCellLinksBothSides checks that an interior cell's
// neighbors on a given axis are distinct cells on either side of it.
func TestNeighborsInteriorCellLinksBothSides(t *testing.T) {
	g, err := New(5, 1, 1, hydro.Vec3{}, hydro.Vec3{5, 1, 1}, [3]bool{false, false, false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mid := g.CellAt(2, 0, 0)
	faces := g.Neighbors(mid)
	if faces[0].Neighbor != g.CellAt(1, 0, 0) {
		t.Errorf("-x neighbor = %d, want cell (1,0,0)", faces[0].Neighbor)
	}
	if faces[1].Neighbor != g.CellAt(3, 0, 0) {
		t.Errorf("+x neighbor = %d, want cell (3,0,0)", faces[1].Neighbor)
	}
}

// TestAccessFlagsTrackPrimitivesReads checks ResetAccessFlags/CheckAccess,
// the instrumentation the integrator uses to check that every cell's
// primitives were read at least once during the flux pass.
func TestAccessFlagsTrackPrimitivesReads(t *testing.T) {
	g, err := New(2, 1, 1, hydro.Vec3{}, hydro.Vec3{2, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.CheckAccess() {
		t.Fatal("CheckAccess: want false before any cell has been read")
	}
	g.Primitives(g.CellAt(0, 0, 0))
	if g.CheckAccess() {
		t.Fatal("CheckAccess: want false with one of two cells read")
	}
	g.Primitives(g.CellAt(1, 0, 0))
	if !g.CheckAccess() {
		t.Fatal("CheckAccess: want true once every cell has been read")
	}
	g.ResetAccessFlags()
	if g.CheckAccess() {
		t.Fatal("CheckAccess: want false again after ResetAccessFlags")
	}
}

func TestSetPrimitivesConservedFluxDeltaRoundTrip(t *testing.T) {
	g, err := New(1, 1, 1, hydro.Vec3{}, hydro.Vec3{1, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := g.CellAt(0, 0, 0)

	p := hydro.Primitives{Rho: 2, V: hydro.Vec3{1, 0, 0}, P: 3}
	g.SetPrimitives(c, p)
	if got := g.Primitives(c); got != p {
		t.Errorf("Primitives = %v, want %v", got, p)
	}

	cs := hydro.Conserved{Mass: 2, Momentum: hydro.Vec3{2, 0, 0}, Energy: 5}
	g.SetConserved(c, cs)
	if got := g.Conserved(c); got != cs {
		t.Errorf("Conserved = %v, want %v", got, cs)
	}

	g.AddFluxDelta(c, hydro.Conserved{Mass: 1, Energy: 2})
	g.AddFluxDelta(c, hydro.Conserved{Mass: 1, Energy: 3})
	want := hydro.Conserved{Mass: 2, Energy: 5}
	if got := g.FluxDelta(c); got != want {
		t.Errorf("FluxDelta after two adds = %v, want %v", got, want)
	}
	g.ZeroFluxDelta(c)
	if got := g.FluxDelta(c); got != (hydro.Conserved{}) {
		t.Errorf("FluxDelta after ZeroFluxDelta = %v, want zero", got)
	}
}

func TestAddSourceTermAccumulatesAndClears(t *testing.T) {
	g, err := New(1, 1, 1, hydro.Vec3{}, hydro.Vec3{1, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := g.CellAt(0, 0, 0)
	g.AddSourceTerm(c, 1, 2)
	g.AddSourceTerm(c, 3, 4)
	rate, energy := g.SourceTerms(c)
	if rate != 4 || energy != 6 {
		t.Errorf("SourceTerms = (%g,%g), want (4,6)", rate, energy)
	}
	g.ClearSourceTerms(c)
	rate, energy = g.SourceTerms(c)
	if rate != 0 || energy != 0 {
		t.Errorf("SourceTerms after ClearSourceTerms = (%g,%g), want (0,0)", rate, energy)
	}
}

func TestDensityFieldAndTotalVolume(t *testing.T) {
	g, err := New(2, 2, 1, hydro.Vec3{}, hydro.Vec3{2, 2, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < g.NumCells(); i++ {
		g.SetPrimitives(hydro.CellID(i), hydro.Primitives{Rho: float64(i + 1)})
	}
	field := g.DensityField()
	for i, rho := range field {
		if rho != float64(i+1) {
			t.Errorf("DensityField()[%d] = %g, want %g", i, rho, float64(i+1))
		}
	}
	if v := g.TotalVolume(); v != 4 {
		t.Errorf("TotalVolume = %g, want 4", v)
	}
}

// TestDensityResidualL2IsZeroForIdenticalSnapshots checks that comparing
// a density field against itself yields a zero residual.
func TestDensityResidualL2IsZeroForIdenticalSnapshots(t *testing.T) {
	g, err := New(4, 1, 1, hydro.Vec3{}, hydro.Vec3{4, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < g.NumCells(); i++ {
		g.SetPrimitives(hydro.CellID(i), hydro.Primitives{Rho: float64(i + 1)})
	}
	snapshot := g.DensityField()
	if res := g.DensityResidualL2(snapshot); math.Abs(res) > 1e-12 {
		t.Errorf("DensityResidualL2 of an unchanged field = %g, want 0", res)
	}
}

func TestDensityResidualL2DetectsChange(t *testing.T) {
	g, err := New(4, 1, 1, hydro.Vec3{}, hydro.Vec3{4, 1, 1}, [3]bool{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < g.NumCells(); i++ {
		g.SetPrimitives(hydro.CellID(i), hydro.Primitives{Rho: 1})
	}
	before := g.DensityField()
	g.SetPrimitives(hydro.CellID(0), hydro.Primitives{Rho: 2})
	if res := g.DensityResidualL2(before); res <= 0 {
		t.Errorf("DensityResidualL2 after a change = %g, want > 0", res)
	}
}
