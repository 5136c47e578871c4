// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

// CellID identifies a cell within a Grid. It is opaque to the core:
// Grid implementations are free to use it as a row index, a pointer-sized
// handle, or anything else comparable.
type CellID int

// NoNeighbor is the sentinel CellID returned by Grid.Neighbors for a
// face that lies on a domain boundary rather than an interior neighbor.
const NoNeighbor CellID = -1

// NeighborFace describes one face of a cell as enumerated by
// Grid.Neighbors: the neighbor on the other side of the face (or
// NoNeighbor at a domain boundary), the face midpoint, the outward unit
// normal, the face area, and the displacement from this cell's midpoint
// to the neighbor's midpoint. FaceMidpoint,
// Area and Offset are all in SI units, like the rest of Grid's geometry.
type NeighborFace struct {
	Neighbor     CellID
	FaceMidpoint Vec3
	Normal       Vec3
	Area         float64
	Offset       Vec3
}

// Grid is the external collaborator that owns cell geometry, storage and
// neighbor topology. The core never constructs or mutates grid topology
// itself; it only reads geometry and the per-cell hydrodynamic state
// through this interface and writes back updated state through it.
// During the core's parallel gradient and flux passes each worker writes
// only the state of the cell it is processing (its gradients, or its flux
// accumulator) and reads its neighbors' primitives, gradients and
// conserved state, which no worker writes during that pass; Grid
// implementations must allow these concurrent calls without racing.
type Grid interface {
	// NumCells returns the number of cells in the grid.
	NumCells() int

	// Midpoint returns the cell-center position of c, in SI units. Grid
	// geometry (Midpoint, Volume, and every NeighborFace field) is always
	// expressed in SI: only the hydrodynamic state reached through
	// Primitives/Gradients/Conserved/FluxDelta is rescaled to internal
	// units, and only after Initialise. The core converts geometry to
	// internal units itself wherever the arithmetic requires it.
	Midpoint(c CellID) Vec3

	// Volume returns the volume of c, in SI units.
	Volume(c CellID) float64

	// Ionisation returns the current ionisation variables of c.
	Ionisation(c CellID) Ionisation

	// SetIonisation writes back the temperature and number density the
	// core recomputed for c after a step. The
	// neutral fraction x_H is owned by the ionisation subsystem and is
	// never written by the core.
	SetIonisation(c CellID, temperature, numberDensity float64)

	// Primitives returns the current primitive state of c.
	Primitives(c CellID) Primitives

	// SetPrimitives writes the recovered primitive state of c.
	SetPrimitives(c CellID, p Primitives)

	// Gradients returns the current primitive gradients of c.
	Gradients(c CellID) Gradients

	// SetGradients writes the gradients computed for c by the external
	// gradient pass.
	SetGradients(c CellID, g Gradients)

	// Conserved returns the current conserved state of c.
	Conserved(c CellID) Conserved

	// SetConserved writes the conserved state of c.
	SetConserved(c CellID, cs Conserved)

	// FluxDelta returns the accumulated flux delta ΔC for c.
	FluxDelta(c CellID) Conserved

	// AddFluxDelta adds d into c's flux accumulator. Only ever called
	// with c equal to the "left" cell of a face during the flux pass, so
	// concurrent calls for distinct c never touch the same storage.
	AddFluxDelta(c CellID, d Conserved)

	// ZeroFluxDelta resets c's flux accumulator to zero.
	ZeroFluxDelta(c CellID)

	// Acceleration returns the gravitational acceleration vector set for
	// c by an external collaborator; read-only from the
	// core's perspective. Like Primitives/Gradients/Conserved, this is in
	// internal units once Initialise has run — the gravity subsystem is
	// expected to consult the same UnitSystem the core derives.
	Acceleration(c CellID) Vec3

	// SourceTerms returns c's external energy source buffers, in internal
	// units: a power (applied over Δt) and an energy (applied once).
	SourceTerms(c CellID) (energyRate, energy float64)

	// ClearSourceTerms zeros c's external energy source buffers; the core
	// does this once per step after folding them into the conserved
	// update.
	ClearSourceTerms(c CellID)

	// Neighbors enumerates the faces of c.
	Neighbors(c CellID) []NeighborFace

	// InterfaceVelocity returns the moving-mesh frame velocity for the
	// face of c described by n, in SI units (grid motion is geometry, like
	// Midpoint/Volume).
	InterfaceVelocity(c CellID, n NeighborFace) Vec3

	// SetGridVelocity instructs the grid to (re)compute its internal
	// grid-motion velocities, given the polytropic index and the
	// internal-to-SI velocity conversion factor.
	SetGridVelocity(gamma, vUnitSI float64)

	// Evolve advances grid motion by dtSI (an SI-unit timestep).
	Evolve(dtSI float64) error

	// ResetAccessFlags clears the debug per-cell access-tracking state.
	ResetAccessFlags()

	// CheckAccess reports whether every cell has been accessed at least
	// once since the last ResetAccessFlags call. A cell accessed more than
	// once is not reported.
	CheckAccess() bool

	// Box returns the domain origin, side lengths, and per-axis
	// periodicity flags, in SI units.
	Box() (origin, sides Vec3, periodic [3]bool)
}

// RiemannSolver computes the flux across a cell interface given the
// reconstructed left and right primitive states, the outward face
// normal and the interface frame velocity. Concrete solvers
// live in package riemann; the core only ever holds one through this
// interface, selected by name at construction time.
type RiemannSolver interface {
	// Name returns the solver's registered name, used in diagnostics.
	Name() string

	// SolveForFlux returns the raw mass, momentum and energy fluxes
	// across a face given the left/right primitive states, the outward
	// face normal, and the interface frame velocity. Under an isothermal
	// configuration (γ=1) the solver is permitted to leave the energy
	// flux at zero; callers must not rely on it in that case.
	SolveForFlux(left, right Primitives, normal, frameVelocity Vec3) (massFlux float64, momentumFlux Vec3, energyFlux float64, err error)
}

// BondiProfile supplies the analytic spherical (Bondi) accretion
// solution consulted at a `bondi` boundary face.
type BondiProfile interface {
	// HydrodynamicVariables returns the density, velocity, pressure and
	// hydrogen neutral fraction of the Bondi profile at position x (SI units).
	HydrodynamicVariables(x Vec3) (rho float64, v Vec3, p float64, xH float64)
}
