// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// BoundaryPolicy identifies how the boundary oracle resolves the
// right-side hydro state at a domain-boundary face.
type BoundaryPolicy int

// The five boundary policy values.
const (
	BoundaryPeriodic BoundaryPolicy = iota
	BoundaryReflective
	BoundaryInflow
	BoundaryOutflow
	BoundaryBondi
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryPeriodic:
		return "periodic"
	case BoundaryReflective:
		return "reflective"
	case BoundaryInflow:
		return "inflow"
	case BoundaryOutflow:
		return "outflow"
	case BoundaryBondi:
		return "bondi"
	default:
		return fmt.Sprintf("BoundaryPolicy(%d)", int(p))
	}
}

// ParseBoundaryPolicy parses one of the five boundary policy keywords.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "periodic":
		return BoundaryPeriodic, nil
	case "reflective":
		return BoundaryReflective, nil
	case "inflow":
		return BoundaryInflow, nil
	case "outflow":
		return BoundaryOutflow, nil
	case "bondi":
		return BoundaryBondi, nil
	default:
		return 0, &ConfigError{Reason: fmt.Sprintf("unknown boundary keyword %q", s)}
	}
}

// faceIndex returns the index into a [6]BoundaryPolicy array for the
// given axis (0=x, 1=y, 2=z) and side (0=low, 1=high): a 6-element array
// of policy tags indexed by axis*2+side.
func faceIndex(axis, side int) int { return axis*2 + side }

// FluxLimiter (FLUX_LIMITER) bounds how much of a cell's conserved mass/energy/thermal
// momentum any single face's flux may drain in one step.
const FluxLimiter = 2.0

// Config holds the immutable, construction-time-validated parameters of
// a hydrodynamic integrator.
type Config struct {
	// Gamma is the polytropic index. Gamma == 1 selects the isothermal
	// branch throughout the core.
	Gamma float64

	// CFL is the Courant-Friedrichs-Lewy safety factor used by MaxTimestep.
	CFL float64

	// VMax is the velocity cap (and, implicitly, the sound-speed cap)
	// applied after every step and after Initialise.
	VMax float64

	// SolverName selects the RiemannSolver implementation by name
	// (resolved by the caller's factory, e.g. riemann.New).
	SolverName string

	// DoHeating and DoCooling enable/disable the radiative source term.
	DoHeating bool
	DoCooling bool

	// TNeutral, TIonised and TShock are the temperatures the radiative
	// source term relaxes toward, and the threshold above which a cell
	// is considered already shock-heated.
	TNeutral float64
	TIonised float64
	TShock   float64

	// Boundaries holds the six per-face boundary policies, indexed by
	// faceIndex(axis, side).
	Boundaries [6]BoundaryPolicy

	// Bondi is the analytic accretion profile consulted at any `bondi`
	// face. It must be non-nil if any entry of Boundaries is BoundaryBondi.
	Bondi BondiProfile

	// SafeHydro enables the clamp-to-vacuum degenerate-state policy:
	// negative ρ/p are clamped to zero instead of raising a
	// ContractViolation.
	SafeHydro bool

	// Debug enables the per-cell access-tracking bitmap check at the
	// end of the flux pass.
	Debug bool

	// Logger receives the integrator's per-step log lines. A nil Logger
	// selects logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultConfig returns a Config with the documented defaults:
// γ=5/3, heating on, cooling off, CFL=0.2, solver "Exact",
// T_neutral=100K, T_ionised=1e4K, T_shock=3e4K, an effectively unbounded
// velocity cap, and reflective boundaries on all six faces.
func DefaultConfig() Config {
	var boundaries [6]BoundaryPolicy
	for i := range boundaries {
		boundaries[i] = BoundaryReflective
	}
	return Config{
		Gamma:      5.0 / 3.0,
		CFL:        0.2,
		VMax:       1e99,
		SolverName: "Exact",
		DoHeating:  true,
		DoCooling:  false,
		TNeutral:   100,
		TIonised:   1e4,
		TShock:     3e4,
		Boundaries: boundaries,
		SafeHydro:  true,
	}
}

// Validate checks the construction-time contract: periodicity on one
// side of an axis must imply periodicity on the
// matching side and must match the grid's own periodicity flag for that
// axis; any `bondi` face requires a non-nil Bondi profile; γ and CFL
// must be positive; VMax must be positive.
func (c Config) Validate(gridPeriodic [3]bool) error {
	if c.Gamma <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("polytropic index gamma must be positive, got %g", c.Gamma)}
	}
	if c.CFL <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("CFL constant must be positive, got %g", c.CFL)}
	}
	if c.VMax <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("maximum velocity must be positive, got %g", c.VMax)}
	}
	needsBondi := false
	for axis := 0; axis < 3; axis++ {
		low := c.Boundaries[faceIndex(axis, 0)]
		high := c.Boundaries[faceIndex(axis, 1)]
		lowPeriodic := low == BoundaryPeriodic
		highPeriodic := high == BoundaryPeriodic
		if lowPeriodic != highPeriodic {
			return &ConfigError{Reason: fmt.Sprintf(
				"axis %d has periodic on only one side (low=%v, high=%v); periodicity must be symmetric", axis, low, high)}
		}
		if lowPeriodic != gridPeriodic[axis] {
			return &ConfigError{Reason: fmt.Sprintf(
				"axis %d boundary periodicity (%v) does not match the grid's periodicity flag (%v)", axis, lowPeriodic, gridPeriodic[axis])}
		}
		if low == BoundaryBondi || high == BoundaryBondi {
			needsBondi = true
		}
	}
	if needsBondi && c.Bondi == nil {
		return &ConfigError{Reason: "a bondi boundary face is configured but no Bondi profile was provided"}
	}
	return nil
}
