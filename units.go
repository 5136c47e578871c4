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
	"math"

	"github.com/ctessum/unit"
)

// Quantity identifies one of the physical quantities the unit system
// knows how to rescale between SI and internal units.
type Quantity int

// The physical quantities exposed by UnitSystem.
const (
	Length Quantity = iota
	SurfaceArea
	Volume
	Mass
	Velocity
	Acceleration
	Density
	Pressure
	Momentum
	Energy
	Time
)

func (q Quantity) String() string {
	switch q {
	case Length:
		return "length"
	case SurfaceArea:
		return "surface area"
	case Volume:
		return "volume"
	case Mass:
		return "mass"
	case Velocity:
		return "velocity"
	case Acceleration:
		return "acceleration"
	case Density:
		return "density"
	case Pressure:
		return "pressure"
	case Momentum:
		return "momentum"
	case Energy:
		return "energy"
	case Time:
		return "time"
	default:
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
}

// dimension returns the SI dimensionality of q, for dimensional
// sanity-checking in ToInternalUnit/ToSIUnit.
func (q Quantity) dimension() unit.Dimensions {
	switch q {
	case Length:
		return unit.Meter
	case SurfaceArea:
		return unit.Meter2
	case Volume:
		return unit.Meter3
	case Mass:
		return unit.Kilogram
	case Velocity:
		return unit.MeterPerSecond
	case Acceleration:
		return unit.MeterPerSecond2
	case Density:
		return unit.KilogramPerMeter3
	case Pressure:
		return unit.Pascal
	case Momentum:
		return unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -1}
	case Energy:
		return unit.Joule
	case Time:
		return unit.Second
	default:
		panic(fmt.Sprintf("hydro: unknown quantity %d", int(q)))
	}
}

// UnitSystem rescales physical quantities between SI units and a
// dimensionless internal unit system chosen so that typical cell
// magnitudes are near unity. It is derived once, at Initialise, from
// the average box side length, density and pressure in the domain
// and is immutable afterward; it is small enough to pass by value.
type UnitSystem struct {
	l0, rho0, p0              float64
	t0, v0, m0, e0, a0, area0 float64
}

// NewUnitSystem derives a unit system from the three independent
// reference scales: the average box side length, average density and
// average pressure, all in SI units.
func NewUnitSystem(avgBoxSide, avgDensity, avgPressure float64) UnitSystem {
	l0 := avgBoxSide
	rho0 := avgDensity
	p0 := avgPressure
	t0 := l0 * math.Sqrt(rho0/p0)
	v0 := l0 / t0
	m0 := rho0 * l0 * l0 * l0
	return UnitSystem{
		l0:    l0,
		rho0:  rho0,
		p0:    p0,
		t0:    t0,
		v0:    v0,
		m0:    m0,
		e0:    m0 * v0 * v0,
		a0:    v0 / t0,
		area0: l0 * l0,
	}
}

// InternalUnit returns the SI value of one internal unit of q.
func (u UnitSystem) InternalUnit(q Quantity) float64 {
	switch q {
	case Length:
		return u.l0
	case SurfaceArea:
		return u.area0
	case Volume:
		return u.l0 * u.l0 * u.l0
	case Mass:
		return u.m0
	case Velocity:
		return u.v0
	case Acceleration:
		return u.a0
	case Density:
		return u.rho0
	case Pressure:
		return u.p0
	case Momentum:
		return u.m0 * u.v0
	case Energy:
		return u.e0
	case Time:
		return u.t0
	default:
		panic(fmt.Sprintf("hydro: unknown quantity %d", int(q)))
	}
}

// SIUnit returns the internal value of one SI unit of q.
func (u UnitSystem) SIUnit(q Quantity) float64 {
	return 1. / u.InternalUnit(q)
}

// ToInternal converts a value in SI units to internal units.
func (u UnitSystem) ToInternal(q Quantity, xSI float64) float64 {
	return xSI / u.InternalUnit(q)
}

// ToSI converts a value in internal units to SI units.
func (u UnitSystem) ToSI(q Quantity, xInternal float64) float64 {
	return xInternal * u.InternalUnit(q)
}

// ToInternalUnit is the dimension-checked form of ToInternal: x must
// carry the SI dimension matching q, or an error is returned describing
// the mismatch. This is the boundary where the core's internal-unit
// invariant is enforced against values coming in from external
// collaborators.
func (u UnitSystem) ToInternalUnit(q Quantity, x *unit.Unit) (float64, error) {
	if err := x.Check(q.dimension()); err != nil {
		return 0, fmt.Errorf("hydro: converting to internal %s: %w", q, err)
	}
	return u.ToInternal(q, x.Value()), nil
}

// ToSIUnit is the dimensioned form of ToSI: it returns a *unit.Unit
// tagged with q's SI dimension, suitable for handing back to an
// external collaborator that expects dimensioned values.
func (u UnitSystem) ToSIUnit(q Quantity, xInternal float64) *unit.Unit {
	return unit.New(u.ToSI(q, xInternal), q.dimension())
}
