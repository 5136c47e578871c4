// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package bondi implements the steady, spherically symmetric transonic
// accretion solution (Bondi 1952) as a hydro.BondiProfile, for use at a
// "bondi" boundary face.
package bondi

import (
	"fmt"
	"math"

	hydro "github.com/relhydro/hydrocore"
)

// Profile is a steady spherical accretion flow onto a point mass at the
// origin, parameterised by the mass, the ambient (far-field) density and
// sound speed, the polytropic index, and a fixed neutral fraction (the
// core treats x_H as externally supplied at a bondi face; this profile
// does not model ionisation balance). Construct with New.
type Profile struct {
	mass            float64 // GM, in SI units (m^3/s^2)
	rhoInf          float64 // ambient density, kg/m^3
	csInf           float64 // ambient sound speed, m/s
	gamma           float64
	neutralFraction float64

	rSonic   float64
	rhoSonic float64
	csSonic  float64
	mdot     float64
}

// New builds a Bondi accretion Profile. gravitationalParameter is GM for
// the central point mass (SI units); ambientDensity and ambientSoundSpeed
// describe the gas at infinity; gamma is the polytropic index used by the
// flow (gamma == 1 selects the isothermal Bondi solution); neutralFraction
// is the fixed hydrogen neutral fraction reported at every point; x_H is
// not modeled by the Bondi solution itself.
//
// gamma must be 1 or lie in (1, 5/3): at gamma = 5/3 the sonic radius of
// the transonic solution collapses to the origin and the closed-form
// critical-point quantities below degenerate (Bondi 1952 §3), so a
// profile for a gamma = 5/3 gas has to use an isothermal or softer
// polytropic closure for its boundary inflow.
func New(gravitationalParameter, ambientDensity, ambientSoundSpeed, gamma, neutralFraction float64) (*Profile, error) {
	if gravitationalParameter <= 0 {
		return nil, fmt.Errorf("bondi: gravitational parameter must be positive, got %g", gravitationalParameter)
	}
	if ambientDensity <= 0 {
		return nil, fmt.Errorf("bondi: ambient density must be positive, got %g", ambientDensity)
	}
	if ambientSoundSpeed <= 0 {
		return nil, fmt.Errorf("bondi: ambient sound speed must be positive, got %g", ambientSoundSpeed)
	}
	if gamma != 1 && (gamma <= 1 || gamma >= 5.0/3.0) {
		return nil, fmt.Errorf("bondi: gamma must be 1 (isothermal) or in (1, 5/3), got %g", gamma)
	}

	p := &Profile{
		mass:            gravitationalParameter,
		rhoInf:          ambientDensity,
		csInf:           ambientSoundSpeed,
		gamma:           gamma,
		neutralFraction: neutralFraction,
	}
	p.solveSonicPoint()
	return p, nil
}

// solveSonicPoint computes the critical (sonic) radius, density and
// sound speed, and the steady accretion rate, following the classic
// Bondi closed-form result for γ ≠ 1 and the isothermal special case for
// γ = 1 (Bondi 1952; see also Shu, "The Physics of Astrophysics II", §5).
func (p *Profile) solveSonicPoint() {
	if p.gamma == 1 {
		// Isothermal Bondi: c_s is constant everywhere and equal to csInf.
		p.csSonic = p.csInf
		p.rSonic = p.mass / (2 * p.csInf * p.csInf)
		p.rhoSonic = p.rhoInf * math.Exp(1.5)
		p.mdot = 4 * math.Pi * p.rSonic * p.rSonic * p.rhoSonic * p.csSonic
		return
	}

	gamma := p.gamma
	p.csSonic = p.csInf * math.Sqrt(2/(5-3*gamma))
	p.rSonic = p.mass / (2 * p.csSonic * p.csSonic)
	p.rhoSonic = p.rhoInf * math.Pow(p.csSonic/p.csInf, 2/(gamma-1))
	p.mdot = 4 * math.Pi * p.rSonic * p.rSonic * p.rhoSonic * p.csSonic
}

// HydrodynamicVariables implements hydro.BondiProfile. It returns the
// radial inflow velocity, the density set by mass continuity, and the
// pressure from the polytropic relation, all evaluated at the radius
// |x|; velocity points toward the origin.
func (p *Profile) HydrodynamicVariables(x hydro.Vec3) (rho float64, v hydro.Vec3, pressure float64, xH float64) {
	r := x.Norm()
	if r <= 0 {
		return p.rhoSonic, hydro.Vec3{}, p.pressureAt(p.rhoSonic), p.neutralFraction
	}

	u := p.radialVelocity(r)
	rho = p.mdot / (4 * math.Pi * r * r * math.Abs(u))
	pressure = p.pressureAt(rho)

	radial := x.Scale(-u / r) // inflow: velocity points toward the origin
	return rho, radial, pressure, p.neutralFraction
}

// pressureAt applies the polytropic closure P = P_sonic·(ρ/ρ_sonic)^γ,
// matching isothermal γ=1 (P ∝ ρ) as a limiting case.
func (p *Profile) pressureAt(rho float64) float64 {
	pSonic := p.rhoSonic * p.csSonic * p.csSonic / p.gamma
	if p.gamma == 1 {
		pSonic = p.rhoSonic * p.csSonic * p.csSonic
	}
	return pSonic * math.Pow(rho/p.rhoSonic, p.gamma)
}

// radialVelocity solves the Bondi velocity equation at radius r by
// bisecting on the Bernoulli invariant, since the isothermal/polytropic
// radial momentum equation has no closed form away from r_sonic (Bondi
// 1952 eq. 9; Shu §5.2). Returns the inflow speed (positive, directed
// toward the origin).
func (p *Profile) radialVelocity(r float64) float64 {
	if p.gamma == 1 {
		return p.isothermalVelocity(r)
	}
	return p.polytropicVelocity(r)
}

// isothermalVelocity solves
// u·exp(-u²/2c²) = (r_sonic/r)²·c·exp(3/2 - 2·r_sonic/r)
// for u via bisection, the standard isothermal Bondi transcendental
// relation (Bondi 1952 eq. 11, isothermal limit); its transonic solution
// passes through u = c at r = r_sonic.
func (p *Profile) isothermalVelocity(r float64) float64 {
	c := p.csInf
	rhs := math.Pow(p.rSonic/r, 2) * c * math.Exp(1.5-2*p.rSonic/r)
	f := func(u float64) float64 { return u*math.Exp(-u*u/(2*c*c)) - rhs }

	var lo, hi float64
	if r >= p.rSonic {
		lo, hi = 1e-12*c, c
	} else {
		lo, hi = c, 100*c
	}
	return bisect(f, lo, hi, 200)
}

// polytropicVelocity solves the Bernoulli + continuity system for the
// γ≠1 Bondi flow via bisection on u, matching the closed-form behaviour
// at r_sonic and falling back to the subsonic/supersonic branch implied
// by r relative to r_sonic.
func (p *Profile) polytropicVelocity(r float64) float64 {
	gamma := p.gamma
	// Bernoulli invariant (per unit mass), evaluated at the sonic point:
	// u²/2 + c²/(γ-1) - GM/r = const.
	bernoulli := p.csSonic*p.csSonic/2 + p.csSonic*p.csSonic/(gamma-1) - p.mass/p.rSonic

	f := func(u float64) float64 {
		if u <= 0 {
			return math.Inf(1)
		}
		rho := p.mdot / (4 * math.Pi * r * r * u)
		cs2 := gamma * p.pressureAt(rho) / rho
		return u*u/2 + cs2/(gamma-1) - p.mass/r - bernoulli
	}

	uSonic := p.csSonic
	var lo, hi float64
	if r >= p.rSonic {
		lo, hi = 1e-8*uSonic, uSonic
	} else {
		lo, hi = uSonic, 1e4*uSonic
	}
	return bisect(f, lo, hi, 200)
}

// bisect finds a root of f in [lo, hi], assuming f changes sign across
// the interval; it widens the bracket outward a bounded number of times
// if the initial guess does not bracket a root, then runs a fixed number
// of bisection steps.
func bisect(f func(float64) float64, lo, hi float64, iters int) float64 {
	flo, fhi := f(lo), f(hi)
	for i := 0; i < 60 && flo*fhi > 0; i++ {
		hi *= 1.5
		fhi = f(hi)
	}
	for i := 0; i < iters; i++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if flo*fmid <= 0 {
			hi, fhi = mid, fmid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0.5 * (lo + hi)
}
