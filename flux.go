// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package hydro

import "math"

// FaceInputs bundles everything the flux kernel needs to evaluate one
// face: the two cells' own primitive and gradient state, the left cell's
// conserved state (the flux limiter's donor reference) and the right
// cell's conserved state. At a domain boundary face the right side has
// no real cell, so callers point RightConserved at the left cell's
// conserved state to reuse its limits; nil disables the right-side
// limits entirely.
type FaceInputs struct {
	Left, Right         Primitives
	LeftGrad, RightGrad Gradients
	LeftConserved       Conserved
	RightConserved      *Conserved

	DL, DR           Vec3
	DRatioL, DRatioR float64

	Normal        Vec3
	FrameVelocity Vec3
	Area          float64
	Dt            float64
	Isothermal    bool
}

// ComputeFaceFlux runs the full flux kernel for one face:
// reconstruct, clamp, solve, integrate over area·Δt, and limit. The
// returned Conserved is the contribution to subtract from the left
// cell's conserved state (C ← C − ΔC).
func ComputeFaceFlux(cfg Config, solver RiemannSolver, in FaceInputs) (Conserved, error) {
	left, right := ReconstructFaceState(in.Left, in.LeftGrad, in.Right, in.RightGrad, in.DL, in.DR, in.DRatioL, in.DRatioR)

	var err error
	if left.Rho, err = clampNonNegative(cfg, "rho_L", left.Rho); err != nil {
		return Conserved{}, err
	}
	if left.P, err = clampNonNegative(cfg, "p_L", left.P); err != nil {
		return Conserved{}, err
	}
	if right.Rho, err = clampNonNegative(cfg, "rho_R", right.Rho); err != nil {
		return Conserved{}, err
	}
	if right.P, err = clampNonNegative(cfg, "p_R", right.P); err != nil {
		return Conserved{}, err
	}

	massFluxRaw, momFluxRaw, energyFluxRaw, err := solver.SolveForFlux(left, right, in.Normal, in.FrameVelocity)
	if err != nil {
		return Conserved{}, err
	}
	if isNaN(massFluxRaw) || isNaNVec(momFluxRaw) || isNaN(energyFluxRaw) {
		return Conserved{}, newContractViolation("flux kernel: riemann solver", map[string]float64{
			"mass_flux": massFluxRaw, "energy_flux": energyFluxRaw,
		})
	}

	scale := in.Area * in.Dt
	massFlux := massFluxRaw * scale
	momFlux := momFluxRaw.Scale(scale)
	var energyFlux float64
	if !in.Isothermal {
		energyFlux = energyFluxRaw * scale
	}

	f := limiterFactor(cfg, in, massFlux, momFlux, energyFlux)
	if isNaN(f) || f < 0 || f > 1 {
		return Conserved{}, newContractViolation("flux kernel: flux limiter", map[string]float64{
			"f": f, "mass_flux": massFlux, "energy_flux": energyFlux,
		})
	}

	return Conserved{
		Mass:     f * massFlux,
		Momentum: momFlux.Scale(f),
		Energy:   f * energyFlux,
	}, nil
}

// clampNonNegative enforces the safe-hydro policy's negative-floor clamp
// on a reconstructed ρ' or p': under SafeHydro a
// negative value is clamped to zero; otherwise it is a fatal contract
// violation.
func clampNonNegative(cfg Config, name string, x float64) (float64, error) {
	if x >= 0 {
		return x, nil
	}
	if cfg.SafeHydro {
		return 0, nil
	}
	return 0, newContractViolation("flux kernel: reconstruction", map[string]float64{name: x})
}

func isNaN(x float64) bool { return math.IsNaN(x) }
func isNaNVec(v Vec3) bool { return isNaN(v[0]) || isNaN(v[1]) || isNaN(v[2]) }

// limiterFactor computes the scalar f ∈ [0,1] bounding how much of the
// integrated face flux may be applied.
func limiterFactor(cfg Config, in FaceInputs, massFlux float64, momFlux Vec3, energyFlux float64) float64 {
	f := 1.0

	mLLimit := FluxLimiter * in.LeftConserved.Mass
	if massFlux > mLLimit {
		f = math.Min(f, mLLimit/massFlux)
	}
	if in.RightConserved != nil {
		mRLimit := FluxLimiter * in.RightConserved.Mass
		if -massFlux > mRLimit {
			f = math.Min(f, -mRLimit/massFlux)
		}
	}

	if !in.Isothermal {
		eLLimit := FluxLimiter * in.LeftConserved.Energy
		if energyFlux > eLLimit {
			f = math.Min(f, eLLimit/energyFlux)
		}
		if in.RightConserved != nil {
			eRLimit := FluxLimiter * in.RightConserved.Energy
			if -energyFlux > eRLimit {
				f = math.Min(f, -eRLimit/energyFlux)
			}
		}
	}

	momFluxNormSq := momFlux.Dot(momFlux)
	if kineticIsLarge(cfg, in.Left, in.LeftConserved) {
		pLimitSq := math.Pow(FluxLimiter*in.LeftConserved.Momentum.Norm(), 2)
		if momFluxNormSq > pLimitSq {
			f = math.Min(f, math.Sqrt(pLimitSq/momFluxNormSq))
		}
	}
	if in.RightConserved != nil && kineticIsLarge(cfg, in.Right, *in.RightConserved) {
		pLimitSq := math.Pow(FluxLimiter*in.RightConserved.Momentum.Norm(), 2)
		if momFluxNormSq > pLimitSq {
			f = math.Min(f, math.Sqrt(pLimitSq/momFluxNormSq))
		}
	}

	return f
}

// kineticIsLarge reports whether the cell's kinetic energy dominates its
// thermal energy enough that the momentum flux limiter should engage:
// |p⃗|²·ρ > γ·m²·P.
func kineticIsLarge(cfg Config, p Primitives, c Conserved) bool {
	return c.Momentum.Dot(c.Momentum)*p.Rho > cfg.Gamma*c.Mass*c.Mass*p.P
}
