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

	"github.com/ctessum/atmos/advect"
	hydro "github.com/relhydro/hydrocore"
)

// HLLC is the approximate Riemann solver of Toro/Harten-Lax-van Leer
// with a restored contact wave (Toro ch. 10): it estimates the fastest
// left/right wave speeds and the contact speed directly from the input
// states, instead of iterating for the exact star-region pressure. It
// never needs to be constructed directly; use New("HLLC").
type HLLC struct {
	Gamma float64
}

func (s HLLC) Name() string { return "HLLC" }

func (s HLLC) SolveForFlux(left, right hydro.Primitives, normal, frameVelocity hydro.Vec3) (float64, hydro.Vec3, float64, error) {
	gamma := s.Gamma

	unL, utL := faceFrame(left.V, frameVelocity, normal)
	unR, utR := faceFrame(right.V, frameVelocity, normal)

	rhoL, pL := left.Rho, left.P
	rhoR, pR := right.Rho, right.P

	if rhoL <= 0 && rhoR <= 0 {
		return 0, hydro.Vec3{}, 0, nil
	}

	aL := soundSpeed(gamma, rhoL, pL)
	aR := soundSpeed(gamma, rhoR, pR)

	eL := internalEnergyDensity(gamma, pL) + 0.5*rhoL*(unL*unL+utL.Dot(utL))
	eR := internalEnergyDensity(gamma, pR) + 0.5*rhoR*(unR*unR+utR.Dot(utR))

	sL, sR := waveSpeeds(rhoL, unL, pL, aL, rhoR, unR, pR, aR, gamma)

	// Stationary-contact degenerate case: both acoustic waves have
	// collapsed onto the interface (sL>=0>=sR never holds and sL==sR==0
	// within rounding), so fall back to a plain upwind flux on density
	// rather than divide by a near-zero sL-sR below.
	if math.Abs(sR-sL) < 1e-300 {
		un := 0.5 * (unL + unR)
		// advect.UpwindFlux's sign convention (flux = umhalf * upwind-side
		// value) is exactly the upwind mass flux needed here: un times
		// whichever side's density is upwind of the face.
		massFlux := advect.UpwindFlux(un, rhoL, rhoR, 1)
		pFace, eFace, tangential := pR, eR, utR
		if un >= 0 {
			pFace, eFace, tangential = pL, eL, utL
		}
		v := composeVelocity(un, tangential, frameVelocity, normal)
		momFlux := v.Scale(massFlux).Add(normal.Scale(pFace))
		energyFlux := un * (eFace + pFace)
		return massFlux, momFlux, energyFlux, nil
	}

	sStar := (pR - pL + rhoL*unL*(sL-unL) - rhoR*unR*(sR-unR)) / (rhoL*(sL-unL) - rhoR*(sR-unR))

	// Left/right state fluxes in the normal-frame (Toro eq. 3.15), used
	// directly when the interface sits outside the wave fan.
	fL := eulerFlux1D(rhoL, unL, pL, eL)
	fR := eulerFlux1D(rhoR, unR, pR, eR)

	var rhoFace, uFace, momFace, eFace float64
	var tangential hydro.Vec3
	switch {
	case sL >= 0:
		rhoFace, momFace, eFace = rhoL*unL, fL[1], fL[2]
		uFace, tangential = unL, utL
	case sR <= 0:
		rhoFace, momFace, eFace = rhoR*unR, fR[1], fR[2]
		uFace, tangential = unR, utR
	case sStar >= 0:
		rhoStarL, momStarL, eStarL := starState(rhoL, unL, pL, eL, sL, sStar)
		rhoFace = fL[0] + sL*(rhoStarL-rhoL)
		momFace = fL[1] + sL*(momStarL-rhoL*unL)
		eFace = fL[2] + sL*(eStarL-eL)
		uFace, tangential = sStar, utL
	default:
		rhoStarR, momStarR, eStarR := starState(rhoR, unR, pR, eR, sR, sStar)
		rhoFace = fR[0] + sR*(rhoStarR-rhoR)
		momFace = fR[1] + sR*(momStarR-rhoR*unR)
		eFace = fR[2] + sR*(eStarR-eR)
		uFace, tangential = sStar, utR
	}

	// momFace is the normal-frame normal-momentum flux ρu²+p; split off
	// the pressure term so the vector flux can be reassembled the same
	// way conservedFlux does for the exact solver: v·massFlux + n·p.
	massFlux := rhoFace
	pFace := momFace - massFlux*uFace
	v := composeVelocity(uFace, tangential, frameVelocity, normal)
	momFlux := v.Scale(massFlux).Add(normal.Scale(pFace))
	energyFlux := eFace

	return massFlux, momFlux, energyFlux, nil
}

// waveSpeeds estimates the left/right signal speeds via the
// pressure-based wave estimator (Toro eq. 10.59-10.60), falling back to
// the simple min/max-of-sound-speed bound used by the original
// HLL paper when either side is vacuum.
func waveSpeeds(rhoL, unL, pL, aL, rhoR, unR, pR, aR, gamma float64) (sL, sR float64) {
	if rhoL <= 0 {
		return unR - aR, unR + aR
	}
	if rhoR <= 0 {
		return unL - aL, unL + aL
	}
	pPVRS := 0.5*(pL+pR) - 0.125*(unR-unL)*(rhoL+rhoR)*(aL+aR)
	pStar := math.Max(0, pPVRS)

	qL := 1.0
	if pStar > pL {
		qL = math.Sqrt(1 + (gamma+1)/(2*gamma)*(pStar/pL-1))
	}
	qR := 1.0
	if pStar > pR {
		qR = math.Sqrt(1 + (gamma+1)/(2*gamma)*(pStar/pR-1))
	}
	sL = unL - aL*qL
	sR = unR + aR*qR
	return
}

// eulerFlux1D returns the (mass, momentum, energy) flux of the 1-D Euler
// equations in the normal direction for a single primitive state.
func eulerFlux1D(rho, u, p, e float64) [3]float64 {
	return [3]float64{rho * u, rho*u*u + p, u * (e + p)}
}

// starState evaluates the HLLC star-region conserved state on one side
// of the contact (Toro eq. 10.39).
func starState(rho, un, p, e, s, sStar float64) (rhoStar, momStar, eStar float64) {
	factor := (s - un) / (s - sStar)
	rhoStar = rho * factor
	momStar = rhoStar * sStar
	eStar = factor * (e + (sStar-un)*(rho*sStar+p/(s-un)))
	return
}
