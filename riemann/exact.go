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

	hydro "github.com/relhydro/hydrocore"
)

// Exact is the iterative exact Riemann solver for the Euler equations
// (Toro, "Riemann Solvers and Numerical Methods for Fluid Dynamics",
// ch. 4): it Newton-iterates for the star-region pressure and velocity,
// then samples the similarity solution at the interface to build the
// flux. It never needs to be constructed directly; use New("Exact").
type Exact struct {
	Gamma     float64
	MaxIter   int
	Tolerance float64
}

func (s Exact) Name() string { return "Exact" }

func (s Exact) maxIter() int {
	if s.MaxIter > 0 {
		return s.MaxIter
	}
	return 20
}

func (s Exact) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return 1e-8
}

func (s Exact) SolveForFlux(left, right hydro.Primitives, normal, frameVelocity hydro.Vec3) (float64, hydro.Vec3, float64, error) {
	gamma := s.Gamma

	unL, utL := faceFrame(left.V, frameVelocity, normal)
	unR, utR := faceFrame(right.V, frameVelocity, normal)

	rhoL, pL := left.Rho, left.P
	rhoR, pR := right.Rho, right.P

	if rhoL <= 0 && rhoR <= 0 {
		return 0, hydro.Vec3{}, 0, nil
	}
	if rhoL <= 0 {
		return s.vacuumFlux(right, unR, utR, frameVelocity, normal, gamma, +1)
	}
	if rhoR <= 0 {
		return s.vacuumFlux(left, unL, utL, frameVelocity, normal, gamma, -1)
	}

	aL := soundSpeed(gamma, rhoL, pL)
	aR := soundSpeed(gamma, rhoR, pR)

	if 2*(aL+aR)/(gamma-1) <= unR-unL {
		// Vacuum forms between the two states (Toro §4.2): no flux crosses
		// the expanding vacuum region at the interface.
		return 0, hydro.Vec3{}, 0, nil
	}

	pStar, uStar := s.solveStar(rhoL, unL, pL, aL, rhoR, unR, pR, aR)

	var rhoFace, uFace, pFace float64
	var tangential hydro.Vec3
	if uStar >= 0 {
		rhoFace, uFace, pFace = s.sampleLeft(rhoL, unL, pL, aL, pStar, uStar, gamma)
		tangential = utL
	} else {
		rhoFace, uFace, pFace = s.sampleRight(rhoR, unR, pR, aR, pStar, uStar, gamma)
		tangential = utR
	}

	return conservedFlux(rhoFace, uFace, pFace, tangential, frameVelocity, normal, gamma)
}

// vacuumFlux handles a face where one side is already vacuum: the
// non-vacuum side expands into it via its own rarefaction, and the
// interface state is sampled from that single-sided rarefaction fan
// (Toro §4.2, "vacuum left/right state" case). sign is -1 when the
// vacuum is on the right (expansion runs in +normal direction) and +1
// when the vacuum is on the left.
func (s Exact) vacuumFlux(nonVacuum hydro.Primitives, un float64, ut, frameVelocity, normal hydro.Vec3, gamma float64, sign float64) (float64, hydro.Vec3, float64, error) {
	rho, p := nonVacuum.Rho, nonVacuum.P
	if rho <= 0 {
		return 0, hydro.Vec3{}, 0, nil
	}
	a := soundSpeed(gamma, rho, p)
	sHead := un + sign*a
	sTail := un - sign*2*a/(gamma-1)

	var rhoFace, uFace, pFace float64
	switch {
	case sign < 0 && sHead >= 0: // left state: the whole fan lies right of the face
		rhoFace, uFace, pFace = rho, un, p
	case sign > 0 && sHead <= 0: // right state: the whole fan lies left of the face
		rhoFace, uFace, pFace = rho, un, p
	case (sign < 0 && sTail <= 0) || (sign > 0 && sTail >= 0):
		rhoFace, uFace, pFace = 0, 0, 0
	default:
		c := 2/(gamma+1) - sign*(gamma-1)/((gamma+1)*a)*un
		rhoFace = rho * math.Pow(c, 2/(gamma-1))
		uFace = 2 / (gamma + 1) * (-sign*a + (gamma-1)/2*un)
		pFace = p * math.Pow(c, 2*gamma/(gamma-1))
	}
	return conservedFlux(rhoFace, uFace, pFace, ut, frameVelocity, normal, gamma)
}

// solveStar Newton-iterates for the star-region pressure and velocity
// (Toro §4.3.2/4.5), starting from the two-rarefaction approximation.
func (s Exact) solveStar(rhoL, unL, pL, aL, rhoR, unR, pR, aR float64) (pStar, uStar float64) {
	gamma := s.Gamma

	guess := twoRarefactionGuess(gamma, rhoL, unL, pL, aL, rhoR, unR, pR, aR)
	if guess <= 0 {
		guess = 1e-6
	}
	p := guess
	for iter := 0; iter < s.maxIter(); iter++ {
		fL, fLd := pressureFunction(gamma, p, rhoL, pL, aL)
		fR, fRd := pressureFunction(gamma, p, rhoR, pR, aR)
		f := fL + fR + (unR - unL)
		fd := fLd + fRd
		if fd == 0 {
			break
		}
		dp := f / fd
		pNew := p - dp
		if pNew < 1e-10 {
			pNew = 1e-10
		}
		if math.Abs(pNew-p) < s.tolerance()*0.5*(pNew+p) {
			p = pNew
			break
		}
		p = pNew
	}
	fL, _ := pressureFunction(gamma, p, rhoL, pL, aL)
	fR, _ := pressureFunction(gamma, p, rhoR, pR, aR)
	return p, 0.5*(unL+unR) + 0.5*(fR-fL)
}

// pressureFunction evaluates one side's contribution f_K(p) to the
// pressure equation and its derivative (Toro eq. 4.6-4.7/4.37).
func pressureFunction(gamma, p, rhoK, pK, aK float64) (f, fd float64) {
	if p > pK {
		a := 2 / ((gamma + 1) * rhoK)
		b := (gamma - 1) / (gamma + 1) * pK
		f = (p - pK) * math.Sqrt(a/(p+b))
		fd = math.Sqrt(a/(b+p)) * (1 - (p-pK)/(2*(b+p)))
		return
	}
	f = 2 * aK / (gamma - 1) * (math.Pow(p/pK, (gamma-1)/(2*gamma)) - 1)
	fd = 1 / (rhoK * aK) * math.Pow(p/pK, -(gamma+1)/(2*gamma))
	return
}

// twoRarefactionGuess is the TRRS initial guess for the Newton solve
// (Toro eq. 4.46/4.47).
func twoRarefactionGuess(gamma, rhoL, unL, pL, aL, rhoR, unR, pR, aR float64) float64 {
	num := aL + aR - (gamma-1)/2*(unR-unL)
	den := aL/math.Pow(pL, (gamma-1)/(2*gamma)) + aR/math.Pow(pR, (gamma-1)/(2*gamma))
	return math.Pow(num/den, 2*gamma/(gamma-1))
}

// sampleLeft evaluates the similarity solution at x/t=0 when the contact
// lies at or to the right of the face (uStar >= 0), i.e. the sampled
// state lies in or behind the left wave (Toro §4.5).
func (s Exact) sampleLeft(rhoL, unL, pL, aL, pStar, uStar, gamma float64) (rho, u, p float64) {
	if pStar > pL {
		// Left shock.
		pRatio := pStar / pL
		sL := unL - aL*math.Sqrt((gamma+1)/(2*gamma)*pRatio+(gamma-1)/(2*gamma))
		if sL >= 0 {
			return rhoL, unL, pL
		}
		rhoStar := rhoL * (pRatio + (gamma-1)/(gamma+1)) / (pRatio*(gamma-1)/(gamma+1) + 1)
		return rhoStar, uStar, pStar
	}
	// Left rarefaction.
	aStar := aL * math.Pow(pStar/pL, (gamma-1)/(2*gamma))
	sHead := unL - aL
	sTail := uStar - aStar
	switch {
	case sHead >= 0:
		return rhoL, unL, pL
	case sTail <= 0:
		rhoStar := rhoL * math.Pow(pStar/pL, 1/gamma)
		return rhoStar, uStar, pStar
	default:
		c := 2/(gamma+1) + (gamma-1)/((gamma+1)*aL)*unL
		rhoFan := rhoL * math.Pow(c, 2/(gamma-1))
		uFan := 2 / (gamma + 1) * (aL + (gamma-1)/2*unL)
		pFan := pL * math.Pow(c, 2*gamma/(gamma-1))
		return rhoFan, uFan, pFan
	}
}

// sampleRight is sampleLeft's mirror image for uStar < 0.
func (s Exact) sampleRight(rhoR, unR, pR, aR, pStar, uStar, gamma float64) (rho, u, p float64) {
	if pStar > pR {
		pRatio := pStar / pR
		sR := unR + aR*math.Sqrt((gamma+1)/(2*gamma)*pRatio+(gamma-1)/(2*gamma))
		if sR <= 0 {
			return rhoR, unR, pR
		}
		rhoStar := rhoR * (pRatio + (gamma-1)/(gamma+1)) / (pRatio*(gamma-1)/(gamma+1) + 1)
		return rhoStar, uStar, pStar
	}
	aStar := aR * math.Pow(pStar/pR, (gamma-1)/(2*gamma))
	sHead := unR + aR
	sTail := uStar + aStar
	switch {
	case sHead <= 0:
		return rhoR, unR, pR
	case sTail >= 0:
		rhoStar := rhoR * math.Pow(pStar/pR, 1/gamma)
		return rhoStar, uStar, pStar
	default:
		c := 2/(gamma+1) - (gamma-1)/((gamma+1)*aR)*unR
		rhoFan := rhoR * math.Pow(c, 2/(gamma-1))
		uFan := 2 / (gamma + 1) * (-aR + (gamma-1)/2*unR)
		pFan := pR * math.Pow(c, 2*gamma/(gamma-1))
		return rhoFan, uFan, pFan
	}
}

// conservedFlux computes the normal-frame Euler flux for a sampled
// primitive interface state, then re-expresses the momentum flux in the
// lab frame.
func conservedFlux(rho, un float64, p float64, tangential, frameVelocity, normal hydro.Vec3, gamma float64) (float64, hydro.Vec3, float64, error) {
	if rho <= 0 {
		return 0, hydro.Vec3{}, 0, nil
	}
	v := composeVelocity(un, tangential, frameVelocity, normal)
	massFlux := rho * un
	speedSq := v.Dot(v)
	e := internalEnergyDensity(gamma, p) + 0.5*rho*speedSq
	momFlux := v.Scale(massFlux).Add(normal.Scale(p))
	energyFlux := un * (e + p)
	return massFlux, momFlux, energyFlux, nil
}
