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
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Physical constants, SI units.
const (
	boltzmannSI  = 1.380649e-23      // J/K
	protonMassSI = 1.67262192369e-27 // kg
)

// Integrator orchestrates one hydro step over a Grid. It
// holds the immutable configuration, the Riemann solver, and the unit
// system derived at Initialise time. Construct with NewIntegrator; the
// zero value is not usable.
type Integrator struct {
	cfg    Config
	solver RiemannSolver
	log    logrus.FieldLogger

	units      UnitSystem
	unitsReady bool

	// SI-derived conversion factors, rescaled into internal units at
	// Initialise time.
	uFac float64 // k_B / ((γ-1) m_H), internal energy-per-mass-per-K
	tFac float64 // m_H / k_B
	pFac float64 // k_B / m_H
	nFac float64 // 1 / m_H

	iteration int
}

// NewIntegrator constructs an Integrator bound to solver. cfg is not
// validated against a grid's periodicity here (that needs the grid's
// Box(), so it happens in Initialise) but solver must be non-nil.
func NewIntegrator(cfg Config, solver RiemannSolver) (*Integrator, error) {
	if solver == nil {
		return nil, &ConfigError{Reason: "no RiemannSolver provided"}
	}
	if cfg.Gamma <= 0 || cfg.CFL <= 0 || cfg.VMax <= 0 {
		return nil, &ConfigError{Reason: "gamma, CFL and maximum velocity must all be positive"}
	}
	logger := cfg.logger()
	return &Integrator{cfg: cfg, solver: solver, log: logger}, nil
}

// logger returns the configured logger, or the standard logrus logger if
// none was set.
func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

func (it *Integrator) isothermal() bool { return it.cfg.Gamma == 1 }

// Initialise derives density/pressure from each
// cell's ionisation variables, caps velocity, sets conserved state,
// derives the unit system from domain averages, and rescales all stored
// state (and the physical conversion factors) into internal units.
func (it *Integrator) Initialise(grid Grid) error {
	_, sides, periodic := grid.Box()
	if err := it.cfg.Validate(periodic); err != nil {
		return err
	}

	n := grid.NumCells()
	if n == 0 {
		return &ConfigError{Reason: "grid has no cells"}
	}

	uFacSI := 0.0
	if !it.isothermal() {
		uFacSI = boltzmannSI / ((it.cfg.Gamma - 1) * protonMassSI)
	}
	tFacSI := protonMassSI / boltzmannSI
	pFacSI := boltzmannSI / protonMassSI
	nFacSI := 1 / protonMassSI

	var sumRho, sumP float64
	densities := make([]float64, n)
	pressures := make([]float64, n)
	velocities := make([]Vec3, n)

	for i := 0; i < n; i++ {
		c := CellID(i)
		ion := grid.Ionisation(c)

		rhoSI := ion.N * protonMassSI
		muInv := 1.0
		if ion.T >= it.cfg.TIonised {
			muInv = 2.0 // doubled: ionised gas has roughly half the mean molecular mass
		}
		pSI := rhoSI * pFacSI * ion.T * muInv

		v := grid.Primitives(c).V
		if speed := v.Norm(); speed > it.cfg.VMax {
			v = v.Scale(it.cfg.VMax / speed)
		}

		densities[i], pressures[i], velocities[i] = rhoSI, pSI, v

		sumRho += rhoSI
		sumP += pSI
	}

	avgL := (sides[0] + sides[1] + sides[2]) / 3
	avgRho := sumRho / float64(n)
	avgP := sumP / float64(n)
	units := NewUnitSystem(avgL, avgRho, avgP)
	it.units = units
	it.unitsReady = true

	it.uFac = uFacSI / units.InternalUnit(Velocity) / units.InternalUnit(Velocity)
	it.tFac = tFacSI * units.InternalUnit(Velocity) * units.InternalUnit(Velocity)
	it.pFac = pFacSI / (units.InternalUnit(Pressure) / units.InternalUnit(Density))
	it.nFac = nFacSI * units.InternalUnit(Density)

	for i := 0; i < n; i++ {
		c := CellID(i)
		rho := units.ToInternal(Density, densities[i])
		p := units.ToInternal(Pressure, pressures[i])
		v := velocities[i].Scale(units.SIUnit(Velocity))
		vol := units.ToInternal(Volume, grid.Volume(c))

		mass := rho * vol
		momentum := v.Scale(mass)
		var energy float64
		if it.isothermal() {
			energy = 0.5 * momentum.Dot(v)
		} else {
			energy = vol*p/(it.cfg.Gamma-1) + 0.5*momentum.Dot(v)
		}

		grid.SetPrimitives(c, Primitives{Rho: rho, V: v, P: p})
		grid.SetConserved(c, Conserved{Mass: mass, Momentum: momentum, Energy: energy})
		grid.ZeroFluxDelta(c)
	}

	vMaxInternal := units.ToInternal(Velocity, it.cfg.VMax)
	it.cfg.VMax = vMaxInternal

	grid.SetGridVelocity(it.cfg.Gamma, units.SIUnit(Velocity))
	return nil
}

// soundSpeed returns a cell's internal-unit sound speed.
func (it *Integrator) soundSpeed(p Primitives, ion Ionisation) float64 {
	if !it.isothermal() {
		if p.Rho > 0 {
			return math.Sqrt(it.cfg.Gamma * p.P / p.Rho)
		}
		return math.SmallestNonzeroFloat64
	}
	mu := ion.Mu()
	return math.Sqrt(it.pFac * ion.T / mu)
}

// MaxTimestep returns the CFL-limited stable timestep, in SI units.
func (it *Integrator) MaxTimestep(grid Grid) (float64, error) {
	if !it.unitsReady {
		return 0, &ConfigError{Reason: "MaxTimestep called before Initialise"}
	}
	n := grid.NumCells()
	dtMin := math.Inf(1)
	for i := 0; i < n; i++ {
		c := CellID(i)
		p := grid.Primitives(c)
		ion := grid.Ionisation(c)
		cs := it.soundSpeed(p, ion)
		v := p.V.Norm()
		vol := it.units.ToInternal(Volume, grid.Volume(c))
		r := math.Cbrt(3 * vol / (4 * math.Pi))
		dt := r / (cs + v)
		if dt < dtMin {
			dtMin = dt
		}
	}
	dtInternal := it.cfg.CFL * dtMin
	return it.units.ToSI(Time, dtInternal), nil
}

// parallelOverCells partitions [0,n) across runtime.GOMAXPROCS(0)
// goroutines, each processing a disjoint stride of cell indices: no
// locks are needed because each worker touches only its own cells'
// storage.
func parallelOverCells(n int, f func(CellID)) {
	nprocs := runtime.GOMAXPROCS(0)
	if nprocs > n {
		nprocs = n
	}
	if nprocs <= 1 {
		for i := 0; i < n; i++ {
			f(CellID(i))
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < n; i += nprocs {
				f(CellID(i))
			}
		}(pp)
	}
	wg.Wait()
}

// DoStep advances the grid state by one hydro step: gradient pass,
// Hancock predictor, flux pass, radiation source term, conservative
// update, grid motion and primitive recovery. dt is in SI units.
func (it *Integrator) DoStep(grid Grid, dt float64) error {
	if !it.unitsReady {
		return &ConfigError{Reason: "DoStep called before Initialise"}
	}
	start := time.Now()
	dtInternal := it.units.ToInternal(Time, dt)
	n := grid.NumCells()

	// Gradient pass (parallel).
	grid.ResetAccessFlags()
	var gradErr errOnce
	parallelOverCells(n, func(c CellID) {
		if err := it.computeGradients(grid, c); err != nil {
			gradErr.set(err)
		}
	})
	if err := gradErr.get(); err != nil {
		return err
	}

	// Hancock predictor (serial).
	for i := 0; i < n; i++ {
		it.hancockPredict(grid, CellID(i), dtInternal)
	}

	// Flux pass (parallel).
	grid.ResetAccessFlags()
	var fluxErr errOnce
	parallelOverCells(n, func(c CellID) {
		if err := it.accumulateFaceFluxes(grid, c, dtInternal); err != nil {
			fluxErr.set(err)
		}
	})
	if err := fluxErr.get(); err != nil {
		return err
	}
	if it.cfg.Debug && !grid.CheckAccess() {
		return newContractViolation("flux pass access check", nil)
	}

	// Radiation source term (serial).
	if it.cfg.DoHeating || it.cfg.DoCooling {
		for i := 0; i < n; i++ {
			it.radiativeSourceTerm(grid, CellID(i))
		}
	}

	// Conservative update (serial).
	for i := 0; i < n; i++ {
		if err := it.conservativeUpdate(grid, CellID(i), dtInternal); err != nil {
			return err
		}
	}

	// Grid motion.
	if err := grid.Evolve(dt); err != nil {
		return err
	}

	// Primitive recovery (serial).
	for i := 0; i < n; i++ {
		it.recoverPrimitives(grid, CellID(i))
	}

	// Re-derive grid-motion velocities.
	grid.SetGridVelocity(it.cfg.Gamma, it.units.SIUnit(Velocity))

	it.iteration++
	it.log.WithFields(logrus.Fields{
		"iteration": it.iteration,
		"dt_s":      dt,
		"walltime":  time.Since(start),
	}).Info("completed hydro step")
	return nil
}

// errOnce lets concurrent workers report the first error without a data race.
type errOnce struct {
	mu  sync.Mutex
	err error
}

func (e *errOnce) set(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

func (e *errOnce) get() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// computeGradients evaluates a cell-centered Green-Gauss gradient
// estimate for ρ, v and p from its neighbor faces, resolving boundary
// faces through the boundary oracle.
func (it *Integrator) computeGradients(grid Grid, c CellID) error {
	p := grid.Primitives(c)
	vol := it.units.ToInternal(Volume, grid.Volume(c))
	midpoint := grid.Midpoint(c)

	var g Gradients
	for _, face := range grid.Neighbors(c) {
		var rightP Primitives
		if face.Neighbor != NoNeighbor {
			rightP = grid.Primitives(face.Neighbor)
		} else {
			leftG := grid.Gradients(c)
			right, err := it.cfg.ResolveBoundary(p, leftG, midpoint, face)
			if err != nil {
				return err
			}
			rightP = right.P
		}

		areaInternal := it.units.ToInternal(SurfaceArea, face.Area)
		normal := face.Normal

		phiFace := 0.5 * (p.Rho + rightP.Rho)
		g.Rho = g.Rho.Add(normal.Scale(phiFace * areaInternal))
		for i := 0; i < 3; i++ {
			phiFaceV := 0.5 * (p.V[i] + rightP.V[i])
			grad := velocityGradComponentAddr(&g, i)
			*grad = grad.Add(normal.Scale(phiFaceV * areaInternal))
		}
		phiFaceP := 0.5 * (p.P + rightP.P)
		g.P = g.P.Add(normal.Scale(phiFaceP * areaInternal))
	}

	if vol > 0 {
		g.Rho = g.Rho.Scale(1 / vol)
		g.Vx = g.Vx.Scale(1 / vol)
		g.Vy = g.Vy.Scale(1 / vol)
		g.Vz = g.Vz.Scale(1 / vol)
		g.P = g.P.Scale(1 / vol)
	}
	grid.SetGradients(c, g)
	return nil
}

func velocityGradComponentAddr(g *Gradients, i int) *Vec3 {
	switch i {
	case 0:
		return &g.Vx
	case 1:
		return &g.Vy
	default:
		return &g.Vz
	}
}

// hancockPredict is the serial half-step time-centring of primitives
// ahead of the flux pass.
func (it *Integrator) hancockPredict(grid Grid, c CellID, dt float64) {
	p := grid.Primitives(c)
	if p.Rho <= 0 {
		return
	}
	g := grid.Gradients(c)
	divV := g.Divergence()
	a := grid.Acceleration(c)

	rho := p.Rho - 0.5*dt*(p.Rho*divV+p.V.Dot(g.Rho))

	pressureAccel := g.P.Scale(1 / p.Rho).Sub(a)
	vNew := p.V.Sub(p.V.Scale(0.5 * dt * divV)).Sub(pressureAccel.Scale(0.5 * dt))

	pPred := p.P - 0.5*dt*(it.cfg.Gamma*p.P*divV+p.V.Dot(g.P))

	grid.SetPrimitives(c, Primitives{Rho: rho, V: vNew, P: pPred})
}

// accumulateFaceFluxes enumerates c's faces, resolves the right state
// of each, runs the flux kernel, and accumulates the result into c's
// flux delta.
func (it *Integrator) accumulateFaceFluxes(grid Grid, c CellID, dt float64) error {
	left := grid.Primitives(c)
	leftG := grid.Gradients(c)
	leftConserved := grid.Conserved(c)
	midpoint := grid.Midpoint(c)

	for _, face := range grid.Neighbors(c) {
		var right Primitives
		var rightG Gradients
		var rightConserved *Conserved

		if face.Neighbor != NoNeighbor {
			right = grid.Primitives(face.Neighbor)
			rightG = grid.Gradients(face.Neighbor)
			rc := grid.Conserved(face.Neighbor)
			rightConserved = &rc
		} else {
			state, err := it.cfg.ResolveBoundary(left, leftG, midpoint, face)
			if err != nil {
				return err
			}
			right, rightG = state.P, state.G
			// Flux-limit quantities at a boundary face reuse the left
			// cell's limits.
			rightConserved = &leftConserved
		}

		offsetInternal := face.Offset.Scale(it.units.SIUnit(Length))
		r := offsetInternal.Norm()
		if r == 0 {
			continue
		}
		dLInternal := face.FaceMidpoint.Sub(midpoint).Scale(it.units.SIUnit(Length))
		dRatioL := dLInternal.Norm() / r
		dRInternal := dLInternal.Sub(offsetInternal)
		dRatioR := dRInternal.Norm() / r

		frameVelocity := grid.InterfaceVelocity(c, face).Scale(it.units.SIUnit(Velocity))

		delta, err := ComputeFaceFlux(it.cfg, it.solver, FaceInputs{
			Left: left, Right: right,
			LeftGrad: leftG, RightGrad: rightG,
			LeftConserved: leftConserved, RightConserved: rightConserved,
			DL: dLInternal, DR: dRInternal,
			DRatioL: dRatioL, DRatioR: dRatioR,
			Normal:        face.Normal,
			FrameVelocity: frameVelocity,
			Area:          it.units.ToInternal(SurfaceArea, face.Area),
			Dt:            dt,
			Isothermal:    it.isothermal(),
		})
		if err != nil {
			return err
		}
		grid.AddFluxDelta(c, delta)
	}
	return nil
}

// radiativeSourceTerm relaxes a cell's thermal energy toward the
// target temperature set by its ionisation state, unless the cell is
// shock-heated.
func (it *Integrator) radiativeSourceTerm(grid Grid, c CellID) {
	ion := grid.Ionisation(c)
	p := grid.Primitives(c)
	conserved := grid.Conserved(c)
	_, energyBuf := grid.SourceTerms(c)

	tTarget := it.cfg.TIonised*(1-ion.XH) + it.cfg.TNeutral*ion.XH
	if it.isothermal() || p.Rho == 0 {
		grid.SetIonisation(c, tTarget, ion.N)
		return
	}

	mu := ion.Mu()
	tOld := mu * it.tFac * p.P / (p.Rho + math.SmallestNonzeroFloat64)

	if energyBuf > 0 || tOld > it.cfg.TShock {
		return // shock-heated cell: the radiation term leaves it alone
	}

	uFacPrime := 2 * it.uFac / (1 + ion.XH)
	deltaE := conserved.Mass * uFacPrime * (tTarget - tOld)

	if it.cfg.DoHeating && deltaE > 0 {
		// C ← C − ΔC: accumulating −ΔE here makes the conservative update
		// add ΔE back into the cell's energy.
		grid.AddFluxDelta(c, Conserved{Energy: -deltaE})
	}
	if it.cfg.DoCooling && deltaE < 0 {
		floor := 2 * uFacPrime * (it.cfg.TNeutral - it.cfg.TIonised) * conserved.Mass
		if deltaE < floor {
			deltaE = floor
		}
		grid.AddFluxDelta(c, Conserved{Energy: -0.5 * deltaE})
	}
}

// conservativeUpdate folds the accumulated flux delta, gravity and the
// external source buffers into the conserved state.
func (it *Integrator) conservativeUpdate(grid Grid, c CellID, dt float64) error {
	conserved := grid.Conserved(c)
	delta := grid.FluxDelta(c)
	a := grid.Acceleration(c)
	energyRate, energy := grid.SourceTerms(c)

	updated := conserved.Sub(delta)
	if updated.Mass < 0 {
		if !it.cfg.SafeHydro {
			return newContractViolation("conservative update", map[string]float64{"mass": updated.Mass})
		}
		updated.Mass = 0
	}

	updated.Momentum = updated.Momentum.Add(a.Scale(updated.Mass * dt))
	updated.Energy += dt * updated.Momentum.Dot(a)
	updated.Energy += dt*energyRate + energy
	grid.ClearSourceTerms(c)

	if updated.Energy < 0 {
		updated.Energy = 0
	}
	if !it.isothermal() && updated.Energy == 0 {
		updated.Momentum = Vec3{}
	}

	grid.SetConserved(c, updated)
	grid.ZeroFluxDelta(c)
	return nil
}

// recoverPrimitives rebuilds the primitive state from the updated
// conserved state, enforcing the velocity and sound-speed caps, and
// writes the new temperature and number density back to the ionisation
// variables.
func (it *Integrator) recoverPrimitives(grid Grid, c CellID) {
	vol := it.units.ToInternal(Volume, grid.Volume(c))
	if vol <= 0 {
		return
	}
	conserved := grid.Conserved(c)
	ion := grid.Ionisation(c)

	if conserved.Mass <= 0 {
		grid.SetPrimitives(c, Primitives{})
		grid.SetIonisation(c, 0, 0)
		return
	}

	rho := conserved.Mass / vol
	v := conserved.Momentum.Scale(1 / conserved.Mass)

	var p, T float64
	if !it.isothermal() {
		p = (it.cfg.Gamma - 1) * (conserved.Energy - 0.5*v.Dot(conserved.Momentum)) / vol
		mu := ion.Mu()
		T = mu * it.tFac * p / rho
	} else {
		T = ion.T
		mu := ion.Mu()
		p = it.pFac * rho * T / mu
	}

	if it.cfg.SafeHydro && (rho <= 0 || p <= 0) {
		rho, v, p, T = 0, Vec3{}, 0, 0
	}

	if speed := v.Norm(); speed > it.cfg.VMax {
		v = v.Scale(it.cfg.VMax / speed)
	}
	cs := it.soundSpeed(Primitives{Rho: rho, P: p}, ion)
	if cs > it.cfg.VMax {
		p *= (it.cfg.VMax / cs) * (it.cfg.VMax / cs)
	}

	grid.SetPrimitives(c, Primitives{Rho: rho, V: v, P: p})
	nH := rho * it.nFac
	if !it.isothermal() {
		grid.SetIonisation(c, T, nH)
	} else {
		grid.SetIonisation(c, ion.T, nH)
	}
}

// Diagnostics is a point-in-time snapshot of domain-wide conserved
// quantities, in SI units, used by the conservation-law test properties
// and by operators monitoring a long-running simulation.
type Diagnostics struct {
	TotalMass     float64
	TotalMomentum Vec3
	TotalEnergy   float64
}

// Diagnostics sums Conserved over every cell and converts the result to
// SI units.
func (it *Integrator) Diagnostics(grid Grid) Diagnostics {
	var sum Conserved
	n := grid.NumCells()
	for i := 0; i < n; i++ {
		sum = sum.Add(grid.Conserved(CellID(i)))
	}
	if !it.unitsReady {
		return Diagnostics{TotalMass: sum.Mass, TotalMomentum: sum.Momentum, TotalEnergy: sum.Energy}
	}
	return Diagnostics{
		TotalMass:     it.units.ToSI(Mass, sum.Mass),
		TotalMomentum: sum.Momentum.Scale(it.units.InternalUnit(Momentum)),
		TotalEnergy:   it.units.ToSI(Energy, sum.Energy),
	}
}

// String renders a one-line summary, used by cmd/hydrocore's progress log.
func (d Diagnostics) String() string {
	return fmt.Sprintf("mass=%.6g momentum=%.6g energy=%.6g", d.TotalMass, d.TotalMomentum.Norm(), d.TotalEnergy)
}
