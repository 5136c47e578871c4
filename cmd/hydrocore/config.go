// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"fmt"

	hydro "github.com/relhydro/hydrocore"
)

// fileConfig is the on-disk TOML representation of a run: a flat,
// field-per-option struct decoded straight into the domain Config
// rather than through a generic key-value store.
type fileConfig struct {
	Gamma     float64 `toml:"gamma"`
	CFL       float64 `toml:"cfl"`
	VMax      float64 `toml:"v_max"`
	Solver    string  `toml:"solver"`
	TNeutral  float64 `toml:"t_neutral"`
	TIonised  float64 `toml:"t_ionised"`
	TShock    float64 `toml:"t_shock"`
	DoHeating bool    `toml:"do_heating"`
	DoCooling bool    `toml:"do_cooling"`
	SafeHydro bool    `toml:"safe_hydro"`
	Debug     bool    `toml:"debug"`

	Boundary struct {
		XLow  string `toml:"x_low"`
		XHigh string `toml:"x_high"`
		YLow  string `toml:"y_low"`
		YHigh string `toml:"y_high"`
		ZLow  string `toml:"z_low"`
		ZHigh string `toml:"z_high"`
	} `toml:"boundary"`

	Grid struct {
		Nx       int        `toml:"nx"`
		Ny       int        `toml:"ny"`
		Nz       int        `toml:"nz"`
		Origin   [3]float64 `toml:"origin"`
		Sides    [3]float64 `toml:"sides"`
		Periodic [3]bool    `toml:"periodic"`
	} `toml:"grid"`

	Bondi struct {
		Enabled                bool    `toml:"enabled"`
		GravitationalParameter float64 `toml:"gm"`
		AmbientDensity         float64 `toml:"ambient_density"`
		AmbientSoundSpeed      float64 `toml:"ambient_sound_speed"`
		NeutralFraction        float64 `toml:"neutral_fraction"`

		// Gamma is the polytropic index of the accretion profile itself,
		// 1 (isothermal) or in (1, 5/3). It is independent of the gas
		// gamma: a gamma=5/3 gas has no transonic Bondi solution, so the
		// boundary inflow defaults to the isothermal closure.
		Gamma float64 `toml:"gamma"`
	} `toml:"bondi"`

	ShockTube struct {
		LeftDensity   float64 `toml:"left_density"`
		LeftPressure  float64 `toml:"left_pressure"`
		RightDensity  float64 `toml:"right_density"`
		RightPressure float64 `toml:"right_pressure"`
	} `toml:"shock_tube"`

	Steps int `toml:"steps"`
}

// defaultFileConfig mirrors hydro.DefaultConfig(), except that the two x
// faces default to outflow, plus the demo's own grid/initial-condition
// defaults, so `hydrocore run` works with no configuration file at all.
func defaultFileConfig() fileConfig {
	var fc fileConfig
	fc.Gamma = 5.0 / 3.0
	fc.CFL = 0.2
	fc.VMax = 1e99
	fc.Solver = "Exact"
	fc.TNeutral = 100
	fc.TIonised = 1e4
	fc.TShock = 3e4
	fc.DoHeating = true
	fc.Boundary.XLow, fc.Boundary.XHigh = "outflow", "outflow"
	fc.Boundary.YLow, fc.Boundary.YHigh = "reflective", "reflective"
	fc.Boundary.ZLow, fc.Boundary.ZHigh = "reflective", "reflective"
	fc.Grid.Nx, fc.Grid.Ny, fc.Grid.Nz = 100, 1, 1
	fc.Grid.Sides = [3]float64{1, 1, 1}
	fc.SafeHydro = true
	fc.Bondi.Gamma = 1
	fc.ShockTube.LeftDensity, fc.ShockTube.LeftPressure = 1, 1
	fc.ShockTube.RightDensity, fc.ShockTube.RightPressure = 0.125, 0.1
	fc.Steps = 100
	return fc
}

// boundaries resolves the six TOML boundary keywords into hydro's
// [6]BoundaryPolicy array.
func (fc fileConfig) boundaries() ([6]hydro.BoundaryPolicy, error) {
	var b [6]hydro.BoundaryPolicy
	keywords := [6]string{
		fc.Boundary.XLow, fc.Boundary.XHigh,
		fc.Boundary.YLow, fc.Boundary.YHigh,
		fc.Boundary.ZLow, fc.Boundary.ZHigh,
	}
	for i, kw := range keywords {
		p, err := hydro.ParseBoundaryPolicy(kw)
		if err != nil {
			return b, fmt.Errorf("config: %w", err)
		}
		b[i] = p
	}
	return b, nil
}
