// Copyright © 2024 the hydrocore authors.
// This file is part of hydrocore.
//
// hydrocore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Command hydrocore is a command-line interface for the radiation
// hydrodynamics core.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := root().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

// root builds the top-level cobra command, at a scale appropriate to a
// single-binary core demo instead of a full cloud/web-server CLI.
func root() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "hydrocore",
		Short: "A radiation-hydrodynamics integrator core.",
		Long: `hydrocore runs a MUSCL-Hancock finite-volume hydrodynamics
integration. Configuration can be supplied with a TOML file via --config;
any option not present in the file falls back to its documented default.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")

	cmd.AddCommand(versionCmd())
	cmd.AddCommand(runCmd(&configPath))
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version number",
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("hydrocore v0.1.0")
		},
	}
}
