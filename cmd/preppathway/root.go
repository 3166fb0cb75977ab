// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the PrepPathway CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preppathway",
		Short: "PrepPathway - placement interview preparation platform",
		Long: `PrepPathway serves the placement interview preparation API:
account signup and login, sessions, the prep resource catalog,
contact intake, and the dashboard summary.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}
