// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the escalint CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalint",
		Short: "escalint - privilege-escalation checker for secrets ACL policies",
		Long: `escalint proves or refutes that a proposed secrets ACL policy grants
some (path, capability) pair the current policy does not. The decision
runs through an SMT solver over strings and regular expressions, so a
"no escalation" verdict is a proof over the whole path alphabet, and an
escalation comes with a concrete witness.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
