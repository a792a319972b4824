// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/escalint/escalint/internal/config"
	"github.com/escalint/escalint/internal/solver"
)

// addConfigFlags registers the flags the koanf posflag provider maps
// onto config keys. Flag defaults mirror the built-in defaults so an
// unset flag never shadows a config-file value.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("solver.command", solver.DefaultCommand, "SMT solver binary")
	f.StringSlice("solver.args", solver.DefaultArgs, "SMT solver arguments")
	f.Duration("solver.timeout", solver.DefaultTimeout, "solver timeout per check")
	f.String("log.format", config.DefaultLogFormat, "log format (json or text)")
	f.String("log.level", "info", "log level (debug, info, warn, error)")
}

// addServeFlags registers the flags specific to the serve command.
func addServeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("listen.addr", config.DefaultListenAddr, "check API listen address")
	f.String("metrics.addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
}
