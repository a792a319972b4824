// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/escalint/escalint/internal/config"
	"github.com/escalint/escalint/internal/escalate"
	"github.com/escalint/escalint/internal/logging"
	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/policy/hcl"
)

// errEscalationFound distinguishes a found escalation from a failed
// check in the process exit code.
var errEscalationFound = errors.New("escalation found")

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	var diagnostics bool

	cmd := &cobra.Command{
		Use:   "check CURRENT NEW",
		Short: "Check whether NEW escalates privileges over CURRENT",
		Long: `Check whether the NEW policy admits any (path, capability) pair the
CURRENT policy does not. Policy files may be in the deployed source
syntax (.hcl), JSON (.json), or YAML (.yaml, .yml).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logging.SetDefault(logging.Options{
				Service: "escalint",
				Version: version,
				Format:  cfg.Log.Format,
				Level:   cfg.Log.Level,
			})

			current, err := loadPolicyFile(args[0])
			if err != nil {
				return err
			}
			proposed, err := loadPolicyFile(args[1])
			if err != nil {
				return err
			}

			checker := escalate.NewChecker(
				escalate.WithSolver(cfg.SolverProcess()),
				escalate.WithDiagnostics(diagnostics),
			)
			res, err := checker.Check(cmd.Context(), current, proposed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if diagnostics && res.Diagnostics != nil {
				fmt.Fprintln(out, "current formula:", res.Diagnostics.CurrentFormula)
				fmt.Fprintln(out, "new formula:    ", res.Diagnostics.NewFormula)
			}

			if !res.Escalation {
				fmt.Fprintln(out, "no escalation: every grant of the new policy is already granted")
				return nil
			}

			fmt.Fprintf(out, "escalation: the new policy grants %q on %q; the current policy does not\n",
				res.Witness.Capability, res.Witness.Path)
			return errEscalationFound
		},
	}

	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print both policy formulas")
	addConfigFlags(cmd)

	return cmd
}

// loadPolicyFile reads one policy snapshot, picking the parser by file
// extension.
func loadPolicyFile(path string) (policy.Policy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.
			Code(policy.ErrCodeParse).
			With("path", path).
			Wrapf(err, "read policy file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return policy.ParseJSON(data)
	case ".yaml", ".yml":
		return policy.ParseYAML(data)
	default:
		return hcl.Parse(string(data))
	}
}
