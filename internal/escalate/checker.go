// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package escalate

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"

	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/smtlib"
	"github.com/escalint/escalint/internal/solver"
)

// Free constant names in the escalation query.
const (
	pathConst = "path"
	capConst  = "cap"
)

// Witness is a concrete (path, capability) pair the proposed policy
// admits and the current one does not.
type Witness struct {
	Path       string `json:"path"`
	Capability string `json:"capability"`
}

// Diagnostics carries the textual rendering of both policy formulas.
type Diagnostics struct {
	CurrentFormula string `json:"currentFormulaText"`
	NewFormula     string `json:"newFormulaText"`
}

// Result is the outcome of one escalation check.
type Result struct {
	// CheckID identifies the check in logs and diagnostics.
	CheckID ulid.ULID
	// Escalation is true when a witness exists.
	Escalation bool
	// Witness is present exactly when Escalation is true.
	Witness *Witness
	// Diagnostics is populated when the checker is asked for it.
	Diagnostics *Diagnostics
	// Duration is the wall-clock time of the whole check.
	Duration time.Duration
}

// Checker runs escalation checks. Each call owns one solver process
// end-to-end; a Checker is safe for concurrent use because calls share
// no mutable state.
type Checker struct {
	solver      solver.Config
	diagnostics bool
	logger      *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithSolver selects the solver process configuration.
func WithSolver(cfg solver.Config) Option {
	return func(c *Checker) { c.solver = cfg }
}

// WithDiagnostics makes results carry both formula texts.
func WithDiagnostics(enabled bool) Option {
	return func(c *Checker) { c.diagnostics = enabled }
}

// WithLogger sets the checker's logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Check decides whether the proposed policy admits any capability on
// any path that the current policy rejects. The query
// new-and-not-current is satisfiable exactly when such a pair exists;
// unsat is a proof over the whole alphabet that none does. An unknown
// verdict surfaces as a SOLVER_UNKNOWN error, never as a safe verdict.
func (c *Checker) Check(ctx context.Context, current, proposed policy.Policy) (Result, error) {
	tracer := otel.Tracer("escalint/escalate")
	ctx, span := tracer.Start(ctx, "escalate.check")
	defer span.End()

	start := time.Now()
	res := Result{CheckID: ulid.Make()}

	path := smtlib.Symbol(pathConst)
	cap := smtlib.Symbol(capConst)

	// Input errors are reported before any solver process is spawned.
	phiCurrent, err := BuildFormula(current, path, cap)
	if err != nil {
		return Result{}, oops.With("policy", "current").Wrap(err)
	}
	phiNew, err := BuildFormula(proposed, path, cap)
	if err != nil {
		return Result{}, oops.With("policy", "new").Wrap(err)
	}

	if c.diagnostics {
		res.Diagnostics = &Diagnostics{
			CurrentFormula: phiCurrent.String(),
			NewFormula:     phiNew.String(),
		}
	}

	c.logger.DebugContext(ctx, "escalation check started",
		"check_id", res.CheckID.String(),
		"current_rules", len(current),
		"new_rules", len(proposed),
	)

	proc, err := solver.Start(ctx, c.solver)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = proc.Close() }()

	err = proc.Send(
		"(set-option :produce-models true)",
		"(set-logic QF_S)",
		smtlib.DeclareConst(pathConst, smtlib.SortString),
		smtlib.DeclareConst(capConst, smtlib.SortString),
		smtlib.Assert(phiNew),
		smtlib.Assert(smtlib.Not(phiCurrent)),
	)
	if err != nil {
		return Result{}, err
	}

	verdict, err := proc.CheckSat()
	if err != nil {
		return Result{}, err
	}

	res.Duration = time.Since(start)

	if verdict == solver.Unsat {
		c.logger.InfoContext(ctx, "no escalation",
			"check_id", res.CheckID.String(),
			"duration", res.Duration,
		)
		return res, nil
	}

	values, err := proc.Values(pathConst, capConst)
	if err != nil {
		return Result{}, err
	}
	witness := Witness{
		Path:       values[pathConst],
		Capability: values[capConst],
	}

	if err := c.confirmWitness(current, proposed, witness); err != nil {
		return Result{}, err
	}

	res.Escalation = true
	res.Witness = &witness
	res.Duration = time.Since(start)

	c.logger.InfoContext(ctx, "escalation found",
		"check_id", res.CheckID.String(),
		"path", witness.Path,
		"capability", witness.Capability,
		"duration", res.Duration,
	)
	return res, nil
}

// confirmWitness replays the solver's model against the reference
// evaluator. A disagreement means the formula encoding and the policy
// semantics have diverged, which is an implementation defect, not a
// verdict.
func (c *Checker) confirmWitness(current, proposed policy.Policy, w Witness) error {
	currentEval, err := policy.NewEvaluator(current)
	if err != nil {
		return err
	}
	proposedEval, err := policy.NewEvaluator(proposed)
	if err != nil {
		return err
	}

	cap := policy.Capability(w.Capability)
	if !proposedEval.Allows(w.Path, cap) || currentEval.Allows(w.Path, cap) {
		return oops.
			Code(solver.ErrCodeInternal).
			With("path", w.Path).
			With("capability", w.Capability).
			Errorf("solver witness disagrees with the reference evaluator")
	}
	return nil
}
