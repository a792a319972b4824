// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/escalint/escalint/internal/config"
	"github.com/escalint/escalint/internal/escalate"
	"github.com/escalint/escalint/internal/logging"
	"github.com/escalint/escalint/internal/observability"
	"github.com/escalint/escalint/internal/server"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the check API over HTTP",
		Long: `Serve the escalation check API (POST /v1/check) plus metrics and
health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	addConfigFlags(cmd)
	addServeFlags(cmd)

	return cmd
}

// runServe starts the servers and blocks until the context is
// cancelled or a termination signal arrives.
func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault(logging.Options{
		Service: "escalint",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})

	checker := escalate.NewChecker(
		escalate.WithSolver(cfg.SolverProcess()),
	)

	var metrics *observability.Metrics
	var obs *observability.Server
	ready := func() bool { return true }
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, ready)
		if err := obs.Start(); err != nil {
			return err
		}
		metrics = obs.Metrics()
	}

	srv := server.NewServer(cfg.Listen.Addr, checker, metrics, slog.Default())
	if err := srv.Start(); err != nil {
		if obs != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = obs.Stop(stopCtx)
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	slog.Info("shutting down")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()

	err := srv.Stop(stopCtx)
	if obs != nil {
		if obsErr := obs.Stop(stopCtx); err == nil {
			err = obsErr
		}
	}
	return err
}
