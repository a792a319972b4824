// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package server exposes the escalation checker over a JSON HTTP
// boundary. One endpoint, POST /v1/check, carries a pair of policy
// snapshots in and the verdict plus optional witness out. Errors are
// returned as structured JSON, never folded into a safe verdict.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/escalint/escalint/internal/escalate"
	"github.com/escalint/escalint/internal/observability"
	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/solver"
	"github.com/escalint/escalint/pkg/errutil"
)

// maxRequestBytes bounds a check request body.
const maxRequestBytes = 1 << 20

// CheckRequest is the JSON request body for POST /v1/check.
type CheckRequest struct {
	Current map[string][]policy.Capability `json:"current"`
	New     map[string][]policy.Capability `json:"new"`
}

// CheckResponse is the JSON response body for a completed check.
type CheckResponse struct {
	CheckID     string                `json:"checkId"`
	Escalation  bool                  `json:"escalation"`
	Witness     *escalate.Witness     `json:"witness,omitempty"`
	Diagnostics *escalate.Diagnostics `json:"diagnostics,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves the check endpoint.
type Server struct {
	addr       string
	checker    *escalate.Checker
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the HTTP boundary. metrics may be nil when the
// observability server is disabled.
func NewServer(addr string, checker *escalate.Checker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		checker: checker,
		metrics: metrics,
		logger:  logger,
	}
}

// Start begins serving the check endpoint.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/check", s.handleCheck)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("check server error", "error", serveErr)
		}
	}()

	s.logger.Info("check server started", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown check server: %w", err)
		}
	}
	s.running.Store(false)
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleCheck runs one escalation check.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CheckRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, policy.ErrCodeParse, "malformed check request: "+err.Error())
		return
	}

	current := make(policy.Policy, len(req.Current))
	for pattern, caps := range req.Current {
		policy.Merge(current, pattern, caps)
	}
	proposed := make(policy.Policy, len(req.New))
	for pattern, caps := range req.New {
		policy.Merge(proposed, pattern, caps)
	}

	res, err := s.checker.Check(r.Context(), current, proposed)
	if err != nil {
		errutil.LogError(s.logger, "check failed", err)
		if s.metrics != nil {
			s.metrics.ObserveCheck(observability.VerdictError, time.Since(start))
		}
		code := errutil.Code(err)
		s.writeError(w, statusForCode(code), code, err.Error())
		return
	}

	verdict := observability.VerdictNone
	if res.Escalation {
		verdict = observability.VerdictEscalation
	}
	if s.metrics != nil {
		s.metrics.ObserveCheck(verdict, res.Duration)
	}

	s.writeJSON(w, http.StatusOK, CheckResponse{
		CheckID:     res.CheckID.String(),
		Escalation:  res.Escalation,
		Witness:     res.Witness,
		Diagnostics: res.Diagnostics,
	})
}

// statusForCode maps error codes to HTTP statuses. Unknown codes are
// internal failures.
func statusForCode(code string) int {
	switch code {
	case policy.ErrCodeInvalidPattern,
		policy.ErrCodeEmptyCapabilities,
		policy.ErrCodeInvalidCapability,
		policy.ErrCodeParse:
		return http.StatusBadRequest
	case solver.ErrCodeUnknown:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	if code == "" {
		code = "INTERNAL"
	}
	s.writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}
