// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package config loads checker configuration. Precedence, lowest to
// highest: built-in defaults, a YAML config file, command-line flags.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/escalint/escalint/internal/solver"
	"github.com/escalint/escalint/internal/xdg"
)

// Config is the resolved checker configuration.
type Config struct {
	Solver  SolverConfig  `koanf:"solver"`
	Listen  ListenConfig  `koanf:"listen"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// SolverConfig selects the SMT solver process.
type SolverConfig struct {
	Command string        `koanf:"command"`
	Args    []string      `koanf:"args"`
	Timeout time.Duration `koanf:"timeout"`
}

// ListenConfig is the HTTP boundary address.
type ListenConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig is the observability server address. Empty disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig selects the log output format and minimum level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Defaults.
const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

func defaults() Config {
	return Config{
		Solver: SolverConfig{
			Command: solver.DefaultCommand,
			Args:    append([]string(nil), solver.DefaultArgs...),
			Timeout: solver.DefaultTimeout,
		},
		Listen:  ListenConfig{Addr: DefaultListenAddr},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Log:     LogConfig{Format: DefaultLogFormat, Level: "info"},
	}
}

// Load resolves configuration from the given file path (empty means
// the default path, which may be absent) and the given flag set.
// Flags registered with names like "solver.timeout" override file
// values key-for-key.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, oops.
				With("path", path).
				Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Wrapf(err, "load config flags")
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Wrapf(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if c.Solver.Command == "" {
		return oops.Errorf("solver.command is required")
	}
	if c.Solver.Timeout <= 0 {
		return oops.Errorf("solver.timeout must be positive, got %s", c.Solver.Timeout)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// SolverProcess converts to the solver package's process configuration.
func (c Config) SolverProcess() solver.Config {
	return solver.Config{
		Command: c.Solver.Command,
		Args:    c.Solver.Args,
		Timeout: c.Solver.Timeout,
	}
}
