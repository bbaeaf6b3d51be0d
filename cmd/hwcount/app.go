// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/clock"
	"github.com/bureau-foundation/hwcount/lib/config"
	"github.com/bureau-foundation/hwcount/lib/counter"
	"github.com/bureau-foundation/hwcount/lib/counter/perfevent"
	"github.com/bureau-foundation/hwcount/lib/hwinfo"
	"github.com/bureau-foundation/hwcount/lib/report"
)

// app holds everything a command touches outside its own flags, so
// tests can run the command tree against a fake facility.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// newFacility builds the counting backend from configuration.
	newFacility func(cfg *config.Config, logger *slog.Logger) (counter.Facility, error)

	// probe inventories the host.
	probe func() hwinfo.Info

	// catalog lists the events the backend knows by name.
	catalog func() []perfevent.Event

	clock clock.Clock
}

func newApp() *app {
	return &app{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		newFacility: perfFacility,
		probe:       hwinfo.Probe,
		catalog:     perfevent.Events,
		clock:       clock.Real(),
	}
}

func perfFacility(cfg *config.Config, logger *slog.Logger) (counter.Facility, error) {
	facility, err := perfevent.New(perfevent.Options{
		Registers:         cfg.Perf.Registers,
		ExcludeKernel:     cfg.Perf.ExcludeKernel,
		ExcludeHypervisor: cfg.Perf.ExcludeHypervisor,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	return facility, nil
}

// GlobalFlags are accepted by every command that loads configuration.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// AddFlags implements cli.FlagBinder.
func (g *GlobalFlags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&g.ConfigPath, "config", "",
		"configuration file (default $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&g.LogLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides the config file)")
	flagSet.StringVar(&g.LogFormat, "log-format", "",
		"log format: text, json or auto (overrides the config file)")
}

// loadConfig reads --config, else $HWCOUNT_CONFIG, else defaults. The
// defaults have no presets.
func (g *GlobalFlags) loadConfig() (*config.Config, error) {
	switch {
	case g.ConfigPath != "":
		return config.LoadFile(g.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// session is the per-invocation state built from GlobalFlags.
type session struct {
	config *config.Config
	logger *slog.Logger
}

func (a *app) setup(flags *GlobalFlags) (*session, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	level, format := cfg.Log.Level, cfg.Log.Format
	if flags.LogLevel != "" {
		level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		format = flags.LogFormat
	}
	logger, err := cli.NewLogger(a.stderr, level, format)
	if err != nil {
		return nil, err
	}
	return &session{config: cfg, logger: logger}, nil
}

// subsystem initializes the counting backend.
func (a *app) subsystem(s *session) (*counter.Subsystem, error) {
	facility, err := a.newFacility(s.config, s.logger)
	if err != nil {
		return nil, fmt.Errorf("opening counting backend: %w", err)
	}
	subsystem, err := counter.Init(facility, counter.Options{
		Config: s.config,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing counting backend: %w", err)
	}
	return subsystem, nil
}

// textOptions styles text output when stdout is a terminal.
func (a *app) textOptions() report.TextOptions {
	if file, ok := a.stdout.(*os.File); ok {
		return report.TerminalTextOptions(file)
	}
	return report.TextOptions{}
}

// workerErrors flattens the joined error returned by measure.Parallel.
func workerErrors(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		messages := make([]string, 0, len(joined.Unwrap()))
		for _, each := range joined.Unwrap() {
			messages = append(messages, each.Error())
		}
		return messages
	}
	return []string{err.Error()}
}
