// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/hwcount/lib/config"
	"github.com/bureau-foundation/hwcount/lib/process"
)

// Options configures a Subsystem.
type Options struct {
	// Config supplies presets for Builder.UsePreset. Nil means no
	// configuration was loaded; UsePreset then fails.
	Config *config.Config

	// Logger receives session lifecycle events at debug level and
	// teardown failures at error level. Defaults to slog.Default().
	Logger *slog.Logger

	// Abort is called when a deferred teardown (Discard) cannot
	// release a counter set. Defaults to process.Abort, which exits.
	// Tests replace it to observe the failure.
	Abort func(message string, err error)
}

// Subsystem is the process-wide handle on an initialized Facility.
// It is passed explicitly to every Builder; there is no package-level
// instance. A Subsystem is safe for concurrent use.
type Subsystem struct {
	facility Facility
	config   *config.Config
	logger   *slog.Logger
	abort    func(message string, err error)
}

// Init initializes facility and returns a Subsystem bound to it.
// Facility initialization is idempotent, so calling Init again with
// the same facility (for example to attach a configuration) is safe.
func Init(facility Facility, options Options) (*Subsystem, error) {
	if facility == nil {
		return nil, invalidArgument("init", errors.New("counter: nil facility"))
	}
	if err := facility.Init(); err != nil {
		return nil, hardwareFailure("init", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abort := options.Abort
	if abort == nil {
		abort = func(message string, err error) {
			process.Abort(logger, message, err)
		}
	}

	return &Subsystem{
		facility: facility,
		config:   options.Config,
		logger:   logger,
		abort:    abort,
	}, nil
}

// Facility returns the underlying facility.
func (s *Subsystem) Facility() Facility { return s.facility }

// Logger returns the logger sessions report to.
func (s *Subsystem) Logger() *slog.Logger { return s.logger }

// Config returns the configuration the Subsystem was initialized
// with, or nil.
func (s *Subsystem) Config() *config.Config { return s.config }

// RegisterCount reports the number of physical counter registers.
func (s *Subsystem) RegisterCount() (int, error) {
	count, err := s.facility.PhysicalRegisterCount()
	if err != nil {
		return 0, hardwareFailure("physical_register_count", err)
	}
	return count, nil
}

// preset resolves a preset name to its ordered event list.
func (s *Subsystem) preset(name string) ([]string, error) {
	if s.config == nil {
		return nil, ErrNoConfig
	}
	if s.config.Presets == nil {
		return nil, ErrNoPresets
	}
	events, ok := s.config.Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return events, nil
}

// release cleans up and destroys a counter set. The caller has
// already given up ownership of handle.
func (s *Subsystem) release(handle Handle) error {
	if err := s.facility.Cleanup(handle); err != nil {
		return hardwareFailure("cleanup", err)
	}
	if err := s.facility.Destroy(handle); err != nil {
		return hardwareFailure("destroy", err)
	}
	s.logger.Debug("counter set released", "handle", int(handle))
	return nil
}

// fatal escalates a failed deferred teardown. The handle may already
// be lost at this point and the subsystem is in a state the caller
// cannot reason about.
func (s *Subsystem) fatal(message string, err error) {
	s.logger.Error(message, "error", err)
	s.abort(message, err)
}
