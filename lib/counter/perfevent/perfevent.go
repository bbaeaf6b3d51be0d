// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfevent

import (
	"errors"
	"log/slog"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// DefaultRegisters is the number of general-purpose counters assumed
// when no override is configured and the core PMU does not export
// caps/num_counters: what current x86 cores give each hardware thread
// with SMT enabled.
const DefaultRegisters = 4

// Errors reported by the backend. Kernel errors are wrapped and stay
// reachable with errors.Is (unix.EACCES, unix.ENOENT, ...).
var (
	ErrUnsupported   = errors.New("perfevent: perf events are only available on linux")
	ErrUnknownEvent  = errors.New("perfevent: unknown event")
	ErrNoSuchHandle  = errors.New("perfevent: no such counter set")
	ErrIsRunning     = errors.New("perfevent: counter set is running")
	ErrNotRunning    = errors.New("perfevent: counter set is not running")
	ErrNotEmpty      = errors.New("perfevent: counter set still has events")
	ErrEmptySet      = errors.New("perfevent: counter set has no events")
	ErrNotScheduled  = errors.New("perfevent: kernel could not schedule the counter group on hardware counters")
	ErrValuesLength  = errors.New("perfevent: values slice does not match counter set")
	ErrShortRead     = errors.New("perfevent: short read from counter group")
	ErrDuplicateCode = errors.New("perfevent: event already in counter set")
)

// Options configures a Facility.
type Options struct {
	// Registers overrides the register count reported to the
	// counter package. Zero means the count the core PMU exports in
	// sysfs, or DefaultRegisters when it exports none.
	Registers int

	// ExcludeKernel and ExcludeHypervisor restrict counting to user
	// mode. Unprivileged users need ExcludeKernel when
	// kernel.perf_event_paranoid is 2 or higher.
	ExcludeKernel     bool
	ExcludeHypervisor bool

	// Logger receives debug output for opened and closed events.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// registers picks the register count: the override, then the count
// detected from the core PMU, then DefaultRegisters.
func (options Options) registers(detected int) int {
	switch {
	case options.Registers > 0:
		return options.Registers
	case detected > 0:
		return detected
	default:
		return DefaultRegisters
	}
}

// Event describes one named event the backend knows.
type Event struct {
	Code        counter.Code
	Name        string
	Description string
	Aliases     []string

	// Software events are counted by the kernel and use no hardware
	// register, although they still count toward a set's size.
	Software bool
}
