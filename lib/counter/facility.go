// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import "fmt"

// Code identifies one hardware (or software) event. Codes are assigned
// by the Facility and are opaque to this package.
type Code int32

// Handle identifies a counter set allocated by the Facility. At most
// one session object owns a given handle at any time.
type Handle int

// State is the counting state of a counter set as reported by the
// Facility.
type State int

const (
	// StateIdle means the counter set exists but is not counting.
	StateIdle State = iota
	// StateRunning means the counter set has been started and not yet
	// stopped.
	StateRunning
)

// String returns "idle" or "running".
func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("unknown(%d)", int(state))
	}
}

// Registry translates between event names and codes and reports
// whether an event can currently be counted.
type Registry interface {
	// NameToCode resolves a symbolic event name.
	NameToCode(name string) (Code, error)

	// CodeToName returns the display name for a code.
	CodeToName(code Code) (string, error)

	// QueryAvailable returns nil if the event can be counted on this
	// machine right now.
	QueryAvailable(code Code) error
}

// Facility is the counting subsystem underneath the session types.
// Implementations: perfevent.Facility (Linux perf_event_open) and
// countertest.Facility (in-memory, for tests).
//
// Handle-scoped calls are made only from the thread that owns the
// session holding the handle. Implementations must be safe for
// concurrent use across distinct handles.
type Facility interface {
	Registry

	// Init prepares the subsystem. It must be idempotent: calling it
	// again after a successful call returns nil without side effects.
	Init() error

	// CreateCounterSet allocates a new, empty counter set.
	CreateCounterSet() (Handle, error)

	// AddCode registers an event code with an idle counter set.
	AddCode(handle Handle, code Code) error

	// ListCodes returns the set's codes in registration order. The
	// order matches the value order produced by Read, Accum and Stop.
	ListCodes(handle Handle) ([]Code, error)

	// Start begins counting.
	Start(handle Handle) error

	// Stop ends counting and writes the final totals into values,
	// which must have one slot per code. A nil values slice discards
	// the totals.
	Stop(handle Handle, values []int64) error

	// Read writes the counts since Start, or since the last Accum,
	// into values without resetting the counters.
	Read(handle Handle, values []int64) error

	// Accum writes the counts since the previous Accum (or Start)
	// into values and resets the counters to zero while they keep
	// running.
	Accum(handle Handle, values []int64) error

	// Cleanup removes every code from an idle counter set.
	Cleanup(handle Handle) error

	// Destroy frees an empty counter set. The handle is invalid
	// afterwards.
	Destroy(handle Handle) error

	// PhysicalRegisterCount reports how many events the hardware can
	// count simultaneously.
	PhysicalRegisterCount() (int, error)

	// CounterSetState reports whether a counter set is running.
	CounterSetState(handle Handle) (State, error)
}
