// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"errors"
	"fmt"
)

// Kind classifies counter errors so that callers can decide whether
// to fix their input, shrink the counter set, or give up, without
// parsing error text.
type Kind int

const (
	// KindHardwareFailure indicates the counting subsystem rejected or
	// failed an operation. The wrapped error carries the subsystem's
	// reason.
	KindHardwareFailure Kind = iota + 1

	// KindInvalidEvent indicates a counter name could not be resolved
	// to a code.
	KindInvalidEvent

	// KindInvalidArgument indicates malformed caller input: an empty
	// counter set, a sample that belongs to a different session, a
	// missing preset, a consumed session, or a call from the wrong
	// thread.
	KindInvalidArgument

	// KindOutOfHardwareCounters indicates admission control refused an
	// event because every physical register is already claimed by the
	// set.
	KindOutOfHardwareCounters
)

// String returns the human-readable name of an error kind.
func (kind Kind) String() string {
	switch kind {
	case KindHardwareFailure:
		return "hardware failure"
	case KindInvalidEvent:
		return "invalid event"
	case KindInvalidArgument:
		return "invalid argument"
	case KindOutOfHardwareCounters:
		return "out of hardware counters"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// Kind sentinels. An *Error matches the sentinel of its kind under
// errors.Is, so callers can write errors.Is(err, counter.ErrInvalidEvent)
// regardless of which operation failed.
var (
	ErrHardwareFailure       = &Error{Kind: KindHardwareFailure}
	ErrInvalidEvent          = &Error{Kind: KindInvalidEvent}
	ErrInvalidArgument       = &Error{Kind: KindInvalidArgument}
	ErrOutOfHardwareCounters = &Error{Kind: KindOutOfHardwareCounters}
)

// Specific causes, wrapped inside an *Error of the appropriate kind.
var (
	ErrWrongThread    = errors.New("counter: session used from a thread other than its owner")
	ErrConsumed       = errors.New("counter: session has been consumed or released")
	ErrSampleMismatch = errors.New("counter: sample was not initialized for this session")
	ErrEmptySet       = errors.New("counter: cannot build a counter set without events")
	ErrNoConfig       = errors.New("counter: no configuration set")
	ErrNoPresets      = errors.New("counter: no presets configured")
	ErrUnknownPreset  = errors.New("counter: preset does not exist")
	ErrRegisterLimit  = errors.New("counter: too many hardware events specified")
)

// Error is the error type returned by every fallible operation in
// this package. Op names the failing operation ("start", "add_event",
// ...); Err is the underlying cause and is exposed through Unwrap so
// subsystem errors (syscall errnos, fake-facility errors) stay
// reachable through errors.Is and errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return "counter: " + e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("counter: %s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("counter: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("counter: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind sentinel matching this error.
// Only the bare sentinels (no Op, no Err) match by kind; any other
// *Error target falls back to identity comparison in errors.Is.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	if !ok || sentinel.Op != "" || sentinel.Err != nil {
		return false
	}
	return sentinel.Kind == e.Kind
}

func hardwareFailure(op string, err error) *Error {
	return &Error{Kind: KindHardwareFailure, Op: op, Err: err}
}

func invalidEvent(op string, err error) *Error {
	return &Error{Kind: KindInvalidEvent, Op: op, Err: err}
}

func invalidArgument(op string, err error) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Err: err}
}

func outOfHardwareCounters(op string, err error) *Error {
	return &Error{Kind: KindOutOfHardwareCounters, Op: op, Err: err}
}
