// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/hwcount/lib/fingerprint"
)

// Builder accumulates the events of a counter set that has not been
// committed yet. Each successful AddEventByName or UsePreset consumes
// the receiver and returns the next Builder; the consumed value
// rejects every further call with ErrConsumed.
//
// There is deliberately no way to clone a Builder: two builders
// sharing one counter set would break single ownership of the handle.
type Builder struct {
	subsystem *Subsystem
	handle    Handle
	held      bool
	numEvents int
	owner     owner
}

// NewBuilder allocates an empty counter set on the calling thread.
func NewBuilder(subsystem *Subsystem) (*Builder, error) {
	if subsystem == nil {
		return nil, invalidArgument("new_builder", errors.New("counter: nil subsystem"))
	}
	handle, err := subsystem.facility.CreateCounterSet()
	if err != nil {
		return nil, hardwareFailure("create_counter_set", err)
	}
	subsystem.logger.Debug("counter set created", "handle", int(handle))
	return &Builder{
		subsystem: subsystem,
		handle:    handle,
		held:      true,
		owner:     currentOwner(),
	}, nil
}

// Len returns the number of events added so far.
func (b *Builder) Len() int { return b.numEvents }

// AddEventByName resolves name and adds it to the counter set.
//
// The register limit is re-read from the facility on every call
// because other sessions on the same core change what is available.
// On failure the builder is abandoned and its counter set released.
func (b *Builder) AddEventByName(name string) (*Builder, error) {
	const op = "add_event"
	if err := b.usable(op); err != nil {
		return nil, err
	}
	numEvents, err := b.addEvent(op, name)
	if err != nil {
		return nil, b.abandon(err)
	}
	return b.advance(numEvents), nil
}

// addEvent registers one event and returns the new size of the set.
func (b *Builder) addEvent(op, name string) (int, error) {
	facility := b.subsystem.facility

	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return 0, invalidEvent(op, fmt.Errorf("invalid event name %q", name))
	}
	code, err := facility.NameToCode(name)
	if err != nil {
		return 0, invalidEvent(op, fmt.Errorf("%q: %w", name, err))
	}
	if err := facility.QueryAvailable(code); err != nil {
		return 0, hardwareFailure(op, fmt.Errorf("%s is not available: %w", name, err))
	}

	codes, err := facility.ListCodes(b.handle)
	if err != nil {
		return 0, hardwareFailure("list_codes", err)
	}
	registers, err := facility.PhysicalRegisterCount()
	if err != nil {
		return 0, hardwareFailure("physical_register_count", err)
	}
	if len(codes) >= registers {
		return 0, outOfHardwareCounters(op, fmt.Errorf("%w: adding %s to a set of %d with %d registers",
			ErrRegisterLimit, name, len(codes), registers))
	}

	if err := facility.AddCode(b.handle, code); err != nil {
		return 0, hardwareFailure(op, fmt.Errorf("adding %s: %w", name, err))
	}
	return len(codes) + 1, nil
}

// UsePreset adds every event of the named preset, in order. Presets
// come from the configuration the Subsystem was initialized with.
func (b *Builder) UsePreset(name string) (*Builder, error) {
	const op = "use_preset"
	if err := b.usable(op); err != nil {
		return nil, err
	}
	events, err := b.subsystem.preset(name)
	if err != nil {
		return nil, b.abandon(invalidArgument(op, err))
	}

	builder := b
	for _, event := range events {
		builder, err = builder.AddEventByName(event)
		if err != nil {
			return nil, err
		}
	}
	return builder, nil
}

// Build commits the counter set and transfers it to a Ready session.
// A set with no events is rejected and released.
func (b *Builder) Build() (*Ready, error) {
	const op = "build"
	if err := b.usable(op); err != nil {
		return nil, err
	}

	codes, err := b.subsystem.facility.ListCodes(b.handle)
	if err != nil {
		return nil, b.abandon(hardwareFailure("list_codes", err))
	}
	if len(codes) == 0 {
		return nil, b.abandon(invalidArgument(op, ErrEmptySet))
	}

	ready := &Ready{
		subsystem:   b.subsystem,
		handle:      b.handle,
		held:        true,
		fingerprint: fingerprint.Of(codes),
		numEvents:   len(codes),
		owner:       b.owner,
	}
	b.held = false
	return ready, nil
}

// Close abandons the builder and releases its counter set. It is a
// no-op on a nil Builder and once the set has been handed on or
// released.
func (b *Builder) Close() error {
	if b == nil || !b.held {
		return nil
	}
	if err := b.owner.check("close"); err != nil {
		return err
	}
	b.held = false
	return b.subsystem.release(b.handle)
}

// Discard is the deferred fallback for Close. A release failure
// aborts the process. Builders are replaced at every step, so defer
// a closure rather than a method value:
//
//	builder, err := counter.NewBuilder(subsystem)
//	if err != nil {
//		return err
//	}
//	defer func() { builder.Discard() }()
func (b *Builder) Discard() {
	if err := b.Close(); err != nil {
		b.subsystem.fatal("failed to release abandoned counter set builder", err)
	}
}

func (b *Builder) usable(op string) error {
	if !b.held {
		return invalidArgument(op, ErrConsumed)
	}
	return b.owner.check(op)
}

// advance moves the counter set into a fresh Builder and consumes b.
func (b *Builder) advance(numEvents int) *Builder {
	next := &Builder{
		subsystem: b.subsystem,
		handle:    b.handle,
		held:      true,
		numEvents: numEvents,
		owner:     b.owner,
	}
	b.held = false
	return next
}

// abandon releases the counter set after a failed step and returns
// cause. A release failure is fatal, as in Discard.
func (b *Builder) abandon(cause error) error {
	b.Discard()
	return cause
}
