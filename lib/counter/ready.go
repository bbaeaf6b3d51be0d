// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/hwcount/lib/fingerprint"
)

// Ready is a committed counter set that is not counting. It can be
// started, cloned, or closed. A failed Start leaves the Ready intact,
// so it can be retried.
type Ready struct {
	subsystem   *Subsystem
	handle      Handle
	held        bool
	fingerprint fingerprint.Digest
	numEvents   int
	owner       owner
}

// Fingerprint returns the digest of the set's ordered event codes.
// Clones share it.
func (r *Ready) Fingerprint() fingerprint.Digest { return r.fingerprint }

// Len returns the number of events in the set.
func (r *Ready) Len() int { return r.numEvents }

// InitSample prepares sample for use with this session and every
// session sharing its fingerprint. All allocation happens here so
// that Read, Accum and Stop never allocate.
func (r *Ready) InitSample(sample *Sample) error {
	const op = "init_sample"
	if err := r.usable(op); err != nil {
		return err
	}
	if sample == nil {
		return invalidArgument(op, errors.New("counter: nil sample"))
	}
	codes, err := r.subsystem.facility.ListCodes(r.handle)
	if err != nil {
		return hardwareFailure("list_codes", err)
	}
	sample.reset(r.fingerprint, codes, r.subsystem.facility)
	return nil
}

// Start begins counting and moves the counter set into a Running
// session. If the hardware refuses (another set already running on
// this thread, registers taken by other sessions), the Ready keeps
// its counter set.
func (r *Ready) Start() (*Running, error) {
	const op = "start"
	if err := r.usable(op); err != nil {
		return nil, err
	}
	if err := r.subsystem.facility.Start(r.handle); err != nil {
		return nil, hardwareFailure(op, err)
	}
	running := &Running{
		subsystem:   r.subsystem,
		handle:      r.handle,
		held:        true,
		fingerprint: r.fingerprint,
		numEvents:   r.numEvents,
		owner:       r.owner,
	}
	r.held = false
	r.subsystem.logger.Debug("counter set started", "handle", int(running.handle))
	return running, nil
}

// TryClone allocates a second counter set with the same events. It
// fails if the hardware cannot hold another copy. The clone has the
// same fingerprint, so samples are interchangeable between the two.
func (r *Ready) TryClone() (*Ready, error) {
	const op = "try_clone"
	if err := r.usable(op); err != nil {
		return nil, err
	}
	facility := r.subsystem.facility

	codes, err := facility.ListCodes(r.handle)
	if err != nil {
		return nil, hardwareFailure("list_codes", err)
	}
	handle, err := facility.CreateCounterSet()
	if err != nil {
		return nil, hardwareFailure("create_counter_set", err)
	}
	for _, code := range codes {
		if err := facility.AddCode(handle, code); err != nil {
			if releaseErr := r.subsystem.release(handle); releaseErr != nil {
				r.subsystem.fatal("failed to release partial counter set clone", releaseErr)
			}
			return nil, hardwareFailure(op, fmt.Errorf("adding code %d: %w", code, err))
		}
	}

	r.subsystem.logger.Debug("counter set cloned", "source", int(r.handle), "clone", int(handle))
	return &Ready{
		subsystem:   r.subsystem,
		handle:      handle,
		held:        true,
		fingerprint: r.fingerprint,
		numEvents:   len(codes),
		owner:       r.owner,
	}, nil
}

// Close releases the counter set without running it. It is a no-op
// on a nil Ready and after Start or a previous Close.
func (r *Ready) Close() error {
	if r == nil || !r.held {
		return nil
	}
	if err := r.owner.check("close"); err != nil {
		return err
	}
	r.held = false
	return r.subsystem.release(r.handle)
}

// Discard is the deferred fallback for Close. A release failure
// aborts the process.
func (r *Ready) Discard() {
	if err := r.Close(); err != nil {
		r.subsystem.fatal("failed to release ready counter set", err)
	}
}

func (r *Ready) usable(op string) error {
	if !r.held {
		return invalidArgument(op, ErrConsumed)
	}
	return r.owner.check(op)
}
