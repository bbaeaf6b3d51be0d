// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import "github.com/bureau-foundation/hwcount/lib/fingerprint"

// Running is a counter set that is counting. Read and Accum sample it
// in place; Stop ends it and releases the counter set. A Running that
// is never stopped must be closed.
//
// Read and Accum differ in what the values mean:
//
//   - Read writes the totals since Start and leaves the counters alone.
//     Once Accum has been called, "since Start" means since the last
//     Accum, because Accum zeroes the counters.
//   - Accum writes the counts since the previous Accum (or Start) and
//     resets the counters, which keep running.
type Running struct {
	subsystem   *Subsystem
	handle      Handle
	held        bool
	fingerprint fingerprint.Digest
	numEvents   int
	owner       owner
}

// Fingerprint returns the digest of the set's ordered event codes.
func (r *Running) Fingerprint() fingerprint.Digest { return r.fingerprint }

// Accum overwrites sample's values with the counts since the previous
// Accum or Start, then resets the counters.
func (r *Running) Accum(sample *Sample) error {
	const op = "accum"
	if err := r.usable(op, sample); err != nil {
		return err
	}
	if err := r.subsystem.facility.Accum(r.handle, sample.values); err != nil {
		return hardwareFailure(op, err)
	}
	return nil
}

// Read overwrites sample's values with the totals since Start.
func (r *Running) Read(sample *Sample) error {
	const op = "read"
	if err := r.usable(op, sample); err != nil {
		return err
	}
	if err := r.subsystem.facility.Read(r.handle, sample.values); err != nil {
		return hardwareFailure(op, err)
	}
	return nil
}

// Stop ends counting, writes the final totals into sample, and
// releases the counter set. The Running is consumed even when the
// hardware stop fails; in that case the set is torn down before the
// error is returned, and a failed teardown aborts as in Discard. A
// sample that does not belong to this session is rejected before
// anything happens, and the session keeps running.
func (r *Running) Stop(sample *Sample) error {
	const op = "stop"
	if err := r.usable(op, sample); err != nil {
		return err
	}
	r.held = false

	if err := r.subsystem.facility.Stop(r.handle, sample.values); err != nil {
		if teardownErr := r.teardown(); teardownErr != nil {
			r.subsystem.fatal("failed to tear down counter set after failed stop", teardownErr)
		}
		return hardwareFailure(op, err)
	}
	r.subsystem.logger.Debug("counter set stopped", "handle", int(r.handle))
	return r.subsystem.release(r.handle)
}

// Close tears the session down without collecting values: the
// counters are stopped if the facility still reports them running,
// then the set is released. It is a no-op on a nil Running and after
// Stop or a previous Close.
func (r *Running) Close() error {
	if r == nil || !r.held {
		return nil
	}
	if err := r.owner.check("close"); err != nil {
		return err
	}
	r.held = false
	return r.teardown()
}

// Discard is the deferred fallback for Close. A teardown failure
// aborts the process.
func (r *Running) Discard() {
	if err := r.Close(); err != nil {
		r.subsystem.fatal("failed to tear down running counter set", err)
	}
}

func (r *Running) teardown() error {
	facility := r.subsystem.facility
	state, err := facility.CounterSetState(r.handle)
	if err != nil {
		return hardwareFailure("counter_set_state", err)
	}
	if state == StateRunning {
		if err := facility.Stop(r.handle, nil); err != nil {
			return hardwareFailure("stop", err)
		}
	}
	return r.subsystem.release(r.handle)
}

func (r *Running) usable(op string, sample *Sample) error {
	if !r.held {
		return invalidArgument(op, ErrConsumed)
	}
	if err := r.owner.check(op); err != nil {
		return err
	}
	if !sample.matches(r.fingerprint, r.numEvents) {
		return invalidArgument(op, ErrSampleMismatch)
	}
	return nil
}
