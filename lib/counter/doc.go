// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package counter manages the lifecycle of hardware performance
// counter sessions on top of a [Facility] (Linux perf_event_open in
// package perfevent, an in-memory fake in package countertest).
//
// A session moves through three owning types, each of which holds the
// facility's counter-set handle exclusively and hands it to the next
// on a successful transition:
//
//	Builder --Build--> Ready --Start--> Running --Stop--> (released)
//
// [Builder] accumulates event codes, refusing an event as soon as the
// set would need more physical registers than the facility reports.
// [Ready] is committed and restartable: it initializes [Sample]
// buffers and can be cloned onto a second counter set with the same
// events. [Running] is counting; Read, Accum and Stop write into a
// Sample in place.
//
// Every Sample is bound to a session lineage by a fingerprint of the
// ordered event codes. Passing a sample to a session with a different
// fingerprint fails with [ErrInvalidArgument] instead of writing values
// in the wrong order.
//
// Counter state is per OS thread in the kernel, so each session object
// records the thread that created it and rejects calls from any other
// thread. Callers pin their goroutine with [LockThread] for as long as
// sessions are alive.
//
// Releasing a counter set can fail. Close returns that error; Discard
// is the deferred fallback, which aborts the process on failure
// because a leaked counter set leaves the hardware in a state nobody
// can reason about:
//
//	unlock := counter.LockThread()
//	defer unlock()
//
//	builder, err := counter.NewBuilder(subsystem)
//	if err != nil {
//		return err
//	}
//	defer func() { builder.Discard() }()
//	builder, err = builder.UsePreset("IPC")
//	...
//
// All errors are *[Error] values carrying a [Kind]; the kind sentinels
// ([ErrHardwareFailure], [ErrInvalidEvent], [ErrInvalidArgument],
// [ErrOutOfHardwareCounters]) match under errors.Is.
package counter
