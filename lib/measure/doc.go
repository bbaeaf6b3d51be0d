// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package measure drives counter sessions around a piece of work.
//
// Three shapes are provided:
//
//   - [Measurement] counts a single event once per call. Each call
//     clones the committed counter set and runs the clone, so the
//     original stays ready for the next call. This is the shape a
//     benchmark harness wants: start, run the body, end, take one
//     number.
//   - [Run] starts a counter set once and calls a [Workload] for a
//     number of iterations, taking an Accum delta after every
//     iteration along with its wall-clock time.
//   - [Parallel] runs [Run] on several goroutines, each locked to its
//     own OS thread and with its own counter set built from the same
//     [Selection].
//
// Counter sessions are bound to the OS thread that created them. Run
// and Measurement expect the caller to hold [counter.LockThread];
// Parallel takes care of it for its workers.
package measure
