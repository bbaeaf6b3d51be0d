// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package countertest provides an in-memory [counter.Facility] for
// tests. Events are software counters that the test advances
// explicitly with [Facility.Bump], so Read, Accum and Stop return
// exact, predictable values.
//
// The fake models one core: a fixed pool of registers shared by every
// running counter set. Starting a set whose events do not fit in the
// registers left over by the other running sets fails, which is how
// tests exercise clone admission without hardware.
//
// Every facility call can be made to fail with [Facility.Fail], and
// [Facility.LiveHandles] reports the number of allocated counter sets
// so tests can assert that teardown returns to a baseline.
package countertest
