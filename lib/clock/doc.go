// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now or time.Since directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that advances only when told to.
//
// # Wiring Pattern
//
// Add a Clock field to structs that use time:
//
//	type Runner struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In tests, a step makes every measured interval the same length:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.SetStep(time.Millisecond)
//	r := &Runner{clock: c}
package clock
