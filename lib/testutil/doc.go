// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for hwcount packages.
//
// [Async] runs a blocking call on its own goroutine and hands back a
// channel for its result. [RequireReceive] and [RequireClosed] wait on
// such channels with a timeout, so a deadlocked session or worker pool
// fails the test instead of hanging it. These are the only place in
// the test suite where real wall-clock timeouts are used.
//
// [WriteFile] writes a fixture (usually a configuration file) into a
// per-test temporary directory and returns its path.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no hwcount-internal dependencies.
package testutil
