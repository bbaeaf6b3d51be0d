// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package counter

import "golang.org/x/sys/unix"

// threadID returns the kernel thread id of the calling OS thread.
// perf counters opened with pid 0 count this thread only, which is
// why sessions are bound to it.
func threadID() int {
	return unix.Gettid()
}
