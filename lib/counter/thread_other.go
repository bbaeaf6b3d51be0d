// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package counter

// threadID returns a constant on platforms without gettid, which
// disables the owner-thread check. No Facility on these platforms
// counts per thread.
func threadID() int {
	return 0
}
