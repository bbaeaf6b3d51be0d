// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

// Probe returns an empty Info: perf events are Linux-only.
func Probe() Info {
	return Info{}
}

// CoreCounters returns 0: there is no core PMU to ask.
func CoreCounters() int {
	return 0
}
