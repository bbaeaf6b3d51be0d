// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo probes the machine for what hardware event counting
// can rely on: CPU model and topology, the kernel's perf event PMUs
// and the kernel.perf_event_paranoid level.
//
// Everything is read from /proc and /sys on Linux. Missing or
// unreadable files produce zero-valued fields rather than errors, so a
// container with a restricted /sys still reports what it can. On other
// platforms [Probe] returns an empty [Info].
//
// The sysfs helpers ([ReadSysfsString], [ReadSysfsInt],
// [ReadSysfsInt64]) are exported for the perf backend, which reads PMU
// attributes directly.
package hwinfo
