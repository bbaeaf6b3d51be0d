// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package perfevent implements [counter.Facility] on Linux
// perf_event_open(2).
//
// A counter set is a perf event group on the calling thread (pid 0,
// any CPU): the first event opened is the group leader, later events
// join its group, and the whole group is enabled, disabled, reset and
// read as one unit with PERF_IOC_FLAG_GROUP and PERF_FORMAT_GROUP. The
// leader is pinned, so the kernel either schedules every event of the
// group on real registers or none of them; a group that cannot be
// scheduled fails to start instead of being multiplexed.
//
// Event names follow perf(1) ("cpu-cycles", "L1-dcache-load-misses",
// "task-clock") with a handful of PAPI preset aliases ("PAPI_TOT_INS")
// and raw PMU events written "r<hex>" ("r01c2"). A code packs the perf
// type in its top byte and the config below it.
//
// On other platforms [New] fails with [ErrUnsupported].
package perfevent
