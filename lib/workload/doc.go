// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workload provides the built-in code that "hwcount measure"
// runs under counters:
//
//   - spin: a dependent integer loop. Cycles and instructions scale
//     with the trip count; memory traffic is negligible.
//   - alloc: allocates and touches a fresh buffer every iteration.
//     Exercises page faults and the allocator.
//   - stride: walks a fixed buffer one cache line at a time. With a
//     buffer larger than the last-level cache, nearly every access
//     misses.
//
// Each workload declares its throughput, so reports can show work per
// event (bytes per cache miss, loop trips per cycle).
package workload
