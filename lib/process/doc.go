// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides process-exit helpers for hwcount. These
// functions centralize the two legitimate raw I/O patterns that exist
// before or after the structured logger:
//
//   - Fatal error reporting to stderr when the logger may not be
//     initialized (pre-logger).
//   - Aborting the process when a counter set cannot be released and
//     continuing would leave hardware counters in an unknown state.
package process
