// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package perfevent

import "github.com/bureau-foundation/hwcount/lib/counter"

// Facility is unavailable outside Linux. The embedded interface only
// gives the type the counter.Facility method set; New never returns a
// usable value.
type Facility struct {
	counter.Facility
}

// New fails with ErrUnsupported.
func New(Options) (*Facility, error) {
	return nil, ErrUnsupported
}

// Events returns nil.
func Events() []Event {
	return nil
}
