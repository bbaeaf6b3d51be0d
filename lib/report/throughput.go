// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"math"
)

// ThroughputKind is the unit a workload's throughput is expressed in.
type ThroughputKind string

const (
	ThroughputBytes    ThroughputKind = "bytes"
	ThroughputElements ThroughputKind = "elements"
)

// Throughput is the amount of work one iteration does. Dividing it by
// an event count gives the work done per event, for example bytes per
// cache miss.
type Throughput struct {
	Kind   ThroughputKind `json:"kind"`
	Amount int64          `json:"amount"`
}

// Validate rejects unknown kinds and non-positive amounts.
func (t Throughput) Validate() error {
	switch t.Kind {
	case ThroughputBytes, ThroughputElements:
	default:
		return fmt.Errorf("unknown throughput kind %q", t.Kind)
	}
	if t.Amount <= 0 {
		return fmt.Errorf("throughput amount must be positive, got %d", t.Amount)
	}
	return nil
}

// Unit returns the column label for per-event throughput.
func (t Throughput) Unit() string {
	if t.Kind == ThroughputElements {
		return "elems/event"
	}
	return "bytes/event"
}

// PerEvent scales an event count, typically the per-iteration mean,
// to work per event. A zero count gives +Inf.
func (t Throughput) PerEvent(count float64) float64 {
	if count == 0 {
		return math.Inf(1)
	}
	return float64(t.Amount) / count
}

// PerEventAll scales every count in values in place and returns the
// unit label.
func (t Throughput) PerEventAll(values []float64) string {
	for index, value := range values {
		values[index] = t.PerEvent(value)
	}
	return t.Unit()
}
