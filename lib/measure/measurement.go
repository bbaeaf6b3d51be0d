// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measure

import (
	"fmt"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// Measurement counts one event per Start/End pair. The committed
// counter set is never started itself: every Start runs a fresh clone,
// so a Measurement can be started again as soon as End returns.
type Measurement struct {
	event  string
	ready  *counter.Ready
	sample counter.Sample
}

// NewMeasurement builds a single-event counter set on the calling
// thread.
func NewMeasurement(subsystem *counter.Subsystem, event string) (*Measurement, error) {
	ready, err := Selection{Events: []string{event}}.Build(subsystem)
	if err != nil {
		return nil, err
	}
	measurement := &Measurement{event: event, ready: ready}
	if err := ready.InitSample(&measurement.sample); err != nil {
		ready.Discard()
		return nil, err
	}
	return measurement, nil
}

// Event returns the event name the measurement was created with.
func (m *Measurement) Event() string { return m.event }

// Start clones the counter set and starts the clone.
func (m *Measurement) Start() (*counter.Running, error) {
	clone, err := m.ready.TryClone()
	if err != nil {
		return nil, err
	}
	running, err := clone.Start()
	if err != nil {
		clone.Discard()
		return nil, err
	}
	return running, nil
}

// End stops running and returns the event's count. running must come
// from Start.
func (m *Measurement) End(running *counter.Running) (int64, error) {
	if err := running.Stop(&m.sample); err != nil {
		return 0, err
	}
	return m.sample.Value(0), nil
}

// Measure counts the event across one call of work.
func (m *Measurement) Measure(work func()) (int64, error) {
	running, err := m.Start()
	if err != nil {
		return 0, err
	}
	work()
	value, err := m.End(running)
	if err != nil {
		return 0, fmt.Errorf("measuring %s: %w", m.event, err)
	}
	return value, nil
}

// Close releases the committed counter set.
func (m *Measurement) Close() error {
	return m.ready.Close()
}

// MeasureN counts the event across rounds separate calls of work and
// returns the sum, starting from zero. Every round runs its own clone,
// so counts of code between rounds are not included.
func (m *Measurement) MeasureN(rounds int, work func()) (int64, error) {
	var total int64
	for round := range rounds {
		value, err := m.Measure(work)
		if err != nil {
			return 0, fmt.Errorf("round %d: %w", round, err)
		}
		total += value
	}
	return total, nil
}
