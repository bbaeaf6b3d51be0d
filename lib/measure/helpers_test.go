// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measure_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/hwcount/lib/clock"
	"github.com/bureau-foundation/hwcount/lib/config"
	"github.com/bureau-foundation/hwcount/lib/counter"
	"github.com/bureau-foundation/hwcount/lib/counter/countertest"
)

var testEvents = []string{"EVT_A", "EVT_B", "EVT_C", "EVT_D"}

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSubsystem(t *testing.T, registers int, cfg *config.Config) (*countertest.Facility, *counter.Subsystem) {
	t.Helper()
	facility := countertest.New(registers, testEvents...)
	subsystem, err := counter.Init(facility, counter.Options{
		Config: cfg,
		Logger: discardLogger(),
		Abort: func(message string, err error) {
			t.Errorf("unexpected abort: %s: %v", message, err)
		},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return facility, subsystem
}

// steppingClock advances one millisecond per Now call.
func steppingClock() *clock.FakeClock {
	fake := clock.Fake(epoch)
	fake.SetStep(time.Millisecond)
	return fake
}
