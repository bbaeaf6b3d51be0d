// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bureau-foundation/hwcount/lib/config"
	"github.com/bureau-foundation/hwcount/lib/counter"
	"github.com/bureau-foundation/hwcount/lib/counter/countertest"
)

var testEvents = []string{"EVT_A", "EVT_B", "EVT_C", "EVT_D", "EVT_E"}

var errInjected = errors.New("injected failure")

// newFacility returns a fake with the standard test events.
func newFacility(registers int) *countertest.Facility {
	return countertest.New(registers, testEvents...)
}

// newSubsystem initializes facility with a discarding logger. Any
// abort fails the test unless the test installs its own hook.
func newSubsystem(t *testing.T, facility counter.Facility, cfg *config.Config) *counter.Subsystem {
	t.Helper()
	subsystem, err := counter.Init(facility, counter.Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Abort: func(message string, err error) {
			t.Errorf("unexpected abort: %s: %v", message, err)
		},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return subsystem
}

// buildReady builds a Ready session over the named events.
func buildReady(t *testing.T, subsystem *counter.Subsystem, events ...string) *counter.Ready {
	t.Helper()
	builder, err := counter.NewBuilder(subsystem)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	for _, event := range events {
		builder, err = builder.AddEventByName(event)
		if err != nil {
			t.Fatalf("AddEventByName(%s): %v", event, err)
		}
	}
	ready, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ready
}

// initSample returns a sample initialized against ready.
func initSample(t *testing.T, ready *counter.Ready) *counter.Sample {
	t.Helper()
	var sample counter.Sample
	if err := ready.InitSample(&sample); err != nil {
		t.Fatalf("InitSample: %v", err)
	}
	return &sample
}

func start(t *testing.T, ready *counter.Ready) *counter.Running {
	t.Helper()
	running, err := ready.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return running
}

func requireLiveHandles(t *testing.T, facility *countertest.Facility, want int) {
	t.Helper()
	if got := facility.LiveHandles(); got != want {
		t.Fatalf("live handles = %d, want %d", got, want)
	}
}

func requireKind(t *testing.T, err error, kind *counter.Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}
