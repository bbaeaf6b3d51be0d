// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
	}
	for _, test := range tests {
		got, err := ParseLevel(test.name)
		if err != nil || got != test.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", test.name, got, err, test.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) succeeded")
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, "info", "json")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("counter set started", "handle", 3)
	var record map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &record); err != nil {
		t.Fatalf("json handler output %q: %v", buffer.String(), err)
	}
	if record["msg"] != "counter set started" {
		t.Errorf("record = %v", record)
	}

	buffer.Reset()
	logger, err = NewLogger(&buffer, "info", "text")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("counter set started", "handle", 3)
	if !strings.Contains(buffer.String(), `msg="counter set started" handle=3`) {
		t.Errorf("text handler output = %q", buffer.String())
	}
}

func TestNewLoggerAutoUsesJSONForNonTerminal(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, "info", "auto")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(buffer.String(), "{") {
		t.Errorf("auto format on a buffer = %q, want JSON", buffer.String())
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, "warn", "text")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buffer.String(), "dropped") || !strings.Contains(buffer.String(), "kept") {
		t.Errorf("output = %q", buffer.String())
	}
}

func TestNewLoggerErrors(t *testing.T) {
	if _, err := NewLogger(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Error("unknown level accepted")
	}
	if _, err := NewLogger(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}
