// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfevent

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestEventTableRoundTrip(t *testing.T) {
	seen := make(map[int32]string)
	for _, event := range Events() {
		if previous, ok := seen[int32(event.Code)]; ok {
			t.Errorf("%s and %s share code %#x", previous, event.Name, uint32(event.Code))
		}
		seen[int32(event.Code)] = event.Name

		code, err := lookupName(event.Name)
		if err != nil || code != event.Code {
			t.Errorf("lookupName(%s) = %#x, %v; want %#x", event.Name, uint32(code), err, uint32(event.Code))
		}
		name, err := lookupCode(event.Code)
		if err != nil || name != event.Name {
			t.Errorf("lookupCode(%#x) = %q, %v; want %q", uint32(event.Code), name, err, event.Name)
		}
		for _, alias := range event.Aliases {
			if code, err := lookupName(alias); err != nil || code != event.Code {
				t.Errorf("alias %s resolves to %#x, %v; want %#x", alias, uint32(code), err, uint32(event.Code))
			}
		}
	}
}

func TestCacheEventEncoding(t *testing.T) {
	code, err := lookupName("L1-dcache-load-misses")
	if err != nil {
		t.Fatalf("lookupName: %v", err)
	}
	eventType, config := decode(code)
	if eventType != unix.PERF_TYPE_HW_CACHE {
		t.Errorf("type = %d, want PERF_TYPE_HW_CACHE", eventType)
	}
	want := uint64(unix.PERF_COUNT_HW_CACHE_L1D |
		unix.PERF_COUNT_HW_CACHE_OP_READ<<8 |
		unix.PERF_COUNT_HW_CACHE_RESULT_MISS<<16)
	if config != want {
		t.Errorf("config = %#x, want %#x", config, want)
	}
}

func TestLookupNameVariants(t *testing.T) {
	tests := []struct {
		name     string
		wantType uint32
		wantErr  error
	}{
		{"instructions", unix.PERF_TYPE_HARDWARE, nil},
		{"INSTRUCTIONS", unix.PERF_TYPE_HARDWARE, nil},
		{"PAPI_TOT_CYC", unix.PERF_TYPE_HARDWARE, nil},
		{"CPU_CLK_UNHALTED", unix.PERF_TYPE_HARDWARE, nil},
		{"task-clock", unix.PERF_TYPE_SOFTWARE, nil},
		{"r01c2", unix.PERF_TYPE_RAW, nil},
		{"r1000000", 0, ErrUnknownEvent},
		{"rxyz", 0, ErrUnknownEvent},
		{"no-such-event", 0, ErrUnknownEvent},
	}
	for _, test := range tests {
		code, err := lookupName(test.name)
		if test.wantErr != nil {
			if !errors.Is(err, test.wantErr) {
				t.Errorf("lookupName(%q): expected %v, got %v", test.name, test.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("lookupName(%q): %v", test.name, err)
			continue
		}
		if eventType, _ := decode(code); eventType != test.wantType {
			t.Errorf("lookupName(%q) type = %d, want %d", test.name, eventType, test.wantType)
		}
	}

	raw, _ := lookupName("r01c2")
	if name, err := lookupCode(raw); err != nil || name != "r1c2" {
		t.Errorf("lookupCode(raw) = %q, %v", name, err)
	}
}
