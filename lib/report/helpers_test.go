// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/bureau-foundation/hwcount/lib/hwinfo"
	"github.com/bureau-foundation/hwcount/lib/measure"
)

func sampleReport() *Report {
	worker := &measure.Result{
		Worker:      0,
		Events:      []string{"PAPI_TOT_CYC", "PAPI_L1_DCM"},
		Fingerprint: "4f1c2a7d9e0b3c5f6a8d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b",
		Iterations: []measure.Iteration{
			{Values: []int64{1_200_000, 400}, Wall: time.Millisecond},
			{Values: []int64{1_000_000, 300}, Wall: time.Millisecond},
			{Values: []int64{1_100_000, 500}, Wall: time.Millisecond},
		},
		Totals: []int64{3_300_000, 1_200},
		Wall:   3 * time.Millisecond,
	}
	return &Report{
		FormatVersion: FormatVersion,
		Tool:          "0.1.0-dev (abc1234, unknown)",
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Host: hwinfo.Info{
			KernelVersion:       "6.8.0",
			CPUModel:            "Example CPU",
			OnlineCPUs:          8,
			ThreadsPerCore:      2,
			PerfEventsSupported: true,
			PerfEventParanoid:   2,
			PMUs:                []hwinfo.PMU{{Name: "cpu", Type: 4, Model: "skylake", Events: 30}},
		},
		Registers: 4,
		Selection: measure.Selection{Preset: "cache", Events: []string{"PAPI_TOT_CYC"}},
		Workload: Workload{
			Name:       "stride",
			Size:       1 << 20,
			Throughput: &Throughput{Kind: ThroughputBytes, Amount: 1 << 20},
		},
		Iterations: 3,
		Warmup:     1,
		Workers:    []*measure.Result{worker},
	}
}
