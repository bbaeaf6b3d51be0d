// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/clock"
	"github.com/bureau-foundation/hwcount/lib/config"
	"github.com/bureau-foundation/hwcount/lib/counter"
	"github.com/bureau-foundation/hwcount/lib/counter/countertest"
	"github.com/bureau-foundation/hwcount/lib/counter/perfevent"
	"github.com/bureau-foundation/hwcount/lib/hwinfo"
	"github.com/bureau-foundation/hwcount/lib/report"
	"github.com/bureau-foundation/hwcount/lib/testutil"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testHost = hwinfo.Info{
	KernelVersion:       "6.8.0-test",
	CPUModel:            "Test CPU @ 3.00GHz",
	OnlineCPUs:          8,
	ThreadsPerCore:      2,
	PerfEventsSupported: true,
	PerfEventParanoid:   2,
	PMUs:                []hwinfo.PMU{{Name: "cpu", Type: 4, Events: 12, Counters: 6}},
}

type testApp struct {
	*app
	facility *countertest.Facility
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")

	facility := countertest.New(4, "PAPI_TOT_CYC", "PAPI_TOT_INS", "PAPI_L1_DCM", "PAPI_L2_TCM", "PAPI_BR_MSP")
	catalog := []perfevent.Event{
		{Code: facility.Code("PAPI_TOT_CYC"), Name: "PAPI_TOT_CYC", Description: "Total cycles", Aliases: []string{"cycles"}},
		{Code: facility.Code("PAPI_TOT_INS"), Name: "PAPI_TOT_INS", Description: "Instructions completed", Aliases: []string{"instructions"}},
		{Code: facility.Code("PAPI_BR_MSP"), Name: "PAPI_BR_MSP", Description: "Task clock", Software: true},
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		app: &app{
			stdout: stdout,
			stderr: stderr,
			newFacility: func(*config.Config, *slog.Logger) (counter.Facility, error) {
				return facility, nil
			},
			probe:   func() hwinfo.Info { return testHost },
			catalog: func() []perfevent.Event { return catalog },
			clock:   clock.Fake(epoch),
		},
		facility: facility,
		stdout:   stdout,
		stderr:   stderr,
	}
}

func (a *testApp) execute(args ...string) error {
	return a.root().Execute(context.Background(), args)
}

func (a *testApp) decodeReport(t *testing.T) *report.Report {
	t.Helper()
	var decoded report.Report
	if err := json.Unmarshal(a.stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, a.stdout.String())
	}
	return &decoded
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want an ExitError", err)
	}
	if exitErr.Code != code {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, code)
	}
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"version"}} {
		a := newTestApp(t)
		if err := a.execute(args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if !strings.HasPrefix(a.stdout.String(), "hwcount ") {
			t.Errorf("%v printed %q", args, a.stdout.String())
		}
	}
}

func TestRootRequiresSubcommand(t *testing.T) {
	a := newTestApp(t)
	err := a.execute()
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("error = %v, want subcommand required", err)
	}
	if !strings.Contains(a.stderr.String(), "measure") {
		t.Errorf("help does not list measure:\n%s", a.stderr.String())
	}
}

func TestEventsCatalog(t *testing.T) {
	a := newTestApp(t)
	if err := a.execute("events"); err != nil {
		t.Fatalf("events: %v", err)
	}
	output := a.stdout.String()
	for _, want := range []string{"NAME", "PAPI_TOT_CYC", "cycles", "Instructions completed", "software"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "AVAILABLE") {
		t.Errorf("availability column without --available:\n%s", output)
	}
	if a.facility.InitCalls() != 0 {
		t.Errorf("listing the catalog opened the backend")
	}
}

func TestEventsAvailable(t *testing.T) {
	a := newTestApp(t)
	a.facility.SetUnavailable("PAPI_TOT_INS")
	if err := a.execute("events", "--available"); err != nil {
		t.Fatalf("events --available: %v", err)
	}
	for _, line := range strings.Split(a.stdout.String(), "\n") {
		switch {
		case strings.HasPrefix(line, "PAPI_TOT_CYC"):
			if !strings.HasSuffix(strings.TrimSpace(line), "yes") {
				t.Errorf("PAPI_TOT_CYC line = %q, want available", line)
			}
		case strings.HasPrefix(line, "PAPI_TOT_INS"):
			if !strings.Contains(line, "no: ") {
				t.Errorf("PAPI_TOT_INS line = %q, want unavailable", line)
			}
		}
	}
}

func TestEventsResolve(t *testing.T) {
	a := newTestApp(t)
	if err := a.execute("events", "PAPI_TOT_CYC", "PAPI_L1_DCM"); err != nil {
		t.Fatalf("events: %v", err)
	}
	if !strings.Contains(a.stdout.String(), "0x40000000") {
		t.Errorf("output missing code:\n%s", a.stdout.String())
	}

	a = newTestApp(t)
	err := a.execute("events", "PAPI_TOT_CYC", "PAPI_NOPE")
	requireExitCode(t, err, 1)
	if !strings.Contains(a.stdout.String(), "PAPI_NOPE") || !strings.Contains(a.stdout.String(), "unknown event") {
		t.Errorf("output does not report the unknown name:\n%s", a.stdout.String())
	}
}

func TestInfo(t *testing.T) {
	a := newTestApp(t)
	if err := a.execute("info"); err != nil {
		t.Fatalf("info: %v", err)
	}
	output := a.stdout.String()
	for _, want := range []string{"Test CPU @ 3.00GHz", "perf_event_paranoid", "core pmu", "core counters", "registers"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestInfoJSON(t *testing.T) {
	a := newTestApp(t)
	a.facility.SetRegisterCount(6)
	if err := a.execute("info", "--json"); err != nil {
		t.Fatalf("info --json: %v", err)
	}
	var got hostInfo
	if err := json.Unmarshal(a.stdout.Bytes(), &got); err != nil {
		t.Fatalf("decoding: %v\n%s", err, a.stdout.String())
	}
	if got.Registers != 6 || got.BackendError != "" {
		t.Errorf("registers = %d, backend error = %q", got.Registers, got.BackendError)
	}
	if got.Host.CPUModel != testHost.CPUModel {
		t.Errorf("cpu model = %q", got.Host.CPUModel)
	}
}

func TestInfoBackendUnavailable(t *testing.T) {
	a := newTestApp(t)
	a.newFacility = func(*config.Config, *slog.Logger) (counter.Facility, error) {
		return nil, errors.New("perf events not supported")
	}
	if err := a.execute("info"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(a.stdout.String(), "unavailable: opening counting backend: perf events not supported") {
		t.Errorf("output:\n%s", a.stdout.String())
	}
}

func TestMeasureJSON(t *testing.T) {
	a := newTestApp(t)
	err := a.execute("measure",
		"-e", "PAPI_TOT_CYC", "-e", "PAPI_TOT_INS",
		"--iterations", "3", "--warmup", "0",
		"--workload", "spin", "--size", "16",
		"--workers", "2", "--format", "json")
	if err != nil {
		t.Fatalf("measure: %v\nstderr:\n%s", err, a.stderr.String())
	}

	got := a.decodeReport(t)
	if err := got.Validate(); err != nil {
		t.Fatalf("report does not validate: %v", err)
	}
	if got.Registers != 4 || got.Iterations != 3 || got.Warmup != 0 {
		t.Errorf("registers/iterations/warmup = %d/%d/%d", got.Registers, got.Iterations, got.Warmup)
	}
	if !got.CreatedAt.Equal(epoch) {
		t.Errorf("created at %v, want %v", got.CreatedAt, epoch)
	}
	if !strings.HasPrefix(got.Tool, "hwcount ") {
		t.Errorf("tool = %q", got.Tool)
	}
	if got.Workload.Name != "spin" || got.Workload.Size != 16 {
		t.Errorf("workload = %+v", got.Workload)
	}
	if got.Host.CPUModel != testHost.CPUModel {
		t.Errorf("host = %+v", got.Host)
	}
	if len(got.Workers) != 2 {
		t.Fatalf("workers = %d, want 2", len(got.Workers))
	}
	for index, worker := range got.Workers {
		if worker == nil {
			t.Fatalf("worker %d has no result", index)
		}
		if worker.Worker != index {
			t.Errorf("worker %d reports index %d", index, worker.Worker)
		}
		if !slices.Equal(worker.Events, []string{"PAPI_TOT_CYC", "PAPI_TOT_INS"}) {
			t.Errorf("worker %d events = %v", index, worker.Events)
		}
		if len(worker.Iterations) != 3 {
			t.Errorf("worker %d iterations = %d", index, len(worker.Iterations))
		}
	}
	if got.Fingerprint() == "" {
		t.Error("report has no fingerprint")
	}
	if a.facility.LiveHandles() != 0 {
		t.Errorf("%d counter sets left allocated", a.facility.LiveHandles())
	}
}

func TestMeasureText(t *testing.T) {
	a := newTestApp(t)
	if err := a.execute("measure", "-e", "PAPI_L1_DCM", "--iterations", "2", "--size", "8"); err != nil {
		t.Fatalf("measure: %v", err)
	}
	output := a.stdout.String()
	for _, want := range []string{"hwcount report", "PAPI_L1_DCM", "EVENT", "TOTAL"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestMeasurePreset(t *testing.T) {
	a := newTestApp(t)
	configPath := testutil.WriteFile(t, "hwcount.yaml", `
presets:
  cache: [PAPI_L1_DCM, PAPI_L2_TCM]
log:
  level: warn
`)
	err := a.execute("measure", "--config", configPath,
		"--preset", "cache", "-e", "PAPI_TOT_CYC",
		"--iterations", "1", "--size", "8", "--format", "json")
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	got := a.decodeReport(t)
	if got.Selection.Preset != "cache" {
		t.Errorf("selection = %+v", got.Selection)
	}
	want := []string{"PAPI_L1_DCM", "PAPI_L2_TCM", "PAPI_TOT_CYC"}
	if !slices.Equal(got.Workers[0].Events, want) {
		t.Errorf("events = %v, want %v", got.Workers[0].Events, want)
	}
}

func TestMeasureConfigFromEnvironment(t *testing.T) {
	a := newTestApp(t)
	configPath := testutil.WriteFile(t, "hwcount.json", `{
	// comments are allowed
	"presets": {"ipc": ["PAPI_TOT_INS", "PAPI_TOT_CYC"]},
}`)
	t.Setenv(config.EnvironmentVariable, configPath)
	err := a.execute("measure", "--preset", "ipc", "--iterations", "1", "--size", "8", "--format", "json")
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	got := a.decodeReport(t)
	if !slices.Equal(got.Workers[0].Events, []string{"PAPI_TOT_INS", "PAPI_TOT_CYC"}) {
		t.Errorf("events = %v", got.Workers[0].Events)
	}
}

func TestMeasureRegisterLimit(t *testing.T) {
	a := newTestApp(t)
	err := a.execute("measure",
		"-e", "PAPI_TOT_CYC", "-e", "PAPI_TOT_INS", "-e", "PAPI_L1_DCM",
		"-e", "PAPI_L2_TCM", "-e", "PAPI_BR_MSP",
		"--iterations", "1")
	if !errors.Is(err, counter.ErrOutOfHardwareCounters) {
		t.Fatalf("error = %v, want ErrOutOfHardwareCounters", err)
	}
	if a.stdout.Len() != 0 {
		t.Errorf("a report was printed:\n%s", a.stdout.String())
	}
	if a.facility.LiveHandles() != 0 {
		t.Errorf("%d counter sets left allocated", a.facility.LiveHandles())
	}
}

func TestMeasurePartialFailure(t *testing.T) {
	a := newTestApp(t)
	a.facility.FailOnce(countertest.OpStart, errors.New("busy"))
	err := a.execute("measure", "-e", "PAPI_TOT_CYC",
		"--workers", "2", "--iterations", "2", "--size", "8", "--format", "json")
	requireExitCode(t, err, exitPartial)

	got := a.decodeReport(t)
	if len(got.Errors) != 1 || !strings.Contains(got.Errors[0], "busy") {
		t.Fatalf("errors = %q, want one worker failure", got.Errors)
	}
	failed := 0
	for _, worker := range got.Workers {
		if worker == nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("%d workers without a result, want 1", failed)
	}
}

func TestMeasureInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no events", []string{"measure"}, "no preset or events"},
		{"unknown workload", []string{"measure", "-e", "PAPI_TOT_CYC", "--workload", "sleep"}, "sleep"},
		{"small size", []string{"measure", "-e", "PAPI_TOT_CYC", "--workload", "alloc", "--size", "10"}, "below the minimum"},
		{"bad format", []string{"measure", "-e", "PAPI_TOT_CYC", "--format", "xml"}, "unknown report format"},
		{"bad compression", []string{"measure", "-e", "PAPI_TOT_CYC", "--compress", "gzip"}, "gzip"},
		{"extra argument", []string{"measure", "-e", "PAPI_TOT_CYC", "now"}, "unexpected arguments"},
		{"zero iterations", []string{"measure", "-e", "PAPI_TOT_CYC", "--iterations", "0"}, "iterations must be positive"},
		{"zero workers", []string{"measure", "-e", "PAPI_TOT_CYC", "--workers", "0"}, "workers must be positive"},
		{"unknown preset", []string{"measure", "--preset", "cache"}, "no presets configured"},
		{"misspelled flag", []string{"measure", "--iteration", "3"}, "did you mean --iterations"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := newTestApp(t)
			err := a.execute(test.args...)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Fatalf("error = %v, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestMeasureArchiveAndShow(t *testing.T) {
	for _, compression := range []string{"none", "lz4", "zstd", "auto"} {
		t.Run(compression, func(t *testing.T) {
			a := newTestApp(t)
			archivePath := filepath.Join(t.TempDir(), "run.hwcr")
			err := a.execute("measure", "-e", "PAPI_TOT_CYC", "-e", "PAPI_TOT_INS",
				"--iterations", "4", "--size", "8", "--format", "json",
				"--output", archivePath, "--compress", compression)
			if err != nil {
				t.Fatalf("measure: %v", err)
			}
			measured := a.decodeReport(t)

			shown := newTestApp(t)
			if err := shown.execute("report", "show", "--format", "json", archivePath); err != nil {
				t.Fatalf("report show: %v", err)
			}
			got := shown.decodeReport(t)
			if got.Fingerprint() != measured.Fingerprint() || len(got.Workers) != len(measured.Workers) {
				t.Errorf("shown report differs from measured report")
			}
			if !got.CreatedAt.Equal(measured.CreatedAt) {
				t.Errorf("created at %v, want %v", got.CreatedAt, measured.CreatedAt)
			}

			data, err := os.ReadFile(archivePath)
			if err != nil {
				t.Fatal(err)
			}
			header, _, err := report.OpenArchive(data)
			if err != nil {
				t.Fatalf("OpenArchive: %v", err)
			}
			diag := newTestApp(t)
			if err := diag.execute("report", "show", "--diag", archivePath); err != nil {
				t.Fatalf("report show --diag: %v", err)
			}
			for _, want := range []string{"compression: " + header.Compression.String(), `"format_version"`, `"workers"`} {
				if !strings.Contains(diag.stdout.String(), want) {
					t.Errorf("diag output missing %q:\n%s", want, diag.stdout.String())
				}
			}
		})
	}
}

func TestReportShowErrors(t *testing.T) {
	notArchive := testutil.WriteFile(t, "notes.txt", "not a report")

	a := newTestApp(t)
	if err := a.execute("report", "show"); err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("no arguments: error = %v", err)
	}
	if err := a.execute("report", "show", notArchive); !errors.Is(err, report.ErrNotArchive) {
		t.Errorf("plain file: error = %v, want ErrNotArchive", err)
	}
	if err := a.execute("report", "show", filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want ErrNotExist", err)
	}
	if err := a.execute("report"); err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("bare report: error = %v", err)
	}
}

func TestWorkerErrors(t *testing.T) {
	if got := workerErrors(nil); got != nil {
		t.Errorf("workerErrors(nil) = %q", got)
	}
	joined := errors.Join(errors.New("worker 0: a"), errors.New("worker 2: b"))
	if got := workerErrors(joined); !slices.Equal(got, []string{"worker 0: a", "worker 2: b"}) {
		t.Errorf("workerErrors(joined) = %q", got)
	}
	if got := workerErrors(io.EOF); !slices.Equal(got, []string{"EOF"}) {
		t.Errorf("workerErrors(EOF) = %q", got)
	}
}
