// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/hwinfo"
)

type infoParams struct {
	GlobalFlags
	JSON bool `flag:"json" desc:"print JSON instead of text"`
}

// hostInfo is the output of "hwcount info".
type hostInfo struct {
	Host hwinfo.Info `json:"host"`

	// Registers is what admission control allows per counter set. Zero
	// when the backend could not be opened; BackendError says why.
	Registers    int    `json:"registers"`
	BackendError string `json:"backend_error,omitempty"`
}

func (a *app) infoCommand() *cli.Command {
	var params infoParams
	return &cli.Command{
		Name:    "info",
		Summary: "Describe the counting hardware",
		Description: `Print the CPU, its performance monitoring units, the
kernel's perf_event_paranoid level and the register budget counter sets
are admitted against.`,
		Usage: "hwcount info [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("info", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			s, err := a.setup(&params.GlobalFlags)
			if err != nil {
				return err
			}
			info := a.hostInfo(s)
			if params.JSON {
				encoder := json.NewEncoder(a.stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			}
			return writeHostInfo(a, info)
		},
	}
}

func (a *app) hostInfo(s *session) hostInfo {
	info := hostInfo{Host: a.probe()}

	subsystem, err := a.subsystem(s)
	if err != nil {
		info.BackendError = err.Error()
		return info
	}
	registers, err := subsystem.RegisterCount()
	if err != nil {
		info.BackendError = err.Error()
		return info
	}
	info.Registers = registers
	return info
}

func writeHostInfo(a *app, info hostInfo) error {
	host := info.Host
	writer := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	row := func(label string, value any) {
		fmt.Fprintf(writer, "%s\t%v\n", label, value)
	}
	row("kernel", orUnknown(host.KernelVersion))
	row("cpu", orUnknown(host.CPUModel))
	row("online cpus", host.OnlineCPUs)
	row("threads per core", host.ThreadsPerCore)
	row("perf events", host.PerfEventsSupported)
	if host.PerfEventsSupported {
		row("perf_event_paranoid", host.PerfEventParanoid)
	}
	if pmu, ok := host.CorePMU(); ok {
		row("core pmu", fmt.Sprintf("%s (type %d, %s)", pmu.Name, pmu.Type, orUnknown(pmu.Model)))
		if pmu.Counters > 0 {
			row("core counters", strconv.Itoa(pmu.Counters))
		}
	}
	names := make([]string, 0, len(host.PMUs))
	for _, pmu := range host.PMUs {
		names = append(names, pmu.Name)
	}
	if len(names) > 0 {
		row("pmus", strings.Join(names, " "))
	}
	if info.BackendError != "" {
		row("registers", "unavailable: "+info.BackendError)
	} else {
		row("registers", info.Registers)
	}
	return writer.Flush()
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
