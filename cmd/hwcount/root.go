// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/version"
)

func (a *app) root() *cli.Command {
	var showVersion bool
	root := &cli.Command{
		Name: "hwcount",
		Description: `hwcount: hardware performance counters for Go workloads.

Counts CPU events (cycles, instructions, cache misses) on the calling
thread through Linux perf events, with a fixed register budget and no
multiplexing.`,
		HelpOutput: a.stderr,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("hwcount", pflag.ContinueOnError)
			flagSet.BoolVar(&showVersion, "version", false, "print version information")
			return flagSet
		},
		Subcommands: []*cli.Command{
			a.eventsCommand(),
			a.infoCommand(),
			a.measureCommand(),
			a.reportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(context.Context, []string) error {
					fmt.Fprintf(a.stdout, "hwcount %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "List the events this machine can count",
				Command:     "hwcount events --available",
			},
			{
				Description: "Count cycles and instructions of the spin workload",
				Command:     "hwcount measure -e PAPI_TOT_CYC -e PAPI_TOT_INS --workload spin",
			},
			{
				Description: "Measure a configured preset on four threads and keep the report",
				Command:     "hwcount measure --config hwcount.yaml --preset cache --workers 4 --output cache.hwcr",
			},
			{
				Description: "Render a saved report",
				Command:     "hwcount report show cache.hwcr",
			},
		},
	}
	root.Run = func(context.Context, []string) error {
		if showVersion {
			fmt.Fprintf(a.stdout, "hwcount %s\n", version.Info())
			return nil
		}
		root.PrintHelp(a.stderr)
		return fmt.Errorf("subcommand required")
	}
	return root
}
