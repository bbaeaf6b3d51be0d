// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/measure"
	"github.com/bureau-foundation/hwcount/lib/report"
	"github.com/bureau-foundation/hwcount/lib/version"
	"github.com/bureau-foundation/hwcount/lib/workload"
)

// exitPartial is returned when some workers failed but a report was
// still produced.
const exitPartial = 3

type measureParams struct {
	GlobalFlags
	Preset     string   `flag:"preset" desc:"preset from the configuration file whose events are counted first"`
	Events     []string `flag:"event,e" desc:"event to count, repeatable; added after the preset's events"`
	Iterations int      `flag:"iterations" desc:"measured workload calls per worker" default:"100"`
	Warmup     int      `flag:"warmup" desc:"unmeasured calls before counting starts" default:"1"`
	Workload   string   `flag:"workload" desc:"built-in workload to run" default:"spin"`
	Size       int64    `flag:"size" desc:"workload size parameter (0 selects the workload's default)"`
	Workers    int      `flag:"workers" desc:"goroutines measuring in parallel, each on its own thread" default:"1"`
	Format     string   `flag:"format" desc:"output format: text, json or cbor" default:"text"`
	Output     string   `flag:"output,o" desc:"also write the report archive to this file"`
	Compress   string   `flag:"compress" desc:"archive compression: none, lz4, zstd or auto" default:"none"`
}

func (a *app) measureCommand() *cli.Command {
	var params measureParams
	return &cli.Command{
		Name:    "measure",
		Summary: "Count events while running a workload",
		Description: `Build a counter set from a preset and/or explicit events, run a
built-in workload under it and print the per-event totals.

Each worker locks its goroutine to an OS thread and owns a separate
counter set. The counters are sampled and reset after every iteration,
so the report carries per-iteration values as well as totals.

Available workloads: ` + strings.Join(workload.Names(), ", ") + `.

A set that does not fit in the hardware registers is rejected; hwcount
never multiplexes. If some workers fail, the report holds the others'
results and the command exits with status 3.`,
		Usage: "hwcount measure [--preset NAME] [-e EVENT]... [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("measure", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			return a.measure(ctx, &params)
		},
	}
}

func (a *app) measure(ctx context.Context, params *measureParams) error {
	format, err := report.ParseFormat(params.Format)
	if err != nil {
		return err
	}
	compression, err := report.ParseCompressionTag(params.Compress)
	if err != nil {
		return err
	}
	selection := measure.Selection{Preset: params.Preset, Events: params.Events}
	if selection.Preset == "" && len(selection.Events) == 0 {
		return measure.ErrEmptySelection
	}
	instance, err := workload.New(params.Workload, params.Size)
	if err != nil {
		return err
	}

	s, err := a.setup(&params.GlobalFlags)
	if err != nil {
		return err
	}
	subsystem, err := a.subsystem(s)
	if err != nil {
		return err
	}
	registers, err := subsystem.RegisterCount()
	if err != nil {
		return err
	}

	s.logger.Info("measuring",
		"workload", instance.Kind.Name,
		"size", instance.Size,
		"workers", params.Workers,
		"iterations", params.Iterations,
	)
	results, runErr := measure.Parallel(ctx, subsystem, selection, params.Workers, instance.Run, measure.Options{
		Iterations: params.Iterations,
		Warmup:     params.Warmup,
		Clock:      a.clock,
		Logger:     s.logger,
	})
	if !slices.ContainsFunc(results, func(result *measure.Result) bool { return result != nil }) {
		return runErr
	}

	measured := &report.Report{
		FormatVersion: report.FormatVersion,
		Tool:          "hwcount " + version.Info(),
		CreatedAt:     a.clock.Now().UTC(),
		Host:          a.probe(),
		Registers:     registers,
		Selection:     selection,
		Workload:      instance.Describe(),
		Iterations:    params.Iterations,
		Warmup:        params.Warmup,
		Workers:       results,
		Errors:        workerErrors(runErr),
	}

	if params.Output != "" {
		tag, err := report.SaveArchive(params.Output, measured, compression)
		if err != nil {
			return fmt.Errorf("saving report archive: %w", err)
		}
		s.logger.Info("report archive written", "path", params.Output, "compression", tag.String())
	}
	if err := report.Write(a.stdout, measured, format, a.textOptions()); err != nil {
		return err
	}

	if runErr != nil {
		s.logger.Warn("some workers failed", "error", runErr)
		return &cli.ExitError{Code: exitPartial}
	}
	return nil
}
