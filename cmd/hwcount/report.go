// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/codec"
	"github.com/bureau-foundation/hwcount/lib/report"
)

func (a *app) reportCommand() *cli.Command {
	return &cli.Command{
		Name:    "report",
		Summary: "Inspect saved report archives",
		Subcommands: []*cli.Command{
			a.reportShowCommand(),
		},
	}
}

type reportShowParams struct {
	Format string `flag:"format" desc:"output format: text, json or cbor" default:"text"`
	Diag   bool   `flag:"diag" desc:"print the archive header and CBOR diagnostic notation instead"`
}

func (a *app) reportShowCommand() *cli.Command {
	var params reportShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Render a report archive",
		Description: `Decode a report archive written by "hwcount measure --output" and
print it. --diag skips validation and dumps the decoded CBOR, which
helps when a report from a newer hwcount is rejected.`,
		Usage: "hwcount report show [--format FORMAT] [--diag] FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one archive path, got %d arguments", len(args))
			}
			if params.Diag {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				return a.diagnoseArchive(data)
			}
			format, err := report.ParseFormat(params.Format)
			if err != nil {
				return err
			}
			loaded, err := report.LoadArchive(args[0])
			if err != nil {
				return err
			}
			return report.Write(a.stdout, loaded, format, a.textOptions())
		},
	}
}

func (a *app) diagnoseArchive(data []byte) error {
	header, payload, err := report.OpenArchive(data)
	if err != nil {
		return err
	}
	notation, err := codec.Diagnose(payload)
	if err != nil {
		return fmt.Errorf("diagnosing payload: %w", err)
	}
	fmt.Fprintf(a.stdout, "version: %d\ncompression: %s\nsize: %d\n%s\n",
		header.Version, header.Compression, header.Size, notation)
	return nil
}
