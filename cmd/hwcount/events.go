// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwcount/cmd/hwcount/cli"
	"github.com/bureau-foundation/hwcount/lib/counter"
)

type eventsParams struct {
	GlobalFlags
	Available bool `flag:"available" desc:"probe whether each event can be counted right now"`
}

func (a *app) eventsCommand() *cli.Command {
	var params eventsParams
	return &cli.Command{
		Name:    "events",
		Summary: "List known event names",
		Description: `List the event names the counting backend understands.

Without arguments, prints the built-in catalog. With NAME arguments,
resolves each name (aliases and raw "r<hex>" codes included) and
reports whether it can be counted on this machine. Exits 1 if any
name is unknown or unavailable.`,
		Usage: "hwcount events [--available] [NAME...]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("events", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			s, err := a.setup(&params.GlobalFlags)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				return a.resolveEvents(s, args)
			}
			return a.listEvents(s, params.Available)
		},
	}
}

func (a *app) listEvents(s *session, probe bool) error {
	var registry counter.Registry
	if probe {
		subsystem, err := a.subsystem(s)
		if err != nil {
			return err
		}
		registry = subsystem.Facility()
	}

	writer := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	header := "NAME\tKIND\tALIASES\tDESCRIPTION"
	if probe {
		header += "\tAVAILABLE"
	}
	fmt.Fprintln(writer, header)

	for _, event := range a.catalog() {
		kind := "hardware"
		if event.Software {
			kind = "software"
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", event.Name, kind, strings.Join(event.Aliases, ","), event.Description)
		if probe {
			line += "\t" + availability(registry.QueryAvailable(event.Code))
		}
		fmt.Fprintln(writer, line)
	}
	return writer.Flush()
}

func (a *app) resolveEvents(s *session, names []string) error {
	subsystem, err := a.subsystem(s)
	if err != nil {
		return err
	}
	registry := subsystem.Facility()

	writer := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tCODE\tCANONICAL\tAVAILABLE")
	failed := 0
	for _, name := range names {
		code, err := registry.NameToCode(name)
		if err != nil {
			failed++
			fmt.Fprintf(writer, "%s\t-\t-\tunknown event: %v\n", name, err)
			continue
		}
		canonical, err := registry.CodeToName(code)
		if err != nil {
			canonical = "?"
		}
		available := registry.QueryAvailable(code)
		if available != nil {
			failed++
		}
		fmt.Fprintf(writer, "%s\t%#x\t%s\t%s\n", name, uint32(code), canonical, availability(available))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func availability(err error) string {
	if err == nil {
		return "yes"
	}
	return "no: " + err.Error()
}
