// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "hwcount",
		Subcommands: []*Command{
			{
				Name: "events",
				Run: func(context.Context, []string) error {
					called = "events"
					return nil
				},
			},
			{
				Name: "measure",
				Run: func(context.Context, []string) error {
					called = "measure"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"measure"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "measure" {
		t.Errorf("dispatched to %q, want %q", called, "measure")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "hwcount",
		Subcommands: []*Command{
			{
				Name: "report",
				Subcommands: []*Command{
					{
						Name: "show",
						Run: func(_ context.Context, args []string) error {
							called = "report show"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"report", "show", "run.hwcr"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "report show" {
		t.Errorf("dispatched to %q, want %q", called, "report show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "run.hwcr" {
		t.Errorf("args = %v, want [run.hwcr]", receivedArgs)
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var got any
	command := &Command{
		Name: "events",
		Run: func(ctx context.Context, _ []string) error {
			got = ctx.Value(key{})
			return nil
		},
	}
	if err := command.Execute(ctx, nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got != "marker" {
		t.Errorf("context value = %v, want marker", got)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var iterations int
	var target string

	command := &Command{
		Name: "measure",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("measure", pflag.ContinueOnError)
			flagSet.IntVar(&iterations, "iterations", 100, "iterations")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--iterations", "7", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if iterations != 7 {
		t.Errorf("iterations = %d, want 7", iterations)
	}
	if target != "extra" {
		t.Errorf("target = %q, want %q", target, "extra")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "measure",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("measure", pflag.ContinueOnError)
			flagSet.Int("iterations", 100, "iterations")
			flagSet.String("preset", "", "preset")
			return flagSet
		},
		Run: func(context.Context, []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--iteratoins"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --iterations") {
		t.Errorf("error = %q, want suggestion for '--iterations'", errStr)
	}
	if !strings.Contains(errStr, "iteratoins") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "measure",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("measure", pflag.ContinueOnError)
			flagSet.Bool("available", false, "probe")
			return flagSet
		},
		Run: func(context.Context, []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "hwcount",
		Subcommands: []*Command{
			{Name: "events"},
			{Name: "info"},
			{Name: "measure"},
		},
	}

	err := root.Execute(context.Background(), []string{"mesure"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), `did you mean "measure"`) {
		t.Errorf("error = %q, want suggestion for 'measure'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "hwcount",
		Subcommands: []*Command{
			{Name: "events"},
			{Name: "measure"},
		},
	}

	err := root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			var help bytes.Buffer
			root := &Command{
				Name:       "hwcount",
				Summary:    "Count hardware events",
				HelpOutput: &help,
				Subcommands: []*Command{
					{Name: "events", Summary: "List events"},
				},
			}

			if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
			if !strings.Contains(help.String(), "List events") {
				t.Errorf("help output = %q", help.String())
			}
		})
	}
}

func TestCommand_Execute_HelpOutputInherited(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "hwcount",
		HelpOutput: &help,
		Subcommands: []*Command{{
			Name:    "report",
			Summary: "Work with report archives",
			Subcommands: []*Command{
				{Name: "show", Summary: "Render a report archive"},
			},
		}},
	}
	if err := root.Execute(context.Background(), []string{"report", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(help.String(), "hwcount report <command>") {
		t.Errorf("help output = %q, want the report subcommand's help", help.String())
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "hwcount",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "events", Summary: "List events"},
		},
	}

	err := root.Execute(context.Background(), []string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
	if help.Len() == 0 {
		t.Error("no help printed")
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "hwcount",
		Description: "Count hardware performance events.",
		Subcommands: []*Command{
			{Name: "events", Summary: "List known events"},
			{Name: "measure", Summary: "Measure a workload"},
		},
		Examples: []Example{
			{
				Description: "Measure cycles and instructions",
				Command:     "hwcount measure -e PAPI_TOT_CYC -e PAPI_TOT_INS",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Count hardware performance events.",
		"Usage:",
		"hwcount <command> [flags]",
		"Commands:",
		"events",
		"List known events",
		"Examples:",
		"# Measure cycles and instructions",
		"hwcount measure -e PAPI_TOT_CYC",
		"Run 'hwcount <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "measure",
		Summary: "Measure a workload",
		Usage:   "hwcount measure [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("measure", pflag.ContinueOnError)
			flagSet.StringSliceP("event", "e", nil, "event to count")
			flagSet.Int("iterations", 100, "measured iterations")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"hwcount measure [flags]",
		"Flags:",
		"-e, --event",
		"--iterations",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "hwcount"}
	report := &Command{Name: "report", parent: root}
	show := &Command{Name: "show", parent: report}

	if got := root.fullName(); got != "hwcount" {
		t.Errorf("root.fullName() = %q, want %q", got, "hwcount")
	}
	if got := show.fullName(); got != "hwcount report show" {
		t.Errorf("show.fullName() = %q, want %q", got, "hwcount report show")
	}
}
