// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// hwcount counts hardware performance events around built-in
// workloads and inspects the counting hardware of the machine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/hwcount/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newApp().root().Execute(ctx, os.Args[1:])
}
