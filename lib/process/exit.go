// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"log/slog"
	"os"
)

// AbortExitCode is the exit status used by Abort. It differs from the
// status of Fatal so scripts can tell a leaked counter set apart from
// an ordinary command failure.
const AbortExitCode = 2

// exit is replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	exit(1)
}

// Abort logs message and err at error level, repeats them on stderr in
// case the logger writes elsewhere, and exits with AbortExitCode. It
// is the last resort for a teardown that failed from a deferred call,
// where there is no caller left to return the error to.
func Abort(logger *slog.Logger, message string, err error) {
	if logger != nil {
		logger.Error("aborting: "+message, "error", err)
	}
	fmt.Fprintf(os.Stderr, "fatal: %s: %v\n", message, err)
	exit(AbortExitCode)
}
