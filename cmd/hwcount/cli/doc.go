// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for hwcount.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/hwcount and dispatched via [Command.Execute], which handles flag
// parsing, subcommand routing, and structured help output with
// examples.
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]. Types that manage their own flags (the global
// --config/--log-* set) implement [FlagBinder] and are embedded.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// [NewLogger] builds the slog logger commands report through.
// [ExitError] lets a command choose its exit code without an extra
// "error:" line.
package cli
