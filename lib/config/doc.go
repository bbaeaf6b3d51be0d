// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for hwcount.
//
// Configuration is loaded from a single file specified by either the
// HWCOUNT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search.
//
// Files are YAML. Files ending in .json or .jsonc are accepted too:
// comments and trailing commas are stripped first and the result is
// decoded as JSON. Both encodings use the same field names.
//
// The presets section maps a preset name to an ordered list of event
// names. When the section is absent [Config].Presets is nil, which the
// counter package reports differently from a preset name that is
// merely missing.
//
// Key exports:
//
//   - [Config] -- master struct with Presets, Perf, Log
//   - [Default] -- returns a Config with defaults and no presets
//   - [Load] and [LoadFile] -- the two file entry points
//   - [Parse] -- decodes an in-memory document in a given [Format]
//
// This package depends on no other hwcount packages.
package config
