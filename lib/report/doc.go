// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report records a measurement run: where it ran, what was
// measured and the per-worker results.
//
// A [Report] is written in one of three formats ([Format]): aligned
// text for terminals, indented JSON, or CBOR (Core Deterministic, via
// lib/codec). Struct fields carry json tags only; the CBOR encoder
// reads the same tags, so both formats share field names.
//
// [WriteArchive] stores a report as a small self-describing file:
//
//	magic      4 bytes  "HWCR"
//	version    1 byte   archive format version (1)
//	tag        1 byte   CompressionTag of the payload
//	length     uvarint  uncompressed payload length
//	payload    ...      CBOR-encoded Report, compressed per tag
//
// Compression uses LZ4 blocks or zstd. A payload that does not shrink
// is stored uncompressed, whatever tag was asked for.
//
// Text rendering uses lipgloss for styling and go-humanize for digit
// grouping and SI rates. [TerminalTextOptions] picks colors and width
// from the output file when it is a terminal.
package report
