// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides hwcount's standard CBOR encoding
// configuration.
//
// hwcount uses two serialization formats with a clear boundary:
//
//   - JSON for anything a person or another tool reads: --format json
//     output of the CLI, configuration files.
//   - CBOR for measurement archives written with --output, which are
//     compact, typed (integers stay integers) and read back by
//     "hwcount report show".
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes. Times are encoded as
// RFC 3339 strings with nanoseconds.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// Report types carry `json` tags only. fxamacker/cbor v2 reads `json`
// tags when `cbor` tags are absent, so one tag controls field naming
// and omitempty for both formats. Never put both tags on one field.
package codec
