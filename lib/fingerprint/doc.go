// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes the digest that ties a counter sample
// to the counter set it was initialized for.
//
// A sample's values are index-aligned with the codes of one specific
// counter set. Two sets with the same codes in the same order produce
// values in the same order, so samples are interchangeable between
// them; any other set would misalign the values. The fingerprint is a
// keyed BLAKE3 hash over the ordered code list, which makes that
// compatibility check a single array comparison.
//
// The API surface is three functions:
//
//   - [Of] -- digests an ordered list of 32-bit event codes
//   - [FormatDigest] -- canonical hex form, used in reports and logs
//   - [ParseDigest] -- parses the hex form back, validating length
//
// This package has no dependencies on other hwcount packages.
package fingerprint
