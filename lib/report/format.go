// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bureau-foundation/hwcount/lib/codec"
)

// Format is an output encoding for a Report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat parses a --format flag value.
func ParseFormat(name string) (Format, error) {
	switch format := Format(name); format {
	case FormatText, FormatJSON, FormatCBOR:
		return format, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected text, json or cbor)", name)
	}
}

// Write encodes report to w in format. Text options apply to
// FormatText only.
func Write(w io.Writer, report *Report, format Format, options TextOptions) error {
	switch format {
	case FormatText:
		return WriteText(w, report, options)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encoding report as JSON: %w", err)
		}
		return nil
	case FormatCBOR:
		if err := codec.NewEncoder(w).Encode(report); err != nil {
			return fmt.Errorf("encoding report as CBOR: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
