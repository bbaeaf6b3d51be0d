// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/hwcount/lib/codec"
)

// archiveMagic opens every report archive.
var archiveMagic = [4]byte{'H', 'W', 'C', 'R'}

// archiveVersion is the container layout version, independent of
// the Report's FormatVersion.
const archiveVersion = 1

// maxPayloadSize bounds the declared payload length so a corrupt
// header cannot make the reader allocate without limit.
const maxPayloadSize = 256 << 20

// ErrNotArchive is returned when data does not start with the archive
// magic.
var ErrNotArchive = errors.New("report: not a report archive")

// ArchiveHeader is the fixed part of an archive.
type ArchiveHeader struct {
	Version     uint8
	Compression CompressionTag
	Size        int
}

// WriteArchive encodes report as CBOR, compresses it with tag and
// writes the archive to w. An incompressible payload is stored with
// CompressionNone. CompressionAuto probes the payload. The tag
// actually used is returned.
func WriteArchive(w io.Writer, report *Report, tag CompressionTag) (CompressionTag, error) {
	payload, err := codec.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("encoding report: %w", err)
	}
	if tag == CompressionAuto {
		tag = SelectCompression(payload)
	}

	stored, err := Compress(payload, tag)
	if IsIncompressible(err) {
		tag, stored, err = CompressionNone, payload, nil
	}
	if err != nil {
		return 0, err
	}

	header := make([]byte, 0, len(archiveMagic)+2+binary.MaxVarintLen64)
	header = append(header, archiveMagic[:]...)
	header = append(header, archiveVersion, byte(tag))
	header = binary.AppendUvarint(header, uint64(len(payload)))
	if _, err := w.Write(header); err != nil {
		return 0, fmt.Errorf("writing archive header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return 0, fmt.Errorf("writing archive payload: %w", err)
	}
	return tag, nil
}

// OpenArchive parses the archive header and returns it with the
// decompressed CBOR payload. The payload is not decoded, so callers
// can print its diagnostic notation.
func OpenArchive(data []byte) (ArchiveHeader, []byte, error) {
	var header ArchiveHeader
	if len(data) < len(archiveMagic)+2 || !bytes.Equal(data[:len(archiveMagic)], archiveMagic[:]) {
		return header, nil, ErrNotArchive
	}
	rest := data[len(archiveMagic):]
	header.Version = rest[0]
	header.Compression = CompressionTag(rest[1])
	rest = rest[2:]
	if header.Version != archiveVersion {
		return header, nil, fmt.Errorf("report: unsupported archive version %d", header.Version)
	}

	size, read := binary.Uvarint(rest)
	if read <= 0 {
		return header, nil, errors.New("report: truncated archive header")
	}
	if size > maxPayloadSize {
		return header, nil, fmt.Errorf("report: payload size %d exceeds limit %d", size, maxPayloadSize)
	}
	header.Size = int(size)

	payload, err := Decompress(rest[read:], header.Compression, header.Size)
	if err != nil {
		return header, nil, fmt.Errorf("report: %w", err)
	}
	return header, payload, nil
}

// ReadArchive reads a whole archive from r and decodes the report.
func ReadArchive(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	_, payload, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := codec.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	return &report, nil
}
