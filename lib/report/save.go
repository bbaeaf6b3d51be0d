// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// SaveArchive writes report as an archive file at path. The archive
// is encoded in memory and written to a temporary file in the same
// directory, fsynced and renamed into place, so readers never see a
// partial archive and a failed encode leaves any previous file intact.
// The compression actually used is returned.
func SaveArchive(path string, report *Report, tag CompressionTag) (CompressionTag, error) {
	var buffer bytes.Buffer
	used, err := WriteArchive(&buffer, report, tag)
	if err != nil {
		return 0, err
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating temporary archive file: %w", err)
	}
	if _, err := file.Write(buffer.Bytes()); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("writing temporary archive file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("syncing temporary archive file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("closing temporary archive file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("renaming archive into place: %w", err)
	}

	// Best effort: make the rename durable.
	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return used, nil
}

// LoadArchive reads and decodes the archive file at path.
func LoadArchive(path string) (*Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	report, err := ReadArchive(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}
