// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadArchive(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "run.hwcr")

	original := sampleReport()
	if _, err := SaveArchive(path, original, CompressionZstd); err != nil {
		t.Fatalf("SaveArchive: %v", err)
	}
	loaded, err := LoadArchive(path)
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if loaded.Fingerprint() != original.Fingerprint() || len(loaded.Workers) != len(original.Workers) {
		t.Errorf("loaded report differs from the saved one")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "run.hwcr" {
		t.Errorf("directory holds %v, want only run.hwcr", entries)
	}
}

func TestSaveArchiveFailureKeepsPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.hwcr")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveArchive(path, sampleReport(), CompressionTag(42)); err == nil {
		t.Fatal("SaveArchive with an unknown compression succeeded")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous" {
		t.Errorf("file was overwritten: %q", data)
	}
}

func TestSaveArchiveMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.hwcr")
	if _, err := SaveArchive(path, sampleReport(), CompressionNone); err == nil {
		t.Fatal("SaveArchive into a missing directory succeeded")
	}
}

func TestLoadArchiveErrors(t *testing.T) {
	directory := t.TempDir()
	if _, err := LoadArchive(filepath.Join(directory, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want ErrNotExist", err)
	}
	plain := filepath.Join(directory, "plain.txt")
	if err := os.WriteFile(plain, []byte("not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadArchive(plain); !errors.Is(err, ErrNotArchive) {
		t.Errorf("plain file: error = %v, want ErrNotArchive", err)
	}
}
