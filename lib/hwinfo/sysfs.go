// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"os"
	"strconv"
	"strings"
)

// ReadSysfsString reads a single-line sysfs file and returns its
// trimmed content. Returns "" on any error.
func ReadSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ReadSysfsInt reads an integer from a sysfs file. Returns 0 on error.
func ReadSysfsInt(path string) int {
	value := ReadSysfsString(path)
	if value == "" {
		return 0
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

// ReadSysfsInt64 reads a 64-bit integer from a sysfs file. Returns 0 on error.
func ReadSysfsInt64(path string) int64 {
	value := ReadSysfsString(path)
	if value == "" {
		return 0
	}
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}
