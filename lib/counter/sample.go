// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/bureau-foundation/hwcount/lib/fingerprint"
)

// Sample holds one value per event of a counter set, in the set's
// code order. The zero value is empty; Ready.InitSample binds it to a
// session lineage (a fingerprint), after which Running.Read, Accum and
// Stop overwrite its values in place. A Sample can be reused across
// any number of start/stop cycles of sessions with the same
// fingerprint.
type Sample struct {
	fingerprint fingerprint.Digest
	codes       []Code
	values      []int64
	registry    Registry
	initialized bool
}

// Entry is one event of a Sample with its display name resolved.
type Entry struct {
	Name  string
	Code  Code
	Value int64
}

func (s *Sample) reset(digest fingerprint.Digest, codes []Code, registry Registry) {
	s.fingerprint = digest
	s.codes = append(s.codes[:0], codes...)
	if cap(s.values) >= len(codes) {
		s.values = s.values[:len(codes)]
		clear(s.values)
	} else {
		s.values = make([]int64, len(codes))
	}
	s.registry = registry
	s.initialized = true
}

// matches reports whether s was initialized for a session with the
// given fingerprint and size. A nil Sample never matches.
func (s *Sample) matches(digest fingerprint.Digest, numEvents int) bool {
	return s != nil && s.initialized && s.fingerprint == digest && len(s.values) == numEvents
}

// Initialized reports whether InitSample has been called on s.
func (s *Sample) Initialized() bool { return s.initialized }

// Fingerprint returns the fingerprint s was initialized against.
func (s *Sample) Fingerprint() fingerprint.Digest { return s.fingerprint }

// Len returns the number of events.
func (s *Sample) Len() int { return len(s.codes) }

// Codes returns a copy of the event codes in set order.
func (s *Sample) Codes() []Code { return slices.Clone(s.codes) }

// Values returns a copy of the current values in set order.
func (s *Sample) Values() []int64 { return slices.Clone(s.values) }

// Value returns the value at index without copying.
func (s *Sample) Value(index int) int64 { return s.values[index] }

// Clone returns an independent copy bound to the same lineage.
func (s *Sample) Clone() *Sample {
	return &Sample{
		fingerprint: s.fingerprint,
		codes:       slices.Clone(s.codes),
		values:      slices.Clone(s.values),
		registry:    s.registry,
		initialized: s.initialized,
	}
}

// Entries resolves every code to its display name. It fails with an
// InvalidArgument on a sample that was never initialized and with a
// HardwareFailure if the registry cannot name a code.
func (s *Sample) Entries() ([]Entry, error) {
	const op = "entries"
	if !s.initialized {
		return nil, invalidArgument(op, ErrSampleMismatch)
	}
	entries := make([]Entry, len(s.codes))
	for index, code := range s.codes {
		name, err := s.registry.CodeToName(code)
		if err != nil {
			return nil, hardwareFailure("code_to_name", fmt.Errorf("code %d: %w", code, err))
		}
		entries[index] = Entry{Name: name, Code: code, Value: s.values[index]}
	}
	return entries, nil
}

// All resolves every name before returning, so a registry failure is
// reported here rather than cutting the iteration short. The sequence
// yields (name, value) pairs in set order with the values as they were
// when All was called.
func (s *Sample) All() (iter.Seq2[string, int64], error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	return func(yield func(string, int64) bool) {
		for _, entry := range entries {
			if !yield(entry.Name, entry.Value) {
				return
			}
		}
	}, nil
}

// String formats the sample as "NAME: value" pairs. A name that
// cannot be resolved turns the whole string into a formatting error
// marker instead of panicking. An uninitialized sample formats as the
// empty string.
func (s *Sample) String() string {
	if !s.initialized {
		return ""
	}
	entries, err := s.Entries()
	if err != nil {
		return fmt.Sprintf("%%!v(ERROR=%v)", err)
	}
	var builder strings.Builder
	for index, entry := range entries {
		if index > 0 {
			builder.WriteByte(' ')
		}
		fmt.Fprintf(&builder, "%s: %d", entry.Name, entry.Value)
	}
	return builder.String()
}
