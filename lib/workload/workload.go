// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workload

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/bureau-foundation/hwcount/lib/measure"
	"github.com/bureau-foundation/hwcount/lib/report"
)

// cacheLine is the stride of the stride workload and the page-touch
// step of alloc.
const cacheLine = 64

const pageSize = 4096

// sink keeps results observable so the compiler cannot drop the
// loops.
var sink atomic.Int64

// Kind describes a built-in workload.
type Kind struct {
	Name        string
	Description string

	// DefaultSize is used when the caller passes size 0.
	DefaultSize int64

	// MinSize is the smallest accepted size.
	MinSize int64

	throughput report.ThroughputKind
	build      func(size int64) measure.Workload
}

var kinds = map[string]Kind{
	"spin": {
		Name:        "spin",
		Description: "dependent integer loop, size = loop trips",
		DefaultSize: 1_000_000,
		MinSize:     1,
		throughput:  report.ThroughputElements,
		build:       spin,
	},
	"alloc": {
		Name:        "alloc",
		Description: "allocate and touch a buffer every iteration, size = bytes",
		DefaultSize: 1 << 20,
		MinSize:     pageSize,
		throughput:  report.ThroughputBytes,
		build:       alloc,
	},
	"stride": {
		Name:        "stride",
		Description: "walk a fixed buffer one cache line at a time, size = bytes",
		DefaultSize: 32 << 20,
		MinSize:     cacheLine,
		throughput:  report.ThroughputBytes,
		build:       stride,
	},
}

// Names returns the workload names in sorted order.
func Names() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the workload kind called name.
func Lookup(name string) (Kind, error) {
	kind, ok := kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("unknown workload %q (available: %v)", name, Names())
	}
	return kind, nil
}

// Instance is a workload bound to a size, ready to hand to measure.Run.
type Instance struct {
	Kind Kind
	Size int64
	Run  measure.Workload
}

// New builds the workload called name. A zero size selects the kind's
// default.
func New(name string, size int64) (*Instance, error) {
	kind, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = kind.DefaultSize
	}
	if size < kind.MinSize {
		return nil, fmt.Errorf("workload %s: size %d is below the minimum %d", name, size, kind.MinSize)
	}
	return &Instance{Kind: kind, Size: size, Run: kind.build(size)}, nil
}

// Describe returns the report entry for the instance.
func (instance *Instance) Describe() report.Workload {
	return report.Workload{
		Name:       instance.Kind.Name,
		Size:       instance.Size,
		Throughput: &report.Throughput{Kind: instance.Kind.throughput, Amount: instance.Size},
	}
}

func spin(size int64) measure.Workload {
	return func(iteration int) {
		value := int64(iteration) | 1
		for range size {
			// xorshift: every step depends on the previous one.
			value ^= value << 13
			value ^= value >> 7
			value ^= value << 17
		}
		sink.Add(value)
	}
}

func alloc(size int64) measure.Workload {
	return func(iteration int) {
		buffer := make([]byte, size)
		for offset := 0; offset < len(buffer); offset += pageSize {
			buffer[offset] = byte(iteration)
		}
		sink.Add(int64(buffer[len(buffer)-pageSize]))
	}
}

func stride(size int64) measure.Workload {
	buffer := make([]byte, size)
	for index := range buffer {
		buffer[index] = byte(index)
	}
	// The buffer is shared read-only between workers.
	return func(int) {
		var sum int64
		for offset := 0; offset < len(buffer); offset += cacheLine {
			sum += int64(buffer[offset])
		}
		sink.Add(sum)
	}
}
