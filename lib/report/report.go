// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/hwcount/lib/hwinfo"
	"github.com/bureau-foundation/hwcount/lib/measure"
)

// FormatVersion is the Report layout version. Readers reject reports
// with a newer version.
const FormatVersion = 1

// Report is one measurement run.
type Report struct {
	FormatVersion int       `json:"format_version"`
	Tool          string    `json:"tool"`
	CreatedAt     time.Time `json:"created_at"`

	Host hwinfo.Info `json:"host"`

	// Registers is the register count the run was admitted against.
	Registers int `json:"registers"`

	Selection measure.Selection `json:"selection"`
	Workload  Workload          `json:"workload"`

	Iterations int `json:"iterations"`
	Warmup     int `json:"warmup"`

	// Workers holds one result per worker, indexed by worker. A
	// worker that failed has a nil entry and its error in Errors.
	Workers []*measure.Result `json:"workers"`
	Errors  []string          `json:"errors,omitempty"`
}

// Workload describes the code that was measured.
type Workload struct {
	Name string `json:"name"`

	// Size is the workload's size parameter, in the unit its name
	// implies (bytes for alloc and stride, loop trips for spin).
	Size int64 `json:"size"`

	// Throughput is the amount of data one iteration processes, if
	// the workload declares it.
	Throughput *Throughput `json:"throughput,omitempty"`
}

// Validate checks the invariants a decoded report must satisfy before
// it is rendered.
func (r *Report) Validate() error {
	var errs []error
	if r.FormatVersion < 1 || r.FormatVersion > FormatVersion {
		errs = append(errs, fmt.Errorf("unsupported report format version %d (this build reads up to %d)",
			r.FormatVersion, FormatVersion))
	}
	if r.Throughput() != nil {
		if err := r.Throughput().Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for index, worker := range r.Workers {
		if worker == nil {
			continue
		}
		if len(worker.Totals) != len(worker.Events) {
			errs = append(errs, fmt.Errorf("worker %d: %d totals for %d events",
				index, len(worker.Totals), len(worker.Events)))
		}
		for iteration, values := range worker.Iterations {
			if len(values.Values) != len(worker.Events) {
				errs = append(errs, fmt.Errorf("worker %d iteration %d: %d values for %d events",
					index, iteration, len(values.Values), len(worker.Events)))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// Throughput returns the workload's declared throughput, or nil.
func (r *Report) Throughput() *Throughput { return r.Workload.Throughput }

// Fingerprint returns the fingerprint shared by the workers, or "" if
// no worker produced a result. Workers built from one Selection always
// agree.
func (r *Report) Fingerprint() string {
	for _, worker := range r.Workers {
		if worker != nil {
			return worker.Fingerprint
		}
	}
	return ""
}
