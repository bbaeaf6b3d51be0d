// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measure

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bureau-foundation/hwcount/lib/clock"
	"github.com/bureau-foundation/hwcount/lib/counter"
)

// Workload is the code under measurement. It is called once per
// iteration with the iteration index.
type Workload func(iteration int)

// Options configures Run and Parallel.
type Options struct {
	// Iterations is the number of measured calls. Must be positive.
	Iterations int

	// Warmup calls run before the counters start.
	Warmup int

	// Clock times iterations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives per-run debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (options Options) withDefaults() (Options, error) {
	if options.Iterations <= 0 {
		return options, fmt.Errorf("measure: iterations must be positive, got %d", options.Iterations)
	}
	if options.Warmup < 0 {
		return options, fmt.Errorf("measure: warmup must not be negative, got %d", options.Warmup)
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return options, nil
}

// Iteration is the counter deltas and wall time of one Workload call.
type Iteration struct {
	Values []int64       `json:"values"`
	Wall   time.Duration `json:"wall_ns"`
}

// Result is the outcome of one Run.
type Result struct {
	// Worker is the index of the Parallel worker, 0 for Run.
	Worker int `json:"worker"`

	// Events are the display names, in counter order.
	Events []string `json:"events"`

	// Fingerprint identifies the counter set's event order.
	Fingerprint string `json:"fingerprint"`

	Iterations []Iteration `json:"iterations"`

	// Totals are the counts over the whole run, from Start to Stop.
	Totals []int64 `json:"totals"`

	// Wall is the time from Start to Stop.
	Wall time.Duration `json:"wall_ns"`
}

// Run starts ready, calls workload options.Iterations times and stops
// it. ready is consumed. A cancelled ctx stops the run between
// iterations; the partial Result is returned with ctx's error.
func Run(ctx context.Context, ready *counter.Ready, workload Workload, options Options) (*Result, error) {
	options, err := options.withDefaults()
	if err != nil {
		ready.Discard()
		return nil, err
	}

	var sample counter.Sample
	if err := ready.InitSample(&sample); err != nil {
		ready.Discard()
		return nil, err
	}
	entries, err := sample.Entries()
	if err != nil {
		ready.Discard()
		return nil, err
	}
	result := &Result{
		Fingerprint: ready.Fingerprint().String(),
		Events:      make([]string, len(entries)),
		Iterations:  make([]Iteration, 0, options.Iterations),
		Totals:      make([]int64, sample.Len()),
	}
	for index, entry := range entries {
		result.Events[index] = entry.Name
	}

	for iteration := range options.Warmup {
		workload(iteration)
	}

	running, err := ready.Start()
	if err != nil {
		ready.Discard()
		return nil, err
	}
	defer running.Discard()

	started := options.Clock.Now()
	var runErr error
	for iteration := range options.Iterations {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		iterationStart := options.Clock.Now()
		workload(iteration)
		if err := running.Accum(&sample); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iteration, err)
		}
		values := sample.Values()
		for index, value := range values {
			result.Totals[index] += value
		}
		result.Iterations = append(result.Iterations, Iteration{
			Values: values,
			Wall:   options.Clock.Since(iterationStart),
		})
	}

	// Stop picks up whatever was counted after the last Accum.
	if err := running.Stop(&sample); err != nil {
		return nil, err
	}
	result.Wall = options.Clock.Since(started)
	for index := range result.Totals {
		result.Totals[index] += sample.Value(index)
	}

	options.Logger.Debug("measurement finished",
		"fingerprint", ready.Fingerprint().Short(),
		"iterations", len(result.Iterations),
		"wall", result.Wall,
	)
	return result, runErr
}

// Mean returns the per-iteration mean of each event.
func (result *Result) Mean() []float64 {
	means := make([]float64, len(result.Totals))
	if len(result.Iterations) == 0 {
		return means
	}
	for index := range means {
		sum := int64(0)
		for _, iteration := range result.Iterations {
			sum += iteration.Values[index]
		}
		means[index] = float64(sum) / float64(len(result.Iterations))
	}
	return means
}

// Median returns the per-iteration median of each event. With an even
// number of iterations it is the mean of the two middle values,
// rounded toward the lower one.
func (result *Result) Median() []int64 {
	medians := make([]int64, len(result.Totals))
	if len(result.Iterations) == 0 {
		return medians
	}
	column := make([]int64, len(result.Iterations))
	for index := range medians {
		for row, iteration := range result.Iterations {
			column[row] = iteration.Values[index]
		}
		slices.Sort(column)
		middle := len(column) / 2
		if len(column)%2 == 1 {
			medians[index] = column[middle]
			continue
		}
		low, high := column[middle-1], column[middle]
		medians[index] = low + (high-low)/2
	}
	return medians
}
