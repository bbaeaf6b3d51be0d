// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// Parallel runs the same measurement on workers goroutines. Each
// worker locks itself to an OS thread, builds its own counter set from
// selection and calls Run. Results are indexed by worker.
//
// Workers share the subsystem, not counter sets: a worker whose set
// cannot be built or started (for example because the core it landed
// on has no free registers) reports an error for that worker only.
// Every worker error is returned, joined.
func Parallel(ctx context.Context, subsystem *counter.Subsystem, selection Selection, workers int, workload Workload, options Options) ([]*Result, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("measure: workers must be positive, got %d", workers)
	}
	results := make([]*Result, workers)
	errs := make([]error, workers)

	var group sync.WaitGroup
	for worker := range workers {
		group.Add(1)
		go func() {
			defer group.Done()
			unlock := counter.LockThread()
			defer unlock()

			ready, err := selection.Build(subsystem)
			if err != nil {
				errs[worker] = fmt.Errorf("worker %d: %w", worker, err)
				return
			}
			result, err := Run(ctx, ready, workload, options)
			if result != nil {
				result.Worker = worker
			}
			results[worker] = result
			if err != nil {
				errs[worker] = fmt.Errorf("worker %d: %w", worker, err)
			}
		}()
	}
	group.Wait()

	return results, errors.Join(errs...)
}
