/*
PURPOSE:
  Defines the Benchmark interface and the timing harness that drives one
  workload through its warmup and measured phases.

REQUIREMENTS:
  User-specified:
  - Warmup iterations are executed but never recorded.
  - One wall-clock sample per measured iteration, nanosecond resolution.
  - Phase sizes belong to the benchmark, not to the harness.

  Implementation-discovered:
  - The sync barrier must sit inside the timed window; engines that queue
    work asynchronously would otherwise report enqueue time only.
  - Cancellation is checked between iterations so an interrupt never waits
    for a full phase to finish.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: internal/backend (execution context)

ERROR HANDLING:
  - Any Prepare/Execute/sync error aborts the unit; the caller records it
    as a failed result.

IMPLEMENTATION RULES:
  - No allocation between the timer start and stop beyond what the
    workload itself does.

USAGE:
  b, err := factory(ec)
  samples, err := bench.Run(ctx, b, ec.Sync, progress)

RELATED FILES:
  - internal/bench/workloads.go
  - internal/engine/runner.go

MAINTENANCE:
  - Keep the phase ordering stable; reports are comparable across runs
    only while the measurement protocol stays fixed.
*/

package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/apertureless/burnbench/internal/backend"
)

// Benchmark is one numeric workload bound to an execution context.
type Benchmark interface {
	// Name returns the registry identifier.
	Name() string
	// Shapes describes the buffer extents the workload touches.
	Shapes() [][]int
	// Warmup is the number of un-recorded iterations.
	Warmup() int
	// Samples is the number of recorded iterations.
	Samples() int
	// Prepare allocates and fills the workload's inputs.
	Prepare() error
	// Execute runs one iteration of work.
	Execute() error
}

// Factory binds a workload to a launched execution context.
type Factory func(ec *backend.Context) (Benchmark, error)

// Run drives b through its phases and returns one duration per measured
// iteration. sync is the context's barrier; progress (optional) is told
// about each completed sample.
func Run(ctx context.Context, b Benchmark, sync func() error, progress func(i, n int)) ([]time.Duration, error) {
	if err := b.Prepare(); err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	for i := 0; i < b.Warmup(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Execute(); err != nil {
			return nil, fmt.Errorf("warmup iteration %d: %w", i+1, err)
		}
	}
	if err := sync(); err != nil {
		return nil, fmt.Errorf("sync after warmup: %w", err)
	}

	n := b.Samples()
	samples := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := b.Execute(); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i+1, err)
		}
		if err := sync(); err != nil {
			return nil, fmt.Errorf("sync on iteration %d: %w", i+1, err)
		}
		samples = append(samples, time.Since(start))
		if progress != nil {
			progress(i+1, n)
		}
	}
	return samples, nil
}
