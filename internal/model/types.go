/*
PURPOSE:
  Defines the core data structures used throughout burnbench.
  These models represent per-unit benchmark results and the aggregate report.

REQUIREMENTS:
  User-specified:
  - Record one timing sample per measured iteration, nanosecond resolution.
  - Track benchmark name, backend name, device, and failure reason.
  - A report carries run metadata (id, timestamp, tool version, host, user).

  Implementation-discovered:
  - Need JSON tags for the upload payload and the local report file.
  - Sample statistics (mean/median/stddev) are derived, not stored.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output, internal/share
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs). A failed unit is a Result with Error set.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - time.Duration marshals as integer nanoseconds, which is exactly the
    sample resolution we want on the wire.

USAGE:
  res := model.Result{Benchmark: "unary", Backend: "ndarray", ...}
  stats := res.Stats()

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update writers when adding new fields to Result or Report.
*/

package model

import (
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Result represents the outcome of a single (benchmark, backend) unit.
type Result struct {
	Benchmark string          `json:"benchmark"`
	Backend   string          `json:"backend"`
	Device    string          `json:"device,omitempty"`
	Shapes    [][]int         `json:"shapes,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Samples   []time.Duration `json:"samples_ns,omitempty"`
	Error     string          `json:"error,omitempty"` // If the unit failed
}

// Failed reports whether the unit produced no usable timings.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Status returns the human readable outcome label.
func (r Result) Status() string {
	if r.Failed() {
		return "failed"
	}
	return "succeeded"
}

// Stats summarizes the duration samples of a Result.
type Stats struct {
	Samples int
	Mean    time.Duration
	Median  time.Duration
	StdDev  time.Duration
	Min     time.Duration
	Max     time.Duration
}

// Stats computes summary statistics over the recorded samples.
// A Result with no samples yields a zero Stats.
func (r Result) Stats() Stats {
	n := len(r.Samples)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, r.Samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	mean := total / time.Duration(n)

	var sq float64
	for _, s := range sorted {
		d := float64(s - mean)
		sq += d * d
	}
	stddev := time.Duration(0)
	if n > 1 {
		stddev = time.Duration(math.Sqrt(sq / float64(n-1)))
	}

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Stats{
		Samples: n,
		Mean:    mean,
		Median:  median,
		StdDev:  stddev,
		Min:     sorted[0],
		Max:     sorted[n-1],
	}
}

// Host describes the machine a report was produced on.
type Host struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
	CPUs int    `json:"cpus"`
}

// Report is the ordered collection of unit results for one invocation.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
	Host      Host      `json:"host"`
	User      string    `json:"user,omitempty"`
	Results   []Result  `json:"results"`
}

// NewReport creates an empty report stamped with run metadata.
func NewReport(toolVersion string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Version:   toolVersion,
		Host: Host{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
			CPUs: runtime.NumCPU(),
		},
	}
}

// Failures counts the units that did not succeed.
func (rep *Report) Failures() int {
	n := 0
	for _, r := range rep.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}
