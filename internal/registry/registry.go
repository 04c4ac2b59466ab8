/*
PURPOSE:
  The static catalog of everything burnbench can run: benchmark names
  mapped to their factories and backend names mapped to their
  descriptors. Selector resolution for the CLI happens here.

REQUIREMENTS:
  User-specified:
  - `list` and the plan builder must agree on one canonical, sorted
    order for both catalogs.
  - Unknown selector names are reported exactly as typed.

  Implementation-discovered:
  - Tables are package-level maps seeded with the stock suite; outside
    benchmark and backend modules extend them via Register* from init.

ARCHITECTURE INTEGRATION:
  - Used by: internal/plan, internal/cli
  - Uses: internal/bench, internal/backend

ERROR HANDLING:
  - Resolve functions return NotFoundError carrying the kind and the
    offending name; callers format it for the user.

IMPLEMENTATION RULES:
  - Keep the tables alphabetical in source. Benchmarks()/Backends()
    sort anyway, but the source order is what reviewers diff.

USAGE:
  f, err := registry.ResolveBenchmark("unary")

RELATED FILES:
  - internal/bench/workloads.go
  - internal/backend/backend.go

MAINTENANCE:
  - Adding a backend here does not make it runnable in-process; that
    takes an engine registration or a shipped artifact.
*/

package registry

import (
	"fmt"
	"sort"

	"github.com/apertureless/burnbench/internal/backend"
	"github.com/apertureless/burnbench/internal/bench"
)

// NotFoundError reports a selector that names nothing in the catalog.
type NotFoundError struct {
	Kind string // "benchmark" or "backend"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

var benchmarks = map[string]bench.Factory{
	"binary":      bench.NewBinary,
	"custom_gelu": bench.NewCustomGelu,
	"data":        bench.NewData,
	"matmul":      bench.NewMatmul,
	"unary":       bench.NewUnary,
}

var backends = map[string]backend.Descriptor{
	"candle-cpu":              {Name: "candle-cpu", Device: "cpu", Artifact: "burnbench-candle-cpu"},
	"candle-cuda":             {Name: "candle-cuda", Device: "cuda", Artifact: "burnbench-candle-cuda"},
	"candle-metal":            {Name: "candle-metal", Device: "metal", Artifact: "burnbench-candle-metal"},
	"ndarray":                 {Name: "ndarray", Device: "cpu", Artifact: "burnbench-ndarray"},
	"ndarray-blas-accelerate": {Name: "ndarray-blas-accelerate", Device: "cpu", Artifact: "burnbench-ndarray-blas-accelerate"},
	"ndarray-blas-netlib":     {Name: "ndarray-blas-netlib", Device: "cpu", Artifact: "burnbench-ndarray-blas-netlib"},
	"ndarray-blas-openblas":   {Name: "ndarray-blas-openblas", Device: "cpu", Artifact: "burnbench-ndarray-blas-openblas"},
	"tch-cpu":                 {Name: "tch-cpu", Device: "cpu", Artifact: "burnbench-tch-cpu"},
	"tch-gpu":                 {Name: "tch-gpu", Device: "gpu", Artifact: "burnbench-tch-gpu"},
	"wgpu":                    {Name: "wgpu", Device: "gpu", Artifact: "burnbench-wgpu"},
	"wgpu-fusion":             {Name: "wgpu-fusion", Device: "gpu", Artifact: "burnbench-wgpu-fusion"},
}

// RegisterBenchmark adds a benchmark factory under name. Benchmark
// modules outside the core call this from init; later registration is
// not synchronized.
func RegisterBenchmark(name string, f bench.Factory) error {
	if _, dup := benchmarks[name]; dup {
		return fmt.Errorf("benchmark %q already registered", name)
	}
	benchmarks[name] = f
	return nil
}

// RegisterBackend adds a backend descriptor under its name. Backend
// modules call this from init alongside backend.RegisterEngine.
func RegisterBackend(d backend.Descriptor) error {
	if _, dup := backends[d.Name]; dup {
		return fmt.Errorf("backend %q already registered", d.Name)
	}
	backends[d.Name] = d
	return nil
}

// Benchmarks returns every registered benchmark name, sorted.
func Benchmarks() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Backends returns every registered backend name, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveBenchmark looks up the factory for name.
func ResolveBenchmark(name string) (bench.Factory, error) {
	f, ok := benchmarks[name]
	if !ok {
		return nil, &NotFoundError{Kind: "benchmark", Name: name}
	}
	return f, nil
}

// ResolveBackend looks up the descriptor for name.
func ResolveBackend(name string) (backend.Descriptor, error) {
	d, ok := backends[name]
	if !ok {
		return backend.Descriptor{}, &NotFoundError{Kind: "backend", Name: name}
	}
	return d, nil
}
