/*
PURPOSE:
  Turns the user's benchmark and backend selections into the ordered
  list of execution units the engine walks. All selector validation
  happens here, before anything runs.

REQUIREMENTS:
  User-specified:
  - An empty selection means "everything registered", in catalog order.
  - Duplicate selections collapse to their first occurrence.
  - One unknown name fails the whole plan; nothing partial runs.
  - Ordering groups by backend: all benchmarks on one backend complete
    before the next backend starts, so heavyweight backend startup is
    paid once per backend.

  Implementation-discovered:
  - Validation resolves every name up front even though the engine
    resolves again at run time; a typo should be caught in
    milliseconds, not after minutes of benchmarks.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Uses: internal/registry

ERROR HANDLING:
  - Build returns registry.NotFoundError unchanged; the CLI's error
    path already prints it usefully.

IMPLEMENTATION RULES:
  - Build is pure: same selectors in, same plan out. No clock, no env.

USAGE:
  p, err := plan.Build([]string{"unary"}, nil)

RELATED FILES:
  - internal/registry/registry.go
  - internal/engine/runner.go

MAINTENANCE:
  - The unit order is part of the observable contract (progress output,
    CSV row order). Do not "optimize" it.
*/

package plan

import "github.com/apertureless/burnbench/internal/registry"

// Unit is one benchmark on one backend.
type Unit struct {
	Benchmark string
	Backend   string
}

// Plan is the ordered unit list for a run.
type Plan struct {
	Units []Unit
}

// Len reports the number of units.
func (p Plan) Len() int { return len(p.Units) }

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Build expands selections into a validated plan. Empty benches or
// backends select the full catalog.
func Build(benches, backends []string) (Plan, error) {
	if len(benches) == 0 {
		benches = registry.Benchmarks()
	} else {
		benches = dedupe(benches)
		for _, name := range benches {
			if _, err := registry.ResolveBenchmark(name); err != nil {
				return Plan{}, err
			}
		}
	}
	if len(backends) == 0 {
		backends = registry.Backends()
	} else {
		backends = dedupe(backends)
		for _, name := range backends {
			if _, err := registry.ResolveBackend(name); err != nil {
				return Plan{}, err
			}
		}
	}

	units := make([]Unit, 0, len(benches)*len(backends))
	for _, be := range backends {
		for _, b := range benches {
			units = append(units, Unit{Benchmark: b, Backend: be})
		}
	}
	return Plan{Units: units}, nil
}
