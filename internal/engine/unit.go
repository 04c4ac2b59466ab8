/*
PURPOSE:
  Executes a single (benchmark, backend) unit and always comes back
  with a result. Backend unavailable, benchmark error, panic, timeout:
  all of it lands in the result's error field instead of taking down
  the run.

REQUIREMENTS:
  User-specified:
  - A failing unit never prevents later units from running.
  - Warmup and sample counts belong to the benchmark, not the runner.

  Implementation-discovered:
  - Backends compiled into this binary run in-process; all others go
    through their per-backend artifact binary.
  - Panic recovery must wrap the whole in-process path, factory
    included; a miscompiled kernel panics before the first sample.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Uses: internal/registry, internal/bench, internal/backend

ERROR HANDLING:
  - RunUnit never returns an error. The result's Error field is the
    only failure channel, so the plan loop stays branch-free.

IMPLEMENTATION RULES:
  - Measure wall clock around the benchmark's own execute call and
    nothing else. Setup and teardown stay outside the samples.

USAGE:
  e := engine.New(cfg)
  res := e.RunUnit(ctx, unit)

RELATED FILES:
  - internal/engine/runner.go
  - internal/bench/bench.go
  - internal/backend/external.go

MAINTENANCE:
  - Update the artifact invocation in internal/backend/external.go,
    not here, if the exec protocol changes.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apertureless/burnbench/internal/backend"
	"github.com/apertureless/burnbench/internal/bench"
	"github.com/apertureless/burnbench/internal/config"
	"github.com/apertureless/burnbench/internal/model"
	"github.com/apertureless/burnbench/internal/output"
	"github.com/apertureless/burnbench/internal/plan"
	"github.com/apertureless/burnbench/internal/registry"
)

// Engine executes benchmark plans.
type Engine struct {
	Config    *config.Config
	Artifacts *backend.ArtifactRunner
}

// New creates an Engine from cfg.
func New(cfg *config.Config) *Engine {
	return &Engine{
		Config:    cfg,
		Artifacts: &backend.ArtifactRunner{Dir: cfg.ArtifactDir},
	}
}

// RunUnit executes one unit and returns its result. Failures of any
// kind are recorded in the result, never returned.
func (e *Engine) RunUnit(ctx context.Context, u plan.Unit) model.Result {
	res := model.Result{
		Benchmark: u.Benchmark,
		Backend:   u.Backend,
		Timestamp: time.Now(),
	}

	desc, err := registry.ResolveBackend(u.Backend)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Device = desc.Device

	if e.Config.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Config.UnitTimeout)
		defer cancel()
	}

	if desc.Linked() {
		return e.runLinked(ctx, u, desc)
	}

	out, err := e.Artifacts.Run(ctx, desc, u.Benchmark)
	if err != nil {
		res.Error = e.describe(err)
		return res
	}
	return out
}

// runLinked executes a unit against a backend compiled into this
// binary. The named return lets the recover path fill in the failure.
func (e *Engine) runLinked(ctx context.Context, u plan.Unit, desc backend.Descriptor) (res model.Result) {
	res = model.Result{
		Benchmark: u.Benchmark,
		Backend:   u.Backend,
		Device:    desc.Device,
		Timestamp: time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			res.Samples = nil
			res.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	ec, err := desc.Launch()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer ec.Close()

	factory, err := registry.ResolveBenchmark(u.Benchmark)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	b, err := factory(ec)
	if err != nil {
		res.Error = fmt.Sprintf("failed to instantiate benchmark: %v", err)
		return res
	}
	res.Shapes = b.Shapes()

	var progress func(done, total int)
	if output.IsTerminal() {
		label := u.Benchmark + "/" + u.Backend
		progress = func(done, total int) { output.Progress(label, done, total) }
		defer output.ClearLine()
	}

	samples, err := bench.Run(ctx, b, ec.Sync, progress)
	if err != nil {
		res.Error = e.describe(err)
		return res
	}
	res.Samples = samples
	return res
}

// describe turns a unit error into the short reason users see,
// naming the configured timeout when that is what fired.
func (e *Engine) describe(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "run canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("timed out after %s", e.Config.UnitTimeout)
	}
	return err.Error()
}
