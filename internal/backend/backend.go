/*
PURPOSE:
  Defines backend launch descriptors and the execution context benchmarks
  bind to. A backend is a compute engine; selecting one decides whether a
  unit runs inside this process or inside a separate per-backend artifact.

REQUIREMENTS:
  User-specified:
  - The runner must not know how a backend is invoked; the descriptor
    encapsulates that.
  - A build may link one engine, several, or none beyond the pure-Go one.

  Implementation-discovered:
  - Engines self-register at init, so the descriptor table stays pure data
    and "is this backend linked in" is a map lookup.

ARCHITECTURE INTEGRATION:
  - Used by: internal/registry (table rows), internal/engine (launching),
    internal/bench (workloads run through Context)
  - Dependencies: golang.org/x/sync/errgroup

ERROR HANDLING:
  - Launch of an unlinked backend returns an error; callers fall back to
    the external artifact path.

IMPLEMENTATION RULES:
  - Context.Do is the only parallelism primitive exposed to workloads.
  - Sync is a barrier; CPU engines complete synchronously so it is a no-op
    there, but the harness calls it unconditionally.

USAGE:
  ec, err := desc.Launch()
  ec.Do(len(buf), func(lo, hi int) error { ...; return nil })
  ec.Sync()

RELATED FILES:
  - internal/backend/native.go
  - internal/backend/external.go

MAINTENANCE:
  - New engines register in their own file via RegisterEngine.
*/

package backend

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Descriptor describes how one named backend is launched.
type Descriptor struct {
	// Name is the registry identifier, e.g. "wgpu-fusion".
	Name string
	// Device is the device class the backend computes on.
	Device string
	// Artifact is the per-backend runner binary used when the engine is
	// not linked into the current build.
	Artifact string
}

// Linked reports whether this backend's engine is compiled into the
// running binary.
func (d Descriptor) Linked() bool {
	_, ok := engines[d.Name]
	return ok
}

// Launch creates an in-process execution context for a linked backend.
func (d Descriptor) Launch() (*Context, error) {
	mk, ok := engines[d.Name]
	if !ok {
		return nil, fmt.Errorf("backend %q is not linked into this binary", d.Name)
	}
	return mk(d), nil
}

// Context is the execution context a benchmark binds to. Workloads push
// their inner loops through Do so the engine's worker configuration is
// what gets measured.
type Context struct {
	backend string
	device  string
	workers int
}

// Backend returns the registry name of the launched backend.
func (c *Context) Backend() string { return c.backend }

// Device returns the device class work runs on.
func (c *Context) Device() string { return c.device }

// Workers returns the engine's parallel width.
func (c *Context) Workers() int { return c.workers }

// Do splits the half-open range [0, n) into per-worker chunks and runs fn
// on each. With a single worker it degrades to a plain call.
func (c *Context) Do(n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if c.workers <= 1 || n < c.workers {
		return fn(0, n)
	}

	var g errgroup.Group
	chunk := (n + c.workers - 1) / c.workers
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error { return fn(lo, hi) })
	}
	return g.Wait()
}

// Sync blocks until queued device work has drained. The pure-Go engine
// completes work synchronously, so there is nothing to wait for.
func (c *Context) Sync() error { return nil }

// Close releases the context.
func (c *Context) Close() error { return nil }
