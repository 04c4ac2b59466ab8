/*
PURPOSE:
  Registration point for engines linked into the current build.
  The stock build carries only the pure-Go "ndarray" engine; builds that
  link further engines add a file per engine calling RegisterEngine.

REQUIREMENTS:
  User-specified:
  - The orchestrator binary must always be able to run something without
    external artifacts installed.

  Implementation-discovered:
  - init-time registration keeps the set immutable after process start.

ARCHITECTURE INTEGRATION:
  - Used by: internal/backend (Descriptor.Linked / Launch)

ERROR HANDLING:
  - None; registration cannot fail.

IMPLEMENTATION RULES:
  - One engine per file once more engines exist.

USAGE:
  RegisterEngine("ndarray", func(d Descriptor) *Context { ... })

RELATED FILES:
  - internal/backend/backend.go

MAINTENANCE:
  - Keep engine names aligned with the registry's backend table.
*/

package backend

import "runtime"

// EngineFunc builds an execution context for a launched descriptor.
type EngineFunc func(Descriptor) *Context

var engines = map[string]EngineFunc{}

// RegisterEngine wires an engine constructor under a backend name.
// Engine builds call this from init only; the map is read-only
// afterwards.
func RegisterEngine(name string, fn EngineFunc) {
	engines[name] = fn
}

// NewContext builds a context with an explicit worker width. Engine
// constructors use it; plain Go code has no other way to mint one.
func NewContext(backendName, device string, workers int) *Context {
	return &Context{backend: backendName, device: device, workers: workers}
}

func init() {
	// ndarray is the pure-Go CPU engine and is always present.
	RegisterEngine("ndarray", func(d Descriptor) *Context {
		return NewContext(d.Name, d.Device, runtime.NumCPU())
	})
}
