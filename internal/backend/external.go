/*
PURPOSE:
  Invokes per-backend runner artifacts for backends whose engines are not
  linked into the current build. An artifact is this same CLI compiled
  with the engine linked in; it executes exactly one unit and emits the
  result as JSON on stdout.

REQUIREMENTS:
  User-specified:
  - A missing or crashing artifact must not abort the rest of the plan.

  Implementation-discovered:
  - Artifacts are resolved in the configured artifact directory first,
    then $PATH, so users can drop builds anywhere.
  - stderr passes through so engine logs stay visible; stdout must stay
    clean for the result document.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Produces: internal/model.Result

ERROR HANDLING:
  - Resolution and execution failures return errors; the engine converts
    them into failed Results at the unit boundary.

IMPLEMENTATION RULES:
  - Use exec.CommandContext so an interrupt kills the child.
  - Bound each invocation with the configured unit timeout.

USAGE:
  ar := backend.ArtifactRunner{Dir: cfg.ArtifactDir, Timeout: cfg.UnitTimeout}
  res, err := ar.Run(ctx, desc, "unary")

RELATED FILES:
  - internal/cli/exec.go (the artifact-side entry point)

MAINTENANCE:
  - Keep the exec flag names in lockstep with internal/cli/exec.go.
*/

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/apertureless/burnbench/internal/model"
)

// ArtifactRunner launches per-backend runner binaries.
type ArtifactRunner struct {
	// Dir is searched before $PATH. Empty means $PATH only.
	Dir string
	// Timeout bounds one artifact invocation. Zero means no bound.
	Timeout time.Duration
}

// Resolve locates the artifact binary for a descriptor.
func (ar ArtifactRunner) Resolve(d Descriptor) (string, error) {
	if ar.Dir != "" {
		candidate := filepath.Join(ar.Dir, d.Artifact)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(d.Artifact)
	if err != nil {
		return "", fmt.Errorf("artifact %q not found (searched %q and $PATH)", d.Artifact, ar.Dir)
	}
	return path, nil
}

// Run executes one (benchmark, backend) unit inside the backend's artifact
// and decodes the result it prints.
func (ar ArtifactRunner) Run(ctx context.Context, d Descriptor, benchName string) (model.Result, error) {
	path, err := ar.Resolve(d)
	if err != nil {
		return model.Result{}, err
	}

	if ar.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ar.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "exec", "--bench", benchName, "--backend", d.Name)
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return model.Result{}, fmt.Errorf("artifact %s: %w", d.Artifact, ctx.Err())
		}
		return model.Result{}, fmt.Errorf("artifact %s: %w", d.Artifact, err)
	}

	var res model.Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return model.Result{}, fmt.Errorf("artifact %s wrote an unreadable result: %w", d.Artifact, err)
	}
	if res.Benchmark != benchName || res.Backend != d.Name {
		return model.Result{}, fmt.Errorf("artifact %s answered for %s/%s, wanted %s/%s",
			d.Artifact, res.Benchmark, res.Backend, benchName, d.Name)
	}
	return res, nil
}
