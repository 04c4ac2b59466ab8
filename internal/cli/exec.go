/*
PURPOSE:
  Defines the hidden 'exec' subcommand: the entry point the orchestrator
  uses when it invokes a per-backend artifact binary. Runs exactly one
  (benchmark, backend) unit in-process and emits the result as JSON on
  stdout.

REQUIREMENTS:
  User-specified:
  - stdout carries nothing but the result JSON; diagnostics go to
    stderr.
  - A benchmark failure inside the unit still exits 0 with the failed
    result encoded; only protocol-level problems (unknown names,
    backend not linked here) exit non-zero.

  Implementation-discovered:
  - Must refuse backends this binary does not link, otherwise exec
    would recurse into spawning another artifact.

ARCHITECTURE INTEGRATION:
  - Invoked by: internal/backend/external.go (from another burnbench
    build)
  - Calls: internal/engine

ERROR HANDLING:
  - Returns error for unknown selectors or unlinked backends; the
    parent records it as the unit's failure reason.

IMPLEMENTATION RULES:
  - Keep the flag names stable; every artifact build of every version
    is invoked with them.

USAGE:
  burnbench-ndarray exec --bench unary --backend ndarray

RELATED FILES:
  - internal/backend/external.go
  - internal/engine/unit.go

MAINTENANCE:
  - Changes here are wire-protocol changes for mixed-version setups.
*/

package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apertureless/burnbench/internal/engine"
	"github.com/apertureless/burnbench/internal/plan"
	"github.com/apertureless/burnbench/internal/registry"
)

var (
	execBenchFlag   string
	execBackendFlag string
)

var execCmd = &cobra.Command{
	Use:    "exec",
	Hidden: true,
	Short:  "Execute a single unit and emit its result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if execBenchFlag == "" || execBackendFlag == "" {
			return errors.New("--bench and --backend are required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		desc, err := registry.ResolveBackend(execBackendFlag)
		if err != nil {
			return err
		}
		if !desc.Linked() {
			return fmt.Errorf("backend %q is not linked into this binary", execBackendFlag)
		}
		if _, err := registry.ResolveBenchmark(execBenchFlag); err != nil {
			return err
		}

		res := engine.New(cfg).RunUnit(cmd.Context(), plan.Unit{
			Benchmark: execBenchFlag,
			Backend:   execBackendFlag,
		})
		return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVar(&execBenchFlag, "bench", "", "Benchmark name")
	execCmd.Flags().StringVar(&execBackendFlag, "backend", "", "Backend name")
}
