/*
PURPOSE:
  Defines the 'run' subcommand.
  Builds the execution plan from the selector flags and drives it.

REQUIREMENTS:
  User-specified:
  - Select benchmarks with -b/--benches and backends with -B/--backends;
    either omitted means everything registered.
  - Print the full combination listing before anything runs.
  - One summary line per unit afterwards, failures included.
  - --share uploads the report; a failed upload never discards the
    local results or changes the exit code.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/plan, internal/engine, internal/share
  - Uses: internal/config, internal/auth

ERROR HANDLING:
  - Selector and config errors return before execution (non-zero exit).
  - A run where every unit failed returns an error; partial failures
    do not.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Build Plan -> Listing ->
    Engine.Run -> Summary -> (Share).

USAGE:
  burnbench run -b unary,binary -B wgpu-fusion,tch-gpu --share

RELATED FILES:
  - internal/cli/root.go
  - internal/engine/runner.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apertureless/burnbench/internal/auth"
	"github.com/apertureless/burnbench/internal/config"
	"github.com/apertureless/burnbench/internal/engine"
	"github.com/apertureless/burnbench/internal/model"
	"github.com/apertureless/burnbench/internal/output"
	"github.com/apertureless/burnbench/internal/plan"
	"github.com/apertureless/burnbench/internal/share"
)

var (
	benchesFlag    []string
	backendsFlag   []string
	shareFlag      bool
	resultsDirFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run benchmarks across backends",
	Long: `Executes every selected (benchmark, backend) combination in order.
Backends compiled into this binary run in-process; all others are invoked
through their per-backend artifact binary. A unit that fails is recorded
with its reason and never stops the rest of the plan.

Results are written to the results directory as a CSV (streamed row by
row) and a JSON report. With --share the report is also uploaded to the
shared results service, which requires a prior 'burnbench auth'.`,
	Example: `  # Everything registered on everything registered
  burnbench run

  # Two benchmarks on two backends (4 units)
  burnbench run -b unary,binary -B wgpu-fusion,tch-gpu

  # Full matmul sweep, shared to the results service
  burnbench run --benches matmul --share`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if resultsDirFlag != "" {
			cfg.ResultsDir = resultsDirFlag
		}

		p, err := plan.Build(benchesFlag, backendsFlag)
		if err != nil {
			return err
		}

		lines := make([]string, 0, p.Len())
		for _, u := range p.Units {
			lines = append(lines, fmt.Sprintf("Benchmark: %s, Backend: %s", u.Benchmark, u.Backend))
		}
		output.Listing(p.Len(), lines)

		rep, err := engine.New(cfg).Run(cmd.Context(), p)
		if rep != nil {
			fmt.Println()
			fmt.Println("Benchmark Summary:")
			for _, res := range rep.Results {
				output.SummaryLine(res)
			}
		}
		if err != nil {
			return err
		}

		if shareFlag {
			shareReport(cmd.Context(), cfg, rep)
		}
		return nil
	},
}

// shareReport uploads rep to the results service. Every failure path
// prints and returns; sharing never changes the process outcome.
func shareReport(ctx context.Context, cfg *config.Config, rep *model.Report) {
	fmt.Println()

	mgr := newAuthManager(cfg)
	tok, err := mgr.Token(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			fmt.Println("Sharing failed: not authenticated. Run 'burnbench auth' first.")
			return
		}
		fmt.Printf("Sharing failed: %v\n", err)
		return
	}

	if login, err := mgr.Login(ctx, tok); err == nil {
		rep.User = login
	} else {
		output.Logger.Warn("Could not resolve user login", "error", err)
	}

	if err := share.NewClient(cfg.ShareURL, cfg.UserAgent).Upload(ctx, rep, tok.AccessToken); err != nil {
		fmt.Printf("Sharing failed: %v\n", err)
		return
	}
	fmt.Printf("Report %s uploaded to %s\n", rep.ID, cfg.ShareURL)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&benchesFlag, "benches", "b", nil, "Comma-separated benchmark names (default: all registered)")
	runCmd.Flags().StringSliceVarP(&backendsFlag, "backends", "B", nil, "Comma-separated backend names (default: all registered)")
	runCmd.Flags().BoolVar(&shareFlag, "share", false, "Upload the report to the shared results service")
	runCmd.Flags().StringVarP(&resultsDirFlag, "output-dir", "o", "", "Output directory for results (CSV/JSON)")
}
