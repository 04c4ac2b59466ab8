/*
PURPOSE:
  High-level runner that drives an execution plan in order, one unit
  at a time, and assembles the report. Results stream to CSV as they
  land; the full report JSON is written at the end.

REQUIREMENTS:
  User-specified:
  - Report entries match plan entries one to one, same order, failures
    included.
  - An interrupt stops cleanly: finished results are kept, remaining
    units are recorded as canceled, files still get written.

  Implementation-discovered:
  - Units run strictly sequentially; backend device contexts are
    exclusive per process and interleaving would corrupt timings.
  - Needs to report progress to CLI.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine/unit.go, internal/output

ERROR HANDLING:
  - Logs per-unit failures but continues (resilience). Only a plan
    where every single unit failed comes back as an error.

IMPLEMENTATION RULES:
  - Iterate plan units in the order given. Never reorder, never skip
    except on cancellation.
  - Write each result to CSV immediately; a crash mid-plan must not
    lose the finished units.

USAGE:
  rep, err := engine.New(cfg).Run(ctx, p)

RELATED FILES:
  - internal/engine/unit.go
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update iteration logic if parallelism is introduced.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apertureless/burnbench/internal/model"
	"github.com/apertureless/burnbench/internal/output"
	"github.com/apertureless/burnbench/internal/plan"
	"github.com/apertureless/burnbench/internal/version"
)

// Run executes the full plan and returns the assembled report. The
// report is also persisted to the results directory as JSON, with a
// CSV written row by row alongside it.
func (e *Engine) Run(ctx context.Context, p plan.Plan) (*model.Report, error) {
	if p.Len() == 0 {
		return nil, errors.New("execution plan is empty")
	}

	if err := os.MkdirAll(e.Config.ResultsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory %s: %w", e.Config.ResultsDir, err)
	}

	rep := model.NewReport(version.Version)

	csvPath := filepath.Join(e.Config.ResultsDir, fmt.Sprintf("results_%s.csv", rep.CreatedAt.Format("20060102-150405")))
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	for i, u := range p.Units {
		label := u.Benchmark + "/" + u.Backend

		var res model.Result
		if ctx.Err() != nil {
			res = model.Result{
				Benchmark: u.Benchmark,
				Backend:   u.Backend,
				Timestamp: time.Now(),
				Error:     "run canceled",
			}
		} else {
			output.Logger.Info("Running unit", "unit", label, "index", i+1, "total", p.Len())
			res = e.RunUnit(ctx, u)
		}

		if res.Failed() {
			output.Logger.Error("Unit failed", "unit", label, "error", res.Error)
		} else {
			st := res.Stats()
			output.Logger.Info("Unit complete",
				"unit", label,
				"mean", output.FormatDuration(st.Mean),
				"samples", st.Samples,
			)
		}

		rep.Results = append(rep.Results, res)
		if err := csvWriter.Write(res); err != nil {
			output.Logger.Error("Failed to write result to CSV", "error", err)
		}
	}

	jsonPath, err := output.WriteReportJSON(e.Config.ResultsDir, rep)
	if err != nil {
		output.Logger.Error("Failed to write report JSON", "error", err)
	} else {
		output.Logger.Info("Report written", "path", jsonPath)
	}

	if rep.Failures() == p.Len() {
		return rep, errors.New("all execution units failed")
	}
	return rep, nil
}
