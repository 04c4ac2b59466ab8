/*
PURPOSE:
  Writes the aggregate report to a JSON file.
  The same document is what the share client uploads, so the on-disk file
  doubles as a record of exactly what left the machine.

REQUIREMENTS:
  User-specified:
  - JSON output for machine parsing.

  Implementation-discovered:
  - A single indented document beats JSON lines here: the report is
    bounded (one entry per plan unit) and consumers want it whole.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Report

ERROR HANDLING:
  - Returns error on directory creation, marshal, or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json with indentation.
  - 0644 is fine; reports hold no secrets.

USAGE:
  path, err := output.WriteReportJSON(dir, report)

RELATED FILES:
  - internal/model/types.go
  - internal/output/csv.go

MAINTENANCE:
  - Update if report consumers ever need streaming output again.
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apertureless/burnbench/internal/model"
)

// WriteReportJSON writes the report document under dir and returns its path.
func WriteReportJSON(dir string, rep *model.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create results directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.json", rep.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return path, nil
}
