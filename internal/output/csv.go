/*
PURPOSE:
  Writes per-unit summary rows to a CSV file as the run progresses.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - CSV output alongside the JSON report, one row per executed unit.
  - Keep file handle open for flushing so a crash mid-run loses nothing.

  Implementation-discovered:
  - Rows carry derived statistics (mean/median/stddev/min/max) in integer
    nanoseconds; spreadsheets handle the scaling.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex so a future parallel engine cannot corrupt rows.

USAGE:
  w, err := output.NewCSVWriter("report_1234.csv")
  w.Write(result)
  w.Close()

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result or Stats change.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/apertureless/burnbench/internal/model"
)

// CSVWriter handles writing unit summaries to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{
		"benchmark", "backend", "device", "status", "timestamp",
		"samples", "mean_ns", "median_ns", "stddev_ns", "min_ns", "max_ns",
		"error",
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single unit summary to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	s := r.Stats()
	record := []string{
		r.Benchmark,
		r.Backend,
		r.Device,
		r.Status(),
		r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		fmt.Sprintf("%d", s.Samples),
		fmt.Sprintf("%d", s.Mean.Nanoseconds()),
		fmt.Sprintf("%d", s.Median.Nanoseconds()),
		fmt.Sprintf("%d", s.StdDev.Nanoseconds()),
		fmt.Sprintf("%d", s.Min.Nanoseconds()),
		fmt.Sprintf("%d", s.Max.Nanoseconds()),
		r.Error,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
