/*
PURPOSE:
  User-facing console rendering: the pre-run combination listing, the
  per-unit summary table, auth prompts, and the in-place progress line
  drawn while a unit's measured iterations run.

REQUIREMENTS:
  User-specified:
  - One summary line per plan unit, success or failure.
  - Auth flow must surface the verification URL and user code prominently.

  Implementation-discovered:
  - Progress redraw only makes sense on a terminal; pipe-friendly output
    otherwise.
  - Timing figures need unit auto-scaling (ns up to s) to stay readable.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/engine
  - Dependencies: fatih/color, golang.org/x/term

ERROR HANDLING:
  - Best-effort printing; render errors are ignored.

IMPLEMENTATION RULES:
  - This is product output, not logging. It goes to stdout directly.
  - Respect color.NoColor so --no-color and dumb terminals degrade cleanly.

USAGE:
  output.Progress("unary/ndarray", 3, 10)
  output.ClearLine()
  output.SummaryLine(res)

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Keep column layout in SummaryLine aligned with what Stats exposes.
*/

package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/apertureless/burnbench/internal/model"
)

const (
	progressDoneRune    = "█"
	progressPendingRune = "▒"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// FormatDuration renders d with an auto-scaled unit, two decimals.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2f s", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.2f ms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.2f µs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%d ns", d.Nanoseconds())
	}
}

// Progress redraws the current line with a bar for sample i of n.
// No-op when stdout is not a terminal.
func Progress(label string, i, n int) {
	if !IsTerminal() || n <= 0 {
		return
	}
	ClearLine()

	line := fmt.Sprintf("  %s sample %d/%d ", label, i, n)
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= len(line)+4 {
		fmt.Fprint(color.Output, line)
		return
	}
	barWidth := width - len(line) - 2
	done := barWidth * i / n
	bar := strings.Repeat(progressDoneRune, done) + strings.Repeat(progressPendingRune, barWidth-done)
	fmt.Fprintf(color.Output, "%s%s", line, bar)
}

// ClearLine erases the current terminal line so the next write starts clean.
func ClearLine() {
	if !IsTerminal() {
		return
	}
	fmt.Fprint(color.Output, "\r\033[K")
}

// Listing prints the pre-run combination listing exactly one line per unit.
func Listing(total int, lines []string) {
	fmt.Printf("Executing the following benchmark and backend combinations (Total: %d):\n", total)
	for _, l := range lines {
		fmt.Printf("- %s\n", l)
	}
}

// AuthPrompt tells the operator how to approve the device flow.
func AuthPrompt(verificationURI, userCode string, copied bool) {
	fmt.Fprintln(color.Output, "🌐 Please visit the following URL and enter the code below:")
	fmt.Fprintf(color.Output, "   %s\n", color.CyanString(verificationURI))
	fmt.Fprintf(color.Output, "👉 %s\n", color.New(color.Bold).Sprint(userCode))
	if copied {
		fmt.Fprintln(color.Output, "📋 The code has been copied to your clipboard.")
	}
}

// SummaryLine prints the one-line outcome for a unit.
func SummaryLine(r model.Result) {
	name := fmt.Sprintf("%s/%s", r.Benchmark, r.Backend)
	if r.Failed() {
		fmt.Fprintf(color.Output, "  %s  %s  %s\n",
			color.RedString("FAIL"), name, r.Error)
		return
	}
	s := r.Stats()
	fmt.Fprintf(color.Output, "  %s  %s  %s ± %s  [%s … %s]  %s\n",
		color.GreenString(" OK "),
		name,
		color.GreenString(FormatDuration(s.Mean)),
		color.GreenString(FormatDuration(s.StdDev)),
		color.CyanString(FormatDuration(s.Min)),
		color.RedString(FormatDuration(s.Max)),
		color.HiBlackString("%d samples", s.Samples))
}
