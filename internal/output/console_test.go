package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/apertureless/burnbench/internal/model"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 ns"},
		{999 * time.Nanosecond, "999 ns"},
		{1500 * time.Nanosecond, "1.50 µs"},
		{250 * time.Microsecond, "250.00 µs"},
		{time.Millisecond, "1.00 ms"},
		{1234567 * time.Nanosecond, "1.23 ms"},
		{1500 * time.Millisecond, "1.50 s"},
		{2 * time.Second, "2.00 s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.d), "input %v", tc.d)
	}
}

// captureOutput swaps the color writer for a buffer for one call.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	prevOut, prevNoColor := color.Output, color.NoColor
	var buf bytes.Buffer
	color.Output = &buf
	color.NoColor = true
	defer func() {
		color.Output = prevOut
		color.NoColor = prevNoColor
	}()
	fn()
	return buf.String()
}

func TestSummaryLineSuccess(t *testing.T) {
	res := model.Result{
		Benchmark: "unary",
		Backend:   "ndarray",
		Samples: []time.Duration{
			10 * time.Millisecond,
			20 * time.Millisecond,
			30 * time.Millisecond,
		},
	}

	out := captureOutput(t, func() { SummaryLine(res) })

	assert.Contains(t, out, " OK ")
	assert.Contains(t, out, "unary/ndarray")
	assert.Contains(t, out, "20.00 ms ± 10.00 ms")
	assert.Contains(t, out, "[10.00 ms … 30.00 ms]")
	assert.Contains(t, out, "3 samples")
}

func TestSummaryLineFailure(t *testing.T) {
	res := model.Result{
		Benchmark: "matmul",
		Backend:   "wgpu",
		Error:     "artifact \"burnbench-wgpu\" not found",
	}

	out := captureOutput(t, func() { SummaryLine(res) })

	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "matmul/wgpu")
	assert.Contains(t, out, "not found")
	assert.NotContains(t, out, "samples")
}

func TestAuthPrompt(t *testing.T) {
	out := captureOutput(t, func() {
		AuthPrompt("https://example.com/activate", "ABCD-1234", true)
	})

	assert.Contains(t, out, "https://example.com/activate")
	assert.Contains(t, out, "ABCD-1234")
	assert.Contains(t, out, "clipboard")

	out = captureOutput(t, func() {
		AuthPrompt("https://example.com/activate", "ABCD-1234", false)
	})
	assert.NotContains(t, out, "clipboard")
}
