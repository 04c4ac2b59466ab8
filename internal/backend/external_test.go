package backend

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifact drops a fake runner script into dir.
func writeArtifact(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake artifacts are shell scripts")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestResolvePrefersArtifactDir(t *testing.T) {
	dir := t.TempDir()
	want := writeArtifact(t, dir, "burnbench-wgpu", "exit 0")

	ar := ArtifactRunner{Dir: dir}
	got, err := ar.Resolve(Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveMissingArtifact(t *testing.T) {
	ar := ArtifactRunner{Dir: t.TempDir()}
	_, err := ar.Resolve(Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `artifact "burnbench-wgpu" not found`)
}

func TestRunDecodesArtifactResult(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu", `
[ "$1" = "exec" ] || exit 9
[ "$3" = "unary" ] || exit 9
[ "$5" = "wgpu" ] || exit 9
echo '{"benchmark":"unary","backend":"wgpu","device":"gpu","timestamp":"2026-01-02T15:04:05Z","samples_ns":[1000,2000]}'`)

	ar := ArtifactRunner{Dir: dir}
	d := Descriptor{Name: "wgpu", Device: "gpu", Artifact: "burnbench-wgpu"}

	res, err := ar.Run(context.Background(), d, "unary")
	require.NoError(t, err)

	assert.Equal(t, "unary", res.Benchmark)
	assert.Equal(t, "wgpu", res.Backend)
	assert.Equal(t, "gpu", res.Device)
	assert.Equal(t, []time.Duration{1000, 2000}, res.Samples)
	assert.False(t, res.Failed())
}

func TestRunRejectsMismatchedIdentity(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu",
		`echo '{"benchmark":"binary","backend":"wgpu","timestamp":"2026-01-02T15:04:05Z"}'`)

	ar := ArtifactRunner{Dir: dir}
	d := Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"}

	_, err := ar.Run(context.Background(), d, "unary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answered for binary/wgpu, wanted unary/wgpu")
}

func TestRunArtifactExitFailure(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu", "exit 3")

	ar := ArtifactRunner{Dir: dir}
	d := Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"}

	_, err := ar.Run(context.Background(), d, "unary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact burnbench-wgpu")
}

func TestRunUnreadableOutput(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu", "echo not-json")

	ar := ArtifactRunner{Dir: dir}
	d := Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"}

	_, err := ar.Run(context.Background(), d, "unary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable result")
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu", "sleep 5")

	ar := ArtifactRunner{Dir: dir, Timeout: 50 * time.Millisecond}
	d := Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"}

	start := time.Now()
	_, err := ar.Run(context.Background(), d, "unary")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "burnbench-wgpu", "exit 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ar := ArtifactRunner{Dir: dir}
	d := Descriptor{Name: "wgpu", Artifact: "burnbench-wgpu"}

	_, err := ar.Run(ctx, d, "unary")
	assert.ErrorIs(t, err, context.Canceled)
}
