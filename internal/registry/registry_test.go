package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apertureless/burnbench/internal/backend"
	"github.com/apertureless/burnbench/internal/bench"
)

func TestBenchmarksSorted(t *testing.T) {
	want := []string{"binary", "custom_gelu", "data", "matmul", "unary"}
	assert.Equal(t, want, Benchmarks())
}

func TestBackendsSorted(t *testing.T) {
	want := []string{
		"candle-cpu",
		"candle-cuda",
		"candle-metal",
		"ndarray",
		"ndarray-blas-accelerate",
		"ndarray-blas-netlib",
		"ndarray-blas-openblas",
		"tch-cpu",
		"tch-gpu",
		"wgpu",
		"wgpu-fusion",
	}
	assert.Equal(t, want, Backends())
}

func TestResolveBackend(t *testing.T) {
	d, err := ResolveBackend("wgpu-fusion")
	require.NoError(t, err)
	assert.Equal(t, "wgpu-fusion", d.Name)
	assert.Equal(t, "gpu", d.Device)
	assert.Equal(t, "burnbench-wgpu-fusion", d.Artifact)
}

func TestResolveBenchmark(t *testing.T) {
	f, err := ResolveBenchmark("matmul")
	require.NoError(t, err)
	require.NotNil(t, f)
}

func TestResolveUnknown(t *testing.T) {
	_, err := ResolveBenchmark("nope")
	assert.EqualError(t, err, `unknown benchmark "nope"`)

	_, err = ResolveBackend("nope")
	assert.EqualError(t, err, `unknown backend "nope"`)
}

func TestRegisterBenchmarkRejectsDuplicate(t *testing.T) {
	f := func(ec *backend.Context) (bench.Benchmark, error) { return nil, nil }

	require.NoError(t, RegisterBenchmark("extra", f))
	t.Cleanup(func() { delete(benchmarks, "extra") })

	err := RegisterBenchmark("extra", f)
	assert.EqualError(t, err, `benchmark "extra" already registered`)

	assert.Contains(t, Benchmarks(), "extra")
}

func TestRegisterBackendRejectsDuplicate(t *testing.T) {
	d := backend.Descriptor{Name: "extra-cpu", Device: "cpu", Artifact: "burnbench-extra-cpu"}

	require.NoError(t, RegisterBackend(d))
	t.Cleanup(func() { delete(backends, "extra-cpu") })

	err := RegisterBackend(d)
	assert.EqualError(t, err, `backend "extra-cpu" already registered`)

	got, err := ResolveBackend("extra-cpu")
	require.NoError(t, err)
	assert.Equal(t, d, got)
}
