package bench

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apertureless/burnbench/internal/backend"
)

func testContext() *backend.Context {
	return backend.NewContext("ndarray", "cpu", 2)
}

func TestUnaryAppliesTanh(t *testing.T) {
	b := newUnary(testContext(), []int{8}, 1)
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Execute())

	for i, x := range b.in {
		assert.InDelta(t, math.Tanh(float64(x)), float64(b.out[i]), 1e-6)
	}
}

func TestBinaryMultipliesElementwise(t *testing.T) {
	b := newBinary(testContext(), []int{16}, 1)
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Execute())

	assert.NotEqual(t, b.lhs, b.rhs)
	for i := range b.out {
		assert.InDelta(t, float64(b.lhs[i]*b.rhs[i]), float64(b.out[i]), 1e-6)
	}
}

func TestMatmulMatchesReference(t *testing.T) {
	b := newMatmul(testContext(), 2, 3, 4, 5)
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Execute())

	for bi := 0; bi < b.batch; bi++ {
		for mi := 0; mi < b.m; mi++ {
			for ni := 0; ni < b.n; ni++ {
				var want float64
				for ki := 0; ki < b.k; ki++ {
					l := b.lhs[(bi*b.m+mi)*b.k+ki]
					r := b.rhs[bi*b.k*b.n+ki*b.n+ni]
					want += float64(l) * float64(r)
				}
				got := b.out[(bi*b.m+mi)*b.n+ni]
				assert.InDelta(t, want, float64(got), 1e-4)
			}
		}
	}
}

func TestCustomGeluMatchesErfForm(t *testing.T) {
	b := newCustomGelu(testContext(), []int{8})
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Execute())

	for i, v := range b.in {
		x := float64(v)
		want := 0.5 * x * (1 + math.Erf(x/math.Sqrt2))
		assert.InDelta(t, want, float64(b.out[i]), 1e-6)
	}
}

func TestDataCopiesIntoFreshBuffer(t *testing.T) {
	b := newData(testContext(), []int{64})
	require.NoError(t, b.Prepare())
	require.NoError(t, b.Execute())

	assert.Equal(t, b.src, b.sink)
	assert.NotSame(t, &b.src[0], &b.sink[0])
}

func TestRandomBufferDeterminism(t *testing.T) {
	a := randomBuffer(32, fillSeed)
	b := randomBuffer(32, fillSeed)
	c := randomBuffer(32, fillSeed+1)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, v := range a {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.Less(t, v, float32(1))
	}
}

func TestStockWorkloadPhases(t *testing.T) {
	ec := testContext()

	cases := []struct {
		factory Factory
		name    string
		warmup  int
		samples int
	}{
		{NewUnary, "unary", 3, 10},
		{NewBinary, "binary", 3, 10},
		{NewMatmul, "matmul", 2, 10},
		{NewCustomGelu, "custom_gelu", 2, 10},
		{NewData, "data", 1, 10},
	}
	for _, tc := range cases {
		b, err := tc.factory(ec)
		require.NoError(t, err)
		assert.Equal(t, tc.name, b.Name())
		assert.Equal(t, tc.warmup, b.Warmup())
		assert.Equal(t, tc.samples, b.Samples())
		assert.NotEmpty(t, b.Shapes())
	}
}

func TestMatmulShapes(t *testing.T) {
	b, err := NewMatmul(testContext())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{8, 256, 512}, {8, 512, 256}}, b.Shapes())
}
