/*
PURPOSE:
  The numeric workloads burnbench ships: unary, binary, matmul,
  custom_gelu and data. Each is a plain-Go float kernel that pushes its
  inner loops through the execution context so the engine's worker
  configuration is what gets measured.

REQUIREMENTS:
  User-specified:
  - Workload set and shapes match the published benchmark suite so
    uploaded numbers stay comparable.

  Implementation-discovered:
  - Inputs are filled once in Prepare with a fixed seed; refilling per
    iteration would dominate the timings.
  - Output buffers are preallocated except in `data`, whose entire point
    is allocation and copy cost.

ARCHITECTURE INTEGRATION:
  - Registered by: internal/registry
  - Uses: internal/backend.Context

ERROR HANDLING:
  - Kernels cannot fail; errors only surface from the context's Do.

IMPLEMENTATION RULES:
  - Keep each kernel's arithmetic dumb and obvious. Clever code here
    benchmarks the cleverness, not the backend.

USAGE:
  b, _ := bench.NewUnary(ec)

RELATED FILES:
  - internal/bench/bench.go
  - internal/registry/registry.go

MAINTENANCE:
  - Changing a shape or repeat count invalidates cross-run comparisons;
    bump the tool version when you do.
*/

package bench

import (
	"math"
	"math/rand"

	"github.com/apertureless/burnbench/internal/backend"
)

// fillSeed keeps input data identical across runs and backends.
const fillSeed = 0x5eed

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func randomBuffer(n int, seed int64) []float32 {
	rnd := rand.New(rand.NewSource(seed))
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(rnd.Float64()*2 - 1)
	}
	return buf
}

// --- unary ---

// unaryBenchmark applies tanh elementwise. The choice of tanh is
// arbitrary; any transcendental would do.
type unaryBenchmark struct {
	ec      *backend.Context
	shape   []int
	repeats int
	in, out []float32
}

// NewUnary builds the unary workload on ec.
func NewUnary(ec *backend.Context) (Benchmark, error) {
	return newUnary(ec, []int{32, 512, 1024}, 10), nil
}

func newUnary(ec *backend.Context, shape []int, repeats int) *unaryBenchmark {
	return &unaryBenchmark{ec: ec, shape: shape, repeats: repeats}
}

func (b *unaryBenchmark) Name() string    { return "unary" }
func (b *unaryBenchmark) Shapes() [][]int { return [][]int{b.shape} }
func (b *unaryBenchmark) Warmup() int     { return 3 }
func (b *unaryBenchmark) Samples() int    { return 10 }

func (b *unaryBenchmark) Prepare() error {
	n := numElems(b.shape)
	b.in = randomBuffer(n, fillSeed)
	b.out = make([]float32, n)
	return nil
}

func (b *unaryBenchmark) Execute() error {
	for r := 0; r < b.repeats; r++ {
		if err := b.ec.Do(len(b.in), func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				b.out[i] = float32(math.Tanh(float64(b.in[i])))
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// --- binary ---

// binaryBenchmark multiplies two buffers elementwise.
type binaryBenchmark struct {
	ec       *backend.Context
	shape    []int
	repeats  int
	lhs, rhs []float32
	out      []float32
}

// NewBinary builds the binary workload on ec.
func NewBinary(ec *backend.Context) (Benchmark, error) {
	return newBinary(ec, []int{32, 512, 1024}, 10), nil
}

func newBinary(ec *backend.Context, shape []int, repeats int) *binaryBenchmark {
	return &binaryBenchmark{ec: ec, shape: shape, repeats: repeats}
}

func (b *binaryBenchmark) Name() string    { return "binary" }
func (b *binaryBenchmark) Shapes() [][]int { return [][]int{b.shape, b.shape} }
func (b *binaryBenchmark) Warmup() int     { return 3 }
func (b *binaryBenchmark) Samples() int    { return 10 }

func (b *binaryBenchmark) Prepare() error {
	n := numElems(b.shape)
	b.lhs = randomBuffer(n, fillSeed)
	b.rhs = randomBuffer(n, fillSeed+1)
	b.out = make([]float32, n)
	return nil
}

func (b *binaryBenchmark) Execute() error {
	for r := 0; r < b.repeats; r++ {
		if err := b.ec.Do(len(b.lhs), func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				b.out[i] = b.lhs[i] * b.rhs[i]
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// --- matmul ---

// matmulBenchmark runs a batched dense matrix multiply.
type matmulBenchmark struct {
	ec             *backend.Context
	batch, m, k, n int
	lhs, rhs, out  []float32
}

// NewMatmul builds the matmul workload on ec.
func NewMatmul(ec *backend.Context) (Benchmark, error) {
	return newMatmul(ec, 8, 256, 512, 256), nil
}

func newMatmul(ec *backend.Context, batch, m, k, n int) *matmulBenchmark {
	return &matmulBenchmark{ec: ec, batch: batch, m: m, k: k, n: n}
}

func (b *matmulBenchmark) Name() string { return "matmul" }
func (b *matmulBenchmark) Shapes() [][]int {
	return [][]int{{b.batch, b.m, b.k}, {b.batch, b.k, b.n}}
}
func (b *matmulBenchmark) Warmup() int  { return 2 }
func (b *matmulBenchmark) Samples() int { return 10 }

func (b *matmulBenchmark) Prepare() error {
	b.lhs = randomBuffer(b.batch*b.m*b.k, fillSeed)
	b.rhs = randomBuffer(b.batch*b.k*b.n, fillSeed+1)
	b.out = make([]float32, b.batch*b.m*b.n)
	return nil
}

func (b *matmulBenchmark) Execute() error {
	// Parallelize over (batch, row) pairs; the k loop stays innermost.
	rows := b.batch * b.m
	return b.ec.Do(rows, func(lo, hi int) error {
		for row := lo; row < hi; row++ {
			bi, mi := row/b.m, row%b.m
			lhsRow := b.lhs[(bi*b.m+mi)*b.k : (bi*b.m+mi+1)*b.k]
			outRow := b.out[(bi*b.m+mi)*b.n : (bi*b.m+mi+1)*b.n]
			rhsMat := b.rhs[bi*b.k*b.n : (bi+1)*b.k*b.n]
			for ni := range outRow {
				outRow[ni] = 0
			}
			for ki, l := range lhsRow {
				rhsRow := rhsMat[ki*b.n : (ki+1)*b.n]
				for ni, r := range rhsRow {
					outRow[ni] += l * r
				}
			}
		}
		return nil
	})
}

// --- custom_gelu ---

// geluBenchmark applies the exact (erf-based) GELU activation.
type geluBenchmark struct {
	ec      *backend.Context
	shape   []int
	in, out []float32
}

// NewCustomGelu builds the custom_gelu workload on ec.
func NewCustomGelu(ec *backend.Context) (Benchmark, error) {
	return newCustomGelu(ec, []int{32, 512, 1024}), nil
}

func newCustomGelu(ec *backend.Context, shape []int) *geluBenchmark {
	return &geluBenchmark{ec: ec, shape: shape}
}

func (b *geluBenchmark) Name() string    { return "custom_gelu" }
func (b *geluBenchmark) Shapes() [][]int { return [][]int{b.shape} }
func (b *geluBenchmark) Warmup() int     { return 2 }
func (b *geluBenchmark) Samples() int    { return 10 }

func (b *geluBenchmark) Prepare() error {
	n := numElems(b.shape)
	b.in = randomBuffer(n, fillSeed)
	b.out = make([]float32, n)
	return nil
}

func (b *geluBenchmark) Execute() error {
	const invSqrt2 = 0.7071067811865476
	return b.ec.Do(len(b.in), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			x := float64(b.in[i])
			b.out[i] = float32(0.5 * x * (1 + math.Erf(x*invSqrt2)))
		}
		return nil
	})
}

// --- data ---

// dataBenchmark measures buffer construction and copy-out, no arithmetic.
type dataBenchmark struct {
	ec    *backend.Context
	shape []int
	src   []float32
	sink  []float32
}

// NewData builds the data-movement workload on ec.
func NewData(ec *backend.Context) (Benchmark, error) {
	return newData(ec, []int{32, 512, 1024}), nil
}

func newData(ec *backend.Context, shape []int) *dataBenchmark {
	return &dataBenchmark{ec: ec, shape: shape}
}

func (b *dataBenchmark) Name() string    { return "data" }
func (b *dataBenchmark) Shapes() [][]int { return [][]int{b.shape} }
func (b *dataBenchmark) Warmup() int     { return 1 }
func (b *dataBenchmark) Samples() int    { return 10 }

func (b *dataBenchmark) Prepare() error {
	b.src = randomBuffer(numElems(b.shape), fillSeed)
	return nil
}

func (b *dataBenchmark) Execute() error {
	// Allocation is deliberately inside the timed window.
	dst := make([]float32, len(b.src))
	err := b.ec.Do(len(b.src), func(lo, hi int) error {
		copy(dst[lo:hi], b.src[lo:hi])
		return nil
	})
	b.sink = dst
	return err
}
