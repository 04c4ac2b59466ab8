package backend

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoCoversRangeExactlyOnce(t *testing.T) {
	ec := NewContext("ndarray", "cpu", 4)

	var mu sync.Mutex
	seen := make([]int, 100)
	err := ec.Do(100, func(lo, hi int) error {
		mu.Lock()
		defer mu.Unlock()
		for i := lo; i < hi; i++ {
			seen[i]++
		}
		return nil
	})
	require.NoError(t, err)

	for i, n := range seen {
		assert.Equal(t, 1, n, "index %d", i)
	}
}

func TestDoSingleWorkerRunsInline(t *testing.T) {
	ec := NewContext("ndarray", "cpu", 1)

	var calls [][2]int
	err := ec.Do(10, func(lo, hi int) error {
		calls = append(calls, [2]int{lo, hi})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 10}}, calls)
}

func TestDoSmallRangeRunsInline(t *testing.T) {
	ec := NewContext("ndarray", "cpu", 8)

	var calls [][2]int
	err := ec.Do(3, func(lo, hi int) error {
		calls = append(calls, [2]int{lo, hi})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 3}}, calls)
}

func TestDoEmptyRange(t *testing.T) {
	ec := NewContext("ndarray", "cpu", 4)

	called := false
	for _, n := range []int{0, -1} {
		err := ec.Do(n, func(lo, hi int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
	}
	assert.False(t, called)
}

func TestDoPropagatesError(t *testing.T) {
	ec := NewContext("ndarray", "cpu", 4)

	err := ec.Do(100, func(lo, hi int) error {
		if lo == 0 {
			return errors.New("bad chunk")
		}
		return nil
	})
	assert.EqualError(t, err, "bad chunk")
}

func TestNdarrayIsLinked(t *testing.T) {
	d := Descriptor{Name: "ndarray", Device: "cpu", Artifact: "burnbench-ndarray"}
	require.True(t, d.Linked())

	ec, err := d.Launch()
	require.NoError(t, err)
	defer ec.Close()

	assert.Equal(t, "ndarray", ec.Backend())
	assert.Equal(t, "cpu", ec.Device())
	assert.GreaterOrEqual(t, ec.Workers(), 1)
	assert.NoError(t, ec.Sync())
}

func TestUnlinkedBackendRefusesLaunch(t *testing.T) {
	d := Descriptor{Name: "wgpu", Device: "gpu", Artifact: "burnbench-wgpu"}
	require.False(t, d.Linked())

	_, err := d.Launch()
	assert.EqualError(t, err, `backend "wgpu" is not linked into this binary`)
}

func TestRegisterEngine(t *testing.T) {
	RegisterEngine("test-engine", func(d Descriptor) *Context {
		return NewContext(d.Name, d.Device, 1)
	})
	t.Cleanup(func() { delete(engines, "test-engine") })

	d := Descriptor{Name: "test-engine", Device: "cpu"}
	require.True(t, d.Linked())

	ec, err := d.Launch()
	require.NoError(t, err)
	assert.Equal(t, 1, ec.Workers())
}
