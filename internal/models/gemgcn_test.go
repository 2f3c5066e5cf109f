package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/nn"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

func testConfig() Config {
	return Config{
		Radii:  []float64{1.0, 2.0, 4.0},
		InRep:  nn.Rep{Scalar: 3, Total: 3},
		OutRep: nn.Rep{Scalar: 0, Total: 1},
	}
}

func testBatch(t *testing.T, backend *cpu.Backend) *mesh.Batch[*cpu.Backend] {
	t.Helper()
	batch, err := mesh.Cylinder(mesh.CylinderOptions{
		Rings:    8,
		Segments: 8,
		Radius:   1,
		Length:   4,
		Channels: 1,
		Irreps:   5,
	}, backend)
	require.NoError(t, err)
	return batch
}

func TestNewValidatesConfig(t *testing.T) {
	backend := cpu.New()

	_, err := New(Config{Radii: []float64{1, 2}, InRep: nn.Regular(3), OutRep: nn.Regular(1)}, backend)
	assert.ErrorContains(t, err, "scale radii")

	cfg := testConfig()
	cfg.InRep = nn.Rep{Scalar: 4, Total: 3}
	_, err = New(cfg, backend)
	assert.ErrorContains(t, err, "input rep")

	cfg = testConfig()
	cfg.OutRep = nn.Rep{Scalar: 0, Total: 0}
	_, err = New(cfg, backend)
	assert.ErrorContains(t, err, "output rep")
}

func TestConfigDefaults(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Config().MaxOrder)
	assert.Equal(t, 2, m.Config().NRings)
}

func TestPrepareInput(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	x := m.PrepareInput(batch)
	n := batch.NumVertices()
	require.True(t, x.Shape().Equal(tensor.Shape{n, 3, 5}))

	// Channel 1 carries the geodesic distance in the order-0 slot.
	for v := 0; v < n; v++ {
		assert.Equal(t, batch.Geo[v], x.At(v, 1, 0))
		for i := 1; i < 5; i++ {
			assert.Zero(t, x.At(v, 1, i))
		}
	}
	// Channel 2 carries the per-mesh boundary condition.
	for v := 0; v < n; v++ {
		assert.Equal(t, batch.Condition[0], x.At(v, 2, 0))
	}
}

func TestForwardShape(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	out := m.Forward(batch)
	assert.True(t, out.Shape().Equal(tensor.Shape{batch.NumVertices(), 3}))
}

func TestForwardWithFirstOrderFeatures(t *testing.T) {
	backend := cpu.New()
	// MaxOrder 1 puts the block band limit above the basis order; the
	// kernel must clamp its reflection-family frequencies to the basis.
	cfg := testConfig()
	cfg.MaxOrder = 1
	m, err := New(cfg, backend)
	require.NoError(t, err)

	batch, err := mesh.Cylinder(mesh.CylinderOptions{
		Rings:    8,
		Segments: 8,
		Radius:   1,
		Length:   4,
		Channels: 1,
		Irreps:   3,
	}, backend)
	require.NoError(t, err)

	out := m.Forward(batch)
	assert.True(t, out.Shape().Equal(tensor.Shape{batch.NumVertices(), 3}))
}

func TestSkipConnectionRowsAlign(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	// Each unpool must land back on the vertex count of the finer scale,
	// otherwise the skip concatenations cannot line up.
	irreps := nn.Irreps(m.Config().MaxOrder)
	for level := 1; level <= len(batch.Levels); level++ {
		fine := batch.VerticesAtScale(level - 1)
		coarse := batch.VerticesAtScale(level)
		require.Equal(t, fine, len(batch.Levels[level-1].Cluster))
		require.Equal(t, coarse, batch.Levels[level-1].NumCoarse)

		x := tensor.Randn[float32](tensor.Shape{fine, 2, irreps}, backend)
		pool := nn.NewParallelTransportPool[*cpu.Backend](level, false)
		unpool := nn.NewParallelTransportPool[*cpu.Backend](level, true)

		down := pool.Forward(x, batch)
		assert.Equal(t, coarse, down.Shape()[0])
		up := unpool.Forward(down, batch)
		assert.Equal(t, fine, up.Shape()[0])
	}
}

func TestForwardDeterministic(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	a := m.Forward(batch)
	b := m.Forward(batch)
	assert.Equal(t, a.Data(), b.Data())
}

func TestForwardPreparedMatchesForward(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	scales := m.PrepareScales(batch)
	require.Len(t, scales, 3)

	a := m.Forward(batch)
	b := m.ForwardPrepared(batch, scales)
	assert.Equal(t, a.Data(), b.Data())

	assert.Panics(t, func() { m.ForwardPrepared(batch, scales[:2]) })
}

func TestCountParameters(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)

	count := m.CountParameters()
	assert.Positive(t, count)
	// 14 blocks with 8 tensors each, plus a shortcut weight in the four
	// blocks whose input and output representations differ.
	assert.Equal(t, 14*8+4, len(m.StateDict()))
	assert.Contains(t, m.ParameterTable(), "TOTAL")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)
	batch := testBatch(t, backend)

	path := filepath.Join(t.TempDir(), "gemgcn.bin")
	require.NoError(t, Save[*cpu.Backend](path, m))

	restored, err := New(testConfig(), backend)
	require.NoError(t, err)
	require.NoError(t, Load[*cpu.Backend](path, restored))

	assert.Equal(t, m.Forward(batch).Data(), restored.Forward(batch).Data())
}

func TestLoadRejectsMismatchedModel(t *testing.T) {
	backend := cpu.New()
	m, err := New(testConfig(), backend)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gemgcn.bin")
	require.NoError(t, Save[*cpu.Backend](path, m))

	cfg := testConfig()
	cfg.NRings = 3
	other, err := New(cfg, backend)
	require.NoError(t, err)
	assert.Error(t, Load[*cpu.Backend](path, other))
}
