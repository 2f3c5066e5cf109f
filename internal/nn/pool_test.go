package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	cpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

func poolBatch(transport []float32) *mesh.Batch[*cpu.Backend] {
	return &mesh.Batch[*cpu.Backend]{
		Levels: []mesh.PoolLevel{{
			Cluster:   []int64{0, 0, 1, 1},
			Transport: transport,
			NumCoarse: 2,
		}},
	}
}

func TestParallelTransportPoolMean(t *testing.T) {
	backend := cpu.New()
	pool := NewParallelTransportPool[*cpu.Backend](1, false)
	batch := poolBatch([]float32{0, 0, 0, 0})

	x := tensor.Zeros[float32](tensor.Shape{4, 1, 3}, backend)
	x.Set(2, 0, 0, 0)
	x.Set(4, 1, 0, 0)
	x.Set(1, 2, 0, 0)
	x.Set(5, 3, 0, 0)

	y := pool.Forward(x, batch)
	assert.True(t, y.Shape().Equal(tensor.Shape{2, 1, 3}))
	assert.InDelta(t, 3, float64(y.At(0, 0, 0)), 1e-6)
	assert.InDelta(t, 3, float64(y.At(1, 0, 0)), 1e-6)
}

func TestParallelTransportPoolRotates(t *testing.T) {
	backend := cpu.New()
	pool := NewParallelTransportPool[*cpu.Backend](1, false)
	halfPi := float32(math.Pi / 2)
	batch := poolBatch([]float32{halfPi, halfPi, 0, 0})

	// A unit cos vector at every fine vertex of cluster 0.
	x := tensor.Zeros[float32](tensor.Shape{4, 1, 3}, backend)
	x.Set(1, 0, 0, 1)
	x.Set(1, 1, 0, 1)

	y := pool.Forward(x, batch)

	// Rotation by pi/2 maps (1, 0) to (0, 1) before averaging.
	assert.InDelta(t, 0, float64(y.At(0, 0, 1)), 1e-6)
	assert.InDelta(t, 1, float64(y.At(0, 0, 2)), 1e-6)
}

func TestParallelTransportPoolDoesNotMutateInput(t *testing.T) {
	backend := cpu.New()
	pool := NewParallelTransportPool[*cpu.Backend](1, false)
	batch := poolBatch([]float32{0.3, -0.4, 1.2, 0.9})

	x := tensor.Randn[float32](tensor.Shape{4, 2, 5}, backend)
	before := append([]float32(nil), x.Data()...)
	pool.Forward(x, batch)
	assert.Equal(t, before, x.Data())
}

func TestParallelTransportUnpoolGathers(t *testing.T) {
	backend := cpu.New()
	unpool := NewParallelTransportPool[*cpu.Backend](1, true)
	batch := poolBatch([]float32{0, 0, 0, 0})

	coarse := tensor.Zeros[float32](tensor.Shape{2, 1, 3}, backend)
	coarse.Set(7, 0, 0, 0)
	coarse.Set(9, 1, 0, 0)

	fine := unpool.Forward(coarse, batch)
	assert.True(t, fine.Shape().Equal(tensor.Shape{4, 1, 3}))
	assert.Equal(t, float32(7), fine.At(0, 0, 0))
	assert.Equal(t, float32(7), fine.At(1, 0, 0))
	assert.Equal(t, float32(9), fine.At(2, 0, 0))
	assert.Equal(t, float32(9), fine.At(3, 0, 0))
}

// Single-member clusters make pool followed by unpool the identity: the
// transport rotation is applied on the way down and inverted on the way up.
func TestParallelTransportPoolUnpoolRoundTrip(t *testing.T) {
	backend := cpu.New()
	batch := &mesh.Batch[*cpu.Backend]{
		Levels: []mesh.PoolLevel{{
			Cluster:   []int64{0, 1, 2},
			Transport: []float32{0.5, -1.1, 2.4},
			NumCoarse: 3,
		}},
	}
	pool := NewParallelTransportPool[*cpu.Backend](1, false)
	unpool := NewParallelTransportPool[*cpu.Backend](1, true)

	x := tensor.Randn[float32](tensor.Shape{3, 2, 5}, backend)
	y := unpool.Forward(pool.Forward(x, batch), batch)

	for i, v := range x.Data() {
		assert.InDelta(t, float64(v), float64(y.Data()[i]), 1e-5)
	}
}

func TestParallelTransportPoolRejectsBadInput(t *testing.T) {
	backend := cpu.New()
	batch := poolBatch([]float32{0, 0, 0, 0})

	assert.Panics(t, func() { NewParallelTransportPool[*cpu.Backend](0, false) })

	pool := NewParallelTransportPool[*cpu.Backend](1, false)
	assert.Panics(t, func() {
		pool.Forward(tensor.Zeros[float32](tensor.Shape{3, 1, 3}, backend), batch)
	})

	deep := NewParallelTransportPool[*cpu.Backend](2, false)
	assert.Panics(t, func() {
		deep.Forward(tensor.Zeros[float32](tensor.Shape{4, 1, 3}, backend), batch)
	})
}
