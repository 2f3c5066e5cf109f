package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// axisFrame returns a frame tensor whose tangent basis is (e1, e2) at
// every vertex.
func axisFrame(backend *cpu.Backend, n int, e1, e2 [3]float32) *tensor.Tensor[float32, *cpu.Backend] {
	f := tensor.Zeros[float32](tensor.Shape{n, 2, 3}, backend)
	for v := 0; v < n; v++ {
		for i := 0; i < 3; i++ {
			f.Set(e1[i], v, 0, i)
			f.Set(e2[i], v, 1, i)
		}
	}
	return f
}

func TestSO2ToAmbientVector(t *testing.T) {
	backend := cpu.New()
	frame := axisFrame(backend, 1, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})

	x := tensor.Zeros[float32](tensor.Shape{1, 1, 5}, backend)
	x.Set(2, 0, 0, 1)  // cos component -> e1
	x.Set(-3, 0, 0, 2) // sin component -> e2

	v := SO2ToAmbientVector(x, frame)
	assert.True(t, v.Shape().Equal(tensor.Shape{1, 1, 3}))
	assert.Equal(t, float32(2), v.At(0, 0, 0))
	assert.Equal(t, float32(-3), v.At(0, 0, 1))
	assert.Zero(t, v.At(0, 0, 2))
}

func TestAmbientToSO2VectorDropsNormalPart(t *testing.T) {
	backend := cpu.New()
	frame := axisFrame(backend, 1, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})

	v := tensor.Zeros[float32](tensor.Shape{1, 1, 3}, backend)
	v.Set(4, 0, 0, 0)
	v.Set(-1, 0, 0, 1)
	v.Set(9, 0, 0, 2) // out of plane, must vanish

	x := AmbientToSO2Vector(v, frame, 5)
	assert.True(t, x.Shape().Equal(tensor.Shape{1, 1, 5}))
	assert.Zero(t, x.At(0, 0, 0))
	assert.Equal(t, float32(4), x.At(0, 0, 1))
	assert.Equal(t, float32(-1), x.At(0, 0, 2))
	assert.Zero(t, x.At(0, 0, 3))
	assert.Zero(t, x.At(0, 0, 4))
}

// The tangential part of an ambient vector survives the round trip through
// the steerable representation.
func TestAmbientRoundTrip(t *testing.T) {
	backend := cpu.New()
	// A tilted but orthonormal frame.
	s := float32(0.70710678)
	frame := axisFrame(backend, 2, [3]float32{s, s, 0}, [3]float32{-s, s, 0})

	v := tensor.Zeros[float32](tensor.Shape{2, 1, 3}, backend)
	v.Set(1, 0, 0, 0)
	v.Set(2, 0, 0, 1)
	v.Set(-1, 1, 0, 0)
	v.Set(0.5, 1, 0, 1)

	back := SO2ToAmbientVector(AmbientToSO2Vector(v, frame, 5), frame)
	for i, want := range v.Data() {
		assert.InDelta(t, float64(want), float64(back.Data()[i]), 1e-6)
	}
}

func TestAmbientRejectsBadShapes(t *testing.T) {
	backend := cpu.New()
	frame := axisFrame(backend, 2, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})

	assert.Panics(t, func() {
		SO2ToAmbientVector(tensor.Zeros[float32](tensor.Shape{2, 1, 1}, backend), frame)
	})
	assert.Panics(t, func() {
		SO2ToAmbientVector(tensor.Zeros[float32](tensor.Shape{3, 1, 5}, backend), frame)
	})
	assert.Panics(t, func() {
		AmbientToSO2Vector(tensor.Zeros[float32](tensor.Shape{2, 1, 3}, backend), frame, 1)
	})
}
