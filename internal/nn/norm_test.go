package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

func TestNormBatchNormUnitRMS(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(3, 1e-5, backend)

	x := tensor.Randn[float32](tensor.Shape{16, 3, 5}, backend)
	y := bn.Forward(x)

	for c := 0; c < 3; c++ {
		assert.InDelta(t, 1, rms(y.Data(), 3, 5, c), 1e-3)
	}
}

func TestNormBatchNormBetaShiftsScalarOnly(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(2, 1e-5, backend)
	bn.beta.Tensor().Data()[0] = 0.5
	bn.beta.Tensor().Data()[1] = -1

	x := tensor.Randn[float32](tensor.Shape{8, 2, 3}, backend)
	base := NewNormBatchNorm(2, 1e-5, backend).Forward(x)
	shifted := bn.Forward(x)

	for v := 0; v < 8; v++ {
		assert.InDelta(t, float64(base.At(v, 0, 0))+0.5, float64(shifted.At(v, 0, 0)), 1e-6)
		assert.InDelta(t, float64(base.At(v, 1, 0))-1, float64(shifted.At(v, 1, 0)), 1e-6)
		for i := 1; i < 3; i++ {
			assert.Equal(t, base.At(v, 0, i), shifted.At(v, 0, i))
			assert.Equal(t, base.At(v, 1, i), shifted.At(v, 1, i))
		}
	}
}

func TestNormBatchNormGammaScales(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(1, 1e-5, backend)
	bn.gamma.Tensor().Data()[0] = 2

	x := tensor.Randn[float32](tensor.Shape{8, 1, 3}, backend)
	y := bn.Forward(x)
	assert.InDelta(t, 2, rms(y.Data(), 1, 3, 0), 1e-3)
}

func TestNormBatchNormDeterministic(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(2, 1e-5, backend)

	x := tensor.Randn[float32](tensor.Shape{8, 2, 5}, backend)
	a := bn.Forward(x)
	b := bn.Forward(x)
	assert.Equal(t, a.Data(), b.Data())
}

// Statistics are computed from the input, so Forward must leave it intact.
func TestNormBatchNormDoesNotMutateInput(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(2, 1e-5, backend)

	x := tensor.Randn[float32](tensor.Shape{4, 2, 3}, backend)
	before := append([]float32(nil), x.Data()...)
	bn.Forward(x)
	assert.Equal(t, before, x.Data())
}

func TestNormBatchNormRejectsWrongChannels(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(3, 1e-5, backend)
	assert.Panics(t, func() {
		bn.Forward(tensor.Zeros[float32](tensor.Shape{4, 2, 5}, backend))
	})
}

func TestNormBatchNormStateDict(t *testing.T) {
	backend := cpu.New()
	bn := NewNormBatchNorm(4, 1e-5, backend)
	bn.gamma.Tensor().Data()[2] = 3
	bn.beta.Tensor().Data()[1] = -2

	clone := NewNormBatchNorm(4, 1e-5, backend)
	assert.NoError(t, clone.LoadStateDict(bn.StateDict()))

	x := tensor.Randn[float32](tensor.Shape{8, 4, 5}, backend)
	assert.Equal(t, bn.Forward(x).Data(), clone.Forward(x).Data())
}
