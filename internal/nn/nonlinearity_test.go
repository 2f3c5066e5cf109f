package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

func TestRegularNonlinearityRejectsUndersampling(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() { NewRegularNonlinearity(2, 4, backend) })
	assert.NotPanics(t, func() { NewRegularNonlinearity(2, 5, backend) })
}

func TestRegularNonlinearityPositiveScalarPassthrough(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)

	x := tensor.Zeros[float32](tensor.Shape{2, 1, 5}, backend)
	x.Set(3, 0, 0, 0)
	x.Set(1.5, 1, 0, 0)

	y := relu.Forward(x)
	assert.InDelta(t, 3, float64(y.At(0, 0, 0)), 1e-5)
	assert.InDelta(t, 1.5, float64(y.At(1, 0, 0)), 1e-5)
	for v := 0; v < 2; v++ {
		for i := 1; i < 5; i++ {
			assert.InDelta(t, 0, float64(y.At(v, 0, i)), 1e-5)
		}
	}
}

func TestRegularNonlinearityNegativeScalarKilled(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)

	x := tensor.Zeros[float32](tensor.Shape{1, 1, 5}, backend)
	x.Set(-4, 0, 0, 0)

	y := relu.Forward(x)
	for _, v := range y.Data() {
		assert.Zero(t, v)
	}
}

// A band-limited signal that stays positive at every gauge angle passes
// through the sample-rectify-project cycle unchanged.
func TestRegularNonlinearityReconstructsPositiveSignal(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)

	x := tensor.Zeros[float32](tensor.Shape{1, 1, 5}, backend)
	x.Set(10, 0, 0, 0)
	x.Set(1, 0, 0, 1)
	x.Set(-0.5, 0, 0, 2)
	x.Set(0.25, 0, 0, 3)
	x.Set(0.75, 0, 0, 4)

	y := relu.Forward(x)
	for i := 0; i < 5; i++ {
		assert.InDelta(t, float64(x.At(0, 0, i)), float64(y.At(0, 0, i)), 1e-4)
	}
}

func TestRegularNonlinearityEquivariance(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)

	x := tensor.Zeros[float32](tensor.Shape{1, 2, 5}, backend)
	for c := 0; c < 2; c++ {
		x.Set(5, 0, c, 0)
		x.Set(0.8, 0, c, 1)
		x.Set(-0.3, 0, c, 2)
		x.Set(0.1, 0, c, 3)
		x.Set(0.6, 0, c, 4)
	}

	angle := 0.9
	a := relu.Forward(rotate(x, angle))
	b := rotate(relu.Forward(x), angle)
	for i, v := range a.Data() {
		assert.InDelta(t, float64(b.Data()[i]), float64(v), 1e-4)
	}
}

func TestRegularNonlinearityRejectsWrongIrreps(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)
	assert.Panics(t, func() {
		relu.Forward(tensor.Zeros[float32](tensor.Shape{1, 1, 3}, backend))
	})
}

func TestRegularNonlinearityHasNoParameters(t *testing.T) {
	backend := cpu.New()
	relu := NewRegularNonlinearity(2, 7, backend)
	assert.Empty(t, relu.Parameters())
	assert.Empty(t, relu.StateDict())
	assert.NoError(t, relu.LoadStateDict(nil))
}
