package nn

import (
	"fmt"
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// RegularNonlinearity applies a pointwise nonlinearity to steerable
// features without breaking equivariance: each channel is sampled at
// equispaced gauge angles, ReLU is applied to the samples, and the result
// is projected back onto the irrep components by the least-squares inverse
// of the sampling transform.
//
// Scalar-only channels pass through unchanged up to ReLU on the order-0
// component: their samples are constant, and the inverse projection of a
// constant has no higher-order content.
type RegularNonlinearity[B tensor.Backend] struct {
	maxOrder   int
	numSamples int

	forward *tensor.Tensor[float32, B] // [irreps, samples]
	inverse *tensor.Tensor[float32, B] // [samples, irreps]
}

// NewRegularNonlinearity builds the sampling transform for the given
// maximum order. numSamples must exceed 2*maxOrder for the inverse to be
// exact.
func NewRegularNonlinearity[B tensor.Backend](maxOrder, numSamples int, backend B) *RegularNonlinearity[B] {
	if numSamples <= 2*maxOrder {
		panic(fmt.Sprintf("RegularNonlinearity: %d samples cannot resolve order %d", numSamples, maxOrder))
	}

	irreps := Irreps(maxOrder)
	fw := tensor.Zeros[float32](tensor.Shape{irreps, numSamples}, backend)
	inv := tensor.Zeros[float32](tensor.Shape{numSamples, irreps}, backend)

	fwd := fw.Data()
	invd := inv.Data()
	for s := 0; s < numSamples; s++ {
		theta := 2 * math.Pi * float64(s) / float64(numSamples)

		fwd[s] = 1 // order 0 row
		invd[s*irreps] = 1 / float32(numSamples)
		for q := 1; q <= maxOrder; q++ {
			cq := math.Cos(float64(q) * theta)
			sq := math.Sin(float64(q) * theta)
			fwd[(2*q-1)*numSamples+s] = float32(cq)
			fwd[2*q*numSamples+s] = float32(sq)
			invd[s*irreps+2*q-1] = float32(2 * cq / float64(numSamples))
			invd[s*irreps+2*q] = float32(2 * sq / float64(numSamples))
		}
	}

	return &RegularNonlinearity[B]{
		maxOrder:   maxOrder,
		numSamples: numSamples,
		forward:    fw,
		inverse:    inv,
	}
}

// Forward applies the nonlinearity to [N, C, irreps].
func (r *RegularNonlinearity[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != Irreps(r.maxOrder) {
		panic(fmt.Sprintf("RegularNonlinearity.Forward: expected [N, C, %d], got shape %v", Irreps(r.maxOrder), shape))
	}

	n, c, irreps := shape[0], shape[1], shape[2]

	// Sample, rectify, project back.
	flat := x.Reshape(n*c, irreps)
	samples := flat.MatMul(r.forward)

	data := samples.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}

	return samples.MatMul(r.inverse).Reshape(n, c, irreps)
}

// Parameters returns an empty slice; the transform has no trainable state.
func (r *RegularNonlinearity[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (r *RegularNonlinearity[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (r *RegularNonlinearity[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}
