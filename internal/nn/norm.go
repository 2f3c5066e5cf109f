package nn

import (
	"fmt"
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// NormBatchNorm is an equivariance-preserving batch normalization.
//
// Each channel is divided by the root-mean-square norm of its irrep vector
// over the batch and rescaled by a learned gain; a learned bias is applied
// to the order-0 component only, which is the only component invariant
// under gauge rotation. Statistics are computed from the current batch on
// every call, so Forward never mutates state and repeated calls are
// bit-identical.
type NormBatchNorm[B tensor.Backend] struct {
	channels int
	epsilon  float32

	gamma *Parameter[B] // [channels]
	beta  *Parameter[B] // [channels]
}

// NewNormBatchNorm creates a norm-based batch normalization layer.
func NewNormBatchNorm[B tensor.Backend](channels int, epsilon float32, backend B) *NormBatchNorm[B] {
	return &NormBatchNorm[B]{
		channels: channels,
		epsilon:  epsilon,
		gamma:    NewParameter("gamma", Ones[B](tensor.Shape{channels}, backend)),
		beta:     NewParameter("beta", Zeros[B](tensor.Shape{channels}, backend)),
	}
}

// Forward normalizes [N, C, irreps] per channel.
func (b *NormBatchNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] != b.channels {
		panic(fmt.Sprintf("NormBatchNorm.Forward: expected input [N, %d, irreps], got shape %v", b.channels, shape))
	}

	// Mean squared irrep norm per channel over the batch.
	sq := x.Mul(x)
	meanSq := sq.SumDim(-1, false).MeanDim(0, false) // [C]

	scale := meanSq.AddScalar(b.epsilon).Rsqrt().Mul(b.gamma.Tensor())

	out := x.Mul(scale.Reshape(1, b.channels, 1))

	// Bias on the gauge-invariant component.
	beta := b.beta.Tensor().Data()
	data := out.Data()
	n, irreps := shape[0], shape[2]
	for v := 0; v < n; v++ {
		for c := 0; c < b.channels; c++ {
			data[(v*b.channels+c)*irreps] += beta[c]
		}
	}

	return out
}

// Parameters returns the gain and bias.
func (b *NormBatchNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{b.gamma, b.beta}
}

// StateDict returns the parameter map.
func (b *NormBatchNorm[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"gamma": b.gamma.Tensor().Raw(),
		"beta":  b.beta.Tensor().Raw(),
	}
}

// LoadStateDict loads the parameter map.
func (b *NormBatchNorm[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadParams(stateDict, b.gamma, b.beta)
}

// rms is a test hook computing the root-mean-square norm of one channel.
func rms(data []float32, channels, irreps, channel int) float64 {
	n := len(data) / (channels * irreps)
	var sum float64
	for v := 0; v < n; v++ {
		row := data[(v*channels+channel)*irreps : (v*channels+channel+1)*irreps]
		for _, c := range row {
			sum += float64(c) * float64(c)
		}
	}
	return math.Sqrt(sum / float64(n))
}
