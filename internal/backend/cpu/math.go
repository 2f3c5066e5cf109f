package cpu

import (
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Sqrt computes the element-wise square root.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp(x, math.Sqrt)
}

// Rsqrt computes the element-wise reciprocal square root (1/sqrt(x)).
func (c *Backend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp(x, func(v float64) float64 { return 1.0 / math.Sqrt(v) })
}

func (c *Backend) unaryOp(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		rv, xv := result.AsFloat32(), x.AsFloat32()
		for i := range rv {
			rv[i] = float32(f(float64(xv[i])))
		}
	case tensor.Float64:
		rv, xv := result.AsFloat64(), x.AsFloat64()
		for i := range rv {
			rv[i] = f(xv[i])
		}
	default:
		panic("cpu: unary math ops only support float32 and float64")
	}

	return result
}
