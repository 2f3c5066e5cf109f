package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("addscalar", x, scalar, addKernel)
}

// MulScalar multiplies every element by a scalar.
func (c *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("mulscalar", x, scalar, mulKernel)
}

// DivScalar divides every element by a scalar.
func (c *Backend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("divscalar", x, scalar, divKernel)
}

func (c *Backend) scalarOp(name string, x *tensor.RawTensor, scalar any, k kernel) *tensor.RawTensor {
	result := mustNewRaw(x.Shape(), x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		s, err := toFloat64(scalar)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
		rv, xv := result.AsFloat32(), x.AsFloat32()
		sf := float32(s)
		for i := range rv {
			rv[i] = k.f32(xv[i], sf)
		}
	case tensor.Float64:
		s, err := toFloat64(scalar)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
		rv, xv := result.AsFloat64(), x.AsFloat64()
		for i := range rv {
			rv[i] = k.f64(xv[i], s)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}

func toFloat64(scalar any) (float64, error) {
	switch s := scalar.(type) {
	case float32:
		return float64(s), nil
	case float64:
		return s, nil
	case int:
		return float64(s), nil
	case int32:
		return float64(s), nil
	case int64:
		return float64(s), nil
	default:
		return 0, fmt.Errorf("unsupported scalar type %T", scalar)
	}
}
