package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// SumDim sums along the given dimension.
// Supports negative dim indexing (-1 = last dimension).
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("sumdim", x, dim, keepDim, false)
}

// MeanDim averages along the given dimension.
// Supports negative dim indexing (-1 = last dimension).
func (c *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("meandim", x, dim, keepDim, true)
}

func (c *Backend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: dimension %d out of range for shape %v", name, dim, shape))
	}

	// outer * reduced * inner memory layout
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	reduced := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result := mustNewRaw(outShape, x.DType(), c.device)

	switch x.DType() {
	case tensor.Float32:
		xv, rv := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum float32
				base := o*reduced*inner + in
				for r := 0; r < reduced; r++ {
					sum += xv[base+r*inner]
				}
				if mean {
					sum /= float32(reduced)
				}
				rv[o*inner+in] = sum
			}
		}
	case tensor.Float64:
		xv, rv := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var sum float64
				base := o*reduced*inner + in
				for r := 0; r < reduced; r++ {
					sum += xv[base+r*inner]
				}
				if mean {
					sum /= float64(reduced)
				}
				rv[o*inner+in] = sum
			}
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}

	return result
}
