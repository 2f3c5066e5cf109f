package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Reshape returns a tensor with the same data and a new shape.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	// Contiguous row-major layout: the bytes carry over unchanged into a
	// fresh buffer under the new shape. The input is left untouched.
	result := t.Clone()
	return c.withShape(result, newShape)
}

func (c *Backend) withShape(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := mustNewRaw(shape, t.DType(), c.device)
	copy(out.Data(), t.Data()[:t.ByteSize()])
	t.Release()
	return out
}

// Transpose permutes the tensor's axes. With no arguments all axes are
// reversed.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", ndim, len(axes)))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	result := mustNewRaw(outShape, t.DType(), c.device)

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	n := t.NumElements()

	switch t.DType() {
	case tensor.Float32:
		tv, rv := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			src := 0
			for d := 0; d < ndim; d++ {
				coord := (i / outStrides[d]) % outShape[d]
				src += coord * inStrides[axes[d]]
			}
			rv[i] = tv[src]
		}
	case tensor.Float64:
		tv, rv := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			src := 0
			for d := 0; d < ndim; d++ {
				coord := (i / outStrides[d]) % outShape[d]
				src += coord * inStrides[axes[d]]
			}
			rv[i] = tv[src]
		}
	default:
		panic("transpose: unsupported dtype")
	}

	return result
}

// Squeeze removes a dimension of size 1 at the given position.
func (c *Backend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("squeeze: dimension %d out of range for shape %v", dim, shape))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}

	outShape := make(tensor.Shape, 0, len(shape)-1)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, shape[dim+1:]...)

	return c.withShape(x.Clone(), outShape)
}

// Unsqueeze adds a dimension of size 1 at the given position.
func (c *Backend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape)+1)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, 1)
	outShape = append(outShape, shape[dim:]...)

	return c.withShape(x.Clone(), outShape)
}

// Cat concatenates tensors along the specified dimension.
func (c *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0]
	shape := first.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cat: dimension %d out of range for shape %v", dim, shape))
	}

	catSize := 0
	for _, t := range tensors {
		ts := t.Shape()
		if len(ts) != len(shape) {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", shape, ts))
		}
		for d := range ts {
			if d != dim && ts[d] != shape[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, shape, ts))
			}
		}
		if t.DType() != first.DType() {
			panic("cat: dtype mismatch")
		}
		catSize += ts[dim]
	}

	outShape := shape.Clone()
	outShape[dim] = catSize
	result := mustNewRaw(outShape, first.DType(), c.device)

	// outer copies of contiguous (dim..inner) blocks per source tensor
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}

	elemSize := first.DType().Size()
	outBytes := result.Data()
	outRow := catSize * inner * elemSize

	offset := 0
	for _, t := range tensors {
		blockElems := t.Shape()[dim] * inner
		block := blockElems * elemSize
		src := t.Data()
		for o := 0; o < outer; o++ {
			dst := o*outRow + offset
			copy(outBytes[dst:dst+block], src[o*block:(o+1)*block])
		}
		offset += block
	}

	return result
}
