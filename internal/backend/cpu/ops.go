package cpu

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// kernel is an elementwise binary op over float32 and float64 payloads.
type kernel struct {
	f32 func(a, b float32) float32
	f64 func(a, b float64) float64
}

var (
	addKernel = kernel{
		f32: func(a, b float32) float32 { return a + b },
		f64: func(a, b float64) float64 { return a + b },
	}
	subKernel = kernel{
		f32: func(a, b float32) float32 { return a - b },
		f64: func(a, b float64) float64 { return a - b },
	}
	mulKernel = kernel{
		f32: func(a, b float32) float32 { return a * b },
		f64: func(a, b float64) float64 { return a * b },
	}
	divKernel = kernel{
		f32: func(a, b float32) float32 { return a / b },
		f64: func(a, b float64) float64 { return a / b },
	}
)

// applyInplace performs a (op)= b.
// Requires: a.Shape().Equal(b.Shape()) && a.IsUnique().
func applyInplace(a, b *tensor.RawTensor, k kernel) {
	switch a.DType() {
	case tensor.Float32:
		av, bv := a.AsFloat32(), b.AsFloat32()
		for i := range av {
			av[i] = k.f32(av[i], bv[i])
		}
	case tensor.Float64:
		av, bv := a.AsFloat64(), b.AsFloat64()
		for i := range av {
			av[i] = k.f64(av[i], bv[i])
		}
	default:
		panic("cpu: unsupported dtype for elementwise op")
	}
}

// applyVectorized performs result = a (op) b over equal shapes.
func applyVectorized(result, a, b *tensor.RawTensor, k kernel) {
	switch a.DType() {
	case tensor.Float32:
		rv, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := range rv {
			rv[i] = k.f32(av[i], bv[i])
		}
	case tensor.Float64:
		rv, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := range rv {
			rv[i] = k.f64(av[i], bv[i])
		}
	default:
		panic("cpu: unsupported dtype for elementwise op")
	}
}

// applyBroadcast performs result = a (op) b with NumPy-style broadcasting.
func applyBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape, k kernel) {
	outStrides := outShape.ComputeStrides()
	aIdx := broadcastIndexer(a.Shape(), outShape)
	bIdx := broadcastIndexer(b.Shape(), outShape)
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		rv, av, bv := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		for i := 0; i < n; i++ {
			rv[i] = k.f32(av[aIdx(i, outStrides)], bv[bIdx(i, outStrides)])
		}
	case tensor.Float64:
		rv, av, bv := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		for i := 0; i < n; i++ {
			rv[i] = k.f64(av[aIdx(i, outStrides)], bv[bIdx(i, outStrides)])
		}
	default:
		panic("cpu: unsupported dtype for elementwise op")
	}
}

// broadcastIndexer maps a flat index in the output shape back into a flat
// index of the (possibly smaller) operand shape.
func broadcastIndexer(shape, outShape tensor.Shape) func(flat int, outStrides []int) int {
	if shape.Equal(outShape) {
		return func(flat int, _ []int) int { return flat }
	}

	strides := shape.ComputeStrides()
	pad := len(outShape) - len(shape)

	return func(flat int, outStrides []int) int {
		idx := 0
		for d := 0; d < len(outShape); d++ {
			coord := (flat / outStrides[d]) % outShape[d]
			sd := d - pad
			if sd < 0 {
				continue
			}
			if shape[sd] == 1 {
				continue
			}
			idx += coord * strides[sd]
		}
		return idx
	}
}
