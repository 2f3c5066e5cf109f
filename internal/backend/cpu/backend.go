// Package cpu implements the CPU compute backend for mesh convolution.
package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/parallel"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Backend implements tensor operations on the CPU. Elementwise ops use an
// inplace fast path when the left operand is uniquely referenced, and a
// broadcasting slow path otherwise. Large loops run through the parallel
// package.
type Backend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (c *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *Backend) Device() tensor.Device {
	return c.device
}

// Parallel returns the parallel loop configuration.
func (c *Backend) Parallel() parallel.Config {
	return c.par
}

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("add", a, b, addKernel)
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("sub", a, b, subKernel)
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("mul", a, b, mulKernel)
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("div", a, b, divKernel)
}

// binaryOp dispatches an elementwise binary op with the inplace fast path
// for same-shape unique operands and the broadcast slow path otherwise.
func (c *Backend) binaryOp(name string, a, b *tensor.RawTensor, k kernel) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		// The inplace path must not fire for self-application (x op x):
		// the caller may still read the left operand afterwards.
		if a.IsUnique() && a != b {
			applyInplace(a, b, k)
			return a
		}
		result := mustNewRaw(outShape, a.DType(), c.device)
		applyVectorized(result, a, b, k)
		return result
	}

	result := mustNewRaw(outShape, a.DType(), c.device)
	applyBroadcast(result, a, b, outShape, k)
	return result
}

func mustNewRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("cpu: failed to create result tensor: %v", err))
	}
	return result
}
