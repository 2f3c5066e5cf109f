// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"

// Backend is the compute interface tensors dispatch to. The op surface
// is the one mesh convolution needs: elementwise arithmetic, small dense
// matmuls for the angular sample transforms, reductions for
// normalization, concatenation for skip connections and row indexing for
// pooling.
//
// Implementations:
//   - backend/cpu: pure Go with parallel loops over vertices
//
// Example:
//
//	import (
//	    "github.com/MIAGroupUT/coronary-mesh-convolution/tensor"
//	    "github.com/MIAGroupUT/coronary-mesh-convolution/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // dispatches to backend.Add
type Backend interface {
	// Element-wise binary operations.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise operations against a scalar.
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Matrix multiplication over the trailing two axes.
	MatMul(a, b *RawTensor) *RawTensor

	// Element-wise math.
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor

	// Reductions along one axis; keepDim retains it with extent 1.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Shape manipulation.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor

	// Concatenation along one axis.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Row indexing over the leading (vertex) axis: IndexSelect gathers
	// rows, ScatterMean averages rows sharing a target index. Both
	// underpin parallel-transport pooling.
	IndexSelect(x *RawTensor, index []int64) *RawTensor
	ScatterMean(x *RawTensor, index []int64, dimSize int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}

// Compile-time check that the internal backend contract satisfies the
// public one.
var _ Backend = tensor.Backend(nil)
