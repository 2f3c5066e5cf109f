// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for the dense tensors the mesh
// networks compute on.
//
//   - Tensor[T, B]: generic tensor, element type and backend fixed at
//     compile time
//   - RawTensor: untyped refcounted storage underneath every view
//   - Backend: device-specific compute contract
//   - Shape, DataType, Device: common type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// DType constrains tensor element types: float32, float64, int32,
// int64 and bool.
type DType = tensor.DType

// DataType is the runtime tag of a tensor's element type.
type DataType = tensor.DataType

const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Bool    DataType = tensor.Bool
)

// Device identifies where tensor memory lives.
type Device = tensor.Device

const (
	CPU Device = tensor.CPU
)

// Shape holds the extent of every tensor axis, e.g. Shape{2, 3, 4}.
type Shape = tensor.Shape

// RawTensor is the untyped storage shared by all tensor views.
type RawTensor = tensor.RawTensor

// Tensor couples storage with an element type T and a backend B.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Zeros allocates a zero-filled tensor.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones allocates a tensor of ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full allocates a tensor with every element set to value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Randn allocates a float tensor with standard normal entries.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b)
}

// FromSlice copies a Go slice into a new tensor:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a RawTensor; prefer the typed creation functions above.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw allocates untyped storage.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Cat concatenates tensors along one axis.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}

// BroadcastShapes resolves the common shape of two operands under the
// usual broadcasting rules and reports whether stretching is needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
