// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the gauge-equivariant layer
// library: convolutions, nonlinearities, normalization and pooling over
// SO(2) steerable vertex features.
package nn

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/nn"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Module interface defines the common interface for all network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// CountParameters returns the total number of scalar values across all
// parameters of a module.
func CountParameters[B tensor.Backend](m Module[B]) int {
	return nn.CountParameters(m)
}

// ParameterTable returns a human-readable table of a module's parameters.
func ParameterTable[B tensor.Backend](m Module[B]) string {
	return nn.ParameterTable(m)
}

// Representations

// Rep describes a steerable feature representation: Total channels, of
// which the first Scalar carry rotation order 0 only.
type Rep = nn.Rep

// Regular returns the representation in which every channel carries all
// rotation orders.
func Regular(channels int) Rep {
	return nn.Regular(channels)
}

// Irreps returns the number of irrep components per channel for a given
// maximum rotation order.
func Irreps(maxOrder int) int {
	return nn.Irreps(maxOrder)
}

// Layers

// GemLinear is a pointwise gauge-equivariant linear map.
type GemLinear[B tensor.Backend] = nn.GemLinear[B]

// NewGemLinear creates a pointwise equivariant linear layer.
func NewGemLinear[B tensor.Backend](inRep, outRep Rep, maxOrder int, backend B) *GemLinear[B] {
	return nn.NewGemLinear(inRep, outRep, maxOrder, backend)
}

// GemConv is the gauge-equivariant mesh convolution.
type GemConv[B tensor.Backend] = nn.GemConv[B]

// NewGemConv creates a gauge-equivariant convolution layer.
func NewGemConv[B tensor.Backend](inRep, outRep Rep, maxOrder, nRings, bandLimit int, backend B) *GemConv[B] {
	return nn.NewGemConv(inRep, outRep, maxOrder, nRings, bandLimit, backend)
}

// RegularNonlinearity applies a pointwise nonlinearity via equispaced
// angular samples.
type RegularNonlinearity[B tensor.Backend] = nn.RegularNonlinearity[B]

// NewRegularNonlinearity creates a regular nonlinearity layer.
func NewRegularNonlinearity[B tensor.Backend](maxOrder, numSamples int, backend B) *RegularNonlinearity[B] {
	return nn.NewRegularNonlinearity(maxOrder, numSamples, backend)
}

// NormBatchNorm normalizes steerable features by their rotation-invariant
// magnitude.
type NormBatchNorm[B tensor.Backend] = nn.NormBatchNorm[B]

// NewNormBatchNorm creates a norm-based equivariant batch normalization.
func NewNormBatchNorm[B tensor.Backend](channels int, epsilon float32, backend B) *NormBatchNorm[B] {
	return nn.NewNormBatchNorm(channels, epsilon, backend)
}

// Blocks

// BlockOptions configures a GemResNetBlock.
type BlockOptions = nn.BlockOptions

// GemResNetBlock is a residual block of two convolutions.
type GemResNetBlock[B tensor.Backend] = nn.GemResNetBlock[B]

// NewGemResNetBlock creates a residual block.
func NewGemResNetBlock[B tensor.Backend](inRep, outRep Rep, maxOrder int, opts BlockOptions, backend B) *GemResNetBlock[B] {
	return nn.NewGemResNetBlock(inRep, outRep, maxOrder, opts, backend)
}

// Pooling

// ParallelTransportPool moves features between mesh scales, transporting
// them along the cluster assignment.
type ParallelTransportPool[B tensor.Backend] = nn.ParallelTransportPool[B]

// NewParallelTransportPool creates a pooling (or unpooling) layer for the
// given level of the mesh hierarchy.
func NewParallelTransportPool[B tensor.Backend](level int, unpool bool) *ParallelTransportPool[B] {
	return nn.NewParallelTransportPool[B](level, unpool)
}

// Ambient conversion

// SO2ToAmbientVector converts order-1 feature components to ambient 3D
// vectors using per-vertex tangent frames.
func SO2ToAmbientVector[B tensor.Backend](x, frame *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.SO2ToAmbientVector(x, frame)
}

// AmbientToSO2Vector projects ambient 3D vectors onto per-vertex tangent
// frames, producing steerable features with the tangential part in the
// order-1 components.
func AmbientToSO2Vector[B tensor.Backend](v, frame *tensor.Tensor[float32, B], irreps int) *tensor.Tensor[float32, B] {
	return nn.AmbientToSO2Vector(v, frame, irreps)
}
