// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mesh provides the public API for multi-scale triangle mesh
// batches: vertex positions, tangent frames, steerable input features and
// the packed edge hierarchy consumed by the network.
package mesh

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"

	"gonum.org/v1/gonum/spatial/r3"
)

// Batch holds one or more meshes packed into a single disjoint graph.
type Batch[B tensor.Backend] = mesh.Batch[B]

// PoolLevel describes one step of the coarsening hierarchy.
type PoolLevel = mesh.PoolLevel

// CylinderOptions configures the synthetic cylinder generator.
type CylinderOptions = mesh.CylinderOptions

// Cylinder builds a synthetic three-scale cylinder mesh batch. It is the
// reference input for examples and tests.
func Cylinder[B tensor.Backend](opts CylinderOptions, backend B) (*Batch[B], error) {
	return mesh.Cylinder[B](opts, backend)
}

// Geometry helpers

// FrameFromNormal deterministically completes a unit normal to an
// orthonormal tangent frame (e1, e2).
func FrameFromNormal(n r3.Vec) (e1, e2 r3.Vec) {
	return mesh.FrameFromNormal(n)
}

// LogMap maps a neighbor position into the tangent plane of a vertex,
// returning polar coordinates (radius, angle) in the vertex frame.
func LogMap(pi, pj, e1, e2, n r3.Vec) (r, theta float64) {
	return mesh.LogMap(pi, pj, e1, e2, n)
}

// TransportAngle returns the rotation angle that parallel transport along
// an edge applies to tangential features.
func TransportAngle(e1Src, e1Dst, e2Dst, nDst r3.Vec) float64 {
	return mesh.TransportAngle(e1Src, e1Dst, e2Dst, nDst)
}
