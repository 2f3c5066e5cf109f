// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides the public API for the ready-made network
// architectures.
package models

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/models"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/nn"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/transform"
)

// Config holds the construction parameters of GEMGCN.
type Config = models.Config

// GEMGCN is the gauge-equivariant mesh convolutional network: a U-Net
// style encoder/decoder over three mesh scales, predicting one ambient 3D
// vector per vertex.
type GEMGCN[B tensor.Backend] = models.GEMGCN[B]

// ScaleGraph is the per-scale view of a batch consumed by
// GEMGCN.ForwardPrepared.
type ScaleGraph[B tensor.Backend] = transform.ScaleGraph[B]

// New constructs a GEMGCN network.
//
// Example:
//
//	backend := cpu.New()
//	model, err := models.New(models.Config{
//	    Radii:  []float64{0.05, 0.1, 0.2},
//	    InRep:  nn.Rep{Scalar: 3, Total: 3},
//	    OutRep: nn.Rep{Scalar: 0, Total: 1},
//	}, backend)
func New[B tensor.Backend](cfg Config, backend B) (*GEMGCN[B], error) {
	return models.New[B](cfg, backend)
}

// Save writes the parameters of a module to path.
func Save[B tensor.Backend](path string, m nn.Module[B]) error {
	return models.Save[B](path, m)
}

// Load reads parameters from path into a constructed module.
func Load[B tensor.Backend](path string, m nn.Module[B]) error {
	return models.Load[B](path, m)
}
