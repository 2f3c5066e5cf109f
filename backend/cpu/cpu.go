// Copyright 2026 MIA Group, University of Twente. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the pure Go CPU backend.
package cpu

import (
	internalcpu "github.com/MIAGroupUT/coronary-mesh-convolution/internal/backend/cpu"
	"github.com/MIAGroupUT/coronary-mesh-convolution/tensor"
)

// Backend represents the CPU backend implementation.
//
// All operations are implemented in pure Go; elementwise kernels and the
// mesh aggregation loops run in parallel across CPU cores.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/MIAGroupUT/coronary-mesh-convolution/backend/cpu"
//	    "github.com/MIAGroupUT/coronary-mesh-convolution/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
