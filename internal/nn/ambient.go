package nn

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// SO2ToAmbientVector expresses the order-1 component of each steerable
// channel in the vertex's ambient tangent basis: v = a*e1 + b*e2 for the
// (cos, sin) pair (a, b). This is a fixed linear remap, not a learned
// operation; it is the only place tangential features acquire ambient
// meaning.
//
// x has shape [N, C, irreps] with irreps >= 3; frame has shape [N, 2, 3].
// The result has shape [N, C, 3].
func SO2ToAmbientVector[B tensor.Backend](x, frame *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] < 3 {
		panic(fmt.Sprintf("SO2ToAmbientVector: expected [N, C, irreps>=3], got shape %v", shape))
	}
	n, channels, irreps := shape[0], shape[1], shape[2]
	if !frame.Shape().Equal(tensor.Shape{n, 2, 3}) {
		panic(fmt.Sprintf("SO2ToAmbientVector: expected frame [%d, 2, 3], got shape %v", n, frame.Shape()))
	}

	out := tensor.Zeros[float32](tensor.Shape{n, channels, 3}, x.Backend())

	xv := x.Data()
	fv := frame.Data()
	ov := out.Data()

	for v := 0; v < n; v++ {
		e1 := fv[v*6 : v*6+3]
		e2 := fv[v*6+3 : v*6+6]
		for c := 0; c < channels; c++ {
			row := xv[(v*channels+c)*irreps:]
			a, b := row[1], row[2]
			o := ov[(v*channels+c)*3:]
			o[0] = a*e1[0] + b*e2[0]
			o[1] = a*e1[1] + b*e2[1]
			o[2] = a*e1[2] + b*e2[2]
		}
	}

	return out
}

// AmbientToSO2Vector is the inverse remap onto the tangent plane: it
// recovers the (cos, sin) pair by projecting the ambient vector onto the
// frame. Out-of-plane content is discarded.
func AmbientToSO2Vector[B tensor.Backend](v, frame *tensor.Tensor[float32, B], irreps int) *tensor.Tensor[float32, B] {
	shape := v.Shape()
	if len(shape) != 3 || shape[2] != 3 {
		panic(fmt.Sprintf("AmbientToSO2Vector: expected [N, C, 3], got shape %v", shape))
	}
	if irreps < 3 {
		panic("AmbientToSO2Vector: need at least 3 irrep components")
	}
	n, channels := shape[0], shape[1]

	out := tensor.Zeros[float32](tensor.Shape{n, channels, irreps}, v.Backend())

	vv := v.Data()
	fv := frame.Data()
	ov := out.Data()

	for i := 0; i < n; i++ {
		e1 := fv[i*6 : i*6+3]
		e2 := fv[i*6+3 : i*6+6]
		for c := 0; c < channels; c++ {
			a := vv[(i*channels+c)*3:]
			o := ov[(i*channels+c)*irreps:]
			o[1] = a[0]*e1[0] + a[1]*e1[1] + a[2]*e1[2]
			o[2] = a[0]*e2[0] + a[1]*e2[1] + a[2]*e2[2]
		}
	}

	return out
}
