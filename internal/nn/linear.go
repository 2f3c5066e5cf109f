package nn

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/parallel"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// GemLinear is an equivariant linear map between steerable representations.
//
// Order is preserved: the order-0 component maps through a plain scalar
// weight, and each higher-order (cos, sin) pair through a·I + b·J with J
// the 90-degree rotation. Mixing across orders would break equivariance,
// so there is none, and no bias.
type GemLinear[B tensor.Backend] struct {
	inRep    Rep
	outRep   Rep
	maxOrder int

	weight *Parameter[B] // flat coefficient vector
	terms  []linTerm
}

type linTerm struct {
	cout, cin, order, off int
}

// NewGemLinear creates an equivariant linear layer.
func NewGemLinear[B tensor.Backend](inRep, outRep Rep, maxOrder int, backend B) *GemLinear[B] {
	if err := inRep.Validate(); err != nil {
		panic(fmt.Sprintf("GemLinear: %v", err))
	}
	if err := outRep.Validate(); err != nil {
		panic(fmt.Sprintf("GemLinear: %v", err))
	}

	var terms []linTerm
	off := 0
	for cout := 0; cout < outRep.Total; cout++ {
		for cin := 0; cin < inRep.Total; cin++ {
			shared := min(inRep.ChannelOrder(cin, maxOrder), outRep.ChannelOrder(cout, maxOrder))
			for q := 0; q <= shared; q++ {
				terms = append(terms, linTerm{cout: cout, cin: cin, order: q, off: off})
				if q == 0 {
					off++
				} else {
					off += 2
				}
			}
		}
	}

	weight := NewParameter("weight", Xavier(inRep.Total, outRep.Total, tensor.Shape{off}, backend))

	return &GemLinear[B]{
		inRep:    inRep,
		outRep:   outRep,
		maxOrder: maxOrder,
		weight:   weight,
		terms:    terms,
	}
}

// Forward maps [N, in.Total, irreps] to [N, out.Total, irreps].
func (l *GemLinear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] != l.inRep.Total {
		panic(fmt.Sprintf("GemLinear.Forward: expected input [N, %d, irreps], got shape %v", l.inRep.Total, shape))
	}

	n, irreps := shape[0], shape[2]
	out := tensor.Zeros[float32](tensor.Shape{n, l.outRep.Total, irreps}, x.Backend())

	xv := x.Data()
	ov := out.Data()
	w := l.weight.Tensor().Data()

	cfg := parallel.DefaultConfig()
	parallel.For(n, func(v int) {
		xRow := xv[v*l.inRep.Total*irreps:]
		oRow := ov[v*l.outRep.Total*irreps:]
		for _, t := range l.terms {
			in := xRow[t.cin*irreps:]
			o := oRow[t.cout*irreps:]
			if t.order == 0 {
				o[0] += w[t.off] * in[0]
				continue
			}
			a, b := w[t.off], w[t.off+1]
			xc, xs := in[2*t.order-1], in[2*t.order]
			o[2*t.order-1] += a*xc - b*xs
			o[2*t.order] += b*xc + a*xs
		}
	}, cfg)

	return out
}

// Parameters returns the flat coefficient vector.
func (l *GemLinear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight}
}

// StateDict returns the parameter map.
func (l *GemLinear[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{"weight": l.weight.Tensor().Raw()}
}

// LoadStateDict loads the parameter map.
func (l *GemLinear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadParams(stateDict, l.weight)
}
