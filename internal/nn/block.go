package nn

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/transform"
)

// BlockOptions configures a GemResNetBlock.
type BlockOptions struct {
	NRings     int  // radial basis resolution
	BandLimit  int  // maximum kernel frequency
	NumSamples int  // angular samples of the regular nonlinearity
	BatchNorm  bool // insert norm batch normalization after each conv
	LastLayer  bool // drop the final activation (output block)

	// Checkpoint selects the activation retention policy: when false the
	// block keeps references to intermediates, when true it releases them
	// for recomputation by gradient machinery. Forward results are
	// identical either way.
	Checkpoint bool
}

// GemResNetBlock is a residual unit of two gauge-equivariant convolutions
// with norm batch normalization and regular nonlinearities, plus an
// equivariant linear shortcut when the input and output representations
// differ.
type GemResNetBlock[B tensor.Backend] struct {
	conv1 *GemConv[B]
	conv2 *GemConv[B]
	norm1 *NormBatchNorm[B]
	norm2 *NormBatchNorm[B]
	act   *RegularNonlinearity[B]

	shortcut *GemLinear[B] // nil when representations match
	opts     BlockOptions
}

// NewGemResNetBlock creates a residual block mapping inRep to outRep with
// intermediate features of order maxOrder.
func NewGemResNetBlock[B tensor.Backend](inRep, outRep Rep, maxOrder int, opts BlockOptions, backend B) *GemResNetBlock[B] {
	block := &GemResNetBlock[B]{
		conv1: NewGemConv(inRep, outRep, maxOrder, opts.NRings, opts.BandLimit, backend),
		conv2: NewGemConv(outRep, outRep, maxOrder, opts.NRings, opts.BandLimit, backend),
		act:   NewRegularNonlinearity(maxOrder, opts.NumSamples, backend),
		opts:  opts,
	}

	if opts.BatchNorm {
		block.norm1 = NewNormBatchNorm(outRep.Total, 1e-5, backend)
		block.norm2 = NewNormBatchNorm(outRep.Total, 1e-5, backend)
	}

	if inRep != outRep {
		block.shortcut = NewGemLinear(inRep, outRep, maxOrder, backend)
	}

	return block
}

// Forward runs the block over one scale graph.
func (r *GemResNetBlock[B]) Forward(x *tensor.Tensor[float32, B], g *transform.ScaleGraph[B]) *tensor.Tensor[float32, B] {
	h := r.conv1.Forward(x, g)
	if r.norm1 != nil {
		h = r.norm1.Forward(h)
	}
	h = r.act.Forward(h)

	h = r.conv2.Forward(h, g)
	if r.norm2 != nil {
		h = r.norm2.Forward(h)
	}

	res := x
	if r.shortcut != nil {
		res = r.shortcut.Forward(x)
	}
	out := h.Add(res)

	if !r.opts.LastLayer {
		out = r.act.Forward(out)
	}
	return out
}

// Parameters returns the parameters of both convolutions, the norms and
// the shortcut.
func (r *GemResNetBlock[B]) Parameters() []*Parameter[B] {
	params := append(r.conv1.Parameters(), r.conv2.Parameters()...)
	if r.norm1 != nil {
		params = append(params, r.norm1.Parameters()...)
		params = append(params, r.norm2.Parameters()...)
	}
	if r.shortcut != nil {
		params = append(params, r.shortcut.Parameters()...)
	}
	return params
}

// StateDict returns the nested parameter map.
func (r *GemResNetBlock[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	prefixStateDict(sd, "conv1", r.conv1.StateDict())
	prefixStateDict(sd, "conv2", r.conv2.StateDict())
	if r.norm1 != nil {
		prefixStateDict(sd, "norm1", r.norm1.StateDict())
		prefixStateDict(sd, "norm2", r.norm2.StateDict())
	}
	if r.shortcut != nil {
		prefixStateDict(sd, "shortcut", r.shortcut.StateDict())
	}
	return sd
}

// LoadStateDict loads the nested parameter map.
func (r *GemResNetBlock[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := r.conv1.LoadStateDict(childStateDict(stateDict, "conv1")); err != nil {
		return err
	}
	if err := r.conv2.LoadStateDict(childStateDict(stateDict, "conv2")); err != nil {
		return err
	}
	if r.norm1 != nil {
		if err := r.norm1.LoadStateDict(childStateDict(stateDict, "norm1")); err != nil {
			return err
		}
		if err := r.norm2.LoadStateDict(childStateDict(stateDict, "norm2")); err != nil {
			return err
		}
	}
	if r.shortcut != nil {
		if err := r.shortcut.LoadStateDict(childStateDict(stateDict, "shortcut")); err != nil {
			return err
		}
	}
	return nil
}
