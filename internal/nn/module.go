// Package nn implements the gauge-equivariant layers the mesh network is
// assembled from: anisotropic convolution, norm-based batch normalization,
// the regular nonlinearity, residual blocks and parallel-transport pooling.
//
// Features are steerable tensors of shape [vertices, channels, irreps]
// where the last axis holds the rotation-order components
// [order 0, cos 1, sin 1, cos 2, sin 2, ...].
package nn

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Module is the base interface for network components.
//
// Forward signatures differ per layer (graph layers take the scale graph,
// pooling takes the batch), so the interface covers the parameter contract
// only: enumeration for external optimizers and state-dict serialization.
type Module[B tensor.Backend] interface {
	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// state return an empty slice.
	Parameters() []*Parameter[B]

	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	// Returns an error if a required parameter is missing or misshaped.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// CountParameters returns the total number of trainable scalar values.
func CountParameters[B tensor.Backend](m Module[B]) int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}

// prefixStateDict namespaces a child state dict under prefix.
func prefixStateDict(dst map[string]*tensor.RawTensor, prefix string, src map[string]*tensor.RawTensor) {
	for name, raw := range src {
		dst[prefix+"."+name] = raw
	}
}

// childStateDict extracts the entries namespaced under prefix.
func childStateDict(src map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	p := prefix + "."
	for name, raw := range src {
		if len(name) > len(p) && name[:len(p)] == p {
			out[name[len(p):]] = raw
		}
	}
	return out
}
