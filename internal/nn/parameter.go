package nn

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Parameter represents a trainable parameter.
//
// The network never mutates parameters during Forward; an external
// optimizer owns updates between calls.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// loadInto copies a raw tensor into the parameter after shape validation.
func (p *Parameter[B]) loadInto(raw *tensor.RawTensor) error {
	if !raw.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("parameter %s: shape mismatch: expected %v, got %v",
			p.name, p.tensor.Shape(), raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("parameter %s: dtype mismatch: expected float32, got %v", p.name, raw.DType())
	}
	copy(p.tensor.Data(), raw.AsFloat32())
	return nil
}

// loadParams loads a set of named parameters from a state dict.
func loadParams[B tensor.Backend](stateDict map[string]*tensor.RawTensor, params ...*Parameter[B]) error {
	for _, p := range params {
		raw, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if err := p.loadInto(raw); err != nil {
			return err
		}
	}
	return nil
}
