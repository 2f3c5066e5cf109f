package models

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/nn"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/serialization"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// Save writes the parameters of a module to path.
func Save[B tensor.Backend](path string, m nn.Module[B]) error {
	if err := serialization.SaveFile(path, m.StateDict()); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// Load reads parameters from path into a constructed module. The module
// must have been built with the same configuration that produced the file.
func Load[B tensor.Backend](path string, m nn.Module[B]) error {
	stateDict, err := serialization.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	return m.LoadStateDict(stateDict)
}
