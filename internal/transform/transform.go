// Package transform derives per-scale graph views from a mesh batch:
// masking the packed edge hierarchy to one scale and precomputing the
// convolution basis for it. Transforms are pure and recomputed per forward
// call; callers with static geometry can apply them once and reuse the
// result.
package transform

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// ScaleGraph is the view of a batch at a single scale: the masked edge set
// in that scale's compact vertex numbering, its geometric attributes, and
// the precomputed convolution basis.
type ScaleGraph[B tensor.Backend] struct {
	EdgeSrc    []int64
	EdgeDst    []int64
	Coords     []float32 // [E, 2] log-map (r, theta)
	Connection []float32 // [E] transport angles

	// Precomp is the band-limited ring/angular basis [E, nRings, 2*order+1],
	// filled by GemPrecomp.
	Precomp *tensor.Tensor[float32, B]
}

// Transform mutates a scale graph derived from a batch.
type Transform[B tensor.Backend] interface {
	Apply(batch *mesh.Batch[B], g *ScaleGraph[B])
}

// Compose chains transforms in order over a fresh ScaleGraph.
type Compose[B tensor.Backend] []Transform[B]

// Apply runs every transform of the composition in order.
func (c Compose[B]) Apply(batch *mesh.Batch[B], g *ScaleGraph[B]) {
	for _, t := range c {
		t.Apply(batch, g)
	}
}

// Derive applies the composition to a fresh scale graph.
func (c Compose[B]) Derive(batch *mesh.Batch[B]) *ScaleGraph[B] {
	g := &ScaleGraph[B]{}
	c.Apply(batch, g)
	return g
}
