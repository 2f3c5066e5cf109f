package transform

import (
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// ScaleMask selects the edges belonging to one scale level out of the
// packed multi-scale edge hierarchy. Edge endpoints in the batch are
// already expressed in the compact vertex numbering of their scale, so
// masking is a pure filter.
type ScaleMask[B tensor.Backend] struct {
	Level int
}

// NewScaleMask returns a mask transform for the given scale level.
func NewScaleMask[B tensor.Backend](level int) *ScaleMask[B] {
	return &ScaleMask[B]{Level: level}
}

// Apply fills the scale graph with the edges whose mask bit matches.
func (s *ScaleMask[B]) Apply(batch *mesh.Batch[B], g *ScaleGraph[B]) {
	bit := uint32(1) << uint(s.Level)

	for e := range batch.EdgeMask {
		if batch.EdgeMask[e]&bit == 0 {
			continue
		}
		g.EdgeSrc = append(g.EdgeSrc, batch.EdgeSrc[e])
		g.EdgeDst = append(g.EdgeDst, batch.EdgeDst[e])
		g.Coords = append(g.Coords, batch.EdgeCoords[2*e], batch.EdgeCoords[2*e+1])
		g.Connection = append(g.Connection, batch.Connection[e])
	}
}
