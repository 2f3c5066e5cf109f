package transform

import (
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// GemPrecomp computes the convolution basis for a masked scale graph:
// per edge, a radial ring profile times the angular harmonics up to the
// maximum rotation order.
//
// Ring k of nRings has radius maxR*(k+1)/nRings; the radial profile is a
// linear hat of width maxR/nRings so neighboring rings interpolate. The
// angular part is [1, cos t, sin t, ..., cos Mt, sin Mt]. Edges beyond
// maxR contribute zero basis everywhere, mirroring the radius cut of the
// scale.
type GemPrecomp[B tensor.Backend] struct {
	NRings   int
	MaxOrder int
	MaxR     float64
}

// NewGemPrecomp returns a basis precomputation transform.
func NewGemPrecomp[B tensor.Backend](nRings, maxOrder int, maxR float64) *GemPrecomp[B] {
	return &GemPrecomp[B]{NRings: nRings, MaxOrder: maxOrder, MaxR: maxR}
}

// Apply fills g.Precomp with shape [E, nRings, 2*MaxOrder+1].
func (p *GemPrecomp[B]) Apply(batch *mesh.Batch[B], g *ScaleGraph[B]) {
	numEdges := len(g.EdgeSrc)
	harmonics := 2*p.MaxOrder + 1
	backend := batch.Pos.Backend()

	precomp := tensor.Zeros[float32](tensor.Shape{numEdges, p.NRings, harmonics}, backend)
	data := precomp.Data()

	ringWidth := p.MaxR / float64(p.NRings)

	for e := 0; e < numEdges; e++ {
		r := float64(g.Coords[2*e])
		theta := float64(g.Coords[2*e+1])

		if r > p.MaxR {
			continue
		}

		for k := 0; k < p.NRings; k++ {
			radius := p.MaxR * float64(k+1) / float64(p.NRings)
			w := 1 - math.Abs(r-radius)/ringWidth
			if w <= 0 {
				continue
			}

			base := (e*p.NRings + k) * harmonics
			data[base] = float32(w)
			for m := 1; m <= p.MaxOrder; m++ {
				data[base+2*m-1] = float32(w * math.Cos(float64(m)*theta))
				data[base+2*m] = float32(w * math.Sin(float64(m)*theta))
			}
		}
	}

	g.Precomp = precomp
}
