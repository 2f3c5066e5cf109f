package nn

import (
	"fmt"
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/parallel"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/transform"
)

// GemConv is a gauge-equivariant anisotropic convolution over a masked
// scale graph.
//
// Each message parallel-transports the source feature into the target
// vertex gauge (per-order rotation by the edge connection angle) and
// applies a steerable kernel contracted with the precomputed ring/angular
// basis. The kernel block mapping input order n to output order m is
// spanned by the rotation and reflection matrix families at frequencies
// |m-n| and m+n, band-limited; every term carries one learned coefficient
// per basis ring. Messages are mean-aggregated over incoming edges and an
// equivariant linear self-interaction is added.
type GemConv[B tensor.Backend] struct {
	inRep     Rep
	outRep    Rep
	maxOrder  int
	nRings    int
	bandLimit int

	weight *Parameter[B] // flat kernel coefficients
	terms  []convTerm
	self   *GemLinear[B]
}

// convTerm is one kernel coefficient group: a (ring, input order, output
// order, frequency) combination. sum selects the reflection family at
// frequency m+n instead of the rotation family at |m-n|.
type convTerm struct {
	cout, cin, ring int
	n, m, k         int
	sum             bool
	off             int
}

// NewGemConv creates a gauge-equivariant convolution layer.
func NewGemConv[B tensor.Backend](inRep, outRep Rep, maxOrder, nRings, bandLimit int, backend B) *GemConv[B] {
	if err := inRep.Validate(); err != nil {
		panic(fmt.Sprintf("GemConv: %v", err))
	}
	if err := outRep.Validate(); err != nil {
		panic(fmt.Sprintf("GemConv: %v", err))
	}
	if nRings < 1 {
		panic("GemConv: need at least one basis ring")
	}

	var terms []convTerm
	off := 0
	add := func(t convTerm, coeffs int) {
		t.off = off
		terms = append(terms, t)
		off += coeffs
	}

	for cout := 0; cout < outRep.Total; cout++ {
		for cin := 0; cin < inRep.Total; cin++ {
			oIn := inRep.ChannelOrder(cin, maxOrder)
			oOut := outRep.ChannelOrder(cout, maxOrder)
			for ring := 0; ring < nRings; ring++ {
				for n := 0; n <= oIn; n++ {
					for m := 0; m <= oOut; m++ {
						t := convTerm{cout: cout, cin: cin, ring: ring, n: n, m: m}
						switch {
						case n == 0 && m == 0:
							add(t, 1)
						case n == 0:
							if m <= bandLimit {
								t.k = m
								add(t, 2)
							}
						case m == 0:
							if n <= bandLimit {
								t.k = n
								add(t, 2)
							}
						default:
							if diff := abs(m - n); diff <= bandLimit {
								t.k = diff
								add(t, 2)
							}
							// The basis only resolves frequencies up to
							// maxOrder, so the reflection family is cut
							// there as well as at the band limit.
							if sum := m + n; sum <= bandLimit && sum <= maxOrder {
								t.k = sum
								t.sum = true
								add(t, 2)
							}
						}
					}
				}
			}
		}
	}

	weight := NewParameter("weight", Xavier(inRep.Total*nRings, outRep.Total, tensor.Shape{off}, backend))

	return &GemConv[B]{
		inRep:     inRep,
		outRep:    outRep,
		maxOrder:  maxOrder,
		nRings:    nRings,
		bandLimit: bandLimit,
		weight:    weight,
		terms:     terms,
		self:      NewGemLinear(inRep, outRep, maxOrder, backend),
	}
}

// Forward maps [N, in.Total, irreps] to [N, out.Total, irreps] over the
// given scale graph. Edge endpoints index rows of x.
func (c *GemConv[B]) Forward(x *tensor.Tensor[float32, B], g *transform.ScaleGraph[B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 3 || shape[1] != c.inRep.Total {
		panic(fmt.Sprintf("GemConv.Forward: expected input [N, %d, irreps], got shape %v", c.inRep.Total, shape))
	}
	if g.Precomp == nil {
		panic("GemConv.Forward: scale graph has no precomputed basis")
	}

	n, irreps := shape[0], shape[2]
	if irreps != Irreps(c.maxOrder) {
		panic(fmt.Sprintf("GemConv.Forward: expected %d irrep components, got %d", Irreps(c.maxOrder), irreps))
	}

	out := c.self.Forward(x)

	// Group incoming edges by destination so aggregation parallelizes
	// without write conflicts and stays deterministic.
	numEdges := len(g.EdgeSrc)
	degree := make([]int32, n)
	for _, dst := range g.EdgeDst {
		degree[dst]++
	}
	starts := make([]int32, n+1)
	for v := 0; v < n; v++ {
		starts[v+1] = starts[v] + degree[v]
	}
	order := make([]int32, numEdges)
	fill := append([]int32(nil), starts[:n]...)
	for e := 0; e < numEdges; e++ {
		dst := g.EdgeDst[e]
		order[fill[dst]] = int32(e)
		fill[dst]++
	}

	xv := x.Data()
	ov := out.Data()
	w := c.weight.Tensor().Data()
	basis := g.Precomp.Data()
	harmonics := g.Precomp.Shape()[2]

	cfg := parallel.DefaultConfig()
	parallel.For(n, func(dst int) {
		if degree[dst] == 0 {
			return
		}
		acc := make([]float32, c.outRep.Total*irreps)
		u := make([]float32, c.inRep.Total*irreps)

		for _, ei := range order[starts[dst]:starts[dst+1]] {
			e := int(ei)
			src := int(g.EdgeSrc[e])
			c.transport(u, xv[src*c.inRep.Total*irreps:(src+1)*c.inRep.Total*irreps], g.Connection[e])
			c.accumulate(acc, u, w, basis[e*c.nRings*harmonics:], harmonics, irreps)
		}

		inv := 1.0 / float32(degree[dst])
		oRow := ov[dst*c.outRep.Total*irreps:]
		for i, v := range acc {
			oRow[i] += v * inv
		}
	}, cfg)

	return out
}

// transport rotates a source feature row into the destination gauge:
// the order-q pair rotates by q times the connection angle.
func (c *GemConv[B]) transport(dst, src []float32, angle float32) {
	irreps := Irreps(c.maxOrder)
	for ch := 0; ch < c.inRep.Total; ch++ {
		in := src[ch*irreps:]
		out := dst[ch*irreps:]
		out[0] = in[0]
		for q := 1; q <= c.maxOrder; q++ {
			cq := float32(math.Cos(float64(q) * float64(angle)))
			sq := float32(math.Sin(float64(q) * float64(angle)))
			xc, xs := in[2*q-1], in[2*q]
			out[2*q-1] = xc*cq - xs*sq
			out[2*q] = xc*sq + xs*cq
		}
	}
}

// accumulate applies every kernel term of one edge to the destination
// accumulator. edgeBasis is the [nRings, harmonics] slab of the edge.
func (c *GemConv[B]) accumulate(acc, u, w, edgeBasis []float32, harmonics, irreps int) {
	for _, t := range c.terms {
		ringBasis := edgeBasis[t.ring*harmonics:]

		var cb, sb float32 // basis cos/sin at frequency k, ring-weighted
		if t.k == 0 {
			cb = ringBasis[0]
		} else {
			cb = ringBasis[2*t.k-1]
			sb = ringBasis[2*t.k]
		}
		if cb == 0 && sb == 0 {
			continue
		}

		in := u[t.cin*irreps:]
		o := acc[t.cout*irreps:]

		switch {
		case t.n == 0 && t.m == 0:
			o[0] += w[t.off] * cb * in[0]

		case t.n == 0:
			w0, w1 := w[t.off], w[t.off+1]
			o[2*t.m-1] += (w0*cb - w1*sb) * in[0]
			o[2*t.m] += (w0*sb + w1*cb) * in[0]

		case t.m == 0:
			w0, w1 := w[t.off], w[t.off+1]
			xc, xs := in[2*t.n-1], in[2*t.n]
			o[0] += w0*(cb*xc+sb*xs) + w1*(cb*xs-sb*xc)

		default:
			w0, w1 := w[t.off], w[t.off+1]
			xc, xs := in[2*t.n-1], in[2*t.n]
			if t.sum {
				// Reflection family at frequency m+n.
				o[2*t.m-1] += w0*(cb*xc+sb*xs) + w1*(cb*xs-sb*xc)
				o[2*t.m] += w0*(sb*xc-cb*xs) + w1*(cb*xc+sb*xs)
			} else {
				// Rotation family at frequency |m-n|, oriented by
				// the sign of m-n.
				s := sb
				if t.m < t.n {
					s = -sb
				}
				o[2*t.m-1] += w0*(cb*xc-s*xs) + w1*(-s*xc-cb*xs)
				o[2*t.m] += w0*(s*xc+cb*xs) + w1*(cb*xc-s*xs)
			}
		}
	}
}

// Parameters returns the kernel and self-interaction parameters.
func (c *GemConv[B]) Parameters() []*Parameter[B] {
	return append([]*Parameter[B]{c.weight}, c.self.Parameters()...)
}

// StateDict returns the parameter map.
func (c *GemConv[B]) StateDict() map[string]*tensor.RawTensor {
	sd := map[string]*tensor.RawTensor{"weight": c.weight.Tensor().Raw()}
	prefixStateDict(sd, "self", c.self.StateDict())
	return sd
}

// LoadStateDict loads the parameter map.
func (c *GemConv[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadParams(stateDict, c.weight); err != nil {
		return err
	}
	return c.self.LoadStateDict(childStateDict(stateDict, "self"))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
