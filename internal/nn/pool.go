package nn

import (
	"fmt"
	"math"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// ParallelTransportPool moves vertex features between two scales of the
// pooling hierarchy.
//
// Pooling rotates every fine feature into its cluster center's gauge via
// the level's transport angle and scatter-means over the clusters.
// Unpooling gathers the coarse feature of each fine vertex's cluster and
// applies the inverse rotation. The layer has no trainable state.
type ParallelTransportPool[B tensor.Backend] struct {
	Level  int  // pooling level, 1-based as in the hierarchy
	Unpool bool // reverse direction
}

// NewParallelTransportPool creates a pooling (or unpooling) operator for
// the given level.
func NewParallelTransportPool[B tensor.Backend](level int, unpool bool) *ParallelTransportPool[B] {
	if level < 1 {
		panic(fmt.Sprintf("ParallelTransportPool: level must be >= 1, got %d", level))
	}
	return &ParallelTransportPool[B]{Level: level, Unpool: unpool}
}

// Forward transports x across the level boundary.
// Pooling expects x at scale Level-1; unpooling expects x at scale Level.
func (p *ParallelTransportPool[B]) Forward(x *tensor.Tensor[float32, B], batch *mesh.Batch[B]) *tensor.Tensor[float32, B] {
	if p.Level > len(batch.Levels) {
		panic(fmt.Sprintf("ParallelTransportPool.Forward: batch has no pooling level %d", p.Level))
	}
	level := batch.Levels[p.Level-1]

	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("ParallelTransportPool.Forward: expected [N, C, irreps], got shape %v", shape))
	}

	if p.Unpool {
		if shape[0] != level.NumCoarse {
			panic(fmt.Sprintf("ParallelTransportPool.Forward: unpool level %d expects %d vertices, got %d",
				p.Level, level.NumCoarse, shape[0]))
		}
		out := x.IndexSelect(level.Cluster)
		rotateInPlace(out, level.Transport, true)
		return out
	}

	if shape[0] != len(level.Cluster) {
		panic(fmt.Sprintf("ParallelTransportPool.Forward: pool level %d expects %d vertices, got %d",
			p.Level, len(level.Cluster), shape[0]))
	}
	transported := tensor.New[float32, B](x.Raw().CloneDetached(), x.Backend())
	rotateInPlace(transported, level.Transport, false)
	return transported.ScatterMean(level.Cluster, level.NumCoarse)
}

// rotateInPlace applies the per-vertex transport rotation to every
// channel: the order-q pair rotates by q times the angle (inverted when
// unpooling back into the fine gauge).
func rotateInPlace[B tensor.Backend](x *tensor.Tensor[float32, B], angles []float32, invert bool) {
	shape := x.Shape()
	n, channels, irreps := shape[0], shape[1], shape[2]
	maxOrder := (irreps - 1) / 2
	data := x.Data()

	for v := 0; v < n; v++ {
		angle := float64(angles[v])
		if invert {
			angle = -angle
		}
		for c := 0; c < channels; c++ {
			row := data[(v*channels+c)*irreps:]
			for q := 1; q <= maxOrder; q++ {
				cq := float32(math.Cos(float64(q) * angle))
				sq := float32(math.Sin(float64(q) * angle))
				xc, xs := row[2*q-1], row[2*q]
				row[2*q-1] = xc*cq - xs*sq
				row[2*q] = xc*sq + xs*cq
			}
		}
	}
}

// Parameters returns an empty slice; transport is fixed by geometry.
func (p *ParallelTransportPool[B]) Parameters() []*Parameter[B] {
	return nil
}

// StateDict returns an empty map.
func (p *ParallelTransportPool[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op.
func (p *ParallelTransportPool[B]) LoadStateDict(map[string]*tensor.RawTensor) error {
	return nil
}
