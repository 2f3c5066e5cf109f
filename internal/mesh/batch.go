// Package mesh defines the batched surface representation consumed by the
// network: vertex geometry, steerable per-vertex attributes, the multi-scale
// edge hierarchy and the parallel-transport pooling hierarchy.
//
// All geometric quantities are precomputed once per mesh (frames, log-map
// edge coordinates, transport angles, scale masks); the network treats them
// as read-only.
package mesh

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// PoolLevel describes one coarsening step of the vertex hierarchy.
//
// Cluster assigns every vertex of the finer set to a vertex of the coarser
// set; Transport is the parallel transport angle rotating a tangential
// feature from the fine vertex gauge into its cluster center's gauge.
type PoolLevel struct {
	Cluster   []int64   // [N_fine] fine vertex -> coarse vertex
	Transport []float32 // [N_fine] transport angle (radians)
	NumCoarse int       // number of coarse vertices
}

// Batch is a packed collection of one or more surface meshes.
//
// Vertices of all meshes are stacked; BatchIndex maps each vertex to its
// mesh. Edges of all scales are packed together and tagged through EdgeMask
// (bit i set = edge belongs to scale i); the endpoints of a scale-i edge are
// expressed in the compact vertex numbering of scale i.
type Batch[B tensor.Backend] struct {
	// Per-vertex attributes at the finest scale.
	Pos            *tensor.Tensor[float32, B] // [N, 3] vertex positions
	Frame          *tensor.Tensor[float32, B] // [N, 2, 3] tangent basis rows
	MatrixFeatures *tensor.Tensor[float32, B] // [N, C, irreps] steerable features
	Geo            []float32                  // [N] geodesic distance to the inlet
	Condition      []float32                  // [G] per-mesh boundary condition
	BatchIndex     []int64                    // [N] mesh assignment

	// Packed multi-scale edge hierarchy.
	EdgeSrc    []int64   // [E] source vertices
	EdgeDst    []int64   // [E] target vertices
	EdgeCoords []float32 // [E, 2] log-map (r, theta) in the target gauge
	Connection []float32 // [E] parallel transport angle source -> target
	EdgeMask   []uint32  // [E] scale membership bitmask

	// Vertex coarsening hierarchy, Levels[l-1] pools scale l-1 to scale l.
	Levels []PoolLevel
}

// NumVertices returns the vertex count at the finest scale.
func (b *Batch[B]) NumVertices() int {
	return len(b.Geo)
}

// NumEdges returns the packed edge count over all scales.
func (b *Batch[B]) NumEdges() int {
	return len(b.EdgeSrc)
}

// NumGraphs returns the number of meshes packed into the batch.
func (b *Batch[B]) NumGraphs() int {
	return len(b.Condition)
}

// VerticesAtScale returns the vertex count of the given scale level.
func (b *Batch[B]) VerticesAtScale(level int) int {
	if level == 0 {
		return b.NumVertices()
	}
	if level-1 >= len(b.Levels) {
		panic(fmt.Sprintf("mesh: scale level %d exceeds pooling hierarchy depth %d", level, len(b.Levels)))
	}
	return b.Levels[level-1].NumCoarse
}

// Validate checks the structural consistency of the batch.
func (b *Batch[B]) Validate() error {
	n := b.NumVertices()

	if b.Pos == nil || !b.Pos.Shape().Equal(tensor.Shape{n, 3}) {
		return fmt.Errorf("mesh: pos must have shape [%d, 3]", n)
	}
	if b.Frame == nil || !b.Frame.Shape().Equal(tensor.Shape{n, 2, 3}) {
		return fmt.Errorf("mesh: frame must have shape [%d, 2, 3]", n)
	}
	if b.MatrixFeatures == nil || len(b.MatrixFeatures.Shape()) != 3 || b.MatrixFeatures.Shape()[0] != n {
		return fmt.Errorf("mesh: matrix features must have shape [%d, channels, irreps]", n)
	}
	if len(b.BatchIndex) != n {
		return fmt.Errorf("mesh: batch index has %d entries for %d vertices", len(b.BatchIndex), n)
	}
	for _, g := range b.BatchIndex {
		if g < 0 || g >= int64(b.NumGraphs()) {
			return fmt.Errorf("mesh: batch index %d out of range for %d graphs", g, b.NumGraphs())
		}
	}

	e := b.NumEdges()
	if len(b.EdgeDst) != e || len(b.Connection) != e || len(b.EdgeMask) != e {
		return fmt.Errorf("mesh: edge attribute lengths disagree")
	}
	if len(b.EdgeCoords) != 2*e {
		return fmt.Errorf("mesh: edge coords must hold (r, theta) per edge")
	}

	for l, level := range b.Levels {
		fine := b.VerticesAtScale(l)
		if len(level.Cluster) != fine || len(level.Transport) != fine {
			return fmt.Errorf("mesh: pooling level %d sized for %d vertices, expected %d", l+1, len(level.Cluster), fine)
		}
		for _, c := range level.Cluster {
			if c < 0 || c >= int64(level.NumCoarse) {
				return fmt.Errorf("mesh: pooling level %d cluster index %d out of range", l+1, c)
			}
		}
	}

	return nil
}
