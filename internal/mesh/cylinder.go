package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// CylinderOptions configures the synthetic vessel built by Cylinder.
type CylinderOptions struct {
	Rings    int // vertex rings along the axis, divisible by 4
	Segments int // vertices per ring, divisible by 4
	Radius   float64
	Length   float64
	Channels int // matrix feature channels
	Irreps   int // irreducible component dimension (2*maxOrder + 1)
}

// Cylinder builds a three-scale synthetic vessel segment with the full
// attribute set the network consumes: frames, log-map edge coordinates,
// transport connections, scale masks and a two-level pooling hierarchy.
// It stands in for a precomputed coronary mesh in tests and examples.
func Cylinder[B tensor.Backend](opts CylinderOptions, backend B) (*Batch[B], error) {
	if opts.Rings%4 != 0 || opts.Segments%4 != 0 {
		return nil, fmt.Errorf("mesh: cylinder rings and segments must be divisible by 4, got %dx%d", opts.Rings, opts.Segments)
	}
	if opts.Channels < 1 || opts.Irreps < 1 {
		return nil, fmt.Errorf("mesh: cylinder needs at least one feature channel and irrep component")
	}

	b := &Batch[B]{
		Condition: []float32{1},
	}

	// Three grid scales, each halving both directions.
	type gridLevel struct {
		rings, segments int
		pos             []r3.Vec
		e1, e2, normal  []r3.Vec
	}

	levels := make([]gridLevel, 3)
	for l := range levels {
		step := 1 << l
		g := gridLevel{rings: opts.Rings / step, segments: opts.Segments / step}
		dz := opts.Length / float64(opts.Rings-1)
		for i := 0; i < g.rings; i++ {
			for j := 0; j < g.segments; j++ {
				phi := 2 * math.Pi * float64(j*step) / float64(opts.Segments)
				n := r3.Vec{X: math.Cos(phi), Y: math.Sin(phi)}
				p := r3.Vec{
					X: opts.Radius * n.X,
					Y: opts.Radius * n.Y,
					Z: float64(i*step) * dz,
				}
				e1, e2 := FrameFromNormal(n)
				g.pos = append(g.pos, p)
				g.normal = append(g.normal, n)
				g.e1 = append(g.e1, e1)
				g.e2 = append(g.e2, e2)
			}
		}
		levels[l] = g
	}

	fine := levels[0]
	n := fine.rings * fine.segments

	posData := make([]float32, 0, n*3)
	frameData := make([]float32, 0, n*6)
	b.Geo = make([]float32, n)
	b.BatchIndex = make([]int64, n)
	for v := 0; v < n; v++ {
		p := fine.pos[v]
		posData = append(posData, float32(p.X), float32(p.Y), float32(p.Z))
		frameData = append(frameData,
			float32(fine.e1[v].X), float32(fine.e1[v].Y), float32(fine.e1[v].Z),
			float32(fine.e2[v].X), float32(fine.e2[v].Y), float32(fine.e2[v].Z))
		b.Geo[v] = float32(p.Z)
	}

	var err error
	b.Pos, err = tensor.FromSlice(posData, tensor.Shape{n, 3}, backend)
	if err != nil {
		return nil, err
	}
	b.Frame, err = tensor.FromSlice(frameData, tensor.Shape{n, 2, 3}, backend)
	if err != nil {
		return nil, err
	}

	// Deterministic sinusoidal matrix features, scalar component only so
	// the fixture is trivially gauge-consistent.
	featData := make([]float32, n*opts.Channels*opts.Irreps)
	for v := 0; v < n; v++ {
		for c := 0; c < opts.Channels; c++ {
			featData[(v*opts.Channels+c)*opts.Irreps] = float32(math.Sin(float64(v+1) * float64(c+1) * 0.1))
		}
	}
	b.MatrixFeatures, err = tensor.FromSlice(featData, tensor.Shape{n, opts.Channels, opts.Irreps}, backend)
	if err != nil {
		return nil, err
	}

	// 4-neighborhood edges at every scale, tagged with the scale bit.
	for l, g := range levels {
		idx := func(i, j int) int64 {
			return int64(i*g.segments + ((j + g.segments) % g.segments))
		}
		for i := 0; i < g.rings; i++ {
			for j := 0; j < g.segments; j++ {
				dst := idx(i, j)
				neighbors := []int64{idx(i, j-1), idx(i, j+1)}
				if i > 0 {
					neighbors = append(neighbors, idx(i-1, j))
				}
				if i < g.rings-1 {
					neighbors = append(neighbors, idx(i+1, j))
				}
				for _, src := range neighbors {
					r, theta := LogMap(g.pos[dst], g.pos[src], g.e1[dst], g.e2[dst], g.normal[dst])
					conn := TransportAngle(g.e1[src], g.e1[dst], g.e2[dst], g.normal[dst])
					b.EdgeSrc = append(b.EdgeSrc, src)
					b.EdgeDst = append(b.EdgeDst, dst)
					b.EdgeCoords = append(b.EdgeCoords, float32(r), float32(theta))
					b.Connection = append(b.Connection, float32(conn))
					b.EdgeMask = append(b.EdgeMask, 1<<uint(l))
				}
			}
		}
	}

	// Pooling levels: every fine vertex clusters to the coarse vertex at
	// the floored half coordinates.
	for l := 0; l < 2; l++ {
		f, c := levels[l], levels[l+1]
		level := PoolLevel{NumCoarse: c.rings * c.segments}
		for i := 0; i < f.rings; i++ {
			for j := 0; j < f.segments; j++ {
				fv := i*f.segments + j
				cv := (i/2)*c.segments + j/2
				level.Cluster = append(level.Cluster, int64(cv))
				angle := TransportAngle(f.e1[fv], c.e1[cv], c.e2[cv], c.normal[cv])
				level.Transport = append(level.Transport, float32(angle))
			}
		}
		b.Levels = append(b.Levels, level)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
