package mesh

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameFromNormal constructs an orthonormal tangent basis (e1, e2) for the
// plane with unit normal n. The basis is deterministic in n so frames are
// reproducible across precomputation runs.
func FrameFromNormal(n r3.Vec) (e1, e2 r3.Vec) {
	// Pick the global axis least aligned with n as the seed.
	seed := r3.Vec{X: 1}
	if math.Abs(n.X) > math.Abs(n.Y) {
		seed = r3.Vec{Y: 1}
	}

	e1 = r3.Unit(r3.Sub(seed, r3.Scale(r3.Dot(seed, n), n)))
	e2 = r3.Cross(n, e1)
	return e1, e2
}

// TangentProjector returns the 3x3 projection operator I - n n^T onto the
// tangent plane with unit normal n.
func TangentProjector(n r3.Vec) *mat.Dense {
	p := mat.NewDense(3, 3, nil)
	nv := []float64{n.X, n.Y, n.Z}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := -nv[i] * nv[j]
			if i == j {
				v += 1
			}
			p.Set(i, j, v)
		}
	}
	return p
}

// LogMap computes the log-map coordinates (r, theta) of neighbor position
// pj seen from pi, expressed in pi's tangent basis (e1, e2) with normal n.
// The offset is projected onto the tangent plane; r keeps the full
// Euclidean distance so ring radii remain comparable across curvature.
func LogMap(pi, pj, e1, e2, n r3.Vec) (r, theta float64) {
	d := r3.Sub(pj, pi)
	r = r3.Norm(d)

	proj := TangentProjector(n)
	dv := mat.NewVecDense(3, []float64{d.X, d.Y, d.Z})
	var t mat.VecDense
	t.MulVec(proj, dv)

	tan := r3.Vec{X: t.AtVec(0), Y: t.AtVec(1), Z: t.AtVec(2)}
	theta = math.Atan2(r3.Dot(tan, e2), r3.Dot(tan, e1))
	return r, theta
}

// TransportAngle computes the rotation aligning the gauge at the source
// vertex with the gauge at the target vertex: the source's first basis
// vector is projected onto the target tangent plane and its angle measured
// in the target basis. Valid when the two tangent planes are not close to
// orthogonal, which holds for mesh-resolution neighbor pairs.
func TransportAngle(e1Src, e1Dst, e2Dst, nDst r3.Vec) float64 {
	proj := TangentProjector(nDst)
	ev := mat.NewVecDense(3, []float64{e1Src.X, e1Src.Y, e1Src.Z})
	var t mat.VecDense
	t.MulVec(proj, ev)

	moved := r3.Vec{X: t.AtVec(0), Y: t.AtVec(1), Z: t.AtVec(2)}
	if r3.Norm(moved) < 1e-12 {
		return 0
	}
	return math.Atan2(r3.Dot(moved, e2Dst), r3.Dot(moved, e1Dst))
}
