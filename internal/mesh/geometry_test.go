package mesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const geomEps = 1e-12

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFrameFromNormalOrthonormal(t *testing.T) {
	normals := []r3.Vec{
		{X: 1},
		{Y: 1},
		{Z: 1},
		r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}),
		r3.Unit(r3.Vec{X: -0.3, Y: 0.9, Z: -0.1}),
	}

	for _, n := range normals {
		e1, e2 := FrameFromNormal(n)

		if !almostEqual(r3.Norm(e1), 1) || !almostEqual(r3.Norm(e2), 1) {
			t.Errorf("frame for %v not unit length: |e1|=%v |e2|=%v", n, r3.Norm(e1), r3.Norm(e2))
		}
		if math.Abs(r3.Dot(e1, e2)) > geomEps*1e3 {
			t.Errorf("frame for %v not orthogonal: e1.e2=%v", n, r3.Dot(e1, e2))
		}
		if math.Abs(r3.Dot(e1, n)) > 1e-9 || math.Abs(r3.Dot(e2, n)) > 1e-9 {
			t.Errorf("frame for %v not tangential", n)
		}
		// Right-handed: e1 x e2 = n.
		cross := r3.Cross(e1, e2)
		if r3.Norm(r3.Sub(cross, n)) > 1e-9 {
			t.Errorf("frame for %v not right-handed: e1 x e2 = %v", n, cross)
		}
	}
}

func TestFrameFromNormalDeterministic(t *testing.T) {
	n := r3.Unit(r3.Vec{X: 0.2, Y: -0.5, Z: 0.84})
	a1, a2 := FrameFromNormal(n)
	b1, b2 := FrameFromNormal(n)
	if a1 != b1 || a2 != b2 {
		t.Error("frame construction is not deterministic")
	}
}

func TestTangentProjector(t *testing.T) {
	n := r3.Vec{Z: 1}
	p := TangentProjector(n)

	// Projects out the normal component, keeps tangential ones.
	if !almostEqual(p.At(0, 0), 1) || !almostEqual(p.At(1, 1), 1) || !almostEqual(p.At(2, 2), 0) {
		t.Errorf("projector diagonal wrong: %v %v %v", p.At(0, 0), p.At(1, 1), p.At(2, 2))
	}
}

func TestLogMapFlatPlane(t *testing.T) {
	// A neighbor in the xy-plane seen from the origin with normal z:
	// theta is the plain polar angle, r the Euclidean distance.
	n := r3.Vec{Z: 1}
	e1 := r3.Vec{X: 1}
	e2 := r3.Vec{Y: 1}
	pi := r3.Vec{}

	r, theta := LogMap(pi, r3.Vec{X: 2}, e1, e2, n)
	if !almostEqual(r, 2) || !almostEqual(theta, 0) {
		t.Errorf("LogMap(+x) = (%v, %v), want (2, 0)", r, theta)
	}

	r, theta = LogMap(pi, r3.Vec{Y: 3}, e1, e2, n)
	if !almostEqual(r, 3) || !almostEqual(theta, math.Pi/2) {
		t.Errorf("LogMap(+y) = (%v, %v), want (3, pi/2)", r, theta)
	}

	r, theta = LogMap(pi, r3.Vec{X: -1}, e1, e2, n)
	if !almostEqual(r, 1) || !almostEqual(math.Abs(theta), math.Pi) {
		t.Errorf("LogMap(-x) = (%v, %v), want (1, +-pi)", r, theta)
	}
}

func TestLogMapKeepsEuclideanRadius(t *testing.T) {
	// An out-of-plane neighbor: the angle comes from the tangential
	// projection but the radius keeps the full distance.
	n := r3.Vec{Z: 1}
	e1 := r3.Vec{X: 1}
	e2 := r3.Vec{Y: 1}

	r, theta := LogMap(r3.Vec{}, r3.Vec{X: 1, Z: 1}, e1, e2, n)
	if !almostEqual(r, math.Sqrt2) {
		t.Errorf("r = %v, want sqrt(2)", r)
	}
	if !almostEqual(theta, 0) {
		t.Errorf("theta = %v, want 0", theta)
	}
}

func TestTransportAngleAlignedFrames(t *testing.T) {
	// Identical tangent planes and identical frames transport trivially.
	e1 := r3.Vec{X: 1}
	e2 := r3.Vec{Y: 1}
	n := r3.Vec{Z: 1}

	if a := TransportAngle(e1, e1, e2, n); !almostEqual(a, 0) {
		t.Errorf("aligned transport angle = %v, want 0", a)
	}
}

func TestTransportAngleRotatedFrame(t *testing.T) {
	// Destination frame rotated by phi within the same plane: the source
	// e1 sits at angle -phi in the destination basis.
	n := r3.Vec{Z: 1}
	e1Src := r3.Vec{X: 1}

	phi := 0.7
	e1Dst := r3.Vec{X: math.Cos(phi), Y: math.Sin(phi)}
	e2Dst := r3.Vec{X: -math.Sin(phi), Y: math.Cos(phi)}

	if a := TransportAngle(e1Src, e1Dst, e2Dst, n); !almostEqual(a, -phi) {
		t.Errorf("transport angle = %v, want %v", a, -phi)
	}
}

func TestTransportAngleDegenerate(t *testing.T) {
	// Source e1 orthogonal to the destination plane projects to nothing.
	e1Src := r3.Vec{Z: 1}
	e1Dst := r3.Vec{X: 1}
	e2Dst := r3.Vec{Y: 1}
	n := r3.Vec{Z: 1}

	if a := TransportAngle(e1Src, e1Dst, e2Dst, n); a != 0 {
		t.Errorf("degenerate transport angle = %v, want 0", a)
	}
}
