package tensor

import "fmt"

// Shape holds the extent of every tensor axis. A zero-length shape is a
// scalar.
type Shape []int

// NumElements returns the element count implied by the shape.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects shapes with non-positive extents.
func (s Shape) Validate() error {
	for axis, d := range s {
		if d <= 0 {
			return fmt.Errorf("axis %d has extent %d, extents must be positive", axis, d)
		}
	}
	return nil
}

// Equal reports whether both shapes have identical rank and extents.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for axis := range s {
		if s[axis] != other[axis] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// ComputeStrides returns the row-major stride of every axis: the element
// distance between consecutive indices along that axis.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for axis := len(s) - 1; axis >= 0; axis-- {
		strides[axis] = step
		step *= s[axis]
	}
	return strides
}

// BroadcastShapes resolves the common shape of two operands under the
// usual broadcasting rules: axes are aligned from the right, an axis of
// extent 1 stretches to match its partner, and absent axes count as 1.
// The boolean reports whether any stretching is required.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make(Shape, rank)
	stretched := false

	for i := 1; i <= rank; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}

		switch {
		case da == db:
			out[rank-i] = da
		case da == 1:
			out[rank-i] = db
			stretched = true
		case db == 1:
			out[rank-i] = da
			stretched = true
		default:
			return nil, false, fmt.Errorf("cannot broadcast %v with %v: axis %d has extents %d and %d",
				a, b, rank-i, da, db)
		}
	}

	return out, stretched, nil
}
