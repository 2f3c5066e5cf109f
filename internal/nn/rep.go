package nn

import "fmt"

// Rep describes a steerable feature representation: how many of the Total
// channels are scalar (order 0 only). The remaining channels carry every
// rotation order up to the layer's maximum order. Fixed at construction,
// never mutated.
type Rep struct {
	Scalar int // order-0-only channels, the leading ones
	Total  int // total channel count
}

// Validate checks internal consistency.
func (r Rep) Validate() error {
	if r.Total < 1 {
		return fmt.Errorf("rep: total channel count must be positive, got %d", r.Total)
	}
	if r.Scalar < 0 || r.Scalar > r.Total {
		return fmt.Errorf("rep: scalar count %d out of range for %d channels", r.Scalar, r.Total)
	}
	return nil
}

// ChannelOrder returns the maximum rotation order carried by channel c.
func (r Rep) ChannelOrder(c, maxOrder int) int {
	if c < r.Scalar {
		return 0
	}
	return maxOrder
}

// Regular returns a representation with no scalar-only channels.
func Regular(channels int) Rep {
	return Rep{Scalar: 0, Total: channels}
}

// Irreps returns the component dimension carrying orders 0..maxOrder:
// one scalar slot plus a (cos, sin) pair per order.
func Irreps(maxOrder int) int {
	return 2*maxOrder + 1
}
