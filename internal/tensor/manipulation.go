package tensor

// Cat concatenates tensors along one axis. Shapes must agree on every
// other axis; dim may be negative to count from the end. The skip
// connections of the network join encoder and decoder features this way:
//
//	a := tensor.Randn[float32](Shape{120, 7, 5}, backend)
//	b := tensor.Randn[float32](Shape{120, 1, 5}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 1) // Shape: [120, 8, 5]
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	switch len(tensors) {
	case 0:
		panic("cat: at least one tensor required")
	case 1:
		return tensors[0].Clone()
	}

	backend := tensors[0].backend
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T, B](backend.Cat(raws, dim), backend)
}
