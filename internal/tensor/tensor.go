package tensor

import "fmt"

// Tensor couples a RawTensor with a compile-time element type and the
// backend executing its operations.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{120, 26, 5}, backend)
//	y := x.Add(x)
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps a RawTensor for the given backend.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice copies a Go slice into a freshly allocated tensor.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if n := shape.NumElements(); n != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, n, len(data))
	}

	var zero T
	raw, err := NewRaw(shape, inferDataType(zero), b.Device())
	if err != nil {
		return nil, err
	}

	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the runtime element type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Device returns the compute device.
func (t *Tensor[T, B]) Device() Device { return t.raw.Device() }

// NumElements returns the element count.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// Raw exposes the underlying RawTensor for backend implementations.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Data returns a typed zero-copy view of the tensor's memory. Writes
// through the slice are visible to every reference sharing the buffer.
func (t *Tensor[T, B]) Data() []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case int64:
		return any(t.raw.AsInt64()).([]T)
	case bool:
		return any(t.raw.AsBool()).([]T)
	default:
		panic(fmt.Sprintf("tensor: unsupported element type %T", zero))
	}
}

// Item returns the value of a 0-D tensor; panics otherwise.
func (t *Tensor[T, B]) Item() T {
	if len(t.Shape()) != 0 || t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() needs a scalar tensor, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At reads the element at the given multi-index.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given multi-index.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}

	flat := 0
	strides := t.raw.Strides()
	for axis, idx := range indices {
		if idx < 0 || idx >= shape[axis] {
			panic(fmt.Sprintf("index %d out of bounds for axis %d (extent %d)", idx, axis, shape[axis]))
		}
		flat += idx * strides[axis]
	}
	return flat
}

// String returns a short human-readable description.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}

// Clone returns a copy-on-write copy sharing the buffer. Skip
// connections captured before pooling use this.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw.Clone(), backend: t.backend}
}
