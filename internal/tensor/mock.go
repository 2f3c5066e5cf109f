package tensor

import "math"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements all operations naively for correctness verification.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition with broadcasting.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x / y })
}

// AddScalar adds a scalar to every element.
func (m *MockBackend) AddScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v + s })
}

// MulScalar multiplies every element by a scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v * s })
}

// DivScalar divides every element by a scalar.
func (m *MockBackend) DivScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v / s })
}

// MatMul performs naive 2D matrix multiplication.
func (m *MockBackend) MatMul(a, b *RawTensor) *RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 || as[1] != bs[0] {
		panic("MockBackend.MatMul: incompatible shapes")
	}
	rows, inner, cols := as[0], as[1], bs[1]
	out := m.mustNew(Shape{rows, cols}, a.DType())
	ad, bd, od := m.toFloat64Slice(a), m.toFloat64Slice(b), make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for k := 0; k < inner; k++ {
			av := ad[i*inner+k]
			for j := 0; j < cols; j++ {
				od[i*cols+j] += av * bd[k*cols+j]
			}
		}
	}
	m.fromFloat64Slice(od, out)
	return out
}

// Sqrt computes the element-wise square root.
func (m *MockBackend) Sqrt(x *RawTensor) *RawTensor {
	return m.unary(x, math.Sqrt)
}

// Rsqrt computes the element-wise reciprocal square root.
func (m *MockBackend) Rsqrt(x *RawTensor) *RawTensor {
	return m.unary(x, func(v float64) float64 { return 1 / math.Sqrt(v) })
}

// SumDim sums along a dimension.
func (m *MockBackend) SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduce(x, dim, keepDim, false)
}

// MeanDim averages along a dimension.
func (m *MockBackend) MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduce(x, dim, keepDim, true)
}

// Reshape returns a copy with a new shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic("MockBackend.Reshape: element count mismatch")
	}
	out := m.mustNew(newShape.Clone(), t.DType())
	copy(out.Data(), t.Data())
	return out
}

// Transpose permutes dimensions.
func (m *MockBackend) Transpose(t *RawTensor, axes ...int) *RawTensor {
	shape := t.Shape()
	ndim := len(shape)
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic("MockBackend.Transpose: wrong number of axes")
	}
	outShape := make(Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}
	out := m.mustNew(outShape, t.DType())
	in, od := m.toFloat64Slice(t), make([]float64, t.NumElements())
	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	for i := range od {
		rem := i
		src := 0
		for d := 0; d < ndim; d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			src += coord * inStrides[axes[d]]
		}
		od[i] = in[src]
	}
	m.fromFloat64Slice(od, out)
	return out
}

// Squeeze removes a dimension of size 1.
func (m *MockBackend) Squeeze(x *RawTensor, dim int) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if shape[dim] != 1 {
		panic("MockBackend.Squeeze: dimension is not 1")
	}
	out := append(Shape{}, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	return m.Reshape(x, out)
}

// Unsqueeze inserts a dimension of size 1.
func (m *MockBackend) Unsqueeze(x *RawTensor, dim int) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	out := append(Shape{}, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return m.Reshape(x, out)
}

// Cat concatenates tensors along a dimension.
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	if len(tensors) == 0 {
		panic("MockBackend.Cat: no tensors")
	}
	first := tensors[0].Shape()
	if dim < 0 {
		dim += len(first)
	}
	outShape := first.Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		outShape[dim] += t.Shape()[dim]
	}
	out := m.mustNew(outShape, tensors[0].DType())
	od := make([]float64, outShape.NumElements())
	outStrides := outShape.ComputeStrides()

	offset := 0
	for _, t := range tensors {
		in := m.toFloat64Slice(t)
		shape := t.Shape()
		strides := shape.ComputeStrides()
		for i := range in {
			rem := i
			dst := 0
			for d := range shape {
				coord := rem / strides[d]
				rem %= strides[d]
				if d == dim {
					coord += offset
				}
				dst += coord * outStrides[d]
			}
			od[dst] = in[i]
		}
		offset += shape[dim]
	}
	m.fromFloat64Slice(od, out)
	return out
}

// IndexSelect gathers rows along the leading dimension.
func (m *MockBackend) IndexSelect(x *RawTensor, index []int64) *RawTensor {
	shape := x.Shape()
	rowSize := shape.NumElements() / shape[0]
	outShape := shape.Clone()
	outShape[0] = len(index)
	out := m.mustNew(outShape, x.DType())
	in, od := m.toFloat64Slice(x), make([]float64, outShape.NumElements())
	for i, src := range index {
		copy(od[i*rowSize:(i+1)*rowSize], in[int(src)*rowSize:(int(src)+1)*rowSize])
	}
	m.fromFloat64Slice(od, out)
	return out
}

// ScatterMean averages rows sharing a target index.
func (m *MockBackend) ScatterMean(x *RawTensor, index []int64, dimSize int) *RawTensor {
	shape := x.Shape()
	rowSize := shape.NumElements() / shape[0]
	outShape := shape.Clone()
	outShape[0] = dimSize
	out := m.mustNew(outShape, x.DType())
	in, od := m.toFloat64Slice(x), make([]float64, outShape.NumElements())
	counts := make([]int, dimSize)
	for i, dst := range index {
		counts[dst]++
		for j := 0; j < rowSize; j++ {
			od[int(dst)*rowSize+j] += in[i*rowSize+j]
		}
	}
	for r, c := range counts {
		if c == 0 {
			continue
		}
		for j := 0; j < rowSize; j++ {
			od[r*rowSize+j] /= float64(c)
		}
	}
	m.fromFloat64Slice(od, out)
	return out
}

func (m *MockBackend) unary(x *RawTensor, op func(float64) float64) *RawTensor {
	out := m.mustNew(x.Shape().Clone(), x.DType())
	in, od := m.toFloat64Slice(x), make([]float64, x.NumElements())
	for i := range in {
		od[i] = op(in[i])
	}
	m.fromFloat64Slice(od, out)
	return out
}

func (m *MockBackend) elementWise(a, b *RawTensor, op func(float64, float64) float64) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}
	out := m.mustNew(outShape, a.DType())
	ad, bd := m.toFloat64Slice(a), m.toFloat64Slice(b)
	od := make([]float64, outShape.NumElements())
	for i := range od {
		od[i] = op(ad[m.broadcastIndex(i, outShape, a.Shape())], bd[m.broadcastIndex(i, outShape, b.Shape())])
	}
	m.fromFloat64Slice(od, out)
	return out
}

func (m *MockBackend) reduce(x *RawTensor, dim int, keepDim, mean bool) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	reduced := shape[dim]
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}

	var outShape Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = append(Shape{}, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
		if len(outShape) == 0 {
			outShape = Shape{1}
		}
	}
	out := m.mustNew(outShape, x.DType())
	in, od := m.toFloat64Slice(x), make([]float64, outer*inner)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var sum float64
			for r := 0; r < reduced; r++ {
				sum += in[(o*reduced+r)*inner+i]
			}
			if mean {
				sum /= float64(reduced)
			}
			od[o*inner+i] = sum
		}
	}
	m.fromFloat64Slice(od, out)
	return out
}

func (m *MockBackend) mustNew(shape Shape, dtype DataType) *RawTensor {
	out, err := NewRaw(shape, dtype, m.Device())
	if err != nil {
		panic(err)
	}
	return out
}

// broadcastIndex maps a flat output index to the flat index of an operand
// whose shape may be broadcast against the output shape.
func (m *MockBackend) broadcastIndex(idx int, outShape, inShape Shape) int {
	outStrides := outShape.ComputeStrides()
	inStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)
	src := 0
	rem := idx
	for d := range outShape {
		coord := rem / outStrides[d]
		rem %= outStrides[d]
		if d < offset {
			continue
		}
		if inShape[d-offset] == 1 {
			continue
		}
		src += coord * inStrides[d-offset]
	}
	return src
}

func (m *MockBackend) toFloat64Slice(t *RawTensor) []float64 {
	out := make([]float64, t.NumElements())
	switch t.DType() {
	case Float32:
		for i, v := range t.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, t.AsFloat64())
	case Int32:
		for i, v := range t.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range t.AsInt64() {
			out[i] = float64(v)
		}
	default:
		panic("MockBackend: unsupported dtype " + t.DType().String())
	}
	return out
}

func (m *MockBackend) fromFloat64Slice(data []float64, t *RawTensor) {
	switch t.DType() {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range data {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), data)
	case Int32:
		dst := t.AsInt32()
		for i, v := range data {
			dst[i] = int32(v)
		}
	case Int64:
		dst := t.AsInt64()
		for i, v := range data {
			dst[i] = int64(v)
		}
	default:
		panic("MockBackend: unsupported dtype " + t.DType().String())
	}
}

// scalarToFloat64 widens a scalar argument for the mock kernels.
func scalarToFloat64(scalar any) float64 {
	switch v := scalar.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic("MockBackend: unsupported scalar type")
	}
}
