package tensor

// Backend defines the interface that compute backends must implement.
// The op surface is the one exercised by gauge-equivariant mesh convolution:
// elementwise arithmetic, small dense matmuls for the angular sample
// transforms, reductions for normalization, concatenation for feature
// assembly and skip connections, and row indexing for pooling.
type Backend interface {
	// Element-wise binary operations
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Math operations (element-wise)
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor

	// Reduction operations
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Indexing operations over the leading (vertex) dimension.
	// IndexSelect gathers rows; ScatterMean averages rows sharing a target
	// index into dimSize output rows. Both are the substrate of
	// parallel-transport pooling and unpooling.
	IndexSelect(x *RawTensor, index []int64) *RawTensor
	ScatterMean(x *RawTensor, index []int64, dimSize int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
