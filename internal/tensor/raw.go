package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Device identifies where tensor memory lives. Mesh convolution runs on
// the CPU; the enum keeps backends swappable.
type Device int

const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	if d == CPU {
		return "CPU"
	}
	return "Unknown"
}

// refBuffer is a shared allocation with an atomic reference count. A
// count of one licenses inplace mutation by the owning backend.
type refBuffer struct {
	bytes []byte
	refs  atomic.Int32
}

func newRefBuffer(size int) *refBuffer {
	b := &refBuffer{bytes: make([]byte, size)}
	b.refs.Store(1)
	return b
}

func (b *refBuffer) retain() { b.refs.Add(1) }

func (b *refBuffer) release() {
	if b.refs.Add(-1) == 0 {
		b.bytes = nil
	}
}

// RawTensor is the untyped tensor representation: a reference-counted
// buffer plus shape, strides, dtype and device. Every feature tensor
// flowing through the network ([vertices, channels, irreps]) is backed
// by one.
type RawTensor struct {
	buffer *refBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
	offset int
}

// NewRaw allocates a zero-initialized tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		buffer: newRefBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the row-major strides.
func (r *RawTensor) Strides() []int { return r.stride }

// DType returns the element type.
func (r *RawTensor) DType() DataType { return r.dtype }

// Device returns the compute device.
func (r *RawTensor) Device() Device { return r.device }

// NumElements returns the element count.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the buffer size in bytes.
func (r *RawTensor) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// Data exposes the raw bytes of the buffer.
func (r *RawTensor) Data() []byte {
	return r.buffer.bytes[r.offset:]
}

// view reinterprets the byte buffer as a typed slice. The dtype check
// happens at the call sites, which know the expected type.
func view[T DType](r *RawTensor) []T {
	data := r.buffer.bytes[r.offset:]
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), r.NumElements())
}

func (r *RawTensor) typeCheck(want DataType) {
	if r.dtype != want {
		panic(fmt.Sprintf("tensor holds %s, not %s", r.dtype, want))
	}
}

// AsFloat32 views the buffer as []float32; panics on a dtype mismatch.
func (r *RawTensor) AsFloat32() []float32 {
	r.typeCheck(Float32)
	return view[float32](r)
}

// AsFloat64 views the buffer as []float64; panics on a dtype mismatch.
func (r *RawTensor) AsFloat64() []float64 {
	r.typeCheck(Float64)
	return view[float64](r)
}

// AsInt32 views the buffer as []int32; panics on a dtype mismatch.
func (r *RawTensor) AsInt32() []int32 {
	r.typeCheck(Int32)
	return view[int32](r)
}

// AsInt64 views the buffer as []int64; panics on a dtype mismatch.
func (r *RawTensor) AsInt64() []int64 {
	r.typeCheck(Int64)
	return view[int64](r)
}

// AsBool views the buffer as []bool; panics on a dtype mismatch.
func (r *RawTensor) AsBool() []bool {
	r.typeCheck(Bool)
	return view[bool](r)
}

// Clone returns a shallow copy sharing the buffer. Backends copy on
// write when they need to mutate a shared operand.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.retain()
	out := *r
	out.shape = r.shape.Clone()
	out.stride = append([]int(nil), r.stride...)
	return &out
}

// CloneDetached returns a deep copy with a private buffer.
func (r *RawTensor) CloneDetached() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype, r.device)
	if err != nil {
		panic(err)
	}
	copy(out.buffer.bytes, r.buffer.bytes[r.offset:])
	return out
}

// Release drops this reference; the buffer is freed with the last one.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique reports whether this is the only reference to the buffer,
// licensing inplace operations.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.refs.Load() == 1
}
