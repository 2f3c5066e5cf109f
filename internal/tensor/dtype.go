// Package tensor provides the dense tensor types underlying the mesh network.
package tensor

import "fmt"

// DType is a constraint for supported tensor element types.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Bool
)

var dtypeInfo = [...]struct {
	name string
	size int
}{
	Float32: {"float32", 4},
	Float64: {"float64", 8},
	Int32:   {"int32", 4},
	Int64:   {"int64", 8},
	Bool:    {"bool", 1},
}

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	if dt < 0 || int(dt) >= len(dtypeInfo) {
		panic(fmt.Sprintf("tensor: unknown data type %d", int(dt)))
	}
	return dtypeInfo[dt].size
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if dt < 0 || int(dt) >= len(dtypeInfo) {
		return "unknown"
	}
	return dtypeInfo[dt].name
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case bool:
		return Bool
	default:
		panic(fmt.Sprintf("tensor: unsupported element type %T", dummy))
	}
}
