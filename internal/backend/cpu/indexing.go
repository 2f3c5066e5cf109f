package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// IndexSelect gathers rows along the leading dimension:
// out[i] = x[index[i]]. Unpooling gathers coarse features back onto the
// fine vertex set with it.
func (c *Backend) IndexSelect(x *tensor.RawTensor, index []int64) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("indexselect: scalar tensor has no rows")
	}

	rows := shape[0]
	outShape := shape.Clone()
	outShape[0] = len(index)
	result := mustNewRaw(outShape, x.DType(), c.device)

	rowBytes := (x.NumElements() / rows) * x.DType().Size()
	src := x.Data()
	dst := result.Data()

	for i, idx := range index {
		if idx < 0 || idx >= int64(rows) {
			panic(fmt.Sprintf("indexselect: index %d out of bounds for %d rows", idx, rows))
		}
		copy(dst[i*rowBytes:(i+1)*rowBytes], src[int(idx)*rowBytes:(int(idx)+1)*rowBytes])
	}

	return result
}

// ScatterMean averages rows sharing a target index into dimSize output
// rows: out[index[i]] = mean over i of x[i]. Rows of the output with no
// source remain zero. Pooling scatters transported fine features onto the
// coarse vertex set with it.
func (c *Backend) ScatterMean(x *tensor.RawTensor, index []int64, dimSize int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) == 0 {
		panic("scattermean: scalar tensor has no rows")
	}
	if len(index) != shape[0] {
		panic(fmt.Sprintf("scattermean: got %d indices for %d rows", len(index), shape[0]))
	}

	outShape := shape.Clone()
	outShape[0] = dimSize
	result := mustNewRaw(outShape, x.DType(), c.device)

	rowLen := x.NumElements() / shape[0]
	counts := make([]int, dimSize)

	switch x.DType() {
	case tensor.Float32:
		xv, rv := x.AsFloat32(), result.AsFloat32()
		for i, idx := range index {
			if idx < 0 || idx >= int64(dimSize) {
				panic(fmt.Sprintf("scattermean: index %d out of bounds for %d rows", idx, dimSize))
			}
			counts[idx]++
			dst := rv[int(idx)*rowLen : (int(idx)+1)*rowLen]
			src := xv[i*rowLen : (i+1)*rowLen]
			for j := range dst {
				dst[j] += src[j]
			}
		}
		for r, n := range counts {
			if n < 2 {
				continue
			}
			row := rv[r*rowLen : (r+1)*rowLen]
			inv := 1.0 / float32(n)
			for j := range row {
				row[j] *= inv
			}
		}
	case tensor.Float64:
		xv, rv := x.AsFloat64(), result.AsFloat64()
		for i, idx := range index {
			if idx < 0 || idx >= int64(dimSize) {
				panic(fmt.Sprintf("scattermean: index %d out of bounds for %d rows", idx, dimSize))
			}
			counts[idx]++
			dst := rv[int(idx)*rowLen : (int(idx)+1)*rowLen]
			src := xv[i*rowLen : (i+1)*rowLen]
			for j := range dst {
				dst[j] += src[j]
			}
		}
		for r, n := range counts {
			if n < 2 {
				continue
			}
			row := rv[r*rowLen : (r+1)*rowLen]
			inv := 1.0 / float64(n)
			for j := range row {
				row[j] *= inv
			}
		}
	default:
		panic("scattermean: unsupported dtype")
	}

	return result
}
