package cpu

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/parallel"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
)

// MatMul performs matrix multiplication: [M, K] @ [K, N] -> [M, N].
//
// Used by the regular nonlinearity for its angular sample transforms and by
// equivariant linear shortcuts; matrices are small and dense.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions do not match: %v @ %v", as, bs))
	}
	if a.DType() != b.DType() {
		panic("matmul: dtype mismatch")
	}

	m, k, n := as[0], as[1], bs[1]
	result := mustNewRaw(tensor.Shape{m, n}, a.DType(), c.device)

	switch a.DType() {
	case tensor.Float32:
		av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		parallel.For(m, func(i int) {
			row := av[i*k : (i+1)*k]
			out := rv[i*n : (i+1)*n]
			for kk := 0; kk < k; kk++ {
				aik := row[kk]
				if aik == 0 {
					continue
				}
				bRow := bv[kk*n : (kk+1)*n]
				for j := range out {
					out[j] += aik * bRow[j]
				}
			}
		}, c.par)
	case tensor.Float64:
		av, bv, rv := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		parallel.For(m, func(i int) {
			row := av[i*k : (i+1)*k]
			out := rv[i*n : (i+1)*n]
			for kk := 0; kk < k; kk++ {
				aik := row[kk]
				if aik == 0 {
					continue
				}
				bRow := bv[kk*n : (kk+1)*n]
				for j := range out {
					out[j] += aik * bRow[j]
				}
			}
		}, c.par)
	default:
		panic("matmul: unsupported dtype")
	}

	return result
}
