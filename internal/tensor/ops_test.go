package tensor

import "testing"

func TestAddBroadcast(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	b, _ := FromSlice([]float32{10, 20, 30}, Shape{3}, backend)

	c := a.Add(b)
	assertEqualShape(t, Shape{2, 3}, c.Shape(), "broadcast add shape")
	assertEqualFloat32(t, 11, c.At(0, 0), "broadcast add [0,0]")
	assertEqualFloat32(t, 36, c.At(1, 2), "broadcast add [1,2]")
}

func TestSubMulDiv(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{4, 9, 16, 25}, Shape{4}, backend)
	b, _ := FromSlice([]float32{2, 3, 4, 5}, Shape{4}, backend)

	assertEqualFloat32(t, 2, a.Sub(b).At(0), "sub")
	assertEqualFloat32(t, 27, a.Mul(b).At(1), "mul")
	assertEqualFloat32(t, 4, a.Div(b).At(2), "div")
}

func TestScalarOps(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, backend)

	assertEqualFloat32(t, 3.5, a.AddScalar(2.5).At(0), "addscalar")
	assertEqualFloat32(t, 6, a.MulScalar(2).At(2), "mulscalar")
	assertEqualFloat32(t, 1, a.DivScalar(2).At(1), "divscalar")
}

func TestMatMul(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	b, _ := FromSlice([]float32{7, 8, 9, 10, 11, 12}, Shape{3, 2}, backend)

	c := a.MatMul(b)
	assertEqualShape(t, Shape{2, 2}, c.Shape(), "matmul shape")
	assertEqualFloat32(t, 58, c.At(0, 0), "matmul [0,0]")
	assertEqualFloat32(t, 64, c.At(0, 1), "matmul [0,1]")
	assertEqualFloat32(t, 139, c.At(1, 0), "matmul [1,0]")
	assertEqualFloat32(t, 154, c.At(1, 1), "matmul [1,1]")
}

func TestSqrtRsqrt(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{4, 16}, Shape{2}, backend)

	assertEqualFloat32(t, 2, a.Sqrt().At(0), "sqrt")
	assertEqualFloat32(t, 0.25, a.Rsqrt().At(1), "rsqrt")
}

func TestSumDimMeanDim(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)

	s := a.SumDim(1, false)
	assertEqualShape(t, Shape{2}, s.Shape(), "sumdim shape")
	assertEqualFloat32(t, 6, s.At(0), "sumdim row 0")
	assertEqualFloat32(t, 15, s.At(1), "sumdim row 1")

	// Negative dim indexes from the back.
	sn := a.SumDim(-1, false)
	assertEqualFloat32(t, 6, sn.At(0), "sumdim negative dim")

	k := a.SumDim(0, true)
	assertEqualShape(t, Shape{1, 3}, k.Shape(), "sumdim keepdim shape")
	assertEqualFloat32(t, 5, k.At(0, 0), "sumdim keepdim")

	m := a.MeanDim(1, false)
	assertEqualFloat32(t, 2, m.At(0), "meandim row 0")
	assertEqualFloat32(t, 5, m.At(1), "meandim row 1")
}

func TestReshapeTranspose(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)

	r := a.Reshape(3, 2)
	assertEqualShape(t, Shape{3, 2}, r.Shape(), "reshape shape")
	assertEqualFloat32(t, 3, r.At(1, 0), "reshape preserves order")

	tr := a.Transpose()
	assertEqualShape(t, Shape{3, 2}, tr.Shape(), "transpose shape")
	assertEqualFloat32(t, 2, tr.At(1, 0), "transpose [1,0]")
	assertEqualFloat32(t, 4, tr.At(0, 1), "transpose [0,1]")
}

func TestSqueezeUnsqueeze(t *testing.T) {
	backend := NewMockBackend()
	a := Zeros[float32](Shape{2, 1, 3}, backend)

	s := a.Squeeze(1)
	assertEqualShape(t, Shape{2, 3}, s.Shape(), "squeeze shape")

	u := s.Unsqueeze(0)
	assertEqualShape(t, Shape{1, 2, 3}, u.Shape(), "unsqueeze shape")
}

func TestCat(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	b, _ := FromSlice([]float32{5, 6}, Shape{1, 2}, backend)

	c := Cat([]*Tensor[float32, *MockBackend]{a, b}, 0)
	assertEqualShape(t, Shape{3, 2}, c.Shape(), "cat dim 0 shape")
	assertEqualFloat32(t, 5, c.At(2, 0), "cat dim 0 data")

	d, _ := FromSlice([]float32{7, 8}, Shape{2, 1}, backend)
	e := Cat([]*Tensor[float32, *MockBackend]{a, d}, 1)
	assertEqualShape(t, Shape{2, 3}, e.Shape(), "cat dim 1 shape")
	assertEqualFloat32(t, 7, e.At(0, 2), "cat dim 1 row 0")
	assertEqualFloat32(t, 8, e.At(1, 2), "cat dim 1 row 1")
	assertEqualFloat32(t, 3, e.At(1, 0), "cat dim 1 keeps left block")
}

func TestIndexSelect(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{3, 2}, backend)

	g := a.IndexSelect([]int64{2, 0, 2})
	assertEqualShape(t, Shape{3, 2}, g.Shape(), "indexselect shape")
	assertEqualFloat32(t, 5, g.At(0, 0), "indexselect row 0")
	assertEqualFloat32(t, 1, g.At(1, 0), "indexselect row 1")
	assertEqualFloat32(t, 6, g.At(2, 1), "indexselect row 2")
}

func TestScatterMean(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{3, 2}, backend)

	// Rows 0 and 1 average into output row 0, row 2 goes to output row 2.
	// Output row 1 has no source and stays zero.
	s := a.ScatterMean([]int64{0, 0, 2}, 3)
	assertEqualShape(t, Shape{3, 2}, s.Shape(), "scattermean shape")
	assertEqualFloat32(t, 2, s.At(0, 0), "scattermean average")
	assertEqualFloat32(t, 3, s.At(0, 1), "scattermean average col 1")
	assertEqualFloat32(t, 0, s.At(1, 0), "scattermean empty row")
	assertEqualFloat32(t, 5, s.At(2, 0), "scattermean single row")
}
