package toolbox

import (
	"fmt"
	"slices"
)

// AF32 is a dense row-major float32 array.  The last index is stored
// contiguously.
type AF32 struct {
	V     []float32
	Shape []int
}

func MakeAF32(shape ...int) *AF32 {
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("invalid shape: %v", shape))
		}
	}
	size := 1
	for _, s := range shape {
		size *= s
	}

	return &AF32{
		V:     make([]float32, size),
		Shape: slices.Clone(shape),
	}
}

func MakeScalarAF32(scalar float32) *AF32 {
	return &AF32{
		V:     []float32{scalar},
		Shape: []int{1},
	}
}

// AF32ZerosLike allocates a zeroed tensor with the same shape as in.
func AF32ZerosLike(in *AF32) *AF32 {
	return &AF32{
		V:     make([]float32, len(in.V)),
		Shape: slices.Clone(in.Shape),
	}
}

// AF32Clone returns a deep copy of in.
func AF32Clone(in *AF32) *AF32 {
	return &AF32{
		V:     slices.Clone(in.V),
		Shape: slices.Clone(in.Shape),
	}
}

func AF32Transpose(in *AF32, out *AF32) {
	if len(in.Shape) != 2 {
		panic("cannot transpose if len(shape) != 2")
	}
	if len(in.V) != len(out.V) {
		panic("output storage is not correctly sized to store the transpose of the input")
	}
	out.Shape = []int{in.Shape[1], in.Shape[0]}

	rows, cols := in.Shape[0], in.Shape[1]
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.V[j*rows+i] = in.V[i*cols+j]
		}
	}
}

// AF32Reshape reshapes the input tensor.  The overall number of elements must
// be the same.  The returned tensor shares storage with the input tensor (no
// data is copied).
func AF32Reshape(a *AF32, shape ...int) *AF32 {
	newSize := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("invalid shape: %v", shape))
		}
		newSize *= s
	}

	if newSize != len(a.V) {
		panic(fmt.Sprintf("invalid reshape of %v to %v", a.Shape, shape))
	}

	return &AF32{
		V:     a.V,
		Shape: slices.Clone(shape),
	}
}

// AF32Rows returns rows [start, end) of the leading dimension.  The returned
// tensor shares storage with a.
func AF32Rows(a *AF32, start, end int) *AF32 {
	if start < 0 || end > a.Shape[0] || start >= end {
		panic(fmt.Sprintf("invalid row range [%d, %d) for shape %v", start, end, a.Shape))
	}
	stride := a.RowSize()
	shape := slices.Clone(a.Shape)
	shape[0] = end - start
	return &AF32{
		V:     a.V[start*stride : end*stride],
		Shape: shape,
	}
}

// AF32Gather copies the rows of a named by idx, in order, into a new tensor.
func AF32Gather(a *AF32, idx []int) *AF32 {
	if len(idx) == 0 {
		panic("cannot gather zero rows")
	}
	stride := a.RowSize()
	shape := slices.Clone(a.Shape)
	shape[0] = len(idx)
	out := &AF32{
		V:     make([]float32, len(idx)*stride),
		Shape: shape,
	}
	for k, i := range idx {
		copy(out.V[k*stride:(k+1)*stride], a.V[i*stride:(i+1)*stride])
	}
	return out
}

// RowSize is the number of elements covered by one step of the leading
// dimension.
func (a *AF32) RowSize() int {
	size := 1
	for _, s := range a.Shape[1:] {
		size *= s
	}
	return size
}

func (a *AF32) At1(idx int) float32 {
	return a.V[idx]
}

func (a *AF32) At2(idx0, idx1 int) float32 {
	if len(a.Shape) != 2 {
		panic("At2() invalid for len(shape) != 2")
	}
	return a.V[idx0*a.Shape[1]+idx1]
}

func (a *AF32) At3(idx0, idx1, idx2 int) float32 {
	if len(a.Shape) != 3 {
		panic("At3() invalid for len(shape) != 3")
	}
	return a.V[idx0*a.Shape[1]*a.Shape[2]+idx1*a.Shape[2]+idx2]
}

func (a *AF32) At4(idx0, idx1, idx2, idx3 int) float32 {
	if len(a.Shape) != 4 {
		panic("At4() invalid for len(shape) != 4")
	}
	return a.V[((idx0*a.Shape[1]+idx1)*a.Shape[2]+idx2)*a.Shape[3]+idx3]
}

func (a *AF32) Set1(idx int, v float32) {
	a.V[idx] = v
}

func (a *AF32) Set2(idx0, idx1 int, v float32) {
	if len(a.Shape) != 2 {
		panic("Set2() invalid for len(shape) != 2")
	}
	a.V[idx0*a.Shape[1]+idx1] = v
}

func (a *AF32) Set3(idx0, idx1, idx2 int, v float32) {
	if len(a.Shape) != 3 {
		panic("Set3() invalid for len(shape) != 3")
	}
	a.V[idx0*a.Shape[1]*a.Shape[2]+idx1*a.Shape[2]+idx2] = v
}

func (a *AF32) Set4(idx0, idx1, idx2, idx3 int, v float32) {
	if len(a.Shape) != 4 {
		panic("Set4() invalid for len(shape) != 4")
	}
	a.V[((idx0*a.Shape[1]+idx1)*a.Shape[2]+idx2)*a.Shape[3]+idx3] = v
}

// ensureAF32 returns buf resized to shape, reusing its storage when it is
// large enough, otherwise a freshly allocated tensor.  Contents are not
// cleared.  Layers use it to keep scratch storage across batches.
func ensureAF32(buf *AF32, shape ...int) *AF32 {
	size := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("invalid shape: %v", shape))
		}
		size *= s
	}
	if buf != nil && cap(buf.V) >= size {
		buf.V = buf.V[:size]
		buf.Shape = slices.Clone(shape)
		return buf
	}
	return MakeAF32(shape...)
}
