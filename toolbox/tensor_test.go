package toolbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAF32Transpose(t *testing.T) {
	in := &AF32{V: []float32{1, 2, 3, 4, 5, 6}, Shape: []int{2, 3}}
	out := AF32ZerosLike(in)
	AF32Transpose(in, out)

	want := &AF32{V: []float32{1, 4, 2, 5, 3, 6}, Shape: []int{3, 2}}
	if diff := cmp.Diff(out, want); diff != "" {
		t.Fatalf("Wrong transpose; diff (-got +want)\n%s", diff)
	}
}

func TestAF32RowsSharesStorage(t *testing.T) {
	a := MakeAF32(4, 2, 2)
	rows := AF32Rows(a, 1, 3)
	if diff := cmp.Diff(rows.Shape, []int{2, 2, 2}); diff != "" {
		t.Fatalf("Wrong shape; diff (-got +want)\n%s", diff)
	}
	rows.V[0] = 7
	if a.At3(1, 0, 0) != 7 {
		t.Errorf("AF32Rows did not share storage")
	}
}

func TestAF32Gather(t *testing.T) {
	a := &AF32{V: []float32{0, 1, 10, 11, 20, 21}, Shape: []int{3, 2}}
	got := AF32Gather(a, []int{2, 0})
	want := &AF32{V: []float32{20, 21, 0, 1}, Shape: []int{2, 2}}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("Wrong gather; diff (-got +want)\n%s", diff)
	}
}

func TestAF32At4Set4(t *testing.T) {
	a := MakeAF32(2, 3, 4, 5)
	a.Set4(1, 2, 3, 4, 9)
	if a.V[len(a.V)-1] != 9 || a.At4(1, 2, 3, 4) != 9 {
		t.Errorf("At4/Set4 do not address the last element")
	}
}

func TestEnsureAF32ReusesStorage(t *testing.T) {
	a := MakeAF32(4, 3)
	b := ensureAF32(a, 2, 3)
	if b != a || len(b.V) != 6 {
		t.Fatalf("expected storage reuse, got len %d", len(b.V))
	}
	c := ensureAF32(b, 5, 3)
	if c == a || len(c.V) != 15 {
		t.Fatalf("expected reallocation, got len %d", len(c.V))
	}
}
