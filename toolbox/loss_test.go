package toolbox

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMeanAbsoluteErrorLoss(t *testing.T) {
	y := &AF32{V: []float32{0, 0, 10, 10}, Shape: []int{1, 4}}
	a := &AF32{V: []float32{0, 0, 5, 10}, Shape: []int{1, 4}}

	if got := MeanAbsoluteErrorLoss(y, a, 1); got != 1.25 {
		t.Errorf("Wrong loss; got %v, want 1.25", got)
	}

	djda := AF32ZerosLike(a)
	MeanAbsoluteErrorLossGradient(y, a, djda)
	if diff := cmp.Diff(djda.V, []float32{0, 0, -0.25, 0}); diff != "" {
		t.Errorf("Wrong gradient; diff (-got +want)\n%s", diff)
	}
}

func TestMeanAbsoluteErrorLossOverBatches(t *testing.T) {
	y := &AF32{V: []float32{1, 2, 3, 4}, Shape: []int{2, 2}}
	a := &AF32{V: []float32{2, 2, 3, 6}, Shape: []int{2, 2}}

	// Summing per-batch losses with the full denominator gives the overall mean.
	first := MeanAbsoluteErrorLoss(AF32Rows(y, 0, 1), AF32Rows(a, 0, 1), 2)
	second := MeanAbsoluteErrorLoss(AF32Rows(y, 1, 2), AF32Rows(a, 1, 2), 2)
	whole := MeanAbsoluteErrorLoss(y, a, 2)
	if first+second != whole || whole != 0.75 {
		t.Errorf("got first=%v second=%v whole=%v, want whole 0.75", first, second, whole)
	}
}
