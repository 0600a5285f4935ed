package toolbox

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSafeTensorsRoundTrip(t *testing.T) {
	tensors := map[string]*AF32{
		"net.0.kernel": {V: []float32{1, 2, 3, 4, 5, 6}, Shape: []int{2, 3}},
		"net.0.biases": {V: []float32{-1, 0.5}, Shape: []int{2}},
		"adam.step":    MakeScalarAF32(42),
	}

	var buf bytes.Buffer
	if err := WriteSafeTensors(&buf, tensors); err != nil {
		t.Fatalf("Unexpected error while writing: %v", err)
	}

	got, err := ReadSafeTensors(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unexpected error while reading: %v", err)
	}

	if diff := cmp.Diff(got, tensors); diff != "" {
		t.Fatalf("Wrong tensors; diff (-got +want)\n%s", diff)
	}
}

func TestReadSafeTensorsRejectsTruncatedData(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSafeTensors(&buf, map[string]*AF32{"x": MakeAF32(16)}); err != nil {
		t.Fatalf("Unexpected error while writing: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-4]
	if _, err := ReadSafeTensors(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("Expected an error reading truncated data")
	}
}
