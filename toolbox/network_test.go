package toolbox

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func makeTestNetwork(r *rand.Rand) *Network {
	conv := MakeConv2D(ReLU, []int{8, 8, 1}, 4, 3, 3, r)
	pool := MakeMaxPool2D(conv.OutputShape(), 2, 2)
	flat := MakeFlatten(pool.OutputShape())
	drop := MakeDropout(flat.OutputShape(), 0.3, r)
	dense := MakeDense(ReLU, flat.OutputShape()[0], 4, r)
	return &Network{
		LossFunction: MeanAbsoluteError,
		Layers:       []Layer{conv, pool, flat, drop, dense},
	}
}

func TestNetworkValidate(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	net := makeTestNetwork(r)
	if err := net.Validate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bad := &Network{
		Layers: []Layer{
			MakeFlatten([]int{4, 4, 1}),
			MakeDense(Linear, 15, 4, r),
		},
	}
	if err := bad.Validate(); err == nil {
		t.Fatalf("Expected an error for mismatched layer shapes")
	}
}

func TestNetworkCheckInput(t *testing.T) {
	net := makeTestNetwork(rand.New(rand.NewSource(12345)))
	if err := net.CheckInput(MakeAF32(3, 8, 8, 1)); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := net.CheckInput(MakeAF32(3, 8, 8)); err == nil {
		t.Errorf("Expected an error for a missing channel dimension")
	}
}

func TestPredictMatchesApplyAcrossPartialBatches(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	net := makeTestNetwork(r)
	x := randomAF32(r, 7, 8, 8, 1)

	whole := net.Apply(x)
	batched := net.Predict(x, 3)

	if diff := cmp.Diff(batched, whole, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Fatalf("Wrong predictions; diff (-got +want)\n%s", diff)
	}
	for i, v := range whole.V {
		if v < 0 {
			t.Fatalf("prediction %d is negative: %v", i, v)
		}
	}
}

func TestAdamStepReducesLoss(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	net := makeTestNetwork(r)
	x := randomAF32(r, 10, 8, 8, 1)
	y := MakeAF32(10, 4)
	for i := range y.V {
		y.V[i] = 1 + r.Float32()
	}

	before := net.Loss(y, net.Apply(x), 10)
	aep := net.MakeAdamParameters(0.01)
	for s := 0; s < 200; s++ {
		net.AdamStep(x, y, aep)
	}
	after := net.Loss(y, net.Apply(x), 10)

	if after >= before {
		t.Errorf("Loss did not decrease; before %v, after %v", before, after)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	net := makeTestNetwork(r)
	x := randomAF32(r, 4, 8, 8, 1)
	y := MakeAF32(4, 4)
	aep := net.MakeAdamParameters(0.01)
	net.AdamStep(x, y, aep)

	tensors := map[string]*AF32{}
	net.DumpTensors(tensors)
	aep.DumpTensors(tensors)

	var buf bytes.Buffer
	if err := WriteSafeTensors(&buf, tensors); err != nil {
		t.Fatalf("Unexpected error while writing: %v", err)
	}
	loaded, err := ReadSafeTensors(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Unexpected error while reading: %v", err)
	}

	restored := makeTestNetwork(rand.New(rand.NewSource(999)))
	restoredAdam := restored.MakeAdamParameters(0.5)
	if err := restored.LoadTensors(loaded); err != nil {
		t.Fatalf("Unexpected error restoring network: %v", err)
	}
	if err := restoredAdam.LoadTensors(loaded); err != nil {
		t.Fatalf("Unexpected error restoring Adam: %v", err)
	}

	if diff := cmp.Diff(restored.Apply(x), net.Apply(x)); diff != "" {
		t.Errorf("Restored network disagrees; diff (-got +want)\n%s", diff)
	}
	if restoredAdam.Step() != 1 {
		t.Errorf("Wrong restored step; got %d, want 1", restoredAdam.Step())
	}

	delete(loaded, "net.4.weights")
	if err := restored.LoadTensors(loaded); err == nil {
		t.Errorf("Expected an error for a missing tensor")
	}
}

func TestSummary(t *testing.T) {
	net := makeTestNetwork(rand.New(rand.NewSource(12345)))
	var buf bytes.Buffer
	if err := net.Summary(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"conv2d_0", "(None, 8, 8, 4)", "dense_4", "Total params: 300"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
