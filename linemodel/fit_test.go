package linemodel

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/ahmedtd/linecoords/toolbox"
)

// linearData draws n samples of y = 2*x0 - x1 + 3.
func linearData(n int, r *rand.Rand) (x, y *toolbox.AF32) {
	x = toolbox.MakeAF32(n, 2)
	y = toolbox.MakeAF32(n, 1)
	for k := 0; k < n; k++ {
		x0, x1 := r.Float32(), r.Float32()
		x.Set2(k, 0, x0)
		x.Set2(k, 1, x1)
		y.Set2(k, 0, 2*x0-x1+3)
	}
	return x, y
}

func linearNetwork(r *rand.Rand) *toolbox.Network {
	return &toolbox.Network{
		LossFunction: toolbox.MeanAbsoluteError,
		Layers: []toolbox.Layer{
			toolbox.MakeDense(toolbox.Linear, 2, 1, r),
		},
	}
}

func TestFitHistory(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	x, y := linearData(25, r)
	net := linearNetwork(r)
	aep := net.MakeAdamParameters(0.05)

	epochsSeen := 0
	opts := FitOptions{
		Epochs:          40,
		BatchSize:       4,
		ValidationSplit: 0.2,
		OnEpochEnd: func(epoch int) error {
			if epoch != epochsSeen {
				t.Errorf("OnEpochEnd got epoch %d, want %d", epoch, epochsSeen)
			}
			epochsSeen++
			return nil
		},
	}

	h, err := Fit(context.Background(), net, aep, x, y, opts, r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if epochsSeen != 40 || len(h.Loss) != 40 || len(h.ValLoss) != 40 {
		t.Fatalf("Got %d callbacks, %d losses, %d validation losses; want 40 each", epochsSeen, len(h.Loss), len(h.ValLoss))
	}
	// 20 training samples in batches of 4, every epoch.
	if got, want := aep.Step(), 40*5; got != want {
		t.Errorf("Adam took %d steps, want %d", got, want)
	}
	if h.Loss[39] >= h.Loss[0] {
		t.Errorf("Training loss did not decrease: first %v last %v", h.Loss[0], h.Loss[39])
	}
	if h.ValLoss[39] >= h.ValLoss[0] {
		t.Errorf("Validation loss did not decrease: first %v last %v", h.ValLoss[0], h.ValLoss[39])
	}
}

func TestFitPartialBatch(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	x, y := linearData(10, r)
	net := linearNetwork(r)
	aep := net.MakeAdamParameters(0.01)

	h, err := Fit(context.Background(), net, aep, x, y, FitOptions{Epochs: 3, BatchSize: 4}, r)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(h.ValLoss) != 0 {
		t.Errorf("Got %d validation losses without a validation split", len(h.ValLoss))
	}
	// Batches of 4, 4 and 2.
	if got, want := aep.Step(), 3*3; got != want {
		t.Errorf("Adam took %d steps, want %d", got, want)
	}
}

func TestFitErrors(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	x, y := linearData(10, r)
	net := linearNetwork(r)
	aep := net.MakeAdamParameters(0.01)

	if _, err := Fit(context.Background(), net, aep, toolbox.MakeAF32(10, 3), y, FitOptions{Epochs: 1, BatchSize: 4}, r); err == nil {
		t.Errorf("Expected error for mismatched input shape")
	}
	if _, err := Fit(context.Background(), net, aep, x, toolbox.MakeAF32(10, 2), FitOptions{Epochs: 1, BatchSize: 4}, r); err == nil {
		t.Errorf("Expected error for mismatched label shape")
	}
	if _, err := Fit(context.Background(), net, aep, x, y, FitOptions{Epochs: 1, BatchSize: 4, ValidationSplit: 0.95}, r); err == nil {
		t.Errorf("Expected error for empty training subset")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fit(ctx, net, aep, x, y, FitOptions{Epochs: 1, BatchSize: 4}, r); !errors.Is(err, context.Canceled) {
		t.Errorf("Got error %v, want context.Canceled", err)
	}
}
