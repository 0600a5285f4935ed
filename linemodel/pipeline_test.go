package linemodel

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ahmedtd/linecoords/linedata"
	"github.com/google/go-cmp/cmp"
)

func smokeConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Dir = filepath.Join(dir, "line_images")
	cfg.N = 10
	cfg.Epochs = 2
	cfg.OutputWeightFile = filepath.Join(dir, "weights.safetensors")
	cfg.HistoryPlotFile = filepath.Join(dir, "history.png")
	return cfg
}

func parseReport(t *testing.T, out string) float64 {
	t.Helper()
	const prefix = "The MAE on test set is: "
	if !strings.HasPrefix(out, prefix) || !strings.HasSuffix(out, "\n") {
		t.Fatalf("Unexpected report %q", out)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimPrefix(out, prefix), "\n"), 64)
	if err != nil {
		t.Fatalf("Unparseable MAE in %q: %v", out, err)
	}
	return v
}

func TestRunSmoke(t *testing.T) {
	cfg := smokeConfig(t)
	out := &bytes.Buffer{}

	res, err := Run(context.Background(), cfg, out)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if math.IsNaN(res.MAE) || math.IsInf(res.MAE, 0) || res.MAE < 0 {
		t.Fatalf("MAE %v is not a finite non-negative number", res.MAE)
	}
	if got := parseReport(t, out.String()); got != res.MAE {
		t.Errorf("Printed MAE %v, result MAE %v", got, res.MAE)
	}

	if diff := cmp.Diff(res.Predictions.Shape, []int{2, 4}); diff != "" {
		t.Errorf("Wrong prediction shape; diff (-got +want)\n%s", diff)
	}
	if len(res.History.Loss) != 2 || len(res.History.ValLoss) != 2 {
		t.Errorf("Got %d/%d history entries, want 2/2", len(res.History.Loss), len(res.History.ValLoss))
	}

	for i := 0; i < cfg.N; i++ {
		if _, err := os.Stat(linedata.ImagePath(cfg.Dir, i)); err != nil {
			t.Errorf("Missing image %d: %v", i, err)
		}
	}
	for _, path := range []string{linedata.LabelsPath(cfg.Dir), cfg.OutputWeightFile, cfg.HistoryPlotFile} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Missing output %s: %v", path, err)
		}
	}

	// The checkpoint restores the trained weights exactly.
	restored, err := NewNetwork([]int{linedata.Resolution, linedata.Resolution, 1}, 4, cfg.Dropout, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("Unexpected error from NewNetwork: %v", err)
	}
	if err := LoadCheckpoint(cfg.OutputWeightFile, restored, nil); err != nil {
		t.Fatalf("Unexpected error from LoadCheckpoint: %v", err)
	}
	ps, want := restored.Params(), res.Network.Params()
	for i := range ps {
		if diff := cmp.Diff(ps[i].Value.V, want[i].Value.V); diff != "" {
			t.Fatalf("Param %d differs after restore; diff (-got +want)\n%s", i, diff)
		}
	}
}

func TestTrainFromDir(t *testing.T) {
	cfg := smokeConfig(t)
	cfg.Epochs = 1
	cfg.OutputWeightFile = ""
	cfg.HistoryPlotFile = ""

	if _, err := Generate(cfg); err != nil {
		t.Fatalf("Unexpected error from Generate: %v", err)
	}

	out := &bytes.Buffer{}
	res, err := TrainFromDir(context.Background(), cfg, out)
	if err != nil {
		t.Fatalf("Unexpected error from TrainFromDir: %v", err)
	}
	if got := parseReport(t, out.String()); got != res.MAE {
		t.Errorf("Printed MAE %v, result MAE %v", got, res.MAE)
	}
}

func TestTrainFromDirMissingLabels(t *testing.T) {
	cfg := smokeConfig(t)
	if _, err := TrainFromDir(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Errorf("Expected error for a directory without coordinates")
	}
}

func TestPlotHistoryEmpty(t *testing.T) {
	if err := PlotHistory(&History{}, filepath.Join(t.TempDir(), "h.png")); err == nil {
		t.Errorf("Expected error for empty history")
	}
}
