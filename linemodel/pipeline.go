package linemodel

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/ahmedtd/linecoords/linedata"
	"github.com/ahmedtd/linecoords/toolbox"
)

type Result struct {
	Network *toolbox.Network
	History *History

	// Predictions for the test set.  Shape (len(TestIndices), 4)
	Predictions *toolbox.AF32

	// MAE on the test set.
	MAE float64
}

// Train builds a fresh network, fits it on the training split and scores it
// on the test split.
func Train(ctx context.Context, ds *linedata.Dataset, cfg Config) (*Result, error) {
	r := rand.New(rand.NewSource(cfg.Seed))

	net, err := NewNetwork(ds.XTrain.Shape[1:], ds.YTrain.Shape[1], cfg.Dropout, r)
	if err != nil {
		return nil, fmt.Errorf("while building model: %w", err)
	}

	summary := &strings.Builder{}
	if err := net.Summary(summary); err != nil {
		return nil, fmt.Errorf("while summarizing model: %w", err)
	}
	log.Printf("Model summary:\n%s", summary)

	aep := net.MakeAdamParameters(cfg.LearningRate)

	if cfg.FromCheckpointFile != "" {
		if err := LoadCheckpoint(cfg.FromCheckpointFile, net, aep); err != nil {
			return nil, fmt.Errorf("while loading initial checkpoint: %w", err)
		}
	}

	opts := FitOptions{
		Epochs:          cfg.Epochs,
		BatchSize:       cfg.BatchSize,
		ValidationSplit: cfg.ValidationSplit,
	}
	if cfg.OutputWeightFile != "" {
		opts.OnEpochEnd = func(int) error {
			if err := WriteCheckpoint(cfg.OutputWeightFile, net, aep); err != nil {
				return fmt.Errorf("while writing checkpoint: %w", err)
			}
			return nil
		}
	}

	history, err := Fit(ctx, net, aep, ds.XTrain, ds.YTrain, opts, r)
	if err != nil {
		return nil, fmt.Errorf("while fitting: %w", err)
	}

	if cfg.HistoryPlotFile != "" {
		if err := PlotHistory(history, cfg.HistoryPlotFile); err != nil {
			return nil, err
		}
	}

	pred := net.Predict(ds.XTest, cfg.BatchSize)
	mae, err := MAE(ds.YTest, pred)
	if err != nil {
		return nil, fmt.Errorf("while scoring test set: %w", err)
	}

	return &Result{
		Network:     net,
		History:     history,
		Predictions: pred,
		MAE:         mae,
	}, nil
}

// Report prints the test score line.
func Report(w io.Writer, res *Result) error {
	_, err := fmt.Fprintf(w, "The MAE on test set is: %v\n", res.MAE)
	return err
}

// Generate synthesizes cfg.N images into cfg.Dir, creating it if needed, and
// stores their coordinates next to them.
func Generate(cfg Config) ([]linedata.Line, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("while creating image directory: %w", err)
	}

	lines, err := linedata.Synthesize(cfg.Dir, cfg.N, rand.New(rand.NewSource(cfg.DataSeed)))
	if err != nil {
		return nil, fmt.Errorf("while synthesizing images: %w", err)
	}

	if err := linedata.WriteLabels(linedata.LabelsPath(cfg.Dir), lines); err != nil {
		return nil, fmt.Errorf("while writing labels: %w", err)
	}

	return lines, nil
}

func trainOn(ctx context.Context, cfg Config, lines []linedata.Line, w io.Writer) (*Result, error) {
	images, err := linedata.LoadImages(cfg.Dir, len(lines))
	if err != nil {
		return nil, fmt.Errorf("while loading images: %w", err)
	}

	ds, err := linedata.BuildDataset(images, lines, cfg.Split)
	if err != nil {
		return nil, fmt.Errorf("while building data set: %w", err)
	}
	log.Printf("Data set split into %d training and %d test samples", len(ds.TrainIndices), len(ds.TestIndices))

	res, err := Train(ctx, ds, cfg)
	if err != nil {
		return nil, err
	}

	if err := Report(w, res); err != nil {
		return nil, fmt.Errorf("while reporting: %w", err)
	}
	return res, nil
}

// Run is the whole pipeline: generate, load, split, train, evaluate, and
// print the test MAE to w.
func Run(ctx context.Context, cfg Config, w io.Writer) (*Result, error) {
	lines, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	return trainOn(ctx, cfg, lines, w)
}

// TrainFromDir is Run without generation: images and coordinates are read
// from a directory filled earlier by Generate.
func TrainFromDir(ctx context.Context, cfg Config, w io.Writer) (*Result, error) {
	lines, err := linedata.ReadLabels(linedata.LabelsPath(cfg.Dir))
	if err != nil {
		return nil, fmt.Errorf("while reading labels: %w", err)
	}
	return trainOn(ctx, cfg, lines, w)
}
