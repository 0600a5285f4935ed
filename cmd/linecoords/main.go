// Command linecoords trains a convolutional network to recover the endpoints
// of a line segment from a 64x64 rendering of it.
//
// To run everything: `go run ./cmd/linecoords run`
//
// To generate and train separately:
//
//	go run ./cmd/linecoords generate --dir=line_images
//	go run ./cmd/linecoords train --dir=line_images --output-weight-file=lines.safetensors
//
// To predict: `go run ./cmd/linecoords predict --weights=lines.safetensors --image=line_images/line0.png`
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/ahmedtd/linecoords/linemodel"
	"github.com/gogpu/gg"
	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&RunCommand{}, "")
	subcommands.Register(&GenerateCommand{}, "")
	subcommands.Register(&TrainCommand{}, "")
	subcommands.Register(&PredictCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// commonFlags are shared by every command that touches the image directory.
type commonFlags struct {
	cfg          linemodel.Config
	learningRate float64

	cpuProfileFile string
	verbose        bool
}

func (c *commonFlags) setDataFlags(f *flag.FlagSet) {
	c.cfg = linemodel.DefaultConfig()
	f.StringVar(&c.cfg.Dir, "dir", c.cfg.Dir, "Directory holding line<i>.png and coords.npz")
	f.IntVar(&c.cfg.N, "n", c.cfg.N, "Number of images to generate")
	f.Int64Var(&c.cfg.DataSeed, "data-seed", c.cfg.DataSeed, "Seed for line generation")

	f.StringVar(&c.cpuProfileFile, "cpu-profile", "", "Write a CPU profile")
	f.BoolVar(&c.verbose, "verbose", false, "Log rasterizer diagnostics")
}

func (c *commonFlags) setTrainFlags(f *flag.FlagSet) {
	f.IntVar(&c.cfg.Epochs, "epochs", c.cfg.Epochs, "Number of passes over the training set")
	f.IntVar(&c.cfg.BatchSize, "batch-size", c.cfg.BatchSize, "Samples per Adam step and per prediction batch")
	f.Float64Var(&c.cfg.Dropout, "dropout", c.cfg.Dropout, "Dropout rate before the output layer")
	f.Float64Var(&c.cfg.ValidationSplit, "validation-split", c.cfg.ValidationSplit, "Fraction of the training set held out for validation")
	c.learningRate = float64(c.cfg.LearningRate)
	f.Float64Var(&c.learningRate, "learning-rate", c.learningRate, "Adam learning rate")

	f.Float64Var(&c.cfg.Split.TestSize, "test-size", c.cfg.Split.TestSize, "Fraction of samples held out for testing")
	f.Int64Var(&c.cfg.Split.Seed, "split-seed", c.cfg.Split.Seed, "Seed for the train/test split")
	f.BoolVar(&c.cfg.Split.Shuffle, "split-shuffle", c.cfg.Split.Shuffle, "Shuffle before splitting")
	f.Int64Var(&c.cfg.Seed, "seed", c.cfg.Seed, "Seed for weight initialization, dropout and shuffling")

	f.StringVar(&c.cfg.FromCheckpointFile, "from-checkpoint", "", "Path to initial weights to load for training")
	f.StringVar(&c.cfg.OutputWeightFile, "output-weight-file", "", "Path to save trained weights (safetensors format)")
	f.StringVar(&c.cfg.HistoryPlotFile, "history-plot", "", "Path to save a plot of per-epoch loss")
}

func (c *commonFlags) config() linemodel.Config {
	cfg := c.cfg
	cfg.LearningRate = float32(c.learningRate)
	return cfg
}

// begin applies the process-wide flags.  The returned function must be
// called when the command finishes.
func (c *commonFlags) begin() (func(), error) {
	if c.verbose {
		gg.SetLogger(slog.Default())
	}

	if c.cpuProfileFile == "" {
		return func() {}, nil
	}

	f, err := os.Create(c.cpuProfileFile)
	if err != nil {
		return nil, fmt.Errorf("while creating CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("while starting CPU profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
