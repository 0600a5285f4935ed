package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/ahmedtd/linecoords/linedata"
	"github.com/ahmedtd/linecoords/linemodel"
	"github.com/google/subcommands"
)

type PredictCommand struct {
	weightsFile string
	imageFile   string
}

var _ subcommands.Command = (*PredictCommand)(nil)

func (*PredictCommand) Name() string {
	return "predict"
}

func (*PredictCommand) Synopsis() string {
	return "Predict line endpoints for one image using trained weights"
}

func (*PredictCommand) Usage() string {
	return ``
}

func (c *PredictCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "lines.safetensors", "Path to the weights produced by the train command")
	f.StringVar(&c.imageFile, "image", "", "Path to a 64x64 line image")
}

func (c *PredictCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *PredictCommand) executeErr(ctx context.Context) error {
	if c.imageFile == "" {
		return fmt.Errorf("--image is required")
	}

	// Weights are overwritten from the checkpoint; the seed only fills them
	// until then.
	net, err := linemodel.NewNetwork(
		[]int{linedata.Resolution, linedata.Resolution, 1},
		4,
		linemodel.DefaultConfig().Dropout,
		rand.New(rand.NewSource(12345)),
	)
	if err != nil {
		return fmt.Errorf("while building model: %w", err)
	}

	if err := linemodel.LoadCheckpoint(c.weightsFile, net, nil); err != nil {
		return fmt.Errorf("while loading weights: %w", err)
	}

	img, err := linedata.LoadImage(c.imageFile)
	if err != nil {
		return fmt.Errorf("while loading image: %w", err)
	}

	pred := net.Apply(linedata.Normalize(img))

	log.Printf("Prediction: x_start=%.2f y_start=%.2f x_end=%.2f y_end=%.2f",
		pred.At2(0, 0),
		pred.At2(0, 1),
		pred.At2(0, 2),
		pred.At2(0, 3),
	)
	return nil
}
