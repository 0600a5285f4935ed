package linemodel

import "github.com/ahmedtd/linecoords/linedata"

// Config holds every knob of a training run.
type Config struct {
	// Dir holds line<i>.png and coords.npz.
	Dir string
	// N is the number of images to generate.
	N   int

	Epochs          int
	BatchSize       int
	Dropout         float64
	ValidationSplit float64
	LearningRate    float32

	Split linedata.SplitOptions

	// DataSeed seeds line generation; Seed seeds weight initialization,
	// dropout masks and per-epoch shuffling.
	DataSeed int64
	Seed     int64

	// Optional outputs and inputs.  Empty disables them.
	FromCheckpointFile string
	OutputWeightFile   string
	HistoryPlotFile    string
}

func DefaultConfig() Config {
	return Config{
		Dir:             "line_images",
		N:               1000,
		Epochs:          50,
		BatchSize:       50,
		Dropout:         0.3,
		ValidationSplit: 0.1,
		LearningRate:    0.001,
		Split:           linedata.DefaultSplitOptions(),
		DataSeed:        1,
		Seed:            12345,
	}
}
