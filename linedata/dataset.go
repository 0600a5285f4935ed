package linedata

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ahmedtd/linecoords/toolbox"
)

// SplitOptions controls the train/test partition.
type SplitOptions struct {
	// TestSize is the fraction of samples held out for testing.
	TestSize float64
	Seed     int64
	Shuffle  bool
}

func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		TestSize: 0.2,
		Seed:     104,
		Shuffle:  true,
	}
}

// Dataset is the normalized, split data set.  Row k of XTrain and YTrain is
// source sample TrainIndices[k]; likewise for the test set.
type Dataset struct {
	XTrain, XTest *toolbox.AF32 // Shape (count, height, width, 1)
	YTrain, YTest *toolbox.AF32 // Shape (count, 4)

	TrainIndices, TestIndices []int
}

// SplitIndices partitions [0, n).  The test set has ceil(TestSize*n)
// samples.  With shuffling, a seeded permutation is drawn and its head is
// the test set; without it the tail of the range is.
func SplitIndices(n int, opts SplitOptions) (train, test []int, err error) {
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v outside (0, 1)", opts.TestSize)
	}
	nTest := int(math.Ceil(opts.TestSize * float64(n)))
	nTrain := n - nTest
	if nTest <= 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("with n=%d and test size %v the resulting train set would be empty", n, opts.TestSize)
	}

	if !opts.Shuffle {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		return perm[:nTrain], perm[nTrain:], nil
	}

	perm := rand.New(rand.NewSource(opts.Seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Normalize scales intensities from [0, 255] to [0, 1] and appends a single
// channel dimension.  Shape (n, height, width) -> (n, height, width, 1)
func Normalize(images *toolbox.AF32) *toolbox.AF32 {
	if len(images.Shape) != 3 {
		panic(fmt.Sprintf("images must have shape (n, height, width), got %v", images.Shape))
	}
	out := toolbox.MakeAF32(images.Shape[0], images.Shape[1], images.Shape[2], 1)
	for i, v := range images.V {
		out.V[i] = v / 255
	}
	return out
}

// Labels packs the coordinates into a tensor.  Shape (len(lines), 4)
func Labels(lines []Line) *toolbox.AF32 {
	out := toolbox.MakeAF32(len(lines), 4)
	for k, l := range lines {
		for j, c := range l.Coords() {
			out.Set2(k, j, float32(c))
		}
	}
	return out
}

// BuildDataset normalizes images and splits images and labels with the same
// permutation.
func BuildDataset(images *toolbox.AF32, lines []Line, opts SplitOptions) (*Dataset, error) {
	if len(images.Shape) != 3 {
		return nil, fmt.Errorf("images must have shape (n, height, width), got %v", images.Shape)
	}
	n := images.Shape[0]
	if n != len(lines) {
		return nil, fmt.Errorf("have %d images but %d labels", n, len(lines))
	}

	train, test, err := SplitIndices(n, opts)
	if err != nil {
		return nil, fmt.Errorf("while splitting: %w", err)
	}

	x := Normalize(images)
	y := Labels(lines)

	return &Dataset{
		XTrain:       toolbox.AF32Gather(x, train),
		XTest:        toolbox.AF32Gather(x, test),
		YTrain:       toolbox.AF32Gather(y, train),
		YTest:        toolbox.AF32Gather(y, test),
		TrainIndices: train,
		TestIndices:  test,
	}, nil
}
