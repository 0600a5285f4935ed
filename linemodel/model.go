// Package linemodel builds, trains and evaluates the convolutional regressor
// that predicts line endpoints from rendered images.
package linemodel

import (
	"fmt"
	"math/rand"

	"github.com/ahmedtd/linecoords/toolbox"
)

// NewNetwork builds the regressor:
//
//	conv 32x3x3 relu -> maxpool 2x2 -> conv 64x3x3 relu -> maxpool 2x2 ->
//	flatten -> dropout -> dense relu
//
// inputShape is the per-sample shape (height, width, channels).  The output
// layer keeps its ReLU, so predictions are never negative.
func NewNetwork(inputShape []int, outputWidth int, dropout float64, r *rand.Rand) (*toolbox.Network, error) {
	if len(inputShape) != 3 {
		return nil, fmt.Errorf("input shape must be (height, width, channels), got %v", inputShape)
	}
	for _, s := range inputShape {
		if s <= 0 {
			return nil, fmt.Errorf("invalid input shape %v", inputShape)
		}
	}
	if inputShape[0] < 4 || inputShape[1] < 4 {
		return nil, fmt.Errorf("input %v too small for two 2x2 pooling stages", inputShape)
	}
	if outputWidth <= 0 {
		return nil, fmt.Errorf("output width must be positive, got %d", outputWidth)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("dropout rate %v outside [0, 1)", dropout)
	}

	conv1 := toolbox.MakeConv2D(toolbox.ReLU, inputShape, 32, 3, 3, r)
	pool1 := toolbox.MakeMaxPool2D(conv1.OutputShape(), 2, 2)
	conv2 := toolbox.MakeConv2D(toolbox.ReLU, pool1.OutputShape(), 64, 3, 3, r)
	pool2 := toolbox.MakeMaxPool2D(conv2.OutputShape(), 2, 2)
	flat := toolbox.MakeFlatten(pool2.OutputShape())
	drop := toolbox.MakeDropout(flat.OutputShape(), dropout, r)
	dense := toolbox.MakeDense(toolbox.ReLU, flat.OutputShape()[0], outputWidth, r)

	net := &toolbox.Network{
		LossFunction: toolbox.MeanAbsoluteError,
		Layers: []toolbox.Layer{
			conv1,
			pool1,
			conv2,
			pool2,
			flat,
			drop,
			dense,
		},
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("while assembling network: %w", err)
	}

	return net, nil
}
