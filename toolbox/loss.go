package toolbox

import (
	"slices"

	"github.com/chewxy/math32"
)

type LossFunctionType int

const (
	MeanAbsoluteError LossFunctionType = iota
	MeanSquaredError
)

func checkLossShapes(y, a *AF32) {
	if len(y.Shape) != 2 {
		panic("len(y.Shape) != 2")
	}
	if len(a.Shape) != 2 {
		panic("len(a.Shape) != 2")
	}
	if !slices.Equal(y.Shape, a.Shape) {
		panic("y and a must have same shape")
	}
}

// y is the ground truth output.  Shape (batchSize, outputSize)
// a is the network's forward output.  Shape (batchSize, outputSize)
// denom is the total number of samples we will calculate the loss over.  Useful for computing the loss over a set of batches.
func MeanAbsoluteErrorLoss(y, a *AF32, denom int) float32 {
	checkLossShapes(y, a)

	batchSize := y.Shape[0]
	outputSize := y.Shape[1]

	loss := float32(0)
	for k := 0; k < batchSize; k++ {
		var sampleLoss float32
		for i := 0; i < outputSize; i++ {
			sampleLoss += math32.Abs(a.At2(k, i) - y.At2(k, i))
		}
		loss += sampleLoss / float32(outputSize) / float32(denom)
	}

	return loss
}

// y is the ground truth output.  Shape (batchSize, outputSize)
// a is the network's forward output.  Shape (batchSize, outputSize)
// dJda (output) is storage for the gradient of the loss wrt a.  Shape (batchSize, outputSize)
func MeanAbsoluteErrorLossGradient(y, a, dJda *AF32) {
	checkLossShapes(y, a)
	if !slices.Equal(y.Shape, dJda.Shape) {
		panic("y and dJda must have same shape")
	}

	batchSize := a.Shape[0]
	outputSize := a.Shape[1]
	scale := 1 / float32(batchSize) / float32(outputSize)

	for k := 0; k < batchSize; k++ {
		for i := 0; i < outputSize; i++ {
			diff := a.At2(k, i) - y.At2(k, i)
			switch {
			case diff > 0:
				dJda.Set2(k, i, scale)
			case diff < 0:
				dJda.Set2(k, i, -scale)
			default:
				dJda.Set2(k, i, 0)
			}
		}
	}
}

// y is the ground truth output.  Shape (batchSize, outputSize)
// a is the network's forward output.  Shape (batchSize, outputSize)
// denom is the total number of samples we will calculate the loss over.
func MeanSquaredErrorLoss(y, a *AF32, denom int) float32 {
	checkLossShapes(y, a)

	batchSize := y.Shape[0]
	outputSize := y.Shape[1]

	loss := float32(0)

	for k := 0; k < batchSize; k++ {
		for i := 0; i < outputSize; i++ {
			diff := a.At2(k, i) - y.At2(k, i)
			loss += diff * diff / 2 / float32(denom) / float32(outputSize)
		}
	}

	return loss
}

// y is the ground truth output.  Shape (batchSize, outputSize)
// a is the network's forward output.  Shape (batchSize, outputSize)
// dJda (output) is storage for the gradient of the loss wrt a.  Shape (batchSize, outputSize)
func MeanSquaredErrorLossGradient(y, a, dJda *AF32) {
	checkLossShapes(y, a)
	if !slices.Equal(y.Shape, dJda.Shape) {
		panic("y and dJda must have same shape")
	}

	batchSize := a.Shape[0]
	outputSize := a.Shape[1]

	for k := 0; k < batchSize; k++ {
		for i := 0; i < outputSize; i++ {
			grad := (a.At2(k, i) - y.At2(k, i)) / float32(batchSize) / float32(outputSize)
			dJda.Set2(k, i, grad)
		}
	}
}
