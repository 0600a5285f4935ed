package linemodel

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"slices"

	"github.com/ahmedtd/linecoords/toolbox"
)

type FitOptions struct {
	Epochs    int
	BatchSize int

	// ValidationSplit is the fraction of samples, taken from the end of x
	// before any shuffling, that is held out and scored after every epoch.
	ValidationSplit float64

	// OnEpochEnd, if set, is called after each epoch.  An error stops
	// training.
	OnEpochEnd func(epoch int) error
}

// History records the per-epoch mean loss.  ValLoss is empty when no
// validation split was requested.
type History struct {
	Loss    []float64
	ValLoss []float64
}

// Fit trains net on (x, y) with Adam.  Each epoch visits every training sample
// once, in an order reshuffled from r, in batches of BatchSize with a final
// partial batch.
//
// x is the input.  Shape (n, InputShape()...)
// y is the ground truth.  Shape (n, OutputShape()...)
func Fit(ctx context.Context, net *toolbox.Network, aep *toolbox.AdamEvaluationParameters, x, y *toolbox.AF32, opts FitOptions, r *rand.Rand) (*History, error) {
	if err := net.CheckInput(x); err != nil {
		return nil, err
	}
	if y.Shape[0] != x.Shape[0] || !slices.Equal(y.Shape[1:], net.OutputShape()) {
		return nil, fmt.Errorf("label shape %v does not match %d samples of output shape %v", y.Shape, x.Shape[0], net.OutputShape())
	}
	if opts.Epochs <= 0 {
		return nil, fmt.Errorf("epoch count must be positive, got %d", opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.ValidationSplit < 0 || opts.ValidationSplit >= 1 {
		return nil, fmt.Errorf("validation split %v outside [0, 1)", opts.ValidationSplit)
	}

	n := x.Shape[0]
	nFit := n
	var xVal, yVal *toolbox.AF32
	if opts.ValidationSplit > 0 {
		nFit = int(float64(n) * (1 - opts.ValidationSplit))
		if nFit == 0 || nFit == n {
			return nil, fmt.Errorf("validation split %v of %d samples leaves an empty subset", opts.ValidationSplit, n)
		}
		xVal = toolbox.AF32Rows(x, nFit, n)
		yVal = toolbox.AF32Rows(y, nFit, n)
	}
	xFit := toolbox.AF32Rows(x, 0, nFit)
	yFit := toolbox.AF32Rows(y, 0, nFit)

	log.Printf("Training on %d samples, validating on %d samples", nFit, n-nFit)

	order := make([]int, nFit)
	for i := range order {
		order[i] = i
	}

	history := &History{}
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var epochLoss float64
		for start := 0; start < nFit; start += opts.BatchSize {
			if err := ctx.Err(); err != nil {
				return history, fmt.Errorf("while training epoch %d: %w", epoch, err)
			}

			end := min(start+opts.BatchSize, nFit)
			bx := toolbox.AF32Gather(xFit, order[start:end])
			by := toolbox.AF32Gather(yFit, order[start:end])

			loss := net.AdamStep(bx, by, aep)
			epochLoss += float64(loss) * float64(end-start)
		}
		epochLoss /= float64(nFit)
		history.Loss = append(history.Loss, epochLoss)

		if xVal != nil {
			valPred := net.Predict(xVal, opts.BatchSize)
			valLoss := float64(net.Loss(yVal, valPred, xVal.Shape[0]))
			history.ValLoss = append(history.ValLoss, valLoss)

			log.Printf("epoch %d training-loss=%f validation-loss=%f", epoch, epochLoss, valLoss)
		} else {
			log.Printf("epoch %d training-loss=%f", epoch, epochLoss)
		}
		log.Printf("epoch %d timings overall=%.1f forward=%.1f loss=%.1f backprop=%.1f momentvectors=%.1f weightupdate=%.1f",
			epoch,
			aep.Timings.Overall.Seconds(),
			aep.Timings.Forward.Seconds(),
			aep.Timings.Loss.Seconds(),
			aep.Timings.Backpropagation.Seconds(),
			aep.Timings.MomentVectors.Seconds(),
			aep.Timings.WeightUpdate.Seconds(),
		)
		aep.Timings.Reset()

		if opts.OnEpochEnd != nil {
			if err := opts.OnEpochEnd(epoch); err != nil {
				return history, fmt.Errorf("after epoch %d: %w", epoch, err)
			}
		}
	}

	return history, nil
}
