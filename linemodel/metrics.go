package linemodel

import (
	"fmt"
	"slices"

	"github.com/ahmedtd/linecoords/toolbox"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// MAE is the mean absolute error over every element of yTrue and yPred,
// rounded half-to-even at four decimals.
func MAE(yTrue, yPred *toolbox.AF32) (float64, error) {
	if !slices.Equal(yTrue.Shape, yPred.Shape) {
		return 0, fmt.Errorf("shape mismatch: truth %v, prediction %v", yTrue.Shape, yPred.Shape)
	}
	if len(yTrue.V) == 0 {
		return 0, fmt.Errorf("empty input")
	}

	t := make([]float64, len(yTrue.V))
	p := make([]float64, len(yPred.V))
	for i := range t {
		t[i] = float64(yTrue.V[i])
		p[i] = float64(yPred.V[i])
	}

	// The L1 distance is the sum of absolute differences.
	sum := floats.Distance(t, p, 1)
	return scalar.RoundEven(sum/float64(len(t)), 4), nil
}
