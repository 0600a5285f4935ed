package toolbox

import (
	"fmt"
	"math/rand"
	"slices"
)

// Dropout zeroes each input with probability Rate while training and scales
// the survivors by 1/(1-Rate).  At inference it is the identity.
type Dropout struct {
	Rate float64

	shape []int
	r     *rand.Rand

	mask []float32
	a    *AF32
	djdx *AF32
}

var _ Layer = (*Dropout)(nil)

func MakeDropout(inputShape []int, rate float64, r *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate %v outside [0, 1)", rate))
	}
	return &Dropout{
		Rate:  rate,
		shape: slices.Clone(inputShape),
		r:     r,
	}
}

func (lay *Dropout) Name() string {
	return "dropout"
}

func (lay *Dropout) InputShape() []int {
	return slices.Clone(lay.shape)
}

func (lay *Dropout) OutputShape() []int {
	return slices.Clone(lay.shape)
}

func (lay *Dropout) Params() []*Param {
	return nil
}

func (lay *Dropout) Forward(x *AF32, training bool) *AF32 {
	checkBatchShape("dropout", x, lay.shape)
	if !training {
		return x
	}

	if len(lay.mask) != len(x.V) {
		lay.mask = make([]float32, len(x.V))
	}
	lay.a = ensureAF32(lay.a, x.Shape...)

	scale := float32(1 / (1 - lay.Rate))
	for i := range lay.mask {
		if lay.r.Float64() < lay.Rate {
			lay.mask[i] = 0
		} else {
			lay.mask[i] = scale
		}
		lay.a.V[i] = x.V[i] * lay.mask[i]
	}

	return lay.a
}

func (lay *Dropout) Backward(djda *AF32) *AF32 {
	if len(lay.mask) != len(djda.V) {
		panic("dropout: Backward called without a matching training Forward")
	}
	lay.djdx = ensureAF32(lay.djdx, djda.Shape...)
	for i := range djda.V {
		lay.djdx.V[i] = djda.V[i] * lay.mask[i]
	}
	return lay.djdx
}
