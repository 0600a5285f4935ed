package toolbox

import (
	"fmt"
	"math"
	"math/rand"
)

// Layer is one stage of a sequential Network.  Shapes are per sample; the
// batch dimension is always the leading dimension of the tensors passed to
// Forward and Backward.
type Layer interface {
	Name() string
	InputShape() []int
	OutputShape() []int

	// Forward applies the layer to x.  Shape (batchSize, InputShape()...).
	// The returned tensor is owned by the layer and is overwritten by the
	// next call.  When training is set, the layer keeps whatever it needs
	// for a following Backward call.
	Forward(x *AF32, training bool) *AF32

	// Backward takes the gradient of the loss wrt the layer's output and
	// returns the gradient wrt its input, accumulating nothing: parameter
	// gradients are overwritten on every call.
	Backward(djda *AF32) *AF32

	Params() []*Param
}

// Param is a trainable tensor together with storage for its gradient.
type Param struct {
	Name  string
	Value *AF32
	Grad  *AF32
}

func makeParam(name string, shape ...int) *Param {
	return &Param{
		Name:  name,
		Value: MakeAF32(shape...),
		Grad:  MakeAF32(shape...),
	}
}

// glorotUniform fills v from U(-limit, limit) with limit = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(v []float32, fanIn, fanOut int, r *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range v {
		v[i] = float32((r.Float64()*2 - 1) * limit)
	}
}

func checkBatchShape(layer string, x *AF32, want []int) {
	if len(x.Shape) != len(want)+1 {
		panic(fmt.Sprintf("%s: input shape %v does not match per-sample shape %v", layer, x.Shape, want))
	}
	for i, s := range want {
		if x.Shape[i+1] != s {
			panic(fmt.Sprintf("%s: input shape %v does not match per-sample shape %v", layer, x.Shape, want))
		}
	}
}
