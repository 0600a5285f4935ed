package toolbox

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
)

type AdamEvaluationParameters struct {
	step int

	// Adam parameters
	alpha, beta1, beta2, epsilon float32

	// Updated every step
	beta1T, beta2T float32

	params []*Param

	// The first and second moment vectors, one per parameter.
	m, v []*AF32

	// Gradient of the loss wrt the network output.
	djda *AF32

	Timings AdamEvaluationTimings
}

type AdamEvaluationTimings struct {
	Overall         time.Duration
	Forward         time.Duration
	Loss            time.Duration
	Backpropagation time.Duration
	MomentVectors   time.Duration
	WeightUpdate    time.Duration
}

func (t *AdamEvaluationTimings) Reset() {
	*t = AdamEvaluationTimings{}
}

// MakeAdamParameters prepares Adam state for every parameter of the network.
// beta1, beta2 and epsilon are the Keras defaults.
func (net *Network) MakeAdamParameters(alpha float32) *AdamEvaluationParameters {
	aep := &AdamEvaluationParameters{
		alpha:   alpha,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-7,

		beta1T: 0.9,
		beta2T: 0.999,

		params: net.Params(),
	}

	aep.m = make([]*AF32, len(aep.params))
	aep.v = make([]*AF32, len(aep.params))
	for i, p := range aep.params {
		aep.m[i] = AF32ZerosLike(p.Value)
		aep.v[i] = AF32ZerosLike(p.Value)
	}

	return aep
}

// Step is the number of updates applied so far.
func (aep *AdamEvaluationParameters) Step() int {
	return aep.step
}

func (aep *AdamEvaluationParameters) DumpTensors(tensors map[string]*AF32) {
	// This is garbage -- save scalars as {1} tensors
	tensors["adam.step"] = MakeScalarAF32(float32(aep.step))
	tensors["adam.alpha"] = MakeScalarAF32(aep.alpha)
	tensors["adam.beta1"] = MakeScalarAF32(aep.beta1)
	tensors["adam.beta2"] = MakeScalarAF32(aep.beta2)
	tensors["adam.epsilon"] = MakeScalarAF32(aep.epsilon)
	tensors["adam.beta1T"] = MakeScalarAF32(aep.beta1T)
	tensors["adam.beta2T"] = MakeScalarAF32(aep.beta2T)

	for i := range aep.params {
		tensors[fmt.Sprintf("adam.%d.m", i)] = aep.m[i]
		tensors[fmt.Sprintf("adam.%d.v", i)] = aep.v[i]
	}
}

func loadFloat32FromTensor(tensors map[string]*AF32, key string) (float32, error) {
	tensor, ok := tensors[key]
	if !ok {
		return 0, fmt.Errorf("missing tensor %s", key)
	}

	return tensor.At1(0), nil
}

func (aep *AdamEvaluationParameters) LoadTensors(tensors map[string]*AF32) error {
	scalars := []struct {
		key string
		dst *float32
	}{
		{"adam.alpha", &aep.alpha},
		{"adam.beta1", &aep.beta1},
		{"adam.beta2", &aep.beta2},
		{"adam.epsilon", &aep.epsilon},
		{"adam.beta1T", &aep.beta1T},
		{"adam.beta2T", &aep.beta2T},
	}
	for _, s := range scalars {
		v, err := loadFloat32FromTensor(tensors, s.key)
		if err != nil {
			return err
		}
		*s.dst = v
	}

	step, err := loadFloat32FromTensor(tensors, "adam.step")
	if err != nil {
		return err
	}
	aep.step = int(step)

	for i, p := range aep.params {
		for _, mv := range []struct {
			key string
			dst *AF32
		}{
			{fmt.Sprintf("adam.%d.m", i), aep.m[i]},
			{fmt.Sprintf("adam.%d.v", i), aep.v[i]},
		} {
			tensor, ok := tensors[mv.key]
			if !ok {
				return fmt.Errorf("missing tensor %s", mv.key)
			}
			if len(tensor.V) != len(p.Value.V) {
				return fmt.Errorf("tensor %s has %d values, want %d", mv.key, len(tensor.V), len(p.Value.V))
			}
			copy(mv.dst.V, tensor.V)
		}
	}

	return nil
}

// AdamStep runs one forward/backward pass over the batch and applies an Adam
// update.  It returns the batch loss.
//
// x is the input.  Shape (batchSize, InputShape()...)
// y is the ground truth output.  Shape (batchSize, OutputShape()...)
func (net *Network) AdamStep(x, y *AF32, aep *AdamEvaluationParameters) float32 {
	start := time.Now()
	batchSize := x.Shape[0]

	forwardStart := time.Now()
	a := net.forward(x, true)
	aep.Timings.Forward += time.Since(forwardStart)

	lossStart := time.Now()
	loss := net.Loss(y, a, batchSize)
	aep.djda = ensureAF32(aep.djda, a.Shape...)
	net.lossGradient(y, a, aep.djda)
	aep.Timings.Loss += time.Since(lossStart)

	backpropStart := time.Now()
	net.backward(aep.djda)
	aep.Timings.Backpropagation += time.Since(backpropStart)

	momentVectorsStart := time.Now()

	// Compute new Adam moment vectors
	beta1 := aep.beta1
	beta2 := aep.beta2
	for i, p := range aep.params {
		m := aep.m[i].V
		v := aep.v[i].V
		for j, g := range p.Grad.V {
			m[j] = beta1*m[j] + (1-beta1)*g
			v[j] = beta2*v[j] + (1-beta2)*g*g
		}
	}

	aep.Timings.MomentVectors += time.Since(momentVectorsStart)

	weightUpdateStart := time.Now()

	alphaT := aep.alpha * math32.Sqrt(1-aep.beta2T) / (1 - aep.beta1T)
	for i, p := range aep.params {
		m := aep.m[i].V
		v := aep.v[i].V
		w := p.Value.V
		for j := range w {
			w[j] -= alphaT * m[j] / (math32.Sqrt(v[j]) + aep.epsilon)
		}
	}

	aep.beta1T *= aep.beta1
	aep.beta2T *= aep.beta2

	aep.Timings.WeightUpdate += time.Since(weightUpdateStart)

	aep.Timings.Overall += time.Since(start)

	aep.step++

	return loss
}
