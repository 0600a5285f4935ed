package toolbox

import (
	"math/rand"
)

type Dense struct {
	Activation ActivationType

	W *Param // Shape (OutputSize, InputSize)
	B *Param // Shape (OutputSize)

	InputSize  int
	OutputSize int

	// Saved by Forward for Backward.
	x, a, dadz *AF32

	// Scratch for backprop.
	xT, djdaT, dadzT, wT, djdx *AF32
}

var _ Layer = (*Dense)(nil)

func MakeDense(activation ActivationType, inputSize, outputSize int, r *rand.Rand) *Dense {
	l := &Dense{
		Activation: activation,
		InputSize:  inputSize,
		OutputSize: outputSize,
		W:          makeParam("weights", outputSize, inputSize),
		B:          makeParam("biases", outputSize),
	}

	glorotUniform(l.W.Value.V, inputSize, outputSize, r)

	return l
}

func (lay *Dense) Name() string {
	return "dense"
}

func (lay *Dense) InputShape() []int {
	return []int{lay.InputSize}
}

func (lay *Dense) OutputShape() []int {
	return []int{lay.OutputSize}
}

func (lay *Dense) Params() []*Param {
	return []*Param{lay.W, lay.B}
}

// Forward applies the layer.
//
// x (input) is the layer input.  Shape (batchSize, lay.InputSize)
func (lay *Dense) Forward(x *AF32, training bool) *AF32 {
	checkBatchShape("dense", x, lay.InputShape())

	batchSize := x.Shape[0]
	inputSize := lay.InputSize
	outputSize := lay.OutputSize

	lay.a = ensureAF32(lay.a, batchSize, outputSize)
	var dadz *AF32
	if training {
		lay.dadz = ensureAF32(lay.dadz, batchSize, outputSize)
		dadz = lay.dadz
		lay.x = x
	}

	w := lay.W.Value
	b := lay.B.Value

	// Write the linear activations into a.  Equivalent to
	//
	// for k := 0; k < batchSize; k++ {
	// 	for i := 0; i < outputSize; i++ {
	// 		var z float32
	// 		for j := 0; j < inputSize; j++ {
	// 			z += w.At2(i, j) * x.At2(k, j)
	// 		}
	// 		z += b.At1(i)
	// 		a.Set2(k, i, z)
	// 	}
	// }
	for k := 0; k < batchSize; k++ {
		for i := 0; i < outputSize; i++ {
			z := denseDot2(w.V[i*inputSize:i*inputSize+inputSize], x.V[k*inputSize:k*inputSize+inputSize])
			z += b.At1(i)
			lay.a.Set2(k, i, z)
		}
	}

	if dadz != nil {
		activate(lay.Activation, lay.a.V, dadz.V)
	} else {
		activate(lay.Activation, lay.a.V, nil)
	}

	return lay.a
}

// Backward computes the weight, bias, and input gradients.
//
// djda (input) is the gradient of the loss wrt a.  Shape (batchSize, lay.OutputSize)
func (lay *Dense) Backward(djda *AF32) *AF32 {
	if lay.x == nil || lay.dadz == nil {
		panic("dense: Backward called without a training Forward")
	}
	batchSize := djda.Shape[0]

	// Create transposed copies of djda, dadz, and x.  Backprop calculations of djdw
	// and djdb are better with k being the inner dimension.  Backprop
	// calculation of djdx is better with i as the inner dimension.
	lay.xT = ensureAF32(lay.xT, lay.InputSize, batchSize)
	lay.djdaT = ensureAF32(lay.djdaT, lay.OutputSize, batchSize)
	lay.dadzT = ensureAF32(lay.dadzT, lay.OutputSize, batchSize)
	lay.wT = ensureAF32(lay.wT, lay.InputSize, lay.OutputSize)
	lay.djdx = ensureAF32(lay.djdx, batchSize, lay.InputSize)

	AF32Transpose(lay.x, lay.xT)
	AF32Transpose(djda, lay.djdaT)
	AF32Transpose(lay.dadz, lay.dadzT)
	AF32Transpose(lay.W.Value, lay.wT)

	lay.BackpropDjdw(lay.xT, lay.djdaT, lay.dadzT, lay.W.Grad)
	lay.BackpropDjdb(lay.djdaT, lay.dadzT, lay.B.Grad)
	lay.BackpropDjdx(djda, lay.dadz, lay.wT, lay.djdx)

	return lay.djdx
}

// xT (input) is the layer input.  Shape (lay.InputSize, batchSize)
// djdaT (input) is the gradient of the loss wrt a.  Shape (lay.OutputSize, batchSize)
// dadzT (input) is the gradient of a_ik wrt z_ik.  Shape (lay.OutputSize, batchSize)
// dJdw (output) is the gradient of the loss wrt lay.W.  Shape (lay.OutputSize, lay.InputSize)
func (lay *Dense) BackpropDjdw(xT, djdaT, dadzT, djdw *AF32) {
	batchSize := xT.Shape[1]
	inputSize := lay.InputSize
	outputSize := lay.OutputSize

	// This function is equivalent to:
	//
	// for i := 0; i < outputSize; i++ {
	// 	for j := 0; j < inputSize; j++ {
	// 		var grad float32
	// 		for k := 0; k < batchSize; k++ {
	// 			grad += djdaT.At2(i, k) * dadzT.At2(i, k) * xT.At2(j, k)
	// 		}
	// 		djdw.Set2(i, j, grad)
	// 	}
	// }

	for i := 0; i < outputSize; i++ {
		for j := 0; j < inputSize; j++ {
			grad := denseDot3(
				djdaT.V[i*batchSize:i*batchSize+batchSize],
				dadzT.V[i*batchSize:i*batchSize+batchSize],
				xT.V[j*batchSize:j*batchSize+batchSize],
			)
			djdw.Set2(i, j, grad)
		}
	}
}

// djdaT (input) is the gradient of the loss wrt a.  Shape (lay.OutputSize, batchSize)
// dadzT (input) is the gradient of a_ik wrt z_ik.  Shape (lay.OutputSize, batchSize)
// dJdb (output) is the gradient of the loss wrt lay.B.  Shape (lay.OutputSize)
func (lay *Dense) BackpropDjdb(djdaT, dadzT, dJdb *AF32) {
	batchSize := djdaT.Shape[1]
	outputSize := lay.OutputSize

	iBase := 0
	for i := 0; i < outputSize; i++ {
		grad := denseDot2(djdaT.V[iBase:iBase+batchSize], dadzT.V[iBase:iBase+batchSize])
		dJdb.Set1(i, grad)

		iBase += batchSize
	}
}

// djda (input) is the gradient of the loss wrt a.  Shape (batchSize, lay.OutputSize)
// dadz (input) is the gradient of a_ik wrt z_ik.  Shape (batchSize, lay.OutputSize)
// wT (input) is the layer weights, tranposed.  Shape (inputSize, outputSize)
// dJdx (output) is the gradient of the loss wrt x.  Shape (batchSize, lay.InputSize)
func (lay *Dense) BackpropDjdx(djda, dadz, wT, djdx *AF32) {
	batchSize := djda.Shape[0]
	inputSize := lay.InputSize
	outputSize := lay.OutputSize

	// This function is equivalent to:
	//
	// for k := 0; k < batchSize; k++ {
	// 	for j := 0; j < inputSize; j++ {
	// 		var grad float32
	// 		for i := 0; i < outputSize; i++ {
	// 			grad += djda.At2(k, i) * dadz.At2(k, i) * wT.At2(j, i)
	// 		}
	// 		djdx.Set2(k, j, grad)
	// 	}
	// }

	ParallelFor(batchSize, func(kStart, kEnd int) {
		for k := kStart; k < kEnd; k++ {
			for j := 0; j < inputSize; j++ {
				grad := denseDot3(
					djda.V[k*outputSize:k*outputSize+outputSize],
					dadz.V[k*outputSize:k*outputSize+outputSize],
					wT.V[j*outputSize:j*outputSize+outputSize],
				)
				djdx.Set2(k, j, grad)
			}
		}
	})
}
