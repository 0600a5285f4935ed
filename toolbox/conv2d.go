package toolbox

import (
	"fmt"
	"math/rand"
	"sync"
)

// Conv2D is a 2D convolution with "same" padding and stride 1 over
// channels-last inputs.  It runs as im2col followed by one dot product per
// (pixel, filter) pair.
type Conv2D struct {
	Activation ActivationType

	W *Param // Shape (Filters, KernelH*KernelW*Channels)
	B *Param // Shape (Filters)

	Height, Width, Channels int
	Filters                 int
	KernelH, KernelW        int

	// Saved by Forward for Backward.
	patches *AF32 // Shape (batchSize, Height*Width, KernelH*KernelW*Channels)
	a, dadz *AF32 // Shape (batchSize, Height, Width, Filters)

	djdx *AF32
	mu   sync.Mutex
}

var _ Layer = (*Conv2D)(nil)

// MakeConv2D builds a convolution over inputs of shape (height, width, channels).
func MakeConv2D(activation ActivationType, inputShape []int, filters, kernelH, kernelW int, r *rand.Rand) *Conv2D {
	if len(inputShape) != 3 {
		panic(fmt.Sprintf("conv2d: input shape must be (height, width, channels), got %v", inputShape))
	}
	if kernelH <= 0 || kernelW <= 0 || filters <= 0 {
		panic(fmt.Sprintf("conv2d: invalid filters=%d kernel=%dx%d", filters, kernelH, kernelW))
	}

	lay := &Conv2D{
		Activation: activation,
		Height:     inputShape[0],
		Width:      inputShape[1],
		Channels:   inputShape[2],
		Filters:    filters,
		KernelH:    kernelH,
		KernelW:    kernelW,
	}
	patchSize := lay.patchSize()
	lay.W = makeParam("kernel", filters, patchSize)
	lay.B = makeParam("biases", filters)

	glorotUniform(lay.W.Value.V, patchSize, kernelH*kernelW*filters, r)

	return lay
}

func (lay *Conv2D) Name() string {
	return "conv2d"
}

func (lay *Conv2D) InputShape() []int {
	return []int{lay.Height, lay.Width, lay.Channels}
}

func (lay *Conv2D) OutputShape() []int {
	return []int{lay.Height, lay.Width, lay.Filters}
}

func (lay *Conv2D) Params() []*Param {
	return []*Param{lay.W, lay.B}
}

func (lay *Conv2D) patchSize() int {
	return lay.KernelH * lay.KernelW * lay.Channels
}

// Same padding with stride 1 puts the extra row/column (for even kernels)
// at the bottom/right.
func (lay *Conv2D) padding() (top, left int) {
	return (lay.KernelH - 1) / 2, (lay.KernelW - 1) / 2
}

// im2col writes the receptive field of every output pixel of sample x into
// patches.  Out-of-bounds positions are zero.
//
// x (input) Shape (Height*Width*Channels)
// patches (output) Shape (Height*Width*patchSize)
func (lay *Conv2D) im2col(x, patches []float32) {
	padTop, padLeft := lay.padding()
	c := lay.Channels
	patchSize := lay.patchSize()

	for y := 0; y < lay.Height; y++ {
		for xx := 0; xx < lay.Width; xx++ {
			patch := patches[(y*lay.Width+xx)*patchSize : (y*lay.Width+xx+1)*patchSize]
			for dy := 0; dy < lay.KernelH; dy++ {
				sy := y + dy - padTop
				for dx := 0; dx < lay.KernelW; dx++ {
					sx := xx + dx - padLeft
					dst := patch[(dy*lay.KernelW+dx)*c : (dy*lay.KernelW+dx+1)*c]
					if sy < 0 || sy >= lay.Height || sx < 0 || sx >= lay.Width {
						clear(dst)
						continue
					}
					copy(dst, x[(sy*lay.Width+sx)*c:(sy*lay.Width+sx+1)*c])
				}
			}
		}
	}
}

// col2im is the adjoint of im2col: it accumulates a patch gradient back
// into the input gradient of the pixel at (y, xx).
func (lay *Conv2D) col2im(dpatch []float32, y, xx int, djdx []float32) {
	padTop, padLeft := lay.padding()
	c := lay.Channels

	for dy := 0; dy < lay.KernelH; dy++ {
		sy := y + dy - padTop
		if sy < 0 || sy >= lay.Height {
			continue
		}
		for dx := 0; dx < lay.KernelW; dx++ {
			sx := xx + dx - padLeft
			if sx < 0 || sx >= lay.Width {
				continue
			}
			src := dpatch[(dy*lay.KernelW+dx)*c : (dy*lay.KernelW+dx+1)*c]
			dst := djdx[(sy*lay.Width+sx)*c : (sy*lay.Width+sx+1)*c]
			for i := range src {
				dst[i] += src[i]
			}
		}
	}
}

// Forward applies the convolution.
//
// x (input) Shape (batchSize, Height, Width, Channels)
func (lay *Conv2D) Forward(x *AF32, training bool) *AF32 {
	checkBatchShape("conv2d", x, lay.InputShape())

	batchSize := x.Shape[0]
	pixels := lay.Height * lay.Width
	patchSize := lay.patchSize()
	filters := lay.Filters
	inSize := pixels * lay.Channels
	outSize := pixels * filters

	lay.patches = ensureAF32(lay.patches, batchSize, pixels, patchSize)
	lay.a = ensureAF32(lay.a, batchSize, lay.Height, lay.Width, filters)
	if training {
		lay.dadz = ensureAF32(lay.dadz, batchSize, lay.Height, lay.Width, filters)
	}

	w := lay.W.Value
	b := lay.B.Value

	ParallelFor(batchSize, func(kStart, kEnd int) {
		for k := kStart; k < kEnd; k++ {
			patches := lay.patches.V[k*pixels*patchSize : (k+1)*pixels*patchSize]
			lay.im2col(x.V[k*inSize:(k+1)*inSize], patches)

			a := lay.a.V[k*outSize : (k+1)*outSize]
			for p := 0; p < pixels; p++ {
				patch := patches[p*patchSize : (p+1)*patchSize]
				for f := 0; f < filters; f++ {
					a[p*filters+f] = denseDot2(w.V[f*patchSize:(f+1)*patchSize], patch) + b.V[f]
				}
			}

			if training {
				activate(lay.Activation, a, lay.dadz.V[k*outSize:(k+1)*outSize])
			} else {
				activate(lay.Activation, a, nil)
			}
		}
	})

	return lay.a
}

// Backward computes the kernel, bias, and input gradients.
//
// djda (input) Shape (batchSize, Height, Width, Filters)
func (lay *Conv2D) Backward(djda *AF32) *AF32 {
	if lay.dadz == nil || lay.patches == nil {
		panic("conv2d: Backward called without a training Forward")
	}
	checkBatchShape("conv2d", djda, lay.OutputShape())

	batchSize := djda.Shape[0]
	pixels := lay.Height * lay.Width
	patchSize := lay.patchSize()
	filters := lay.Filters
	inSize := pixels * lay.Channels
	outSize := pixels * filters

	lay.djdx = ensureAF32(lay.djdx, batchSize, lay.Height, lay.Width, lay.Channels)
	clear(lay.W.Grad.V)
	clear(lay.B.Grad.V)

	w := lay.W.Value

	ParallelFor(batchSize, func(kStart, kEnd int) {
		djdw := make([]float32, filters*patchSize)
		djdb := make([]float32, filters)
		dpatch := make([]float32, patchSize)

		for k := kStart; k < kEnd; k++ {
			patches := lay.patches.V[k*pixels*patchSize : (k+1)*pixels*patchSize]
			djdaK := djda.V[k*outSize : (k+1)*outSize]
			dadzK := lay.dadz.V[k*outSize : (k+1)*outSize]
			djdxK := lay.djdx.V[k*inSize : (k+1)*inSize]
			clear(djdxK)

			for p := 0; p < pixels; p++ {
				patch := patches[p*patchSize : (p+1)*patchSize]
				clear(dpatch)
				touched := false
				for f := 0; f < filters; f++ {
					g := djdaK[p*filters+f] * dadzK[p*filters+f]
					if g == 0 {
						continue
					}
					touched = true
					denseAxpy(g, patch, djdw[f*patchSize:(f+1)*patchSize])
					djdb[f] += g
					denseAxpy(g, w.V[f*patchSize:(f+1)*patchSize], dpatch)
				}
				if touched {
					lay.col2im(dpatch, p/lay.Width, p%lay.Width, djdxK)
				}
			}
		}

		lay.mu.Lock()
		defer lay.mu.Unlock()
		for i := range djdw {
			lay.W.Grad.V[i] += djdw[i]
		}
		for i := range djdb {
			lay.B.Grad.V[i] += djdb[i]
		}
	})

	return lay.djdx
}
