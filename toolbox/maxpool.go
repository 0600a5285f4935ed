package toolbox

import "fmt"

// MaxPool2D takes the maximum over non-overlapping PoolH x PoolW windows of
// channels-last inputs.  Trailing rows/columns that do not fill a window are
// dropped.
type MaxPool2D struct {
	Height, Width, Channels int
	PoolH, PoolW            int

	a      *AF32
	argmax []int32 // per output element, the offset of the max within the sample's input
	djdx   *AF32
}

var _ Layer = (*MaxPool2D)(nil)

func MakeMaxPool2D(inputShape []int, poolH, poolW int) *MaxPool2D {
	if len(inputShape) != 3 {
		panic(fmt.Sprintf("maxpool2d: input shape must be (height, width, channels), got %v", inputShape))
	}
	if poolH <= 0 || poolW <= 0 || inputShape[0] < poolH || inputShape[1] < poolW {
		panic(fmt.Sprintf("maxpool2d: pool %dx%d invalid for input %v", poolH, poolW, inputShape))
	}
	return &MaxPool2D{
		Height:   inputShape[0],
		Width:    inputShape[1],
		Channels: inputShape[2],
		PoolH:    poolH,
		PoolW:    poolW,
	}
}

func (lay *MaxPool2D) Name() string {
	return "max_pooling2d"
}

func (lay *MaxPool2D) InputShape() []int {
	return []int{lay.Height, lay.Width, lay.Channels}
}

func (lay *MaxPool2D) OutputShape() []int {
	return []int{lay.Height / lay.PoolH, lay.Width / lay.PoolW, lay.Channels}
}

func (lay *MaxPool2D) Params() []*Param {
	return nil
}

// x (input) Shape (batchSize, Height, Width, Channels)
func (lay *MaxPool2D) Forward(x *AF32, training bool) *AF32 {
	checkBatchShape("maxpool2d", x, lay.InputShape())

	batchSize := x.Shape[0]
	outH, outW := lay.Height/lay.PoolH, lay.Width/lay.PoolW
	c := lay.Channels
	inSize := lay.Height * lay.Width * c
	outSize := outH * outW * c

	lay.a = ensureAF32(lay.a, batchSize, outH, outW, c)
	if len(lay.argmax) != batchSize*outSize {
		lay.argmax = make([]int32, batchSize*outSize)
	}

	ParallelFor(batchSize, func(kStart, kEnd int) {
		for k := kStart; k < kEnd; k++ {
			in := x.V[k*inSize : (k+1)*inSize]
			out := lay.a.V[k*outSize : (k+1)*outSize]
			argmax := lay.argmax[k*outSize : (k+1)*outSize]
			for oy := 0; oy < outH; oy++ {
				for ox := 0; ox < outW; ox++ {
					for ch := 0; ch < c; ch++ {
						best := -1
						for py := 0; py < lay.PoolH; py++ {
							for px := 0; px < lay.PoolW; px++ {
								idx := ((oy*lay.PoolH+py)*lay.Width+ox*lay.PoolW+px)*c + ch
								if best < 0 || in[idx] > in[best] {
									best = idx
								}
							}
						}
						o := (oy*outW+ox)*c + ch
						out[o] = in[best]
						argmax[o] = int32(best)
					}
				}
			}
		}
	})

	return lay.a
}

// djda (input) Shape (batchSize, Height/PoolH, Width/PoolW, Channels)
func (lay *MaxPool2D) Backward(djda *AF32) *AF32 {
	checkBatchShape("maxpool2d", djda, lay.OutputShape())

	batchSize := djda.Shape[0]
	inSize := lay.Height * lay.Width * lay.Channels
	outSize := len(djda.V) / batchSize
	if len(lay.argmax) != batchSize*outSize {
		panic("maxpool2d: Backward called without a matching Forward")
	}

	lay.djdx = ensureAF32(lay.djdx, batchSize, lay.Height, lay.Width, lay.Channels)
	clear(lay.djdx.V)

	for k := 0; k < batchSize; k++ {
		djdx := lay.djdx.V[k*inSize : (k+1)*inSize]
		for o := 0; o < outSize; o++ {
			djdx[lay.argmax[k*outSize+o]] += djda.V[k*outSize+o]
		}
	}

	return lay.djdx
}
