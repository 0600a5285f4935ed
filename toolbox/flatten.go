package toolbox

import "slices"

// Flatten collapses the per-sample shape into a vector without copying.
type Flatten struct {
	inputShape []int
	size       int
}

var _ Layer = (*Flatten)(nil)

func MakeFlatten(inputShape []int) *Flatten {
	size := 1
	for _, s := range inputShape {
		size *= s
	}
	return &Flatten{
		inputShape: slices.Clone(inputShape),
		size:       size,
	}
}

func (lay *Flatten) Name() string {
	return "flatten"
}

func (lay *Flatten) InputShape() []int {
	return slices.Clone(lay.inputShape)
}

func (lay *Flatten) OutputShape() []int {
	return []int{lay.size}
}

func (lay *Flatten) Params() []*Param {
	return nil
}

func (lay *Flatten) Forward(x *AF32, training bool) *AF32 {
	checkBatchShape("flatten", x, lay.inputShape)
	return AF32Reshape(x, x.Shape[0], lay.size)
}

func (lay *Flatten) Backward(djda *AF32) *AF32 {
	return AF32Reshape(djda, append([]int{djda.Shape[0]}, lay.inputShape...)...)
}
