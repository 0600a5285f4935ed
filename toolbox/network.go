package toolbox

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Network is a sequential stack of layers trained against a single loss.
type Network struct {
	LossFunction LossFunctionType
	Layers       []Layer
}

// Validate checks that each layer's input shape matches the output shape of
// the layer before it.
func (net *Network) Validate() error {
	if len(net.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}
	for l := 1; l < len(net.Layers); l++ {
		prev := net.Layers[l-1].OutputShape()
		cur := net.Layers[l].InputShape()
		if !slices.Equal(prev, cur) {
			return fmt.Errorf("layer %d (%s) expects input %v but layer %d (%s) produces %v",
				l, net.Layers[l].Name(), cur, l-1, net.Layers[l-1].Name(), prev)
		}
	}
	return nil
}

func (net *Network) InputShape() []int {
	return net.Layers[0].InputShape()
}

func (net *Network) OutputShape() []int {
	return net.Layers[len(net.Layers)-1].OutputShape()
}

// CheckInput returns an error if x is not a batch of the network's declared
// input shape.
func (net *Network) CheckInput(x *AF32) error {
	want := net.InputShape()
	if len(x.Shape) != len(want)+1 || !slices.Equal(x.Shape[1:], want) {
		return fmt.Errorf("input shape %v does not match declared per-sample shape %v", x.Shape, want)
	}
	return nil
}

func (net *Network) forward(x *AF32, training bool) *AF32 {
	a := x
	for l := 0; l < len(net.Layers); l++ {
		a = net.Layers[l].Forward(a, training)
	}
	return a
}

func (net *Network) backward(djda *AF32) {
	for l := len(net.Layers) - 1; l >= 0; l-- {
		djda = net.Layers[l].Backward(djda)
	}
}

// Apply runs inference on x.  Shape (batchSize, InputShape()...)
func (net *Network) Apply(x *AF32) *AF32 {
	return AF32Clone(net.forward(x, false))
}

// Predict runs inference on x in batches of at most batchSize samples.
func (net *Network) Predict(x *AF32, batchSize int) *AF32 {
	n := x.Shape[0]
	out := MakeAF32(append([]int{n}, net.OutputShape()...)...)
	stride := out.RowSize()

	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		pred := net.forward(AF32Rows(x, start, end), false)
		copy(out.V[start*stride:end*stride], pred.V)
	}

	return out
}

// ys is the ground truth output.  Shape (batchSize, outputSize)
// predictions is the network output.  Shape (batchSize, outputSize)
// totalSamples is the denominator of the mean, so batch losses can be summed.
func (net *Network) Loss(ys, predictions *AF32, totalSamples int) float32 {
	switch net.LossFunction {
	case MeanAbsoluteError:
		return MeanAbsoluteErrorLoss(ys, predictions, totalSamples)
	case MeanSquaredError:
		return MeanSquaredErrorLoss(ys, predictions, totalSamples)
	default:
		panic("unimplemented loss function type")
	}
}

func (net *Network) lossGradient(ys, predictions, djda *AF32) {
	switch net.LossFunction {
	case MeanAbsoluteError:
		MeanAbsoluteErrorLossGradient(ys, predictions, djda)
	case MeanSquaredError:
		MeanSquaredErrorLossGradient(ys, predictions, djda)
	default:
		panic("unimplemented loss function type")
	}
}

// ParamName is the checkpoint key of param p of layer l.
func ParamName(l int, p *Param) string {
	return fmt.Sprintf("net.%d.%s", l, p.Name)
}

func (net *Network) Params() []*Param {
	var params []*Param
	for l := 0; l < len(net.Layers); l++ {
		params = append(params, net.Layers[l].Params()...)
	}
	return params
}

func (net *Network) LoadTensors(tensors map[string]*AF32) error {
	for l := 0; l < len(net.Layers); l++ {
		for _, p := range net.Layers[l].Params() {
			key := ParamName(l, p)
			tensor, ok := tensors[key]
			if !ok {
				return fmt.Errorf("no entry for %s", key)
			}
			if !slices.Equal(tensor.Shape, p.Value.Shape) {
				return fmt.Errorf("wrong shape for %s; got %v want %v", key, tensor.Shape, p.Value.Shape)
			}
			copy(p.Value.V, tensor.V)
		}
	}

	return nil
}

func (net *Network) DumpTensors(tensors map[string]*AF32) {
	for l := 0; l < len(net.Layers); l++ {
		for _, p := range net.Layers[l].Params() {
			tensors[ParamName(l, p)] = p.Value
		}
	}
}

// Summary writes a per-layer table of output shapes and parameter counts.
func (net *Network) Summary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Layer\tOutput Shape\tParam #")

	total := 0
	for l, lay := range net.Layers {
		count := 0
		for _, p := range lay.Params() {
			count += len(p.Value.V)
		}
		total += count
		fmt.Fprintf(tw, "%s_%d\t%s\t%d\n", lay.Name(), l, formatBatchShape(lay.OutputShape()), count)
	}
	fmt.Fprintf(tw, "Total params: %d\t\t\n", total)

	return tw.Flush()
}

// formatBatchShape renders a per-sample shape with an unknown batch
// dimension, e.g. (None, 32, 32, 64).
func formatBatchShape(shape []int) string {
	parts := []string{"None"}
	for _, s := range shape {
		parts = append(parts, strconv.Itoa(s))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
