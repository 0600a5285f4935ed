package toolbox

type ActivationType int

const (
	ReLU ActivationType = iota
	Linear
)

func (t ActivationType) String() string {
	switch t {
	case ReLU:
		return "relu"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// activate applies the activation function to z in place.  Activation
// gradients are stored in dadz if provided.
func activate(t ActivationType, z, dadz []float32) {
	switch t {
	case ReLU:
		if dadz != nil {
			reluActivationGradient(z, dadz)
		}
		reluActivation(z)
	case Linear:
		if dadz != nil {
			linearActivationGradient(dadz)
		}
		// linear activation is a no-op
	default:
		panic("unhandled activation function")
	}
}

// z (input/output)
func reluActivation(z []float32) {
	for i := range z {
		if z[i] < 0 {
			z[i] = 0
		}
	}
}

// reluActivationGradient computes the derivative of the ReLU function.
//
// z (input) is the pre-activation linear output of a layer.
//
// dadz (output) is the derivative of ReLU(z)
func reluActivationGradient(z, dadz []float32) {
	if len(z) != len(dadz) {
		panic("len(z) != len(dadz)")
	}

	for i := 0; i < len(z); i++ {
		if z[i] <= 0 {
			dadz[i] = 0
		} else {
			dadz[i] = 1
		}
	}
}

func linearActivationGradient(dadz []float32) {
	for i := 0; i < len(dadz); i++ {
		dadz[i] = 1
	}
}
