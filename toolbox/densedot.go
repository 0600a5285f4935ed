package toolbox

// The dot kernels used by the layers.  Builds with GOEXPERIMENT=simd on amd64
// swap in vectorized versions at init when the CPU supports them.
var (
	denseDot2 = denseDot2Naive
	denseDot3 = denseDot3Naive
)

func denseDot2Naive(x []float32, y []float32) float32 {
	if len(x) != len(y) {
		panic("mismatched length")
	}
	var sum float32
	for i := range len(x) {
		sum += x[i] * y[i]
	}
	return sum
}

func denseDot3Naive(x, y, z []float32) float32 {
	if len(x) != len(y) || len(x) != len(z) {
		panic("all input slices must have the same length")
	}
	var sum float32
	for i := range len(x) {
		sum += x[i] * y[i] * z[i]
	}
	return sum
}

// denseAxpy computes y += alpha*x.
func denseAxpy(alpha float32, x, y []float32) {
	if len(x) != len(y) {
		panic("mismatched length")
	}
	for i := range len(x) {
		y[i] += alpha * x[i]
	}
}
