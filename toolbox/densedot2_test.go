//go:build goexperiment.simd && amd64

package toolbox

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/chewxy/math32"
)

func TestDenseDot2SIMDAgreesWithNaive(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	for _, size := range []int{1, 7, 8, 31, 32, 33, 100, 288} {
		x := make([]float32, size)
		y := make([]float32, size)
		for i := range size {
			x[i] = r.Float32()
			y[i] = r.Float32()
		}
		got, want := denseDot2SIMD(x, y), denseDot2Naive(x, y)
		if math32.Abs(got-want) > 1e-3*math32.Abs(want)+1e-5 {
			t.Errorf("size=%d: got %v, want %v", size, got, want)
		}
	}
}

func BenchmarkDenseDot2(b *testing.B) {
	b.Run("impl=naive", func(b *testing.B) {
		for i := 8; i < 16; i++ {
			b.Run("size="+strconv.Itoa(2<<i), func(b *testing.B) {
				x := make([]float32, 2<<i)
				y := make([]float32, 2<<i)
				for i := range 2 << i {
					x[i] = rand.Float32()
					y[i] = rand.Float32()
				}
				for b.Loop() {
					_ = denseDot2Naive(x, y)
				}
			})
		}
	})
	b.Run("impl=simd", func(b *testing.B) {
		for i := 8; i < 16; i++ {
			b.Run("size="+strconv.Itoa(2<<i), func(b *testing.B) {
				x := make([]float32, 2<<i)
				y := make([]float32, 2<<i)
				for i := range 2 << i {
					x[i] = rand.Float32()
					y[i] = rand.Float32()
				}
				for b.Loop() {
					_ = denseDot2SIMD(x, y)
				}
			})
		}
	})
}
