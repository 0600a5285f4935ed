//go:build goexperiment.simd && amd64

package toolbox

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/chewxy/math32"
)

func TestDenseDot3SIMDAgreesWithNaive(t *testing.T) {
	r := rand.New(rand.NewSource(12345))
	for _, size := range []int{1, 4, 8, 9, 16, 50, 100} {
		x := make([]float32, size)
		y := make([]float32, size)
		z := make([]float32, size)
		for i := range size {
			x[i] = r.Float32()
			y[i] = r.Float32()
			z[i] = r.Float32()
		}
		got, want := denseDot3SIMD(x, y, z), denseDot3Naive(x, y, z)
		if math32.Abs(got-want) > 1e-3*math32.Abs(want)+1e-5 {
			t.Errorf("size=%d: got %v, want %v", size, got, want)
		}
	}
}

func BenchmarkDenseDot3(b *testing.B) {
	b.Run("impl=naive", func(b *testing.B) {
		for i := 8; i < 16; i++ {
			b.Run("size="+strconv.Itoa(2<<i), func(b *testing.B) {
				x := make([]float32, 2<<i)
				y := make([]float32, 2<<i)
				z := make([]float32, 2<<i)
				for i := range 2 << i {
					x[i] = rand.Float32()
					y[i] = rand.Float32()
					z[i] = rand.Float32()
				}
				for b.Loop() {
					_ = denseDot3Naive(x, y, z)
				}
			})
		}
	})
	b.Run("impl=simd", func(b *testing.B) {
		for i := 8; i < 16; i++ {
			b.Run("size="+strconv.Itoa(2<<i), func(b *testing.B) {
				x := make([]float32, 2<<i)
				y := make([]float32, 2<<i)
				z := make([]float32, 2<<i)
				for i := range 2 << i {
					x[i] = rand.Float32()
					y[i] = rand.Float32()
					z[i] = rand.Float32()
				}
				for b.Loop() {
					_ = denseDot3SIMD(x, y, z)
				}
			})
		}
	})
}
