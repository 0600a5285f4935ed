package linedata

import (
	"fmt"
	"image"
	"log"
	"math/rand"

	"github.com/gogpu/gg"
)

// canvasPoint maps plot coordinates onto the canvas, where y grows downwards.
// The axis limits [0, Resolution] cover the whole canvas.
func canvasPoint(x, y int) (float64, float64) {
	return float64(x), float64(Resolution - y)
}

func draw(l Line) (*gg.Context, error) {
	dc := gg.NewContext(Resolution, Resolution)
	dc.ClearWithColor(gg.White)
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(LineWidth)
	dc.SetLineCap(gg.LineCapRound)

	x0, y0 := canvasPoint(l.X0, l.Y0)
	x1, y1 := canvasPoint(l.X1, l.Y1)

	// A degenerate segment strokes to nothing; draw its round cap directly.
	if x0 == x1 && y0 == y1 {
		dc.DrawCircle(x0, y0, LineWidth/2)
		if err := dc.Fill(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("while filling point %v: %w", l, err)
		}
		return dc, nil
	}

	dc.DrawLine(x0, y0, x1, y1)
	if err := dc.Stroke(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("while stroking line %v: %w", l, err)
	}
	return dc, nil
}

// Render rasterizes l onto a white Resolution x Resolution canvas.
func Render(l Line) (image.Image, error) {
	dc, err := draw(l)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

// Synthesize draws n random lines and writes them to dir as line<i>.png.  The
// returned coordinates are in generation order, which is also file order.
// dir must already exist.
func Synthesize(dir string, n int, r *rand.Rand) ([]Line, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	lines := make([]Line, 0, n)
	for i := 0; i < n; i++ {
		l := RandomLine(r)

		dc, err := draw(l)
		if err != nil {
			return nil, fmt.Errorf("while rendering line %d: %w", i, err)
		}
		err = dc.SavePNG(ImagePath(dir, i))
		dc.Close()
		if err != nil {
			return nil, fmt.Errorf("while saving line %d: %w", i, err)
		}

		lines = append(lines, l)
	}

	log.Printf("Generated %d line images in %s", n, dir)
	return lines, nil
}
