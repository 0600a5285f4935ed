package linedata

import (
	"fmt"
	"math/rand"
	"path/filepath"
)

// Resolution is the side length, in pixels, of every line image.  Endpoint
// coordinates lie in [0, Resolution).
const Resolution = 64

// LineWidth is the stroke width in pixels.  A 1.5pt line at 100 dpi.
const LineWidth = 1.5 * 100 / 72

// Line is one segment from (X0, Y0) to (X1, Y1) in plot coordinates: x grows
// to the right and y grows upwards.
type Line struct {
	X0, Y0, X1, Y1 int
}

// RandomLine draws four independent coordinates uniformly from [0, Resolution).
func RandomLine(r *rand.Rand) Line {
	return Line{
		X0: r.Intn(Resolution),
		Y0: r.Intn(Resolution),
		X1: r.Intn(Resolution),
		Y1: r.Intn(Resolution),
	}
}

// Coords returns the label vector (x_start, y_start, x_end, y_end).
func (l Line) Coords() [4]int {
	return [4]int{l.X0, l.Y0, l.X1, l.Y1}
}

func (l Line) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", l.X0, l.Y0, l.X1, l.Y1)
}

// LabelsPath is the coordinate archive written alongside generated images.
func LabelsPath(dir string) string {
	return filepath.Join(dir, "coords.npz")
}

// ImagePath is the file holding the i-th generated image.
func ImagePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("line%d.png", i))
}
