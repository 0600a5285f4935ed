package linedata

import (
	"fmt"

	"github.com/ahmedtd/linecoords/toolbox"
	"github.com/disintegration/imaging"
)

// readGray decodes the image at path into row i of out.  Shape (n, Resolution, Resolution)
func readGray(path string, out *toolbox.AF32, i int) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("while opening %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != Resolution || bounds.Dy() != Resolution {
		return fmt.Errorf("%s is %dx%d, want %dx%d", path, bounds.Dx(), bounds.Dy(), Resolution, Resolution)
	}

	// Grayscale uses ITU-R 601 luma and leaves R=G=B, so any channel is the
	// intensity.
	gray := imaging.Grayscale(img)
	for y := 0; y < Resolution; y++ {
		for x := 0; x < Resolution; x++ {
			out.Set3(i, y, x, float32(gray.Pix[gray.PixOffset(x, y)]))
		}
	}
	return nil
}

// LoadImages reads line0.png .. line<n-1>.png from dir and returns them as
// grayscale intensities in [0, 255].  Shape (n, Resolution, Resolution)
func LoadImages(dir string, n int) (*toolbox.AF32, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	out := toolbox.MakeAF32(n, Resolution, Resolution)
	for i := 0; i < n; i++ {
		if err := readGray(ImagePath(dir, i), out, i); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// LoadImage reads a single image.  Shape (1, Resolution, Resolution)
func LoadImage(path string) (*toolbox.AF32, error) {
	out := toolbox.MakeAF32(1, Resolution, Resolution)
	if err := readGray(path, out, 0); err != nil {
		return nil, err
	}
	return out, nil
}
