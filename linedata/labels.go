package linedata

import (
	"fmt"
	"math"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

const labelsEntry = "coords.npy"

// WriteLabels stores the coordinates as an (n, 4) float64 array in an npz
// archive so a generated directory can be trained on later.
func WriteLabels(path string, lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("no lines to write")
	}

	m := mat.NewDense(len(lines), 4, nil)
	for i, l := range lines {
		for j, c := range l.Coords() {
			m.Set(i, j, float64(c))
		}
	}

	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("while creating label archive: %w", err)
	}
	if err := w.Write(labelsEntry, m); err != nil {
		w.Close()
		return fmt.Errorf("while writing %s: %w", labelsEntry, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing label archive: %w", err)
	}

	return nil
}

// ReadLabels reads coordinates written by WriteLabels.
func ReadLabels(path string) ([]Line, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening label archive: %w", err)
	}
	defer r.Close()

	var m mat.Dense
	if err := r.Read(labelsEntry, &m); err != nil {
		return nil, fmt.Errorf("while reading %s: %w", labelsEntry, err)
	}

	rows, cols := m.Dims()
	if cols != 4 {
		return nil, fmt.Errorf("%s has %d columns, want 4", labelsEntry, cols)
	}

	lines := make([]Line, rows)
	for i := 0; i < rows; i++ {
		var c [4]int
		for j := range c {
			v := m.At(i, j)
			if v < 0 || v >= Resolution || v != math.Trunc(v) {
				return nil, fmt.Errorf("%s row %d has invalid coordinate %v", labelsEntry, i, v)
			}
			c[j] = int(v)
		}
		lines[i] = Line{X0: c[0], Y0: c[1], X1: c[2], Y1: c[3]}
	}

	return lines, nil
}
