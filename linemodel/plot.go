package linemodel

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func lossPoints(losses []float64) plotter.XYs {
	pts := make(plotter.XYs, len(losses))
	for i, l := range losses {
		pts[i].X = float64(i + 1)
		pts[i].Y = l
	}
	return pts
}

// PlotHistory draws the per-epoch training and validation loss to path.  The
// image format follows the file extension.
func PlotHistory(h *History, path string) error {
	if len(h.Loss) == 0 {
		return fmt.Errorf("history is empty")
	}

	p := plot.New()
	p.Title.Text = "Training history"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "mean absolute error"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(lossPoints(h.Loss))
	if err != nil {
		return fmt.Errorf("while plotting training loss: %w", err)
	}
	line.LineStyle.Color = color.RGBA{B: 255, A: 255}
	points.GlyphStyle.Color = line.LineStyle.Color
	p.Add(line, points)
	p.Legend.Add("training", line, points)

	if len(h.ValLoss) > 0 {
		line, points, err := plotter.NewLinePoints(lossPoints(h.ValLoss))
		if err != nil {
			return fmt.Errorf("while plotting validation loss: %w", err)
		}
		line.LineStyle.Color = color.RGBA{R: 255, A: 255}
		points.GlyphStyle.Color = line.LineStyle.Color
		points.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(line, points)
		p.Legend.Add("validation", line, points)
	}

	if err := p.Save(15*vg.Centimeter, 10*vg.Centimeter, path); err != nil {
		return fmt.Errorf("while saving history plot: %w", err)
	}
	return nil
}
