package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jgoulah/personadash/internal/aggregate"
)

// ErrNoGroups is returned when there is nothing to draw
var ErrNoGroups = errors.New("no groups to plot")

var boxFill = color.RGBA{R: 15, G: 98, B: 254, A: 90}

// WriteBoxPlotPNG renders one box per group, in group order, as a PNG image
func WriteBoxPlotPNG(w io.Writer, title string, groups []aggregate.Group) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = consumptionAxisTitle

	names := make([]string, len(groups))
	for i, g := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return fmt.Errorf("building box for %s: %w", g.Key, err)
		}
		box.FillColor = boxFill
		p.Add(box)
		names[i] = g.Key
	}
	p.NominalX(names...)
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("preparing png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}
