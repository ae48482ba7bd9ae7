package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

var (
	scatterColor = color.RGBA{B: 255, A: 128}
	fitColor     = color.RGBA{B: 139, A: 255}
)

// Gonum renders with gonum.org/v1/plot.
type Gonum struct {
	format string
	width  vg.Length
	height vg.Length
}

// NewGonum creates a gonum renderer for "png" or "svg" output.
func NewGonum(format string, widthIn, heightIn float64) *Gonum {
	return &Gonum{
		format: format,
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
	}
}

func (g *Gonum) ContentType() string { return contentType(g.format) }

func (g *Gonum) Render(w io.Writer, samples []domain.Sample, fit domain.Fit) error {
	p, err := g.build(samples, fit)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(g.width, g.height, g.format)
	if err != nil {
		return fmt.Errorf("render %s: %w", g.format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", g.format, err)
	}
	return nil
}

func (g *Gonum) build(samples []domain.Sample, fit domain.Fit) (*plot.Plot, error) {
	xs, ys := domain.FitPoints(samples)
	if len(xs) == 0 {
		return nil, ErrNoPoints
	}
	ext := pointsExtent(xs, ys)

	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)

	line, err := plotter.NewLine(plotter.XYs{
		{X: ext.minX, Y: fit.At(ext.minX)},
		{X: ext.maxX, Y: fit.At(ext.maxX)},
	})
	if err != nil {
		return nil, fmt.Errorf("fit line: %w", err)
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = fitColor

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: ext.minX, Y: ext.maxY}},
		Labels: []string{Equation(fit)},
	})
	if err != nil {
		return nil, fmt.Errorf("equation label: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = fitColor
	}

	p.Add(scatter, line, labels)
	p.Legend.Add(RegressionName, line)
	p.Legend.Add(ScatterLegend, scatter)
	p.Legend.Top = true

	return p, nil
}
