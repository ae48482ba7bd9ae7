// Package render draws the resistivity scatter plot with its fitted line.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// Labels shared by every renderer.
const (
	Title          = "Copper wire resistivity variation due to temperature"
	XLabel         = "ΔT [K]"
	YLabel         = "Resistivity [Ωm]"
	ScatterLegend  = "Resistivity"
	RegressionName = "Regression Line"
)

// Renderer draws samples and their fit to w.
type Renderer interface {
	Render(w io.Writer, samples []domain.Sample, fit domain.Fit) error
	ContentType() string
}

// New returns the renderer called name ("gonum" or "gochart") producing
// format ("png" or "svg") at the given size in inches.
func New(name, format string, widthIn, heightIn float64) (Renderer, error) {
	if format != "png" && format != "svg" {
		return nil, fmt.Errorf("unsupported plot format %q", format)
	}
	switch name {
	case "gonum":
		return NewGonum(format, widthIn, heightIn), nil
	case "gochart":
		return NewGoChart(format, widthIn, heightIn), nil
	default:
		return nil, fmt.Errorf("unknown plot renderer %q", name)
	}
}

// Equation is the annotation text for a fit, e.g.
// "y = 6.410e-11*x + 1.630e-08\nα= 3.928e-03 K⁻¹".
func Equation(fit domain.Fit) string {
	return fmt.Sprintf("y = %.3e*x + %.3e\nα= %.3e K⁻¹", fit.Slope, fit.Intercept, fit.Alpha)
}

// Image is a rendered plot held in memory.
type Image struct {
	ContentType string
	Data        []byte
}

// Plot returns the image for serving; ok is false when nothing was rendered.
func (i Image) Plot() (contentType string, data []byte, ok bool) {
	return i.ContentType, i.Data, len(i.Data) > 0
}

// RenderImage renders into memory.
func RenderImage(r Renderer, samples []domain.Sample, fit domain.Fit) (Image, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, samples, fit); err != nil {
		return Image{}, err
	}
	return Image{ContentType: r.ContentType(), Data: buf.Bytes()}, nil
}

func contentType(format string) string {
	if format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// extent is the bounding box of the plotted points.
type extent struct {
	minX, maxX, minY, maxY float64
}

func pointsExtent(xs, ys []float64) extent {
	e := extent{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for i := range xs {
		e.minX = math.Min(e.minX, xs[i])
		e.maxX = math.Max(e.maxX, xs[i])
		e.minY = math.Min(e.minY, ys[i])
		e.maxY = math.Max(e.maxY, ys[i])
	}
	return e
}

// padRange widens a zero-width interval by 5% of its value, or by 1 at zero.
func padRange(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Abs(lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

// ErrNoPoints is returned when no sample has finite coordinates.
var ErrNoPoints = errors.New("render: no plottable samples")
