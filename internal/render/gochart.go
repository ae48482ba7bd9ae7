package render

import (
	"fmt"
	"io"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// pixelsPerInch converts the configured plot size to go-chart pixels.
const pixelsPerInch = 96

var (
	chartScatterColor = drawing.ColorBlue.WithAlpha(128)
	chartFitColor     = drawing.Color{R: 0, G: 0, B: 139, A: 255}
)

// GoChart renders with github.com/wcharczuk/go-chart/v2.
type GoChart struct {
	format string
	width  int
	height int
}

// NewGoChart creates a go-chart renderer for "png" or "svg" output.
func NewGoChart(format string, widthIn, heightIn float64) *GoChart {
	return &GoChart{
		format: format,
		width:  int(widthIn * pixelsPerInch),
		height: int(heightIn * pixelsPerInch),
	}
}

func (g *GoChart) ContentType() string { return contentType(g.format) }

func (g *GoChart) Render(w io.Writer, samples []domain.Sample, fit domain.Fit) error {
	graph, err := g.build(samples, fit)
	if err != nil {
		return err
	}
	provider := chart.PNG
	if g.format == "svg" {
		provider = chart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render %s: %w", g.format, err)
	}
	return nil
}

func (g *GoChart) build(samples []domain.Sample, fit domain.Fit) (chart.Chart, error) {
	xs, ys := domain.FitPoints(samples)
	if len(xs) == 0 {
		return chart.Chart{}, ErrNoPoints
	}
	ext := pointsExtent(xs, ys)

	graph := chart.Chart{
		Title:      Title,
		Width:      g.width,
		Height:     g.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: XLabel},
		YAxis: chart.YAxis{
			Name:           YLabel,
			ValueFormatter: scientific,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    ScatterLegend,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    chartScatterColor,
				},
			},
			chart.ContinuousSeries{
				Name:    RegressionName,
				XValues: []float64{ext.minX, ext.maxX},
				YValues: []float64{fit.At(ext.minX), fit.At(ext.maxX)},
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chartFitColor,
				},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{XValue: ext.minX, YValue: ext.maxY, Label: strings.ReplaceAll(Equation(fit), "\n", "  ")},
				},
			},
		},
	}
	// go-chart never returns from Render on a zero-width axis range.
	if ext.minX == ext.maxX {
		lo, hi := padRange(ext.minX, ext.maxX)
		graph.XAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
	}
	if ext.minY == ext.maxY {
		lo, hi := padRange(ext.minY, ext.maxY)
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo, Max: hi}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph, nil
}

func scientific(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.3e", f)
	}
	return ""
}
