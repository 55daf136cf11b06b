package presenter

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// axis titles for both renderers
const (
	distanceAxis  = "Distance (m)"
	elevationAxis = "Elevation (m)"
)

var (
	lineColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	fillColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x40}
)

// Render writes a self contained HTML page with an interactive area chart
// of the profile, with the details as the subtitle.
func (c *Chart) Render(w io.Writer) error {
	samples := c.Samples()
	details := c.Details()

	data := make([]opts.LineData, 0, len(samples))
	for _, s := range samples {
		data = append(data, opts.LineData{Value: []interface{}{s.Distance, s.Elevation}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title(), Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: c.Title(), Subtitle: details}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: distanceAxis, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: elevationAxis, NameLocation: "middle", NameGap: 45}),
	)

	line.AddSeries("elevation", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("presenter: render chart: %w", err)
	}

	return nil
}

// RenderPNG writes a static image of the chart, width and height are in pixels.
func (c *Chart) RenderPNG(w io.Writer, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("presenter: invalid image size %dx%d", width, height)
	}

	samples := c.Samples()

	p := plot.New()
	p.Title.Text = c.Title()
	p.X.Label.Text = distanceAxis
	p.Y.Label.Text = elevationAxis
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		pts = append(pts, plotter.XY{X: s.Distance, Y: s.Elevation})
	}

	if len(pts) > 0 {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("presenter: line: %w", err)
		}
		l.Width = vg.Points(1.5)
		l.Color = lineColor
		l.FillColor = fillColor
		p.Add(l)
	}

	// vg lengths are in points, the png canvas is 96 dpi
	wt, err := p.WriterTo(vg.Length(width)*vg.Inch/96, vg.Length(height)*vg.Inch/96, "png")
	if err != nil {
		return fmt.Errorf("presenter: png: %w", err)
	}

	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("presenter: png: %w", err)
	}

	return nil
}
