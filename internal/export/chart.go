package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/metrics"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// Format is an image encoding supported by the chart renderer.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

func (f Format) provider() chart.RendererProvider {
	if f == SVG {
		return chart.SVG
	}
	return chart.PNG
}

var (
	colorTotal = drawing.Color{R: 0, G: 160, B: 0, A: 255}
	colorRight = chart.ColorRed
	colorLeft  = chart.ColorBlue
	colorDrive = drawing.Color{R: 255, G: 165, B: 0, A: 255}
)

func line(name string, x, y dynamo.Series, c drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: x,
		YValues: y,
		Style:   chart.Style{StrokeColor: c, StrokeWidth: 2.0},
	}
}

// VolumeChart plots the lung volumes of res against time.
func VolumeChart(res *experiment.Result, f Format, w io.Writer) error {
	graph := chart.Chart{
		Title:  "Volume",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		XAxis:  chart.XAxis{Name: "t (s)", Style: chart.Style{FontSize: 10.0}},
		YAxis:  chart.YAxis{Name: "V (L)", Style: chart.Style{FontSize: 10.0}},
		Series: []chart.Series{
			line("V total", res.Times, res.VTotal, colorTotal),
			line("V right", res.Times, res.VD, colorRight),
			line("V left", res.Times, res.VE, colorLeft),
			line("V in", res.Times, res.VIn, colorDrive),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render volume chart: %w", err)
	}
	return nil
}

// PressureChart plots the single-compartment and two-compartment pressures.
func PressureChart(res *experiment.Result, f Format, w io.Writer) error {
	series := []chart.Series{line("P single", res.Times, res.PSingle, colorDrive)}
	if res.Params.Mode == experiment.Algebraic {
		series = append(series, line("P total", res.Times, res.PTotal, colorTotal))
	}

	graph := chart.Chart{
		Title:  "Pressure",
		Width:  DefaultWidth,
		Height: DefaultHeight,
		XAxis:  chart.XAxis{Name: "t (s)", Style: chart.Style{FontSize: 10.0}},
		YAxis:  chart.YAxis{Name: "P (cmH2O)", Style: chart.Style{FontSize: 10.0}},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render pressure chart: %w", err)
	}
	return nil
}

// PVChart plots the pressure-volume loops of res.
func PVChart(res *experiment.Result, f Format, w io.Writer) error {
	loops := metrics.PressureVolume(res)

	graph := chart.Chart{
		Title:  "Pressure-Volume",
		Width:  DefaultHeight * 2,
		Height: DefaultHeight * 2,
		XAxis:  chart.XAxis{Name: "V (L)", Style: chart.Style{FontSize: 10.0}},
		YAxis:  chart.YAxis{Name: "P (cmH2O)", Style: chart.Style{FontSize: 10.0}},
		Series: []chart.Series{
			line("single", loops.Single.Volumes(), loops.Single.Pressures(), colorDrive),
			line("total", loops.Total.Volumes(), loops.Total.Pressures(), colorTotal),
			line("right", loops.Right.Volumes(), loops.Right.Pressures(), colorRight),
			line("left", loops.Left.Volumes(), loops.Left.Pressures(), colorLeft),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render pressure-volume chart: %w", err)
	}
	return nil
}
