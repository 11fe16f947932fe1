package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// tab10 is the categorical palette, in cycle order.
var tab10 = []string{
	"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd",
	"8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf",
}

func paletteColor(i int) drawing.Color {
	return drawing.ColorFromHex(tab10[i%len(tab10)])
}

// rgba converts a go-chart color for use outside go-chart (gonum, image/draw).
func rgba(c drawing.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

var (
	refLineColor = drawing.Color{R: 128, G: 128, B: 128, A: 180}
	textColor    = drawing.Color{R: 33, G: 33, B: 33, A: 255}
)

// Panel describes one drawing area: its pixel size, the resolution fonts and strokes scale with,
// and the texts around the plot.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	Width  int
	Height int
	DPI    float64
	// FontScale multiplies every font size; 1 when zero.
	FontScale float64
	// NoLegend suppresses the legend.
	NoLegend bool
}

// pt converts typographic points to pixels at the panel DPI.
func (p Panel) pt(v float64) float64 { return v * p.DPI / 72 }

func (p Panel) ipt(v float64) int { return int(math.Round(p.pt(v))) }

func (p Panel) font(size float64) float64 {
	if p.FontScale > 0 {
		return size * p.FontScale
	}
	return size
}

func (p Panel) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid panel size %dx%d", p.Width, p.Height)
	}
	if !(p.DPI > 0) {
		return fmt.Errorf("invalid dpi %g", p.DPI)
	}
	return nil
}

// newChart returns a go-chart skeleton sized and padded for p. Axis names only get room when set.
func newChart(p Panel) chart.Chart {
	bottom := p.ipt(6)
	if p.XLabel != "" {
		bottom = p.ipt(20)
	}
	left := p.ipt(6)
	if p.YLabel != "" {
		left = p.ipt(10)
	}
	return chart.Chart{
		Title:      p.Title,
		TitleStyle: chart.Style{FontSize: p.font(11), FontColor: textColor},
		Width:      p.Width,
		Height:     p.Height,
		DPI:        p.DPI,
		Background: chart.Style{Padding: chart.Box{Top: p.ipt(28), Left: left, Right: p.ipt(12), Bottom: bottom}},
		XAxis: chart.XAxis{
			Name:      p.XLabel,
			NameStyle: chart.Style{FontSize: p.font(9), FontColor: textColor},
			Style:     chart.Style{FontSize: p.font(8), FontColor: textColor},
		},
		YAxis: chart.YAxis{
			Name:      p.YLabel,
			NameStyle: chart.Style{FontSize: p.font(9), FontColor: textColor},
			Style:     chart.Style{FontSize: p.font(8), FontColor: textColor},
		},
	}
}

// legend draws only the given series, in the given order, in the top-left of the plot area.
func legend(p Panel, series ...chart.Series) chart.Renderable {
	shadow := &chart.Chart{Series: series}
	return chart.Legend(shadow, chart.Style{FontSize: p.font(7)})
}

// renderChart rasterises ch and decodes it back into an image.
func renderChart(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", ch.Title, err)
	}
	return img, nil
}

// segments splits (xs, ys) into runs without NaN so undefined points show as gaps.
// A run of one point is kept; it is drawn as a dot.
func segments(xs, ys []float64) [][2][]float64 {
	var out [][2][]float64
	start := -1
	for i := 0; i <= len(ys); i++ {
		ok := i < len(ys) && !math.IsNaN(ys[i]) && !math.IsInf(ys[i], 0)
		switch {
		case ok && start < 0:
			start = i
		case !ok && start >= 0:
			out = append(out, [2][]float64{xs[start:i], ys[start:i]})
			start = -1
		}
	}
	return out
}

// lineSeries turns one logical line into go-chart series, one per NaN-free run. The first series
// carries the name so the legend lists the line once.
func lineSeries(name string, xs, ys []float64, style chart.Style) []chart.Series {
	var out []chart.Series
	for i, seg := range segments(xs, ys) {
		s := style
		if len(seg[0]) == 1 {
			s.DotWidth = math.Max(style.StrokeWidth, 1)
			s.DotColor = style.StrokeColor
		}
		n := ""
		if i == 0 {
			n = name
		}
		out = append(out, chart.ContinuousSeries{Name: n, XValues: seg[0], YValues: seg[1], Style: s})
	}
	return out
}

// frameSeries is an invisible series so a panel whose data is all undefined still renders its axes.
func frameSeries(xr, yr *chart.ContinuousRange) chart.Series {
	return chart.ContinuousSeries{
		XValues: []float64{xr.Min, xr.Max},
		YValues: []float64{yr.Min, yr.Min},
		Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
	}
}

// blank is a white placeholder image.
func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}
