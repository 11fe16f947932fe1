package charts

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/iafilius/EnergyMix/src/analysis"
)

// Ranking draws the snapshot as horizontal bars, rank 1 at the top, on a 0-100 share axis.
// Each bar is labelled with its rounded share.
func Ranking(s analysis.Snapshot, p Panel) (image.Image, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(s.Rows) == 0 {
		return nil, fmt.Errorf("%w: ranking is empty", analysis.ErrNoData)
	}
	n := len(s.Rows)
	vals := make(plotter.Values, n)
	names := make([]string, n)
	// Bars are laid out bottom-up; reverse so the leader sits on top.
	for i, r := range s.Rows {
		vals[n-1-i] = r.LowCarbonShare
		names[n-1-i] = r.Entity
	}

	pl := plot.New()
	pl.Title.Text = p.Title
	pl.Title.TextStyle.Font.Size = vg.Points(p.font(11))
	pl.X.Label.Text = p.XLabel
	pl.X.Label.TextStyle.Font.Size = vg.Points(p.font(9))
	pl.Y.Label.Text = p.YLabel
	pl.X.Tick.Label.Font.Size = vg.Points(p.font(8))
	pl.Y.Tick.Label.Font.Size = vg.Points(p.font(8))
	pl.X.Min, pl.X.Max = 0, 100

	heightPt := float64(p.Height) / p.DPI * 72
	barWidth := vg.Points(math.Max(1, heightPt*0.55/float64(n)))
	bars, err := plotter.NewBarChart(vals, barWidth)
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = rgba(paletteColor(0))
	bars.LineStyle.Width = vg.Length(0)
	pl.Add(bars)
	pl.NominalY(names...)

	xys := make([]plotter.XY, n)
	labels := make([]string, n)
	for i, v := range vals {
		xys[i] = plotter.XY{X: math.Min(v+1, 93), Y: float64(i)}
		labels[i] = fmt.Sprintf("%.0f%%", v)
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Font.Size = vg.Points(p.font(7))
		lbl.TextStyle[i].YAlign = draw.YCenter
	}
	pl.Add(lbl)

	return drawPlot(pl, p), nil
}

// drawPlot rasterises a gonum plot to exactly p.Width x p.Height pixels at p.DPI.
func drawPlot(pl *plot.Plot, p Panel) image.Image {
	dpi := math.Max(1, math.Round(p.DPI))
	w := vg.Length(float64(p.Width)/dpi) * vg.Inch
	h := vg.Length(float64(p.Height)/dpi) * vg.Inch
	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(int(dpi)),
		vgimg.UseBackgroundColor(color.White),
	)
	pl.Draw(draw.New(c))
	return c.Image()
}
