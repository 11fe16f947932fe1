package charts

import (
	"fmt"
	"image"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/EnergyMix/src/analysis"
)

// ShareLabels names the two share lines.
type ShareLabels struct {
	Fossil    string
	LowCarbon string
}

// ShareLines draws fossil and low-carbon shares over time on a 0-100 axis with a dashed 50% line.
// Years with an undefined share break the lines.
func ShareLines(w analysis.World, p Panel, l ShareLabels) (image.Image, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(w.Rows) == 0 {
		return nil, fmt.Errorf("%w: world series is empty", analysis.ErrNoData)
	}
	xs := make([]float64, len(w.Rows))
	fossil := make([]float64, len(w.Rows))
	low := make([]float64, len(w.Rows))
	for i, r := range w.Rows {
		xs[i] = float64(r.Year)
		fossil[i] = r.FossilShare
		low[i] = r.LowCarbonShare
	}
	first, last := w.Span()
	xr := yearRange(first, last)
	ch := newChart(p)
	ch.XAxis.Range = xr
	ch.XAxis.Ticks = yearTicks(first, last, 8)
	ch.YAxis.Range, ch.YAxis.Ticks = percentRange(0, 100, false)

	half := chart.ContinuousSeries{
		XValues: []float64{xr.Min, xr.Max},
		YValues: []float64{50, 50},
		Style: chart.Style{
			StrokeColor:     refLineColor,
			StrokeWidth:     p.pt(1),
			StrokeDashArray: []float64{p.pt(4), p.pt(3)},
		},
	}
	ch.Series = append(ch.Series, half)

	fs := lineSeries(l.Fossil, xs, fossil, chart.Style{StrokeColor: paletteColor(0), StrokeWidth: p.pt(2)})
	ls := lineSeries(l.LowCarbon, xs, low, chart.Style{StrokeColor: paletteColor(1), StrokeWidth: p.pt(2)})
	ch.Series = append(ch.Series, fs...)
	ch.Series = append(ch.Series, ls...)

	if !p.NoLegend {
		var named []chart.Series
		if len(fs) > 0 {
			named = append(named, fs[0])
		}
		if len(ls) > 0 {
			named = append(named, ls[0])
		}
		if len(named) > 0 {
			ch.Elements = []chart.Renderable{legend(p, named...)}
		}
	}
	return renderChart(ch)
}

// ShareFacet is one small-multiple panel: an entity's low-carbon share on shared axes.
type ShareFacet struct {
	Rows   []analysis.Row
	XRange *chart.ContinuousRange
	YRange *chart.ContinuousRange
	XTicks []chart.Tick
	YTicks []chart.Tick
}

// LowCarbonFacet draws one entity's low-carbon share line. Tick labels are hidden when the
// panel has no axis name, so inner panels of a grid stay uncluttered.
func LowCarbonFacet(f ShareFacet, p Panel) (image.Image, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	xs := make([]float64, len(f.Rows))
	ys := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		xs[i] = float64(r.Year)
		ys[i] = r.LowCarbonShare
	}
	ch := newChart(p)
	ch.XAxis.Range, ch.XAxis.Ticks = f.XRange, f.XTicks
	ch.YAxis.Range, ch.YAxis.Ticks = f.YRange, f.YTicks
	if p.XLabel == "" {
		ch.XAxis.Ticks = unlabeled(f.XTicks)
	}
	if p.YLabel == "" {
		ch.YAxis.Ticks = unlabeled(f.YTicks)
	}
	ch.Series = lineSeries("", xs, ys, chart.Style{StrokeColor: paletteColor(0), StrokeWidth: p.pt(2)})
	if len(ch.Series) == 0 {
		ch.Series = []chart.Series{frameSeries(f.XRange, f.YRange)}
	}
	return renderChart(ch)
}

func unlabeled(ticks []chart.Tick) []chart.Tick {
	out := make([]chart.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = chart.Tick{Value: t.Value}
	}
	return out
}
