package charts

import (
	"fmt"
	"image"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/types"
)

// MixArea draws generation by source as stacked areas in schema order (first source at the
// bottom) with the total as a line on top.
func MixArea(w analysis.World, s types.Schema, p Panel, totalLabel string) (image.Image, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(w.Rows) == 0 {
		return nil, fmt.Errorf("%w: world series is empty", analysis.ErrNoData)
	}
	n := len(s.Sources)
	xs := make([]float64, len(w.Rows))
	totals := make([]float64, len(w.Rows))
	// cum[k][i] is the sum of sources 0..k in year i.
	cum := make([][]float64, n)
	for k := range cum {
		cum[k] = make([]float64, len(w.Rows))
	}
	maxY := 0.0
	for i, r := range w.Rows {
		xs[i] = float64(r.Year)
		acc := 0.0
		for k := 0; k < n; k++ {
			if k < len(r.Values) {
				acc += r.Values[k]
			}
			cum[k][i] = acc
		}
		totals[i] = r.Total
		if acc > maxY {
			maxY = acc
		}
		if r.Total > maxY {
			maxY = r.Total
		}
	}

	if len(xs) == 1 {
		// A single year is drawn as a one-year wide block.
		xs = []float64{xs[0] - 0.5, xs[0] + 0.5}
		totals = []float64{totals[0], totals[0]}
		for k := range cum {
			cum[k] = []float64{cum[k][0], cum[k][0]}
		}
	}

	first, last := w.Span()
	ch := newChart(p)
	ch.XAxis.Range = yearRange(first, last)
	ch.XAxis.Ticks = yearTicks(first, last, 8)
	ch.YAxis.Range, ch.YAxis.Ticks = zeroAnchoredRange(maxY)

	// Opaque fills reach down to zero, so the tallest cumulative layer is drawn first and each
	// lower layer paints over it.
	layers := make([]chart.Series, n)
	for k := n - 1; k >= 0; k-- {
		c := paletteColor(k)
		layers[k] = chart.ContinuousSeries{
			Name:    s.Sources[k].Label,
			XValues: xs,
			YValues: cum[k],
			Style:   chart.Style{StrokeColor: c, StrokeWidth: p.pt(0.5), FillColor: c},
		}
		ch.Series = append(ch.Series, layers[k])
	}
	total := chart.ContinuousSeries{
		Name:    totalLabel,
		XValues: xs,
		YValues: totals,
		Style:   chart.Style{StrokeColor: textColor, StrokeWidth: p.pt(1.5)},
	}
	ch.Series = append(ch.Series, total)
	if !p.NoLegend {
		ch.Elements = []chart.Renderable{legend(p, append(layers, total)...)}
	}
	return renderChart(ch)
}
