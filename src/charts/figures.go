package charts

import (
	"fmt"
	"image"
	"math"

	"github.com/iafilius/EnergyMix/src/analysis"
)

// Figure sizes in inches.
var (
	SizeWorldMix    = Size{W: 9, H: 5}
	SizeWorldShares = Size{W: 7, H: 4}
	SizeFacet       = Size{W: 5, H: 3.5}
	SizeRanking     = Size{W: 7, H: 5}
	SizeDashboard   = Size{W: 10, H: 8}
)

// facetTitleBand is the strip above the small-multiples grid that holds the suptitle.
const facetTitleBand = 0.5

// scope names the world entity in titles.
func scope(w analysis.World) string {
	if w.Entity == "World" || w.Entity == "" {
		return "Global"
	}
	return w.Entity
}

func panelFor(s Size, dpi float64) Panel {
	w, h := s.Pixels(dpi)
	return Panel{Width: w, Height: h, DPI: dpi}
}

// WorldMixFigure is the stacked generation mix of the world entity.
func WorldMixFigure(v *analysis.Views, dpi float64) (image.Image, error) {
	first, last := v.World.Span()
	p := panelFor(SizeWorldMix, dpi)
	p.Title = fmt.Sprintf("%s Electricity Generation Mix by Source (%d–%d)", scope(v.World), first, last)
	p.XLabel = "Year"
	p.YLabel = "Electricity generation (TWh)"
	return MixArea(v.World, v.Schema, p, "Total generation (TWh)")
}

// WorldSharesFigure is the fossil vs low-carbon share over time.
func WorldSharesFigure(v *analysis.Views, dpi float64) (image.Image, error) {
	p := panelFor(SizeWorldShares, dpi)
	p.Title = fmt.Sprintf("Fossil vs Low-carbon Share of %s Electricity", scope(v.World))
	p.XLabel = "Year"
	p.YLabel = "Share of total generation (%)"
	return ShareLines(v.World, p, ShareLabels{Fossil: "Fossil fuels", LowCarbon: "Low-carbon sources"})
}

// FacetLayout returns the columns and rows of a grid of n panels wrapped at two columns.
func FacetLayout(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = 2
	if n < cols {
		cols = n
	}
	return cols, (n + cols - 1) / cols
}

// SmallMultiplesSize is the figure size for n focus entities.
func SmallMultiplesSize(n int) Size {
	cols, rows := FacetLayout(n)
	return Size{W: float64(cols) * SizeFacet.W, H: facetTitleBand + float64(rows)*SizeFacet.H}
}

// SmallMultiplesFigure draws one low-carbon share panel per focus entity on shared axes.
func SmallMultiplesFigure(v *analysis.Views, dpi float64) (image.Image, error) {
	ents := v.Focus.Entities
	if len(ents) == 0 {
		return nil, fmt.Errorf("%w: no focus entities", analysis.ErrNoData)
	}
	first, last := 0, 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range v.Focus.Rows {
		if i == 0 || r.Year < first {
			first = r.Year
		}
		if i == 0 || r.Year > last {
			last = r.Year
		}
		if r.Defined() {
			lo = math.Min(lo, r.LowCarbonShare)
			hi = math.Max(hi, r.LowCarbonShare)
		}
	}
	facet := ShareFacet{XRange: yearRange(first, last), XTicks: yearTicks(first, last, 5)}
	facet.YRange, facet.YTicks = percentRange(lo, hi, !math.IsInf(lo, 0))

	cols, _ := FacetLayout(len(ents))
	fig := newFigure(SmallMultiplesSize(len(ents)), dpi)
	pw, ph := SizeFacet.Pixels(dpi)
	top := fig.px(facetTitleBand)
	for i, e := range ents {
		p := Panel{Title: e, Width: pw, Height: ph, DPI: dpi}
		// Axis names go on the outer panels only.
		if i+cols >= len(ents) {
			p.XLabel = "Year"
		}
		if i%cols == 0 {
			p.YLabel = "Low-carbon share (%)"
		}
		f := facet
		f.Rows = v.Focus.Series(e)
		img, err := LowCarbonFacet(f, p)
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", e, err)
		}
		fig.place(img, (i%cols)*pw, top+(i/cols)*ph)
	}
	if err := fig.title("Low-carbon Electricity Share for Key Economies", 13, fig.px(facetTitleBand*0.7)); err != nil {
		return nil, err
	}
	return fig.img, nil
}

// RankingFigure is the latest-year top-N bar chart.
func RankingFigure(v *analysis.Views, dpi float64) (image.Image, error) {
	p := panelFor(SizeRanking, dpi)
	p.Title = fmt.Sprintf("Top %d Electricity Systems by Low-carbon Share (%d)", len(v.Snapshot.Rows), v.Snapshot.Year)
	p.XLabel = "Low-carbon share of electricity (%)"
	return Ranking(v.Snapshot, p)
}

// Dashboard layout, inches.
const (
	dashTitleBand = 0.45
	dashTopRatio  = 2.0
	dashLowRatio  = 1.2
)

// DashboardFigure combines the mix (top, full width), the share lines (bottom left) and the
// ranking (bottom right) under one title.
func DashboardFigure(v *analysis.Views, dpi float64) (image.Image, error) {
	fig := newFigure(SizeDashboard, dpi)
	band := fig.px(dashTitleBand)
	rest := fig.height() - band
	topH := int(math.Round(float64(rest) * dashTopRatio / (dashTopRatio + dashLowRatio)))
	lowH := rest - topH
	leftW := fig.width() / 2
	rightW := fig.width() - leftW

	a := Panel{Title: "A. Global Electricity Generation Mix", YLabel: "Generation (TWh)", Width: fig.width(), Height: topH, DPI: dpi}
	if s := scope(v.World); s != "Global" {
		a.Title = fmt.Sprintf("A. %s Electricity Generation Mix", s)
	}
	imgA, err := MixArea(v.World, v.Schema, a, "Total generation (TWh)")
	if err != nil {
		return nil, fmt.Errorf("panel A: %w", err)
	}
	b := Panel{Title: "B. Fossil vs Low-carbon Share", XLabel: "Year", YLabel: "Share (%)", Width: leftW, Height: lowH, DPI: dpi, FontScale: 0.9}
	imgB, err := ShareLines(v.World, b, ShareLabels{Fossil: "Fossil fuels", LowCarbon: "Low-carbon"})
	if err != nil {
		return nil, fmt.Errorf("panel B: %w", err)
	}
	c := Panel{
		Title:     fmt.Sprintf("C. Leaders in Low-carbon Electricity (%d)", v.Snapshot.Year),
		XLabel:    "Low-carbon share (%)",
		Width:     rightW,
		Height:    lowH,
		DPI:       dpi,
		FontScale: 0.8,
	}
	imgC, err := Ranking(v.Snapshot, c)
	if err != nil {
		return nil, fmt.Errorf("panel C: %w", err)
	}

	fig.place(imgA, 0, band)
	fig.place(imgB, 0, band+topH)
	fig.place(imgC, leftW, band+topH)
	if err := fig.title("Energy Mix Transition – Global Overview and Leaders", 13, fig.px(dashTitleBand*0.72)); err != nil {
		return nil, err
	}
	return fig.img, nil
}
