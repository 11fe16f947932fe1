package charts

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// niceAxisBounds pads [min,max] by 5% and rounds outward to the span's order of magnitude.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// niceTicks generates about n ticks over [min,max] with 1/2/2.5/5 x 10^k steps.
// The first and last tick sit on min and max: go-chart sizes an axis to the span of its ticks.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		if score := math.Abs(count - float64(n)); score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	var inner []float64
	for v := math.Ceil(min/bestStep) * bestStep; v <= max+bestStep*1e-9; v += bestStep {
		inner = append(inner, v)
		if len(inner) > n+2 {
			break
		}
	}
	return withEnds(min, max, bestStep/2, inner, formatTick)
}

// withEnds returns ticks at min and max plus the inner values that are at least gap away from both.
func withEnds(min, max, gap float64, inner []float64, label func(float64) string) []chart.Tick {
	ticks := []chart.Tick{{Value: min, Label: label(min)}}
	for _, v := range inner {
		if v-min >= gap && max-v >= gap {
			ticks = append(ticks, chart.Tick{Value: v, Label: label(v)})
		}
	}
	return append(ticks, chart.Tick{Value: max, Label: label(max)})
}

func yearLabel(v float64) string { return fmt.Sprint(int(math.Round(v))) }

// yearTicks places ticks on whole years, using a 1/2/5/10/20/25/50 step that yields about n ticks.
// The ticks always cover yearRange(first, last).
func yearTicks(first, last, n int) []chart.Tick {
	if last <= first {
		return withEnds(float64(first-1), float64(first+1), 1, []float64{float64(first)}, yearLabel)
	}
	step := 1
	for _, s := range []int{1, 2, 5, 10, 20, 25, 50, 100} {
		step = s
		if (last-first)/s+1 <= n {
			break
		}
	}
	var inner []float64
	for y := (first + step - 1) / step * step; y <= last; y += step {
		inner = append(inner, float64(y))
	}
	return withEnds(float64(first), float64(last), float64(step)/2, inner, yearLabel)
}

// yearRange widens a single-year span so go-chart never sees a zero-width axis.
func yearRange(first, last int) *chart.ContinuousRange {
	if last <= first {
		return &chart.ContinuousRange{Min: float64(first) - 1, Max: float64(first) + 1}
	}
	return &chart.ContinuousRange{Min: float64(first), Max: float64(last)}
}

// percentRange fits [dataMin,dataMax] with nice bounds clamped to [0,100]. With fit=false the
// full [0,100] axis is returned.
func percentRange(dataMin, dataMax float64, fit bool) (*chart.ContinuousRange, []chart.Tick) {
	if !fit || math.IsNaN(dataMin) || math.IsNaN(dataMax) || dataMin > dataMax {
		return &chart.ContinuousRange{Min: 0, Max: 100}, niceTicks(0, 100, 6)
	}
	lo, hi := niceAxisBounds(dataMin, dataMax)
	lo = math.Max(0, lo)
	hi = math.Min(100, hi)
	if hi-lo < 1 {
		lo, hi = math.Max(0, lo-1), math.Min(100, hi+1)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}, niceTicks(lo, hi, 6)
}

// zeroAnchoredRange returns [0, nice(max)] for volume axes.
func zeroAnchoredRange(max float64) (*chart.ContinuousRange, []chart.Tick) {
	if math.IsNaN(max) || max <= 0 {
		max = 1
	}
	_, hi := niceAxisBounds(0, max)
	return &chart.ContinuousRange{Min: 0, Max: hi}, niceTicks(0, hi, 6)
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
