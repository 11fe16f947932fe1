// Package charts renders the energy-mix figures as PNG files.
//
// Five figures are produced with fixed file names. Line and area panels use go-chart, the
// ranking bars use gonum/plot, and multi-panel figures are composed onto one canvas. Each
// figure is rendered and written independently: a failure is recorded in the Report and the
// others still get written.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/logging"
)

// Output file names.
const (
	FileWorldMix       = "fig1_world_mix_area.png"
	FileWorldShares    = "fig2_world_share_lines.png"
	FileSmallMultiples = "fig3_lowcarbon_share_small_multiples.png"
	FileRanking        = "fig4_top15_lowcarbon.png"
	FileDashboard      = "main_figure_energy_mix_dashboard.png"
)

// DefaultDPI is the print resolution of the published figures.
const DefaultDPI = 300

// ErrOutput is wrapped by errors writing an artifact.
var ErrOutput = errors.New("output error")

// Builder draws one figure from the views.
type Builder func(v *analysis.Views, dpi float64) (image.Image, error)

// Artifact is one named output figure.
type Artifact struct {
	Name  string
	Build Builder
}

// Artifacts lists the figures in output order.
func Artifacts() []Artifact {
	return []Artifact{
		{FileWorldMix, WorldMixFigure},
		{FileWorldShares, WorldSharesFigure},
		{FileSmallMultiples, SmallMultiplesFigure},
		{FileRanking, RankingFigure},
		{FileDashboard, DashboardFigure},
	}
}

// Names returns the artifact file names in output order.
func Names() []string {
	var out []string
	for _, a := range Artifacts() {
		out = append(out, a.Name)
	}
	return out
}

// Options control rendering.
type Options struct {
	OutDir   string
	DPI      float64
	Parallel int
	// Artifacts overrides the figure list; nil renders all of Artifacts().
	Artifacts []Artifact
}

// ChartError reports the failure of one figure.
type ChartError struct {
	Name string
	Err  error
}

func (e *ChartError) Error() string { return fmt.Sprintf("chart %s: %v", e.Name, e.Err) }

func (e *ChartError) Unwrap() error { return e.Err }

// Result is the outcome of one figure.
type Result struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// OK reports whether the figure was written.
func (r Result) OK() bool { return r.Err == nil }

// Report collects every figure's Result in output order.
type Report struct {
	Results []Result
}

// Failed returns the results that have an error.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Err joins the failures, nil when every figure was written.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Render draws and writes every figure into o.OutDir, using up to o.Parallel workers.
func Render(v *analysis.Views, o Options) *Report {
	defer logging.TimeTrack(time.Now(), "render")
	arts := o.Artifacts
	if arts == nil {
		arts = Artifacts()
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	rep := &Report{Results: make([]Result, len(arts))}
	for i, a := range arts {
		rep.Results[i] = Result{Name: a.Name, Path: filepath.Join(o.OutDir, a.Name)}
	}
	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		for i := range rep.Results {
			rep.Results[i].Err = &ChartError{Name: arts[i].Name, Err: fmt.Errorf("%w: %v", ErrOutput, err)}
		}
		logging.Errorf("[render] cannot create output dir %s: %v", o.OutDir, err)
		return rep
	}

	workers := o.Parallel
	if workers < 1 {
		workers = 1
	}
	if workers > len(arts) {
		workers = len(arts)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rep.Results[i] = renderOne(v, arts[i], rep.Results[i], o.DPI)
			}
		}()
	}
	for i := range arts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, res := range rep.Results {
		if res.Err != nil {
			logging.Warnf("[render] %s failed: %v", res.Name, res.Err)
			continue
		}
		logging.Infof("[render] wrote %s (%dx%d) in %s", res.Path, res.Width, res.Height, res.Duration.Round(time.Millisecond))
	}
	return rep
}

func renderOne(v *analysis.Views, a Artifact, res Result, dpi float64) (out Result) {
	start := time.Now()
	out = res
	defer func() {
		// A panic inside a chart library fails that figure only.
		if p := recover(); p != nil {
			out.Err = &ChartError{Name: a.Name, Err: fmt.Errorf("panic: %v", p)}
		}
		out.Duration = time.Since(start)
	}()
	if v == nil {
		out.Err = &ChartError{Name: a.Name, Err: analysis.ErrNoData}
		return out
	}
	img, err := a.Build(v, dpi)
	if err != nil {
		out.Err = &ChartError{Name: a.Name, Err: err}
		return out
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		out.Err = &ChartError{Name: a.Name, Err: fmt.Errorf("encode: %w", err)}
		return out
	}
	if err := os.WriteFile(res.Path, buf.Bytes(), 0o644); err != nil {
		out.Err = &ChartError{Name: a.Name, Err: fmt.Errorf("%w: %w", ErrOutput, err)}
		return out
	}
	b := img.Bounds()
	out.Width, out.Height = b.Dx(), b.Dy()
	logging.Debugf("[render] %s %dx%d bytes=%d", a.Name, out.Width, out.Height, buf.Len())
	return out
}
