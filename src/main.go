// Energy mix report entrypoint.
//
// Reads the OWID "electricity production by source" CSV, derives the world, focus and latest-year
// views, and writes five PNG figures into the output directory:
//  1. fig1_world_mix_area.png                    stacked generation mix of the world entity
//  2. fig2_world_share_lines.png                 fossil vs low-carbon share over time
//  3. fig3_lowcarbon_share_small_multiples.png   low-carbon share of the focus economies
//  4. fig4_top15_lowcarbon.png                   latest-year leaders by low-carbon share
//  5. main_figure_energy_mix_dashboard.png       combined overview
//
// Optionally an XLSX workbook (-xlsx) and a JSON run summary (-summary-json) are written too.
//
// Exit codes: 0 success, 1 fatal (config, input, empty view, or no figure written), 2 some outputs
// failed while the rest were written.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/charts"
	"github.com/iafilius/EnergyMix/src/config"
	"github.com/iafilius/EnergyMix/src/dataset"
	"github.com/iafilius/EnergyMix/src/export"
	"github.com/iafilius/EnergyMix/src/logging"
)

const (
	exitOK      = 0
	exitFatal   = 1
	exitPartial = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("energymix", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFatal
	}
	cfg, err := config.Resolve(fs, flags)
	if err != nil {
		logging.Errorf("[init] %v", err)
		return exitFatal
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logging.Errorf("[init] %v", err)
		return exitFatal
	}
	defer logging.TimeTrack(time.Now(), "pipeline")
	logging.Debugf("[init] config %+v", *cfg)

	tbl, err := dataset.Load(cfg.InputPath, cfg.Schema())
	if err != nil {
		logging.Errorf("[load] %v", err)
		return exitFatal
	}
	v, err := analysis.Build(tbl, analysis.Options{
		WorldEntity:    cfg.WorldEntity,
		FocusEntities:  cfg.FocusEntities,
		NoiseThreshold: cfg.NoiseThreshold,
		TopN:           cfg.TopN,
	})
	if err != nil {
		logging.Errorf("[analysis] %v", err)
		return exitFatal
	}
	printHeadline(stdout, v)

	rep := charts.Render(v, charts.Options{OutDir: cfg.OutputDir, DPI: cfg.DPI, Parallel: cfg.Parallel})
	code := exitOK
	if failed := rep.Failed(); len(failed) > 0 {
		logging.Warnf("[render] %d of %d charts failed", len(failed), len(rep.Results))
		code = exitPartial
		if len(failed) == len(rep.Results) {
			code = exitFatal
		}
	}

	if cfg.XLSXPath != "" {
		if err := export.WriteWorkbook(cfg.XLSXPath, v); err != nil {
			logging.Errorf("[export] %v", err)
			code = partial(code)
		} else {
			logging.Infof("[export] wrote workbook %s", cfg.XLSXPath)
		}
	}
	if cfg.SummaryJSON != "" {
		if err := export.WriteSummary(cfg.SummaryJSON, export.NewSummary(cfg.InputPath, v, rep)); err != nil {
			logging.Errorf("[export] %v", err)
			code = partial(code)
		} else {
			logging.Infof("[export] wrote summary %s", cfg.SummaryJSON)
		}
	}
	return code
}

// printHeadline prints the key figures of the run to stdout.
func printHeadline(w io.Writer, v *analysis.Views) {
	first, last := v.World.Span()
	fmt.Fprintf(w, "%s %d-%d (%d years)\n", v.World.Entity, first, last, len(v.World.Rows))
	if n := len(v.World.Rows); n > 0 {
		r := v.World.Rows[n-1]
		fmt.Fprintf(w, "  %d total %.0f TWh, fossil %s, low-carbon %s\n", r.Year, r.Total, pct(r.FossilShare), pct(r.LowCarbonShare))
	}
	fmt.Fprintf(w, "Top %d by low-carbon share in %d (total > %g TWh):\n", len(v.Snapshot.Rows), v.Snapshot.Year, v.Snapshot.Threshold)
	for i, r := range v.Snapshot.Rows {
		fmt.Fprintf(w, "  %2d. %-32s %s\n", i+1, r.Entity, pct(r.LowCarbonShare))
	}
}

// partial downgrades a clean run to exitPartial and leaves a fatal one alone.
func partial(code int) int {
	if code == exitOK {
		return exitPartial
	}
	return code
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}
