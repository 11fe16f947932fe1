package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/config"
	"github.com/iafilius/EnergyMix/src/dataset"
	"github.com/iafilius/EnergyMix/src/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run resolves settings the same way as the pipeline (YAML, .env, ENERGYMIX_*, flags) and
// prints the requested views.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mixreader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	view := fs.String("view", "all", "View to print: world|focus|snapshot|all")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	switch *view {
	case "world", "focus", "snapshot", "all":
	default:
		fmt.Fprintf(stderr, "error: unknown view %q\n", *view)
		return 2
	}
	cfg, err := config.Resolve(fs, flags)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	tbl, err := dataset.Load(cfg.InputPath, cfg.Schema())
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	v, err := analysis.Build(tbl, analysis.Options{
		WorldEntity:    cfg.WorldEntity,
		FocusEntities:  cfg.FocusEntities,
		NoiseThreshold: cfg.NoiseThreshold,
		TopN:           cfg.TopN,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Rows: %d  Entities: %d  Years: %d\n", len(tbl.Rows), len(tbl.Entities()), len(tbl.Years()))
	if len(tbl.Unmapped) > 0 {
		fmt.Fprintf(stdout, "Unmapped columns: %s\n", strings.Join(tbl.Unmapped, ", "))
	}
	if *view == "world" || *view == "all" {
		printRows(stdout, "World: "+v.World.Entity, v.World.Rows, false)
	}
	if *view == "focus" || *view == "all" {
		printFocus(stdout, v.Focus)
	}
	if *view == "snapshot" || *view == "all" {
		printSnapshot(stdout, v.Snapshot)
	}
	return 0
}

func printFocus(w io.Writer, f analysis.Focus) {
	if len(f.Missing) > 0 {
		fmt.Fprintf(w, "\nFocus entities not in input: %s\n", strings.Join(f.Missing, ", "))
	}
	printRows(w, "Focus", f.Rows, false)
}

func printSnapshot(w io.Writer, s analysis.Snapshot) {
	fmt.Fprintf(w, "\nConsidered %d entities in %d; %d at or below %g TWh, %d without generation\n",
		s.Considered, s.Year, s.BelowThreshold, s.Threshold, s.Undefined)
	printRows(w, fmt.Sprintf("Top %d by low-carbon share (%d)", len(s.Rows), s.Year), s.Rows, true)
}

func printRows(w io.Writer, title string, rows []analysis.Row, rank bool) {
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if rank {
		fmt.Fprint(tw, "#\t")
	}
	fmt.Fprintln(tw, "Entity\tYear\tTotal TWh\tFossil TWh\tLow-carbon TWh\tFossil %\tLow-carbon %\t")
	for i, r := range rows {
		if rank {
			fmt.Fprintf(tw, "%d\t", i+1)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.1f\t%.1f\t%s\t%s\t\n", r.Entity, r.Year, r.Total, r.Fossil, r.LowCarbon, pct(r.FossilShare), pct(r.LowCarbonShare))
	}
	tw.Flush()
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
