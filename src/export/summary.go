package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/charts"
)

// SchemaVersion of the summary JSON.
const SchemaVersion = 1

// Summary is the machine-readable record of one run.
type Summary struct {
	GeneratedAt   string          `json:"generated_at"`
	SchemaVersion int             `json:"schema_version"`
	Input         string          `json:"input"`
	World         WorldSummary    `json:"world"`
	Focus         FocusSummary    `json:"focus"`
	Snapshot      SnapshotSummary `json:"snapshot"`
	Charts        []ChartOutcome  `json:"charts"`
	ChartsFailed  int             `json:"charts_failed"`
}

// Figures are derived metrics with undefined shares as null.
type Figures struct {
	Year           int      `json:"year"`
	TotalTWh       float64  `json:"total_twh"`
	FossilTWh      float64  `json:"fossil_twh"`
	LowCarbonTWh   float64  `json:"low_carbon_twh"`
	FossilShare    *float64 `json:"fossil_share_pct"`
	LowCarbonShare *float64 `json:"low_carbon_share_pct"`
}

type WorldSummary struct {
	Entity    string   `json:"entity"`
	FirstYear int      `json:"first_year"`
	LastYear  int      `json:"last_year"`
	Years     int      `json:"years"`
	First     *Figures `json:"first,omitempty"`
	Latest    *Figures `json:"latest,omitempty"`
}

type FocusSummary struct {
	Entities []string           `json:"entities"`
	Missing  []string           `json:"missing"`
	Latest   map[string]Figures `json:"latest"`
}

type Leader struct {
	Rank   int    `json:"rank"`
	Entity string `json:"entity"`
	Code   string `json:"code,omitempty"`
	Figures
}

type SnapshotSummary struct {
	Year           int      `json:"year"`
	NoiseThreshold float64  `json:"noise_threshold_twh"`
	TopN           int      `json:"top_n"`
	Considered     int      `json:"considered"`
	BelowThreshold int      `json:"below_threshold"`
	Undefined      int      `json:"undefined_share"`
	Leaders        []Leader `json:"leaders"`
}

// ChartOutcome is one figure's render result.
type ChartOutcome struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func figures(r analysis.Row) Figures {
	return Figures{
		Year:           r.Year,
		TotalTWh:       r.Total,
		FossilTWh:      r.Fossil,
		LowCarbonTWh:   r.LowCarbon,
		FossilShare:    nullable(r.FossilShare),
		LowCarbonShare: nullable(r.LowCarbonShare),
	}
}

// NewSummary condenses the views and the render report. rep may be nil when nothing was rendered.
func NewSummary(input string, v *analysis.Views, rep *charts.Report) Summary {
	s := Summary{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339Nano),
		SchemaVersion: SchemaVersion,
		Input:         input,
		Charts:        []ChartOutcome{},
	}
	w := v.World
	s.World.Entity = w.Entity
	s.World.FirstYear, s.World.LastYear = w.Span()
	s.World.Years = len(w.Rows)
	if n := len(w.Rows); n > 0 {
		first, latest := figures(w.Rows[0]), figures(w.Rows[n-1])
		s.World.First, s.World.Latest = &first, &latest
	}

	s.Focus.Entities = append([]string{}, v.Focus.Entities...)
	s.Focus.Missing = append([]string{}, v.Focus.Missing...)
	s.Focus.Latest = map[string]Figures{}
	for _, e := range v.Focus.Entities {
		if rows := v.Focus.Series(e); len(rows) > 0 {
			s.Focus.Latest[e] = figures(rows[len(rows)-1])
		}
	}

	snap := v.Snapshot
	s.Snapshot = SnapshotSummary{
		Year:           snap.Year,
		NoiseThreshold: snap.Threshold,
		TopN:           snap.TopN,
		Considered:     snap.Considered,
		BelowThreshold: snap.BelowThreshold,
		Undefined:      snap.Undefined,
		Leaders:        []Leader{},
	}
	for i, r := range snap.Rows {
		s.Snapshot.Leaders = append(s.Snapshot.Leaders, Leader{Rank: i + 1, Entity: r.Entity, Code: r.Code, Figures: figures(r)})
	}

	if rep != nil {
		for _, res := range rep.Results {
			o := ChartOutcome{Name: res.Name, Path: res.Path, OK: res.OK(), Width: res.Width, Height: res.Height, DurationMs: res.Duration.Milliseconds()}
			if res.Err != nil {
				o.Error = res.Err.Error()
				s.ChartsFailed++
			}
			s.Charts = append(s.Charts, o)
		}
	}
	return s
}

// WriteSummary writes s as indented JSON.
func WriteSummary(path string, s Summary) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}
