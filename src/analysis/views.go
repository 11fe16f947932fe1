// Package analysis derives totals and fossil/low-carbon shares from a loaded table and builds the
// three read-only views the charts are drawn from:
//   - World: one entity (default "World") over time.
//   - Focus: a fixed set of entities over time, for side-by-side comparison.
//   - Snapshot: the latest year, noise-filtered and ranked by low-carbon share.
//
// Shares are NaN when an entity reports no generation at all (Total == 0). They are kept
// in the world and focus views (charts draw them as gaps) and excluded from the ranking.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iafilius/EnergyMix/src/dataset"
	"github.com/iafilius/EnergyMix/src/logging"
	"github.com/iafilius/EnergyMix/src/types"
)

// ErrNoData is returned when a view filter matches no rows.
var ErrNoData = errors.New("no data")

// Metrics are the derived per-row totals (TWh) and shares (percent of Total).
type Metrics struct {
	Total          float64 `json:"total_twh"`
	Fossil         float64 `json:"fossil_twh"`
	LowCarbon      float64 `json:"low_carbon_twh"`
	FossilShare    float64 `json:"fossil_share_pct"`
	LowCarbonShare float64 `json:"low_carbon_share_pct"`
}

// Defined reports whether the shares could be computed (Total != 0).
func (m Metrics) Defined() bool { return !math.IsNaN(m.LowCarbonShare) }

// Derive computes Metrics for one record. Absent cells count as zero.
func Derive(r dataset.Record, s types.Schema) Metrics {
	var m Metrics
	for i, src := range s.Sources {
		v := r.Value(i)
		m.Total += v
		switch src.Category {
		case types.Fossil:
			m.Fossil += v
		case types.LowCarbon:
			m.LowCarbon += v
		}
	}
	m.FossilShare = share(m.Fossil, m.Total)
	m.LowCarbonShare = share(m.LowCarbon, m.Total)
	return m
}

func share(part, total float64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return part / total * 100
}

// Row is a record with its derived metrics. Values holds TWh per schema source.
type Row struct {
	Entity string
	Code   string
	Year   int
	Values []float64
	Metrics
}

func newRow(r dataset.Record, s types.Schema) Row {
	vals := make([]float64, len(s.Sources))
	for i := range vals {
		vals[i] = r.Value(i)
	}
	return Row{Entity: r.Entity, Code: r.Code, Year: r.Year, Values: vals, Metrics: Derive(r, s)}
}

// World is the time series of a single aggregate entity, Year ascending.
type World struct {
	Entity string
	Rows   []Row
}

// Years returns the x values of the series.
func (w World) Years() []int {
	out := make([]int, len(w.Rows))
	for i, r := range w.Rows {
		out[i] = r.Year
	}
	return out
}

// Span returns the first and last year.
func (w World) Span() (first, last int) {
	if len(w.Rows) == 0 {
		return 0, 0
	}
	return w.Rows[0].Year, w.Rows[len(w.Rows)-1].Year
}

// Focus holds the rows of the focus entities, ordered by (Entity, Year).
type Focus struct {
	// Entities present in the input, ascending.
	Entities []string
	// Missing lists requested entities absent from the input.
	Missing []string
	Rows    []Row
}

// Series returns the rows of one entity in year order.
func (f Focus) Series(entity string) []Row {
	var out []Row
	for _, r := range f.Rows {
		if r.Entity == entity {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot is the latest-year ranking by low-carbon share, descending.
type Snapshot struct {
	Year      int
	Threshold float64
	TopN      int
	// Considered counts latest-year rows before filtering.
	Considered int
	// BelowThreshold and Undefined count rows dropped by the noise filter and by a NaN share.
	BelowThreshold int
	Undefined      int
	Rows           []Row
}

// Views bundles everything the renderer needs.
type Views struct {
	Schema   types.Schema
	World    World
	Focus    Focus
	Snapshot Snapshot
}

// Options select and rank the views.
type Options struct {
	WorldEntity    string
	FocusEntities  []string
	NoiseThreshold float64
	TopN           int
}

// DefaultOptions mirrors the published report.
func DefaultOptions() Options {
	return Options{
		WorldEntity:    "World",
		FocusEntities:  []string{"China", "United States", "India", "European Union (27)"},
		NoiseThreshold: 5,
		TopN:           15,
	}
}

// Build computes all three views. Any empty view is an ErrNoData.
func Build(t *dataset.Table, o Options) (*Views, error) {
	w, err := WorldView(t, o.WorldEntity)
	if err != nil {
		return nil, err
	}
	f, err := FocusView(t, o.FocusEntities)
	if err != nil {
		return nil, err
	}
	s, err := SnapshotView(t, o.NoiseThreshold, o.TopN)
	if err != nil {
		return nil, err
	}
	return &Views{Schema: t.Schema, World: w, Focus: f, Snapshot: s}, nil
}

// WorldView filters rows of entity and sorts them by year.
func WorldView(t *dataset.Table, entity string) (World, error) {
	w := World{Entity: entity}
	undefined := 0
	for _, r := range t.Rows {
		if r.Entity != entity {
			continue
		}
		row := newRow(r, t.Schema)
		if !row.Defined() {
			undefined++
		}
		w.Rows = append(w.Rows, row)
	}
	if len(w.Rows) == 0 {
		return w, fmt.Errorf("%w: no %s rows found", ErrNoData, entity)
	}
	sort.SliceStable(w.Rows, func(i, j int) bool { return w.Rows[i].Year < w.Rows[j].Year })
	if undefined > 0 {
		logging.Warnf("[analysis] %s: %d of %d years have zero total generation; shares undefined", entity, undefined, len(w.Rows))
	}
	first, last := w.Span()
	logging.Debugf("[analysis] world view %s rows=%d span=%d-%d", entity, len(w.Rows), first, last)
	return w, nil
}

// FocusView filters rows whose entity is in entities, ordered by (Entity, Year).
// Requested entities absent from the input are reported in Missing; at least one must be present.
func FocusView(t *dataset.Table, entities []string) (Focus, error) {
	want := map[string]bool{}
	for _, e := range entities {
		want[e] = true
	}
	var f Focus
	present := map[string]bool{}
	for _, r := range t.Rows {
		if !want[r.Entity] {
			continue
		}
		present[r.Entity] = true
		f.Rows = append(f.Rows, newRow(r, t.Schema))
	}
	for _, e := range entities {
		if !present[e] {
			f.Missing = append(f.Missing, e)
		}
	}
	if len(f.Rows) == 0 {
		return f, fmt.Errorf("%w: none of the focus entities found (%s)", ErrNoData, strings.Join(entities, ", "))
	}
	for e := range present {
		f.Entities = append(f.Entities, e)
	}
	sort.Strings(f.Entities)
	sort.SliceStable(f.Rows, func(i, j int) bool {
		a, b := f.Rows[i], f.Rows[j]
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		return a.Year < b.Year
	})
	if len(f.Missing) > 0 {
		logging.Infof("[analysis] focus entities not in input, omitted: %s", strings.Join(f.Missing, ", "))
	}
	return f, nil
}

// SnapshotView ranks the rows of the latest year by low-carbon share. Rows with Total <= threshold
// or an undefined share are dropped; equal shares keep entity name order; at most topN rows remain.
func SnapshotView(t *dataset.Table, threshold float64, topN int) (Snapshot, error) {
	year, ok := t.MaxYear()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: table is empty, no snapshot year", ErrNoData)
	}
	s := Snapshot{Year: year, Threshold: threshold, TopN: topN}
	for _, r := range t.Rows {
		if r.Year != year {
			continue
		}
		s.Considered++
		row := newRow(r, t.Schema)
		switch {
		case !(row.Total > threshold):
			s.BelowThreshold++
		case !row.Defined():
			s.Undefined++
		default:
			s.Rows = append(s.Rows, row)
		}
	}
	if len(s.Rows) == 0 {
		return s, fmt.Errorf("%w: no entities above %g TWh in %d", ErrNoData, threshold, year)
	}
	sort.SliceStable(s.Rows, func(i, j int) bool {
		a, b := s.Rows[i], s.Rows[j]
		if a.LowCarbonShare != b.LowCarbonShare {
			return a.LowCarbonShare > b.LowCarbonShare
		}
		return a.Entity < b.Entity
	})
	if topN > 0 && len(s.Rows) > topN {
		s.Rows = s.Rows[:topN]
	}
	logging.Debugf("[analysis] snapshot %d considered=%d below_threshold=%d undefined=%d ranked=%d",
		year, s.Considered, s.BelowThreshold, s.Undefined, len(s.Rows))
	return s, nil
}
