// Package dataset loads the electricity-by-source CSV into an in-memory table keyed by the declared schema.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/iafilius/EnergyMix/src/logging"
	"github.com/iafilius/EnergyMix/src/types"
)

var (
	// ErrInput covers a missing/unreadable file or a header lacking required columns.
	ErrInput = errors.New("input error")
	// ErrParse covers malformed rows and unparseable cells.
	ErrParse = errors.New("parse error")
)

// Base identifier columns.
const (
	ColEntity = "Entity"
	ColCode   = "Code"
	ColYear   = "Year"
)

// Prefixes that select energy columns from the raw header.
var energyPrefixes = []string{"Other renewables", "Electricity from"}

const adaptedMarker = " (adapted"

// CanonicalColumn truncates a header at the first " (adapted". Applying it twice is a no-op.
func CanonicalColumn(name string) string {
	if i := strings.Index(name, adaptedMarker); i >= 0 {
		return name[:i]
	}
	return name
}

// IsEnergyColumn reports whether a raw header names a generation column.
func IsEnergyColumn(name string) bool {
	for _, p := range energyPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// MissingColumnsError lists required columns absent from the input header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrInput) hold for a MissingColumnsError.
func (e *MissingColumnsError) Is(target error) bool { return target == ErrInput }

// Volume is a generation value in TWh. Empty cells decode as not Valid and count as zero in sums.
type Volume struct {
	Value float64
	Valid bool
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (v *Volume) UnmarshalCSV(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || strings.EqualFold(s, "nan") {
		*v = Volume{}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = Volume{Value: f, Valid: true}
	return nil
}

// Record is one (Entity, Code, Year) row. Values is indexed like Table.Schema.Sources.
type Record struct {
	Entity string
	Code   string
	Year   int
	Values []Volume
}

// Value returns the TWh of source i (0 when absent).
func (r Record) Value(i int) float64 {
	if i < 0 || i >= len(r.Values) || !r.Values[i].Valid {
		return 0
	}
	return r.Values[i].Value
}

// Table is the loaded dataset.
type Table struct {
	Schema types.Schema
	Rows   []Record
	// Unmapped lists selected energy columns that the schema does not declare.
	Unmapped []string
}

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	seen := map[int]bool{}
	var out []int
	for _, r := range t.Rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

// MaxYear returns the latest year present; ok is false for an empty table.
func (t *Table) MaxYear() (year int, ok bool) {
	for i, r := range t.Rows {
		if i == 0 || r.Year > year {
			year = r.Year
		}
	}
	return year, len(t.Rows) > 0
}

// Entities returns the distinct entity names in ascending order.
func (t *Table) Entities() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Entity] {
			seen[r.Entity] = true
			out = append(out, r.Entity)
		}
	}
	sort.Strings(out)
	return out
}

// baseRow is what csvutil decodes; source cells are read from the raw record by schema index.
type baseRow struct {
	Entity string `csv:"Entity"`
	Code   string `csv:"Code,omitempty"`
	Year   int    `csv:"Year"`
}

// Load opens path and reads it with Read.
func Load(path string, schema types.Schema) (*Table, error) {
	defer logging.TimeTrack(time.Now(), "load "+path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrInput, path, err)
	}
	defer f.Close()
	t, err := Read(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Infof("[load] %s rows=%d entities=%d years=%d", path, len(t.Rows), len(t.Entities()), len(t.Years()))
	return t, nil
}

// Read parses CSV text with a header row. The header is canonicalised and validated against schema
// before any row is decoded.
func Read(r io.Reader, schema types.Schema) (*Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	cr := csv.NewReader(r)
	raw, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file (no header row)", ErrInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrParse, err)
	}
	header, srcIdx, unmapped, err := mapHeader(raw, schema)
	if err != nil {
		return nil, err
	}
	for _, u := range unmapped {
		logging.Warnf("[load] column %q is not declared in the source schema; ignored", u)
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	t := &Table{Schema: schema, Unmapped: unmapped}
	for line := 2; ; line++ {
		var b baseRow
		if err := dec.Decode(&b); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, line, err)
		}
		rec := dec.Record()
		row := Record{Entity: b.Entity, Code: b.Code, Year: b.Year, Values: make([]Volume, len(schema.Sources))}
		for i, col := range srcIdx {
			if err := row.Values[i].UnmarshalCSV([]byte(rec[col])); err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %v", ErrParse, line, schema.Sources[i].Column, err)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// mapHeader canonicalises the raw header and resolves the column index of every declared source.
func mapHeader(raw []string, schema types.Schema) (header []string, srcIdx []int, unmapped []string, err error) {
	header = make([]string, len(raw))
	pos := map[string]int{}
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if IsEnergyColumn(h) {
			h = CanonicalColumn(h)
			if _, dup := pos[h]; dup {
				return nil, nil, nil, fmt.Errorf("%w: column %q appears twice after canonicalisation", ErrInput, h)
			}
			if schema.Index(h) < 0 {
				unmapped = append(unmapped, h)
			}
		}
		header[i] = h
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var missing []string
	for _, base := range []string{ColEntity, ColYear} {
		if _, ok := pos[base]; !ok {
			missing = append(missing, base)
		}
	}
	srcIdx = make([]int, len(schema.Sources))
	for i, src := range schema.Sources {
		p, ok := pos[src.Column]
		if !ok {
			missing = append(missing, src.Column)
			continue
		}
		srcIdx[i] = p
	}
	if len(missing) > 0 {
		return nil, nil, nil, &MissingColumnsError{Columns: missing}
	}
	return header, srcIdx, unmapped, nil
}
