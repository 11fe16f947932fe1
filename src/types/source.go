// Package types holds the declared input schema shared by the loader, the aggregator and the charts.
package types

import (
	"fmt"
	"strings"
)

// Category partitions sources into fossil and low-carbon generation.
type Category string

const (
	Fossil    Category = "fossil"
	LowCarbon Category = "low_carbon"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return c == Fossil || c == LowCarbon }

// Source is one declared generation source. Column is the canonical CSV header
// (after the " (adapted" tail has been removed); Label is the legend text.
type Source struct {
	Key      string   `yaml:"key" json:"key"`
	Column   string   `yaml:"column" json:"column"`
	Label    string   `yaml:"label,omitempty" json:"label"`
	Category Category `yaml:"category" json:"category"`
}

// Schema is the ordered source enumeration. The order is the stacking and legend order.
type Schema struct {
	Sources []Source `yaml:"sources" json:"sources"`
}

const (
	columnPrefix = "Electricity from "
	columnSuffix = " - TWh"
)

// LabelFromColumn derives a legend label from a canonical column name
// ("Electricity from coal - TWh" -> "coal").
func LabelFromColumn(col string) string {
	s := strings.Replace(col, columnPrefix, "", 1)
	s = strings.Replace(s, columnSuffix, "", 1)
	return s
}

// DefaultSchema returns the nine sources of the Our World in Data electricity-mix dataset.
func DefaultSchema() Schema {
	src := func(key, col string, cat Category) Source {
		return Source{Key: key, Column: col, Label: LabelFromColumn(col), Category: cat}
	}
	return Schema{Sources: []Source{
		src("coal", "Electricity from coal - TWh", Fossil),
		src("gas", "Electricity from gas - TWh", Fossil),
		src("oil", "Electricity from oil - TWh", Fossil),
		src("nuclear", "Electricity from nuclear - TWh", LowCarbon),
		src("hydro", "Electricity from hydro - TWh", LowCarbon),
		src("wind", "Electricity from wind - TWh", LowCarbon),
		src("solar", "Electricity from solar - TWh", LowCarbon),
		src("bioenergy", "Electricity from bioenergy - TWh", LowCarbon),
		src("other_renewables", "Other renewables excluding bioenergy - TWh", LowCarbon),
	}}
}

// Validate checks that keys and columns are unique, non-empty and that every source
// belongs to exactly one known category. Missing labels are filled from the column.
func (s *Schema) Validate() error {
	if len(s.Sources) == 0 {
		return fmt.Errorf("schema declares no sources")
	}
	keys := map[string]bool{}
	cols := map[string]bool{}
	for i := range s.Sources {
		src := &s.Sources[i]
		src.Key = strings.TrimSpace(src.Key)
		src.Column = strings.TrimSpace(src.Column)
		if src.Key == "" || src.Column == "" {
			return fmt.Errorf("source %d: key and column are required", i)
		}
		if !src.Category.Valid() {
			return fmt.Errorf("source %q: unknown category %q", src.Key, src.Category)
		}
		if keys[src.Key] {
			return fmt.Errorf("source %q declared twice", src.Key)
		}
		if cols[src.Column] {
			return fmt.Errorf("column %q declared twice", src.Column)
		}
		keys[src.Key] = true
		cols[src.Column] = true
		if src.Label == "" {
			src.Label = LabelFromColumn(src.Column)
		}
	}
	return nil
}

// Columns lists canonical column names in declared order.
func (s Schema) Columns() []string {
	out := make([]string, len(s.Sources))
	for i, src := range s.Sources {
		out[i] = src.Column
	}
	return out
}

// Index returns the position of the source with the given canonical column, or -1.
func (s Schema) Index(column string) int {
	for i, src := range s.Sources {
		if src.Column == column {
			return i
		}
	}
	return -1
}

// InCategory returns the indexes of all sources in category c, in declared order.
func (s Schema) InCategory(c Category) []int {
	var out []int
	for i, src := range s.Sources {
		if src.Category == c {
			out = append(out, i)
		}
	}
	return out
}
