// Package export writes the derived views outside of the charts: an XLSX workbook with one sheet
// per view and a JSON run summary.
package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/types"
)

// Sheet names.
const (
	SheetWorld    = "World"
	SheetFocus    = "Focus"
	SheetSnapshot = "Snapshot"
)

// Columns returns the sheet header for schema; rank adds a leading Rank column.
func Columns(s types.Schema, rank bool) []string {
	var cols []string
	if rank {
		cols = append(cols, "Rank")
	}
	cols = append(cols, "Entity", "Code", "Year")
	for _, src := range s.Sources {
		cols = append(cols, src.Label+" (TWh)")
	}
	return append(cols, "Total (TWh)", "Fossil (TWh)", "Low-carbon (TWh)", "Fossil share (%)", "Low-carbon share (%)")
}

// WriteWorkbook saves the world, focus and snapshot views to path. Undefined shares are left as
// empty cells.
func WriteWorkbook(path string, v *analysis.Views) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetWorld); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetFocus, SheetSnapshot} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	sheets := []struct {
		name string
		rows []analysis.Row
		rank bool
	}{
		{SheetWorld, v.World.Rows, false},
		{SheetFocus, v.Focus.Rows, false},
		{SheetSnapshot, v.Snapshot.Rows, true},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, v.Schema, sh.rows, sh.rank, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, s types.Schema, rows []analysis.Row, rank bool, headerStyle int) error {
	cols := Columns(s, rank)
	for i, h := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	first, _ := excelize.ColumnNumberToName(1)
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetColWidth(sheet, first, lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	for i, r := range rows {
		var vals []interface{}
		if rank {
			vals = append(vals, i+1)
		}
		vals = append(vals, r.Entity, r.Code, r.Year)
		for _, x := range r.Values {
			vals = append(vals, x)
		}
		vals = append(vals, r.Total, r.Fossil, r.LowCarbon, cellNumber(r.FossilShare), cellNumber(r.LowCarbonShare))
		for j, x := range vals {
			if x == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, x); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellNumber maps NaN to nil so the cell stays empty.
func cellNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
