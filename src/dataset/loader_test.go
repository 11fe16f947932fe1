package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/EnergyMix/src/types"
)

const adapted = " (adapted for visualization of chart electricity-prod-source-stacked)"

// owidHeader returns a header in the shape of the OWID export, with extra unrelated columns.
func owidHeader() string {
	cols := []string{"Entity", "Code", "Year"}
	for _, c := range types.DefaultSchema().Columns() {
		cols = append(cols, c+adapted)
	}
	cols = append(cols, "Population")
	return strings.Join(cols, ",")
}

func sampleCSV() string {
	return owidHeader() + "\n" +
		"World,OWID_WRL,2020,100,50,,50,,,,,,7800000000\n" +
		"World,OWID_WRL,2021,110,55,1,60,2,3,4,5,6,7900000000\n" +
		"Iceland,ISL,2021,0,0,0,0,13.9,0.01,0,0.01,5.9,370000\n"
}

func TestCanonicalColumnIdempotent(t *testing.T) {
	names := []string{
		"Electricity from coal - TWh" + adapted,
		"Other renewables excluding bioenergy - TWh (adapted (adapted twice)",
		"Electricity from wind - TWh",
		"",
	}
	for _, n := range names {
		once := CanonicalColumn(n)
		assert.Equal(t, once, CanonicalColumn(once), "name %q", n)
		assert.NotContains(t, once, " (adapted")
	}
	assert.Equal(t, "Electricity from coal - TWh", CanonicalColumn(names[0]))
}

func TestReadSample(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleCSV()), types.DefaultSchema())
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Empty(t, tbl.Unmapped)

	w := tbl.Rows[0]
	assert.Equal(t, "World", w.Entity)
	assert.Equal(t, "OWID_WRL", w.Code)
	assert.Equal(t, 2020, w.Year)
	assert.Equal(t, 100.0, w.Value(0))
	assert.Equal(t, 50.0, w.Value(1))
	assert.False(t, w.Values[2].Valid, "empty oil cell is absent")
	assert.Equal(t, 0.0, w.Value(2))
	assert.Equal(t, 50.0, w.Value(3))

	assert.Equal(t, []int{2020, 2021}, tbl.Years())
	y, ok := tbl.MaxYear()
	assert.True(t, ok)
	assert.Equal(t, 2021, y)
	assert.Equal(t, []string{"Iceland", "World"}, tbl.Entities())
}

func TestReadColumnOrderIndependent(t *testing.T) {
	// Reverse the header and every row; the declared schema must still resolve each source.
	lines := strings.Split(strings.TrimSpace(sampleCSV()), "\n")
	for i, l := range lines {
		f := strings.Split(l, ",")
		for a, b := 0, len(f)-1; a < b; a, b = a+1, b-1 {
			f[a], f[b] = f[b], f[a]
		}
		lines[i] = strings.Join(f, ",")
	}
	tbl, err := Read(strings.NewReader(strings.Join(lines, "\n")), types.DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, 100.0, tbl.Rows[0].Value(0))
	assert.Equal(t, 6.0, tbl.Rows[1].Value(8))
}

func TestReadMissingColumns(t *testing.T) {
	csv := "Entity,Code,Year,Electricity from coal - TWh\nWorld,,2020,1\n"
	_, err := Read(strings.NewReader(csv), types.DefaultSchema())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Len(t, mc.Columns, 8)
	assert.Contains(t, mc.Columns, "Electricity from gas - TWh")
}

func TestReadMissingYear(t *testing.T) {
	hdr := strings.Replace(owidHeader(), ",Year,", ",Yr,", 1)
	_, err := Read(strings.NewReader(hdr+"\n"), types.DefaultSchema())
	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"Year"}, mc.Columns)
}

func TestReadUnmappedColumnIsReported(t *testing.T) {
	csv := owidHeader() + ",Electricity from tidal - TWh" + adapted + "\n" +
		"World,OWID_WRL,2020,1,1,1,1,1,1,1,1,1,1,0.5\n"
	tbl, err := Read(strings.NewReader(csv), types.DefaultSchema())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electricity from tidal - TWh"}, tbl.Unmapped)
}

func TestReadParseErrors(t *testing.T) {
	t.Run("bad number", func(t *testing.T) {
		csv := owidHeader() + "\nWorld,OWID_WRL,2020,lots,1,1,1,1,1,1,1,1,1\n"
		_, err := Read(strings.NewReader(csv), types.DefaultSchema())
		assert.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "line 2")
	})
	t.Run("bad year", func(t *testing.T) {
		csv := owidHeader() + "\nWorld,OWID_WRL,twenty,1,1,1,1,1,1,1,1,1,1\n"
		_, err := Read(strings.NewReader(csv), types.DefaultSchema())
		assert.ErrorIs(t, err, ErrParse)
	})
	t.Run("ragged row", func(t *testing.T) {
		csv := owidHeader() + "\nWorld,OWID_WRL,2020,1\n"
		_, err := Read(strings.NewReader(csv), types.DefaultSchema())
		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""), types.DefaultSchema())
	assert.ErrorIs(t, err, ErrInput)

	tbl, err := Read(strings.NewReader(owidHeader()+"\n"), types.DefaultSchema())
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
	_, ok := tbl.MaxYear()
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "mix.csv")
	require.NoError(t, os.WriteFile(p, []byte("\ufeff"+sampleCSV()), 0o644))
	tbl, err := Load(p, types.DefaultSchema())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 3)

	_, err = Load(filepath.Join(dir, "missing.csv"), types.DefaultSchema())
	assert.ErrorIs(t, err, ErrInput)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
