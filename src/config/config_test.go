package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iafilius/EnergyMix/src/types"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 15, c.TopN)
	assert.Equal(t, 5.0, c.NoiseThreshold)
	assert.Equal(t, []string{"China", "United States", "India", "European Union (27)"}, c.FocusEntities)
	assert.Len(t, c.Schema().Sources, 9)
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "energymix.yaml", `
input_path: data/mix.csv
top_n: 10
focus_entities: [Germany, France]
`)
	c := Default()
	require.NoError(t, c.LoadFile(p))
	assert.Equal(t, "data/mix.csv", c.InputPath)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, []string{"Germany", "France"}, c.FocusEntities)
	assert.Equal(t, 300.0, c.DPI, "keys absent from the file keep defaults")
}

func TestLoadFileSourcesOverride(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "energymix.yaml", `
sources:
  - {key: coal, column: "Electricity from coal - TWh", category: fossil}
  - {key: wind, column: "Electricity from wind - TWh", category: low_carbon}
`)
	c := Default()
	require.NoError(t, c.LoadFile(p))
	require.NoError(t, c.Validate())
	s := c.Schema()
	require.Len(t, s.Sources, 2)
	assert.Equal(t, "wind", s.Sources[1].Label)
	assert.Equal(t, types.LowCarbon, s.Sources[1].Category)
}

func TestLoadFileMissing(t *testing.T) {
	c := Default()
	assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "ENERGYMIX_TOP_N=7\nENERGYMIX_FOCUS=Brazil, Chile\n")
	t.Setenv("ENERGYMIX_DPI", "150")
	// unset keys loaded by earlier tests in this process
	os.Unsetenv("ENERGYMIX_TOP_N")
	os.Unsetenv("ENERGYMIX_FOCUS")
	t.Cleanup(func() {
		os.Unsetenv("ENERGYMIX_TOP_N")
		os.Unsetenv("ENERGYMIX_FOCUS")
	})

	c := Default()
	require.NoError(t, c.LoadEnv(env))
	assert.Equal(t, 7, c.TopN)
	assert.Equal(t, []string{"Brazil", "Chile"}, c.FocusEntities)
	assert.Equal(t, 150.0, c.DPI)
}

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	c := Default()
	assert.NoError(t, c.LoadEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadEnvBadNumber(t *testing.T) {
	t.Setenv("ENERGYMIX_TOP_N", "many")
	c := Default()
	assert.Error(t, c.LoadEnv(""))
}

func TestResolveFlagsWin(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "c.yaml", "top_n: 10\noutput_dir: from-file\n")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-config", cfg, "-env-file", filepath.Join(dir, ".env"),
		"-top-n", "3", "-focus", "India,China",
	}))
	c, err := Resolve(fs, f)
	require.NoError(t, err)
	assert.Equal(t, 3, c.TopN)
	assert.Equal(t, "from-file", c.OutputDir, "unset flag must not clobber file value")
	assert.Equal(t, []string{"India", "China"}, c.FocusEntities)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"empty input":   func(c *Config) { c.InputPath = " " },
		"top n":         func(c *Config) { c.TopN = 0 },
		"noise":         func(c *Config) { c.NoiseThreshold = -1 },
		"dpi":           func(c *Config) { c.DPI = 10 },
		"parallel":      func(c *Config) { c.Parallel = 0 },
		"focus":         func(c *Config) { c.FocusEntities = nil },
		"bad sources":   func(c *Config) { c.Sources = []types.Source{{Key: "x", Column: "y", Category: "z"}} },
		"no world name": func(c *Config) { c.WorldEntity = "" },
		"log level":     func(c *Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitList(" a,, b c ,"))
	assert.Nil(t, SplitList(""))
}
