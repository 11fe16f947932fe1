// Package config resolves run settings from defaults, an optional YAML file, a .env file,
// ENERGYMIX_* environment variables and finally command-line flags (highest precedence).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iafilius/EnergyMix/src/logging"
	"github.com/iafilius/EnergyMix/src/types"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultInputPath is the file name of the OWID "electricity production by source" export.
const DefaultInputPath = "electricity-prod-source-stacked.csv"

// Config holds every setting of a pipeline run.
type Config struct {
	InputPath      string   `yaml:"input_path"`
	OutputDir      string   `yaml:"output_dir"`
	WorldEntity    string   `yaml:"world_entity"`
	FocusEntities  []string `yaml:"focus_entities"`
	NoiseThreshold float64  `yaml:"noise_threshold"`
	TopN           int      `yaml:"top_n"`
	DPI            float64  `yaml:"dpi"`
	Parallel       int      `yaml:"parallel"`
	LogLevel       string   `yaml:"log_level"`
	XLSXPath       string   `yaml:"xlsx_path"`
	SummaryJSON    string   `yaml:"summary_json"`
	// Sources overrides the declared source schema when non-empty.
	Sources []types.Source `yaml:"sources"`
}

// Default returns the settings the original report was produced with.
func Default() *Config {
	return &Config{
		InputPath:      DefaultInputPath,
		OutputDir:      ".",
		WorldEntity:    "World",
		FocusEntities:  []string{"China", "United States", "India", "European Union (27)"},
		NoiseThreshold: 5,
		TopN:           15,
		DPI:            300,
		Parallel:       1,
		LogLevel:       "info",
	}
}

// Schema returns the configured source schema, or the default one.
func (c *Config) Schema() types.Schema {
	if len(c.Sources) == 0 {
		return types.DefaultSchema()
	}
	return types.Schema{Sources: append([]types.Source(nil), c.Sources...)}
}

// LoadFile merges a YAML file over c. Keys absent from the file keep their current value.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads envFile (if it exists) into the process environment and applies ENERGYMIX_* variables.
// Variables already present in the environment win over the file, as godotenv.Load does.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ENERGYMIX_INPUT", &c.InputPath)
	str("ENERGYMIX_OUTPUT_DIR", &c.OutputDir)
	str("ENERGYMIX_WORLD_ENTITY", &c.WorldEntity)
	str("ENERGYMIX_LOG_LEVEL", &c.LogLevel)
	str("ENERGYMIX_XLSX", &c.XLSXPath)
	str("ENERGYMIX_SUMMARY_JSON", &c.SummaryJSON)
	if v, ok := os.LookupEnv("ENERGYMIX_FOCUS"); ok && strings.TrimSpace(v) != "" {
		c.FocusEntities = SplitList(v)
	}
	if v, ok := os.LookupEnv("ENERGYMIX_NOISE_THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("ENERGYMIX_NOISE_THRESHOLD: %w", err)
		}
		c.NoiseThreshold = f
	}
	if v, ok := os.LookupEnv("ENERGYMIX_DPI"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("ENERGYMIX_DPI: %w", err)
		}
		c.DPI = f
	}
	for key, dst := range map[string]*int{"ENERGYMIX_TOP_N": &c.TopN, "ENERGYMIX_PARALLEL": &c.Parallel} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// Flags are the command-line overrides. Only flags explicitly set on the command line are applied.
type Flags struct {
	ConfigPath string
	EnvFile    string

	input, outDir, world, focus, logLevel, xlsx, summary string
	noise, dpi                                           float64
	topN, parallel                                       int
}

// RegisterFlags defines the pipeline flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Optional YAML config file")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Optional .env file with ENERGYMIX_* variables")
	fs.StringVar(&f.input, "input", d.InputPath, "Path to the electricity-by-source CSV")
	fs.StringVar(&f.outDir, "out-dir", d.OutputDir, "Directory for the chart PNGs")
	fs.StringVar(&f.world, "world-entity", d.WorldEntity, "Entity name used for the world view")
	fs.StringVar(&f.focus, "focus", strings.Join(d.FocusEntities, ","), "Comma-separated focus entities for the small multiples")
	fs.Float64Var(&f.noise, "noise-threshold", d.NoiseThreshold, "Minimum total TWh for an entity to enter the latest-year ranking")
	fs.IntVar(&f.topN, "top-n", d.TopN, "Number of entities in the latest-year ranking")
	fs.Float64Var(&f.dpi, "dpi", d.DPI, "Raster resolution of the PNGs")
	fs.IntVar(&f.parallel, "parallel", d.Parallel, "Maximum charts rendered concurrently")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&f.xlsx, "xlsx", "", "Optional path for an XLSX workbook with the derived views")
	fs.StringVar(&f.summary, "summary-json", "", "Optional path for a JSON run summary")
	return f
}

// Apply copies explicitly set flags from fs into c.
func (f *Flags) Apply(fs *flag.FlagSet, c *Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "input":
			c.InputPath = f.input
		case "out-dir":
			c.OutputDir = f.outDir
		case "world-entity":
			c.WorldEntity = f.world
		case "focus":
			c.FocusEntities = SplitList(f.focus)
		case "noise-threshold":
			c.NoiseThreshold = f.noise
		case "top-n":
			c.TopN = f.topN
		case "dpi":
			c.DPI = f.dpi
		case "parallel":
			c.Parallel = f.parallel
		case "log-level":
			c.LogLevel = f.logLevel
		case "xlsx":
			c.XLSXPath = f.xlsx
		case "summary-json":
			c.SummaryJSON = f.summary
		}
	})
}

// Resolve builds the effective configuration: defaults, then the YAML file, then env, then flags.
func Resolve(fs *flag.FlagSet, f *Flags) (*Config, error) {
	c := Default()
	if f.ConfigPath != "" {
		if err := c.LoadFile(f.ConfigPath); err != nil {
			return nil, err
		}
	}
	if err := c.LoadEnv(f.EnvFile); err != nil {
		return nil, err
	}
	f.Apply(fs, c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.InputPath) == "":
		return fmt.Errorf("%w: input path is empty", ErrInvalid)
	case strings.TrimSpace(c.WorldEntity) == "":
		return fmt.Errorf("%w: world entity is empty", ErrInvalid)
	case len(c.FocusEntities) == 0:
		return fmt.Errorf("%w: no focus entities", ErrInvalid)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be >= 1 (got %d)", ErrInvalid, c.TopN)
	case c.NoiseThreshold < 0:
		return fmt.Errorf("%w: noise_threshold must be >= 0 (got %g)", ErrInvalid, c.NoiseThreshold)
	case c.DPI < 36:
		return fmt.Errorf("%w: dpi must be >= 36 (got %g)", ErrInvalid, c.DPI)
	case c.Parallel < 1:
		return fmt.Errorf("%w: parallel must be >= 1 (got %d)", ErrInvalid, c.Parallel)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if len(c.Sources) > 0 {
		s := c.Schema()
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		c.Sources = s.Sources
	}
	return nil
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
