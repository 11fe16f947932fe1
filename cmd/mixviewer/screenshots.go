package main

import (
	"fmt"

	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/charts"
	"github.com/iafilius/EnergyMix/src/config"
	"github.com/iafilius/EnergyMix/src/dataset"
)

// RunScreenshotsMode renders every figure at dpi and writes them as PNGs under outDir.
// It runs headlessly without creating a UI window.
func RunScreenshotsMode(cfg *config.Config, outDir string, dpi float64) error {
	tbl, err := dataset.Load(cfg.InputPath, cfg.Schema())
	if err != nil {
		return err
	}
	v, err := analysis.Build(tbl, analysis.Options{
		WorldEntity:    cfg.WorldEntity,
		FocusEntities:  cfg.FocusEntities,
		NoiseThreshold: cfg.NoiseThreshold,
		TopN:           cfg.TopN,
	})
	if err != nil {
		return err
	}
	rep := charts.Render(v, charts.Options{OutDir: outDir, DPI: dpi, Parallel: cfg.Parallel})
	if err := rep.Err(); err != nil {
		return fmt.Errorf("screenshots: %w", err)
	}
	return nil
}
