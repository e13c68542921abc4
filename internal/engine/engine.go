package engine

import (
	"github.com/veriguard/veriguard/internal/models"
)

// Evaluate runs the full classification pipeline for one check: mode
// detection, waiver normalization, bucketing, and verdict assembly.
// It is a pure function of (configuration, findings); identical inputs
// produce identical verdicts, which is what makes external caching of
// results safe and advisory.
func Evaluate(cfg *models.CheckConfig, findings []models.Finding) *models.Verdict {
	mode := DetectMode(cfg.Requirements, cfg.Waivers)
	wm := ParseWaivers(cfg.Waivers.WaiveItems)
	buckets := Classify(mode, findings, cfg.Requirements, wm)
	return Build(mode, cfg.Requirements.Value, buckets, wm, cfg.Waivers.Value.IsZero())
}
