package orchestrator

import (
	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
)

// Config contains all the parameters needed for a scan.
type Config struct {
	Targets      []*config.Target // Targets to scan on every Run
	Concurrency  int              // Maximum number of concurrent target scans (0 = unlimited)
	MaxPlanBytes int              // Plans larger than this are rejected before analysis
}

// ConfigFrom extracts the orchestrator settings from a loaded scan file.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Targets:      cfg.Targets,
		Concurrency:  cfg.Concurrency,
		MaxPlanBytes: cfg.MaxPlanBytes,
	}
}

// ScanResult contains the outcome of scanning a single target.
type ScanResult struct {
	Target   string
	PlanID   string
	HasDrift bool
	Fallback bool // analysis failed and the canned result was stored
	Alerted  bool
	Error    error
	Result   *driftcheck.DriftResult
}
