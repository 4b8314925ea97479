package driftcheck

import "time"

// Action is the change a plan proposes for a single resource.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDestroy Action = "DESTROY"
	ActionReplace Action = "REPLACE"
)

// Destructive reports whether the action removes the existing resource.
func (a Action) Destructive() bool {
	return a == ActionDestroy || a == ActionReplace
}

// RiskLevel is the coarse rating attached to every analysis.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Status mirrors DriftDetected as a string for dashboards.
type Status string

const (
	StatusNoDrift       Status = "no_drift"
	StatusDriftDetected Status = "drift_detected"
)

const (
	// MaxChangeLabels caps DriftResult.Changes.
	MaxChangeLabels = 10
	// MaxResources caps DriftResult.Resources.
	MaxResources = 5
	// MaxSummaryDetails caps the details rendered per resource in a summary string.
	MaxSummaryDetails = 3
	// MaxDiffLines caps DiffResult.UnifiedDiffLines.
	MaxDiffLines = 100
)

// ResourceChange is one resource block parsed out of the plan body.
type ResourceChange struct {
	Name    string   `json:"name"`
	Action  Action   `json:"action"`
	Details []string `json:"details"`
}

// DriftResult is the structured record produced for one scan of one target.
type DriftResult struct {
	RepoIdentifier  string           `json:"repo_identifier"`
	DriftDetected   bool             `json:"drift_detected"`
	Changes         []string         `json:"changes"`
	TotalChanges    int              `json:"total_changes"`
	Resources       []ResourceChange `json:"resources,omitempty"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Impact          string           `json:"impact"`
	Recommendations []string         `json:"recommendations"`
	Status          Status           `json:"status"`
	ScannedAt       time.Time        `json:"scanned_at"`
}

// DiffResult is the line-level comparison of two stored plans.
type DiffResult struct {
	FromIdentifier   string   `json:"from_identifier"`
	ToIdentifier     string   `json:"to_identifier"`
	UnifiedDiffLines []string `json:"unified_diff_lines"`
}

// ResourceAnalysis is the output of the attribute differ.
type ResourceAnalysis struct {
	Resources          []ResourceChange `json:"resources"`
	ResourcesCreated   int              `json:"resources_created"`
	ResourcesModified  int              `json:"resources_modified"`
	ResourcesDestroyed int              `json:"resources_destroyed"`
	TagOnly            bool             `json:"tag_only"`
	RiskLevel          RiskLevel        `json:"risk_level"`
	Impact             string           `json:"impact"`
	Recommendations    []string         `json:"recommendations"`
	Summary            string           `json:"summary"`
}
