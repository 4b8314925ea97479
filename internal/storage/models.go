package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"plandrift/internal/driftcheck"
)

// ErrNotFound is returned (wrapped) when a plan id has no stored record.
var ErrNotFound = errors.New("plan not found")

// planIDSeparator splits the target from the timestamp in a plan id.
const planIDSeparator = "#"

// PlanRecord is one analysed plan as persisted by every Store.
type PlanRecord struct {
	PlanID          string    `json:"plan_id"`
	RepoName        string    `json:"repo_name"`
	Timestamp       time.Time `json:"timestamp"`
	PlanContent     string    `json:"plan_content"`
	DriftDetected   bool      `json:"drift_detected"`
	ChangesDetected int       `json:"changes_detected"`
	ChangeSummary   []string  `json:"change_summary"`
	RiskLevel       string    `json:"risk_level"`
}

// TimestampLayout is RFC3339 with a fixed-width nanosecond fraction, so
// stored timestamps sort lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewPlanID builds the opaque "<target>#<RFC3339Nano UTC timestamp>" key.
func NewPlanID(target string, t time.Time) string {
	return target + planIDSeparator + t.UTC().Format(time.RFC3339Nano)
}

// RepoFromPlanID returns the target part of a plan id.
func RepoFromPlanID(planID string) (string, error) {
	idx := strings.LastIndex(planID, planIDSeparator)
	if idx <= 0 {
		return "", fmt.Errorf("malformed plan id %q", planID)
	}
	return planID[:idx], nil
}

// NewPlanRecord shapes an analysis result and its raw text for storage.
// The record timestamp is the result's ScannedAt.
func NewPlanRecord(planID string, result *driftcheck.DriftResult, content string) *PlanRecord {
	summary := result.Changes
	if summary == nil {
		summary = []string{}
	}
	return &PlanRecord{
		PlanID:          planID,
		RepoName:        result.RepoIdentifier,
		Timestamp:       result.ScannedAt.UTC(),
		PlanContent:     content,
		DriftDetected:   result.DriftDetected,
		ChangesDetected: result.TotalChanges,
		ChangeSummary:   summary,
		RiskLevel:       string(result.RiskLevel),
	}
}

// Validate rejects records no store can index.
func (r *PlanRecord) Validate() error {
	if r == nil {
		return errors.New("plan record is nil")
	}
	if r.PlanID == "" {
		return errors.New("plan record has no plan id")
	}
	if r.RepoName == "" {
		return fmt.Errorf("plan record %s has no repo name", r.PlanID)
	}
	return nil
}
