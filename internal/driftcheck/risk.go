package driftcheck

import (
	"fmt"
	"strings"
)

const (
	impactUnknown  = "Unknown impact - manual review required"
	impactUpToDate = "No impact - infrastructure is up to date"
	impactNoSignal = "No recognizable changes - manual review required"

	recommendBackup      = "Back up data held by resources that will be destroyed or replaced before applying"
	recommendReviewScope = "Review security and policy changes with the owning team before applying"
	recommendBilling     = "Tag-only changes: check cost allocation and billing reports that rely on these tags"
	recommendRerun       = "Re-run plan immediately before apply to confirm the change set"
	recommendUpToDate    = "Infrastructure is up to date; no action required"
	recommendManual      = "No recognizable plan output found; manual review required"
)

var sensitiveKeywords = []string{"security", "policy"}

// RiskInput is what the risk classifier looks at.
type RiskInput struct {
	ResourcesDestroyed int
	TotalChanges       int
	// Texts are change labels, resource addresses and attribute details.
	Texts   []string
	TagOnly bool
	// Recognized is false when no cascade rule matched the plan at all.
	Recognized bool
}

// RiskAssessment is the rating plus presentation strings derived from it.
type RiskAssessment struct {
	Level           RiskLevel
	Impact          string
	Recommendations []string
}

// ClassifyRisk rates a plan. Rules are evaluated in order, first match wins:
// destroyed resources are HIGH, security/policy mentions are MEDIUM, anything
// else is LOW.
func ClassifyRisk(in RiskInput) RiskAssessment {
	level := RiskLow
	switch {
	case in.ResourcesDestroyed > 0:
		level = RiskHigh
	case mentionsSensitive(in.Texts):
		level = RiskMedium
	}

	return RiskAssessment{
		Level:           level,
		Impact:          describeImpact(level, in),
		Recommendations: recommend(level, in),
	}
}

func mentionsSensitive(texts []string) bool {
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, kw := range sensitiveKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func describeImpact(level RiskLevel, in RiskInput) string {
	switch {
	case level == RiskHigh:
		return fmt.Sprintf("High impact - %d resource(s) will be destroyed or replaced", in.ResourcesDestroyed)
	case level == RiskMedium:
		return fmt.Sprintf("Medium impact - %d change(s) touch security or policy settings", in.TotalChanges)
	case in.TotalChanges > 0 && in.TagOnly:
		return "Low impact - tag-only changes"
	case in.TotalChanges > 0:
		return fmt.Sprintf("Low impact - %d change(s) to infrastructure", in.TotalChanges)
	case in.Recognized:
		return impactUpToDate
	default:
		return impactNoSignal
	}
}

func recommend(level RiskLevel, in RiskInput) []string {
	var recs []string
	if in.ResourcesDestroyed > 0 {
		recs = append(recs, recommendBackup)
	}
	if level == RiskMedium {
		recs = append(recs, recommendReviewScope)
	}
	if in.TagOnly && in.TotalChanges > 0 {
		recs = append(recs, recommendBilling)
	}
	switch {
	case in.TotalChanges > 0:
		recs = append(recs, recommendRerun)
	case in.Recognized:
		recs = append(recs, recommendUpToDate)
	default:
		recs = append(recs, recommendManual)
	}
	return recs
}
