package notify

import (
	"fmt"
	"strings"

	"plandrift/internal/driftcheck"
)

// Alert is one drift notification for one scanned plan.
type Alert struct {
	PlanID     string
	Result     *driftcheck.DriftResult
	Recipients []string
}

// Subject is the one-line headline used for email subjects and chat titles.
func (a Alert) Subject() string {
	return fmt.Sprintf("[plandrift] %s risk drift detected in %s", a.Result.RiskLevel, a.Result.RepoIdentifier)
}

// Text renders the alert body.
func (a Alert) Text() string {
	r := a.Result

	var b strings.Builder
	fmt.Fprintf(&b, "Drift detected in %s (plan %s)\n", r.RepoIdentifier, a.PlanID)
	fmt.Fprintf(&b, "Risk: %s\n", r.RiskLevel)
	fmt.Fprintf(&b, "Impact: %s\n", r.Impact)

	fmt.Fprintf(&b, "\nChanges (%d total):\n", r.TotalChanges)
	for _, c := range r.Changes {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	return b.String()
}
