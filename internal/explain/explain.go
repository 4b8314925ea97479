// Package explain turns a plan into a human-readable explanation.
package explain

import (
	"context"
	"fmt"
	"strings"

	"plandrift/internal/driftcheck"
)

// SourceFallback marks explanations rendered locally from the analysis.
const SourceFallback = "fallback"

const analysisFailedText = "Failed to analyze plan; manual review required."

// Explanation is the text shown to users alongside the structured analysis.
type Explanation struct {
	Source   string                       `json:"source"`
	Text     string                       `json:"text"`
	Result   *driftcheck.DriftResult      `json:"result"`
	Analysis *driftcheck.ResourceAnalysis `json:"analysis,omitempty"`
}

// Explainer produces an explanation for a plan
type Explainer interface {
	Explain(ctx context.Context, target, planText string) (*Explanation, error)
}

// FallbackExplainer renders the detailed analysis as plain text. It is used
// whenever no text-generation service is available and never fails.
type FallbackExplainer struct{}

// Explain implements Explainer.
func (FallbackExplainer) Explain(_ context.Context, target, planText string) (*Explanation, error) {
	result, analysis, err := driftcheck.AnalyzePlanDetailed(planText, target)
	if err != nil {
		return &Explanation{
			Source: SourceFallback,
			Text:   analysisFailedText,
			Result: driftcheck.FallbackResult(target),
		}, nil
	}

	return &Explanation{
		Source:   SourceFallback,
		Text:     render(target, result, analysis),
		Result:   result,
		Analysis: analysis,
	}, nil
}

func render(target string, result *driftcheck.DriftResult, analysis *driftcheck.ResourceAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan analysis for %s\n\n", target)
	b.WriteString(analysis.Summary)
	b.WriteString("\n")

	if len(result.Changes) > 0 {
		fmt.Fprintf(&b, "\nChanges (%d total):\n", result.TotalChanges)
		for _, c := range result.Changes {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if len(analysis.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range analysis.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
