package driftcheck

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ComparePlans produces a zero-context unified diff between two stored plan
// texts, truncated to MaxDiffLines lines. The texts are compared as stored;
// no ANSI stripping happens here.
func ComparePlans(textA, labelA, textB, labelB string) *DiffResult {
	result := &DiffResult{
		FromIdentifier:   labelA,
		ToIdentifier:     labelB,
		UnifiedDiffLines: []string{},
	}
	if textA == textB {
		return result
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitPlanLines(textA),
		B:        splitPlanLines(textB),
		FromFile: labelA,
		ToFile:   labelB,
		Context:  0,
	})
	if err != nil || diff == "" {
		return result
	}

	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	if len(lines) > MaxDiffLines {
		lines = lines[:MaxDiffLines]
	}
	result.UnifiedDiffLines = lines
	return result
}

// splitPlanLines splits on line breaks keeping the terminator, which is what
// difflib expects when it writes hunks back out.
func splitPlanLines(text string) []string {
	if text == "" {
		return []string{}
	}
	return difflib.SplitLines(text)
}
