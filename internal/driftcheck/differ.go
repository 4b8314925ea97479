package driftcheck

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	changedAttribute = regexp.MustCompile(`^\s*~\s+"?([^"=\s]+)"?\s*=\s*(.+?)\s+->\s+(.+?)\s*$`)
	addedAttribute   = regexp.MustCompile(`^\s*\+\s+"?([^"=\s]+)"?\s*=\s*(.+?)\s*$`)
	removedAttribute = regexp.MustCompile(`^\s*-\s+"?([^"=\s]+)"?\s*=\s*(.+?)\s*$`)

	forcesReplacement = regexp.MustCompile(`\s+#\s*forces replacement\s*$`)
)

const upToDateSummary = "No changes. Infrastructure matches the configuration."

// AnalyzeResources walks the plan body resource by resource and extracts
// attribute-level changes. It is more verbose than Classify and is only run
// when a caller asks for the detailed view.
func AnalyzeResources(text string) *ResourceAnalysis {
	lines := Normalize(text)
	scan := scanPlan(lines)
	if scan.noOp() {
		return upToDateAnalysis()
	}

	class := classifyScan(scan)
	analysis := &ResourceAnalysis{
		Resources: diffResources(lines),
		TagOnly:   scan.tagOnly(),
	}

	texts := append([]string{}, class.Changes...)
	for _, rc := range analysis.Resources {
		switch {
		case rc.Action == ActionCreate:
			analysis.ResourcesCreated++
		case rc.Action == ActionUpdate:
			analysis.ResourcesModified++
		case rc.Action.Destructive():
			analysis.ResourcesDestroyed++
		}
		texts = append(texts, rc.Name)
		texts = append(texts, rc.Details...)
	}

	destroyed := analysis.ResourcesDestroyed
	if class.Destroyed > destroyed {
		destroyed = class.Destroyed
	}
	risk := ClassifyRisk(RiskInput{
		ResourcesDestroyed: destroyed,
		TotalChanges:       class.TotalChanges,
		Texts:              texts,
		TagOnly:            analysis.TagOnly,
		Recognized:         class.Strategy != StrategyNone,
	})
	analysis.RiskLevel = risk.Level
	analysis.Impact = risk.Impact
	analysis.Recommendations = risk.Recommendations
	analysis.Summary = renderSummary(analysis)

	return analysis
}

func upToDateAnalysis() *ResourceAnalysis {
	return &ResourceAnalysis{
		Resources:       []ResourceChange{},
		RiskLevel:       RiskLow,
		Impact:          impactUpToDate,
		Recommendations: []string{recommendUpToDate},
		Summary:         upToDateSummary,
	}
}

// resourceBlockParser is the per-block state machine. current is nil while
// outside a block.
type resourceBlockParser struct {
	resources []ResourceChange
	current   *ResourceChange
	depth     int
}

func diffResources(lines []string) []ResourceChange {
	p := &resourceBlockParser{resources: []ResourceChange{}}

	for i, line := range lines {
		if m, ok := parseResourceHeader(line); ok {
			p.flush()
			p.current = &ResourceChange{Name: m.address, Action: m.action, Details: []string{}}
			p.depth = 0
			continue
		}
		if p.current == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// one line of lookahead: a blank line followed by a new header ends the block
			if i+1 < len(lines) {
				if _, ok := parseResourceHeader(lines[i+1]); ok {
					p.flush()
				}
			}
		case trimmed == "}":
			if p.depth <= 1 {
				p.flush()
			} else {
				p.depth--
			}
		default:
			if detail, ok := extractDetail(line); ok {
				p.current.Details = append(p.current.Details, detail)
			}
			if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "[") {
				p.depth++
			} else if strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, "]") {
				p.depth--
			}
		}
	}
	p.flush()

	return p.resources
}

func (p *resourceBlockParser) flush() {
	if p.current == nil {
		return
	}
	p.resources = append(p.resources, *p.current)
	p.current = nil
	p.depth = 0
}

// extractDetail tries the changed, added and removed patterns in that order.
func extractDetail(line string) (string, bool) {
	line = forcesReplacement.ReplaceAllString(line, "")

	if m := changedAttribute.FindStringSubmatch(line); m != nil {
		return fmt.Sprintf("%s: '%s' → '%s'", m[1], unquote(m[2]), unquote(m[3])), true
	}
	if m := addedAttribute.FindStringSubmatch(line); m != nil {
		if opensNested(m[2]) {
			return "", false
		}
		return fmt.Sprintf("Adding %s: %s", m[1], unquote(m[2])), true
	}
	if m := removedAttribute.FindStringSubmatch(line); m != nil {
		value := strings.TrimSuffix(m[2], " -> null")
		if opensNested(value) {
			return "", false
		}
		return fmt.Sprintf("Removing %s: %s", m[1], unquote(value)), true
	}
	return "", false
}

func opensNested(value string) bool {
	return value == "{" || value == "[" || strings.HasSuffix(value, "-> {") || strings.HasSuffix(value, "-> [")
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}

// FormatResourceChange renders one resource as a single line, showing at most
// MaxSummaryDetails details.
func FormatResourceChange(rc ResourceChange) string {
	line := fmt.Sprintf("%s %s", rc.Action, rc.Name)
	if len(rc.Details) == 0 {
		return line
	}
	shown := rc.Details
	if len(shown) > MaxSummaryDetails {
		shown = shown[:MaxSummaryDetails]
	}
	line += ": " + strings.Join(shown, "; ")
	if extra := len(rc.Details) - len(shown); extra > 0 {
		line += fmt.Sprintf(" (+%d more)", extra)
	}
	return line
}

func renderSummary(a *ResourceAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk: %s\n", a.RiskLevel)
	fmt.Fprintf(&b, "Impact: %s\n", a.Impact)
	fmt.Fprintf(&b, "Resources: %d to create, %d to modify, %d to destroy or replace\n",
		a.ResourcesCreated, a.ResourcesModified, a.ResourcesDestroyed)
	for _, rc := range a.Resources {
		fmt.Fprintf(&b, "- %s\n", FormatResourceChange(rc))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
