package driftcheck

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	noChangesMarker = "No changes."
	// Older releases print "Infrastructure is up-to-date." instead.
	matchesConfigMarker = "Your infrastructure matches the configuration"
	upToDateMarker      = "Infrastructure is up-to-date"

	// keeps add+change+destroy from overflowing
	maxSummaryCount = math.MaxInt / 3
)

var (
	summaryLine = regexp.MustCompile(`Plan:\s*(?:\d+\s+to\s+import,\s*)?(\d+)\s+to\s+add,\s*(\d+)\s+to\s+change,\s*(\d+)\s+to\s+destroy`)

	resourceHeader = regexp.MustCompile(`^\s*#\s*(\S+)\s+(?:.*\s)?(will be created|will be updated in-place|will be destroyed|must be replaced)`)

	// attribute lines carrying a change marker: `~ name = value`, `+ "key" = value`
	attributeLine = regexp.MustCompile(`^\s*(?:-/\+|[~+\-])\s+"?([^"=\s]+)"?\s*=\s*(.*?)\s*$`)

	symbolPrefixes = []string{"-/+ ", "~ ", "+ ", "- "}
)

var phraseActions = map[string]Action{
	"will be created":          ActionCreate,
	"will be updated in-place": ActionUpdate,
	"will be destroyed":        ActionDestroy,
	"must be replaced":         ActionReplace,
}

var actionLabels = map[Action]string{
	ActionCreate:  "Create",
	ActionUpdate:  "Update",
	ActionDestroy: "Destroy",
	ActionReplace: "Replace",
}

type planSummary struct {
	add, change, destroy int
}

func (s planSummary) total() int {
	return s.add + s.change + s.destroy
}

type actionMatch struct {
	action  Action
	address string
}

// planScan holds everything the cascade needs, collected in one pass.
type planScan struct {
	noChanges     bool
	matchesConfig bool
	summary       *planSummary
	actions       []actionMatch
	symbolLines   int
	tagLines      int
	otherAttrs    int
}

func (s *planScan) noOp() bool {
	return s.noChanges && s.matchesConfig
}

func (s *planScan) destructiveActions() int {
	n := 0
	for _, m := range s.actions {
		if m.action.Destructive() {
			n++
		}
	}
	return n
}

// tagOnly reports whether every attribute change seen touches tags and no
// resource is being created, destroyed or replaced.
func (s *planScan) tagOnly() bool {
	if s.tagLines == 0 || s.otherAttrs > 0 {
		return false
	}
	for _, m := range s.actions {
		if m.action != ActionUpdate {
			return false
		}
	}
	return true
}

func scanPlan(lines []string) *planScan {
	scan := &planScan{}
	tagDepth := 0

	for _, line := range lines {
		if strings.Contains(line, noChangesMarker) {
			scan.noChanges = true
		}
		if strings.Contains(line, matchesConfigMarker) || strings.Contains(line, upToDateMarker) {
			scan.matchesConfig = true
		}

		if scan.summary == nil {
			if s, ok := parseSummary(line); ok {
				scan.summary = &s
			}
		}

		if m, ok := parseResourceHeader(line); ok {
			scan.actions = append(scan.actions, m)
		}

		symbol := isSymbolLine(line)
		if symbol {
			scan.symbolLines++
		}

		if tagDepth > 0 {
			if symbol && attributeLine.MatchString(line) {
				scan.tagLines++
			}
			tagDepth += braceDelta(line)
			continue
		}

		if !symbol {
			continue
		}
		attr := attributeLine.FindStringSubmatch(line)
		if attr == nil {
			continue
		}
		if isTagAttribute(attr[1]) {
			scan.tagLines++
			if strings.HasSuffix(attr[2], "{") {
				tagDepth = 1
			}
		} else {
			scan.otherAttrs++
		}
	}

	return scan
}

func parseSummary(line string) (planSummary, bool) {
	m := summaryLine.FindStringSubmatch(line)
	if m == nil {
		return planSummary{}, false
	}
	add, err1 := strconv.Atoi(m[1])
	change, err2 := strconv.Atoi(m[2])
	destroy, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return planSummary{}, false
	}
	if add > maxSummaryCount || change > maxSummaryCount || destroy > maxSummaryCount {
		return planSummary{}, false
	}
	return planSummary{add: add, change: change, destroy: destroy}, true
}

// parseResourceHeader matches `# <address> will be created` style lines.
// A header whose address cannot be isolated is skipped.
func parseResourceHeader(line string) (actionMatch, bool) {
	m := resourceHeader.FindStringSubmatch(line)
	if m == nil {
		return actionMatch{}, false
	}
	address := cleanAddress(m[1])
	if address == "" {
		return actionMatch{}, false
	}
	return actionMatch{action: phraseActions[m[2]], address: address}, true
}

// cleanAddress drops leftover colour codes and control characters from a captured address.
func cleanAddress(token string) string {
	token = bareColorCode.ReplaceAllString(token, "")
	token = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, token)
	return strings.TrimSpace(token)
}

func isSymbolLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range symbolPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func isTagAttribute(name string) bool {
	return name == "tags" || name == "tags_all"
}

func braceDelta(line string) int {
	trimmed := strings.TrimSpace(line)
	delta := 0
	if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "[") {
		delta++
	}
	if strings.HasPrefix(trimmed, "}") || strings.HasPrefix(trimmed, "]") {
		delta--
	}
	return delta
}
