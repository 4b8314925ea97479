package driftcheck

import "fmt"

// Strategy names the cascade rule that produced a Classification.
type Strategy string

const (
	StrategyNoOp            Strategy = "no_op"
	StrategySummary         Strategy = "summary"
	StrategyResourcePhrases Strategy = "resource_phrases"
	StrategySymbols         Strategy = "symbols"
	StrategyNone            Strategy = "none"
)

// GenericChangeLabel is emitted when only change symbols were found.
const GenericChangeLabel = "Infrastructure changes detected"

// Classification is the drift decision and change count for one plan.
// DriftDetected is always TotalChanges > 0.
type Classification struct {
	Strategy      Strategy
	DriftDetected bool
	TotalChanges  int
	Changes       []string
	// Destroyed counts resources that will be destroyed or replaced.
	Destroyed int
}

// strategyFunc returns ok=false when its rule has nothing to say about the plan.
type strategyFunc func(scan *planScan) (Classification, bool)

type cascadeStep struct {
	name  Strategy
	apply strategyFunc
}

// cascade is evaluated in order; the first rule that matches wins.
var cascade = []cascadeStep{
	{StrategyNoOp, noOpStrategy},
	{StrategySummary, summaryStrategy},
	{StrategyResourcePhrases, resourcePhraseStrategy},
	{StrategySymbols, symbolStrategy},
}

// Classify runs the detection cascade over plan text.
func Classify(text string) Classification {
	return classifyScan(scanPlan(Normalize(text)))
}

// DetectDrift reports whether the plan proposes any change.
func DetectDrift(text string) bool {
	return Classify(text).DriftDetected
}

// CountChanges returns the number of changes and the short labels describing them.
func CountChanges(text string) (int, []string) {
	c := Classify(text)
	return c.TotalChanges, c.Changes
}

func classifyScan(scan *planScan) Classification {
	for _, step := range cascade {
		if c, ok := step.apply(scan); ok {
			c.Strategy = step.name
			c.DriftDetected = c.TotalChanges > 0
			if c.Changes == nil {
				c.Changes = []string{}
			}
			return c
		}
	}
	return Classification{Strategy: StrategyNone, Changes: []string{}}
}

func noOpStrategy(scan *planScan) (Classification, bool) {
	if !scan.noOp() {
		return Classification{}, false
	}
	return Classification{}, true
}

func summaryStrategy(scan *planScan) (Classification, bool) {
	if scan.summary == nil {
		return Classification{}, false
	}
	s := scan.summary
	c := Classification{TotalChanges: s.total(), Destroyed: s.destroy}
	if s.add > 0 {
		c.Changes = append(c.Changes, fmt.Sprintf("Add: %d resources", s.add))
	}
	if s.change > 0 {
		c.Changes = append(c.Changes, fmt.Sprintf("Change: %d resources", s.change))
	}
	if s.destroy > 0 {
		c.Changes = append(c.Changes, fmt.Sprintf("Destroy: %d resources", s.destroy))
	}
	// headers seen in the body still count as destructive even if the footer disagrees
	if d := scan.destructiveActions(); d > c.Destroyed {
		c.Destroyed = d
	}
	return c, true
}

func resourcePhraseStrategy(scan *planScan) (Classification, bool) {
	if len(scan.actions) == 0 {
		return Classification{}, false
	}
	c := Classification{
		TotalChanges: len(scan.actions),
		Destroyed:    scan.destructiveActions(),
	}
	for _, m := range scan.actions {
		if len(c.Changes) == MaxChangeLabels {
			break
		}
		c.Changes = append(c.Changes, fmt.Sprintf("%s: %s", actionLabels[m.action], m.address))
	}
	return c, true
}

func symbolStrategy(scan *planScan) (Classification, bool) {
	if scan.symbolLines == 0 {
		return Classification{}, false
	}
	return Classification{
		TotalChanges: scan.symbolLines,
		Changes:      []string{GenericChangeLabel},
	}, true
}
