package driftcheck

// AnalyzePlan converts raw plan text into a DriftResult for the given target.
// ScannedAt is left zero; callers stamp it when they persist the result.
// The returned error is only ever an analysis_failed *AnalysisError.
func AnalyzePlan(text, target string) (result *DriftResult, err error) {
	defer recoverAnalysis(target, &err)

	scan := scanPlan(Normalize(text))
	class := classifyScan(scan)

	var texts []string
	if !scan.noOp() {
		texts = append(texts, class.Changes...)
		for _, m := range scan.actions {
			texts = append(texts, m.address)
		}
	}

	risk := ClassifyRisk(RiskInput{
		ResourcesDestroyed: class.Destroyed,
		TotalChanges:       class.TotalChanges,
		Texts:              texts,
		TagOnly:            scan.tagOnly(),
		Recognized:         class.Strategy != StrategyNone,
	})

	return newResult(target, class, risk), nil
}

// analyzeResources is swapped out by tests.
var analyzeResources = AnalyzeResources

// AnalyzePlanDetailed is AnalyzePlan plus the per-resource breakdown. The
// result's Resources field holds the first MaxResources parsed resources and
// its risk rating is taken from the detailed analysis.
func AnalyzePlanDetailed(text, target string) (result *DriftResult, analysis *ResourceAnalysis, err error) {
	// runs after recoverAnalysis so a recovered panic never leaks a partial result
	defer func() {
		if err != nil {
			result, analysis = nil, nil
		}
	}()
	defer recoverAnalysis(target, &err)

	result, err = AnalyzePlan(text, target)
	if err != nil {
		return nil, nil, err
	}

	analysis = analyzeResources(text)
	result.Resources = analysis.Resources
	if len(result.Resources) > MaxResources {
		result.Resources = result.Resources[:MaxResources]
	}
	result.RiskLevel = analysis.RiskLevel
	result.Impact = analysis.Impact
	result.Recommendations = analysis.Recommendations

	return result, analysis, nil
}

// FallbackResult is the canned result callers use when analysis fails.
func FallbackResult(target string) *DriftResult {
	return &DriftResult{
		RepoIdentifier:  target,
		Changes:         []string{},
		RiskLevel:       RiskMedium,
		Impact:          impactUnknown,
		Recommendations: []string{recommendManual},
		Status:          StatusNoDrift,
	}
}

func newResult(target string, class Classification, risk RiskAssessment) *DriftResult {
	changes := class.Changes
	if len(changes) > MaxChangeLabels {
		changes = changes[:MaxChangeLabels]
	}

	status := StatusNoDrift
	if class.DriftDetected {
		status = StatusDriftDetected
	}

	return &DriftResult{
		RepoIdentifier:  target,
		DriftDetected:   class.DriftDetected,
		Changes:         changes,
		TotalChanges:    class.TotalChanges,
		RiskLevel:       risk.Level,
		Impact:          risk.Impact,
		Recommendations: risk.Recommendations,
		Status:          status,
	}
}
