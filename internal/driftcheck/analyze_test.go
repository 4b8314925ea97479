package driftcheck

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// colorize wraps a plan the way terraform does on a terminal.
func colorize(text string) string {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{bold, green, yellow, red} {
		c.EnableColor()
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]
		switch {
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = indent + bold.Sprint(trimmed)
		case strings.HasPrefix(trimmed, "+ "):
			lines[i] = indent + green.Sprint("+") + trimmed[1:]
		case strings.HasPrefix(trimmed, "~ "):
			lines[i] = indent + yellow.Sprint("~") + trimmed[1:]
		case strings.HasPrefix(trimmed, "-/+ "):
			lines[i] = indent + red.Sprint("-/+") + trimmed[3:]
		case strings.HasPrefix(trimmed, "- "):
			lines[i] = indent + red.Sprint("-") + trimmed[1:]
		case strings.HasPrefix(trimmed, "No changes."):
			lines[i] = indent + green.Sprint("No changes.") + bold.Sprint(trimmed[11:])
		case strings.HasPrefix(trimmed, "Plan:"):
			lines[i] = bold.Sprint("Plan:") + trimmed[5:] + "\x1b[K"
		}
	}
	return strings.Join(lines, "\n")
}

func TestAnalyzePlan_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		driftDetected bool
		totalChanges  int
		risk          RiskLevel
		status        Status
		changes       []string
	}{
		{
			name:          "Explicit no-op",
			text:          "No changes. Your infrastructure matches the configuration.",
			driftDetected: false,
			totalChanges:  0,
			risk:          RiskLow,
			status:        StatusNoDrift,
			changes:       []string{},
		},
		{
			name:          "Summary with a destroy",
			text:          "Plan: 2 to add, 0 to change, 1 to destroy.",
			driftDetected: true,
			totalChanges:  3,
			risk:          RiskHigh,
			status:        StatusDriftDetected,
			changes:       []string{"Add: 2 resources", "Destroy: 1 resources"},
		},
		{
			name:          "Single update header",
			text:          "# aws_instance.web will be updated in-place",
			driftDetected: true,
			totalChanges:  1,
			risk:          RiskLow,
			status:        StatusDriftDetected,
			changes:       []string{"Update: aws_instance.web"},
		},
		{
			name:          "Symbol line only",
			text:          "  ~ tags = { ... }",
			driftDetected: true,
			totalChanges:  1,
			risk:          RiskLow,
			status:        StatusDriftDetected,
			changes:       []string{GenericChangeLabel},
		},
		{
			name:          "Garbage",
			text:          "\x00\x01 not a plan",
			driftDetected: false,
			totalChanges:  0,
			risk:          RiskLow,
			status:        StatusNoDrift,
			changes:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AnalyzePlan(tt.text, "acme/network")
			require.NoError(t, err)

			assert.Equal(t, "acme/network", result.RepoIdentifier)
			assert.Equal(t, tt.driftDetected, result.DriftDetected)
			assert.Equal(t, tt.totalChanges, result.TotalChanges)
			assert.Equal(t, tt.risk, result.RiskLevel)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.changes, result.Changes)
			assert.Equal(t, result.DriftDetected, result.TotalChanges > 0)
			assert.NotEmpty(t, result.Recommendations)
			assert.Nil(t, result.Resources, "resources are only filled by the detailed path")
			assert.True(t, result.ScannedAt.IsZero(), "scanned_at is stamped by the caller")
		})
	}
}

func TestAnalyzePlan_NoOpMarkerDominates(t *testing.T) {
	text := readFixture(t, "mixed_plan.txt") + "\nNo changes. Your infrastructure matches the configuration.\n"

	result, err := AnalyzePlan(text, "acme/network")
	require.NoError(t, err)

	assert.False(t, result.DriftDetected)
	assert.Equal(t, 0, result.TotalChanges)
	assert.Equal(t, RiskLow, result.RiskLevel)
}

func TestAnalyzePlan_SummaryTotals(t *testing.T) {
	for _, triple := range [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 7, 0}, {4, 2, 9}, {120, 3, 0}} {
		text := fmt.Sprintf("noise\nPlan: %d to add, %d to change, %d to destroy.\nmore noise", triple[0], triple[1], triple[2])

		result, err := AnalyzePlan(text, "t")
		require.NoError(t, err)

		sum := triple[0] + triple[1] + triple[2]
		assert.Equal(t, sum, result.TotalChanges, text)
		assert.Equal(t, sum > 0, result.DriftDetected, text)
		if triple[2] > 0 {
			assert.Equal(t, RiskHigh, result.RiskLevel, text)
		}
	}
}

func TestAnalyzePlan_Idempotent(t *testing.T) {
	text := readFixture(t, "mixed_plan.txt")

	first, err := AnalyzePlan(text, "acme/network")
	require.NoError(t, err)
	second, err := AnalyzePlan(text, "acme/network")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyzePlan_ANSIInsensitive(t *testing.T) {
	for _, fixture := range []string{"mixed_plan.txt", "no_changes.txt", "tags_only.txt", "security_group.txt"} {
		t.Run(fixture, func(t *testing.T) {
			plain := readFixture(t, fixture)
			colored := colorize(plain)
			require.NotEqual(t, plain, colored, "fixture should gain escape sequences")

			want, err := AnalyzePlan(plain, "acme/network")
			require.NoError(t, err)
			got, err := AnalyzePlan(colored, "acme/network")
			require.NoError(t, err)
			assert.Equal(t, want, got)

			wantDetailed, wantAnalysis, err := AnalyzePlanDetailed(plain, "acme/network")
			require.NoError(t, err)
			gotDetailed, gotAnalysis, err := AnalyzePlanDetailed(colored, "acme/network")
			require.NoError(t, err)
			assert.Equal(t, wantDetailed, gotDetailed)
			assert.Equal(t, wantAnalysis, gotAnalysis)
		})
	}
}

func TestAnalyzePlan_DestructiveDominance(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "  # aws_s3_bucket.b%d will be created\n", i)
		fmt.Fprintf(&b, "  # aws_instance.i%d will be updated in-place\n", i)
	}
	b.WriteString("  # aws_db_instance.main must be replaced\n")

	result, err := AnalyzePlan(b.String(), "t")
	require.NoError(t, err)

	assert.Equal(t, 17, result.TotalChanges)
	assert.Len(t, result.Changes, MaxChangeLabels)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	assert.Contains(t, result.Recommendations, recommendBackup)
}

func TestAnalyzePlanDetailed(t *testing.T) {
	result, analysis, err := AnalyzePlanDetailed(readFixture(t, "mixed_plan.txt"), "acme/network")
	require.NoError(t, err)

	assert.True(t, result.DriftDetected)
	assert.Equal(t, 5, result.TotalChanges)
	assert.Equal(t, []string{"Add: 2 resources", "Change: 1 resources", "Destroy: 2 resources"}, result.Changes)
	assert.Len(t, result.Resources, 4)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	assert.Equal(t, analysis.Impact, result.Impact)
}

func TestAnalyzePlanDetailed_CapsResources(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&b, "  # aws_s3_bucket.b%d will be created\n  + resource \"aws_s3_bucket\" \"b%d\" {\n      + bucket = \"b%d\"\n    }\n\n", i, i, i)
	}

	result, analysis, err := AnalyzePlanDetailed(b.String(), "t")
	require.NoError(t, err)

	assert.Len(t, result.Resources, MaxResources)
	assert.Len(t, analysis.Resources, 7)
	assert.Equal(t, 7, analysis.ResourcesCreated)
	assert.Equal(t, 7, result.TotalChanges)
}

func TestFallbackResult(t *testing.T) {
	result := FallbackResult("acme/network")

	assert.Equal(t, "acme/network", result.RepoIdentifier)
	assert.False(t, result.DriftDetected)
	assert.Equal(t, RiskMedium, result.RiskLevel)
	assert.Equal(t, "Unknown impact - manual review required", result.Impact)
	assert.Equal(t, StatusNoDrift, result.Status)
}

func TestAnalyzePlanDetailed_PanicReturnsNoResult(t *testing.T) {
	orig := analyzeResources
	analyzeResources = func(string) *ResourceAnalysis { panic("differ exploded") }
	defer func() { analyzeResources = orig }()

	result, analysis, err := AnalyzePlanDetailed("Plan: 1 to add, 0 to change, 0 to destroy.", "acme/network")

	require.Error(t, err)
	assert.True(t, IsErrorCategory(err, ErrAnalysisFailed))
	assert.Nil(t, result)
	assert.Nil(t, analysis)
}

func TestRecoverAnalysis(t *testing.T) {
	run := func() (err error) {
		defer recoverAnalysis("acme/network", &err)
		panic("boom")
	}

	err := run()

	require.Error(t, err)
	assert.True(t, IsErrorCategory(err, ErrAnalysisFailed))
	assert.Contains(t, err.Error(), "acme/network")
	assert.False(t, IsErrorCategory(nil, ErrAnalysisFailed))
}
