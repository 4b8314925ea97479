package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plandrift/internal/driftcheck"
	"plandrift/internal/storage"
)

var _ IPrinter = DefaultPrinter{}

func init() {
	color.NoColor = true
}

const destroyPlan = `Terraform will perform the following actions:

  # aws_iam_role.legacy will be destroyed
  - resource "aws_iam_role" "legacy" {
      - name = "legacy" -> null
    }

Plan: 0 to add, 0 to change, 1 to destroy.
`

func TestParseFormat(t *testing.T) {
	assert.Equal(t, OutputFormatTypeJSON, ParseFormat("json"))
	assert.Equal(t, OutputFormatTypeJSON, ParseFormat("JSON"))
	assert.Equal(t, OutputFormatTypeTABLE, ParseFormat("table"))
	assert.Equal(t, OutputFormatTypeTABLE, ParseFormat(""))
}

func TestPrintReport(t *testing.T) {
	result, _, err := driftcheck.AnalyzePlanDetailed(destroyPlan, "identity")
	require.NoError(t, err)

	tests := []struct {
		name     string
		format   OutputFormatType
		contains []string
		wantErr  bool
	}{
		{
			name:   "Table",
			format: OutputFormatTypeTABLE,
			contains: []string{
				"TARGET:  identity",
				"RISK:    HIGH",
				"DESTROY",
				"aws_iam_role.legacy",
				"Removing name: legacy",
				"Summary: 1 changes, drift detected: yes",
			},
		},
		{
			name:     "JSON",
			format:   OutputFormatTypeJSON,
			contains: []string{`"repo_identifier": "identity"`, `"risk_level": "HIGH"`},
		},
		{
			name:    "Unsupported",
			format:  "XML",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := PrintReport(&buf, result, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintReport_ChangesWithoutResources(t *testing.T) {
	result, err := driftcheck.AnalyzePlan("Plan: 2 to add, 0 to change, 0 to destroy.", "network")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintReport(&buf, result, OutputFormatTypeTABLE))
	assert.Contains(t, buf.String(), "Add: 2 resources")
}

func TestPrintDiff(t *testing.T) {
	diff := driftcheck.ComparePlans("a\nb\n", "old", "a\nc\n", "new")

	var buf bytes.Buffer
	require.NoError(t, DefaultPrinter{}.PrintDiff(&buf, diff, OutputFormatTypeTABLE))
	assert.Contains(t, buf.String(), "--- old")
	assert.Contains(t, buf.String(), "+++ new")
	assert.Contains(t, buf.String(), "-b")
	assert.Contains(t, buf.String(), "+c")

	buf.Reset()
	same := driftcheck.ComparePlans("a\n", "old", "a\n", "new")
	require.NoError(t, PrintDiff(&buf, same, OutputFormatTypeTABLE))
	assert.Equal(t, "No differences between old and new\n", buf.String())
}

func TestPrintHistory(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []*storage.PlanRecord{
		{
			PlanID:          storage.NewPlanID("network", ts),
			RepoName:        "network",
			Timestamp:       ts,
			PlanContent:     "Plan: 1 to add, 0 to change, 0 to destroy.",
			DriftDetected:   true,
			ChangesDetected: 1,
			ChangeSummary:   []string{"Add: 1 resources"},
			RiskLevel:       "LOW",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, records, OutputFormatTypeTABLE))
	assert.Contains(t, buf.String(), "network#2024-03-01T12:00:00Z")
	assert.Contains(t, buf.String(), "true")

	buf.Reset()
	require.NoError(t, PrintHistory(&buf, records, OutputFormatTypeJSON))
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "plan_content")
	assert.Equal(t, "LOW", entries[0]["risk_level"])

	buf.Reset()
	require.NoError(t, PrintHistory(&buf, nil, OutputFormatTypeTABLE))
	assert.Equal(t, "No scans recorded\n", buf.String())
}
