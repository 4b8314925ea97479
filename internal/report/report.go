package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"plandrift/internal/driftcheck"
	"plandrift/internal/storage"
)

// OutputFormatType defines the format types for reports.
type OutputFormatType string

const (
	// OutputFormatTypeJSON represents JSON output format
	OutputFormatTypeJSON OutputFormatType = "JSON"
	// OutputFormatTypeTABLE represents table output format
	OutputFormatTypeTABLE OutputFormatType = "TABLE"
)

// ParseFormat converts a flag value to an OutputFormatType. Anything other
// than "json" falls back to the table format.
func ParseFormat(s string) OutputFormatType {
	if strings.EqualFold(s, "json") {
		return OutputFormatTypeJSON
	}
	return OutputFormatTypeTABLE
}

// PrintReport writes the analysis of a single plan using the specified output format.
func PrintReport(w io.Writer, result *driftcheck.DriftResult, format OutputFormatType) error {
	switch format {
	case OutputFormatTypeJSON:
		return printJSON(w, result)
	case OutputFormatTypeTABLE:
		return printResultTable(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrintDiff writes a plan comparison. The table format prints the unified diff
// with added and removed lines coloured.
func PrintDiff(w io.Writer, diff *driftcheck.DiffResult, format OutputFormatType) error {
	switch format {
	case OutputFormatTypeJSON:
		return printJSON(w, diff)
	case OutputFormatTypeTABLE:
		return printDiffText(w, diff)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrintHistory writes the stored scans of a repository, newest first.
func PrintHistory(w io.Writer, records []*storage.PlanRecord, format OutputFormatType) error {
	switch format {
	case OutputFormatTypeJSON:
		return printJSON(w, historyView(records))
	case OutputFormatTypeTABLE:
		return printHistoryTable(w, records)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling report to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printResultTable(w io.Writer, result *driftcheck.DriftResult) error {
	fmt.Fprintf(w, "\nTARGET:  %s\n", result.RepoIdentifier)
	fmt.Fprintf(w, "STATUS:  %s\n", result.Status)
	fmt.Fprintf(w, "RISK:    %s\n", riskColor(result.RiskLevel).Sprint(result.RiskLevel))
	fmt.Fprintf(w, "IMPACT:  %s\n\n", result.Impact)

	table := newTable(w)
	if len(result.Resources) > 0 {
		table.SetHeader([]string{"Action", "Resource", "Details"})
		for _, rc := range result.Resources {
			table.Append([]string{string(rc.Action), rc.Name, strings.Join(rc.Details, "; ")})
		}
		table.Render()
		fmt.Fprintln(w)
	} else if len(result.Changes) > 0 {
		table.SetHeader([]string{"Change"})
		for _, c := range result.Changes {
			table.Append([]string{c})
		}
		table.Render()
		fmt.Fprintln(w)
	}

	for _, rec := range result.Recommendations {
		fmt.Fprintf(w, "* %s\n", rec)
	}

	drift := "no"
	if result.DriftDetected {
		drift = "yes"
	}
	_, err := fmt.Fprintf(w, "\nSummary: %d changes, drift detected: %s\n", result.TotalChanges, drift)
	return err
}

func printDiffText(w io.Writer, diff *driftcheck.DiffResult) error {
	if len(diff.UnifiedDiffLines) == 0 {
		_, err := fmt.Fprintf(w, "No differences between %s and %s\n", diff.FromIdentifier, diff.ToIdentifier)
		return err
	}

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	header := color.New(color.Bold)

	for _, line := range diff.UnifiedDiffLines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			header.Fprintln(w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			added.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func printHistoryTable(w io.Writer, records []*storage.PlanRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No scans recorded")
		return err
	}

	table := newTable(w)
	table.SetHeader([]string{"Plan ID", "Timestamp", "Drift", "Changes", "Risk"})
	for _, r := range records {
		table.Append([]string{
			r.PlanID,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatBool(r.DriftDetected),
			strconv.Itoa(r.ChangesDetected),
			r.RiskLevel,
		})
	}
	table.Render()
	return nil
}

type historyEntry struct {
	PlanID          string    `json:"plan_id"`
	Timestamp       time.Time `json:"timestamp"`
	DriftDetected   bool      `json:"drift_detected"`
	ChangesDetected int       `json:"changes_detected"`
	ChangeSummary   []string  `json:"change_summary"`
	RiskLevel       string    `json:"risk_level"`
}

// historyView drops plan content, which can be up to a megabyte per record.
func historyView(records []*storage.PlanRecord) []historyEntry {
	out := make([]historyEntry, 0, len(records))
	for _, r := range records {
		out = append(out, historyEntry{
			PlanID:          r.PlanID,
			Timestamp:       r.Timestamp,
			DriftDetected:   r.DriftDetected,
			ChangesDetected: r.ChangesDetected,
			ChangeSummary:   r.ChangeSummary,
			RiskLevel:       r.RiskLevel,
		})
	}
	return out
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator(" ")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func riskColor(level driftcheck.RiskLevel) *color.Color {
	switch level {
	case driftcheck.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case driftcheck.RiskMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// DefaultPrinter is the default implementation of the report printer
type DefaultPrinter struct{}

// PrintReport implements the printer interface
func (p DefaultPrinter) PrintReport(w io.Writer, result *driftcheck.DriftResult, format OutputFormatType) error {
	return PrintReport(w, result, format)
}

// PrintDiff implements the printer interface
func (p DefaultPrinter) PrintDiff(w io.Writer, diff *driftcheck.DiffResult, format OutputFormatType) error {
	return PrintDiff(w, diff, format)
}

// PrintHistory implements the printer interface
func (p DefaultPrinter) PrintHistory(w io.Writer, records []*storage.PlanRecord, format OutputFormatType) error {
	return PrintHistory(w, records, format)
}
