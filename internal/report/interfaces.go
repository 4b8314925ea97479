package report

import (
	"io"

	"plandrift/internal/driftcheck"
	"plandrift/internal/storage"
)

// IPrinter is the interface for generating reports
type IPrinter interface {
	PrintReport(w io.Writer, result *driftcheck.DriftResult, format OutputFormatType) error
	PrintDiff(w io.Writer, diff *driftcheck.DiffResult, format OutputFormatType) error
	PrintHistory(w io.Writer, records []*storage.PlanRecord, format OutputFormatType) error
}
