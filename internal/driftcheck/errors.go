package driftcheck

import (
	"errors"
	"fmt"
)

// Error categories for analysis failures
const (
	// ErrInvalidInput represents validation errors in input parameters
	ErrInvalidInput = "invalid_input"

	// ErrAnalysisFailed represents an unexpected failure while parsing plan text
	ErrAnalysisFailed = "analysis_failed"

	// ErrPlanTooLarge is returned by ingestion callers that enforce a size limit
	ErrPlanTooLarge = "plan_too_large"
)

// AnalysisError represents an error that occurred while analyzing plan text.
type AnalysisError struct {
	// Category helps with programmatic error handling
	Category string

	// Message provides human-readable details
	Message string

	// Target identifies the repository or workspace being analyzed (if known)
	Target string

	// Underlying is the wrapped cause of this error
	Underlying error
}

// Error returns the error message
func (e *AnalysisError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s (target: %s)", e.Category, e.Message, e.Target)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying error (for errors.Is/As support)
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// NewAnalysisError creates a new error with the given category and details
func NewAnalysisError(category, message, target string, underlying error) *AnalysisError {
	return &AnalysisError{
		Category:   category,
		Message:    message,
		Target:     target,
		Underlying: underlying,
	}
}

// IsErrorCategory checks if an error belongs to a specific error category
func IsErrorCategory(err error, category string) bool {
	if err == nil {
		return false
	}

	var e *AnalysisError
	if errors.As(err, &e) {
		return e.Category == category
	}

	return false
}

// recoverAnalysis turns a panic raised while parsing into an analysis_failed error.
func recoverAnalysis(target string, errp *error) {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		*errp = NewAnalysisError(ErrAnalysisFailed, fmt.Sprintf("panic during analysis: %v", r), target, err)
	}
}
