package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
	"plandrift/internal/explain"
	"plandrift/internal/report"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var (
		repo         string
		outputFormat string
		detailed     bool
		explainPlan  bool
		maxBytes     int
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze a saved plan output (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			if repo == "" {
				repo = defaultRepo(path)
			}

			text, err := readPlan(cmd.InOrStdin(), path, maxBytes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if explainPlan {
				exp, err := explain.FallbackExplainer{}.Explain(cmd.Context(), repo, text)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, exp.Text)
				return driftExit(exp.Result)
			}

			var result *driftcheck.DriftResult
			if detailed {
				result, _, err = driftcheck.AnalyzePlanDetailed(text, repo)
			} else {
				result, err = driftcheck.AnalyzePlan(text, repo)
			}
			if err != nil {
				opts.logger.Warn("Analysis failed, using fallback result: %v", err)
				result = driftcheck.FallbackResult(repo)
			}
			result.ScannedAt = time.Now().UTC()

			if err := report.PrintReport(out, result, report.ParseFormat(outputFormat)); err != nil {
				return err
			}
			return driftExit(result)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Repository or workspace name (default: file name)")
	cmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include per-resource attribute changes")
	cmd.Flags().BoolVar(&explainPlan, "explain", false, "Print a plain-text explanation instead of a report")
	cmd.Flags().IntVar(&maxBytes, "max-bytes", config.DefaultMaxPlanBytes, "Reject plans larger than this many bytes")

	return cmd
}

// readPlan reads a plan file, or stdin for "-", enforcing the size limit.
func readPlan(stdin io.Reader, path string, maxBytes int) (string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open plan: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return "", fmt.Errorf("failed to read plan: %w", err)
	}
	if len(data) > maxBytes {
		return "", driftcheck.NewAnalysisError(driftcheck.ErrPlanTooLarge,
			fmt.Sprintf("plan exceeds the %d byte limit", maxBytes), path, nil)
	}
	return string(data), nil
}

func defaultRepo(path string) string {
	if path == "-" {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func driftExit(result *driftcheck.DriftResult) error {
	if result.DriftDetected {
		return errDriftDetected
	}
	return nil
}
