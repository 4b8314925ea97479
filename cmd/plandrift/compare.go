package main

import (
	"errors"

	"github.com/spf13/cobra"

	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
	"plandrift/internal/orchestrator"
	"plandrift/internal/report"
)

func newCompareCmd(opts *globalOptions) *cobra.Command {
	var (
		configPath   string
		fromID       string
		toID         string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "compare [fileA fileB]",
		Short: "Diff two plan files, or two stored plans with --from and --to",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := report.ParseFormat(outputFormat)

			if len(args) == 2 {
				a, err := readPlan(cmd.InOrStdin(), args[0], config.DefaultMaxPlanBytes)
				if err != nil {
					return err
				}
				b, err := readPlan(cmd.InOrStdin(), args[1], config.DefaultMaxPlanBytes)
				if err != nil {
					return err
				}
				return report.PrintDiff(cmd.OutOrStdout(), driftcheck.ComparePlans(a, args[0], b, args[1]), format)
			}

			if len(args) != 0 || fromID == "" || toID == "" {
				return errors.New("pass two plan files, or --config with --from and --to")
			}

			cfg, err := loadConfig(cmd, opts, configPath)
			if err != nil {
				return err
			}
			store, err := orchestrator.OpenStore(cmd.Context(), cfg.Store, opts.logger)
			if err != nil {
				return err
			}
			service := orchestrator.NewService(orchestrator.ConfigFrom(cfg), nil, store, nil, nil, opts.logger)
			defer service.Close()

			diff, err := service.Compare(cmd.Context(), fromID, toID)
			if err != nil {
				return err
			}
			return report.PrintDiff(cmd.OutOrStdout(), diff, format)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Scan configuration file (.hcl or .yaml)")
	cmd.Flags().StringVar(&fromID, "from", "", "Stored plan id to diff from")
	cmd.Flags().StringVar(&toID, "to", "", "Stored plan id to diff to")
	cmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table or json")

	return cmd
}
