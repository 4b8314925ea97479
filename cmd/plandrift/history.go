package main

import (
	"github.com/spf13/cobra"

	"plandrift/internal/orchestrator"
	"plandrift/internal/report"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		configPath   string
		repo         string
		limit        int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored plans of a target, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			records, err := service.History(cmd.Context(), repo, limit)
			if err != nil {
				return err
			}
			return report.PrintHistory(cmd.OutOrStdout(), records, report.ParseFormat(outputFormat))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Scan configuration file (.hcl or .yaml)")
	cmd.Flags().StringVar(&repo, "repo", "", "Target name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of plans to list (0 = all)")
	cmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
