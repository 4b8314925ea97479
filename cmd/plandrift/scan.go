package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plandrift/internal/orchestrator"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	var (
		configPath string
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch, analyze and store plans for every configured target",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			service, err := orchestrator.NewDefaultService(ctx, cfg, opts.logger)
			if err != nil {
				return err
			}
			defer service.Close()

			if interval > 0 {
				err := orchestrator.NewScheduler(service, interval, opts.logger).Start(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			hasDrift, hasError, err := service.Run(ctx)
			if err != nil {
				return err
			}
			if hasDrift {
				return errDriftDetected
			}
			if hasError {
				return errScanFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Scan configuration file (.hcl or .yaml)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Re-scan on this interval until interrupted (0 = scan once)")

	return cmd
}
