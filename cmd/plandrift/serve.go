package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"plandrift/internal/api"
	"plandrift/internal/orchestrator"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		configPath string
		addr       string
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan upload, history and comparison API",
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

			server := api.NewServer(service, service.Metrics().Handler(), cfg.MaxPlanBytes, opts.logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.ListenAndServe(gctx, addr)
			})
			if interval > 0 {
				g.Go(func() error {
					err := orchestrator.NewScheduler(service, interval, opts.logger).Start(gctx)
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Scan configuration file (.hcl or .yaml)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Also scan configured targets on this interval (0 = never)")

	return cmd
}
