package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// errDriftDetected makes the process exit with code 2, like `terraform plan -detailed-exitcode`.
var errDriftDetected = errors.New("drift detected")

// errScanFailed is returned when at least one target could not be scanned.
var errScanFailed = errors.New("one or more targets failed")

type globalOptions struct {
	logLevel string
	logger   *logging.DefaultLogger
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "plandrift",
		Short:         "Detect and classify infrastructure drift from terraform plan output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logging.NewDefaultLogger()
			opts.logger.SetLevel(logging.StringToLogLevel(opts.logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newCompareCmd(opts),
		newScanCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
	)

	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errDriftDetected):
		os.Exit(2)
	case errors.Is(err, errScanFailed):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the scan file and applies its log level unless the flag was set.
func loadConfig(cmd *cobra.Command, opts *globalOptions, path string) (*config.Config, error) {
	if path == "" {
		return nil, errors.New("--config is required")
	}

	cfg, err := config.NewLoaderWithLogger(opts.logger).Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		opts.logger.SetLevel(logging.StringToLogLevel(cfg.LogLevel))
	}
	return cfg, nil
}
