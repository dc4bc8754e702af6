// Package cli implements the bloomcast command tree: serve, launch, train,
// forecast and check.
package cli

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nurtas/bloomcast/internal/config"
	"github.com/nurtas/bloomcast/pkg/logger"
)

// Execute runs the command tree with the given root context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// rootState carries configuration resolved in the persistent pre-run into
// the subcommands.
type rootState struct {
	cfg        *config.Config
	configPath string
	logLevel   string
}

// NewRootCmd builds the bloomcast command tree.
func NewRootCmd() *cobra.Command {
	r := &rootState{}

	cmd := &cobra.Command{
		Use:           "bloomcast",
		Short:         "Demand forecasting dashboard for a flower shop network",
		Long:          "BloomCast runs a demand forecasting dashboard for a flower shop network:\na local web UI, forecast workers, model training and optional Google Sheets\nand Inspiro POS integrations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.setup(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&r.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(r),
		newLaunchCmd(r),
		newTrainCmd(r),
		newForecastCmd(r),
		newCheckCmd(r),
	)
	return cmd
}

// setup loads .env, configuration and logging before any subcommand runs.
func (r *rootState) setup(ctx context.Context) error {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	if r.configPath != "" {
		if err := os.Setenv("BLOOMCAST_CONFIG", r.configPath); err != nil {
			return err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if r.logLevel != "" {
		cfg.LogLevel = r.logLevel
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}

	r.cfg = cfg
	return nil
}
