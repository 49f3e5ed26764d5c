package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"ecommerce-trend-lab/internal/config"
	"ecommerce-trend-lab/internal/logging"
)

type cli struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "trendctl",
		Short: "E-commerce trend lab maintenance CLI",
		Long: `trendctl manages the trend lab stores and produces offline reports.

Example usage:
  trendctl migrate                         # Apply the schema of the configured backend
  trendctl seed --days 30                  # Load demo fixtures
  trendctl report --format xlsx -o out.xlsx
  trendctl verify --platform amazon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", config.LookupEnv("TRENDLAB_CONFIG", ""), "config file (yaml, json or toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(newReportCmd(c), newSeedCmd(c), newMigrateCmd(c), newVerifyCmd(c))
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	opts := cfg.Log.LoggingOptions()
	if c.verbose {
		opts.Level = "debug"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.Component(logger, "trendctl")
	return nil
}
