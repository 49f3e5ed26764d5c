package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ecommerce-trend-lab/internal/app"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/reporting"
)

func newReportCmd(c *cli) *cobra.Command {
	var (
		platform string
		days     int
		format   string
		output   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a trend report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			metrics := observability.DefaultMetrics

			stores, err := app.OpenStores(ctx, c.cfg.Store, c.logger, metrics)
			if err != nil {
				return err
			}
			defer stores.Close()

			components := app.NewComponents(c.cfg, stores, c.logger, metrics, nil)
			gen := components.Reports.WithLimit(limit)

			report, err := gen.Generate(ctx, platform, days)
			if err != nil {
				return err
			}
			data, err := gen.Render(report, reporting.Format(format))
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			c.logger.Info("report written", "path", output, "format", format, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "restrict to one platform")
	cmd.Flags().IntVar(&days, "days", 30, "trend window in days")
	cmd.Flags().StringVarP(&format, "format", "f", string(reporting.FormatMarkdown), "markdown, csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&limit, "limit", 10, "rows per ranking section")
	return cmd
}
