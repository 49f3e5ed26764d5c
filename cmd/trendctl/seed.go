package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ecommerce-trend-lab/internal/app"
	"ecommerce-trend-lab/internal/fixtures"
	"ecommerce-trend-lab/internal/observability"
)

func newSeedCmd(c *cli) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo products and daily history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			storeCfg := c.cfg.Store
			storeCfg.Seed = false

			stores, err := app.OpenStores(ctx, storeCfg, c.logger, observability.DefaultMetrics)
			if err != nil {
				return err
			}
			defer stores.Close()

			st, err := fixtures.Seed(ctx, stores.Products, stores.History, time.Now().UTC(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products, %d snapshots into %s\n", st.Products, st.Snapshots, storeCfg.Backend)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", fixtures.DefaultDays, "days of history to generate")
	return cmd
}
