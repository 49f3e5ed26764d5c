package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ecommerce-trend-lab/internal/app"
	"ecommerce-trend-lab/internal/domain"
	"ecommerce-trend-lab/internal/observability"
	"ecommerce-trend-lab/internal/verification"
)

func newVerifyCmd(c *cli) *cobra.Command {
	var (
		platform string
		category string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check stored scores and snapshot ids against a fresh computation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stores, err := app.OpenStores(ctx, c.cfg.Store, c.logger, observability.DefaultMetrics)
			if err != nil {
				return err
			}
			defer stores.Close()

			report, err := verification.New(stores.Products, stores.History).
				VerifyAll(ctx, domain.ProductFilter{Platform: platform, Category: category})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range report.Results {
				if r.Match {
					continue
				}
				fmt.Fprintf(out, "DIVERGENT %s\n", r.Key)
				for _, d := range r.Divergences {
					fmt.Fprintf(out, "  %s: expected %v, got %v\n", d.Field, d.Expected, d.Actual)
				}
			}
			fmt.Fprintf(out, "verified %d products: %d matched, %d divergent, %d orphan snapshots\n",
				report.TotalProducts, report.MatchedProducts, report.DivergentProducts, report.OrphanSnapshots)

			if !report.OK() {
				return errors.New("verification failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", "", "restrict to one platform")
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	return cmd
}
