package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecommerce-trend-lab/internal/app"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema of the configured store backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := app.Migrate(cmd.Context(), c.cfg.Store)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to migrate for %s\n", c.cfg.Store.Backend)
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}
