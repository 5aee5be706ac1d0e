package main

import (
	"context"
	"errors"

	"github.com/balcao/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

func (c *cli) clearSalesCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-sales",
		Short: "Delete every sale and sale line so a drop can be re-imported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, errors.New("clear-sales deletes all sales; pass --yes to confirm"))
			}
			return c.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				result, err := app.SalesReset.Reset(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(result)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	return cmd
}
