package main

import (
	"context"
	"errors"

	importapp "github.com/balcao/backend/internal/application/import"
	"github.com/balcao/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

func (c *cli) stockCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Refresh on-hand stock and sell prices from a stock sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				drop, err := openSource(ctx, app, source)
				if err != nil {
					return err
				}
				defer drop.close()

				result, err := app.StockUpdate.Update(ctx, importapp.StockUpdateRequest{
					FileName: drop.name,
					Reader:   drop.reader,
					Size:     drop.size,
				})
				if err != nil {
					return err
				}
				if err := c.printJSON(result); err != nil {
					return err
				}
				if result.Failed > 0 {
					return withCode(exitPartial, errors.New("some stock rows could not be updated"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Stock sheet: local path or s3://bucket/key (required)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}
