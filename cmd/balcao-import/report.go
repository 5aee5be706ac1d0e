package main

import (
	"context"
	"fmt"
	"time"

	reportapp "github.com/balcao/backend/internal/application/report"
	"github.com/balcao/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	rangeName string
	from      string
	to        string
	top       int
}

func (c *cli) reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the sales summary of a period",
		Long: "Revenue, profit, margin, sale count, best day and best-selling products.\n" +
			"Use --range (today, week, month, year) or --from and --to (YYYY-MM-DD, inclusive).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return withCode(exitUsage, err)
			}
			return c.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				summary, err := app.SalesSummary.Summary(ctx, req)
				if err != nil {
					return err
				}
				return c.printJSON(summary)
			})
		},
	}

	cmd.Flags().StringVar(&opts.rangeName, "range", "", "Named range: today, week, month or year (default month)")
	cmd.Flags().StringVar(&opts.from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Products to rank (default 10, max 100)")
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("range", "from")

	return cmd
}

func (o reportOptions) request() (reportapp.SalesSummaryRequest, error) {
	req := reportapp.SalesSummaryRequest{Range: o.rangeName, TopN: o.top}
	if o.top < 0 {
		return req, fmt.Errorf("--top must not be negative")
	}
	if o.from == "" {
		return req, nil
	}
	from, err := time.Parse(time.DateOnly, o.from)
	if err != nil {
		return req, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := time.Parse(time.DateOnly, o.to)
	if err != nil {
		return req, fmt.Errorf("invalid --to: %w", err)
	}
	req.From, req.To = &from, &to
	return req, nil
}
