package main

import (
	"context"
	"encoding/json"
	"fmt"

	importapp "github.com/balcao/backend/internal/application/import"
	"github.com/balcao/backend/internal/bootstrap"
	"github.com/balcao/backend/internal/infrastructure/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type salesOptions struct {
	source    string
	dryRun    bool
	reportKey string
}

func (c *cli) salesCmd() *cobra.Command {
	var opts salesOptions

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Import a sales export (CSV or XLSX)",
		Long: "Canonicalizes product names, normalizes dates, merges the rows into one sale\n" +
			"per client per day and writes the sales. --source takes a local path or an\n" +
			"s3://bucket/key URI.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withContainer(cmd.Context(), func(ctx context.Context, app *bootstrap.Container) error {
				return c.runSales(ctx, app, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "Sales export: local path or s3://bucket/key (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Aggregate and report without writing anything")
	cmd.Flags().StringVar(&opts.reportKey, "report-key", "", "Upload the JSON run summary to this object key or s3:// URI")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func (c *cli) runSales(ctx context.Context, app *bootstrap.Container, opts salesOptions) error {
	drop, err := openSource(ctx, app, opts.source)
	if err != nil {
		return err
	}
	defer drop.close()

	result, err := app.SalesImport.Import(ctx, importapp.SalesImportRequest{
		FileName: drop.name,
		Reader:   drop.reader,
		Size:     drop.size,
		DryRun:   opts.dryRun,
	})
	if err != nil && result == nil {
		return err
	}

	if opts.reportKey != "" {
		if uerr := uploadReport(context.WithoutCancel(ctx), app, opts.reportKey, result); uerr != nil && err == nil {
			return uerr
		}
	}
	return c.finishSales(result, err)
}

// finishSales prints the run summary, also when the run stopped early so the
// sales already written stay visible, and maps the outcome to an exit code.
func (c *cli) finishSales(result *importapp.SalesImportResult, runErr error) error {
	if err := c.printJSON(result); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("import stopped after %d of %d sales: %w",
			result.SalesImported, result.SalesPlanned, runErr)
	}
	if failed := result.SalesFailed + result.ClientsFailed; failed > 0 {
		return withCode(exitPartial, fmt.Errorf("%d sales and %d clients failed, see the run summary",
			result.SalesFailed, result.ClientsFailed))
	}
	return nil
}

// uploadReport stores the run summary as JSON next to the data drops
func uploadReport(ctx context.Context, app *bootstrap.Container, key string, result *importapp.SalesImportResult) error {
	loc, err := storage.ResolveLocation(key, app.Config.Storage.ReportPrefix)
	if err != nil {
		return withCode(exitUsage, err)
	}
	store, err := app.ObjectStore(ctx)
	if err != nil {
		return withCode(exitUsage, err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	if err := store.Put(ctx, loc, data, "application/json"); err != nil {
		return fmt.Errorf("failed to upload run summary: %w", err)
	}
	app.Logger.Info("Run summary uploaded", zap.String("location", loc.String()))
	return nil
}
