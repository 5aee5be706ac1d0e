// Command balcao-import reconciles shop spreadsheet exports into the
// backend: sales data drops, stock sheets, resets and summaries.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/balcao/backend/internal/bootstrap"
	"github.com/balcao/backend/internal/infrastructure/config"
	"github.com/balcao/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitPartial = 3 // the run finished but some sales or clients failed
)

type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string { return e.err.Error() }
func (e *codeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &codeError{code: code, err: err}
}

func exitCodeOf(err error) int {
	var ce *codeError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

// cli carries what every subcommand needs
type cli struct {
	out io.Writer
	// setup runs on each freshly built container, before the command uses it
	setup func(*bootstrap.Container)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &cli{out: os.Stdout}, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, c *cli, stderr io.Writer) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.out)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCodeOf(err)
	}
	return exitOK
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "balcao-import",
		Short:         "Reconcile shop spreadsheet exports into the balcao backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.salesCmd(),
		c.stockCmd(),
		c.clearSalesCmd(),
		c.reportCmd(),
		c.renamesCmd(),
	)
	return root
}

// withContainer loads configuration, builds the container and closes it
// once fn returns
func (c *cli) withContainer(ctx context.Context, fn func(ctx context.Context, app *bootstrap.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	log, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("failed to initialize logger: %w", err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Shutdown incomplete", zap.Error(err))
		}
	}()
	if c.setup != nil {
		c.setup(app)
	}
	return fn(ctx, app)
}

// printJSON writes v as indented JSON to the command output
func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
