package main

import (
	"fmt"

	"github.com/balcao/backend/internal/infrastructure/config"
	"github.com/balcao/backend/internal/infrastructure/renames"
	"github.com/spf13/cobra"
)

func (c *cli) renamesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "renames",
		Short: "Inspect the product rename table",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "Rename table to use instead of the configured one")

	load := func() (string, error) {
		if file != "" {
			return file, nil
		}
		cfg, err := config.Load()
		if err != nil {
			return "", withCode(exitUsage, err)
		}
		return cfg.Import.RenameTablePath, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the rename table and print its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := load()
			if err != nil {
				return err
			}
			table, err := renames.Load(path)
			if err != nil {
				return err
			}
			source := path
			if source == "" {
				source = "built-in"
			}
			fmt.Fprintf(c.out, "rename table %s (%s): %d entries OK\n", table.Version(), source, table.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "canonicalize NAME...",
		Short: "Print the catalog name each product name maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := load()
			if err != nil {
				return err
			}
			table, err := renames.Load(path)
			if err != nil {
				return err
			}
			for _, name := range args {
				fmt.Fprintf(c.out, "%s\t%s\n", name, table.Canonicalize(name))
			}
			return nil
		},
	})

	return cmd
}
