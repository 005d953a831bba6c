package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/adapter/sqlite"
	"github.com/couchcryptid/dwd-warncodes/internal/catalog"
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

const formatSQLite = "sqlite"

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as JSON, YAML, CSV or a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			if format == formatSQLite {
				if out == "" || out == "-" {
					return errors.New("sqlite export needs --out")
				}
				return exportSQLite(cmd, cat, out)
			}

			f, err := catalog.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return catalog.Encode(cmd.OutOrStdout(), cat, f)
			}
			return exportFile(cat, f, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml, csv or sqlite.")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output path; - writes to stdout.")
	return cmd
}

func exportFile(cat *domain.Catalog, f catalog.Format, path string) (err error) {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
	}()
	return catalog.Encode(fh, cat, f)
}

func exportSQLite(cmd *cobra.Command, cat *domain.Catalog, path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.Export(cmd.Context(), db, cat); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d entries to %s\n", cat.Len(), path)
	return nil
}
