package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/catalog"
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
)

// options are the flags shared by every subcommand.
type options struct {
	catalogPath string
	logLevel    string
}

func (o *options) loadCatalog() (*domain.Catalog, error) {
	return catalog.LoadOrDefault(o.catalogPath)
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewTextLogger(cmd.ErrOrStderr(), o.logLevel)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "warncodes",
		Short:         "Query the DWD weather warning code catalog",
		Long:          "Query, validate and export the catalog of official DWD weather warning codes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", sharedcfg.EnvOrDefault("CATALOG_PATH", ""),
		"Catalog document (.json, .yaml). Defaults to the bundled catalog.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", sharedcfg.EnvOrDefault("LOG_LEVEL", "warn"),
		"Log level: debug, info, warn, error.")

	root.AddCommand(
		newListCmd(opts),
		newLookupCmd(opts),
		newSearchCmd(opts),
		newValidateCmd(opts),
		newExportCmd(opts),
		newAlertsCmd(opts),
	)
	return root
}

func levelText(l domain.Level) string {
	if !l.Valid() {
		return "-"
	}
	return strconv.Itoa(int(l))
}

// printEntries writes entries as an aligned table, with a category column
// when withCategory is set.
func printEntries(w io.Writer, entries []domain.WarningEntry, withCategory bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if withCategory {
		fmt.Fprintln(tw, "CATEGORY\tCODE\tLEVEL\tEVENT\tREMARK")
	} else {
		fmt.Fprintln(tw, "CODE\tLEVEL\tEVENT\tREMARK")
	}
	for _, e := range entries {
		if withCategory {
			fmt.Fprintf(tw, "%s\t", e.Category)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Code, levelText(e.Level), e.Event, e.Remark)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
