package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		sortBy string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List the categories, or the entries of one category",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			names := make([]string, 0, len(domain.Categories()))
			for _, c := range domain.Categories() {
				names = append(names, string(c))
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CATEGORY\tENTRIES\tTITLE")
				counts := cat.Counts()
				for _, c := range domain.Categories() {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", c, counts[c], c.Title())
				}
				return tw.Flush()
			}

			c, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			var entries []domain.WarningEntry
			switch sortBy {
			case "document":
				entries = cat.Entries(c)
			case "event":
				entries = cat.SortedByEvent(c)
			default:
				return fmt.Errorf("unknown sort order %q (want document or event)", sortBy)
			}
			if asJSON {
				return printJSON(out, entries)
			}
			return printEntries(out, entries, false)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "document", "Entry order: document or event.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON.")
	return cmd
}
