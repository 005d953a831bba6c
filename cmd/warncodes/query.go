package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

func newLookupCmd(opts *options) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "lookup CODE",
		Short: "Show the entries for a warning code",
		Long: `Show the entries for a warning code. Codes repeat across categories, so
every match is shown unless --category narrows the lookup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			code := strings.TrimSpace(args[0])

			var entries []domain.WarningEntry
			if category != "" {
				c, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				if e, ok := cat.Lookup(c, code); ok {
					entries = append(entries, e)
				}
			} else {
				entries = cat.LookupAll(code)
			}
			if len(entries) == 0 {
				return fmt.Errorf("code %q not found", code)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries, true)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only look in this category.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON.")
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search event names and codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			entries := cat.Search(strings.Join(args, " "))
			if asJSON {
				if entries == nil {
					entries = []domain.WarningEntry{}
				}
				return printJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			return printEntries(cmd.OutOrStdout(), entries, true)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON.")
	return cmd
}
