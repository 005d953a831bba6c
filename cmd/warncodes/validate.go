package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/catalog"
)

func newValidateCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a catalog document",
		Long: `Validate a catalog document against the catalog schema and its consistency
rules. Without a file, the --catalog document or the bundled catalog is checked.
Every problem is reported; the command fails when there is at least one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.catalogPath
			if len(args) == 1 {
				path = args[0]
			}

			doc, format := catalog.Document(), catalog.FormatJSON
			name := "bundled catalog"
			if path != "" {
				f, err := catalog.FormatFromPath(path)
				if err != nil {
					return err
				}
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				doc, format, name = b, f, path
			}

			problems := catalog.Validate(doc, format)
			out := cmd.OutOrStdout()
			if asJSON {
				if problems == nil {
					problems = []catalog.Problem{}
				}
				if err := printJSON(out, problems); err != nil {
					return err
				}
			} else {
				for _, p := range problems {
					fmt.Fprintln(out, p)
				}
			}
			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problem(s) found", name, len(problems))
			}
			if !asJSON {
				fmt.Fprintf(out, "%s: ok\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Report problems as JSON.")
	return cmd
}
