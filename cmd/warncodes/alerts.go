package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/dwd-warncodes/internal/adapter/dwd"
	"github.com/couchcryptid/dwd-warncodes/internal/config"
	"github.com/couchcryptid/dwd-warncodes/internal/domain"
)

func newAlertsCmd(opts *options) *cobra.Command {
	var (
		ags     string
		feedURL string
		timeout time.Duration
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show current DWD warnings for a municipality",
		Long: `Download the current DWD CAP warnings and show those affecting the given
municipality key (AGS), each resolved against the catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ags = strings.TrimSpace(ags)
			if ags == "" {
				return errors.New("--ags is required")
			}
			if !domain.IsNumericCode(ags) {
				return fmt.Errorf("--ags %q is not a numeric municipality key", ags)
			}
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			client := dwd.NewClient(feedURL, timeout, nil, opts.logger(cmd))
			alerts, err := client.FetchAlerts(cmd.Context())
			if err != nil {
				return err
			}
			resolved := domain.ResolveAlerts(cat, domain.FilterByAGS(alerts, ags))

			out := cmd.OutOrStdout()
			if asJSON {
				if resolved == nil {
					resolved = []domain.ResolvedAlert{}
				}
				return printJSON(out, resolved)
			}
			if len(resolved) == 0 {
				fmt.Fprintf(out, "no warnings for %s\n", ags)
				return nil
			}
			return printAlerts(out, resolved)
		},
	}
	cmd.Flags().StringVar(&ags, "ags", "", "Municipality key (Amtlicher Gemeindeschlüssel).")
	cmd.Flags().StringVar(&feedURL, "url", sharedcfg.EnvOrDefault("DWD_FEED_URL", config.DefaultFeedURL), "CAP feed archive URL.")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Feed download timeout.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output alerts as JSON.")
	return cmd
}

func printAlerts(w io.Writer, alerts []domain.ResolvedAlert) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tLEVEL\tEVENT\tONSET\tEXPIRES\tHEADLINE")
	for _, r := range alerts {
		level := "?"
		if r.Entry != nil {
			level = levelText(r.Entry.Level)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Alert.EventCode, level, r.Alert.Event,
			formatTime(r.Alert.Onset), formatTime(r.Alert.Expires), r.Alert.Headline)
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04 MST")
}
