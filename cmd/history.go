package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/history"
	"github.com/kozaktomas/face-sentry/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show detection history from persisted reports",
	Long: `Show the detection history reconstructed from the report files in
the data directory, newest first.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	historyCmd.Flags().String("identity", "", "Only show events for this identity")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	limit := mustGetInt(cmd, "limit")
	identity := mustGetString(cmd, "identity")

	events, err := report.LoadHistory(cfg.Data.Path)
	if err != nil {
		return fmt.Errorf("loading reports: %w", err)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	ledger := history.NewLedger(cfg.History.Capacity)
	for _, e := range events {
		ledger.Append(e)
	}

	matched := ledger.Query(limit, identity)
	if len(matched) == 0 {
		fmt.Println("No events found")
		return nil
	}

	for _, e := range matched {
		kind := "unknown "
		if e.IsKnown {
			kind = "verified"
		}
		fmt.Printf("%s  %s  %-20s %5.1f%%  %-10s motion %.1f\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), kind, e.Identity, e.Similarity, e.Emotion, e.Motion)
	}

	stats := ledger.Stats()
	fmt.Printf("\n%d events (%d known, %d unknown)\n", stats.TotalEvents, stats.KnownCount, stats.UnknownCount)
	return nil
}
