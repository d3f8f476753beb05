package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/netkit/internal/report"
)

var (
	historyLimit     int
	historyOperation string
	reportLast       string
	reportOutput     string
	pruneOlderThan   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded results",
	Long: `List results recorded in the history journal, newest first.

Examples:
  netkit history
  netkit history --operation ports --limit 5 -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, done, err := openHistory()
		if err != nil {
			return err
		}
		defer done()

		if historyOperation != "" {
			entries, err := history.ByOperation(historyOperation, historyLimit)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), entries)
		}
		entries, err := history.Recent(historyLimit)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), entries)
	},
}

var historyReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a Markdown report of recorded results",
	Long: `Summarize the journal over a time window: runs and failures per operation,
route changes between traceroutes to the same target, and port state changes
between scans of the same host.

Examples:
  netkit history report --last 24h
  netkit history report --last 7d --output-file ./report.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := parseDuration(reportLast)
		if err != nil {
			return fmt.Errorf("invalid time range: %w", err)
		}

		history, done, err := openHistory()
		if err != nil {
			return err
		}
		defer done()

		data, err := report.NewGenerator(history).Generate(time.Now().Add(-window))
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		content := report.FormatMarkdown(data)

		if reportOutput == "" || reportOutput == "-" {
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		}
		if err := os.WriteFile(reportOutput, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", reportOutput)
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old recorded results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, err := parseDuration(pruneOlderThan)
		if err != nil {
			return fmt.Errorf("invalid age: %w", err)
		}

		history, done, err := openHistory()
		if err != nil {
			return err
		}
		defer done()

		n, err := history.Prune(time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d results older than %s\n", n, pruneOlderThan)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of results to show")
	historyCmd.Flags().StringVar(&historyOperation, "operation", "", "only show this operation (e.g. ping, ports)")

	historyReportCmd.Flags().StringVar(&reportLast, "last", "24h", "time range (e.g. 1h, 24h, 7d)")
	historyReportCmd.Flags().StringVar(&reportOutput, "output-file", "", "write the report to a file instead of stdout")

	historyPruneCmd.Flags().StringVar(&pruneOlderThan, "older-than", "30d", "age of results to delete (e.g. 12h, 30d, 4w)")

	historyCmd.AddCommand(historyReportCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

// parseDuration accepts time.ParseDuration values plus whole days (7d) and
// weeks (2w).
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 0 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}

	if len(s) > 0 && s[len(s)-1] == 'w' {
		var weeks int
		if _, err := fmt.Sscanf(s, "%dw", &weeks); err == nil {
			return time.Duration(weeks) * 7 * 24 * time.Hour, nil
		}
	}

	return time.ParseDuration(s)
}
