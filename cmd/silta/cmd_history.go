package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/silta/journal"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past sync runs",
	Long: `List sync runs recorded in the local journal, newest first,
with their status, counts and any errors.`,
	Example: `  silta history
  silta history --limit 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	j, err := journal.Open(cfg.Sync.JournalDir)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	runs, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No sync runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSTARTED\tDURATION\tSTATUS\tDOCS\tUSERS\tGROUPS\tERRORS")
	for _, run := range runs {
		status := run.Status
		if run.DryRun {
			status += " (dry)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.Sequence,
			run.StartedAt.Local().Format(time.RFC3339),
			run.Duration.Round(time.Millisecond),
			status,
			run.Counts["documents"],
			run.Counts["users"],
			run.Counts["groups"],
			len(run.Errors),
		)
	}
	return w.Flush()
}
