package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/state"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled workflow runs",
	Long: `List recent workflow runs from the journal, newest first.

The journal is advisory history; nothing in the pipeline reads it back.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "delete runs older than this before listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyPurge > 0 {
		n, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d runs\n", n)
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No workflow runs recorded yet.")
		return nil
	}
	renderHistory(os.Stdout, runs)
	return nil
}

// renderHistory writes runs as a table.
func renderHistory(w io.Writer, runs []state.Run) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Started", "Workflow", "Title", "Outcome", "Status", "Tokens", "PR", "Duration"})
	for _, r := range runs {
		pr := ""
		if r.PRNumber != 0 {
			pr = fmt.Sprintf("#%d", r.PRNumber)
		}
		took := "running"
		if r.CompletedAt != nil {
			took = r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		tw.AppendRow(table.Row{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Workflow,
			clip(r.Title, 40),
			r.Outcome,
			r.ItemStatus,
			r.TokensUsed,
			pr,
			took,
		})
	}
	tw.Render()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
