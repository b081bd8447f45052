package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/inbox"
	"github.com/ShayCichocki/devteam/internal/report"
	"github.com/ShayCichocki/devteam/pkg/models"
)

var (
	watchDir    string
	watchOutput string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run tasks dropped into an inbox directory",
	Long: `Watch a directory for task definition files (*.json) and run the task
workflow for each. Handled files move to processed/, failures to failed/
with a .err note next to them.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "inbox", "inbox directory")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "directory for task reports")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := a.outputDir(watchOutput)
	w, err := inbox.New(watchDir, func(ctx context.Context, path string, task *models.WorkItem) error {
		fmt.Printf("🔧 Processing Task: %s (%s)\n", task.Title, path)
		st, runErr := a.orch.ProcessTask(ctx, task)
		if st != nil {
			if out, err := report.WriteTask(dir, st, time.Now()); err != nil {
				printError(fmt.Errorf("save report: %w", err))
			} else {
				printStatus("📄", "Results saved to: "+out, color.FgWhite)
			}
		}
		if runErr != nil {
			printError(runErr)
			return runErr
		}
		printStatus("✅", fmt.Sprintf("Task completed with status: %s", task.Status), color.FgGreen)
		return nil
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	wait := streamEvents(a.orch.Events())
	fmt.Printf("👀 Watching %s for task files\n", w.Dir())
	err = w.Run(ctx)
	a.orch.Close()
	wait()
	return err
}
