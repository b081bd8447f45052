package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

var (
	epicOutput string
	taskOutput string
	taskFile   string
)

var epicCmd = &cobra.Command{
	Use:   "epic <description>",
	Short: "Plan and design an epic",
	Long: `Run the epic workflow: the product owner breaks the epic into stories,
the strategist and architect assess and design in parallel, and the
synthesizer merges their work. The synthesis is written to
epic_synthesis_<timestamp>.md in the output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEpic,
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Implement and review a task",
	Long: `Run the task workflow for a JSON task definition:

  {"title": "...", "description": "...", "acceptance_criteria": ["..."], "priority": 3}

The developer, tester and writer produce artifacts, the architect and
security reviewer review them, and with GitHub configured the work lands on
a feature branch and pull request. Results are written to
task_result_<timestamp>.md in the output directory.`,
	RunE: runTask,
}

func init() {
	epicCmd.Flags().StringVarP(&epicOutput, "output", "o", "", "directory for the synthesis report")
	taskCmd.Flags().StringVarP(&taskOutput, "output", "o", "", "directory for the task report")
	taskCmd.Flags().StringVarP(&taskFile, "file", "f", "", "task definition JSON file")
	_ = taskCmd.MarkFlagRequired("file")
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runEpic(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	epic := models.NewEpic(strings.Join(args, " "))
	fmt.Printf("📋 Processing Epic: %s\n", epic.Title)

	wait := streamEvents(a.orch.Events())
	st, runErr := a.orch.ProcessEpic(ctx, epic)
	a.orch.Close()
	wait()

	return finishRun(st, runErr, a.saveEpic(a.outputDir(epicOutput)), func() {
		printStatus("✅", "Epic processed successfully!", color.FgGreen)
		if n := len(st.WorkItem.ChildrenIDs); n > 0 {
			printStatus("📚", fmt.Sprintf("%d stories created", n), color.FgCyan)
		}
	}, a)
}

func runTask(cmd *cobra.Command, args []string) error {
	task, err := models.LoadTaskDefinition(taskFile)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("🔧 Processing Task: %s\n", task.Title)

	wait := streamEvents(a.orch.Events())
	st, runErr := a.orch.ProcessTask(ctx, task)
	a.orch.Close()
	wait()

	return finishRun(st, runErr, a.saveTask(a.outputDir(taskOutput)), func() {
		printStatus("✅", fmt.Sprintf("Task completed with status: %s", st.WorkItem.Status), color.FgGreen)
		if st.WorkItem.GitHubPRURL != "" {
			printStatus("🔗", st.WorkItem.GitHubPRURL, color.FgCyan)
		}
	}, a)
}

// finishRun saves whatever state exists, then reports the outcome.
func finishRun(st *orchestrator.WorkflowState, runErr error, save func(*orchestrator.WorkflowState) (string, error), ok func(), a *app) error {
	if st != nil {
		path, err := save(st)
		if err != nil {
			printError(fmt.Errorf("save report: %w", err))
		} else {
			printStatus("📄", "Results saved to: "+path, color.FgWhite)
		}
	}
	a.printUsage()
	if runErr != nil {
		return runErr
	}
	ok()
	return nil
}
