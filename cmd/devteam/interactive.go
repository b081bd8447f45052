package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/tui"
)

var interactiveOutput string

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start the interactive REPL",
	Long: `Start an interactive session.

Commands:
  epic <description>  process an epic
  task <title>        enter description lines, finish with an empty line
  status              show tracked workflows
  help                list commands
  quit                exit`,
	RunE: runInteractive,
}

func init() {
	interactiveCmd.Flags().StringVarP(&interactiveOutput, "output", "o", "", "directory for reports")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Operator logs would tear the alt-screen; the debug log keeps the detail.
	log.SetOutput(io.Discard)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := a.outputDir(interactiveOutput)
	program, _ := tui.NewProgram(tui.Config{
		Context:  ctx,
		Runner:   a.orch,
		Status:   a.orch.Registry().List,
		Events:   a.orch.Events(),
		SaveEpic: a.saveEpic(dir),
		SaveTask: a.saveTask(dir),
	})
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run interactive mode: %w", err)
	}
	a.printUsage()
	return nil
}
