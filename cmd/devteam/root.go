package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "devteam",
	Short: "AI persona development team",
	Long: `devteam runs a team of AI personas (product owner, architect, developer,
tester, security reviewer and friends) over epics and tasks.

Epics are planned, designed in parallel and synthesized into a report.
Tasks are implemented, reviewed, and, when GitHub is configured, committed
to a feature branch, opened as a pull request and merged once every
required reviewer approves.

With no arguments, launches the interactive REPL.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd, args)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: user and project config)")

	rootCmd.AddCommand(epicCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config when given, otherwise the layered config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
