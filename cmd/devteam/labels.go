package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Create the standard issue labels",
	Long: `Ensure the labels devteam applies to issues and pull requests exist in
the configured repository (epic, story, task, bug, blocked, in-review, ...).`,
	RunE: runLabels,
}

func runLabels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("github is not configured: set github.owner, github.repo and GITHUB_TOKEN")
	}

	created, err := client.EnsureLabels(context.Background())
	for _, name := range created {
		printStatus("✓", "Created label "+name, color.FgGreen)
	}
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Println("All labels already exist.")
	}
	return nil
}
