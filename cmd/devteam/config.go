package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/devteam/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `Show the effective configuration. Secrets are masked.

Without arguments, displays every setting.
With one argument (key), displays the value for that key.

Configuration is read from ~/.config/devteam/config.yaml,
then .devteam.yaml in the project, then the environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			displayAllConfig(cfg)
			return nil
		}
		value, err := getConfigValue(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	settings := config.Settings(cfg)
	for _, key := range config.Keys(cfg) {
		fmt.Printf("%s: %s\n", key, settings[key])
	}
	fmt.Println()
	for _, secret := range config.Secrets {
		fmt.Printf("%s source: %s\n", secret, config.SourceOf(cfg, secret))
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	value, ok := config.Settings(cfg)[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}
