// Package config handles configuration loading and management for devteam.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"
)

// ProjectConfigName is the per-repository override file, searched upwards from the working directory.
const ProjectConfigName = ".devteam.yaml"

// Config holds all configuration for devteam.
type Config struct {
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	GitHub       GitHubConfig       `mapstructure:"github"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Server       ServerConfig       `mapstructure:"server"`
	Output       OutputConfig       `mapstructure:"output"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// GitHubConfig holds repository settings. GitHub integration is off unless
// owner, repo and token are all set.
type GitHubConfig struct {
	Owner             string `mapstructure:"owner"`
	Repo              string `mapstructure:"repo"`
	Token             string `mapstructure:"token"`
	DefaultBranch     string `mapstructure:"default_branch"`
	IntegrationBranch string `mapstructure:"integration_branch"`
	MergeMethod       string `mapstructure:"merge_method"`
	WebhookSecret     string `mapstructure:"webhook_secret"`
	// ProtectedPaths are extra doublestar globs generated files may not touch.
	ProtectedPaths []string `mapstructure:"protected_paths"`
}

// Enabled reports whether enough is configured to talk to GitHub.
func (g GitHubConfig) Enabled() bool {
	return g.Owner != "" && g.Repo != "" && g.Token != ""
}

// OrchestratorConfig holds workflow settings.
type OrchestratorConfig struct {
	RegistryTTL      time.Duration `mapstructure:"registry_ttl"`
	RegistryMax      int           `mapstructure:"registry_max"`
	PersonaTimeout   time.Duration `mapstructure:"persona_timeout"`
	StructuredOutput bool          `mapstructure:"structured_output"`
	PersonasFile     string        `mapstructure:"personas_file"`
	Journal          bool          `mapstructure:"journal"`
	// JournalPath overrides the default journal location.
	JournalPath string `mapstructure:"journal_path"`
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"anthropic.api_key":         "ANTHROPIC_API_KEY",
	"github.token":              "GITHUB_TOKEN",
	"github.owner":              "GITHUB_OWNER",
	"github.repo":               "GITHUB_REPO",
	"github.default_branch":     "GITHUB_DEFAULT_BRANCH",
	"github.integration_branch": "GITHUB_INTEGRATION_BRANCH",
	"github.webhook_secret":     "GITHUB_WEBHOOK_SECRET",
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GITHUB_*)
// 2. Project config (.devteam.yaml in current directory or parent)
// 3. User config (~/.config/devteam/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config: %w", err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
// Environment overrides still apply.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.GitHub.Token = expandEnv(cfg.GitHub.Token)
	cfg.GitHub.WebhookSecret = expandEnv(cfg.GitHub.WebhookSecret)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("github.default_branch", "main")
	v.SetDefault("github.integration_branch", "develop")
	v.SetDefault("github.merge_method", "squash")

	v.SetDefault("orchestrator.registry_ttl", "24h")
	v.SetDefault("orchestrator.registry_max", 256)
	v.SetDefault("orchestrator.persona_timeout", "5m")
	v.SetDefault("orchestrator.structured_output", false)
	v.SetDefault("orchestrator.journal", true)

	v.SetDefault("server.port", 8000)
	v.SetDefault("output.dir", ".")
}

// getUserConfigDir returns the XDG config directory for devteam.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "devteam")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "devteam")
	}
	return filepath.Join(home, ".config", "devteam")
}

// findProjectConfig searches for .devteam.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			DefaultBranch:     "main",
			IntegrationBranch: "develop",
			MergeMethod:       "squash",
		},
		Orchestrator: OrchestratorConfig{
			RegistryTTL:    24 * time.Hour,
			RegistryMax:    256,
			PersonaTimeout: 5 * time.Minute,
			Journal:        true,
		},
		Server: ServerConfig{Port: 8000},
		Output: OutputConfig{Dir: "."},
	}
}

// Settings flattens cfg into dotted keys for display. Secrets are masked.
func Settings(cfg *Config) map[string]string {
	return map[string]string{
		"anthropic.api_key":              MaskAPIKey(cfg.Anthropic.APIKey),
		"anthropic.model":                cfg.Anthropic.Model,
		"anthropic.base_url":             cfg.Anthropic.BaseURL,
		"anthropic.use_bedrock":          fmt.Sprint(cfg.Anthropic.UseBedrock),
		"anthropic.aws_region":           cfg.Anthropic.AWSRegion,
		"anthropic.aws_profile":          cfg.Anthropic.AWSProfile,
		"github.owner":                   cfg.GitHub.Owner,
		"github.repo":                    cfg.GitHub.Repo,
		"github.token":                   MaskSecret(cfg.GitHub.Token),
		"github.default_branch":          cfg.GitHub.DefaultBranch,
		"github.integration_branch":      cfg.GitHub.IntegrationBranch,
		"github.merge_method":            cfg.GitHub.MergeMethod,
		"github.webhook_secret":          MaskSecret(cfg.GitHub.WebhookSecret),
		"github.protected_paths":         fmt.Sprint(cfg.GitHub.ProtectedPaths),
		"orchestrator.registry_ttl":      cfg.Orchestrator.RegistryTTL.String(),
		"orchestrator.registry_max":      fmt.Sprint(cfg.Orchestrator.RegistryMax),
		"orchestrator.persona_timeout":   cfg.Orchestrator.PersonaTimeout.String(),
		"orchestrator.structured_output": fmt.Sprint(cfg.Orchestrator.StructuredOutput),
		"orchestrator.personas_file":     cfg.Orchestrator.PersonasFile,
		"orchestrator.journal":           fmt.Sprint(cfg.Orchestrator.Journal),
		"orchestrator.journal_path":      cfg.Orchestrator.JournalPath,
		"server.port":                    fmt.Sprint(cfg.Server.Port),
		"output.dir":                     cfg.Output.Dir,
	}
}

// Keys returns the sorted keys of Settings.
func Keys(cfg *Config) []string {
	settings := Settings(cfg)
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
