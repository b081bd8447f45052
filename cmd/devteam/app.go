package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/devteam/internal/api"
	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/github"
	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/internal/persona"
	"github.com/ShayCichocki/devteam/internal/protect"
	"github.com/ShayCichocki/devteam/internal/report"
	"github.com/ShayCichocki/devteam/internal/state"
)

// app holds the wired components of one command invocation.
type app struct {
	cfg     *config.Config
	orch    *orchestrator.Orchestrator
	github  *github.Client
	journal *state.DB
	logger  *orchestrator.DebugLogger
	tracker *api.TokenTracker
}

// newGitHubClient returns nil when GitHub is not configured.
func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	if !cfg.GitHub.Enabled() {
		return nil, nil
	}
	if err := config.ValidateGitHubToken(cfg.GitHub.Token); err != nil {
		log.Printf("[devteam] warning: %v", err)
	}
	client, err := github.New(github.Config{
		Owner:             cfg.GitHub.Owner,
		Repo:              cfg.GitHub.Repo,
		Token:             cfg.GitHub.Token,
		DefaultBranch:     cfg.GitHub.DefaultBranch,
		IntegrationBranch: cfg.GitHub.IntegrationBranch,
		MergeMethod:       cfg.GitHub.MergeMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("create github client: %w", err)
	}
	return client, nil
}

// newPathGuard builds the protected-path guard from defaults, config
// globs and the project config's protected_paths block.
func newPathGuard(cfg *config.Config) (*protect.Guard, error) {
	guard := protect.New()
	for _, p := range cfg.GitHub.ProtectedPaths {
		if err := guard.AddPattern(p); err != nil {
			return nil, fmt.Errorf("protected path %q: %w", p, err)
		}
	}
	if path := config.GetProjectConfigPath(); path != "" {
		if err := guard.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("load protected paths: %w", err)
		}
	}
	return guard, nil
}

// openJournal opens and migrates the run journal.
func openJournal(cfg *config.Config) (*state.DB, error) {
	path := cfg.Orchestrator.JournalPath
	if path == "" {
		cwd, _ := os.Getwd()
		path = state.Locate(cwd)
	}
	db, err := state.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

func newApp(cfg *config.Config) (*app, error) {
	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		BaseURL:       cfg.Anthropic.BaseURL,
		MaxRetries:    -1,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	runner := api.NewRunner(client)

	catalog := persona.DefaultCatalog()
	if cfg.Orchestrator.PersonasFile != "" {
		if err := catalog.LoadOverrides(cfg.Orchestrator.PersonasFile); err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg, tracker: runner.Tracker()}
	a.github, err = newGitHubClient(cfg)
	if err != nil {
		return nil, err
	}

	invokerOpts := persona.Options{
		Timeout:          cfg.Orchestrator.PersonaTimeout,
		StructuredOutput: cfg.Orchestrator.StructuredOutput,
	}
	if a.github != nil {
		invokerOpts.Repo = a.github
	}
	invoker := persona.NewInvoker(catalog, runner, invokerOpts)

	guard, err := newPathGuard(cfg)
	if err != nil {
		return nil, err
	}

	cwd, _ := os.Getwd()
	a.logger = orchestrator.NewDebugLoggerForDir(cwd)

	opts := []orchestrator.Option{
		orchestrator.WithPathGuard(guard),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithRegistryLimits(cfg.Orchestrator.RegistryTTL, cfg.Orchestrator.RegistryMax),
	}
	if a.github != nil {
		opts = append(opts, orchestrator.WithGitHub(a.github))
	} else {
		log.Printf("[devteam] GitHub not configured; running without repository side effects")
	}
	if cfg.Orchestrator.Journal {
		a.journal, err = openJournal(cfg)
		if err != nil {
			log.Printf("[devteam] journal disabled: %v", err)
		} else {
			opts = append(opts, orchestrator.WithJournal(a.journal))
		}
	}

	a.orch = orchestrator.New(orchestrator.RequiredConfig{Invoker: invoker}, opts...)
	return a, nil
}

// Close releases the journal and log file.
func (a *app) Close() {
	a.orch.Close()
	if a.journal != nil {
		a.journal.Close()
	}
	a.logger.Close()
}

// outputDir returns the flag value, falling back to the configured directory.
func (a *app) outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Output.Dir
}

func (a *app) saveEpic(dir string) func(*orchestrator.WorkflowState) (string, error) {
	return func(st *orchestrator.WorkflowState) (string, error) {
		return report.WriteEpic(dir, st, time.Now())
	}
}

func (a *app) saveTask(dir string) func(*orchestrator.WorkflowState) (string, error) {
	return func(st *orchestrator.WorkflowState) (string, error) {
		return report.WriteTask(dir, st, time.Now())
	}
}

// printUsage prints the token usage of the run.
func (a *app) printUsage() {
	in, out := a.tracker.Total()
	fmt.Printf("Tokens: %d in / %d out over %d calls (~$%.4f)\n", in, out, a.tracker.Calls(), a.tracker.Cost())
	if usage := a.tracker.ByModel(); len(usage) > 1 {
		for _, u := range usage {
			fmt.Printf("  %s: %d calls, %d in / %d out (~$%.4f)\n", u.Model, u.Calls, u.InputTokens, u.OutputTokens, u.Cost())
		}
	}
}
