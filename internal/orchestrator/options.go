package orchestrator

import "time"

// RequiredConfig contains the minimal required configuration for an Orchestrator.
type RequiredConfig struct {
	// Invoker runs persona calls.
	Invoker PersonaInvoker
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

type orchestratorOptions struct {
	collaborator Collaborator
	guard        PathGuard
	journal      Journal
	logger       *DebugLogger
	registry     *Registry
	registryTTL  time.Duration
	registryMax  int
	eventBuffer  int
}

func defaultOptions() *orchestratorOptions {
	return &orchestratorOptions{
		registryTTL: DefaultRegistryTTL,
		registryMax: DefaultRegistryMax,
		eventBuffer: 100,
	}
}

// WithGitHub enables repository side effects through c.
func WithGitHub(c Collaborator) Option {
	return func(o *orchestratorOptions) { o.collaborator = c }
}

// WithPathGuard keeps artifacts on guarded paths out of commits.
func WithPathGuard(g PathGuard) Option {
	return func(o *orchestratorOptions) { o.guard = g }
}

// WithJournal records every finished workflow run.
func WithJournal(j Journal) Option {
	return func(o *orchestratorOptions) { o.journal = j }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *orchestratorOptions) { o.logger = l }
}

// WithRegistry sets a custom workflow registry (mainly for testing).
func WithRegistry(r *Registry) Option {
	return func(o *orchestratorOptions) { o.registry = r }
}

// WithRegistryLimits sets the eviction TTL and size cap of the default registry.
func WithRegistryLimits(ttl time.Duration, max int) Option {
	return func(o *orchestratorOptions) {
		o.registryTTL = ttl
		o.registryMax = max
	}
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(o *orchestratorOptions) { o.eventBuffer = n }
}
