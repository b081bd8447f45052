// Package orchestrator sequences persona calls into workflows.
//
// An epic runs through planning (product owner), design (strategist and
// architect in parallel) and synthesis. A task is implemented by the
// developer, tester and writer in turn, reviewed by the reviewers its type
// requires, and merged only once all of them approve.
//
// When a Collaborator is configured the workflows also create branches,
// commits, pull requests, reviews and story issues on GitHub.
//
// Example usage:
//
//	orch := orchestrator.New(
//		orchestrator.RequiredConfig{Invoker: invoker},
//		orchestrator.WithGitHub(client),
//	)
//	st, err := orch.ProcessTask(ctx, task)
package orchestrator
