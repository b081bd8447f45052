package persona

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ShayCichocki/devteam/internal/api"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// ErrUnknownPersona is returned for a persona missing from the catalog.
var ErrUnknownPersona = errors.New("unknown persona")

// Completer submits a role-bound prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, req api.Request) (api.Completion, error)
}

// RepoStateSource supplies the repository snapshot embedded in prompts.
type RepoStateSource interface {
	RepositoryState(ctx context.Context, branch string) (*models.RepoState, error)
}

// Call is one persona invocation request.
type Call struct {
	Persona      models.PersonaID
	WorkItem     *models.WorkItem
	Action       models.Action
	Instructions string
}

// InvocationError wraps a failed persona call.
type InvocationError struct {
	Persona models.PersonaID
	Action  models.Action
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoke %s/%s: %v", e.Persona, e.Action, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Options configure an Invoker.
type Options struct {
	// Repo provides repository state for prompts. Optional.
	Repo RepoStateSource
	// Timeout sets the message deadline applied to each call. Zero means none.
	Timeout time.Duration
	// StructuredOutput appends JSON reply contracts and parses replies into artifacts.
	StructuredOutput bool
}

// Invoker runs persona calls against a Completer.
type Invoker struct {
	catalog    *Catalog
	llm        Completer
	repo       RepoStateSource
	timeout    time.Duration
	structured bool
}

// NewInvoker creates an invoker over catalog.
func NewInvoker(catalog *Catalog, llm Completer, opts Options) *Invoker {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Invoker{
		catalog:    catalog,
		llm:        llm,
		repo:       opts.Repo,
		timeout:    opts.Timeout,
		structured: opts.StructuredOutput,
	}
}

// Invoke runs one persona call and wraps the reply in a response.
// Review actions must open with a verdict line; a reply without one is an error.
func (inv *Invoker) Invoke(ctx context.Context, call Call) (*models.PersonaResponse, error) {
	fail := func(err error) (*models.PersonaResponse, error) {
		return nil, &InvocationError{Persona: call.Persona, Action: call.Action, Err: err}
	}

	desc, ok := inv.catalog.Get(call.Persona)
	if !ok {
		return fail(fmt.Errorf("%w %q", ErrUnknownPersona, call.Persona))
	}
	if !call.Action.Valid() {
		return fail(fmt.Errorf("unknown action %q", call.Action))
	}
	if call.WorkItem == nil {
		return fail(errors.New("no work item"))
	}

	var repoState *models.RepoState
	if inv.repo != nil {
		state, err := inv.repo.RepositoryState(ctx, call.WorkItem.GitHubBranch)
		if err != nil {
			return fail(fmt.Errorf("repository state: %w", err))
		}
		repoState = state
	}

	msg := models.NewPersonaMessage(call.WorkItem, call.Action)
	msg.RepositoryState = repoState
	if desc.Settings.MaxTokens > 0 {
		msg.MaxTokens = desc.Settings.MaxTokens
	}
	if inv.timeout > 0 {
		deadline := time.Now().Add(inv.timeout)
		msg.Deadline = &deadline
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	prompt := BuildPrompt(call.WorkItem, call.Instructions, repoState)
	if call.Action == models.ActionReview {
		prompt += verdictInstructions
	}
	contract, structured := structuredContract(call.Action)
	structured = structured && inv.structured
	if structured {
		prompt += contract
	}

	start := time.Now()
	completion, err := inv.llm.Complete(ctx, api.Request{
		System:      desc.Instructions,
		Prompt:      prompt,
		Model:       desc.Settings.Model,
		Temperature: desc.Settings.Temperature,
		MaxTokens:   msg.MaxTokens,
	})
	if err != nil {
		return fail(err)
	}

	resp := models.NewPersonaResponse(call.Persona, msg, completion.Text)
	resp.TokensUsed = completion.TotalTokens()
	resp.ProcessingTime = time.Since(start)

	if call.Action == models.ActionReview {
		verdict, concerns, err := ParseVerdict(completion.Text)
		if err != nil {
			return fail(err)
		}
		resp.ReviewDecision = verdict
		resp.Decision = decisionFor(verdict)
		resp.FollowUpActions = followUps(call, desc, verdict, concerns)
	}

	if structured {
		artifacts, err := parseStructured(call.Action, call.Persona, completion.Text)
		if err != nil {
			return fail(fmt.Errorf("structured reply: %w", err))
		}
		resp.Artifacts = artifacts
	}

	log.Printf("[persona] %s/%s done in %s (%d tokens)", call.Persona, call.Action,
		resp.ProcessingTime.Round(time.Millisecond), resp.TokensUsed)
	return resp, nil
}

// followUps turns review concerns into work for the developer.
func followUps(call Call, desc Descriptor, verdict models.ReviewDecision, concerns []string) []models.FollowUpAction {
	if verdict != models.ReviewRequestChanges && verdict != models.ReviewBlock {
		return nil
	}
	if len(concerns) == 0 {
		concerns = []string{"Address review feedback from " + desc.Title}
	}
	actions := make([]models.FollowUpAction, 0, len(concerns))
	for _, c := range concerns {
		actions = append(actions, models.FollowUpAction{
			Action:      models.ActionImplement,
			AssignedTo:  models.PersonaDeveloper,
			Priority:    call.WorkItem.Priority,
			WorkItemID:  call.WorkItem.ID,
			Description: c,
		})
	}
	return actions
}
