package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ShayCichocki/devteam/internal/persona"
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// PersonaInvoker runs one persona call.
type PersonaInvoker interface {
	Invoke(ctx context.Context, call persona.Call) (*models.PersonaResponse, error)
}

// Collaborator performs the repository side effects of a workflow.
type Collaborator interface {
	CreateIssue(ctx context.Context, item *models.WorkItem) error
	CreateFeatureBranch(ctx context.Context, item *models.WorkItem) (string, error)
	CommitArtifacts(ctx context.Context, item *models.WorkItem, artifacts []models.Artifact, message string) (string, error)
	CreatePullRequest(ctx context.Context, item *models.WorkItem) (int, error)
	AddReview(ctx context.Context, prNumber int, reviewer models.PersonaID, body string, approve bool) error
	PullRequestDiff(ctx context.Context, prNumber int) (string, error)
	MergePullRequest(ctx context.Context, prNumber int, message string) error
}

// PathGuard reports paths that must never be written by a persona.
type PathGuard interface {
	IsProtected(path string) bool
}

// Journal stores finished workflow runs.
type Journal interface {
	RecordRun(r *state.Run) error
}

// requiredReviews lists the personas whose approval gates a merge, by work-item type.
var requiredReviews = map[models.WorkItemType][]models.PersonaID{
	models.WorkItemTask: {models.PersonaArchitect, models.PersonaSecurity},
	models.WorkItemBug:  {models.PersonaSecurity},
}

// RequiredReviewers returns the reviewers that must approve an item of type t.
func RequiredReviewers(t models.WorkItemType) []models.PersonaID {
	return append([]models.PersonaID(nil), requiredReviews[t]...)
}

// Orchestrator runs persona workflows for work items.
type Orchestrator struct {
	invoker  PersonaInvoker
	github   Collaborator
	guard    PathGuard
	journal  Journal
	registry *Registry
	emitter  *EventEmitter
	logger   *DebugLogger
}

// New creates an orchestrator.
func New(req RequiredConfig, opts ...Option) *Orchestrator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	registry := o.registry
	if registry == nil {
		registry = NewRegistry(o.registryTTL, o.registryMax)
	}
	var emitter *EventEmitter
	if o.eventBuffer > 0 {
		emitter = NewEventEmitter(o.eventBuffer)
	}
	if o.logger != nil {
		setPackageLogger(o.logger)
	}

	return &Orchestrator{
		invoker:  req.Invoker,
		github:   o.collaborator,
		guard:    o.guard,
		journal:  o.journal,
		registry: registry,
		emitter:  emitter,
		logger:   o.logger,
	}
}

// Registry returns the workflow registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Events returns the workflow event stream, or nil when events are disabled.
func (o *Orchestrator) Events() <-chan WorkflowEvent {
	if o.emitter == nil {
		return nil
	}
	return o.emitter.Events()
}

// Close stops event delivery.
func (o *Orchestrator) Close() {
	o.emitter.Close()
}

// GitHubEnabled reports whether repository side effects are configured.
func (o *Orchestrator) GitHubEnabled() bool {
	return o.github != nil
}

func (o *Orchestrator) begin(workflow string, item *models.WorkItem, phase Phase) *WorkflowState {
	st := NewWorkflowState(item, phase)
	o.registry.Put(st)
	o.emitter.Emit(WorkflowEvent{
		Type:          EventWorkflowStarted,
		WorkItemID:    item.ID,
		WorkItemTitle: item.Title,
		Phase:         phase,
		Message:       workflow,
	})
	debugLog("[%s] started %s %q", workflow, item.ShortID(), item.Title)
	return st
}

// finish stamps completion, emits the outcome and journals the run.
func (o *Orchestrator) finish(workflow string, st *WorkflowState, err error) error {
	if err != nil {
		st.AddError(err.Error())
	}
	st.Complete()

	snap := st.Snapshot()
	ev := WorkflowEvent{
		Type:          EventWorkflowCompleted,
		WorkItemID:    snap.WorkItemID,
		WorkItemTitle: snap.Title,
		Phase:         snap.Phase,
		TokensUsed:    snap.TokensUsed,
		Duration:      snap.CompletedAt.Sub(snap.StartedAt),
	}
	if err != nil {
		ev.Type = EventWorkflowFailed
		ev.Error = err
		log.Printf("[orchestrator] %s %s failed: %v", workflow, st.WorkItem.ShortID(), err)
	}
	o.emitter.Emit(ev)
	debugLog("[%s] finished %s phase=%s errors=%d", workflow, snap.WorkItemID, snap.Phase, len(snap.Errors))

	o.record(workflow, st, err)
	return err
}

func (o *Orchestrator) enterPhase(st *WorkflowState, phase Phase) {
	st.SetPhase(phase)
	o.emitter.Emit(WorkflowEvent{
		Type:          EventPhaseStarted,
		WorkItemID:    st.WorkItem.ID,
		WorkItemTitle: st.WorkItem.Title,
		Phase:         phase,
	})
	debugLog("[phase] %s -> %s", st.WorkItem.ShortID(), phase)
}

// invoke runs one persona call and reports it. Recording the response is left to the caller.
func (o *Orchestrator) invoke(ctx context.Context, st *WorkflowState, p models.PersonaID, action models.Action, instructions string) (*models.PersonaResponse, error) {
	item := st.WorkItem
	phase := st.CurrentPhase()
	o.emitter.Emit(WorkflowEvent{
		Type:          EventPersonaStarted,
		WorkItemID:    item.ID,
		WorkItemTitle: item.Title,
		Phase:         phase,
		Persona:       p,
		Action:        action,
	})

	resp, err := o.invoker.Invoke(ctx, persona.Call{
		Persona:      p,
		WorkItem:     item,
		Action:       action,
		Instructions: instructions,
	})
	if err != nil {
		o.emitter.Emit(WorkflowEvent{
			Type:       EventPersonaFailed,
			WorkItemID: item.ID,
			Phase:      phase,
			Persona:    p,
			Action:     action,
			Error:      err,
		})
		debugLog("[persona] %s/%s failed: %v", p, action, err)
		return nil, err
	}

	o.emitter.Emit(WorkflowEvent{
		Type:       EventPersonaCompleted,
		WorkItemID: item.ID,
		Phase:      phase,
		Persona:    p,
		Action:     action,
		Message:    string(resp.ReviewDecision),
		TokensUsed: resp.TokensUsed,
		Duration:   resp.ProcessingTime,
	})
	return resp, nil
}

func (o *Orchestrator) record(workflow string, st *WorkflowState, err error) {
	if o.journal == nil {
		return
	}
	snap := st.Snapshot()
	run := &state.Run{
		ID:          uuid.New().String(),
		WorkItemID:  snap.WorkItemID,
		Title:       snap.Title,
		ItemType:    string(snap.Type),
		Workflow:    workflow,
		Phase:       string(snap.Phase),
		Outcome:     outcomeOf(snap, err),
		ItemStatus:  string(snap.Status),
		TokensUsed:  snap.TokensUsed,
		PRNumber:    snap.PRNumber,
		Errors:      snap.Errors,
		StartedAt:   snap.StartedAt,
		CompletedAt: snap.CompletedAt,
	}
	for _, p := range st.Personas() {
		resp, _ := st.Response(p)
		run.Calls = append(run.Calls, state.PersonaCall{
			Persona:        string(resp.Persona),
			Action:         string(resp.Action),
			Decision:       string(resp.Decision),
			ReviewDecision: string(resp.ReviewDecision),
			TokensUsed:     resp.TokensUsed,
			Duration:       resp.ProcessingTime,
			CreatedAt:      resp.CreatedAt,
		})
	}
	if jerr := o.journal.RecordRun(run); jerr != nil {
		log.Printf("[orchestrator] journal run for %s: %v", snap.WorkItemID, jerr)
	}
}

func outcomeOf(snap Snapshot, err error) state.Outcome {
	switch {
	case err != nil:
		return state.OutcomeFailed
	case snap.Status == models.StatusMerged:
		return state.OutcomeMerged
	case len(snap.PendingActions) > 0 || snap.Status == models.StatusInReview:
		return state.OutcomeChanges
	default:
		return state.OutcomeCompleted
	}
}

// AllReviewsApproved reports whether every required reviewer of the item approved.
func AllReviewsApproved(st *WorkflowState) bool {
	for _, reviewer := range RequiredReviewers(st.WorkItem.Type) {
		resp, ok := st.Response(reviewer)
		if !ok || resp.ReviewDecision != models.ReviewApprove {
			return false
		}
	}
	return true
}

// summarizeArtifacts lists artifacts as "- <path or type>: <n> chars".
func summarizeArtifacts(artifacts []models.Artifact) string {
	if len(artifacts) == 0 {
		return "No artifacts yet."
	}
	lines := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		name := a.TargetPath
		if name == "" {
			name = string(a.Type)
		}
		lines = append(lines, fmt.Sprintf("- %s: %d chars", name, len(a.Content)))
	}
	return strings.Join(lines, "\n")
}
