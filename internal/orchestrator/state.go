package orchestrator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Phase is a stage of a workflow.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseDesign         Phase = "design"
	PhaseSynthesis      Phase = "synthesis"
	PhaseImplementation Phase = "implementation"
	PhaseReview         Phase = "review"
	PhaseMerge          Phase = "merge"
	PhaseDeploy         Phase = "deploy"
)

// WorkflowState is the progress record of one workflow run.
// A persona has at most one response per run; a later call replaces the earlier one.
type WorkflowState struct {
	mu sync.RWMutex

	WorkItem       *models.WorkItem
	Phase          Phase
	Responses      map[models.PersonaID]*models.PersonaResponse
	Artifacts      []models.Artifact
	PendingActions []models.FollowUpAction
	Errors         []string
	StartedAt      time.Time
	CompletedAt    *time.Time

	// order is the sequence in which personas first responded.
	order []models.PersonaID
	// status and prNumber mirror the work item for readers on other goroutines;
	// the item itself belongs to the goroutine running the workflow.
	status   models.WorkItemStatus
	prNumber int
}

// NewWorkflowState creates an empty state for item starting in phase.
func NewWorkflowState(item *models.WorkItem, phase Phase) *WorkflowState {
	st := &WorkflowState{
		WorkItem:  item,
		Phase:     phase,
		Responses: make(map[models.PersonaID]*models.PersonaResponse),
		StartedAt: time.Now().UTC(),
	}
	if item != nil {
		st.status = item.Status
		st.prNumber = item.GitHubPRNumber
	}
	return st
}

// Transition moves the work item to status.
func (s *WorkflowState) Transition(status models.WorkItemStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WorkItem.TransitionTo(status)
	s.status = s.WorkItem.Status
}

// SetBranch records the work item's feature branch.
func (s *WorkflowState) SetBranch(branch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WorkItem.GitHubBranch = branch
}

// SetPullRequest records the work item's pull request number.
func (s *WorkflowState) SetPullRequest(number int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WorkItem.GitHubPRNumber = number
	s.prNumber = number
}

// AddChild appends a child work-item id.
func (s *WorkflowState) AddChild(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WorkItem.ChildrenIDs = append(s.WorkItem.ChildrenIDs, id)
}

// Record stores resp and appends its artifacts.
func (s *WorkflowState) Record(resp *models.PersonaResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(resp)
}

func (s *WorkflowState) recordLocked(resp *models.PersonaResponse) {
	if _, seen := s.Responses[resp.Persona]; !seen {
		s.order = append(s.order, resp.Persona)
	}
	s.Responses[resp.Persona] = resp
	s.Artifacts = append(s.Artifacts, resp.Artifacts...)
}

// Response returns the latest response from persona.
func (s *WorkflowState) Response(persona models.PersonaID) (*models.PersonaResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.Responses[persona]
	return r, ok
}

// Personas returns responding personas in first-response order.
func (s *WorkflowState) Personas() []models.PersonaID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PersonaID(nil), s.order...)
}

// ArtifactList returns a copy of the collected artifacts.
func (s *WorkflowState) ArtifactList() []models.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Artifact(nil), s.Artifacts...)
}

// ErrorList returns a copy of the recorded errors.
func (s *WorkflowState) ErrorList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.Errors...)
}

// SetPhase moves the workflow to phase.
func (s *WorkflowState) SetPhase(phase Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = phase
}

// CurrentPhase returns the phase.
func (s *WorkflowState) CurrentPhase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Phase
}

// AddError appends an error entry.
func (s *WorkflowState) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}

// AddPendingActions appends follow-up work.
func (s *WorkflowState) AddPendingActions(actions ...models.FollowUpAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PendingActions = append(s.PendingActions, actions...)
}

// Complete stamps CompletedAt.
func (s *WorkflowState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := time.Now().UTC()
	s.CompletedAt = &ts
}

// Done reports whether the workflow completed, and when.
func (s *WorkflowState) Done() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.CompletedAt == nil {
		return time.Time{}, false
	}
	return *s.CompletedAt, true
}

// Merge folds another run's responses and errors into s.
func (s *WorkflowState) Merge(other *WorkflowState) {
	other.mu.RLock()
	responses := make([]*models.PersonaResponse, 0, len(other.order))
	for _, p := range other.order {
		responses = append(responses, other.Responses[p])
	}
	errs := append([]string(nil), other.Errors...)
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range responses {
		s.recordLocked(r)
	}
	s.Errors = append(s.Errors, errs...)
}

// SynthesisInput renders every recorded response as a markdown section, in response order.
func (s *WorkflowState) SynthesisInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parts := make([]string, 0, len(s.order))
	for _, p := range s.order {
		parts = append(parts, fmt.Sprintf("## %s\n%s", p.Title(), s.Responses[p].Reasoning))
	}
	return strings.Join(parts, "\n\n")
}

// Snapshot is a read-only copy of a workflow's progress.
type Snapshot struct {
	WorkItemID     string                  `json:"work_item_id"`
	Title          string                  `json:"title"`
	Type           models.WorkItemType     `json:"type"`
	Status         models.WorkItemStatus   `json:"status"`
	Phase          Phase                   `json:"phase"`
	Personas       []models.PersonaID      `json:"personas"`
	Decisions      map[string]string       `json:"decisions,omitempty"`
	ArtifactCount  int                     `json:"artifact_count"`
	PendingActions []models.FollowUpAction `json:"pending_actions,omitempty"`
	Errors         []string                `json:"errors,omitempty"`
	TokensUsed     int64                   `json:"tokens_used"`
	PRNumber       int                     `json:"pr_number,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	CompletedAt    *time.Time              `json:"completed_at,omitempty"`
}

// Snapshot copies the current state.
func (s *WorkflowState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Phase:          s.Phase,
		Personas:       append([]models.PersonaID(nil), s.order...),
		Decisions:      make(map[string]string),
		ArtifactCount:  len(s.Artifacts),
		PendingActions: append([]models.FollowUpAction(nil), s.PendingActions...),
		Errors:         append([]string(nil), s.Errors...),
		StartedAt:      s.StartedAt,
	}
	if s.CompletedAt != nil {
		ts := *s.CompletedAt
		snap.CompletedAt = &ts
	}
	if s.WorkItem != nil {
		snap.WorkItemID = s.WorkItem.ID
		snap.Title = s.WorkItem.Title
		snap.Type = s.WorkItem.Type
	}
	snap.Status = s.status
	snap.PRNumber = s.prNumber
	for p, r := range s.Responses {
		snap.TokensUsed += r.TokensUsed
		if r.ReviewDecision != "" {
			snap.Decisions[string(p)] = string(r.ReviewDecision)
		}
	}
	return snap
}
