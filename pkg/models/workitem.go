// Package models defines the core data types shared across devteam.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// now is the clock used for timestamps. Tests replace it.
var now = time.Now

// WorkItemType classifies a unit of work.
type WorkItemType string

const (
	// WorkItemEpic is a large body of work broken down into stories.
	WorkItemEpic WorkItemType = "epic"
	// WorkItemStory is a user-facing slice of an epic.
	WorkItemStory WorkItemType = "story"
	// WorkItemTask is an implementable unit.
	WorkItemTask WorkItemType = "task"
	// WorkItemSubtask is a piece of a task.
	WorkItemSubtask WorkItemType = "subtask"
	// WorkItemBug is a defect.
	WorkItemBug WorkItemType = "bug"
)

// Valid returns true if the type is a known value.
func (t WorkItemType) Valid() bool {
	switch t {
	case WorkItemEpic, WorkItemStory, WorkItemTask, WorkItemSubtask, WorkItemBug:
		return true
	default:
		return false
	}
}

// ParseWorkItemType converts a string to a WorkItemType, rejecting unknown values.
func ParseWorkItemType(s string) (WorkItemType, error) {
	t := WorkItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown work item type %q", s)
	}
	return t, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *WorkItemType) UnmarshalText(b []byte) error {
	parsed, err := ParseWorkItemType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WorkItemStatus is the lifecycle state of a work item.
type WorkItemStatus string

const (
	StatusBacklog    WorkItemStatus = "backlog"
	StatusReady      WorkItemStatus = "ready"
	StatusInProgress WorkItemStatus = "in_progress"
	StatusInReview   WorkItemStatus = "in_review"
	StatusApproved   WorkItemStatus = "approved"
	StatusMerged     WorkItemStatus = "merged"
	StatusDeployed   WorkItemStatus = "deployed"
	StatusBlocked    WorkItemStatus = "blocked"
	StatusCancelled  WorkItemStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s WorkItemStatus) Valid() bool {
	switch s {
	case StatusBacklog, StatusReady, StatusInProgress, StatusInReview, StatusApproved,
		StatusMerged, StatusDeployed, StatusBlocked, StatusCancelled:
		return true
	default:
		return false
	}
}

// ParseWorkItemStatus converts a string to a WorkItemStatus, rejecting unknown values.
func ParseWorkItemStatus(s string) (WorkItemStatus, error) {
	st := WorkItemStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown work item status %q", s)
	}
	return st, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WorkItemStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseWorkItemStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DefaultPriority is the priority given to new work items (1 critical, 4 low).
const DefaultPriority = 3

// AcceptanceCriterion is a single verifiable condition on a work item.
type AcceptanceCriterion struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Met         bool       `json:"met"`
	VerifiedBy  PersonaID  `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// WorkItem is the unit of tracked work.
type WorkItem struct {
	// ID is the unique identifier for this work item.
	ID string `json:"id"`
	// Type classifies the work item.
	Type WorkItemType `json:"type"`
	// Status is the current lifecycle state.
	Status WorkItemStatus `json:"status"`
	// Title is the short summary.
	Title string `json:"title"`
	// Description provides detailed information.
	Description string `json:"description,omitempty"`
	// Priority ranges from 1 (critical) to 4 (low).
	Priority int `json:"priority"`
	// StoryPoints is the optional size estimate.
	StoryPoints *int `json:"story_points,omitempty"`
	// Labels are free-form tags mirrored to the issue tracker.
	Labels []string `json:"labels,omitempty"`

	ParentID    string   `json:"parent_id,omitempty"`
	ChildrenIDs []string `json:"children_ids,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Blocks      []string `json:"blocks,omitempty"`

	// AssignedTo is the persona currently responsible, if any.
	AssignedTo PersonaID `json:"assigned_to,omitempty"`
	// Reviewers lists personas asked to review.
	Reviewers []PersonaID `json:"reviewers,omitempty"`

	AcceptanceCriteria []AcceptanceCriterion `json:"acceptance_criteria,omitempty"`

	GitHubIssueNumber int    `json:"github_issue_number,omitempty"`
	GitHubIssueURL    string `json:"github_issue_url,omitempty"`
	GitHubPRNumber    int    `json:"github_pr_number,omitempty"`
	GitHubPRURL       string `json:"github_pr_url,omitempty"`
	GitHubBranch      string `json:"github_branch,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Artifacts are the outputs produced for this work item.
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// NewWorkItem creates a work item in the backlog.
func NewWorkItem(typ WorkItemType, title, description string) *WorkItem {
	ts := now().UTC()
	return &WorkItem{
		ID:          uuid.New().String(),
		Type:        typ,
		Status:      StatusBacklog,
		Title:       title,
		Description: description,
		Priority:    DefaultPriority,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// AddAcceptanceCriterion appends a new unmet criterion and returns it.
func (w *WorkItem) AddAcceptanceCriterion(description string) *AcceptanceCriterion {
	w.AcceptanceCriteria = append(w.AcceptanceCriteria, AcceptanceCriterion{
		ID:          uuid.New().String(),
		Description: description,
	})
	w.UpdatedAt = now().UTC()
	return &w.AcceptanceCriteria[len(w.AcceptanceCriteria)-1]
}

// MarkCriterionMet marks the criterion with the given id as met by verifier.
// Marking an already-met criterion re-stamps it. Unknown ids are ignored.
func (w *WorkItem) MarkCriterionMet(id string, verifier PersonaID) {
	for i := range w.AcceptanceCriteria {
		c := &w.AcceptanceCriteria[i]
		if c.ID != id {
			continue
		}
		ts := now().UTC()
		c.Met = true
		c.VerifiedBy = verifier
		c.VerifiedAt = &ts
		w.UpdatedAt = ts
		return
	}
}

// AllCriteriaMet reports whether every acceptance criterion is met.
// It is true for a work item with no criteria.
func (w *WorkItem) AllCriteriaMet() bool {
	for _, c := range w.AcceptanceCriteria {
		if !c.Met {
			return false
		}
	}
	return true
}

// TransitionTo moves the work item to status.
// StartedAt is stamped on the first move to in_progress and CompletedAt on the
// first move to merged or deployed; neither is overwritten afterwards.
func (w *WorkItem) TransitionTo(status WorkItemStatus) {
	ts := now().UTC()
	w.Status = status
	w.UpdatedAt = ts

	switch status {
	case StatusInProgress:
		if w.StartedAt == nil {
			w.StartedAt = &ts
		}
	case StatusMerged, StatusDeployed:
		if w.CompletedAt == nil {
			w.CompletedAt = &ts
		}
	}
}

// AddArtifacts appends artifacts produced for this work item.
func (w *WorkItem) AddArtifacts(artifacts ...Artifact) {
	if len(artifacts) == 0 {
		return
	}
	w.Artifacts = append(w.Artifacts, artifacts...)
	w.UpdatedAt = now().UTC()
}

// ShortID returns the first eight characters of the id.
func (w *WorkItem) ShortID() string {
	if len(w.ID) <= 8 {
		return w.ID
	}
	return w.ID[:8]
}
