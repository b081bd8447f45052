package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// EventType represents the type of workflow event.
type EventType string

const (
	// EventWorkflowStarted indicates a workflow began for a work item.
	EventWorkflowStarted EventType = "workflow_started"
	// EventPhaseStarted indicates the workflow entered a new phase.
	EventPhaseStarted EventType = "phase_started"
	// EventPersonaStarted indicates a persona call was launched.
	EventPersonaStarted EventType = "persona_started"
	// EventPersonaCompleted indicates a persona call returned a response.
	EventPersonaCompleted EventType = "persona_completed"
	// EventPersonaFailed indicates a persona call failed.
	EventPersonaFailed EventType = "persona_failed"
	// EventBranchCreated indicates a feature branch was created.
	EventBranchCreated EventType = "branch_created"
	// EventArtifactsCommitted indicates artifacts were committed to the branch.
	EventArtifactsCommitted EventType = "artifacts_committed"
	// EventPullRequestOpened indicates a pull request was opened.
	EventPullRequestOpened EventType = "pull_request_opened"
	// EventReviewPublished indicates a review was posted to the pull request.
	EventReviewPublished EventType = "review_published"
	// EventStoryCreated indicates a story issue was created from an epic breakdown.
	EventStoryCreated EventType = "story_created"
	// EventWorkflowCompleted indicates the workflow finished without error.
	EventWorkflowCompleted EventType = "workflow_completed"
	// EventWorkflowFailed indicates the workflow stopped on an error.
	EventWorkflowFailed EventType = "workflow_failed"
)

// WorkflowEvent is emitted as a workflow makes progress.
type WorkflowEvent struct {
	// Type is the kind of event.
	Type EventType
	// WorkItemID is the id of the work item being processed.
	WorkItemID string
	// WorkItemTitle is its title.
	WorkItemTitle string
	// Phase is the workflow phase at the time of the event.
	Phase Phase
	// Persona is set for persona events.
	Persona models.PersonaID
	// Action is set for persona events.
	Action models.Action
	// Message provides additional context.
	Message string
	// Error contains error details for failure events.
	Error error
	// TokensUsed is reported on persona_completed.
	TokensUsed int64
	// Duration is the elapsed time of the call or workflow.
	Duration time.Duration
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// String renders the event as a one-line progress message.
func (e WorkflowEvent) String() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	if e.Phase != "" {
		fmt.Fprintf(&b, " [%s]", e.Phase)
	}
	if e.Persona != "" {
		fmt.Fprintf(&b, " %s", e.Persona.Title())
		if e.Action != "" {
			fmt.Fprintf(&b, "/%s", e.Action)
		}
	}
	if e.WorkItemTitle != "" && e.Persona == "" {
		fmt.Fprintf(&b, " %q", e.WorkItemTitle)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.TokensUsed > 0 {
		fmt.Fprintf(&b, " (%d tokens)", e.TokensUsed)
	}
	if e.Duration > 0 {
		fmt.Fprintf(&b, " in %s", e.Duration.Round(time.Millisecond))
	}
	if e.Error != nil {
		fmt.Fprintf(&b, ": %v", e.Error)
	}
	return b.String()
}
