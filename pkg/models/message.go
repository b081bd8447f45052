package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxTokens is the output token ceiling for a persona call.
const DefaultMaxTokens = 4096

// Action is the operation a persona is asked to perform.
type Action string

const (
	ActionBreakDown         Action = "break_down"
	ActionAssess            Action = "assess"
	ActionDesign            Action = "design"
	ActionSynthesize        Action = "synthesize"
	ActionSynthesizeReviews Action = "synthesize_reviews"
	ActionImplement         Action = "implement"
	ActionTest              Action = "test"
	ActionDocument          Action = "document"
	ActionReview            Action = "review"
)

// Valid returns true if the action is a known value.
func (a Action) Valid() bool {
	switch a {
	case ActionBreakDown, ActionAssess, ActionDesign, ActionSynthesize, ActionSynthesizeReviews,
		ActionImplement, ActionTest, ActionDocument, ActionReview:
		return true
	default:
		return false
	}
}

// ParseAction converts a string to an Action, rejecting unknown values.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Decision is the overall outcome a persona reports.
type Decision string

const (
	DecisionComplete       Decision = "complete"
	DecisionApprove        Decision = "approve"
	DecisionRequestChanges Decision = "request_changes"
	DecisionEscalate       Decision = "escalate"
)

// Valid returns true if the decision is a known value.
func (d Decision) Valid() bool {
	switch d {
	case DecisionComplete, DecisionApprove, DecisionRequestChanges, DecisionEscalate:
		return true
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(b []byte) error {
	parsed := Decision(b)
	if !parsed.Valid() {
		return fmt.Errorf("unknown decision %q", string(b))
	}
	*d = parsed
	return nil
}

// ReviewDecision is a reviewer's verdict on a change.
type ReviewDecision string

const (
	ReviewApprove        ReviewDecision = "approve"
	ReviewRequestChanges ReviewDecision = "request_changes"
	ReviewComment        ReviewDecision = "comment"
	ReviewBlock          ReviewDecision = "block"
)

// Valid returns true if the review decision is a known value.
func (r ReviewDecision) Valid() bool {
	switch r {
	case ReviewApprove, ReviewRequestChanges, ReviewComment, ReviewBlock:
		return true
	default:
		return false
	}
}

// ParseReviewDecision converts a string to a ReviewDecision, rejecting unknown values.
func ParseReviewDecision(s string) (ReviewDecision, error) {
	r := ReviewDecision(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown review decision %q", s)
	}
	return r, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ReviewDecision) UnmarshalText(b []byte) error {
	parsed, err := ParseReviewDecision(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// FollowUpAction is work a persona asks another persona to do.
type FollowUpAction struct {
	Action      Action    `json:"action"`
	AssignedTo  PersonaID `json:"assigned_to"`
	Priority    int       `json:"priority"`
	WorkItemID  string    `json:"work_item_id,omitempty"`
	Description string    `json:"description"`
}

// PersonaMessage is the request envelope for one persona invocation.
type PersonaMessage struct {
	ID              string     `json:"id"`
	WorkItem        *WorkItem  `json:"work_item"`
	Action          Action     `json:"action"`
	RepositoryState *RepoState `json:"repository_state,omitempty"`
	// Deadline is advisory; the invoker applies it to the LLM call.
	Deadline  *time.Time `json:"deadline,omitempty"`
	MaxTokens int        `json:"max_tokens"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewPersonaMessage builds a message with default constraints.
func NewPersonaMessage(item *WorkItem, action Action) *PersonaMessage {
	return &PersonaMessage{
		ID:        uuid.New().String(),
		WorkItem:  item,
		Action:    action,
		MaxTokens: DefaultMaxTokens,
		CreatedAt: now().UTC(),
	}
}

// PersonaResponse is the result of one persona invocation.
type PersonaResponse struct {
	ID              string           `json:"id"`
	MessageID       string           `json:"message_id"`
	Persona         PersonaID        `json:"persona"`
	Action          Action           `json:"action,omitempty"`
	Decision        Decision         `json:"decision"`
	Reasoning       string           `json:"reasoning"`
	Artifacts       []Artifact       `json:"artifacts,omitempty"`
	FollowUpActions []FollowUpAction `json:"follow_up_actions,omitempty"`
	// ReviewDecision is set only for review actions.
	ReviewDecision ReviewDecision `json:"review_decision,omitempty"`
	TokensUsed     int64          `json:"tokens_used"`
	ProcessingTime time.Duration  `json:"processing_time"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewPersonaResponse creates a completed response for msg.
func NewPersonaResponse(persona PersonaID, msg *PersonaMessage, reasoning string) *PersonaResponse {
	resp := &PersonaResponse{
		ID:        uuid.New().String(),
		Persona:   persona,
		Decision:  DecisionComplete,
		Reasoning: reasoning,
		CreatedAt: now().UTC(),
	}
	if msg != nil {
		resp.MessageID = msg.ID
		resp.Action = msg.Action
	}
	return resp
}
