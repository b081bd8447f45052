package orchestrator

import (
	"context"
	"log"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// Mention is the marker that addresses the team in an issue comment.
const Mention = "@ai-team"

type eventKey struct {
	event  string
	action string
}

type eventHandler func(o *Orchestrator, ctx context.Context, ev *models.GitHubEvent) error

// handlers maps webhook (event, action) pairs to workflows. Pairs not listed are ignored.
var handlers = map[eventKey]eventHandler{
	{"issues", "opened"}:                 (*Orchestrator).onIssueOpened,
	{"issues", "assigned"}:               (*Orchestrator).onIssueAssigned,
	{"pull_request", "opened"}:           (*Orchestrator).onPullRequestOpened,
	{"pull_request", "review_requested"}: (*Orchestrator).onReviewRequested,
	{"issue_comment", "created"}:         (*Orchestrator).onIssueComment,
}

// Handles reports whether an (event, action) pair has a handler.
func Handles(event, action string) bool {
	_, ok := handlers[eventKey{event, action}]
	return ok
}

// HandleEvent routes a webhook event to its workflow.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev *models.GitHubEvent) error {
	h, ok := handlers[eventKey{ev.Type, ev.Action}]
	if !ok {
		debugLog("[router] ignoring %s/%s", ev.Type, ev.Action)
		return nil
	}
	return h(o, ctx, ev)
}

func (o *Orchestrator) onIssueOpened(ctx context.Context, ev *models.GitHubEvent) error {
	if ev.Item == nil || ev.Item.Type != models.WorkItemEpic {
		debugLog("[router] issue #%d is not an epic", ev.IssueNumber)
		return nil
	}
	log.Printf("[orchestrator] epic opened: #%d %s", ev.IssueNumber, ev.Item.Title)
	_, err := o.ProcessEpic(ctx, ev.Item)
	return err
}

func (o *Orchestrator) onIssueAssigned(ctx context.Context, ev *models.GitHubEvent) error {
	return nil
}

func (o *Orchestrator) onPullRequestOpened(ctx context.Context, ev *models.GitHubEvent) error {
	return nil
}

func (o *Orchestrator) onReviewRequested(ctx context.Context, ev *models.GitHubEvent) error {
	return nil
}

func (o *Orchestrator) onIssueComment(ctx context.Context, ev *models.GitHubEvent) error {
	if strings.Contains(strings.ToLower(ev.Body), Mention) {
		log.Printf("[orchestrator] mentioned on #%d by %s", ev.IssueNumber, ev.Sender)
	}
	return nil
}
