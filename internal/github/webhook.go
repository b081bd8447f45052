package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// ErrInvalidPayload is returned for webhook requests that fail signature or payload checks.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// ParseWebhook validates a webhook request against secret and normalizes it.
// With an empty secret any signature header is ignored. Issue events carrying
// a metadata block get their work item attached.
func ParseWebhook(r *http.Request, secret string) (*models.GitHubEvent, error) {
	payload, err := readPayload(r, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ev := &models.GitHubEvent{
		Type:       gh.WebHookType(r),
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}

	parsed, err := gh.ParseWebHook(ev.Type, payload)
	if err != nil {
		// Unknown event types still route (and get ignored) by action.
		var generic struct {
			Action string `json:"action"`
		}
		if jerr := json.Unmarshal(payload, &generic); jerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, jerr)
		}
		ev.Action = generic.Action
		return ev, nil
	}

	switch e := parsed.(type) {
	case *gh.IssuesEvent:
		ev.Action = e.GetAction()
		ev.IssueNumber = e.GetIssue().GetNumber()
		ev.Body = e.GetIssue().GetBody()
		ev.Sender = e.GetSender().GetLogin()
		ev.Item = workItemOrNil(e.GetIssue())
	case *gh.PullRequestEvent:
		ev.Action = e.GetAction()
		ev.PRNumber = e.GetPullRequest().GetNumber()
		ev.Body = e.GetPullRequest().GetBody()
		ev.Sender = e.GetSender().GetLogin()
	case *gh.IssueCommentEvent:
		ev.Action = e.GetAction()
		ev.IssueNumber = e.GetIssue().GetNumber()
		ev.Body = e.GetComment().GetBody()
		ev.Sender = e.GetSender().GetLogin()
	default:
		var generic struct {
			Action string `json:"action"`
		}
		_ = json.Unmarshal(payload, &generic)
		ev.Action = generic.Action
	}
	return ev, nil
}

// readPayload returns the JSON payload of r. go-github checks any signature
// header it finds, so an unsigned setup reads the body without one.
func readPayload(r *http.Request, secret string) ([]byte, error) {
	if secret != "" {
		return gh.ValidatePayload(r, []byte(secret))
	}
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return gh.ValidatePayloadFromBody(contentType, r.Body, "", nil)
}

func workItemOrNil(issue *gh.Issue) *models.WorkItem {
	if issue == nil {
		return nil
	}
	item, err := ParseWorkItem(issue)
	if err != nil {
		log.Printf("[github] ignoring work item on #%d: %v", issue.GetNumber(), err)
		return nil
	}
	return item
}
