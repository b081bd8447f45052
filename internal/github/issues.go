package github

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

var titlePrefix = regexp.MustCompile(`^\[.*?\]\s*`)

// IssueTitle formats the issue title of item, e.g. "[TASK] Add login".
func IssueTitle(item *models.WorkItem) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(item.Type)), item.Title)
}

// IssueBody renders the metadata block followed by the markdown of item.
func IssueBody(item *models.WorkItem) string {
	return MetadataFor(item).Render() + item.Markdown()
}

// CreateIssue opens an issue for item and records its number and URL on item.
func (c *Client) CreateIssue(ctx context.Context, item *models.WorkItem) error {
	labels := labelsFor(item, false)
	issue, _, err := c.api.Issues.Create(ctx, c.cfg.Owner, c.cfg.Repo, &gh.IssueRequest{
		Title:  gh.String(IssueTitle(item)),
		Body:   gh.String(IssueBody(item)),
		Labels: &labels,
	})
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	item.GitHubIssueNumber = issue.GetNumber()
	item.GitHubIssueURL = issue.GetHTMLURL()
	return nil
}

// UpdateIssue rewrites the body and labels of the item's issue.
// Blocked and in-review items get the matching status label.
func (c *Client) UpdateIssue(ctx context.Context, item *models.WorkItem) error {
	if item.GitHubIssueNumber == 0 {
		return ErrNoIssue
	}
	labels := labelsFor(item, true)
	_, _, err := c.api.Issues.Edit(ctx, c.cfg.Owner, c.cfg.Repo, item.GitHubIssueNumber, &gh.IssueRequest{
		Body:   gh.String(IssueBody(item)),
		Labels: &labels,
	})
	if err != nil {
		return fmt.Errorf("update issue #%d: %w", item.GitHubIssueNumber, err)
	}
	return nil
}

// AddComment posts body on an issue, attributed to persona.
func (c *Client) AddComment(ctx context.Context, issueNumber int, persona models.PersonaID, body string) error {
	text := fmt.Sprintf("### 🤖 %s\n\n%s"+footer, persona.Title(), body, "comment")
	_, _, err := c.api.Issues.CreateComment(ctx, c.cfg.Owner, c.cfg.Repo, issueNumber, &gh.IssueComment{
		Body: gh.String(text),
	})
	if err != nil {
		return fmt.Errorf("comment on #%d: %w", issueNumber, err)
	}
	return nil
}

// WorkItemFromIssue fetches an issue and parses its work item.
func (c *Client) WorkItemFromIssue(ctx context.Context, number int) (*models.WorkItem, error) {
	issue, _, err := c.api.Issues.Get(ctx, c.cfg.Owner, c.cfg.Repo, number)
	if err != nil {
		return nil, fmt.Errorf("get issue #%d: %w", number, err)
	}
	return ParseWorkItem(issue)
}

// ParseWorkItem rebuilds a work item from an issue carrying a metadata block.
// Issues without a block yield nil, nil.
func ParseWorkItem(issue *gh.Issue) (*models.WorkItem, error) {
	meta, ok, err := ParseMetadata(issue.GetBody())
	if err != nil {
		return nil, fmt.Errorf("issue #%d metadata: %w", issue.GetNumber(), err)
	}
	if !ok {
		return nil, nil
	}

	typ := meta.Type
	var labels []string
	for _, l := range issue.Labels {
		name := l.GetName()
		if t := models.WorkItemType(name); t.Valid() {
			if typ == "" {
				typ = t
			}
			continue
		}
		labels = append(labels, name)
	}
	if typ == "" {
		typ = models.WorkItemTask
	}

	item := models.NewWorkItem(typ, titlePrefix.ReplaceAllString(issue.GetTitle(), ""), StripMetadata(issue.GetBody()))
	if meta.WorkItemID != "" {
		item.ID = meta.WorkItemID
	} else {
		item.ID = fmt.Sprint(issue.GetNumber())
	}
	item.ParentID = meta.ParentID
	if meta.Priority != 0 {
		item.Priority = meta.Priority
	}
	if meta.Status != "" {
		item.Status = meta.Status
	}
	item.Labels = labels
	item.GitHubIssueNumber = issue.GetNumber()
	item.GitHubIssueURL = issue.GetHTMLURL()
	return item, nil
}
