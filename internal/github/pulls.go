package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// FileChange is one file touched by a pull request.
type FileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

// PullRequestBody renders the description of the item's pull request.
func PullRequestBody(item *models.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Summary\n\n%s\n\n", item.Description)
	if item.GitHubIssueNumber != 0 {
		fmt.Fprintf(&b, "## Related Issue\n\nCloses #%d\n\n", item.GitHubIssueNumber)
	}
	b.WriteString("## Checklist\n\n" +
		"- [ ] Code follows project conventions\n" +
		"- [ ] Tests added/updated\n" +
		"- [ ] Documentation updated\n" +
		"- [ ] Security review passed\n\n" +
		"---\n*This PR was created by the AI Dev Team*\n")
	return b.String()
}

// CreatePullRequest opens a pull request from the item's branch into the integration branch.
func (c *Client) CreatePullRequest(ctx context.Context, item *models.WorkItem) (int, error) {
	if item.GitHubBranch == "" {
		return 0, ErrNoBranch
	}
	pr, _, err := c.api.PullRequests.Create(ctx, c.cfg.Owner, c.cfg.Repo, &gh.NewPullRequest{
		Title: gh.String(IssueTitle(item)),
		Head:  gh.String(item.GitHubBranch),
		Base:  gh.String(c.cfg.IntegrationBranch),
		Body:  gh.String(PullRequestBody(item)),
	})
	if err != nil {
		return 0, fmt.Errorf("create pull request: %w", err)
	}
	item.GitHubPRNumber = pr.GetNumber()
	item.GitHubPRURL = pr.GetHTMLURL()
	return pr.GetNumber(), nil
}

// AddReview publishes a persona's review as an approval or a change request.
func (c *Client) AddReview(ctx context.Context, prNumber int, persona models.PersonaID, body string, approve bool) error {
	event := "REQUEST_CHANGES"
	if approve {
		event = "APPROVE"
	}
	text := fmt.Sprintf("### 🤖 %s Review\n\n%s"+footer, persona.Title(), body, "review")
	_, _, err := c.api.PullRequests.CreateReview(ctx, c.cfg.Owner, c.cfg.Repo, prNumber, &gh.PullRequestReviewRequest{
		Body:  gh.String(text),
		Event: gh.String(event),
	})
	if err != nil {
		return fmt.Errorf("review #%d: %w", prNumber, err)
	}
	return nil
}

// PullRequestFiles lists the files changed by a pull request.
func (c *Client) PullRequestFiles(ctx context.Context, prNumber int) ([]FileChange, error) {
	var files []FileChange
	opts := &gh.ListOptions{PerPage: 100}
	for {
		page, resp, err := c.api.PullRequests.ListFiles(ctx, c.cfg.Owner, c.cfg.Repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list files of #%d: %w", prNumber, err)
		}
		for _, f := range page {
			files = append(files, FileChange{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}
		if resp.NextPage == 0 {
			return files, nil
		}
		opts.Page = resp.NextPage
	}
}

// PullRequestDiff renders the per-file patches of a pull request as markdown.
func (c *Client) PullRequestDiff(ctx context.Context, prNumber int) (string, error) {
	files, err := c.PullRequestFiles(ctx, prNumber)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, fmt.Sprintf("### %s\n```diff\n%s\n```\n", f.Filename, f.Patch))
	}
	return strings.Join(parts, "\n"), nil
}

// MergePullRequest merges a pull request with the configured merge method.
func (c *Client) MergePullRequest(ctx context.Context, prNumber int, message string) error {
	if prNumber == 0 {
		return ErrNoPullRequest
	}
	result, _, err := c.api.PullRequests.Merge(ctx, c.cfg.Owner, c.cfg.Repo, prNumber, message, &gh.PullRequestOptions{
		MergeMethod: c.cfg.MergeMethod,
	})
	if err != nil {
		return fmt.Errorf("merge #%d: %w", prNumber, err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("merge #%d: %s", prNumber, result.GetMessage())
	}
	return nil
}
