package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

const (
	maxRecentCommits = 10
	maxOpenIssues    = 20
)

// RepositoryState snapshots branch, recent commits, open pull requests and open issues.
// An empty branch means the integration branch.
func (c *Client) RepositoryState(ctx context.Context, branch string) (*models.RepoState, error) {
	if branch == "" {
		branch = c.cfg.IntegrationBranch
	}
	owner, repo := c.cfg.Owner, c.cfg.Repo
	st := &models.RepoState{
		Branch:            branch,
		DefaultBranch:     c.cfg.DefaultBranch,
		IntegrationBranch: c.cfg.IntegrationBranch,
	}

	commits, _, err := c.api.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: maxRecentCommits},
	})
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	for _, rc := range commits {
		if len(st.RecentCommits) == maxRecentCommits {
			break
		}
		msg, _, _ := strings.Cut(rc.GetCommit().GetMessage(), "\n")
		st.RecentCommits = append(st.RecentCommits, models.CommitInfo{
			SHA:     shortSHA(rc.GetSHA()),
			Message: msg,
			Author:  rc.GetCommit().GetAuthor().GetName(),
			Date:    rc.GetCommit().GetAuthor().GetDate().Time,
		})
	}

	prs, _, err := c.api.PullRequests.List(ctx, owner, repo, &gh.PullRequestListOptions{
		State:       "open",
		Base:        c.cfg.IntegrationBranch,
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	for _, pr := range prs {
		st.OpenPRs = append(st.OpenPRs, models.PullRequest{
			Number: pr.GetNumber(),
			Title:  pr.GetTitle(),
			Branch: pr.GetHead().GetRef(),
			URL:    pr.GetHTMLURL(),
		})
	}

	issues, _, err := c.api.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: maxOpenIssues},
	})
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		info := models.IssueInfo{Number: issue.GetNumber(), Title: issue.GetTitle()}
		for _, l := range issue.Labels {
			info.Labels = append(info.Labels, l.GetName())
		}
		st.OpenIssues = append(st.OpenIssues, info)
	}
	return st, nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
