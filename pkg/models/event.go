package models

import "time"

// GitHubEvent is a normalized inbound webhook record.
type GitHubEvent struct {
	// Type is the X-GitHub-Event header value (issues, pull_request, ...).
	Type string `json:"event_type"`
	// Action is the payload action (opened, assigned, ...).
	Action      string `json:"action"`
	IssueNumber int    `json:"issue_number,omitempty"`
	PRNumber    int    `json:"pr_number,omitempty"`
	Sender      string `json:"sender,omitempty"`
	Body        string `json:"body,omitempty"`
	// Item is the work item parsed from the issue body, if any.
	Item       *WorkItem `json:"work_item,omitempty"`
	Payload    []byte    `json:"-"`
	ReceivedAt time.Time `json:"received_at"`
}

// RepoState is a snapshot of the remote repository used as prompt context.
type RepoState struct {
	Branch            string        `json:"branch,omitempty"`
	RecentCommits     []CommitInfo  `json:"recent_commits,omitempty"`
	OpenPRs           []PullRequest `json:"open_prs,omitempty"`
	OpenIssues        []IssueInfo   `json:"open_issues,omitempty"`
	DefaultBranch     string        `json:"default_branch"`
	IntegrationBranch string        `json:"integration_branch"`
}

// CommitInfo summarizes a commit.
type CommitInfo struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// PullRequest summarizes an open pull request.
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Branch string `json:"branch"`
	URL    string `json:"url"`
}

// IssueInfo summarizes an open issue.
type IssueInfo struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Labels []string `json:"labels,omitempty"`
}
