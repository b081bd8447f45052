package github

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/devteam/pkg/models"
)

func TestCreatePullRequest(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("POST /pulls", http.StatusCreated, map[string]any{
		"number": 31, "html_url": "https://github.com/acme/shop/pull/31",
	})

	item := models.NewWorkItem(models.WorkItemTask, "Add login", "Users can log in")
	item.GitHubBranch = "feature/task-12-add-login"
	item.GitHubIssueNumber = 12

	n, err := c.CreatePullRequest(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, 31, n)
	assert.Equal(t, 31, item.GitHubPRNumber)
	assert.Equal(t, "https://github.com/acme/shop/pull/31", item.GitHubPRURL)

	req, _ := api.find("POST", "/pulls")
	assert.Equal(t, "[TASK] Add login", req.Body["title"])
	assert.Equal(t, "feature/task-12-add-login", req.Body["head"])
	assert.Equal(t, "develop", req.Body["base"])
	assert.Contains(t, req.Body["body"], "## Summary\n\nUsers can log in")
	assert.Contains(t, req.Body["body"], "Closes #12")
}

func TestCreatePullRequest_RequiresBranch(t *testing.T) {
	api, c := newFakeAPI(t)
	_, err := c.CreatePullRequest(context.Background(), models.NewWorkItem(models.WorkItemTask, "t", ""))
	assert.True(t, errors.Is(err, ErrNoBranch))
	assert.Zero(t, api.count())
}

func TestAddReview_Events(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("POST /pulls/4/reviews", http.StatusOK, map[string]any{"id": 1})

	require.NoError(t, c.AddReview(context.Background(), 4, models.PersonaSecurity, "No secrets leaked.", true))
	req, _ := api.find("POST", "/pulls/4/reviews")
	assert.Equal(t, "APPROVE", req.Body["event"])
	assert.Equal(t, "### 🤖 Security Reviewer Review\n\nNo secrets leaked.\n\n---\n*This review was generated by the AI Dev Team*\n", req.Body["body"])

	api2, c2 := newFakeAPI(t)
	api2.on("POST /pulls/4/reviews", http.StatusOK, map[string]any{"id": 2})
	require.NoError(t, c2.AddReview(context.Background(), 4, models.PersonaArchitect, "Split the handler.", false))
	req, _ = api2.find("POST", "/pulls/4/reviews")
	assert.Equal(t, "REQUEST_CHANGES", req.Body["event"])
}

func TestPullRequestDiff(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /pulls/4/files", http.StatusOK, []map[string]any{
		{"filename": "a.go", "status": "added", "additions": 3, "patch": "+package a"},
		{"filename": "logo.png", "status": "added"},
	})

	diff, err := c.PullRequestDiff(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "### a.go\n```diff\n+package a\n```\n\n### logo.png\n```diff\n\n```\n", diff)

	files, err := c.PullRequestFiles(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 3, files[0].Additions)
}

func TestMergePullRequest(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("PUT /pulls/4/merge", http.StatusOK, map[string]any{"merged": true, "sha": "m1"})

	require.NoError(t, c.MergePullRequest(context.Background(), 4, "Add login"))
	req, _ := api.find("PUT", "/pulls/4/merge")
	assert.Equal(t, "squash", req.Body["merge_method"])
	assert.Equal(t, "Add login", req.Body["commit_message"])
}

func TestMergePullRequest_NotMerged(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("PUT /pulls/4/merge", http.StatusOK, map[string]any{"merged": false, "message": "checks pending"})

	err := c.MergePullRequest(context.Background(), 4, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checks pending")
}
