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

func TestBranchName(t *testing.T) {
	item := models.NewWorkItem(models.WorkItemTask, "Add OAuth2 login & session handling for admins", "")
	assert.Equal(t, "feature/task-"+item.ShortID()+"-add-oauth2-login-session-handl", BranchName(item))

	item.GitHubIssueNumber = 42
	assert.Equal(t, "feature/task-42-add-oauth2-login-session-handl", BranchName(item))
}

func TestCreateFeatureBranch(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /branches/develop", http.StatusOK, map[string]any{
		"name": "develop", "commit": map[string]any{"sha": "base123"},
	})
	api.on("POST /git/refs", http.StatusCreated, map[string]any{"ref": "refs/heads/x"})

	item := models.NewWorkItem(models.WorkItemBug, "Fix crash", "")
	item.GitHubIssueNumber = 8
	name, err := c.CreateFeatureBranch(context.Background(), item)
	require.NoError(t, err)

	assert.Equal(t, "feature/bug-8-fix-crash", name)
	assert.Equal(t, name, item.GitHubBranch)
	req, _ := api.find("POST", "/git/refs")
	assert.Equal(t, "refs/heads/feature/bug-8-fix-crash", req.Body["ref"])
	assert.Equal(t, "base123", req.Body["sha"])
}

func TestCreateFeatureBranch_ExistingBranchIsReused(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /branches/develop", http.StatusOK, map[string]any{"commit": map[string]any{"sha": "base"}})
	api.on("POST /git/refs", http.StatusUnprocessableEntity, map[string]any{"message": "Reference already exists"})

	item := models.NewWorkItem(models.WorkItemTask, "t", "")
	name, err := c.CreateFeatureBranch(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, name, item.GitHubBranch)
}

func TestCreateFeatureBranch_OtherErrorsFail(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /branches/develop", http.StatusOK, map[string]any{"commit": map[string]any{"sha": "base"}})
	api.on("POST /git/refs", http.StatusForbidden, map[string]any{"message": "nope"})

	item := models.NewWorkItem(models.WorkItemTask, "t", "")
	_, err := c.CreateFeatureBranch(context.Background(), item)
	require.Error(t, err)
	assert.Empty(t, item.GitHubBranch)
}

func TestDeleteBranch_MissingIsNoop(t *testing.T) {
	_, c := newFakeAPI(t)
	assert.NoError(t, c.DeleteBranch(context.Background(), "feature/gone"))
}

func TestCommitArtifacts(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /git/ref/heads/feature/x", http.StatusOK, map[string]any{
		"ref": "refs/heads/feature/x", "object": map[string]any{"sha": "head1"},
	})
	api.on("GET /git/commits/head1", http.StatusOK, map[string]any{
		"sha": "head1", "tree": map[string]any{"sha": "tree0"},
	})
	api.on("POST /git/blobs", http.StatusCreated, map[string]any{"sha": "blob1"})
	api.on("POST /git/trees", http.StatusCreated, map[string]any{"sha": "tree1"})
	api.on("POST /git/commits", http.StatusCreated, map[string]any{"sha": "commit1"})
	api.on("PATCH /git/refs/heads/feature/x", http.StatusOK, map[string]any{
		"ref": "refs/heads/feature/x", "object": map[string]any{"sha": "commit1"},
	})

	item := models.NewWorkItem(models.WorkItemTask, "t", "")
	item.GitHubBranch = "feature/x"
	artifacts := []models.Artifact{
		models.NewArtifact(models.ArtifactCode, models.PersonaDeveloper, "package a", "a/a.go"),
		models.NewArtifact(models.ArtifactTest, models.PersonaTester, "package a", "a/a_test.go"),
	}

	sha, err := c.CommitArtifacts(context.Background(), item, artifacts, "feat: implement changes")
	require.NoError(t, err)
	assert.Equal(t, "commit1", sha)

	tree, _ := api.find("POST", "/git/trees")
	assert.Equal(t, "tree0", tree.Body["base_tree"])
	entries := tree.Body["tree"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "a/a.go", entries[0].(map[string]any)["path"])
	assert.Equal(t, "100644", entries[0].(map[string]any)["mode"])

	commit, _ := api.find("POST", "/git/commits")
	assert.Equal(t, "feat: implement changes", commit.Body["message"])
	assert.Equal(t, []any{"head1"}, commit.Body["parents"])

	ref, _ := api.find("PATCH", "/git/refs/heads/feature/x")
	assert.Equal(t, "commit1", ref.Body["sha"])
}

func TestCommitArtifacts_Preconditions(t *testing.T) {
	api, c := newFakeAPI(t)
	item := models.NewWorkItem(models.WorkItemTask, "t", "")
	code := models.NewArtifact(models.ArtifactCode, models.PersonaDeveloper, "x", "x.go")

	_, err := c.CommitArtifacts(context.Background(), item, []models.Artifact{code}, "m")
	assert.True(t, errors.Is(err, ErrNoBranch))

	item.GitHubBranch = "feature/x"
	note := models.NewArtifact(models.ArtifactComment, models.PersonaDeveloper, "x", "")
	_, err = c.CommitArtifacts(context.Background(), item, []models.Artifact{code, note}, "m")
	assert.True(t, errors.Is(err, ErrNoTargetPath))

	assert.Zero(t, api.count())
}
