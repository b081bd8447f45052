package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/ShayCichocki/devteam/pkg/models"
)

var unsafeBranchChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// BranchName returns the feature branch of item:
// feature/<type>-<issue number or short id>-<slug of at most 30 chars>.
func BranchName(item *models.WorkItem) string {
	slug := unsafeBranchChars.ReplaceAllString(strings.ToLower(item.Title), "-")
	if len(slug) > 30 {
		slug = slug[:30]
	}
	ref := item.ShortID()
	if item.GitHubIssueNumber != 0 {
		ref = fmt.Sprint(item.GitHubIssueNumber)
	}
	return fmt.Sprintf("feature/%s-%s-%s", item.Type, ref, slug)
}

// CreateFeatureBranch branches item off the integration branch and records the name on item.
// An existing branch of the same name is reused.
func (c *Client) CreateFeatureBranch(ctx context.Context, item *models.WorkItem) (string, error) {
	name := BranchName(item)

	base, _, err := c.api.Repositories.GetBranch(ctx, c.cfg.Owner, c.cfg.Repo, c.cfg.IntegrationBranch, 1)
	if err != nil {
		return "", fmt.Errorf("get branch %s: %w", c.cfg.IntegrationBranch, err)
	}

	_, _, err = c.api.Git.CreateRef(ctx, c.cfg.Owner, c.cfg.Repo, &gh.Reference{
		Ref:    gh.String("refs/heads/" + name),
		Object: &gh.GitObject{SHA: gh.String(base.GetCommit().GetSHA())},
	})
	if err != nil && statusOf(err) != http.StatusUnprocessableEntity {
		return "", fmt.Errorf("create branch %s: %w", name, err)
	}

	item.GitHubBranch = name
	return name, nil
}

// DeleteBranch removes a branch. A missing branch is not an error.
func (c *Client) DeleteBranch(ctx context.Context, name string) error {
	_, err := c.api.Git.DeleteRef(ctx, c.cfg.Owner, c.cfg.Repo, "heads/"+name)
	if err != nil && statusOf(err) != http.StatusNotFound && statusOf(err) != http.StatusUnprocessableEntity {
		return fmt.Errorf("delete branch %s: %w", name, err)
	}
	return nil
}

// CommitArtifacts writes artifacts to the item's branch as one commit on top of its head.
// Returns the new commit SHA.
func (c *Client) CommitArtifacts(ctx context.Context, item *models.WorkItem, artifacts []models.Artifact, message string) (string, error) {
	if item.GitHubBranch == "" {
		return "", ErrNoBranch
	}
	for _, a := range artifacts {
		if a.TargetPath == "" {
			return "", fmt.Errorf("%w: %s", ErrNoTargetPath, a.ID)
		}
	}

	owner, repo := c.cfg.Owner, c.cfg.Repo
	ref, _, err := c.api.Git.GetRef(ctx, owner, repo, "heads/"+item.GitHubBranch)
	if err != nil {
		return "", fmt.Errorf("get ref %s: %w", item.GitHubBranch, err)
	}
	headSHA := ref.GetObject().GetSHA()

	head, _, err := c.api.Git.GetCommit(ctx, owner, repo, headSHA)
	if err != nil {
		return "", fmt.Errorf("get commit %s: %w", headSHA, err)
	}

	entries := make([]*gh.TreeEntry, 0, len(artifacts))
	for _, a := range artifacts {
		blob, _, err := c.api.Git.CreateBlob(ctx, owner, repo, &gh.Blob{
			Content:  gh.String(a.Content),
			Encoding: gh.String("utf-8"),
		})
		if err != nil {
			return "", fmt.Errorf("create blob for %s: %w", a.TargetPath, err)
		}
		entries = append(entries, &gh.TreeEntry{
			Path: gh.String(a.TargetPath),
			Mode: gh.String("100644"),
			Type: gh.String("blob"),
			SHA:  blob.SHA,
		})
	}

	tree, _, err := c.api.Git.CreateTree(ctx, owner, repo, head.GetTree().GetSHA(), entries)
	if err != nil {
		return "", fmt.Errorf("create tree: %w", err)
	}

	commit, _, err := c.api.Git.CreateCommit(ctx, owner, repo, &gh.Commit{
		Message: gh.String(message),
		Tree:    &gh.Tree{SHA: tree.SHA},
		Parents: []*gh.Commit{{SHA: gh.String(headSHA)}},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}

	ref.Object = &gh.GitObject{SHA: commit.SHA}
	if _, _, err := c.api.Git.UpdateRef(ctx, owner, repo, ref, false); err != nil {
		return "", fmt.Errorf("update ref %s: %w", item.GitHubBranch, err)
	}
	return commit.GetSHA(), nil
}
