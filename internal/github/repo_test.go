package github

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryState(t *testing.T) {
	api, c := newFakeAPI(t)
	api.on("GET /commits", http.StatusOK, []map[string]any{{
		"sha": "abcdef1234567",
		"commit": map[string]any{
			"message": "feat: login\n\nlong body",
			"author":  map[string]any{"name": "dev", "date": "2025-02-01T10:00:00Z"},
		},
	}})
	api.on("GET /pulls", http.StatusOK, []map[string]any{{
		"number": 3, "title": "Login", "html_url": "u", "head": map[string]any{"ref": "feature/task-3-login"},
	}})
	api.on("GET /issues", http.StatusOK, []map[string]any{
		{"number": 5, "title": "Epic", "labels": []map[string]any{{"name": "epic"}}},
		{"number": 3, "title": "Login", "pull_request": map[string]any{"url": "x"}},
	})

	st, err := c.RepositoryState(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "develop", st.Branch)
	assert.Equal(t, "main", st.DefaultBranch)
	require.Len(t, st.RecentCommits, 1)
	assert.Equal(t, "abcdef1", st.RecentCommits[0].SHA)
	assert.Equal(t, "feat: login", st.RecentCommits[0].Message)
	assert.Equal(t, "dev", st.RecentCommits[0].Author)
	require.Len(t, st.OpenPRs, 1)
	assert.Equal(t, "feature/task-3-login", st.OpenPRs[0].Branch)
	require.Len(t, st.OpenIssues, 1, "pull requests are not issues")
	assert.Equal(t, []string{"epic"}, st.OpenIssues[0].Labels)

	_, ok := api.find("GET", "/commits")
	assert.True(t, ok)
}
