package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/devteam/pkg/models"
)

func TestStructuredContract(t *testing.T) {
	for _, a := range []models.Action{models.ActionImplement, models.ActionTest, models.ActionDocument} {
		contract, ok := structuredContract(a)
		assert.True(t, ok, a)
		assert.Contains(t, contract, `"files"`)
	}

	contract, ok := structuredContract(models.ActionBreakDown)
	assert.True(t, ok)
	assert.Contains(t, contract, `"stories"`)

	_, ok = structuredContract(models.ActionReview)
	assert.False(t, ok)
}

func TestParseFiles(t *testing.T) {
	reply := "Here you go:\n```json\n" + `{"files": [
		{"path": "/internal/limit/limit.go", "content": "package limit", "action": "create", "description": "limiter"},
		{"path": "internal/limit/limit_test.go", "content": "package limit"}
	], "commit_message": "Add limiter"}` + "\n```"

	artifacts, err := ParseFiles(models.ActionTest, models.PersonaTester, reply)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	first := artifacts[0]
	assert.Equal(t, models.ArtifactTest, first.Type)
	assert.Equal(t, models.PersonaTester, first.CreatedBy)
	assert.Equal(t, "internal/limit/limit.go", first.TargetPath)
	assert.Equal(t, "go", first.Language)
	assert.Equal(t, "limiter", first.Metadata["description"])
	assert.Equal(t, "create", first.Metadata["action"])
	assert.Equal(t, "Add limiter", first.Metadata["commit_message"])

	_, hasDesc := artifacts[1].Metadata["description"]
	assert.False(t, hasDesc)
}

func TestParseFiles_Errors(t *testing.T) {
	_, err := ParseFiles(models.ActionImplement, models.PersonaDeveloper, "no json here")
	assert.Error(t, err)

	_, err = ParseFiles(models.ActionImplement, models.PersonaDeveloper, `{"files": [{"path": "  ", "content": "x"}]}`)
	assert.ErrorContains(t, err, "no path")
}

func TestParseStories_RoundTrip(t *testing.T) {
	reply := `{"stories": [{"title": "Cart", "description": "Keep items", "acceptance_criteria": ["GIVEN items WHEN reload THEN kept"], "priority": 2, "story_points": 5, "dependencies": ["auth"]}]}`

	artifacts, err := ParseStories(models.PersonaProductOwner, reply)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, models.ArtifactIssue, artifacts[0].Type)
	assert.Equal(t, "Cart", artifacts[0].Metadata["title"])

	story, err := DecodeStory(artifacts[0])
	require.NoError(t, err)
	assert.Equal(t, "Cart", story.Title)
	assert.Equal(t, 5, story.StoryPoints)

	epic := models.NewEpic("Checkout")
	item := story.WorkItem(epic)
	assert.Equal(t, models.WorkItemStory, item.Type)
	assert.Equal(t, epic.ID, item.ParentID)
	assert.Equal(t, 2, item.Priority)
	require.NotNil(t, item.StoryPoints)
	assert.Equal(t, 5, *item.StoryPoints)
	assert.Equal(t, []string{"auth"}, item.DependsOn)
	require.Len(t, item.AcceptanceCriteria, 1)
}

func TestParseStories_MissingTitle(t *testing.T) {
	_, err := ParseStories(models.PersonaProductOwner, `{"stories": [{"description": "x"}]}`)
	assert.ErrorContains(t, err, "no title")
}

func TestDecodeStory_WrongType(t *testing.T) {
	a := models.NewArtifact(models.ArtifactCode, models.PersonaDeveloper, "{}", "main.go")
	_, err := DecodeStory(a)
	assert.Error(t, err)
}

func TestStoryDraft_WorkItemIgnoresBadPriority(t *testing.T) {
	item := StoryDraft{Title: "Cart", Priority: 9}.WorkItem(models.NewEpic("Checkout"))
	assert.Equal(t, models.DefaultPriority, item.Priority)
	assert.Nil(t, item.StoryPoints)
}
