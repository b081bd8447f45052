package persona

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/devteam/internal/api"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// FileSpec is one file in a structured implement/test/document reply.
type FileSpec struct {
	Path        string `json:"path"`
	Content     string `json:"content"`
	Action      string `json:"action,omitempty"`
	Description string `json:"description,omitempty"`
}

type filesReply struct {
	Files         []FileSpec `json:"files"`
	CommitMessage string     `json:"commit_message,omitempty"`
}

// StoryDraft is one story in a structured break_down reply.
type StoryDraft struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Priority           int      `json:"priority"`
	StoryPoints        int      `json:"story_points"`
	Dependencies       []string `json:"dependencies,omitempty"`
}

type storiesReply struct {
	Stories       []StoryDraft `json:"stories"`
	OpenQuestions []string     `json:"open_questions,omitempty"`
	Assumptions   []string     `json:"assumptions,omitempty"`
}

const filesContract = `
## Output Format
Reply with a single JSON object and nothing else:
{"files": [{"path": "relative/path", "content": "full file content", "action": "create|update", "description": "why"}], "commit_message": "..."}
`

const storiesContract = `
## Output Format
Reply with a single JSON object and nothing else:
{"stories": [{"title": "...", "description": "...", "acceptance_criteria": ["GIVEN ... WHEN ... THEN ..."], "priority": 1, "story_points": 3, "dependencies": []}], "open_questions": [], "assumptions": []}
`

// structuredContract returns the reply contract for action, if it has one.
func structuredContract(action models.Action) (string, bool) {
	switch action {
	case models.ActionImplement, models.ActionTest, models.ActionDocument:
		return filesContract, true
	case models.ActionBreakDown:
		return storiesContract, true
	default:
		return "", false
	}
}

func artifactTypeFor(action models.Action) models.ArtifactType {
	switch action {
	case models.ActionTest:
		return models.ArtifactTest
	case models.ActionDocument:
		return models.ArtifactDocumentation
	default:
		return models.ArtifactCode
	}
}

// parseStructured decodes a structured reply into artifacts.
func parseStructured(action models.Action, persona models.PersonaID, text string) ([]models.Artifact, error) {
	switch action {
	case models.ActionBreakDown:
		return ParseStories(persona, text)
	default:
		return ParseFiles(action, persona, text)
	}
}

// ParseFiles converts a files reply into artifacts with target paths.
func ParseFiles(action models.Action, persona models.PersonaID, text string) ([]models.Artifact, error) {
	var reply filesReply
	if err := api.ExtractJSON(text, &reply); err != nil {
		return nil, err
	}

	artifacts := make([]models.Artifact, 0, len(reply.Files))
	for i, f := range reply.Files {
		path := strings.TrimPrefix(strings.TrimSpace(f.Path), "/")
		if path == "" {
			return nil, fmt.Errorf("file %d has no path", i)
		}
		a := models.NewArtifact(artifactTypeFor(action), persona, f.Content, path)
		a.Metadata = map[string]string{}
		if f.Description != "" {
			a.Metadata["description"] = f.Description
		}
		if f.Action != "" {
			a.Metadata["action"] = f.Action
		}
		if reply.CommitMessage != "" {
			a.Metadata["commit_message"] = reply.CommitMessage
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// ParseStories converts a stories reply into issue artifacts, one per story.
func ParseStories(persona models.PersonaID, text string) ([]models.Artifact, error) {
	var reply storiesReply
	if err := api.ExtractJSON(text, &reply); err != nil {
		return nil, err
	}

	artifacts := make([]models.Artifact, 0, len(reply.Stories))
	for i, s := range reply.Stories {
		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf("story %d has no title", i)
		}
		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode story %d: %w", i, err)
		}
		a := models.NewArtifact(models.ArtifactIssue, persona, string(data), "")
		a.Metadata = map[string]string{"title": s.Title}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// DecodeStory reads a story back out of an issue artifact.
func DecodeStory(a models.Artifact) (StoryDraft, error) {
	var s StoryDraft
	if a.Type != models.ArtifactIssue {
		return s, fmt.Errorf("artifact %s is %s, not issue", a.ID, a.Type)
	}
	if err := json.Unmarshal([]byte(a.Content), &s); err != nil {
		return s, fmt.Errorf("decode story: %w", err)
	}
	return s, nil
}

// WorkItem builds a story work item under parent.
func (s StoryDraft) WorkItem(parent *models.WorkItem) *models.WorkItem {
	item := models.NewWorkItem(models.WorkItemStory, s.Title, s.Description)
	item.ParentID = parent.ID
	if s.Priority >= 1 && s.Priority <= 4 {
		item.Priority = s.Priority
	}
	if s.StoryPoints > 0 {
		points := s.StoryPoints
		item.StoryPoints = &points
	}
	item.DependsOn = s.Dependencies
	for _, ac := range s.AcceptanceCriteria {
		item.AddAcceptanceCriterion(ac)
	}
	return item
}
