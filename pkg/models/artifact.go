package models

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactType tags what an artifact contains.
type ArtifactType string

const (
	ArtifactCode          ArtifactType = "code"
	ArtifactTest          ArtifactType = "test"
	ArtifactDocumentation ArtifactType = "documentation"
	ArtifactComment       ArtifactType = "comment"
	ArtifactIssue         ArtifactType = "issue"
	ArtifactPullRequest   ArtifactType = "pull_request"
	ArtifactReview        ArtifactType = "review"
	ArtifactADR           ArtifactType = "adr"
	ArtifactDiagram       ArtifactType = "diagram"
	ArtifactConfig        ArtifactType = "config"
)

// Valid returns true if the artifact type is a known value.
func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactCode, ArtifactTest, ArtifactDocumentation, ArtifactComment, ArtifactIssue,
		ArtifactPullRequest, ArtifactReview, ArtifactADR, ArtifactDiagram, ArtifactConfig:
		return true
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ArtifactType) UnmarshalText(b []byte) error {
	at := ArtifactType(b)
	if !at.Valid() {
		return fmt.Errorf("unknown artifact type %q", string(b))
	}
	*t = at
	return nil
}

// Artifact is a single output produced by a persona.
// Artifacts are not modified after creation.
type Artifact struct {
	ID         string            `json:"id"`
	Type       ArtifactType      `json:"type"`
	Content    string            `json:"content"`
	TargetPath string            `json:"target_path,omitempty"`
	Language   string            `json:"language,omitempty"`
	CreatedBy  PersonaID         `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewArtifact creates an artifact stamped with a fresh id and time.
func NewArtifact(typ ArtifactType, createdBy PersonaID, content, targetPath string) Artifact {
	return Artifact{
		ID:         uuid.New().String(),
		Type:       typ,
		Content:    content,
		TargetPath: targetPath,
		Language:   LanguageForPath(targetPath),
		CreatedBy:  createdBy,
		CreatedAt:  now().UTC(),
	}
}

var extLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".rs":   "rust",
	".rb":   "ruby",
	".md":   "markdown",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".sql":  "sql",
	".sh":   "shell",
}

// LanguageForPath infers a language tag from a file extension.
func LanguageForPath(p string) string {
	if p == "" {
		return ""
	}
	return extLanguages[strings.ToLower(path.Ext(p))]
}
