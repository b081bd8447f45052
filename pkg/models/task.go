package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TaskDefinition is the on-disk JSON format for submitting a task.
type TaskDefinition struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Type               string   `json:"type,omitempty"`
	Priority           int      `json:"priority,omitempty"`
	Labels             []string `json:"labels,omitempty"`
}

// ParseTaskDefinition decodes a task definition and builds the work item.
// Type defaults to task and priority to DefaultPriority.
func ParseTaskDefinition(data []byte) (*WorkItem, error) {
	var def TaskDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse task definition: %w", err)
	}
	if strings.TrimSpace(def.Title) == "" {
		return nil, fmt.Errorf("task definition: title is required")
	}

	typ := WorkItemTask
	if def.Type != "" {
		parsed, err := ParseWorkItemType(strings.ToLower(def.Type))
		if err != nil {
			return nil, fmt.Errorf("task definition: %w", err)
		}
		typ = parsed
	}

	item := NewWorkItem(typ, def.Title, def.Description)
	if def.Priority != 0 {
		if def.Priority < 1 || def.Priority > 4 {
			return nil, fmt.Errorf("task definition: priority %d out of range 1-4", def.Priority)
		}
		item.Priority = def.Priority
	}
	item.Labels = def.Labels
	for _, ac := range def.AcceptanceCriteria {
		item.AddAcceptanceCriterion(ac)
	}
	return item, nil
}

// LoadTaskDefinition reads and parses a task definition file.
func LoadTaskDefinition(path string) (*WorkItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return ParseTaskDefinition(data)
}

// MaxEpicTitle caps the title derived from an epic description, in runes.
const MaxEpicTitle = 100

// NewEpic builds an epic whose title is the start of description.
func NewEpic(description string) *WorkItem {
	description = strings.TrimSpace(description)
	title := description
	if r := []rune(title); len(r) > MaxEpicTitle {
		title = string(r[:MaxEpicTitle])
	}
	return NewWorkItem(WorkItemEpic, title, description)
}
