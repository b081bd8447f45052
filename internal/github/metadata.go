package github

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

const metadataMarker = "AI-DEV-TEAM-METADATA"

var metadataPattern = regexp.MustCompile(`(?s)<!-- ` + metadataMarker + `\n(.*?)\n-->\n?`)

// Metadata is the machine-readable block embedded at the top of issue bodies.
type Metadata struct {
	WorkItemID string
	Type       models.WorkItemType
	ParentID   string
	Priority   int
	Status     models.WorkItemStatus
}

// MetadataFor extracts the metadata of item.
func MetadataFor(item *models.WorkItem) Metadata {
	return Metadata{
		WorkItemID: item.ID,
		Type:       item.Type,
		ParentID:   item.ParentID,
		Priority:   item.Priority,
		Status:     item.Status,
	}
}

// Render formats the block.
func (m Metadata) Render() string {
	parent := m.ParentID
	if parent == "" {
		parent = "none"
	}
	return fmt.Sprintf("<!-- %s\nwork_item_id: %s\ntype: %s\nparent_id: %s\npriority: %d\nstatus: %s\n-->\n",
		metadataMarker, m.WorkItemID, m.Type, parent, m.Priority, m.Status)
}

// ParseMetadata finds and decodes the block in body.
// It reports false when body carries no block; unknown type or status values are errors.
func ParseMetadata(body string) (Metadata, bool, error) {
	var m Metadata
	match := metadataPattern.FindStringSubmatch(body)
	if match == nil {
		return m, false, nil
	}

	for _, line := range strings.Split(strings.TrimSpace(match[1]), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "work_item_id":
			m.WorkItemID = value
		case "type":
			t, err := models.ParseWorkItemType(value)
			if err != nil {
				return m, true, err
			}
			m.Type = t
		case "parent_id":
			if value != "none" {
				m.ParentID = value
			}
		case "priority":
			p, err := strconv.Atoi(value)
			if err != nil {
				return m, true, fmt.Errorf("priority %q: %w", value, err)
			}
			m.Priority = p
		case "status":
			s, err := models.ParseWorkItemStatus(value)
			if err != nil {
				return m, true, err
			}
			m.Status = s
		}
	}
	return m, true, nil
}

// StripMetadata removes the block from body.
func StripMetadata(body string) string {
	return strings.TrimLeft(metadataPattern.ReplaceAllString(body, ""), "\n")
}
