package models

import (
	"fmt"
	"strings"
)

// Markdown renders the work item as an issue body.
func (w *WorkItem) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", w.Title)
	fmt.Fprintf(&b, "**Type:** %s\n", humanize(string(w.Type)))
	fmt.Fprintf(&b, "**Status:** %s\n", humanize(string(w.Status)))
	fmt.Fprintf(&b, "**Priority:** P%d\n", w.Priority)
	if w.AssignedTo != "" {
		fmt.Fprintf(&b, "**Assigned To:** %s\n", w.AssignedTo.Title())
	}
	if w.StoryPoints != nil && *w.StoryPoints > 0 {
		fmt.Fprintf(&b, "**Story Points:** %d\n", *w.StoryPoints)
	}

	fmt.Fprintf(&b, "\n## Description\n\n%s\n", w.Description)

	if len(w.AcceptanceCriteria) > 0 {
		b.WriteString("\n## Acceptance Criteria\n\n")
		for _, c := range w.AcceptanceCriteria {
			box := " "
			if c.Met {
				box = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", box, c.Description)
		}
	}

	if len(w.DependsOn) > 0 {
		fmt.Fprintf(&b, "\n## Dependencies\n\nBlocked by: %s\n", strings.Join(w.DependsOn, ", "))
	}
	return b.String()
}

// humanize turns "in_review" into "In Review".
func humanize(s string) string {
	words := strings.Split(s, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
