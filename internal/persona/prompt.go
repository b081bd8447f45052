package persona

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// BuildPrompt renders the user prompt for a persona call.
func BuildPrompt(item *models.WorkItem, instructions string, repo *models.RepoState) string {
	var b strings.Builder
	b.WriteString("# Context\n")
	fmt.Fprintf(&b, "Work Item: %s\n", item.Title)
	fmt.Fprintf(&b, "Type: %s\n", item.Type)
	fmt.Fprintf(&b, "Status: %s\n", item.Status)

	fmt.Fprintf(&b, "\n## Description\n%s\n", item.Description)

	b.WriteString("\n## Acceptance Criteria\n")
	if len(item.AcceptanceCriteria) == 0 {
		b.WriteString("None specified\n")
	}
	for _, c := range item.AcceptanceCriteria {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}

	fmt.Fprintf(&b, "\n## Instructions\n%s\n", instructions)

	branch := "N/A"
	openPRs := 0
	if repo != nil {
		if repo.Branch != "" {
			branch = repo.Branch
		}
		openPRs = len(repo.OpenPRs)
	}
	b.WriteString("\n## Repository State\n")
	fmt.Fprintf(&b, "Branch: %s\n", branch)
	fmt.Fprintf(&b, "Open PRs: %d\n", openPRs)

	return b.String()
}

const verdictInstructions = `
## Response Format
The first line of your reply must be exactly one of:
VERDICT: APPROVE
VERDICT: REQUEST_CHANGES
VERDICT: COMMENT
VERDICT: BLOCK
Put each change you require on its own line starting with "CONCERN:".
`
