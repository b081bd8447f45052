package persona

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// ErrNoVerdict is returned when a review reply does not open with a verdict line.
var ErrNoVerdict = errors.New("review reply has no verdict line")

var verdicts = map[string]models.ReviewDecision{
	"APPROVE":         models.ReviewApprove,
	"APPROVED":        models.ReviewApprove,
	"REQUEST_CHANGES": models.ReviewRequestChanges,
	"REQUEST CHANGES": models.ReviewRequestChanges,
	"COMMENT":         models.ReviewComment,
	"BLOCK":           models.ReviewBlock,
}

// ParseVerdict reads the review decision from the first non-empty line and
// collects every "CONCERN:" line.
func ParseVerdict(text string) (models.ReviewDecision, []string, error) {
	var decision models.ReviewDecision
	var concerns []string
	seenFirst := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !seenFirst {
			seenFirst = true
			d, err := parseVerdictLine(line)
			if err != nil {
				return "", nil, err
			}
			decision = d
			continue
		}
		if len(line) > len("CONCERN:") && strings.EqualFold(line[:len("CONCERN:")], "CONCERN:") {
			if concern := strings.TrimSpace(line[len("CONCERN:"):]); concern != "" {
				concerns = append(concerns, concern)
			}
		}
	}

	if !seenFirst {
		return "", nil, ErrNoVerdict
	}
	return decision, concerns, nil
}

func parseVerdictLine(line string) (models.ReviewDecision, error) {
	line = strings.Trim(line, "*#`_ ")
	upper := strings.ToUpper(line)
	if !strings.HasPrefix(upper, "VERDICT:") {
		return "", fmt.Errorf("%w: %q", ErrNoVerdict, truncate(line, 80))
	}
	value := strings.Trim(strings.TrimSpace(upper[len("VERDICT:"):]), "*`_ .")
	d, ok := verdicts[value]
	if !ok {
		return "", fmt.Errorf("unknown review verdict %q", value)
	}
	return d, nil
}

// decisionFor maps a review verdict onto the response decision.
func decisionFor(r models.ReviewDecision) models.Decision {
	switch r {
	case models.ReviewApprove:
		return models.DecisionApprove
	case models.ReviewRequestChanges:
		return models.DecisionRequestChanges
	case models.ReviewBlock:
		return models.DecisionEscalate
	default:
		return models.DecisionComplete
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
