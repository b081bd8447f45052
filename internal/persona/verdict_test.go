package persona

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/devteam/pkg/models"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     models.ReviewDecision
		concerns []string
	}{
		{
			name: "plain approve",
			text: "VERDICT: APPROVE\nLooks good.",
			want: models.ReviewApprove,
		},
		{
			name: "markdown decoration and leading blank lines",
			text: "\n\n**VERDICT: APPROVED**\n",
			want: models.ReviewApprove,
		},
		{
			name:     "request changes with concerns",
			text:     "Verdict: request changes\nCONCERN: validate input\nsome prose\nconcern: add a test\nCONCERN:",
			want:     models.ReviewRequestChanges,
			concerns: []string{"validate input", "add a test"},
		},
		{
			name: "trailing period",
			text: "VERDICT: comment.",
			want: models.ReviewComment,
		},
		{
			name:     "block",
			text:     "## VERDICT: BLOCK\nCONCERN: leaks credentials",
			want:     models.ReviewBlock,
			concerns: []string{"leaks credentials"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, concerns, err := ParseVerdict(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.concerns, concerns)
		})
	}
}

func TestParseVerdict_Errors(t *testing.T) {
	_, _, err := ParseVerdict("")
	assert.ErrorIs(t, err, ErrNoVerdict)

	_, _, err = ParseVerdict("Looks fine to me.\nVERDICT: APPROVE")
	assert.ErrorIs(t, err, ErrNoVerdict, "verdict must be the first line")

	_, _, err = ParseVerdict("VERDICT: MAYBE")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoVerdict))
	assert.Contains(t, err.Error(), "MAYBE")
}

func TestDecisionFor(t *testing.T) {
	assert.Equal(t, models.DecisionApprove, decisionFor(models.ReviewApprove))
	assert.Equal(t, models.DecisionRequestChanges, decisionFor(models.ReviewRequestChanges))
	assert.Equal(t, models.DecisionEscalate, decisionFor(models.ReviewBlock))
	assert.Equal(t, models.DecisionComplete, decisionFor(models.ReviewComment))
}

func TestParseVerdict_MissingVerdictQuotesWholeRunes(t *testing.T) {
	_, _, err := ParseVerdict(strings.Repeat("ü", 100) + "\nCONCERN: x")
	require.ErrorIs(t, err, ErrNoVerdict)
	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), strings.Repeat("ü", 80)+"...")
	assert.NotContains(t, err.Error(), strings.Repeat("ü", 81))
}
