package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// defaultMaxTokens is used when a request does not set a ceiling.
const defaultMaxTokens = 4096

// Request is a single role-bound completion request.
type Request struct {
	// System holds the fixed role instructions.
	System string
	// Prompt is the user turn.
	Prompt string
	// Model overrides the client's default model when set.
	Model string
	// Temperature is passed through when non-negative.
	Temperature float64
	// MaxTokens caps the output length.
	MaxTokens int
}

// Completion is the text result of a Request.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
	Duration     time.Duration
}

// TotalTokens returns input plus output tokens.
func (c Completion) TotalTokens() int64 {
	return c.InputTokens + c.OutputTokens
}

// Runner provides text-in/text-out Claude API calls.
type Runner struct {
	client *Client
}

// NewRunner creates a new API runner.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Tracker returns the token tracker of the underlying client.
func (r *Runner) Tracker() *TokenTracker {
	return r.client.Tracker()
}

// Complete executes req and returns the concatenated text blocks.
func (r *Runner) Complete(ctx context.Context, req Request) (Completion, error) {
	model := r.client.Model()
	if req.Model != "" {
		model = r.client.TranslateModel(anthropic.Model(req.Model))
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature >= 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	start := time.Now()
	resp, err := r.client.sdk().Messages.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("API call failed: %w", err)
	}

	r.client.Tracker().Add(model, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return Completion{
		Text:         result.String(),
		Model:        string(model),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Duration:     time.Since(start),
	}, nil
}

// ExtractJSON finds the outermost JSON object or array in response and decodes it.
func ExtractJSON(response string, target any) error {
	jsonStart := strings.Index(response, "{")
	if jsonStart == -1 {
		jsonStart = strings.Index(response, "[")
	}
	jsonEnd := strings.LastIndex(response, "}")
	if jsonEnd == -1 {
		jsonEnd = strings.LastIndex(response, "]")
	}

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}

	jsonStr := response[jsonStart : jsonEnd+1]
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("parse JSON: %w (response: %s)", err, truncate(jsonStr, 200))
	}
	return nil
}

// truncate clips s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
