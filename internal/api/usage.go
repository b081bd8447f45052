package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
)

// price is USD per million tokens.
type price struct {
	input, output float64
}

var (
	sonnetPrice = price{3.0, 15.0}
	opusPrice   = price{15.0, 75.0}
	haikuPrice  = price{1.0, 5.0}
)

// priceFor matches on model family; Bedrock profile names contain the same family.
func priceFor(model anthropic.Model) price {
	name := string(model)
	switch {
	case strings.Contains(name, "opus"):
		return opusPrice
	case strings.Contains(name, "haiku"):
		return haikuPrice
	default:
		return sonnetPrice
	}
}

// Usage is the token count for one model.
type Usage struct {
	Model        string
	Calls        int
	InputTokens  int64
	OutputTokens int64
}

// Cost estimates the USD cost of u.
func (u Usage) Cost() float64 {
	p := priceFor(anthropic.Model(u.Model))
	return float64(u.InputTokens)/1_000_000*p.input + float64(u.OutputTokens)/1_000_000*p.output
}

// TokenTracker tracks token usage across API calls, per model.
type TokenTracker struct {
	mu      sync.Mutex
	byModel map[string]*Usage
}

// NewTokenTracker creates a new token tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{byModel: make(map[string]*Usage)}
}

// Add records token usage from one call to model.
func (t *TokenTracker) Add(model anthropic.Model, input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.byModel[string(model)]
	if !ok {
		u = &Usage{Model: string(model)}
		t.byModel[string(model)] = u
	}
	u.Calls++
	u.InputTokens += input
	u.OutputTokens += output
}

// Total returns the input and output tokens across all models.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range t.byModel {
		input += u.InputTokens
		output += u.OutputTokens
	}
	return input, output
}

// Calls returns the number of API calls made.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, u := range t.byModel {
		n += u.Calls
	}
	return n
}

// ByModel returns a snapshot sorted by model name.
func (t *TokenTracker) ByModel() []Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Usage, 0, len(t.byModel))
	for _, u := range t.byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

// Cost estimates the total USD cost using per-family pricing.
func (t *TokenTracker) Cost() float64 {
	total := 0.0
	for _, u := range t.ByModel() {
		total += u.Cost()
	}
	return total
}

// Reset clears all tracked usage.
func (t *TokenTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byModel = make(map[string]*Usage)
}
