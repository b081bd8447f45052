// Package api provides the Anthropic API integration used to run persona prompts.
package api

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultModel is used when neither the config nor a persona names a model.
const DefaultModel = anthropic.ModelClaudeSonnet4_20250514

// ErrNoAPIKey is returned for direct API access without a key.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY environment variable is not set")

// Short names accepted wherever a model is configured.
var modelAliases = map[string]anthropic.Model{
	"sonnet": anthropic.ModelClaudeSonnet4_5_20250929,
	"opus":   anthropic.ModelClaudeOpus4_5_20251101,
	"haiku":  anthropic.ModelClaudeHaiku4_5_20251001,
}

// datedModel matches versioned model ids, the only ones Bedrock profiles exist for.
var datedModel = regexp.MustCompile(`^claude-[a-z0-9-]+-\d{8}$`)

// Client wraps the Anthropic SDK client with token tracking.
type Client struct {
	inner   anthropic.Client
	model   anthropic.Model
	bedrock bool
	tracker *TokenTracker
}

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// Model is the default model for calls that do not name one.
	Model anthropic.Model
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY env var.
	APIKey string
	// BaseURL overrides the API endpoint (proxies, local fakes).
	BaseURL string
	// MaxRetries is the SDK retry count. Zero disables retries; negative keeps the SDK default.
	MaxRetries int
	// UseAWSBedrock routes calls through AWS Bedrock using the default AWS credential chain.
	UseAWSBedrock bool
	AWSRegion     string
	AWSProfile    string
}

// NewClient creates a new Anthropic API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	opts, err := requestOptions(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		inner:   anthropic.NewClient(opts...),
		bedrock: cfg.UseAWSBedrock,
		tracker: NewTokenTracker(),
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	c.model = c.TranslateModel(model)
	return c, nil
}

func requestOptions(cfg ClientConfig) ([]option.RequestOption, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		var load []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			load = append(load, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			load = append(load, config.WithSharedConfigProfile(cfg.AWSProfile))
		}
		opts = append(opts, bedrock.WithLoadDefaultConfig(context.Background(), load...))
	} else {
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return nil, ErrNoAPIKey
		}
		opts = append(opts, option.WithAPIKey(key))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return opts, nil
}

func (c *Client) sdk() *anthropic.Client {
	return &c.inner
}

// Model returns the default model name.
func (c *Client) Model() anthropic.Model {
	return c.model
}

// Tracker returns the token tracker for this client.
func (c *Client) Tracker() *TokenTracker {
	return c.tracker
}

// TranslateModel resolves aliases and, for Bedrock clients, maps dated model
// ids to their cross-region inference profile (us.anthropic.<id>-v1:0).
// Other names pass through unchanged.
func (c *Client) TranslateModel(model anthropic.Model) anthropic.Model {
	if m, ok := modelAliases[strings.ToLower(string(model))]; ok {
		model = m
	}
	if c.bedrock && datedModel.MatchString(string(model)) {
		return anthropic.Model("us.anthropic." + string(model) + "-v1:0")
	}
	return model
}
