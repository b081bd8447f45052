// Package github performs the repository side of the workflows: issues,
// labels, branches, commits, pull requests and reviews, plus webhook parsing.
package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// Missing preconditions, reported before any API call.
var (
	ErrNoIssue       = errors.New("work item has no associated GitHub issue")
	ErrNoBranch      = errors.New("work item has no associated branch")
	ErrNoTargetPath  = errors.New("artifact has no target path")
	ErrNoPullRequest = errors.New("work item has no pull request")
)

// Default branch and merge settings.
const (
	DefaultBranch            = "main"
	DefaultIntegrationBranch = "develop"
	DefaultMergeMethod       = "squash"
)

const footer = "\n\n---\n*This %s was generated by the AI Dev Team*\n"

// Config identifies the repository and how to work in it.
type Config struct {
	Owner             string
	Repo              string
	Token             string
	DefaultBranch     string
	IntegrationBranch string
	// MergeMethod is merge, squash or rebase.
	MergeMethod string
	// BaseURL points at a GitHub Enterprise or test API root.
	BaseURL string
}

// Client talks to one GitHub repository.
type Client struct {
	api *gh.Client
	cfg Config
}

// New creates a client for cfg.Owner/cfg.Repo.
func New(cfg Config) (*Client, error) {
	return NewWithHTTPClient(cfg, nil)
}

// NewWithHTTPClient creates a client that sends requests through hc.
func NewWithHTTPClient(cfg Config, hc *http.Client) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("github owner and repo are required")
	}
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = DefaultBranch
	}
	if cfg.IntegrationBranch == "" {
		cfg.IntegrationBranch = DefaultIntegrationBranch
	}
	switch cfg.MergeMethod {
	case "":
		cfg.MergeMethod = DefaultMergeMethod
	case "merge", "squash", "rebase":
	default:
		return nil, fmt.Errorf("unknown merge method %q", cfg.MergeMethod)
	}

	api := gh.NewClient(hc)
	if cfg.Token != "" {
		api = api.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		api.BaseURL = u
	}
	return &Client{api: api, cfg: cfg}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// statusOf returns the HTTP status of a GitHub API error, or 0.
func statusOf(err error) int {
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		return er.Response.StatusCode
	}
	return 0
}
