package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ShayCichocki/devteam/internal/config"
	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/internal/state"
)

func TestRenderHistory(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	done := start.Add(90 * time.Second)
	runs := []state.Run{
		{
			Workflow:    "task",
			Title:       "Add login",
			Outcome:     state.OutcomeMerged,
			ItemStatus:  "merged",
			TokensUsed:  1234,
			PRNumber:    7,
			StartedAt:   start,
			CompletedAt: &done,
		},
		{
			Workflow:  "epic",
			Title:     strings.Repeat("x", 60),
			Outcome:   state.OutcomeRunning,
			StartedAt: start,
		},
	}

	var buf bytes.Buffer
	renderHistory(&buf, runs)
	out := buf.String()

	for _, want := range []string{"WORKFLOW", "Add login", "merged", "#7", "1234", "1m30s", "running", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 41)) {
		t.Error("long titles should be clipped")
	}
}

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()
	cfg.GitHub.Token = "ghp_abcdefghijklmnop"

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "github.default_branch", want: "main"},
		{key: "GitHub.Integration_Branch", want: "develop"},
		{key: "github.token", want: "***mnop"},
		{key: "server.port", want: "8000"},
		{key: "defaults.tier", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := getConfigValue(cfg, tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("getConfigValue(%q) should fail", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("getConfigValue(%q) failed: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("getConfigValue(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestNewGitHubClient_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.GitHub.Owner = "acme"

	client, err := newGitHubClient(cfg)
	if err != nil {
		t.Fatalf("newGitHubClient failed: %v", err)
	}
	if client != nil {
		t.Error("client should be nil without repo and token")
	}
}

func TestNewGitHubClient_BadMergeMethod(t *testing.T) {
	cfg := config.Default()
	cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Token = "acme", "shop", "tok"
	cfg.GitHub.MergeMethod = "octopus"

	if _, err := newGitHubClient(cfg); err == nil {
		t.Error("unknown merge method should fail")
	}
}

func TestNewPathGuard(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := config.Default()
	cfg.GitHub.ProtectedPaths = []string{"deploy/**"}

	guard, err := newPathGuard(cfg)
	if err != nil {
		t.Fatalf("newPathGuard failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"deploy/prod.tf", true},
		{".github/workflows/ci.yml", true},
		{"internal/auth/login.go", false},
	}
	for _, tt := range tests {
		if got := guard.IsProtected(tt.path); got != tt.want {
			t.Errorf("IsProtected(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	cfg.GitHub.ProtectedPaths = []string{"[unclosed"}
	if _, err := newPathGuard(cfg); err == nil {
		t.Error("invalid glob should fail")
	}
}

func TestEventColor(t *testing.T) {
	tests := []struct {
		typ  orchestrator.EventType
		want color.Attribute
	}{
		{orchestrator.EventWorkflowFailed, color.FgRed},
		{orchestrator.EventPersonaFailed, color.FgRed},
		{orchestrator.EventWorkflowCompleted, color.FgGreen},
		{orchestrator.EventPhaseStarted, color.FgCyan},
		{orchestrator.EventPersonaStarted, color.FgHiBlack},
	}
	for _, tt := range tests {
		if got := eventColor(tt.typ); got != tt.want {
			t.Errorf("eventColor(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestStreamEvents_NilChannel(t *testing.T) {
	wait := streamEvents(nil)
	wait()
}

func TestStreamEvents_DrainsUntilClosed(t *testing.T) {
	events := make(chan orchestrator.WorkflowEvent, 2)
	events <- orchestrator.WorkflowEvent{Type: orchestrator.EventPhaseStarted, Timestamp: time.Now()}
	events <- orchestrator.WorkflowEvent{Type: orchestrator.EventWorkflowCompleted, Timestamp: time.Now()}
	close(events)

	done := make(chan struct{})
	go func() {
		streamEvents(events)()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("streamEvents did not finish after the channel closed")
	}
}

func TestEpicCmdDescribesWorkflowOrder(t *testing.T) {
	long := epicCmd.Long
	order := []string{"product owner", "strategist and architect", "in parallel", "synthesizer"}
	last := -1
	for _, step := range order {
		i := strings.Index(long, step)
		if i < 0 {
			t.Fatalf("epic help missing %q:\n%s", step, long)
		}
		if i < last {
			t.Errorf("epic help mentions %q out of order", step)
		}
		last = i
	}
	for _, absent := range []string{"security reviewer", "DevOps"} {
		if strings.Contains(long, absent) {
			t.Errorf("epic help mentions %q, which takes no part in the epic workflow", absent)
		}
	}
}
