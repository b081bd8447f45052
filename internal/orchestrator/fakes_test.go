package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ShayCichocki/devteam/internal/persona"
	"github.com/ShayCichocki/devteam/internal/state"
	"github.com/ShayCichocki/devteam/pkg/models"
)

type replyFunc func(call persona.Call) (*models.PersonaResponse, error)

type fakeInvoker struct {
	mu    sync.Mutex
	calls []persona.Call
	reply replyFunc
}

func (f *fakeInvoker) Invoke(ctx context.Context, call persona.Call) (*models.PersonaResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(call)
	}
	return respond(call, string(call.Persona)+" output"), nil
}

func (f *fakeInvoker) personas() []models.PersonaID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PersonaID, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Persona)
	}
	return out
}

func (f *fakeInvoker) call(p models.PersonaID) (persona.Call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Persona == p {
			return c, true
		}
	}
	return persona.Call{}, false
}

func respond(call persona.Call, text string) *models.PersonaResponse {
	msg := models.NewPersonaMessage(call.WorkItem, call.Action)
	resp := models.NewPersonaResponse(call.Persona, msg, text)
	resp.TokensUsed = 10
	return resp
}

// reviewing answers review calls with the verdict chosen for each reviewer.
func reviewing(verdicts map[models.PersonaID]models.ReviewDecision) replyFunc {
	return func(call persona.Call) (*models.PersonaResponse, error) {
		resp := respond(call, string(call.Persona)+" output")
		if call.Action != models.ActionReview {
			return resp, nil
		}
		v, ok := verdicts[call.Persona]
		if !ok {
			return nil, fmt.Errorf("no verdict scripted for %s", call.Persona)
		}
		resp.ReviewDecision = v
		if v == models.ReviewRequestChanges {
			resp.Decision = models.DecisionRequestChanges
			resp.FollowUpActions = []models.FollowUpAction{{
				Action:      models.ActionImplement,
				AssignedTo:  models.PersonaDeveloper,
				WorkItemID:  call.WorkItem.ID,
				Description: "fix from " + string(call.Persona),
			}}
		}
		return resp, nil
	}
}

func approveAll() replyFunc {
	return reviewing(map[models.PersonaID]models.ReviewDecision{
		models.PersonaArchitect: models.ReviewApprove,
		models.PersonaSecurity:  models.ReviewApprove,
	})
}

type publishedReview struct {
	pr       int
	reviewer models.PersonaID
	approve  bool
}

type fakeGitHub struct {
	mu         sync.Mutex
	issues     []*models.WorkItem
	branches   []string
	commits    [][]models.Artifact
	messages   []string
	prs        []int
	reviews    []publishedReview
	merged     []int
	diffs      []int
	nextIssue  int
	prNumber   int
	reviewErr  error
	branchErr  error
	mergeCalls int
}

func (f *fakeGitHub) CreateIssue(ctx context.Context, item *models.WorkItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextIssue++
	item.GitHubIssueNumber = 100 + f.nextIssue
	f.issues = append(f.issues, item)
	return nil
}

func (f *fakeGitHub) CreateFeatureBranch(ctx context.Context, item *models.WorkItem) (string, error) {
	if f.branchErr != nil {
		return "", f.branchErr
	}
	name := "feature/task-" + item.ShortID()
	f.mu.Lock()
	f.branches = append(f.branches, name)
	f.mu.Unlock()
	return name, nil
}

func (f *fakeGitHub) CommitArtifacts(ctx context.Context, item *models.WorkItem, artifacts []models.Artifact, message string) (string, error) {
	if item.GitHubBranch == "" {
		return "", errors.New("no branch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, artifacts)
	f.messages = append(f.messages, message)
	return "0123456789abcdef", nil
}

func (f *fakeGitHub) CreatePullRequest(ctx context.Context, item *models.WorkItem) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prs = append(f.prs, f.prNumber)
	return f.prNumber, nil
}

func (f *fakeGitHub) AddReview(ctx context.Context, pr int, reviewer models.PersonaID, body string, approve bool) error {
	if f.reviewErr != nil {
		return f.reviewErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, publishedReview{pr: pr, reviewer: reviewer, approve: approve})
	return nil
}

func (f *fakeGitHub) PullRequestDiff(ctx context.Context, pr int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diffs = append(f.diffs, pr)
	return "### main.go\n```diff\n+package main\n```", nil
}

func (f *fakeGitHub) MergePullRequest(ctx context.Context, pr int, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged = append(f.merged, pr)
	return nil
}

type prefixGuard string

func (g prefixGuard) IsProtected(path string) bool {
	return len(path) >= len(g) && path[:len(g)] == string(g)
}

type fakeJournal struct {
	mu   sync.Mutex
	runs []*state.Run
}

func (j *fakeJournal) RecordRun(r *state.Run) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, r)
	return nil
}

func newTestOrchestrator(inv PersonaInvoker, opts ...Option) *Orchestrator {
	opts = append([]Option{WithEventBuffer(0)}, opts...)
	return New(RequiredConfig{Invoker: inv}, opts...)
}

func newTask(title string) *models.WorkItem {
	item := models.NewWorkItem(models.WorkItemTask, title, "description of "+title)
	item.AddAcceptanceCriterion("it works")
	return item
}
