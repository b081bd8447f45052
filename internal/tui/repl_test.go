package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

type fakeRunner struct {
	mu    sync.Mutex
	epics []*models.WorkItem
	tasks []*models.WorkItem
	err   error
}

func (f *fakeRunner) ProcessEpic(ctx context.Context, epic *models.WorkItem) (*orchestrator.WorkflowState, error) {
	f.mu.Lock()
	f.epics = append(f.epics, epic)
	f.mu.Unlock()
	return orchestrator.NewWorkflowState(epic, orchestrator.PhasePlanning), f.err
}

func (f *fakeRunner) ProcessTask(ctx context.Context, task *models.WorkItem) (*orchestrator.WorkflowState, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()
	task.TransitionTo(models.StatusApproved)
	return orchestrator.NewWorkflowState(task, orchestrator.PhaseImplementation), f.err
}

// submit feeds one line and runs the resulting command, if any, back into the model.
func submit(t *testing.T, r *REPL, line string) tea.Cmd {
	t.Helper()
	_, cmd := r.Update(LineSubmittedMsg{Text: line})
	return cmd
}

// settle runs cmd and feeds its message back, returning the follow-up command.
func settle(r *REPL, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := r.Update(cmd())
	return next
}

func output(r *REPL) string {
	return strings.Join(r.Lines(), "\n")
}

func TestREPL_Help(t *testing.T) {
	r := NewREPL(Config{Runner: &fakeRunner{}})

	assert.Nil(t, submit(t, r, "help"))
	assert.Contains(t, output(r), "epic <description>")
	assert.Contains(t, output(r), "quit")
}

func TestREPL_Quit(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q", "QUIT"} {
		r := NewREPL(Config{Runner: &fakeRunner{}})
		cmd := submit(t, r, word)
		require.NotNil(t, cmd, word)
		assert.IsType(t, tea.QuitMsg{}, cmd(), word)
		assert.Contains(t, r.View(), "Goodbye")
	}
}

func TestREPL_UnknownCommand(t *testing.T) {
	r := NewREPL(Config{Runner: &fakeRunner{}})

	submit(t, r, "deploy everything")

	assert.Contains(t, output(r), "Unknown command: deploy everything. Type 'help' for commands.")
}

func TestREPL_EpicRequiresDescription(t *testing.T) {
	runner := &fakeRunner{}
	r := NewREPL(Config{Runner: runner})

	assert.Nil(t, submit(t, r, "epic   "))
	assert.Contains(t, output(r), "Please provide an Epic description")
	assert.Empty(t, runner.epics)
}

func TestREPL_Epic(t *testing.T) {
	runner := &fakeRunner{}
	var saved *orchestrator.WorkflowState
	r := NewREPL(Config{
		Runner: runner,
		SaveEpic: func(st *orchestrator.WorkflowState) (string, error) {
			saved = st
			return "out/epic_synthesis_20250101_100000.md", nil
		},
	})

	cmd := submit(t, r, "epic Build a checkout flow")
	require.NotNil(t, cmd)
	assert.Equal(t, "epic", r.Running())

	settle(r, cmd)

	require.Len(t, runner.epics, 1)
	assert.Equal(t, models.WorkItemEpic, runner.epics[0].Type)
	assert.Equal(t, "Build a checkout flow", runner.epics[0].Description)
	require.NotNil(t, saved)
	assert.Empty(t, r.Running())
	assert.Contains(t, output(r), "Epic processed successfully")
	assert.Contains(t, output(r), "Results saved to: out/epic_synthesis_20250101_100000.md")
}

func TestREPL_TaskCollectsDescription(t *testing.T) {
	runner := &fakeRunner{}
	r := NewREPL(Config{Runner: runner})

	assert.Nil(t, submit(t, r, "task Add login"))
	assert.Contains(t, output(r), "Enter task description (end with empty line):")
	assert.Nil(t, submit(t, r, "Users sign in with email."))
	assert.Nil(t, submit(t, r, "Sessions last a day."))

	cmd := submit(t, r, "")
	require.NotNil(t, cmd)
	settle(r, cmd)

	require.Len(t, runner.tasks, 1)
	task := runner.tasks[0]
	assert.Equal(t, "Add login", task.Title)
	assert.Equal(t, "Users sign in with email.\nSessions last a day.", task.Description)
	assert.Contains(t, output(r), "Task completed with status: approved")

	// Back in command mode, an empty line does nothing.
	assert.Nil(t, submit(t, r, ""))
}

func TestREPL_WorkflowErrorKeepsRunning(t *testing.T) {
	runner := &fakeRunner{err: errors.New("planning failed")}
	saves := 0
	r := NewREPL(Config{
		Runner: runner,
		SaveEpic: func(*orchestrator.WorkflowState) (string, error) {
			saves++
			return "report.md", nil
		},
	})

	settle(r, submit(t, r, "epic Something"))

	assert.Contains(t, output(r), "error: planning failed")
	assert.Equal(t, 1, saves, "partial state is still saved")
	assert.Empty(t, r.Running())

	assert.Nil(t, submit(t, r, "help"))
	assert.Contains(t, output(r), "Commands:")
}

func TestREPL_RejectsSecondWorkflow(t *testing.T) {
	runner := &fakeRunner{}
	r := NewREPL(Config{Runner: runner})

	cmd := submit(t, r, "epic First")
	require.NotNil(t, cmd)

	assert.Nil(t, submit(t, r, "epic Second"))
	assert.Contains(t, output(r), "a epic workflow is already running")

	settle(r, cmd)
	assert.Len(t, runner.epics, 1)
}

func TestREPL_Status(t *testing.T) {
	r := NewREPL(Config{Runner: &fakeRunner{}})
	submit(t, r, "status")
	assert.Contains(t, output(r), "No active workflows")

	r = NewREPL(Config{
		Runner: &fakeRunner{},
		Status: func() []orchestrator.Snapshot {
			return []orchestrator.Snapshot{{
				WorkItemID: "0123456789abcdef",
				Title:      "Add login",
				Phase:      orchestrator.PhaseReview,
			}}
		},
	})
	submit(t, r, "status")
	assert.Contains(t, output(r), "Active Workflows:")
	assert.Contains(t, output(r), "  - 01234567: Add login (review)")
}

func TestREPL_Events(t *testing.T) {
	events := make(chan orchestrator.WorkflowEvent, 1)
	r := NewREPL(Config{Runner: &fakeRunner{}, Events: events})

	events <- orchestrator.WorkflowEvent{
		Type:    orchestrator.EventPhaseStarted,
		Phase:   orchestrator.PhaseDesign,
		Message: "designing",
	}
	next := settle(r, r.waitEvent())
	require.NotNil(t, next, "event wait re-arms")
	assert.Contains(t, output(r), "designing")

	close(events)
	assert.Nil(t, settle(r, next))
}

func TestREPL_ScrollbackBounded(t *testing.T) {
	r := NewREPL(Config{Runner: &fakeRunner{}})
	for i := 0; i < maxLines+50; i++ {
		r.println("line")
	}
	assert.Len(t, r.Lines(), maxLines)
}

func TestREPL_WindowSize(t *testing.T) {
	r := NewREPL(Config{Runner: &fakeRunner{}})
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 10})

	assert.Equal(t, 100, r.input.width)
	view := r.View()
	assert.Contains(t, view, "AI Dev Team")
}
