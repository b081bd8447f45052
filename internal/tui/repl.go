package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// maxLines bounds the scrollback.
const maxLines = 500

const helpText = `Commands:
    epic <description>  - Process an Epic
    task <title>        - Create and process a task
    status              - Show active workflows
    help                - Show this help
    quit                - Exit`

// Runner runs workflows.
type Runner interface {
	ProcessEpic(ctx context.Context, epic *models.WorkItem) (*orchestrator.WorkflowState, error)
	ProcessTask(ctx context.Context, task *models.WorkItem) (*orchestrator.WorkflowState, error)
}

// Config wires the REPL to an orchestrator.
type Config struct {
	Context context.Context
	Runner  Runner
	// Status lists tracked workflows. Optional.
	Status func() []orchestrator.Snapshot
	// Events streams progress into the scrollback. Optional.
	Events <-chan orchestrator.WorkflowEvent
	// SaveEpic and SaveTask write reports and return the file path. Optional.
	SaveEpic func(*orchestrator.WorkflowState) (string, error)
	SaveTask func(*orchestrator.WorkflowState) (string, error)
}

type eventMsg struct {
	event orchestrator.WorkflowEvent
}

type eventsClosedMsg struct{}

type workflowDoneMsg struct {
	kind    string
	state   *orchestrator.WorkflowState
	err     error
	path    string
	saveErr error
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	eventStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// REPL is the bubbletea model of the interactive mode.
type REPL struct {
	cfg   Config
	ctx   context.Context
	input *InputField
	lines []string

	width  int
	height int

	// collecting is set while task description lines are read.
	collecting   bool
	pendingTitle string
	description  []string

	// running names the workflow in flight, if any.
	running  string
	quitting bool
}

// NewREPL creates the model.
func NewREPL(cfg Config) *REPL {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	r := &REPL{
		cfg:    cfg,
		ctx:    ctx,
		input:  NewInputField(),
		width:  80,
		height: 24,
	}
	r.println(titleStyle.Render("🤖 AI Dev Team"))
	r.println("Interactive Mode - Type 'help' for commands, 'quit' to exit")
	return r
}

// NewProgram creates the bubbletea program for the REPL.
func NewProgram(cfg Config) (*tea.Program, *REPL) {
	r := NewREPL(cfg)
	return tea.NewProgram(r), r
}

// Lines returns the scrollback.
func (r *REPL) Lines() []string {
	return append([]string(nil), r.lines...)
}

// Running reports the workflow in flight, or "".
func (r *REPL) Running() string {
	return r.running
}

// Init implements tea.Model.
func (r *REPL) Init() tea.Cmd {
	return tea.Batch(r.input.Focus(), r.waitEvent())
}

// Update implements tea.Model.
func (r *REPL) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			r.quitting = true
			return r, tea.Quit
		}

	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.input.SetWidth(msg.Width)
		return r, nil

	case LineSubmittedMsg:
		return r, r.handleLine(msg.Text)

	case eventMsg:
		r.println(eventStyle.Render("  · " + msg.event.String()))
		return r, r.waitEvent()

	case eventsClosedMsg:
		return r, nil

	case workflowDoneMsg:
		r.finish(msg)
		return r, nil
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// View implements tea.Model.
func (r *REPL) View() string {
	if r.quitting {
		return "👋 Goodbye!\n"
	}

	visible := r.height - 4
	if visible < 1 {
		visible = 1
	}
	lines := r.lines
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines, "\n"), r.input.View())
}

func (r *REPL) handleLine(text string) tea.Cmd {
	if r.collecting {
		if text != "" {
			r.description = append(r.description, text)
			r.println("  " + text)
			return nil
		}
		return r.submitTask()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	r.println(titleStyle.Render("> ") + text)

	cmd, arg := splitCommand(text)
	switch cmd {
	case "quit", "exit", "q":
		r.quitting = true
		return tea.Quit
	case "help":
		r.println(helpText)
	case "status":
		r.status()
	case "epic":
		if arg == "" {
			r.fail("Please provide an Epic description")
			return nil
		}
		if r.busy() {
			return nil
		}
		r.println(fmt.Sprintf("📋 Processing Epic: %s", clip(arg, 50)))
		return r.run("epic", models.NewEpic(arg))
	case "task":
		if arg == "" {
			r.fail("Please provide a task title")
			return nil
		}
		if r.busy() {
			return nil
		}
		r.collecting = true
		r.pendingTitle = arg
		r.description = nil
		r.input.SetDescriptionMode(true)
		r.println("Enter task description (end with empty line):")
	default:
		r.fail(fmt.Sprintf("Unknown command: %s. Type 'help' for commands.", text))
	}
	return nil
}

func (r *REPL) submitTask() tea.Cmd {
	task := models.NewWorkItem(models.WorkItemTask, r.pendingTitle, strings.Join(r.description, "\n"))
	r.collecting = false
	r.pendingTitle = ""
	r.description = nil
	r.input.SetDescriptionMode(false)

	r.println(fmt.Sprintf("🔧 Processing Task: %s", task.Title))
	return r.run("task", task)
}

func (r *REPL) busy() bool {
	if r.running == "" {
		return false
	}
	r.fail(fmt.Sprintf("a %s workflow is already running", r.running))
	return true
}

// run starts a workflow off the update loop.
func (r *REPL) run(kind string, item *models.WorkItem) tea.Cmd {
	r.running = kind
	runner, ctx := r.cfg.Runner, r.ctx
	save := r.cfg.SaveTask
	if kind == "epic" {
		save = r.cfg.SaveEpic
	}
	return func() tea.Msg {
		var (
			st  *orchestrator.WorkflowState
			err error
		)
		if kind == "epic" {
			st, err = runner.ProcessEpic(ctx, item)
		} else {
			st, err = runner.ProcessTask(ctx, item)
		}
		done := workflowDoneMsg{kind: kind, state: st, err: err}
		if st != nil && save != nil {
			done.path, done.saveErr = save(st)
		}
		return done
	}
}

func (r *REPL) finish(msg workflowDoneMsg) {
	r.running = ""
	switch {
	case msg.err != nil:
		r.fail(msg.err.Error())
	case msg.kind == "epic":
		r.println(successStyle.Render("✅ Epic processed successfully!"))
	default:
		r.println(successStyle.Render(fmt.Sprintf("✅ Task completed with status: %s", msg.state.WorkItem.Status)))
	}
	if msg.saveErr != nil {
		r.fail(msg.saveErr.Error())
	} else if msg.path != "" {
		r.println("📄 Results saved to: " + msg.path)
	}
}

func (r *REPL) status() {
	if r.cfg.Status == nil {
		r.println("No active workflows")
		return
	}
	snaps := r.cfg.Status()
	if len(snaps) == 0 {
		r.println("No active workflows")
		return
	}
	r.println("📊 Active Workflows:")
	for _, s := range snaps {
		state := string(s.Phase)
		if s.CompletedAt != nil {
			state += ", done"
		}
		r.println(fmt.Sprintf("  - %s: %s (%s)", clip(s.WorkItemID, 8), s.Title, state))
	}
}

func (r *REPL) waitEvent() tea.Cmd {
	events := r.cfg.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func (r *REPL) fail(text string) {
	r.println(errorStyle.Render("❌ error: " + text))
}

func (r *REPL) println(text string) {
	r.lines = append(r.lines, strings.Split(text, "\n")...)
	if over := len(r.lines) - maxLines; over > 0 {
		r.lines = r.lines[over:]
	}
}

// splitCommand returns the lowercased first word and the trimmed rest.
func splitCommand(text string) (string, string) {
	cmd, rest, _ := strings.Cut(text, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
