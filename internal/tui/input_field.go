package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	commandHint     = "epic <description> | task <title> | status | help | quit"
	descriptionHint = "description line (empty line to finish)"
	maxHistory      = 100
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// LineSubmittedMsg carries one line entered at the prompt.
type LineSubmittedMsg struct {
	Text string
}

// InputField is the REPL prompt. In command mode empty lines are ignored and
// submitted commands are kept in a history recalled with up/down. In
// description mode empty lines are submitted, since they end the description.
type InputField struct {
	input       textinput.Model
	width       int
	description bool

	history []string
	// recall indexes history while browsing; len(history) means "not browsing".
	recall int
}

// NewInputField creates a focused prompt in command mode.
func NewInputField() *InputField {
	ti := textinput.New()
	ti.Placeholder = commandHint
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()
	return &InputField{input: ti, width: 80}
}

// SetWidth fits the field to the terminal width.
func (f *InputField) SetWidth(width int) {
	f.width = width
	f.input.Width = width - 4
}

// SetDescriptionMode switches between command and description entry.
func (f *InputField) SetDescriptionMode(on bool) {
	f.description = on
	if on {
		f.input.Placeholder = descriptionHint
	} else {
		f.input.Placeholder = commandHint
	}
}

// History returns the submitted commands, oldest first.
func (f *InputField) History() []string {
	return append([]string(nil), f.history...)
}

func (f *InputField) Update(msg tea.Msg) (*InputField, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return f, cmd
	}

	switch key.Type {
	case tea.KeyEnter:
		return f, f.submit()
	case tea.KeyUp:
		if !f.description && f.recall > 0 {
			f.recall--
			f.input.SetValue(f.history[f.recall])
			f.input.CursorEnd()
		}
		return f, nil
	case tea.KeyDown:
		if !f.description && f.recall < len(f.history) {
			f.recall++
			if f.recall == len(f.history) {
				f.input.SetValue("")
			} else {
				f.input.SetValue(f.history[f.recall])
				f.input.CursorEnd()
			}
		}
		return f, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f *InputField) submit() tea.Cmd {
	text := f.input.Value()
	if text == "" && !f.description {
		return nil
	}
	f.input.Reset()
	if !f.description {
		f.remember(text)
	}
	return func() tea.Msg { return LineSubmittedMsg{Text: text} }
}

func (f *InputField) remember(text string) {
	if n := len(f.history); n == 0 || f.history[n-1] != text {
		f.history = append(f.history, text)
		if len(f.history) > maxHistory {
			f.history = f.history[len(f.history)-maxHistory:]
		}
	}
	f.recall = len(f.history)
}

func (f *InputField) View() string {
	label := "🤖 AI Dev Team > "
	if f.description {
		label = "   ... > "
	}
	return boxStyle.Width(f.width - 2).Render(promptStyle.Render(label) + f.input.View())
}

// Focus gives the field keyboard focus.
func (f *InputField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes keyboard focus.
func (f *InputField) Blur() {
	f.input.Blur()
}
