// Package tui holds the interactive bubbletea pieces of the CLI.
package tui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user leaves the prompt without answering.
var ErrCancelled = errors.New("prompt cancelled")

// PromptModel asks for a single line of text.
type PromptModel struct {
	question  string
	input     textinput.Model
	submitted bool
	cancelled bool
	err       string
}

// NewPromptModel creates a focused prompt.
func NewPromptModel(question, placeholder string) PromptModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.PlaceholderStyle = placeholderStyle
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return PromptModel{question: question, input: ti}
}

func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if strings.TrimSpace(m.input.Value()) == "" {
				m.err = "a username or profile URL is required"
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.err = ""
	return m, cmd
}

func (m PromptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.question))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(WarningStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: submit • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// Value returns the trimmed answer.
func (m PromptModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Submitted reports whether the user confirmed an answer.
func (m PromptModel) Submitted() bool {
	return m.submitted
}

// RunPrompt shows the prompt on in/out and returns the answer.
func RunPrompt(in io.Reader, out io.Writer, question, placeholder string) (string, error) {
	p := tea.NewProgram(NewPromptModel(question, placeholder), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(PromptModel)
	if !ok || !m.Submitted() {
		return "", ErrCancelled
	}
	return m.Value(), nil
}
