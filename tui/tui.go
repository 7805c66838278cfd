// Package tui implements the interactive terminal prompts: a cursor driven
// menu and a single line text input.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stevemurr/bookshelf/handler"
)

var (
	purple  = lipgloss.Color("#bd93f9")
	cyan    = lipgloss.Color("#8be9fd")
	green   = lipgloss.Color("#50fa7b")
	comment = lipgloss.Color("#6272a4")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	chosenStyle = lipgloss.NewStyle().
			Foreground(green)

	helpStyle = lipgloss.NewStyle().
			Foreground(comment)
)

// Prompter runs one bubbletea program per prompt.
type Prompter struct {
	ctx context.Context
	in  io.Reader
	out io.Writer
}

var _ handler.Prompter = (*Prompter)(nil)

// New returns a Prompter reading keys from in and drawing on out. A prompt
// still on screen when ctx is done is torn down and returns ctx's error.
func New(ctx context.Context, in io.Reader, out io.Writer) *Prompter {
	return &Prompter{ctx: ctx, in: in, out: out}
}

func (p *Prompter) Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}
	m, err := p.run(newSelectModel(title, options))
	if err != nil {
		return 0, err
	}
	sm := m.(selectModel)
	if sm.aborted {
		return 0, handler.ErrAborted
	}
	return sm.cursor, nil
}

func (p *Prompter) Ask(prompt string) (string, error) {
	m, err := p.run(newInputModel(prompt))
	if err != nil {
		return "", err
	}
	im := m.(inputModel)
	if im.aborted {
		return "", handler.ErrAborted
	}
	return im.input.Value(), nil
}

func (p *Prompter) run(m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m, tea.WithContext(p.ctx), tea.WithInput(p.in), tea.WithOutput(p.out))
	m, err := prog.Run()
	if ctxErr := p.ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return m, err
}

// ---------- select ----------

type selectModel struct {
	title   string
	options []string
	cursor  int
	chosen  bool
	aborted bool
}

func newSelectModel(title string, options []string) selectModel {
	return selectModel{title: title, options: options}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.options)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.options) - 1
	case "enter", " ":
		m.chosen = true
		return m, tea.Quit
	default:
		// Digits pick an entry directly, like the numbered line menu.
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.options) {
				m.cursor = i
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.aborted {
		return ""
	}
	if m.chosen {
		return titleStyle.Render(m.title) + " " + chosenStyle.Render(m.options[m.cursor]) + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(" ----- "+m.title+" -----") + "\n")
	for i, o := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+o) + "\n")
		} else {
			b.WriteString("  " + o + "\n")
		}
	}
	b.WriteString(helpStyle.Render("↑/↓ move • enter select • esc quit") + "\n")
	return b.String()
}

// ---------- text input ----------

type inputModel struct {
	prompt  string
	input   textinput.Model
	done    bool
	aborted bool
}

func newInputModel(prompt string) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.Width = 50
	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.aborted {
		return ""
	}
	if m.done {
		return titleStyle.Render(m.prompt) + " " + chosenStyle.Render(m.input.Value()) + "\n"
	}
	return titleStyle.Render(m.prompt) + "\n" + m.input.View() + "\n"
}
