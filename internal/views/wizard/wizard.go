// Package wizard is a three step form: name, email and team, then a summary.
package wizard

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/widgets/help"
	"github.com/olivoil/mvu/internal/widgets/textinput"
)

// Step is the wizard's position. Complete follows the last field.
type Step int

const (
	StepName Step = iota
	StepEmail
	StepTeam
	Complete
)

func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepEmail:
		return "email"
	case StepTeam:
		return "team"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// SubmittedMsg is emitted when the last step is confirmed.
type SubmittedMsg struct {
	Name  string
	Email string
	Team  string
}

// KeyMap defines the wizard keys.
type KeyMap struct {
	Next    key.Binding
	Back    key.Binding
	Restart key.Binding
}

// DefaultKeyMap returns the wizard keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Restart: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "start over")),
	}
}

var fields = [...]struct {
	label       string
	placeholder string
	validate    func(string) error
}{
	{"Name", "Ada Lovelace", required},
	{"Email", "ada@example.com", validEmail},
	{"Team", "optional", nil},
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("not a valid email address")
	}
	return nil
}

// Model is the wizard screen.
type Model struct {
	step   Step
	inputs [len(fields)]textinput.Model
	err    string
	keys   KeyMap
	styles ui.Styles
}

// New creates a wizard at the first step.
func New(styles ui.Styles) Model {
	m := Model{keys: DefaultKeyMap(), styles: styles}
	for i, f := range fields {
		in := textinput.New(styles)
		in.SetPlaceholder(f.placeholder)
		in.SetCharLimit(64)
		m.inputs[i] = in
	}
	m.inputs[StepName].Focus()
	return m
}

// Step returns the current step.
func (m Model) Step() Step { return m.step }

// Value returns what was entered for step s.
func (m Model) Value(s Step) string {
	if s < 0 || int(s) >= len(m.inputs) {
		return ""
	}
	return strings.TrimSpace(m.inputs[s].Value())
}

// Dirty reports whether something was entered but not submitted.
func (m Model) Dirty() bool {
	if m.step == Complete {
		return false
	}
	for _, in := range m.inputs {
		if in.Value() != "" {
			return true
		}
	}
	return false
}

// CapturesInput reports whether printable keys belong to a text field.
func (m Model) CapturesInput() bool { return m.step != Complete }

func (m Model) Init() mvu.Cmd { return nil }

func (m Model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.ResizeMsg:
		for i := range m.inputs {
			m.inputs[i].SetWidth(max(10, msg.Width-12))
		}
		return m, nil

	case mvu.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Restart):
			return New(m.styles), nil
		case key.Matches(msg, m.keys.Next):
			return m.next()
		case key.Matches(msg, m.keys.Back):
			return m.back(), nil
		}
		m.err = ""
	}
	if m.step == Complete {
		return m, nil
	}
	var cmd mvu.Cmd
	m.inputs[m.step], cmd = m.inputs[m.step].Update(msg)
	return m, cmd
}

func (m Model) next() (Model, mvu.Cmd) {
	if m.step == Complete {
		return m, nil
	}
	if v := fields[m.step].validate; v != nil {
		if err := v(m.inputs[m.step].Value()); err != nil {
			m.err = fmt.Sprintf("%s: %v", strings.ToLower(fields[m.step].label), err)
			return m, nil
		}
	}
	m.err = ""
	m.inputs[m.step].Blur()
	m.step++
	if m.step == Complete {
		return m, mvu.Emit(SubmittedMsg{
			Name:  m.Value(StepName),
			Email: m.Value(StepEmail),
			Team:  m.Value(StepTeam),
		})
	}
	cmd := m.inputs[m.step].Focus()
	return m, cmd
}

func (m Model) back() Model {
	if m.step == StepName {
		return m
	}
	if m.step < Complete {
		m.inputs[m.step].Blur()
	}
	m.step--
	m.err = ""
	m.inputs[m.step].Focus()
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Sign up"))
	b.WriteString("  ")
	b.WriteString(m.styles.Dim.Render(m.progress()))
	b.WriteString("\n\n")

	if m.step == Complete {
		b.WriteString(m.styles.Success.Render("✔ All set"))
		b.WriteString("\n\n")
		for i, f := range fields {
			v := m.Value(Step(i))
			if v == "" {
				v = m.styles.Dim.Render("-")
			}
			fmt.Fprintf(&b, "  %-6s %s\n", f.label, v)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	rows := make([]string, 0, len(fields))
	for i, f := range fields {
		label := m.styles.Dim.Render(fmt.Sprintf("%-6s", f.label))
		if Step(i) == m.step {
			label = m.styles.Title.Render(fmt.Sprintf("%-6s", f.label))
		}
		var value string
		switch {
		case Step(i) == m.step:
			value = m.inputs[i].View()
		case Step(i) < m.step:
			value = "  " + m.Value(Step(i))
		default:
			value = ""
		}
		rows = append(rows, "  "+label+" "+value)
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.err != "" {
		b.WriteString("\n\n  ")
		b.WriteString(m.styles.Error.Render("✘ " + m.err))
	}
	return b.String()
}

func (m Model) progress() string {
	if m.step == Complete {
		return "done"
	}
	return fmt.Sprintf("step %d of %d", int(m.step)+1, len(fields))
}

// Help returns the wizard's key hints.
func (m Model) Help() help.KeyMap {
	if m.step == Complete {
		return help.Bindings{Short: []key.Binding{m.keys.Back, m.keys.Restart}}
	}
	return help.Bindings{Short: []key.Binding{m.keys.Next, m.keys.Back, m.keys.Restart}}
}
