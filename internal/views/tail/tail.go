// Package tail follows a file. Lines arrive as backend.LinesMsg from the
// file watcher; JSON lines are shown formatted.
package tail

import (
	"fmt"

	"charm.land/bubbles/v2/key"

	"github.com/olivoil/mvu/internal/backend"
	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/widgets/help"
	"github.com/olivoil/mvu/internal/widgets/viewport"
)

// DefaultMaxLines is how many lines are kept in memory.
const DefaultMaxLines = 1000

// KeyMap defines the tail keys.
type KeyMap struct {
	Follow key.Binding
	Raw    key.Binding
	Clear  key.Binding
}

// DefaultKeyMap returns the tail keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Follow: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
		Raw:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "raw/pretty")),
		Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	}
}

// Model is the tail screen.
type Model struct {
	path     string
	lines    []string
	maxLines int
	follow   bool
	raw      bool
	err      string
	vp       viewport.Model
	keys     KeyMap
	styles   ui.Styles
}

// New creates a tail screen for path.
func New(path string, styles ui.Styles) Model {
	return Model{
		path:     path,
		maxLines: DefaultMaxLines,
		follow:   true,
		vp:       viewport.New(80, 10),
		keys:     DefaultKeyMap(),
		styles:   styles,
	}
}

// Lines returns the kept lines, unformatted.
func (m Model) Lines() []string { return m.lines }

// Following reports whether the view sticks to the newest line.
func (m Model) Following() bool { return m.follow }

func (m Model) Init() mvu.Cmd { return nil }

func (m Model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.ResizeMsg:
		// two lines for the title and its gap
		m.vp.SetSize(msg.Width, max(1, msg.Height-2))
		if m.follow {
			m.vp.GotoBottom()
		}
		return m, nil

	case backend.LinesMsg:
		if m.path != "" && msg.Path != m.path {
			return m, nil
		}
		m.path = msg.Path
		m.err = ""
		m.append(msg.Lines, msg.Reset)
		return m, nil

	case backend.WatchErrorMsg:
		m.err = msg.Err.Error()
		return m, nil

	case mvu.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Follow):
			m.follow = !m.follow
			if m.follow {
				m.vp.GotoBottom()
			}
			return m, nil
		case key.Matches(msg, m.keys.Raw):
			m.raw = !m.raw
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.lines = nil
			m.refresh()
			return m, nil
		}
	}

	// scrolling keys and the wheel go to the viewport
	var cmd mvu.Cmd
	m.vp, cmd = m.vp.Update(msg)
	if _, ok := msg.(mvu.KeyMsg); ok {
		m.follow = m.vp.AtBottom()
	}
	return m, cmd
}

// append adds lines, copying so earlier models keep their slice.
func (m *Model) append(lines []string, reset bool) {
	var next []string
	if !reset {
		next = make([]string, 0, len(m.lines)+len(lines))
		next = append(next, m.lines...)
	}
	next = append(next, lines...)
	if len(next) > m.maxLines {
		next = next[len(next)-m.maxLines:]
	}
	m.lines = next
	m.refresh()
}

func (m *Model) refresh() {
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		if m.raw {
			out[i] = l
			continue
		}
		e := backend.ParseLine(l)
		if !e.IsStructured() {
			out[i] = l
			continue
		}
		out[i] = m.levelStyle(e.Level) + backend.FormatEntry(e)
	}
	m.vp.SetLines(out)
	if m.follow {
		m.vp.GotoBottom()
	}
}

func (m Model) levelStyle(level string) string {
	switch level {
	case "ERROR", "FATAL", "PANIC":
		return m.styles.Error.Render("●") + " "
	case "WARN", "WARNING":
		return m.styles.Warning.Render("●") + " "
	default:
		return m.styles.Dim.Render("●") + " "
	}
}

func (m Model) View() string {
	title := m.styles.Header.Render("Tail")
	path := m.path
	if path == "" {
		path = "no file (tail.path)"
	}
	status := m.styles.Dim.Render(fmt.Sprintf("  %s  %d lines", path, len(m.lines)))
	if m.follow {
		status += m.styles.Accent.Render("  following")
	}
	head := title + status
	if m.err != "" {
		head += "  " + m.styles.Error.Render("error: "+m.err)
	}
	if len(m.lines) == 0 {
		return head + "\n\n" + m.styles.Dim.Render("  waiting for lines…")
	}
	return head + "\n\n" + m.vp.View()
}

// Help returns the tail screen's key hints.
func (m Model) Help() help.KeyMap {
	vk := m.vp.Keys()
	return help.Bindings{
		Short: []key.Binding{m.keys.Follow, m.keys.Raw, vk.Up, vk.Down},
		Full: [][]key.Binding{
			{m.keys.Follow, m.keys.Raw, m.keys.Clear},
			{vk.Up, vk.Down, vk.PageUp, vk.PageDown, vk.Top, vk.Bottom},
		},
	}
}
