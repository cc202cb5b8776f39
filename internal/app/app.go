package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/mvu/internal/backend"
	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/version"
	"github.com/olivoil/mvu/internal/views/counter"
	"github.com/olivoil/mvu/internal/views/fetch"
	"github.com/olivoil/mvu/internal/views/menu"
	"github.com/olivoil/mvu/internal/views/tail"
	"github.com/olivoil/mvu/internal/views/wizard"
	"github.com/olivoil/mvu/internal/widgets/confirm"
	"github.com/olivoil/mvu/internal/widgets/help"
)

// Screen ids.
const (
	ScreenMenu    = "menu"
	ScreenCounter = "counter"
	ScreenWizard  = "wizard"
	ScreenFetch   = "fetch"
	ScreenTail    = "tail"
)

// Screens lists every screen in tab order.
var Screens = []menu.Entry{
	{ID: ScreenMenu, Title: "Menu", Description: "this list"},
	{ID: ScreenCounter, Title: "Counter", Description: "a number moved with ↑ and ↓"},
	{ID: ScreenWizard, Title: "Wizard", Description: "a three step form"},
	{ID: ScreenFetch, Title: "Fetch", Description: "load sources concurrently"},
	{ID: ScreenTail, Title: "Tail", Description: "follow a file"},
}

// chrome is the number of lines around the active screen: the header, its
// rule and the help line.
const chrome = 3

// Deps is what the screens need from the outside.
type Deps struct {
	Styles      ui.Styles
	Fetcher     fetch.Fetcher
	Sources     []string
	TailPath    string
	StartScreen string
}

// model is the root application model. It owns every screen and the
// chrome around the active one.
type model struct {
	deps    Deps
	screens mvu.Screens
	init    mvu.Cmd
	keys    KeyMap
	help    help.Model
	confirm confirm.Model
	width   int
	height  int
	now     time.Time
	notice  string
}

// Optional screen capabilities.
type (
	helper interface{ Help() help.KeyMap }
	// capturer screens take printable keys, so global single key
	// shortcuts are disabled while they are active.
	capturer interface{ CapturesInput() bool }
	dirtier  interface{ Dirty() bool }
)

func newModel(d Deps) (model, error) {
	m := model{
		deps:    d,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		confirm: confirm.New(quitDialog, "Discard unsaved input and quit?", d.Styles),
	}

	cmds := make([]mvu.Cmd, 0, len(Screens))
	for _, e := range Screens {
		var cmd mvu.Cmd
		m.screens, cmd = m.screens.Add(e.ID, m.build(e.ID))
		cmds = append(cmds, cmd)
	}
	m.init = mvu.Batch(cmds...)

	start := d.StartScreen
	if start == "" {
		start = ScreenMenu
	}
	var ok bool
	if m.screens, ok = m.screens.Focus(start); !ok {
		return model{}, fmt.Errorf("unknown screen %q (want one of %s)", start, strings.Join(m.screens.IDs(), ", "))
	}
	return m, nil
}

// build creates a fresh screen.
func (m model) build(id string) mvu.Model {
	s := m.deps.Styles
	switch id {
	case ScreenCounter:
		return counter.New(s)
	case ScreenWizard:
		return wizard.New(s)
	case ScreenFetch:
		return fetch.New(m.deps.Fetcher, m.deps.Sources, s)
	case ScreenTail:
		return tail.New(m.deps.TailPath, s)
	default:
		return menu.New(Screens, s)
	}
}

func (m model) Init() mvu.Cmd {
	return mvu.Batch(m.init, tickClock())
}

func tickClock() mvu.Cmd {
	return mvu.Every(time.Second, func(t time.Time) mvu.Msg { return clockMsg(t) })
}

func (m model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.ResizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		var cmd mvu.Cmd
		m.screens, cmd = m.screens.Broadcast(m.bodySize())
		return m, cmd

	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()

	case confirm.ResultMsg:
		if msg.ID == quitDialog && msg.Confirmed {
			return m, mvu.Quit
		}
		return m, nil

	case backend.LinesMsg, backend.WatchErrorMsg:
		// pushed by the file watcher; always for the tail screen
		return m.deliver(ScreenTail, msg)

	case mvu.Envelope:
		return m.handleEnvelope(msg)

	case mvu.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd mvu.Cmd
	m.screens, cmd = m.screens.Route(msg)
	return m, cmd
}

func (m model) handleEnvelope(env mvu.Envelope) (mvu.Model, mvu.Cmd) {
	switch inner := env.Msg.(type) {
	case menu.OpenMsg:
		m.open(inner.ID)
		return m, nil

	case fetch.ReloadMsg:
		if env.Generation != m.screens.Generation(ScreenFetch) {
			return m, nil
		}
		var init, resize mvu.Cmd
		m.screens, init = m.screens.Reset(ScreenFetch, m.build(ScreenFetch))
		if m.width > 0 {
			var sized mvu.Model
			sized, resize = m.deliver(ScreenFetch, m.bodySize())
			m = sized.(model)
		}
		m.notice = "reloading sources"
		return m, mvu.Batch(init, resize)

	case wizard.SubmittedMsg:
		m.notice = fmt.Sprintf("saved %s", inner.Name)
		return m, nil
	}

	var cmd mvu.Cmd
	m.screens, cmd = m.screens.Route(env)
	return m, cmd
}

// deliver addresses msg to screen id at its current generation.
func (m model) deliver(id string, msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	env := mvu.Envelope{Target: id, Generation: m.screens.Generation(id), Msg: msg}
	var cmd mvu.Cmd
	m.screens, cmd, _ = m.screens.Deliver(env)
	return m, cmd
}

func (m model) handleKey(k mvu.KeyMsg) (mvu.Model, mvu.Cmd) {
	if m.confirm.IsOpen() {
		var cmd mvu.Cmd
		m.confirm, cmd = m.confirm.Update(k)
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.ForceQuit):
		return m, mvu.Quit
	case key.Matches(k, m.keys.Next):
		m.screens = m.screens.Next()
		m.notice = ""
		return m, nil
	case key.Matches(k, m.keys.Prev):
		m.screens = m.screens.Prev()
		m.notice = ""
		return m, nil
	}

	if !m.capturing() {
		switch {
		case key.Matches(k, m.keys.Quit):
			if m.dirty() {
				m.confirm.Open()
				return m, nil
			}
			return m, mvu.Quit
		case key.Matches(k, m.keys.Help):
			m.help.Toggle()
			return m, nil
		case key.Matches(k, m.keys.Menu):
			if m.help.ShowAll() {
				m.help.Toggle()
				return m, nil
			}
			if m.screens.Active() != ScreenMenu {
				m.open(ScreenMenu)
				return m, nil
			}
		case key.Matches(k, m.keys.Jump):
			if i := int(k.Key[0] - '1'); i < len(Screens) {
				m.open(Screens[i].ID)
			}
			return m, nil
		}
	}

	var cmd mvu.Cmd
	m.screens, cmd = m.screens.Route(k)
	return m, cmd
}

func (m *model) open(id string) {
	if next, ok := m.screens.Focus(id); ok {
		m.screens = next
		m.notice = ""
	}
}

func (m model) active() mvu.Model {
	s, _ := m.screens.Get(m.screens.Active())
	return s
}

func (m model) capturing() bool {
	c, ok := m.active().(capturer)
	return ok && c.CapturesInput()
}

// dirty reports whether any screen holds unsaved input.
func (m model) dirty() bool {
	for _, id := range m.screens.IDs() {
		s, _ := m.screens.Get(id)
		if d, ok := s.(dirtier); ok && d.Dirty() {
			return true
		}
	}
	return false
}

func (m model) bodySize() mvu.ResizeMsg {
	return mvu.ResizeMsg{Width: m.width, Height: max(1, m.height-chrome)}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	body := m.screens.View()
	if m.help.ShowAll() {
		body = m.renderHelpOverlay()
	}
	if m.confirm.IsOpen() {
		body = lipgloss.Place(max(m.width, 1), max(m.height-chrome, 1), lipgloss.Center, lipgloss.Center, m.confirm.View())
	}
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(m.renderHelpLine())
	return b.String()
}

func (m model) renderHeader() string {
	s := m.deps.Styles
	title := s.Header.Render(fmt.Sprintf(" %s ", version.AppName))

	tabs := make([]string, 0, len(Screens))
	for i, id := range m.screens.IDs() {
		label := fmt.Sprintf("%d %s", i+1, id)
		if id == m.screens.Active() {
			tabs = append(tabs, s.Selected.Render(" "+label+" "))
		} else {
			tabs = append(tabs, s.Dim.Render(" "+label+" "))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title, " "}, tabs...)...)

	if !m.now.IsZero() {
		clock := s.Dim.Render(m.now.Format("15:04:05"))
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(clock)
		if gap > 0 {
			header += strings.Repeat(" ", gap) + clock
		}
	}
	if m.width > 0 {
		header = ui.Truncate(header, m.width)
	}
	return header + "\n" + s.Rule(m.width)
}

func (m model) renderHelpLine() string {
	s := m.deps.Styles
	if m.confirm.IsOpen() {
		return s.Dim.Render(" y yes • n no • ←/→ choose • enter select")
	}
	bindings := m.keys.ShortHelp()
	if h, ok := m.active().(helper); ok {
		bindings = slices.Concat(h.Help().ShortHelp(), bindings)
	}
	line := " " + m.help.View(help.Bindings{Short: bindings})
	if m.help.ShowAll() {
		line = " " + s.Dim.Render("esc or ? to close help")
	}
	if m.notice != "" {
		line += "  " + s.Accent.Render(m.notice)
	}
	return line
}

func (m model) renderHelpOverlay() string {
	s := m.deps.Styles
	full := m.keys.FullHelp()
	if h, ok := m.active().(helper); ok {
		full = slices.Concat(h.Help().FullHelp(), full)
	}
	return s.Title.Render(fmt.Sprintf(" %s keys", m.screens.Active())) + "\n\n" + m.help.View(help.Bindings{Full: full})
}
