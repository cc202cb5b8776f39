// Package fetch loads a set of sources concurrently and shows how each one
// went. Every source has its own slot, so results can arrive in any order.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"github.com/sourcegraph/conc/panics"

	"github.com/olivoil/mvu/internal/backend"
	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/ui"
	"github.com/olivoil/mvu/internal/widgets/help"
	"github.com/olivoil/mvu/internal/widgets/spinner"
)

// Fetcher loads one source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (backend.Document, error)
}

// Loaded is the payload of a fetch CommandResult.
type Loaded struct {
	Index int
	Doc   backend.Document
}

// ReloadMsg asks the owner for a fresh fetch screen. The owner replaces
// this one, so results still in flight for it are dropped.
type ReloadMsg struct{}

// Status of one slot.
type Status int

const (
	Loading Status = iota
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Done:
		return "ok"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Slot is the state of one source.
type Slot struct {
	Source string
	Status Status
	Doc    backend.Document
	Err    string
}

// KeyMap defines the fetch keys.
type KeyMap struct {
	Reload key.Binding
}

// DefaultKeyMap returns the fetch keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// Model is the fetch screen.
type Model struct {
	fetcher Fetcher
	slots   []Slot
	pending int
	spinner spinner.Model
	width   int
	keys    KeyMap
	styles  ui.Styles
}

// New creates a fetch screen for sources. Loading starts with Init.
func New(fetcher Fetcher, sources []string, styles ui.Styles) Model {
	slots := make([]Slot, len(sources))
	for i, s := range sources {
		slots[i] = Slot{Source: s, Status: Loading}
	}
	sp := spinner.New(spinner.WithStyle(styles.Accent))
	if len(slots) > 0 {
		sp, _ = sp.Start()
	}
	return Model{
		fetcher: fetcher,
		slots:   slots,
		pending: len(slots),
		spinner: sp,
		keys:    DefaultKeyMap(),
		styles:  styles,
	}
}

// Slots returns a copy of the per-source state.
func (m Model) Slots() []Slot {
	return append([]Slot(nil), m.slots...)
}

// Pending returns how many sources are still loading.
func (m Model) Pending() int { return m.pending }

// Init fetches every source at once and starts the spinner.
func (m Model) Init() mvu.Cmd {
	if len(m.slots) == 0 {
		return nil
	}
	cmds := make([]mvu.Cmd, 0, len(m.slots)+1)
	cmds = append(cmds, m.spinner.Tick())
	for i, s := range m.slots {
		cmds = append(cmds, m.load(i, s.Source))
	}
	return mvu.Batch(cmds...)
}

// load fetches one source. A panicking fetcher fails its own slot; the
// result must still carry the index or the slot would never settle.
func (m Model) load(i int, source string) mvu.Cmd {
	f := m.fetcher
	return mvu.Attempt(func(ctx context.Context) (any, error) {
		var (
			doc backend.Document
			err error
		)
		if r := panics.Try(func() { doc, err = f.Fetch(ctx, source) }); r != nil {
			return Loaded{Index: i, Doc: backend.Document{Source: source}}, &mvu.PanicError{Value: r.Value, Stack: r.Stack}
		}
		return Loaded{Index: i, Doc: doc}, err
	})
}

func (m Model) Update(msg mvu.Msg) (mvu.Model, mvu.Cmd) {
	switch msg := msg.(type) {
	case mvu.ResizeMsg:
		m.width = msg.Width
		return m, nil

	case mvu.CommandResult:
		loaded, ok := msg.Payload.(Loaded)
		if !ok || loaded.Index < 0 || loaded.Index >= len(m.slots) {
			return m, nil
		}
		return m.settle(loaded, msg.Err), nil

	case spinner.TickMsg:
		var cmd mvu.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mvu.KeyMsg:
		if key.Matches(msg, m.keys.Reload) {
			return m, mvu.Emit(ReloadMsg{})
		}
	}
	return m, nil
}

// settle records one result. Slots are copied so earlier models keep theirs.
func (m Model) settle(l Loaded, err error) Model {
	if m.slots[l.Index].Status != Loading {
		return m
	}
	m.slots = append([]Slot(nil), m.slots...)
	s := &m.slots[l.Index]
	s.Doc = l.Doc
	if err != nil {
		s.Status = Failed
		s.Err = err.Error()
	} else {
		s.Status = Done
	}
	m.pending--
	if m.pending == 0 {
		m.spinner = m.spinner.Stop()
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Fetch"))
	b.WriteString("  ")
	if m.pending > 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf(" %d of %d loading", m.pending, len(m.slots))))
	} else {
		b.WriteString(m.styles.Dim.Render(fmt.Sprintf("%d sources", len(m.slots))))
	}
	b.WriteString("\n\n")

	if len(m.slots) == 0 {
		b.WriteString(m.styles.Dim.Render("  no sources configured (fetch.sources)"))
		return b.String()
	}

	rows := make([]string, len(m.slots))
	for i, s := range m.slots {
		rows[i] = m.row(s)
	}
	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

func (m Model) row(s Slot) string {
	line := fmt.Sprintf("  %s %s", m.styles.StatusIcon(s.Status.String()), s.Source)
	switch s.Status {
	case Done:
		detail := fmt.Sprintf("%d lines, %d bytes", s.Doc.Lines, s.Doc.Size)
		if d := ui.FormatDuration(s.Doc.Duration.Round(time.Millisecond)); d != "" {
			detail += ", " + d
		}
		line += "  " + m.styles.Dim.Render(detail)
		if s.Doc.Preview != "" {
			line += "\n      " + s.Doc.Preview
		}
	case Failed:
		line += "\n      " + m.styles.Error.Render("error: "+s.Err)
	}
	if m.width > 0 {
		parts := strings.Split(line, "\n")
		for i, p := range parts {
			parts[i] = ui.Truncate(p, m.width)
		}
		line = strings.Join(parts, "\n")
	}
	return line
}

// Help returns the fetch screen's key hints.
func (m Model) Help() help.KeyMap {
	return help.Bindings{Short: []key.Binding{m.keys.Reload}}
}
