package mvu

import (
	"context"
	"slices"
)

// Envelope addresses a message to one child of a composite model. Commands
// issued by a child are wrapped so their results come back addressed to the
// child that issued them, at the generation it had when it issued them.
type Envelope struct {
	Target     string
	Generation uint64
	Msg        Msg
}

// Wrap tags every message cmd produces with target and gen. Batches and
// sequences are wrapped member by member. QuitMsg passes through untouched.
func Wrap(target string, gen uint64, cmd Cmd) Cmd {
	if cmd == nil {
		return nil
	}
	return func(ctx context.Context) Msg {
		switch msg := cmd(ctx).(type) {
		case nil:
			return nil
		case QuitMsg:
			return msg
		case batchMsg:
			out := make(batchMsg, len(msg))
			for i, c := range msg {
				out[i] = Wrap(target, gen, c)
			}
			return out
		case sequenceMsg:
			out := make(sequenceMsg, len(msg))
			for i, c := range msg {
				out[i] = Wrap(target, gen, c)
			}
			return out
		default:
			return Envelope{Target: target, Generation: gen, Msg: msg}
		}
	}
}

type slot struct {
	id    string
	model Model
	gen   uint64
}

// Screens is a set of named child models with exactly one active child.
// It is a value: every method that changes it returns a new Screens and
// leaves the receiver untouched.
type Screens struct {
	slots   []slot
	active  int
	nextGen uint64
}

// Add appends a child and returns its Init command, wrapped for delivery
// back to it. The first child added becomes active.
func (s Screens) Add(id string, m Model) (Screens, Cmd) {
	s.nextGen++
	s.slots = append(slices.Clone(s.slots), slot{id: id, model: m, gen: s.nextGen})
	return s, Wrap(id, s.nextGen, m.Init())
}

// Reset replaces a child with a fresh model under a new generation, so
// results of commands the old child still has in flight are dropped.
func (s Screens) Reset(id string, m Model) (Screens, Cmd) {
	i := s.index(id)
	if i < 0 {
		return s.Add(id, m)
	}
	s.nextGen++
	s.slots = slices.Clone(s.slots)
	s.slots[i] = slot{id: id, model: m, gen: s.nextGen}
	return s, Wrap(id, s.nextGen, m.Init())
}

// Len returns the number of children.
func (s Screens) Len() int { return len(s.slots) }

// IDs returns the child ids in order.
func (s Screens) IDs() []string {
	ids := make([]string, len(s.slots))
	for i, sl := range s.slots {
		ids[i] = sl.id
	}
	return ids
}

// Active returns the id of the active child, or "" when empty.
func (s Screens) Active() string {
	if len(s.slots) == 0 {
		return ""
	}
	return s.slots[s.active].id
}

// Get returns the child with the given id.
func (s Screens) Get(id string) (Model, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.slots[i].model, true
}

// Generation returns the current generation of a child, 0 if unknown.
func (s Screens) Generation(id string) uint64 {
	i := s.index(id)
	if i < 0 {
		return 0
	}
	return s.slots[i].gen
}

// Focus makes id the active child. It reports false if there is no such child.
func (s Screens) Focus(id string) (Screens, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	s.active = i
	return s, true
}

// Next activates the following child, wrapping around.
func (s Screens) Next() Screens {
	if len(s.slots) > 0 {
		s.active = (s.active + 1) % len(s.slots)
	}
	return s
}

// Prev activates the preceding child, wrapping around.
func (s Screens) Prev() Screens {
	if len(s.slots) > 0 {
		s.active = (s.active - 1 + len(s.slots)) % len(s.slots)
	}
	return s
}

// Route sends msg to the child that should receive it: the addressee of an
// Envelope, or otherwise the active child. Envelopes for unknown children or
// stale generations are dropped.
func (s Screens) Route(msg Msg) (Screens, Cmd) {
	if env, ok := msg.(Envelope); ok {
		s, cmd, _ := s.Deliver(env)
		return s, cmd
	}
	if len(s.slots) == 0 {
		return s, nil
	}
	return s.update(s.active, msg)
}

// Deliver hands env to its addressee. The boolean is false when the envelope
// was dropped because the child is gone or has been reset since.
func (s Screens) Deliver(env Envelope) (Screens, Cmd, bool) {
	i := s.index(env.Target)
	if i < 0 || s.slots[i].gen != env.Generation {
		return s, nil, false
	}
	s, cmd := s.update(i, env.Msg)
	return s, cmd, true
}

// Broadcast sends msg to every child.
func (s Screens) Broadcast(msg Msg) (Screens, Cmd) {
	cmds := make([]Cmd, 0, len(s.slots))
	for i := range s.slots {
		var cmd Cmd
		s, cmd = s.update(i, msg)
		cmds = append(cmds, cmd)
	}
	return s, Batch(cmds...)
}

// View renders the active child.
func (s Screens) View() string {
	if len(s.slots) == 0 {
		return ""
	}
	return s.slots[s.active].model.View()
}

func (s Screens) update(i int, msg Msg) (Screens, Cmd) {
	sl := s.slots[i]
	next, cmd := sl.model.Update(msg)
	s.slots = slices.Clone(s.slots)
	s.slots[i].model = next
	return s, Wrap(sl.id, sl.gen, cmd)
}

func (s Screens) index(id string) int {
	for i, sl := range s.slots {
		if sl.id == id {
			return i
		}
	}
	return -1
}
