package mvu

// Model is the unit the runtime drives. Update returns the next model rather
// than mutating the receiver; View must depend only on the model's fields.
type Model interface {
	Init() Cmd
	Update(Msg) (Model, Cmd)
	View() string
}

// Component is the contract for widgets and screens embedded in a parent.
// Update returns the concrete type so parents can splice it back without a
// type assertion:
//
//	m.input, cmd = m.input.Update(msg)
type Component[T any] interface {
	Update(Msg) (T, Cmd)
	View() string
}

// UpdateAll runs Update on each component in order and batches the commands.
// Parents use it for messages every child should see, such as ResizeMsg.
func UpdateAll[T Component[T]](items []T, msg Msg) ([]T, Cmd) {
	out := make([]T, len(items))
	cmds := make([]Cmd, 0, len(items))
	for i, it := range items {
		var cmd Cmd
		out[i], cmd = it.Update(msg)
		cmds = append(cmds, cmd)
	}
	return out, Batch(cmds...)
}
