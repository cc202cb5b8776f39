package mvu

// Observer is notified of loop activity. All calls happen on the loop
// goroutine, so implementations must return quickly.
type Observer interface {
	Started()
	Processed(msg Msg)
	Rendered(frame string)
	Finished(final Model, err error)
}

type nopObserver struct{}

func (nopObserver) Started()              {}
func (nopObserver) Processed(Msg)         {}
func (nopObserver) Rendered(string)       {}
func (nopObserver) Finished(Model, error) {}
