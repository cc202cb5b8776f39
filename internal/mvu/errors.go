package mvu

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramKilled is returned by Run when the program was stopped by
	// Kill or by cancellation of its context rather than by Quit.
	ErrProgramKilled = errors.New("program was killed")

	// ErrNilModel is returned when Update hands back a nil model.
	ErrNilModel = errors.New("update returned a nil model")
)

// PanicError carries a recovered panic. Run returns one when Update or View
// panics; a command that panics produces a CommandResult holding one.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
