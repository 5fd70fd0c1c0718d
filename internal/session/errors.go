package session

import "errors"

var (
	// ErrNoActivePalette is returned by palette selections when no chooser is open.
	ErrNoActivePalette = errors.New("no chooser is open")

	// ErrNoActiveEditor is returned by editor actions when no editor is open.
	ErrNoActiveEditor = errors.New("no connection editor is open")

	// ErrIllegalChoice is returned when a selection is not among the current valid options.
	ErrIllegalChoice = errors.New("choice is not a valid option for this connection")

	// ErrNotDerived is returned by actions that only apply to derived connections.
	ErrNotDerived = errors.New("connection has no intermediate elements")

	// ErrDerived is returned by actions that only apply to direct connections.
	ErrDerived = errors.New("connection is derived")

	// ErrUnsupported is returned when the repository lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by the repository")
)
