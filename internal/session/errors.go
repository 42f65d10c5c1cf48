package session

import "errors"

var (
	// ErrInvalidState is returned when an operation is attempted in a state
	// that forbids it, e.g. pausing an already paused session.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when a value is rejected at the boundary
	// before any state is mutated.
	ErrInvalidInput = errors.New("invalid input")
)
