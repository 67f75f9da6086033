package sigstream

import "errors"

var (
	// ErrClosed is returned by operations on a Stream after Close.
	ErrClosed = errors.New("sigstream: stream closed")

	// ErrInvalidSignal is returned when a notifier decodes a signal number
	// with no matching Signal. The stream remains usable.
	ErrInvalidSignal = errors.New("sigstream: unrecognized signal number")

	// ErrUnsupportedSignal is returned when a backend cannot deliver the
	// requested signal kind (the console-event backend only handles
	// Interrupt).
	ErrUnsupportedSignal = errors.New("sigstream: signal not supported by this backend")

	// ErrNotifierActive is returned when a second console-event notifier is
	// constructed while one is already installed; the platform allows only
	// one control handler per process.
	ErrNotifierActive = errors.New("sigstream: console event notifier already active")
)
