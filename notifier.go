package sigstream

import "context"

// notifier is the backend behind a Stream: it hands out the per-signal
// action for the registration service to install, and turns captured
// occurrences into a pollable sequence.
type notifier interface {
	// addSignal prepares the backend for the given kind and returns the
	// action its registration should invoke on delivery. A nil action with
	// a nil error means the backend needs no external registration for
	// this kind (the console-event backend's callback is already global).
	addSignal(s Signal) (func(), error)

	// removeSignal undoes backend state for the kind. Occurrences already
	// captured are not discarded.
	removeSignal(s Signal) error

	// next blocks until one signal is available or ctx is done. The
	// sequence has no terminal state.
	next(ctx context.Context) (Signal, error)

	// rawFd exposes the pollable descriptor for external reactors, or 0
	// when the backend has none.
	rawFd() uintptr

	shutdown() error
}
