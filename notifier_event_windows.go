//go:build windows

package sigstream

import (
	"context"
	"sync/atomic"

	"golang.org/x/sys/windows"
)

// eventNotifier is the Windows backend. A single process-wide console
// control handler forwards CTRL_C events through a channel; the platform
// permits one such handler per process, so constructing a second notifier
// while one is live fails with ErrNotifierActive.
//
// Only Interrupt is supported: the console API has no analogue for the
// rest of the enumeration.
type eventNotifier struct {
	ch   chan Signal
	done chan struct{}
}

const ctrlCEvent = 0 // CTRL_C_EVENT

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")

	// active holds the live notifier; consoleRoutine reads it to decide
	// whether to claim the event.
	active atomic.Pointer[eventNotifier]

	// handlerRoutine is created once; callbacks cannot be released.
	handlerRoutine = windows.NewCallback(consoleHandler)
)

// consoleHandler runs on a thread the platform picks. It claims the event
// (returns TRUE) only when a listener exists, so Ctrl+C keeps its default
// behavior whenever no notifier is live.
func consoleHandler(ctrlType uintptr) uintptr {
	if ctrlType != ctrlCEvent {
		return 0
	}
	n := active.Load()
	if n == nil {
		return 0
	}
	select {
	case n.ch <- Interrupt:
	default:
		// Buffer full: drop, same policy as the Unix backends.
	}
	return 1
}

func newEventNotifier() (*eventNotifier, error) {
	n := &eventNotifier{
		ch:   make(chan Signal, queueCapacity),
		done: make(chan struct{}),
	}
	if !active.CompareAndSwap(nil, n) {
		return nil, ErrNotifierActive
	}
	r, _, err := procSetConsoleCtrlHandler.Call(handlerRoutine, 1)
	if r == 0 {
		active.Store(nil)
		return nil, err
	}
	return n, nil
}

func (n *eventNotifier) addSignal(s Signal) (func(), error) {
	if s != Interrupt {
		return nil, ErrUnsupportedSignal
	}
	// The installed handler already forwards interrupts unconditionally;
	// nothing to register externally.
	return nil, nil
}

func (n *eventNotifier) removeSignal(Signal) error {
	return nil
}

func (n *eventNotifier) next(ctx context.Context) (Signal, error) {
	select {
	case s := <-n.ch:
		return s, nil
	case <-n.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (n *eventNotifier) rawFd() uintptr {
	// No pollable handle on this backend.
	return 0
}

func (n *eventNotifier) shutdown() error {
	close(n.done)
	r, _, err := procSetConsoleCtrlHandler.Call(handlerRoutine, 0)
	active.Store(nil)
	if r == 0 {
		return err
	}
	return nil
}

// newPlatformNotifier ignores the self-pipe preference: there is only one
// backend on Windows.
func newPlatformNotifier(bool) (notifier, error) {
	return newEventNotifier()
}
