package sigstream

import (
	"context"
	"fmt"
	"sync"

	"github.com/srozzo/go-sigstream/registry"
)

// Registrar abstracts the process-global registration service. It is
// primarily useful for injecting mocks during testing; production code
// uses the registry package through the default implementation.
type Registrar interface {
	// Register installs action to run when signal number is delivered.
	Register(number int, action func()) (registry.Handle, error)
	// Unregister releases a registration previously returned by Register.
	Unregister(h registry.Handle) bool
}

// osRegistrar is the production Registrar, delegating to the registry
// package.
type osRegistrar struct{}

func (osRegistrar) Register(number int, action func()) (registry.Handle, error) {
	return registry.Register(number, action)
}

func (osRegistrar) Unregister(h registry.Handle) bool { return registry.Unregister(h) }

// Stream is an asynchronous source of OS signals. It owns one platform
// notifier and at most one registration per signal kind. A single
// goroutine drives it by calling Next; Add, Remove and Close may be called
// from other goroutines.
type Stream struct {
	mu      sync.Mutex
	n       notifier
	reg     Registrar
	handles map[Signal]registry.Handle
	logf    LoggerFunc
	debug   bool
	closed  bool
}

// New constructs a Stream with the platform-preferred backend: signalfd on
// Linux, the self-pipe socket pair elsewhere on Unix, and the console
// control handler on Windows. It fails if backend resources cannot be
// created, or if any signal requested through WithSignals cannot be
// registered (the stream is torn down again in that case).
func New(opts ...Option) (*Stream, error) {
	c := config{logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(&c)
	}
	if c.registrar == nil {
		c.registrar = osRegistrar{}
	}

	n, err := newPlatformNotifier(c.selfPipe)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		n:       n,
		reg:     c.registrar,
		handles: make(map[Signal]registry.Handle),
		logf:    c.logf,
		debug:   c.debug,
	}
	if len(c.signals) > 0 {
		if err := s.Add(c.signals...); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Add registers the given signal kinds on the stream. Kinds already
// registered are silently skipped. On failure the error is returned
// immediately; kinds processed earlier in the same call stay registered.
//
// Registering a kind disables its default disposition until it is removed
// or the stream is closed.
func (s *Stream) Add(sigs ...Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, sig := range sigs {
		if !sig.Valid() {
			return fmt.Errorf("sigstream: invalid signal %d", int(sig))
		}
		if _, ok := s.handles[sig]; ok {
			continue
		}
		action, err := s.n.addSignal(sig)
		if err != nil {
			return err
		}
		var h registry.Handle
		if action != nil {
			h, err = s.reg.Register(sig.Number(), action)
			if err != nil {
				// Undo the backend state so a kind that never registered
				// does not stay in the kernel mask or hold a pipe clone.
				_ = s.n.removeSignal(sig)
				return fmt.Errorf("sigstream: registering %v: %w", sig, err)
			}
		}
		s.handles[sig] = h
		if s.debug {
			s.logf("sigstream: added %v (number %d)", sig, sig.Number())
		}
	}
	return nil
}

// Remove unregisters the given signal kinds. Kinds that were never
// registered are silently skipped. Occurrences already captured by the
// backend may still be returned by Next.
func (s *Stream) Remove(sigs ...Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, sig := range sigs {
		h, ok := s.handles[sig]
		if !ok {
			continue
		}
		// Release the registration first so the backend can retire the
		// resources its action writes into.
		if h.Valid() {
			s.reg.Unregister(h)
		}
		delete(s.handles, sig)
		if err := s.n.removeSignal(sig); err != nil {
			return err
		}
		if s.debug {
			s.logf("sigstream: removed %v", sig)
		}
	}
	return nil
}

// Next blocks until a registered signal is delivered and returns it. The
// stream never ends on its own: callers bound its lifetime with the
// context. An ErrInvalidSignal result is non-fatal; most other errors mean
// the stream should not be used further.
//
// Next is intended for a single consuming goroutine.
func (s *Stream) Next(ctx context.Context) (Signal, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	n := s.n
	s.mu.Unlock()

	return n.next(ctx)
}

// RawFd exposes the notifier's pollable descriptor so the stream can be
// embedded in an external reactor. Callers must treat it as read-only:
// closing or writing to it corrupts the stream. On Windows there is no
// descriptor and RawFd returns 0.
func (s *Stream) RawFd() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.n.rawFd()
}

// Close releases every remaining registration and the backend resources.
// It does not restore dispositions changed before the stream existed, and
// it does not interrupt a concurrent Next beyond closing the descriptor
// that call is parked on. Close is idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	for sig, h := range s.handles {
		if h.Valid() {
			s.reg.Unregister(h)
		}
		delete(s.handles, sig)
	}
	return s.n.shutdown()
}
