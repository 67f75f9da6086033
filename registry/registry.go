// Package registry installs per-signal-number actions over the runtime's
// signal plumbing. It is the process-global registration service consumed
// by sigstream: each registered action runs when its signal is delivered,
// must not block, and must not allocate, because it stands between the
// OS-level handler and the consumer's poll loop.
//
// Multiple actions may be registered for the same number; each registration
// is identified by an opaque Handle and released independently. When the
// last action for a number is released the number reverts to its default
// disposition.
package registry

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
)

// ErrReservedSignal is returned for signals the operating system does not
// allow to be caught (KILL and STOP).
var ErrReservedSignal = errors.New("registry: signal cannot be caught")

// Action runs when the associated signal is delivered. It executes on a
// dispatch goroutine asynchronously with respect to everything else in the
// process and must complete in bounded, non-blocking time.
type Action func()

// Handle identifies one installed action. The zero Handle is invalid.
type Handle struct {
	number int
	id     uint64
}

// Valid reports whether h refers to a registration that was issued by
// Register. It does not check whether the registration is still installed.
func (h Handle) Valid() bool { return h.id != 0 }

// Number returns the signal number the handle was registered for.
func (h Handle) Number() int { return h.number }

// ID returns the registration id carried by h.
func (h Handle) ID() uint64 { return h.id }

// MakeHandle mints a Handle outside this package's bookkeeping. It exists
// for alternative Registrar implementations; handles minted this way mean
// nothing to Unregister here.
func MakeHandle(number int, id uint64) Handle {
	return Handle{number: number, id: id}
}

type slot struct {
	ch      chan os.Signal
	stop    chan struct{}
	actions map[uint64]Action
}

var global = struct {
	mu     sync.Mutex
	nextID uint64
	slots  map[int]*slot
}{slots: make(map[int]*slot)}

// Register installs action to run whenever signal number is delivered to
// the process. The first registration for a number redirects that signal
// away from its default disposition; it stays redirected until every
// handle for the number has been unregistered.
func Register(number int, action Action) (Handle, error) {
	if action == nil {
		return Handle{}, fmt.Errorf("registry: nil action for signal %d", number)
	}
	if reservedSignal(number) {
		return Handle{}, fmt.Errorf("%w: %d", ErrReservedSignal, number)
	}
	sig := osSignal(number)
	if sig == nil {
		return Handle{}, fmt.Errorf("registry: signal %d not deliverable on this platform", number)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	sl, ok := global.slots[number]
	if !ok {
		sl = &slot{
			// Buffered so bursts arriving while the dispatcher is mid-cycle
			// are not coalesced away before the notifier's own bound applies.
			ch:      make(chan os.Signal, 16),
			stop:    make(chan struct{}),
			actions: make(map[uint64]Action),
		}
		signal.Notify(sl.ch, sig)
		global.slots[number] = sl
		go dispatch(number, sl)
	}

	global.nextID++
	id := global.nextID
	sl.actions[id] = action
	return Handle{number: number, id: id}, nil
}

// Unregister removes the action identified by h and reports whether it was
// still installed. Releasing the last action for a number stops delivery
// and restores the default disposition. Unregister is idempotent: a second
// call with the same handle returns false.
func Unregister(h Handle) bool {
	if !h.Valid() {
		return false
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	sl, ok := global.slots[h.number]
	if !ok {
		return false
	}
	if _, ok := sl.actions[h.id]; !ok {
		return false
	}
	delete(sl.actions, h.id)
	if len(sl.actions) == 0 {
		signal.Stop(sl.ch)
		close(sl.stop)
		delete(global.slots, h.number)
	}
	return true
}

func dispatch(number int, sl *slot) {
	for {
		select {
		case <-sl.stop:
			return
		case <-sl.ch:
			global.mu.Lock()
			actions := make([]Action, 0, len(sl.actions))
			for _, a := range sl.actions {
				actions = append(actions, a)
			}
			global.mu.Unlock()
			for _, a := range actions {
				a()
			}
		}
	}
}
