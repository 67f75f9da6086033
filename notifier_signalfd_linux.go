//go:build linux

package sigstream

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fdNotifier is the kernel-queue backend. It pairs a signalfd, rebuilt with
// an incrementally widened mask as kinds are added, with the shared bounded
// queue that registration actions push into. The queue captures every
// occurrence the handler path observes; the descriptor doubles as the
// readiness source for external reactors and as a redundant decode path for
// signals the kernel left pending.
//
// How a conventional handler and a signalfd interact for the same number is
// kernel-subtle; the queue is checked first so handler-observed occurrences
// always win.
type fdNotifier struct {
	// fdMu fences reads against shutdown: closing the descriptor while a
	// poll is inside unix.Read would let a reused fd number be read.
	fdMu  sync.Mutex
	fd    int
	mask  unix.Sigset_t
	queue *signalQueue
	wake  chan struct{}
	done  chan struct{}
}

const sigsetWordBits = uint(unsafe.Sizeof(unix.Sigset_t{}.Val[0]) * 8)

func sigsetAdd(set *unix.Sigset_t, number int) {
	bit := uint(number - 1)
	set.Val[bit/sigsetWordBits] |= 1 << (bit % sigsetWordBits)
}

func sigsetDel(set *unix.Sigset_t, number int) {
	bit := uint(number - 1)
	set.Val[bit/sigsetWordBits] &^= 1 << (bit % sigsetWordBits)
}

func newFdNotifier() (*fdNotifier, error) {
	n := &fdNotifier{
		fd:    -1,
		queue: newSignalQueue(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	fd, err := unix.Signalfd(-1, &n.mask, unix.SFD_NONBLOCK|unix.SFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("sigstream: creating signalfd: %w", err)
	}
	n.fd = fd
	return n, nil
}

func (n *fdNotifier) addSignal(s Signal) (func(), error) {
	sigsetAdd(&n.mask, s.Number())
	if _, err := unix.Signalfd(n.fd, &n.mask, unix.SFD_NONBLOCK|unix.SFD_CLOEXEC); err != nil {
		sigsetDel(&n.mask, s.Number())
		return nil, fmt.Errorf("sigstream: updating signalfd mask: %w", err)
	}

	queue, wake := n.queue, n.wake
	return func() {
		// Runs on the dispatch path for the raw handler: push is lock-free
		// and allocation-free, the send is non-blocking. A full queue drops
		// the occurrence; the wake still fires so the consumer drains what
		// is there.
		queue.push(s)
		select {
		case wake <- struct{}{}:
		default:
		}
	}, nil
}

func (n *fdNotifier) removeSignal(s Signal) error {
	sigsetDel(&n.mask, s.Number())
	if _, err := unix.Signalfd(n.fd, &n.mask, unix.SFD_NONBLOCK|unix.SFD_CLOEXEC); err != nil {
		return fmt.Errorf("sigstream: updating signalfd mask: %w", err)
	}
	return nil
}

// readPending performs one non-blocking read of the signalfd. ok is false
// when nothing was pending.
func (n *fdNotifier) readPending() (Signal, bool, error) {
	n.fdMu.Lock()
	defer n.fdMu.Unlock()
	if n.fd < 0 {
		return 0, false, ErrClosed
	}

	var buf [unsafe.Sizeof(unix.SignalfdSiginfo{})]byte
	for {
		nr, err := unix.Read(n.fd, buf[:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, false, nil
		case err != nil:
			return 0, false, fmt.Errorf("sigstream: reading signalfd: %w", err)
		case nr != len(buf):
			return 0, false, fmt.Errorf("sigstream: short signalfd read (%d bytes)", nr)
		}
		info := (*unix.SignalfdSiginfo)(unsafe.Pointer(&buf[0]))
		s, known := SignalFromNumber(int(info.Signo))
		if !known {
			return 0, false, fmt.Errorf("%w: %d", ErrInvalidSignal, info.Signo)
		}
		return s, true, nil
	}
}

func (n *fdNotifier) next(ctx context.Context) (Signal, error) {
	first := true
	for {
		if s, ok := n.queue.pop(); ok {
			return s, nil
		}
		s, ok, err := n.readPending()
		if err != nil {
			return 0, err
		}
		if ok {
			return s, nil
		}
		if first {
			// A signal may have landed between the queue check and the
			// read; go around once more before parking.
			first = false
			continue
		}
		select {
		case <-n.wake:
		case <-n.done:
			return 0, ErrClosed
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func (n *fdNotifier) rawFd() uintptr {
	return uintptr(n.fd)
}

func (n *fdNotifier) shutdown() error {
	close(n.done)
	n.fdMu.Lock()
	defer n.fdMu.Unlock()
	if n.fd >= 0 {
		err := unix.Close(n.fd)
		n.fd = -1
		return err
	}
	return nil
}

// newPlatformNotifier prefers signalfd on Linux unless the self-pipe
// backend is forced.
func newPlatformNotifier(selfPipe bool) (notifier, error) {
	if selfPipe {
		return newPipeNotifier()
	}
	return newFdNotifier()
}
