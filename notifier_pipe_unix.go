//go:build unix

package sigstream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// pipeNotifier is the portable backend: a connected non-blocking socket
// pair where each registration action writes the signal number, fixed
// width and native byte order, into its own duplicate of the write end.
// The read end is wrapped in an os.File so blocking reads park in the
// runtime poller. When the socket buffer fills, writes fail and the
// occurrence is dropped, which is the overflow policy.
type pipeNotifier struct {
	r      *os.File
	wfd    int
	clones map[Signal]int

	// Partial decode state, kept across polls so a cancellation between
	// the bytes of one number does not desynchronize later decodes. Only
	// the consumer goroutine touches it.
	dec  [numberWidth]byte
	have int
}

const numberWidth = 4

func newPipeNotifier() (*pipeNotifier, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("sigstream: creating socket pair: %w", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fds[0])
			unix.Close(fds[1])
			return nil, fmt.Errorf("sigstream: setting socket pair non-blocking: %w", err)
		}
		unix.CloseOnExec(fd)
	}
	return &pipeNotifier{
		r:      os.NewFile(uintptr(fds[0]), "sigstream-pipe"),
		wfd:    fds[1],
		clones: make(map[Signal]int),
	}, nil
}

func (n *pipeNotifier) addSignal(s Signal) (func(), error) {
	// Each action owns an independent duplicate of the write end, so no
	// two handler invocations share mutable state. One clone per live
	// kind: a re-add after removal dups afresh, a re-add of a live kind
	// reuses its clone.
	fd, ok := n.clones[s]
	if !ok {
		var err error
		fd, err = unix.Dup(n.wfd)
		if err != nil {
			return nil, fmt.Errorf("sigstream: duplicating write end: %w", err)
		}
		unix.CloseOnExec(fd)
		n.clones[s] = fd
	}

	var buf [numberWidth]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(s.Number()))
	return func() {
		// One non-blocking write; a full buffer (EAGAIN) drops the
		// occurrence.
		_, _ = unix.Write(fd, buf[:])
	}, nil
}

func (n *pipeNotifier) removeSignal(s Signal) error {
	// No kernel state to narrow, but the kind's write-end clone is done;
	// the orchestrator releases the registration before calling here, so
	// at worst one already-dispatched action sees EBADF and drops.
	if fd, ok := n.clones[s]; ok {
		unix.Close(fd)
		delete(n.clones, s)
	}
	return nil
}

func (n *pipeNotifier) next(ctx context.Context) (Signal, error) {
	// Cancellation is delivered by expiring the read deadline; the watcher
	// is torn down and the deadline cleared before returning.
	stop := make(chan struct{})
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-ctx.Done():
			n.r.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-watchDone
		n.r.SetReadDeadline(time.Time{})
	}()

	for n.have < numberWidth {
		nr, err := n.r.Read(n.dec[n.have:])
		n.have += nr
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return 0, fmt.Errorf("sigstream: signal pipe closed: %w", io.ErrUnexpectedEOF)
		case errors.Is(err, os.ErrDeadlineExceeded) && ctx.Err() != nil:
			return 0, ctx.Err()
		case errors.Is(err, os.ErrClosed):
			return 0, ErrClosed
		default:
			return 0, fmt.Errorf("sigstream: reading signal pipe: %w", err)
		}
	}

	number := int(binary.NativeEndian.Uint32(n.dec[:]))
	n.have = 0
	s, ok := SignalFromNumber(number)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSignal, number)
	}
	return s, nil
}

func (n *pipeNotifier) rawFd() uintptr {
	var fd uintptr
	rc, err := n.r.SyscallConn()
	if err != nil {
		return 0
	}
	// Control keeps the file in non-blocking mode, unlike File.Fd.
	_ = rc.Control(func(f uintptr) { fd = f })
	return fd
}

func (n *pipeNotifier) shutdown() error {
	err := n.r.Close()
	for s, fd := range n.clones {
		unix.Close(fd)
		delete(n.clones, s)
	}
	if n.wfd >= 0 {
		unix.Close(n.wfd)
		n.wfd = -1
	}
	return err
}
