//go:build unix

package registry

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

func reservedSignal(number int) bool {
	switch syscall.Signal(number) {
	case syscall.SIGKILL, syscall.SIGSTOP:
		return true
	}
	return false
}

func osSignal(number int) os.Signal {
	if number <= 0 || number >= 64 {
		return nil
	}
	return syscall.Signal(number)
}

// EmulateDefaultHandler performs the default disposition of the given
// signal as if no handler had ever been installed: termination-default
// signals re-raise after resetting the handler, stop-default signals stop
// the process, and ignore-default signals do nothing. Callers typically
// invoke this after observing a signal on a stream, when they have finished
// their own cleanup and want the conventional outcome.
func EmulateDefaultHandler(number int) error {
	sig := syscall.Signal(number)
	switch sig {
	case syscall.SIGCHLD, syscall.SIGURG, syscall.SIGWINCH, syscall.SIGCONT:
		// Default disposition is ignore (or, for SIGCONT, the continue
		// already happened by the time anyone observed it).
		return nil
	case syscall.SIGTSTP, syscall.SIGTTIN, syscall.SIGTTOU:
		return unix.Kill(os.Getpid(), unix.SIGSTOP)
	}
	// Put the default handler back, then deliver. The signal terminates
	// the process, so the Reset cannot be observed racing a concurrent
	// Register in practice.
	signal.Reset(sig)
	return unix.Kill(os.Getpid(), sig)
}
