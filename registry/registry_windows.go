//go:build windows

package registry

import (
	"os"
	"syscall"
)

func reservedSignal(number int) bool {
	// SIGKILL and SIGSTOP by their conventional numbers.
	return number == 9 || number == 19
}

func osSignal(number int) os.Signal {
	switch number {
	case 2:
		return os.Interrupt
	case 15:
		return syscall.SIGTERM
	}
	// The runtime only delivers console events; nothing else reaches a
	// channel registered through os/signal on Windows.
	return nil
}

// EmulateDefaultHandler performs the default outcome of the given signal.
// On Windows that means exiting for the interrupt and terminate kinds,
// using the conventional 128+n status, and doing nothing for the rest.
func EmulateDefaultHandler(number int) error {
	switch number {
	case 2, 15:
		os.Exit(128 + number)
	}
	return nil
}
