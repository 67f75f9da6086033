//go:build unix

package sigstream

import (
	"os"
	"syscall"
)

// platformSignalNumbers builds the Signal to signal-number table from the
// syscall constants so that BSD/Linux numbering differences are absorbed at
// compile time.
func platformSignalNumbers() map[Signal]int {
	return map[Signal]int{
		Hangup:                 int(syscall.SIGHUP),
		Interrupt:              int(syscall.SIGINT),
		Quit:                   int(syscall.SIGQUIT),
		IllegalInstruction:     int(syscall.SIGILL),
		Trap:                   int(syscall.SIGTRAP),
		Abort:                  int(syscall.SIGABRT),
		BusError:               int(syscall.SIGBUS),
		FloatingPointException: int(syscall.SIGFPE),
		Kill:                   int(syscall.SIGKILL),
		User1:                  int(syscall.SIGUSR1),
		SegmentationFault:      int(syscall.SIGSEGV),
		User2:                  int(syscall.SIGUSR2),
		BrokenPipe:             int(syscall.SIGPIPE),
		Alarm:                  int(syscall.SIGALRM),
		Terminate:              int(syscall.SIGTERM),
		Child:                  int(syscall.SIGCHLD),
		Continue:               int(syscall.SIGCONT),
		Stop:                   int(syscall.SIGSTOP),
		TerminalStop:           int(syscall.SIGTSTP),
		TerminalInput:          int(syscall.SIGTTIN),
		TerminalOutput:         int(syscall.SIGTTOU),
		UrgentIO:               int(syscall.SIGURG),
		CPULimit:               int(syscall.SIGXCPU),
		FileSizeLimit:          int(syscall.SIGXFSZ),
		VirtualAlarm:           int(syscall.SIGVTALRM),
		ProfilingAlarm:         int(syscall.SIGPROF),
		WindowChange:           int(syscall.SIGWINCH),
		IOReady:                int(syscall.SIGIO),
		BadSyscall:             int(syscall.SIGSYS),
	}
}

// Os returns the os.Signal equivalent of s, for interoperating with code
// built on the standard library's signal plumbing.
func (s Signal) Os() os.Signal {
	return syscall.Signal(s.Number())
}
