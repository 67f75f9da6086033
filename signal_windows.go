//go:build windows

package sigstream

import (
	"os"
	"syscall"
)

// Windows has no POSIX signal delivery. The numbers below follow the common
// Linux values so that names, numbers and round-tripping stay coherent, but
// only Interrupt is actually deliverable through the console-event backend.
func platformSignalNumbers() map[Signal]int {
	return map[Signal]int{
		Hangup:                 1,
		Interrupt:              2,
		Quit:                   3,
		IllegalInstruction:     4,
		Trap:                   5,
		Abort:                  6,
		BusError:               7,
		FloatingPointException: 8,
		Kill:                   9,
		User1:                  10,
		SegmentationFault:      11,
		User2:                  12,
		BrokenPipe:             13,
		Alarm:                  14,
		Terminate:              15,
		Child:                  17,
		Continue:               18,
		Stop:                   19,
		TerminalStop:           20,
		TerminalInput:          21,
		TerminalOutput:         22,
		UrgentIO:               23,
		CPULimit:               24,
		FileSizeLimit:          25,
		VirtualAlarm:           26,
		ProfilingAlarm:         27,
		WindowChange:           28,
		IOReady:                29,
		BadSyscall:             31,
	}
}

// Os returns the os.Signal equivalent of s.
func (s Signal) Os() os.Signal {
	if s == Interrupt {
		return os.Interrupt
	}
	return syscall.Signal(s.Number())
}
