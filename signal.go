// Package sigstream turns OS signals into an asynchronous, pollable stream.
//
// A Stream owns a platform notifier (signalfd on Linux, a self-pipe socket
// pair on other Unixes, a console control handler on Windows) and a set of
// registered signal kinds. Consumers call Next to receive one signal at a
// time, multiplexing it with timers and cancellation through the context.
//
// Registering a signal disables its default disposition: once SIGINT is on
// the stream, Ctrl+C no longer terminates the process. Callers that want the
// default behavior back run registry.EmulateDefaultHandler after observing
// the signal.
package sigstream

import (
	"fmt"
	"sort"
	"strings"
)

// Signal identifies one kind of OS signal independently of its
// platform-specific number.
type Signal int

const (
	// Hangup is SIGHUP.
	Hangup Signal = iota + 1
	// Interrupt is SIGINT. This is the only kind the Windows backend
	// supports.
	Interrupt
	// Quit is SIGQUIT.
	Quit
	// IllegalInstruction is SIGILL.
	IllegalInstruction
	// Trap is SIGTRAP.
	Trap
	// Abort is SIGABRT, also known as SIGIOT.
	Abort
	// BusError is SIGBUS.
	BusError
	// FloatingPointException is SIGFPE.
	FloatingPointException
	// Kill is SIGKILL. It can be named but never caught; registering it
	// fails at the registry layer.
	Kill
	// User1 is SIGUSR1.
	User1
	// SegmentationFault is SIGSEGV.
	SegmentationFault
	// User2 is SIGUSR2.
	User2
	// BrokenPipe is SIGPIPE.
	BrokenPipe
	// Alarm is SIGALRM.
	Alarm
	// Terminate is SIGTERM.
	Terminate
	// Child is SIGCHLD.
	Child
	// Continue is SIGCONT.
	Continue
	// Stop is SIGSTOP. Like Kill it cannot be caught.
	Stop
	// TerminalStop is SIGTSTP.
	TerminalStop
	// TerminalInput is SIGTTIN.
	TerminalInput
	// TerminalOutput is SIGTTOU.
	TerminalOutput
	// UrgentIO is SIGURG.
	UrgentIO
	// CPULimit is SIGXCPU.
	CPULimit
	// FileSizeLimit is SIGXFSZ.
	FileSizeLimit
	// VirtualAlarm is SIGVTALRM.
	VirtualAlarm
	// ProfilingAlarm is SIGPROF.
	ProfilingAlarm
	// WindowChange is SIGWINCH.
	WindowChange
	// IOReady is SIGIO, also known as SIGPOLL.
	IOReady
	// BadSyscall is SIGSYS.
	BadSyscall

	sentinelSignal // keep last
)

var signalNames = map[Signal]string{
	Hangup:                 "SIGHUP",
	Interrupt:              "SIGINT",
	Quit:                   "SIGQUIT",
	IllegalInstruction:     "SIGILL",
	Trap:                   "SIGTRAP",
	Abort:                  "SIGABRT",
	BusError:               "SIGBUS",
	FloatingPointException: "SIGFPE",
	Kill:                   "SIGKILL",
	User1:                  "SIGUSR1",
	SegmentationFault:      "SIGSEGV",
	User2:                  "SIGUSR2",
	BrokenPipe:             "SIGPIPE",
	Alarm:                  "SIGALRM",
	Terminate:              "SIGTERM",
	Child:                  "SIGCHLD",
	Continue:               "SIGCONT",
	Stop:                   "SIGSTOP",
	TerminalStop:           "SIGTSTP",
	TerminalInput:          "SIGTTIN",
	TerminalOutput:         "SIGTTOU",
	UrgentIO:               "SIGURG",
	CPULimit:               "SIGXCPU",
	FileSizeLimit:          "SIGXFSZ",
	VirtualAlarm:           "SIGVTALRM",
	ProfilingAlarm:         "SIGPROF",
	WindowChange:           "SIGWINCH",
	IOReady:                "SIGIO",
	BadSyscall:             "SIGSYS",
}

// All returns every supported signal kind in declaration order.
func All() []Signal {
	out := make([]Signal, 0, int(sentinelSignal)-1)
	for s := Hangup; s < sentinelSignal; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is one of the enumerated signal kinds.
func (s Signal) Valid() bool {
	return s >= Hangup && s < sentinelSignal
}

// String returns the conventional "SIGXXX" name, or a numeric placeholder
// for values outside the enumeration.
func (s Signal) String() string {
	if name, ok := signalNames[s]; ok {
		return name
	}
	return fmt.Sprintf("signal(%d)", int(s))
}

// Number returns the platform-specific signal number for s. It is total
// over the enumeration; for invalid values it returns 0, which is never a
// valid signal number.
func (s Signal) Number() int {
	return signalNumbers[s]
}

// SignalFromNumber maps a platform signal number back to its Signal. The
// second result is false for numbers outside the supported set.
func SignalFromNumber(number int) (Signal, bool) {
	s, ok := numberSignals[number]
	return s, ok
}

// ParseSignal converts a textual signal name to a Signal. It accepts the
// canonical "SIGTERM" form as well as "term" and "TERM".
func ParseSignal(name string) (Signal, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return 0, fmt.Errorf("sigstream: empty signal name")
	}
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}
	for s, n := range signalNames {
		if n == upper {
			return s, nil
		}
	}
	return 0, fmt.Errorf("sigstream: unknown signal name %q", name)
}

// Strings returns the names of all supported signals, sorted.
func Strings() []string {
	out := make([]string, 0, len(signalNames))
	for _, n := range signalNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var (
	signalNumbers map[Signal]int
	numberSignals map[int]Signal
)

func init() {
	signalNumbers = platformSignalNumbers()
	numberSignals = make(map[int]Signal, len(signalNumbers))
	for s, n := range signalNumbers {
		if _, dup := numberSignals[n]; dup {
			// Two kinds sharing one number would make decoding ambiguous.
			panic(fmt.Sprintf("sigstream: duplicate signal number %d", n))
		}
		numberSignals[n] = s
	}
}
