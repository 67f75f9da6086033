//go:build unix

package registry

import (
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func raise(t *testing.T, sig syscall.Signal) {
	t.Helper()
	if err := syscall.Kill(os.Getpid(), sig); err != nil {
		t.Fatalf("raising %v: %v", sig, err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestRegisterRunsActionOnDelivery(t *testing.T) {
	var fired atomic.Int64
	h, err := Register(int(syscall.SIGUSR1), func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	defer Unregister(h)

	raise(t, syscall.SIGUSR1)
	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestMultipleActionsSameNumber(t *testing.T) {
	var a, b atomic.Int64
	h1, err := Register(int(syscall.SIGUSR2), func() { a.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Register(int(syscall.SIGUSR2), func() { b.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	defer Unregister(h1)
	defer Unregister(h2)

	raise(t, syscall.SIGUSR2)
	waitFor(t, func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestUnregisterStopsDelivery(t *testing.T) {
	var fired atomic.Int64
	h, err := Register(int(syscall.SIGWINCH), func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	if !Unregister(h) {
		t.Fatal("Unregister returned false for a live handle")
	}
	if Unregister(h) {
		t.Fatal("second Unregister returned true")
	}

	// Default disposition for SIGWINCH is ignore, so this must be a no-op.
	raise(t, syscall.SIGWINCH)
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("action fired %d times after unregister", fired.Load())
	}
}

func TestReregisterAfterRelease(t *testing.T) {
	var fired atomic.Int64
	h, err := Register(int(syscall.SIGHUP), func() {})
	if err != nil {
		t.Fatal(err)
	}
	Unregister(h)

	h, err = Register(int(syscall.SIGHUP), func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	defer Unregister(h)

	raise(t, syscall.SIGHUP)
	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestReservedSignals(t *testing.T) {
	if _, err := Register(int(syscall.SIGKILL), func() {}); !errors.Is(err, ErrReservedSignal) {
		t.Fatalf("SIGKILL: %v, want ErrReservedSignal", err)
	}
	if _, err := Register(int(syscall.SIGSTOP), func() {}); !errors.Is(err, ErrReservedSignal) {
		t.Fatalf("SIGSTOP: %v, want ErrReservedSignal", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	if _, err := Register(int(syscall.SIGUSR1), nil); err == nil {
		t.Fatal("nil action accepted")
	}
	if _, err := Register(0, func() {}); err == nil {
		t.Fatal("signal 0 accepted")
	}
	if _, err := Register(-1, func() {}); err == nil {
		t.Fatal("signal -1 accepted")
	}
	if _, err := Register(1024, func() {}); err == nil {
		t.Fatal("signal 1024 accepted")
	}
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	if h.Valid() {
		t.Fatal("zero handle reports valid")
	}
	if Unregister(h) {
		t.Fatal("zero handle unregistered something")
	}
}

func TestEmulateDefaultHandlerIgnoredSignals(t *testing.T) {
	// These have ignore-style defaults; emulation must not kill the test
	// process.
	for _, sig := range []syscall.Signal{syscall.SIGCHLD, syscall.SIGWINCH, syscall.SIGURG, syscall.SIGCONT} {
		if err := EmulateDefaultHandler(int(sig)); err != nil {
			t.Fatalf("EmulateDefaultHandler(%v): %v", sig, err)
		}
	}
}
