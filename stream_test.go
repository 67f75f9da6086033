//go:build unix

package sigstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srozzo/go-sigstream/registry"
)

// mockRegistrar records registrations without touching process-global
// signal state, and lets tests invoke the installed actions directly.
type mockRegistrar struct {
	nextID  uint64
	actions map[uint64]func()
	numbers map[uint64]int
	failOn  int // signal number Register rejects, 0 for none
}

func newMockRegistrar() *mockRegistrar {
	return &mockRegistrar{
		actions: make(map[uint64]func()),
		numbers: make(map[uint64]int),
	}
}

var errMockRegister = errors.New("mock registrar: rejected")

func (m *mockRegistrar) Register(number int, action func()) (registry.Handle, error) {
	if m.failOn != 0 && number == m.failOn {
		return registry.Handle{}, errMockRegister
	}
	m.nextID++
	m.actions[m.nextID] = action
	m.numbers[m.nextID] = number
	return registry.MakeHandle(number, m.nextID), nil
}

func (m *mockRegistrar) Unregister(h registry.Handle) bool {
	id := h.ID()
	if _, ok := m.actions[id]; !ok {
		return false
	}
	delete(m.actions, id)
	delete(m.numbers, id)
	return true
}

// trigger invokes every action installed for the given number, as the
// dispatch path would on delivery.
func (m *mockRegistrar) trigger(number int) {
	for id, n := range m.numbers {
		if n == number {
			m.actions[id]()
		}
	}
}

func TestAddRegistersOncePerKind(t *testing.T) {
	m := newMockRegistrar()
	s, err := New(WithRegistrar(m), WithSelfPipe())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Add(Interrupt, Interrupt, Terminate); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(Interrupt); err != nil {
		t.Fatal(err)
	}
	if len(m.actions) != 2 {
		t.Fatalf("registrar holds %d registrations, want 2", len(m.actions))
	}
}

func TestTriggeredActionDeliversThroughNext(t *testing.T) {
	m := newMockRegistrar()
	s, err := New(WithRegistrar(m), WithSelfPipe(), WithSignals(Hangup))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	m.trigger(Hangup.Number())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := s.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != Hangup {
		t.Fatalf("Next = %v, want %v", got, Hangup)
	}
}

func TestRegisterFailureKeepsEarlierRegistrations(t *testing.T) {
	m := newMockRegistrar()
	m.failOn = Terminate.Number()
	s, err := New(WithRegistrar(m), WithSelfPipe())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Add(Interrupt, Terminate, Quit)
	if !errors.Is(err, errMockRegister) {
		t.Fatalf("Add = %v, want mock rejection", err)
	}
	// Interrupt was processed before the failure and must remain live;
	// Quit was never reached.
	if len(m.actions) != 1 {
		t.Fatalf("registrar holds %d registrations, want 1", len(m.actions))
	}
	m.trigger(Interrupt.Number())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if got, err := s.Next(ctx); err != nil || got != Interrupt {
		t.Fatalf("Next = %v, %v; want %v", got, err, Interrupt)
	}
}

func TestCloseReleasesEveryHandle(t *testing.T) {
	m := newMockRegistrar()
	s, err := New(WithRegistrar(m), WithSelfPipe(), WithSignals(Interrupt, Terminate, Hangup))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if len(m.actions) != 0 {
		t.Fatalf("registrar still holds %d registrations after Close", len(m.actions))
	}
}

func TestRemoveReleasesHandle(t *testing.T) {
	m := newMockRegistrar()
	s, err := New(WithRegistrar(m), WithSelfPipe(), WithSignals(Interrupt, Terminate))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Remove(Interrupt); err != nil {
		t.Fatal(err)
	}
	if len(m.actions) != 1 {
		t.Fatalf("registrar holds %d registrations, want 1", len(m.actions))
	}
	for _, n := range m.numbers {
		if n != Terminate.Number() {
			t.Fatalf("remaining registration is for number %d, want %d", n, Terminate.Number())
		}
	}
}

func TestDebugLogging(t *testing.T) {
	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, format)
	}
	m := newMockRegistrar()
	s, err := New(WithRegistrar(m), WithSelfPipe(), WithLogger(logf), WithDebug(true))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Add(Interrupt); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(Interrupt); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("logged %d lines, want 2", len(lines))
	}
}
