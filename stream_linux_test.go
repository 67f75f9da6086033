//go:build linux

package sigstream

import (
	"os"
	"testing"
)

func openDescriptorCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestAddRemoveCyclesHoldDescriptorCount(t *testing.T) {
	s, err := New(WithSelfPipe())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	before := openDescriptorCount(t)
	for i := 0; i < 100; i++ {
		if err := s.Add(User1); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
		if err := s.Remove(User1); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	after := openDescriptorCount(t)

	if after > before+5 {
		t.Fatalf("descriptor count grew from %d to %d over add/remove cycles", before, after)
	}
}
