package sigstream

import (
	"sync"
	"testing"
)

func TestQueuePushPopOrder(t *testing.T) {
	q := newSignalQueue()
	in := []Signal{Interrupt, Terminate, User1, WindowChange}
	for _, s := range in {
		if !q.push(s) {
			t.Fatalf("push %v failed on non-full queue", s)
		}
	}
	for _, want := range in {
		got, ok := q.pop()
		if !ok {
			t.Fatalf("pop: queue empty, want %v", want)
		}
		if got != want {
			t.Fatalf("pop = %v, want %v", got, want)
		}
	}
	if s, ok := q.pop(); ok {
		t.Fatalf("pop on empty queue returned %v", s)
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := newSignalQueue()
	for i := 0; i < queueCapacity; i++ {
		if !q.push(User1) {
			t.Fatalf("push %d failed below capacity", i)
		}
	}
	for i := 0; i < 5; i++ {
		if q.push(User2) {
			t.Fatal("push succeeded on full queue")
		}
	}
	count := 0
	for {
		s, ok := q.pop()
		if !ok {
			break
		}
		if s != User1 {
			t.Fatalf("drained %v, want only %v", s, User1)
		}
		count++
	}
	if count != queueCapacity {
		t.Fatalf("drained %d entries, want %d", count, queueCapacity)
	}
}

func TestQueueReusableAfterDrain(t *testing.T) {
	q := newSignalQueue()
	for lap := 0; lap < 3; lap++ {
		for i := 0; i < queueCapacity; i++ {
			if !q.push(Hangup) {
				t.Fatalf("lap %d: push %d failed", lap, i)
			}
		}
		for i := 0; i < queueCapacity; i++ {
			if _, ok := q.pop(); !ok {
				t.Fatalf("lap %d: pop %d failed", lap, i)
			}
		}
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := newSignalQueue()
	const producers = 8
	const perProducer = 1000

	var accepted [producers]int
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if q.push(Signal(p%2) + User1) {
					accepted[p]++
				}
			}
		}(p)
	}

	popped := 0
	go func() {
		defer close(done)
		wg.Wait()
	}()
	for {
		if _, ok := q.pop(); ok {
			popped++
			continue
		}
		select {
		case <-done:
			// Producers finished; drain whatever is left.
			for {
				if _, ok := q.pop(); !ok {
					total := 0
					for _, a := range accepted {
						total += a
					}
					if popped != total {
						t.Fatalf("popped %d, producers recorded %d accepted pushes", popped, total)
					}
					return
				}
				popped++
			}
		default:
		}
	}
}
