package sigstream

import "sync/atomic"

// queueCapacity bounds how many undelivered signals a notifier buffers.
// Arrivals beyond the bound are dropped, never queued late and never
// blocking the producer.
const queueCapacity = 16

// signalQueue is a fixed-capacity multi-producer/single-consumer ring.
// push performs no allocation and never blocks or spins unboundedly, so it
// is safe to call from the restricted context signal actions run in. It
// uses per-slot sequence numbers (Vyukov's bounded queue scheme): a slot is
// free for the enqueuer when seq == tail, filled for the dequeuer when
// seq == head+1.
type signalQueue struct {
	slots [queueCapacity]queueSlot
	tail  atomic.Uint64 // next position to push
	head  atomic.Uint64 // next position to pop
}

type queueSlot struct {
	seq atomic.Uint64
	sig Signal
}

func newSignalQueue() *signalQueue {
	q := &signalQueue{}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// push appends s and reports whether it was stored. A false return means
// the queue was full and the signal is dropped.
func (q *signalQueue) push(s Signal) bool {
	for {
		tail := q.tail.Load()
		slot := &q.slots[tail%queueCapacity]
		seq := slot.seq.Load()
		switch {
		case seq == tail:
			if q.tail.CompareAndSwap(tail, tail+1) {
				slot.sig = s
				slot.seq.Store(tail + 1)
				return true
			}
		case seq < tail:
			// The slot still holds an unconsumed entry from the previous
			// lap: the queue is full.
			return false
		}
		// Lost the race to another producer; reload and retry.
	}
}

// pop removes the oldest entry. Only one goroutine may call pop.
func (q *signalQueue) pop() (Signal, bool) {
	head := q.head.Load()
	slot := &q.slots[head%queueCapacity]
	if slot.seq.Load() != head+1 {
		return 0, false
	}
	s := slot.sig
	slot.seq.Store(head + queueCapacity)
	q.head.Store(head + 1)
	return s, true
}
