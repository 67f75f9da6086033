package sigstream

import (
	"context"
	"errors"
)

// Watch is a channel-style convenience over Stream. It constructs a stream
// for the given kinds and pumps it into the returned channel until ctx is
// done or the stream reports a fatal error, then closes both. Errors from
// individual polls are not surfaced; callers that need them should drive a
// Stream directly.
func Watch(ctx context.Context, sigs ...Signal) (<-chan Signal, error) {
	s, err := New(WithSignals(sigs...))
	if err != nil {
		return nil, err
	}
	ch := make(chan Signal, 1)
	go func() {
		defer close(ch)
		defer s.Close()
		for {
			sig, err := s.Next(ctx)
			if errors.Is(err, ErrInvalidSignal) {
				continue
			}
			if err != nil {
				return
			}
			select {
			case ch <- sig:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
