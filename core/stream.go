package core

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrStreamSealed is returned by Update/Done once the streamable has been
// sealed by a prior Done call.
var ErrStreamSealed = errors.New("streamable already sealed")

const streamBuffer = 16

// Streamable is a write-once-per-fragment, append-forever channel: producers
// push partial values with Update and seal the stream with Done. Consumers
// observe a lazy, single-pass sequence via Values terminating after the final
// value. There is exactly one logical consumer per streamable; it is a queue,
// not a broadcast.
//
// This is the cell behind token-by-token text streaming and the multi-stage
// UI replacement performed while a job is being polled: the caller holds the
// streamable as a live handle and keeps receiving late updates after the
// producing function already returned.
type Streamable[T any] struct {
	id     string
	mu     sync.Mutex
	ch     chan T
	sealed bool
	last   T
	hasAny bool
}

func NewStreamable[T any]() *Streamable[T] {
	return &Streamable[T]{
		id: uuid.New().String(),
		ch: make(chan T, streamBuffer),
	}
}

// ID identifies this streamable across wire frames.
func (s *Streamable[T]) ID() string { return s.id }

// Update appends a partial value. It blocks only when the consumer is more
// than streamBuffer values behind.
func (s *Streamable[T]) Update(v T) error {
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		return ErrStreamSealed
	}
	s.last = v
	s.hasAny = true
	s.mu.Unlock()
	s.ch <- v
	return nil
}

// Done appends the terminal value and seals the streamable. Further Update or
// Done calls are rejected with ErrStreamSealed.
func (s *Streamable[T]) Done(v T) error {
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		return ErrStreamSealed
	}
	s.sealed = true
	s.last = v
	s.hasAny = true
	s.mu.Unlock()
	s.ch <- v
	close(s.ch)
	return nil
}

// Close seals the streamable without a new terminal value. Used by producers
// whose last Update already was the final state.
func (s *Streamable[T]) Close() error {
	s.mu.Lock()
	if s.sealed {
		s.mu.Unlock()
		return ErrStreamSealed
	}
	s.sealed = true
	s.mu.Unlock()
	close(s.ch)
	return nil
}

// Values returns the single-pass receive sequence. The channel is closed
// after the terminal value has been delivered.
func (s *Streamable[T]) Values() <-chan T {
	return s.ch
}

// Value returns the most recent value pushed so far.
func (s *Streamable[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasAny
}

// Sealed reports whether Done or Close has been called.
func (s *Streamable[T]) Sealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealed
}
