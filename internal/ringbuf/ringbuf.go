// Package ringbuf implements the single-atomic-fetch-add buffer pattern used
// by the candidate-pair stream and the contact stream: every producer claims
// an exclusive output slot with one atomic increment, never a lock, per
// spec.md's "Shared-resource policy." Overflow is reported through the
// counter itself, never an exception.
package ringbuf

import (
	"sync/atomic"

	"github.com/shacklettbp/miwe/internal/xerrors"
)

// Buffer is a fixed-capacity slice of T whose insertion index is handed out
// by an atomic fetch-add. Reset must only be called when no producer is
// concurrently writing (the task graph enforces this between steps).
type Buffer[T any] struct {
	name     string
	items    []T
	count    atomic.Int32
	overflow atomic.Int32
}

// NewBuffer allocates a Buffer with the given caller-provided capacity.
func NewBuffer[T any](name string, capacity int) *Buffer[T] {
	return &Buffer[T]{name: name, items: make([]T, capacity)}
}

// Push claims the next slot and writes v into it. It returns a CapacityError
// (and drops v) once the buffer is full, incrementing the overflow counter
// so the caller can report it deterministically instead of panicking inline
// -- per spec.md §5, "Overflow...is reported via a counter, not an
// exception."
func (b *Buffer[T]) Push(v T) error {
	idx := b.count.Add(1) - 1
	if int(idx) >= len(b.items) {
		b.overflow.Add(1)
		return xerrors.NewCapacityError(b.name, len(b.items), int(idx)+1)
	}
	b.items[idx] = v
	return nil
}

// Len returns the number of successfully inserted items (capped at
// capacity); Overflow returns how many Push calls were dropped.
func (b *Buffer[T]) Len() int {
	n := int(b.count.Load())
	if n > len(b.items) {
		return len(b.items)
	}
	return n
}

// Overflow returns the count of dropped Push calls since the last Reset.
func (b *Buffer[T]) Overflow() int {
	return int(b.overflow.Load())
}

// Items returns the slice of successfully inserted items.
func (b *Buffer[T]) Items() []T {
	return b.items[:b.Len()]
}

// Reset zeroes the counters for the next simulation step. Candidate pairs
// and manifolds "live for one step and are reclaimed wholesale" per
// spec.md's Data Model lifecycle section.
func (b *Buffer[T]) Reset() {
	b.count.Store(0)
	b.overflow.Store(0)
}

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}
