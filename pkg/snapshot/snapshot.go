// Package snapshot holds process-wide values that are rebuilt wholesale and
// read concurrently.
package snapshot

import "sync/atomic"

type versioned[T any] struct {
	value   T
	version uint64
}

// Holder publishes immutable values. Readers always observe a complete value:
// either the one before a Replace or the one after it.
type Holder[T any] struct {
	current atomic.Pointer[versioned[T]]
}

// New returns a holder seeded with initial at version 0.
func New[T any](initial T) *Holder[T] {
	h := &Holder[T]{}
	h.current.Store(&versioned[T]{value: initial})
	return h
}

// Get returns the current value. Callers must not mutate it.
func (h *Holder[T]) Get() T {
	return h.current.Load().value
}

// Version returns the number of replacements applied so far.
func (h *Holder[T]) Version() uint64 {
	return h.current.Load().version
}

// Replace swaps in next and returns its version.
func (h *Holder[T]) Replace(next T) uint64 {
	for {
		prev := h.current.Load()
		candidate := &versioned[T]{value: next, version: prev.version + 1}
		if h.current.CompareAndSwap(prev, candidate) {
			return candidate.version
		}
	}
}
