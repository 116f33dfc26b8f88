// Package timeline provides the step-indexed, forward-filled history used for
// every piece of schedule state. A value stored at step i applies to every
// later step until the next explicit update.
package timeline

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

// NotFound is returned by the Find family when no slot matches.
const NotFound = -1

// Entry is one run of equal values as reported by Unique.
type Entry[T any] struct {
	Index int // first step of the run
	Value T
}

// Timeline is an ordered sequence of report-step slots.
// Not safe for concurrent mutation.
type Timeline[T any] struct {
	data         []T
	eq           func(a, b T) bool
	initialRange int
}

// New creates a Timeline of the given size where every slot holds def.
func New[T comparable](size int, def T) *Timeline[T] {
	return NewFunc(size, def, func(a, b T) bool { return a == b })
}

// NewFunc creates a Timeline for values compared with eq instead of ==.
// Entity snapshots carry slices, so they use this constructor with their Equal method.
func NewFunc[T any](size int, def T, eq func(a, b T) bool) *Timeline[T] {
	if size < 0 {
		panic(fmt.Sprintf("timeline: negative size %d", size))
	}
	data := make([]T, size)
	for i := range data {
		data[i] = def
	}
	return &Timeline[T]{data: data, eq: eq, initialRange: size}
}

// Size returns the number of slots.
func (t *Timeline[T]) Size() int {
	return len(t.data)
}

// InitialRange returns the length of the prefix still holding the construction-time default.
func (t *Timeline[T]) InitialRange() int {
	return t.initialRange
}

// At returns the value in slot i.
func (t *Timeline[T]) At(i int) (T, error) {
	if i < 0 || i >= len(t.data) {
		var zero T
		return zero, fmt.Errorf("timeline index %d outside [0, %d): %w", i, len(t.data), simerr.ErrNotFound)
	}
	return t.data[i], nil
}

// Back returns the value in the last slot. Panics on an empty timeline.
func (t *Timeline[T]) Back() T {
	return t.data[len(t.data)-1]
}

// Update stores v in slot i and every later slot. It is a no-op returning false
// when v equals the value already at i.
func (t *Timeline[T]) Update(i int, v T) (bool, error) {
	if err := t.checkIndex(i); err != nil {
		return false, err
	}
	if t.eq(t.data[i], v) {
		return false, nil
	}
	for j := i; j < len(t.data); j++ {
		t.data[j] = v
	}
	t.markTouched(i)
	return true, nil
}

// UpdateElm overwrites exactly one slot, without forward fill.
// Reserved for construction and restart patching.
func (t *Timeline[T]) UpdateElm(i int, v T) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	t.data[i] = v
	t.markTouched(i)
	return nil
}

// UpdateEqual replaces the contiguous run of values equal to slot i, starting at i,
// with v. Slots before i and from the first differing slot onwards are untouched.
func (t *Timeline[T]) UpdateEqual(i int, v T) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	current := t.data[i]
	if t.eq(current, v) {
		return nil
	}
	for j := i; j < len(t.data) && t.eq(t.data[j], current); j++ {
		t.data[j] = v
	}
	t.markTouched(i)
	return nil
}

// Unique compresses consecutive duplicates into (first index, value) entries.
func (t *Timeline[T]) Unique() []Entry[T] {
	var out []Entry[T]
	for i, v := range t.data {
		if len(out) > 0 && t.eq(out[len(out)-1].Value, v) {
			continue
		}
		out = append(out, Entry[T]{Index: i, Value: v})
	}
	return out
}

// Find returns the first index holding v, or NotFound.
func (t *Timeline[T]) Find(v T) int {
	return t.FindIf(func(x T) bool { return t.eq(x, v) })
}

// FindIf returns the first index whose value satisfies pred, or NotFound.
func (t *Timeline[T]) FindIf(pred func(T) bool) int {
	for i, v := range t.data {
		if pred(v) {
			return i
		}
	}
	return NotFound
}

// FindNotIf returns the first index whose value does not satisfy pred, or NotFound.
func (t *Timeline[T]) FindNotIf(pred func(T) bool) int {
	return t.FindIf(func(x T) bool { return !pred(x) })
}

func (t *Timeline[T]) checkIndex(i int) error {
	if i < 0 || i >= len(t.data) {
		return fmt.Errorf("timeline index %d outside [0, %d): %w", i, len(t.data), simerr.ErrNotFound)
	}
	return nil
}

func (t *Timeline[T]) markTouched(i int) {
	if i < t.initialRange {
		t.initialRange = i
	}
}
