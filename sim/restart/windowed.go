package restart

import (
	"fmt"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

// WindowedArray is a flat buffer split into equally sized windows, one per
// entity slot. Windows share storage with the buffer.
type WindowedArray[T any] struct {
	data       []T
	windowSize int
}

// NewWindowedArray returns numWindows windows of windowSize elements, every
// element set to fill.
func NewWindowedArray[T any](numWindows, windowSize int, fill T) (*WindowedArray[T], error) {
	if numWindows < 0 || windowSize <= 0 {
		return nil, fmt.Errorf("windowed array %d x %d: %w", numWindows, windowSize, simerr.ErrInvalidArgument)
	}
	data := make([]T, numWindows*windowSize)
	for i := range data {
		data[i] = fill
	}
	return &WindowedArray[T]{data: data, windowSize: windowSize}, nil
}

// NumWindows returns the number of windows.
func (a *WindowedArray[T]) NumWindows() int { return len(a.data) / a.windowSize }

// WindowSize returns the stride.
func (a *WindowedArray[T]) WindowSize() int { return a.windowSize }

// Window returns window i. Writes to the slice land in the buffer.
func (a *WindowedArray[T]) Window(i int) ([]T, error) {
	if i < 0 || i >= a.NumWindows() {
		return nil, fmt.Errorf("window %d of %d: %w", i, a.NumWindows(), simerr.ErrInvalidArgument)
	}
	lo, hi := i*a.windowSize, (i+1)*a.windowSize
	return a.data[lo:hi:hi], nil
}

// Data returns the whole buffer.
func (a *WindowedArray[T]) Data() []T { return a.data }
