package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resvsim/schedule-sim/sim/simerr"
)

func values[T any](t *testing.T, tl *Timeline[T]) []T {
	t.Helper()
	out := make([]T, tl.Size())
	for i := range out {
		v, err := tl.At(i)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestTimeline_ForwardFill(t *testing.T) {
	// GIVEN a timeline of 6 steps with default 0
	tl := New(6, 0)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, values(t, tl))

	// WHEN a value is set at step 2
	changed, err := tl.Update(2, 7)
	require.NoError(t, err)

	// THEN steps >= 2 hold the value and earlier steps keep the default
	assert.True(t, changed)
	assert.Equal(t, []int{0, 0, 7, 7, 7, 7}, values(t, tl))

	// AND a later update overrides only from its own step
	_, err = tl.Update(4, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 7, 7, 9, 9}, values(t, tl))
	assert.Equal(t, 2, tl.InitialRange())
}

func TestTimeline_UpdateSameValueIsNoop(t *testing.T) {
	tl := New(4, "a")
	_, err := tl.Update(1, "b")
	require.NoError(t, err)

	changed, err := tl.Update(2, "b")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []string{"a", "b", "b", "b"}, values(t, tl))
	assert.Equal(t, 1, tl.InitialRange())
}

func TestTimeline_UpdateEqualStopsAtRunBoundary(t *testing.T) {
	// GIVEN [X X X X Z Z] with a uniform run [0,4) of X
	tl := New(6, "X")
	_, err := tl.Update(4, "Z")
	require.NoError(t, err)

	// WHEN update_equal is applied strictly inside the run
	require.NoError(t, tl.UpdateEqual(1, "Y"))

	// THEN exactly [1,4) changes
	assert.Equal(t, []string{"X", "Y", "Y", "Y", "Z", "Z"}, values(t, tl))
}

func TestTimeline_UpdateElmTouchesOneSlot(t *testing.T) {
	tl := New(4, 1.0)
	require.NoError(t, tl.UpdateElm(2, 3.5))
	assert.Equal(t, []float64{1, 1, 3.5, 1}, values(t, tl))
}

func TestTimeline_OutOfRange(t *testing.T) {
	tl := New(3, 0)
	_, err := tl.At(3)
	assert.True(t, errors.Is(err, simerr.ErrNotFound))
	_, err = tl.At(-1)
	assert.True(t, errors.Is(err, simerr.ErrNotFound))
	_, err = tl.Update(5, 1)
	assert.True(t, errors.Is(err, simerr.ErrNotFound))
	assert.True(t, errors.Is(tl.UpdateElm(3, 1), simerr.ErrNotFound))
	assert.True(t, errors.Is(tl.UpdateEqual(3, 1), simerr.ErrNotFound))
}

func TestTimeline_UniqueAndFind(t *testing.T) {
	tl := New(7, 0)
	_, _ = tl.Update(2, 5)
	_, _ = tl.Update(5, 8)

	assert.Equal(t, []Entry[int]{{0, 0}, {2, 5}, {5, 8}}, tl.Unique())
	assert.Equal(t, 2, tl.Find(5))
	assert.Equal(t, NotFound, tl.Find(42))
	assert.Equal(t, 5, tl.FindIf(func(v int) bool { return v > 6 }))
	assert.Equal(t, 2, tl.FindNotIf(func(v int) bool { return v == 0 }))
	assert.Equal(t, 8, tl.Back())
}

type snapshot struct {
	name  string
	items []int
}

func TestTimeline_NewFuncUsesEquality(t *testing.T) {
	eq := func(a, b *snapshot) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.name == b.name && len(a.items) == len(b.items)
	}
	tl := NewFunc[*snapshot](3, nil, eq)

	changed, err := tl.Update(0, &snapshot{name: "w", items: []int{1}})
	require.NoError(t, err)
	assert.True(t, changed)

	// a distinct pointer with equal content is a no-op
	changed, err = tl.Update(1, &snapshot{name: "w", items: []int{2}})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, tl.Unique(), 1)
}

// TestTimeline_ForwardFillProperty checks, for every update position, that all
// slots before it keep their previous values and all slots from it hold the new one.
func TestTimeline_ForwardFillProperty(t *testing.T) {
	const n = 8
	for j := 0; j < n; j++ {
		tl := New(n, -1)
		_, err := tl.Update(j, j*10)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			v, _ := tl.At(i)
			if i < j {
				assert.Equal(t, -1, v, "slot %d before update at %d", i, j)
			} else {
				assert.Equal(t, j*10, v, "slot %d after update at %d", i, j)
			}
		}
	}
}
