package spliter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitInLockstepYieldsBothSides(t *testing.T) {
	pairs := []Pair[int, string]{
		{First: 1, Second: "a"},
		{First: 2, Second: "b"},
		{First: 3, Second: "c"},
	}
	first, second := Split[int, string](NewSliceSource(pairs))

	assert.Equal(t, []int{1, 2, 3}, Collect(first))
	assert.Equal(t, []string{"a", "b", "c"}, Collect(second))
}

func TestSplitOneSideRunsAhead(t *testing.T) {
	pairs := []Pair[int, int]{{1, 10}, {2, 20}, {3, 30}}
	first, second := Split[int, int](NewSliceSource(pairs))

	v, ok := first.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = first.Next()
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, []int{10, 20, 30}, Collect(second))

	v, ok = first.Next()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = first.Next()
	assert.False(t, ok)
}

func TestSplitEmpty(t *testing.T) {
	first, second := Split[int, int](NewSliceSource[Pair[int, int]](nil))
	assert.Empty(t, Collect(first))
	assert.Empty(t, Collect(second))
}

func TestFlattenSkipsEmptySlices(t *testing.T) {
	src := NewSliceSource([][]int{{1, 2}, {}, {3}, {}, {4, 5, 6}})
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, Collect(Flatten[int](src)))
}

func TestFlattenEmptyUpstream(t *testing.T) {
	src := NewSliceSource[[]int](nil)
	assert.Empty(t, Collect(Flatten[int](src)))
}
