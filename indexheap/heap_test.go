package indexheap_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/linmem/indexheap"
)

type item struct {
	value    int
	position int
}

func newItemHeap() *indexheap.Heap[*item] {
	return indexheap.New[*item](
		func(a, b *item) bool { return a.value > b.value },
		func(element *item, position int) { element.position = position },
	)
}

func requirePositions(t *testing.T, h *indexheap.Heap[*item], items []*item) {
	t.Helper()

	present := 0
	for _, it := range items {
		if it.position == indexheap.NotPresent {
			continue
		}

		present++
		require.Same(t, it, h.At(it.position))
	}
	require.Equal(t, h.Len(), present)
	require.NoError(t, h.Validate())
}

func drain(h *indexheap.Heap[*item]) []int {
	var values []int
	for !h.Empty() {
		top := h.Top()
		values = append(values, top.value)
		h.Pop()
		if top.position != indexheap.NotPresent {
			panic("popped element still reported as present")
		}
	}
	return values
}

func TestHeapPushPopOrder(t *testing.T) {
	h := newItemHeap()
	items := []*item{{value: 5}, {value: 1}, {value: 9}, {value: 3}, {value: 7}, {value: 9}}

	for _, it := range items {
		h.Push(it)
	}
	requirePositions(t, h, items)
	require.Equal(t, 9, h.Top().value)

	require.Equal(t, []int{9, 9, 7, 5, 3, 1}, drain(h))
	requirePositions(t, h, items)
}

func TestHeapEraseMiddle(t *testing.T) {
	h := newItemHeap()
	items := make([]*item, 0, 10)
	for i := 0; i < 10; i++ {
		it := &item{value: i * 10}
		items = append(items, it)
		h.Push(it)
	}

	h.Erase(items[4].position)
	require.Equal(t, indexheap.NotPresent, items[4].position)
	requirePositions(t, h, items)

	h.Erase(items[0].position)
	requirePositions(t, h, items)

	require.Equal(t, []int{90, 80, 70, 60, 50, 30, 20, 10}, drain(h))
}

func TestHeapEraseLastSlot(t *testing.T) {
	h := newItemHeap()
	items := []*item{{value: 3}, {value: 2}, {value: 1}}
	for _, it := range items {
		h.Push(it)
	}

	last := h.At(h.Len() - 1)
	h.Erase(h.Len() - 1)
	require.Equal(t, indexheap.NotPresent, last.position)
	requirePositions(t, h, items)
	require.Equal(t, 2, h.Len())
}

func TestHeapEraseResettlesUpward(t *testing.T) {
	// Heap shape: 100 / (50, 90) / (40, 45, 80, 85)
	// Removing 40 moves 85 into a slot under 50 where it must sift up.
	h := newItemHeap()
	items := []*item{{value: 100}, {value: 50}, {value: 90}, {value: 40}, {value: 45}, {value: 80}, {value: 85}}
	for _, it := range items {
		h.Push(it)
	}
	require.NoError(t, h.Validate())

	h.Erase(items[3].position)
	requirePositions(t, h, items)
	require.Equal(t, []int{100, 90, 85, 80, 50, 45}, drain(h))
}

func TestHeapTopEmptyPanics(t *testing.T) {
	h := newItemHeap()
	require.Panics(t, func() { h.Top() })
	require.Panics(t, func() { h.Pop() })
}

func TestHeapClear(t *testing.T) {
	h := newItemHeap()
	items := []*item{{value: 1}, {value: 2}, {value: 3}}
	for _, it := range items {
		h.Push(it)
	}

	h.Clear()
	require.True(t, h.Empty())
	for _, it := range items {
		require.Equal(t, indexheap.NotPresent, it.position)
	}
}

func TestHeapNilObserver(t *testing.T) {
	h := indexheap.New[int](func(a, b int) bool { return a < b }, nil)
	for _, v := range []int{4, 2, 8, 6} {
		h.Push(v)
	}
	h.Erase(2)
	require.NoError(t, h.Validate())
	require.Equal(t, 3, h.Len())
}

func TestHeapRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := newItemHeap()

	var items []*item
	for step := 0; step < 2000; step++ {
		switch {
		case h.Empty() || rng.Intn(3) > 0:
			it := &item{value: rng.Intn(100)}
			items = append(items, it)
			h.Push(it)
		case rng.Intn(2) == 0:
			h.Pop()
		default:
			h.Erase(rng.Intn(h.Len()))
		}

		require.NoError(t, h.Validate(), "step %d", step)
	}
	requirePositions(t, h, items)

	var expected []int
	for _, it := range items {
		if it.position != indexheap.NotPresent {
			expected = append(expected, it.value)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(expected)))

	require.Equal(t, expected, drain(h))
}
