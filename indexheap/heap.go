// Package indexheap provides a binary heap that reports every change to an element's slot
// through an observer callback. Consumers that keep the reported position alongside their
// own data can later remove that element from the middle of the heap in logarithmic time.
package indexheap

import (
	"github.com/cockroachdb/errors"
)

// NotPresent is the position reported to the observer when an element leaves the heap. It
// is never a valid slot.
const NotPresent int = -1

// Observer is called with an element and its new slot every time the element is placed in the
// heap, moved within the heap, or removed from the heap (in which case position is NotPresent)
type Observer[T any] func(element T, position int)

// Heap is a max-heap ordered by a caller-supplied "beats" relation: the top of the heap is an
// element that no other element beats. It is not safe for concurrent use.
type Heap[T any] struct {
	elements []T
	beats    func(a, b T) bool
	observer Observer[T]
}

// New creates an empty heap. beats(a, b) must return true when a should be closer to the top
// than b, and must be a strict ordering. observer may be nil.
func New[T any](beats func(a, b T) bool, observer Observer[T]) *Heap[T] {
	return &Heap[T]{
		beats:    beats,
		observer: observer,
	}
}

func (h *Heap[T]) Len() int { return len(h.elements) }

func (h *Heap[T]) Empty() bool { return len(h.elements) == 0 }

// Top returns the highest-priority element without removing it. It panics if the heap is empty.
func (h *Heap[T]) Top() T {
	if len(h.elements) == 0 {
		panic("indexheap: Top called on an empty heap")
	}
	return h.elements[0]
}

// At returns the element currently in the given slot
func (h *Heap[T]) At(position int) T {
	return h.elements[position]
}

// Push inserts an element at the end of the heap and sifts it toward the root
func (h *Heap[T]) Push(element T) {
	h.elements = append(h.elements, element)
	position := len(h.elements) - 1
	h.notify(element, position)
	h.siftUp(position)
}

// Pop removes the highest-priority element. It panics if the heap is empty.
func (h *Heap[T]) Pop() {
	h.Erase(0)
}

// Erase removes the element in the provided slot, which should have been learned from the
// observer. The last element takes its place and is resettled in both directions.
func (h *Heap[T]) Erase(position int) {
	if position < 0 || position >= len(h.elements) {
		panic(errors.AssertionFailedf("indexheap: erase position %d out of range [0, %d)", position, len(h.elements)))
	}

	var zero T
	last := len(h.elements) - 1
	h.notify(h.elements[position], NotPresent)

	if position != last {
		h.elements[position] = h.elements[last]
		h.notify(h.elements[position], position)
	}
	h.elements[last] = zero
	h.elements = h.elements[:last]

	if position < last {
		// The former last element may belong above or below this slot
		h.siftDown(position)
		h.siftUp(position)
	}
}

// Clear removes every element, notifying each one that it is no longer present
func (h *Heap[T]) Clear() {
	for _, element := range h.elements {
		h.notify(element, NotPresent)
	}
	h.elements = h.elements[:0]
}

// Validate verifies that no element beats its parent
func (h *Heap[T]) Validate() error {
	for i := 1; i < len(h.elements); i++ {
		parent := (i - 1) / 2
		if h.beats(h.elements[i], h.elements[parent]) {
			return errors.Newf("heap order violated: element at position %d beats its parent at position %d", i, parent)
		}
	}

	return nil
}

func (h *Heap[T]) notify(element T, position int) {
	if h.observer == nil {
		return
	}
	h.observer(element, position)
}

func (h *Heap[T]) swap(i, j int) {
	h.elements[i], h.elements[j] = h.elements[j], h.elements[i]
	h.notify(h.elements[i], i)
	h.notify(h.elements[j], j)
}

func (h *Heap[T]) siftUp(position int) {
	for position > 0 {
		parent := (position - 1) / 2
		if !h.beats(h.elements[position], h.elements[parent]) {
			return
		}

		h.swap(position, parent)
		position = parent
	}
}

func (h *Heap[T]) siftDown(position int) {
	n := len(h.elements)
	for {
		dominating := position
		left := 2*position + 1
		right := left + 1

		if left < n && h.beats(h.elements[left], h.elements[dominating]) {
			dominating = left
		}
		if right < n && h.beats(h.elements[right], h.elements[dominating]) {
			dominating = right
		}
		if dominating == position {
			return
		}

		h.swap(position, dominating)
		position = dominating
	}
}
