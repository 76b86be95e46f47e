package metadata

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/linmem"
	"github.com/vkngwrapper/linmem/indexheap"
	"golang.org/x/exp/slog"
)

// CreateOptions contains settings used by New
type CreateOptions struct {
	// Size is the number of addressable units managed by the metadata. It must be greater than 0.
	Size int
}

// SegmentMetadata manages a single linear address range [0, Size). Allocations are carved from
// the largest free segment, ties going to the segment with the lowest offset, and freed segments
// are immediately merged with free neighbors.
//
// Segments are kept in two structures that are always edited together: an address-ordered
// directory that tiles the whole range, and a heap containing only the free segments. Each
// segment caches its heap slot, so a free neighbor can be pulled out of the heap without a search.
//
// SegmentMetadata is not safe for concurrent use.
type SegmentMetadata struct {
	logger *slog.Logger
	size   int

	allocCount  int
	sumFreeSize int

	directory    directory
	freeSegments *indexheap.Heap[segmentID]

	nextHandle Handle
	handleKey  *swiss.Map[Handle, segmentID]
}

var _ linmem.Validatable = &SegmentMetadata{}

// NewSegmentMetadata creates a SegmentMetadata that must be sized with Init before it is used.
// If logger is nil, slog.Default() is used.
func NewSegmentMetadata(logger *slog.Logger) *SegmentMetadata {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SegmentMetadata{
		logger: logger,
	}
	m.freeSegments = indexheap.New[segmentID](m.segmentBeats, m.segmentMoved)
	m.directory.reset()

	return m
}

// New creates a SegmentMetadata and initializes it with the size from options
func New(logger *slog.Logger, options CreateOptions) (*SegmentMetadata, error) {
	err := linmem.CheckPositive(options.Size, "CreateOptions.Size")
	if err != nil {
		return nil, err
	}

	m := NewSegmentMetadata(logger)
	m.Init(options.Size)

	return m, nil
}

// Init discards all state and prepares the metadata to manage size units as a single free
// segment. size must be greater than 0.
func (m *SegmentMetadata) Init(size int) {
	if size < 1 {
		panic(errors.AssertionFailedf("metadata size must be greater than zero, but was %d", size))
	}

	m.size = size
	m.reset()
}

func (m *SegmentMetadata) reset() {
	m.freeSegments.Clear()
	m.directory.reset()
	m.handleKey = swiss.NewMap[Handle, segmentID](42)
	m.allocCount = 0
	m.sumFreeSize = 0

	m.registerFree(m.directory.pushBack(0, m.size))
}

// Clear instantly frees every allocation. All previously-issued handles become invalid.
func (m *SegmentMetadata) Clear() {
	m.reset()
}

// Size returns the number of units the metadata was initialized with
func (m *SegmentMetadata) Size() int { return m.size }

// segmentBeats orders the free heap: bigger segments first, then lower offsets
func (m *SegmentMetadata) segmentBeats(a, b segmentID) bool {
	left := m.directory.node(a)
	right := m.directory.node(b)

	if left.size() != right.size() {
		return left.size() > right.size()
	}
	return left.start < right.start
}

func (m *SegmentMetadata) segmentMoved(id segmentID, position int) {
	m.directory.node(id).heapIndex = position
}

// issueHandle gives an allocated segment a fresh handle. Free segments never hold one.
func (m *SegmentMetadata) issueHandle(id segmentID) Handle {
	m.nextHandle++
	handle := m.nextHandle
	m.directory.node(id).handle = handle
	m.handleKey.Put(handle, id)
	return handle
}

func (m *SegmentMetadata) getSegment(handle Handle) (segmentID, error) {
	id, ok := m.handleKey.Get(handle)
	if !ok {
		return nilSegment, errors.Wrapf(linmem.ErrUnknownHandle, "handle %d", handle)
	}
	return id, nil
}

func (m *SegmentMetadata) revokeHandle(id segmentID) {
	seg := m.directory.node(id)
	m.handleKey.Delete(seg.handle)
	seg.handle = NoAllocation
}

func (m *SegmentMetadata) registerFree(id segmentID) {
	m.sumFreeSize += m.directory.node(id).size()
	m.freeSegments.Push(id)
}

func (m *SegmentMetadata) unregisterFree(id segmentID) {
	seg := m.directory.node(id)
	m.sumFreeSize -= seg.size()
	m.freeSegments.Erase(seg.heapIndex)
}

// Allocate reserves size units from the largest free segment, choosing the lowest offset among
// equally-sized candidates. If no free segment is large enough, NoAllocation is returned with a
// nil error and the metadata is unchanged. An error is only returned if size is less than 1.
func (m *SegmentMetadata) Allocate(size int) (Handle, error) {
	err := linmem.CheckPositive(size, "allocation size")
	if err != nil {
		return NoAllocation, err
	}

	linmem.DebugValidate(m)

	if m.freeSegments.Empty() {
		m.logger.LogAttrs(context.Background(), slog.LevelDebug, "SegmentMetadata::Allocate no free segments",
			slog.Int("size", size))
		return NoAllocation, nil
	}

	largest := m.freeSegments.Top()
	if m.directory.node(largest).size() < size {
		m.logger.LogAttrs(context.Background(), slog.LevelDebug, "SegmentMetadata::Allocate no segment large enough",
			slog.Int("size", size),
			slog.Int("largestFree", m.directory.node(largest).size()))
		return NoAllocation, nil
	}

	m.sumFreeSize -= m.directory.node(largest).size()
	m.freeSegments.Pop()

	allocated := m.splitAndAllocate(largest, size)
	seg := m.directory.node(allocated)

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "SegmentMetadata::Allocate",
		slog.Int("offset", seg.start),
		slog.Int("size", size),
		slog.Uint64("handle", uint64(seg.handle)))

	return seg.handle, nil
}

// splitAndAllocate carves [start, start+size) off the front of a free segment that has already
// been removed from the heap. The remainder goes back into the heap, or is dropped from the
// directory if nothing is left.
func (m *SegmentMetadata) splitAndAllocate(freeID segmentID, size int) segmentID {
	start := m.directory.node(freeID).start
	allocated := m.directory.insertBefore(freeID, start, start+size)
	m.issueHandle(allocated)

	remainder := m.directory.node(freeID)
	remainder.start += size

	if remainder.start == remainder.end {
		m.directory.remove(freeID)
	} else {
		m.registerFree(freeID)
	}

	m.allocCount++
	return allocated
}

// Free returns an allocation to the free pool, merging it with any free neighbor. Freeing
// NoAllocation is a no-op. The handle is invalid once Free returns: freeing it again, or
// passing it to any other method, returns ErrUnknownHandle.
func (m *SegmentMetadata) Free(handle Handle) error {
	if handle == NoAllocation {
		return nil
	}

	id, err := m.getSegment(handle)
	if err != nil {
		return err
	}

	seg := m.directory.node(id)
	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "SegmentMetadata::Free",
		slog.Int("offset", seg.start),
		slog.Int("size", seg.size()),
		slog.Uint64("handle", uint64(handle)))

	m.revokeHandle(id)
	seg.userData = nil
	m.allocCount--

	if next := seg.next; next != nilSegment {
		m.mergeIfFreeNeighbor(id, next)
	}
	if prev := m.directory.node(id).prev; prev != nilSegment {
		m.mergeIfFreeNeighbor(id, prev)
	}

	m.registerFree(id)

	linmem.DebugValidate(m)
	return nil
}

// mergeIfFreeNeighbor absorbs neighbor into center if neighbor is free
func (m *SegmentMetadata) mergeIfFreeNeighbor(center, neighbor segmentID) {
	if !m.directory.node(neighbor).isFree() {
		return
	}

	m.unregisterFree(neighbor)

	absorbed := m.directory.node(neighbor)
	seg := m.directory.node(center)
	if absorbed.start < seg.start {
		seg.start = absorbed.start
	}
	if absorbed.end > seg.end {
		seg.end = absorbed.end
	}

	m.directory.remove(neighbor)
}
