package metadata

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/linmem"
	"golang.org/x/exp/slog"
)

// AllocationCount returns the number of live allocations
func (m *SegmentMetadata) AllocationCount() int {
	return m.allocCount
}

// FreeRegionsCount returns the number of free segments. Adjacent free space is always merged,
// so this is also the number of maximal free ranges.
func (m *SegmentMetadata) FreeRegionsCount() int {
	return m.freeSegments.Len()
}

// SumFreeSize returns the number of units not covered by a live allocation
func (m *SegmentMetadata) SumFreeSize() int {
	return m.sumFreeSize
}

// LargestFreeRegion returns the size of the biggest free segment, or 0 if nothing is free
func (m *SegmentMetadata) LargestFreeRegion() int {
	if m.freeSegments.Empty() {
		return 0
	}

	return m.directory.node(m.freeSegments.Top()).size()
}

// CanAllocate reports whether Allocate(size) would currently succeed
func (m *SegmentMetadata) CanAllocate(size int) bool {
	return size > 0 && m.LargestFreeRegion() >= size
}

// IsEmpty returns true if there are no live allocations
func (m *SegmentMetadata) IsEmpty() bool {
	return m.allocCount == 0
}

// VisitAllRegions calls handleRegion once for every segment in address order, allocated or
// free. Free segments are reported with NoAllocation as their handle. Iteration stops at the
// first error, which is returned.
func (m *SegmentMetadata) VisitAllRegions(handleRegion func(handle Handle, offset int, size int, userData any, free bool) error) error {
	for id := m.directory.head; id != nilSegment; {
		seg := m.directory.node(id)
		next := seg.next

		err := handleRegion(seg.handle, seg.start, seg.size(), seg.userData, seg.isFree())
		if err != nil {
			return err
		}

		id = next
	}

	return nil
}

// AllocationListBegin returns the handle of the allocation with the lowest offset, or
// NoAllocation if there are none
func (m *SegmentMetadata) AllocationListBegin() Handle {
	for id := m.directory.head; id != nilSegment; id = m.directory.node(id).next {
		if !m.directory.node(id).isFree() {
			return m.directory.node(id).handle
		}
	}

	return NoAllocation
}

// FindNextAllocation returns the handle of the allocation that follows the provided one in
// address order, or NoAllocation if it is the last
func (m *SegmentMetadata) FindNextAllocation(handle Handle) (Handle, error) {
	start, err := m.getSegment(handle)
	if err != nil {
		return NoAllocation, err
	}

	for id := m.directory.node(start).next; id != nilSegment; id = m.directory.node(id).next {
		if !m.directory.node(id).isFree() {
			return m.directory.node(id).handle, nil
		}
	}

	return NoAllocation, nil
}

// AllocationOffset returns the first offset covered by the allocation the handle refers to. A
// handle that has been freed returns ErrUnknownHandle.
func (m *SegmentMetadata) AllocationOffset(handle Handle) (int, error) {
	id, err := m.getSegment(handle)
	if err != nil {
		return 0, err
	}

	return m.directory.node(id).start, nil
}

// AllocationSize returns the number of units covered by the allocation the handle refers to
func (m *SegmentMetadata) AllocationSize(handle Handle) (int, error) {
	id, err := m.getSegment(handle)
	if err != nil {
		return 0, err
	}

	return m.directory.node(id).size(), nil
}

func (m *SegmentMetadata) AllocationUserData(handle Handle) (any, error) {
	id, err := m.getSegment(handle)
	if err != nil {
		return nil, err
	}

	return m.directory.node(id).userData, nil
}

func (m *SegmentMetadata) SetAllocationUserData(handle Handle, userData any) error {
	id, err := m.getSegment(handle)
	if err != nil {
		return err
	}

	m.directory.node(id).userData = userData
	return nil
}

// AddStatistics sums this metadata's figures into stats
func (m *SegmentMetadata) AddStatistics(stats *linmem.Statistics) {
	stats.RangeCount++
	stats.RangeBytes += m.size
	stats.AllocationCount += m.allocCount
	stats.AllocationBytes += m.size - m.sumFreeSize
}

// AddDetailedStatistics sums this metadata's figures into stats, visiting every segment
func (m *SegmentMetadata) AddDetailedStatistics(stats *linmem.DetailedStatistics) {
	stats.RangeCount++
	stats.RangeBytes += m.size

	for id := m.directory.head; id != nilSegment; id = m.directory.node(id).next {
		seg := m.directory.node(id)
		if seg.isFree() {
			stats.AddFreeSegment(seg.size())
		} else {
			stats.AddAllocation(seg.size())
		}
	}
}

// BlockJsonData populates a json object with summary information about the managed range. The
// object is taken by pointer so fields written afterward are separated correctly.
func (m *SegmentMetadata) BlockJsonData(json *jwriter.ObjectState) {
	json.Name("TotalBytes").Int(m.size)
	json.Name("UnusedBytes").Int(m.sumFreeSize)
	json.Name("Allocations").Int(m.allocCount)
	json.Name("UnusedRanges").Int(m.freeSegments.Len())
}

// PrintDetailedMap writes a json object with summary information followed by every segment in
// address order
func (m *SegmentMetadata) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	m.BlockJsonData(&obj)

	arrayState := obj.Name("Segments").Array()
	defer arrayState.End()

	_ = m.VisitAllRegions(
		func(handle Handle, offset int, size int, userData any, free bool) error {
			segObj := arrayState.Object()
			defer segObj.End()

			segObj.Name("Offset").Int(offset)
			segObj.Name("Size").Int(size)

			if free {
				segObj.Name("Type").String("FREE")
				return nil
			}

			segObj.Name("Type").String("ALLOCATED")
			segObj.Name("Handle").Int(int(handle))
			if userData != nil {
				segObj.Name("CustomData").String(fmt.Sprintf("%+v", userData))
			}

			return nil
		})
}

// DebugLogAllAllocations calls logFunc for every live allocation in address order
func (m *SegmentMetadata) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int, userData any)) {
	for id := m.directory.head; id != nilSegment; id = m.directory.node(id).next {
		seg := m.directory.node(id)
		if !seg.isFree() {
			logFunc(logger, seg.start, seg.size(), seg.userData)
		}
	}
}
