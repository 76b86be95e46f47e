package metadata

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linmem"
	"github.com/vkngwrapper/linmem/indexheap"
)

// Validate performs a full consistency check of the directory and the free-segment heap. It walks
// every segment and so should only be used for diagnostics and tests.
func (m *SegmentMetadata) Validate() error {
	err := m.validate()
	if err != nil {
		return errors.Mark(err, linmem.ErrCorrupted)
	}
	return nil
}

func (m *SegmentMetadata) validate() error {
	if m.SumFreeSize() > m.Size() {
		return errors.New("invalid metadata free size")
	}

	if m.directory.head == nilSegment || m.directory.tail == nilSegment {
		return errors.New("directory has no segments")
	}

	if m.directory.node(m.directory.head).prev != nilSegment {
		return errors.New("the first segment has a previous segment")
	}

	var allocCount, freeCount, segmentCount, calculatedFreeSize int
	nextOffset := 0
	previousFree := false

	for id := m.directory.head; id != nilSegment; id = m.directory.node(id).next {
		seg := m.directory.node(id)
		segmentCount++

		if seg.start != nextOffset {
			return errors.Errorf("segment at offset %d does not begin where the previous segment ended (%d)", seg.start, nextOffset)
		}
		if seg.end <= seg.start {
			return errors.Errorf("segment at offset %d has non-positive size %d", seg.start, seg.size())
		}
		if seg.next != nilSegment && m.directory.node(seg.next).prev != id {
			return errors.Errorf("segment at offset %d lists a next segment, but the reverse reference is broken", seg.start)
		}
		if seg.next == nilSegment && m.directory.tail != id {
			return errors.Errorf("segment at offset %d ends the list but is not the tail", seg.start)
		}

		if seg.isFree() {
			if seg.handle != NoAllocation {
				return errors.Errorf("free segment at offset %d still holds handle %d", seg.start, seg.handle)
			}
			if previousFree {
				return errors.Errorf("segment at offset %d is free and so is the segment before it", seg.start)
			}
			if seg.heapIndex < 0 || seg.heapIndex >= m.freeSegments.Len() || m.freeSegments.At(seg.heapIndex) != id {
				return errors.Errorf("free segment at offset %d lists heap position %d, but is not in that position", seg.start, seg.heapIndex)
			}

			freeCount++
			calculatedFreeSize += seg.size()
			previousFree = true
		} else {
			if seg.heapIndex != indexheap.NotPresent {
				return errors.Errorf("allocated segment at offset %d has a heap position", seg.start)
			}

			handleID, ok := m.handleKey.Get(seg.handle)
			if !ok || handleID != id {
				return errors.Errorf("allocated segment at offset %d has handle %d, which does not map back to it", seg.start, seg.handle)
			}

			allocCount++
			previousFree = false
		}

		nextOffset = seg.end
	}

	if nextOffset != m.size {
		return errors.Errorf("the full size of the metadata is %d, but the segments only added up to %d", m.size, nextOffset)
	}

	if segmentCount != m.directory.count {
		return errors.Errorf("the directory counts %d segments, but %d are linked", m.directory.count, segmentCount)
	}

	if allocCount != m.handleKey.Count() {
		return errors.Errorf("there are %d allocated segments, but %d handles are registered", allocCount, m.handleKey.Count())
	}

	if freeCount != m.freeSegments.Len() {
		return errors.Errorf("the number of free segments in the directory and the number of segments in the heap do not match! heap size: %d, directory free segments: %d", m.freeSegments.Len(), freeCount)
	}

	if calculatedFreeSize != m.sumFreeSize {
		return errors.Errorf("the free size of the metadata is %d, but the free segments only added up to %d", m.sumFreeSize, calculatedFreeSize)
	}

	if allocCount != m.allocCount {
		return errors.Errorf("the allocation count of the metadata is %d, but the allocated segments only added up to %d", m.allocCount, allocCount)
	}

	return m.freeSegments.Validate()
}
