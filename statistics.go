package linmem

import "math"

// Statistics is a running sum of basic figures across one or more managed address ranges
type Statistics struct {
	RangeCount      int
	AllocationCount int
	RangeBytes      int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.RangeCount = 0
	s.AllocationCount = 0
	s.RangeBytes = 0
	s.AllocationBytes = 0
}

// FreeBytes is the number of managed bytes not covered by a live allocation
func (s *Statistics) FreeBytes() int {
	return s.RangeBytes - s.AllocationBytes
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.RangeCount += other.RangeCount
	s.AllocationCount += other.AllocationCount
	s.RangeBytes += other.RangeBytes
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with per-segment minimums and maximums. Call Clear
// before accumulating into a fresh value so that the minimums start out at math.MaxInt.
type DetailedStatistics struct {
	Statistics
	FreeSegmentCount   int
	AllocationSizeMin  int
	AllocationSizeMax  int
	FreeSegmentSizeMin int
	FreeSegmentSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeSegmentCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeSegmentSizeMin = math.MaxInt
	s.FreeSegmentSizeMax = 0
}

func (s *DetailedStatistics) AddFreeSegment(size int) {
	s.FreeSegmentCount++

	if size < s.FreeSegmentSizeMin {
		s.FreeSegmentSizeMin = size
	}

	if size > s.FreeSegmentSizeMax {
		s.FreeSegmentSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

// Fragmentation returns 1 - largestFree/totalFree, the share of free bytes that
// cannot be served by a single allocation. It is 0 when nothing or everything is free.
func (s *DetailedStatistics) Fragmentation() float64 {
	free := s.FreeBytes()
	if free == 0 || s.FreeSegmentCount == 0 {
		return 0
	}

	return 1 - float64(s.FreeSegmentSizeMax)/float64(free)
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeSegmentCount += other.FreeSegmentCount

	if other.FreeSegmentSizeMin < s.FreeSegmentSizeMin {
		s.FreeSegmentSizeMin = other.FreeSegmentSizeMin
	}

	if other.FreeSegmentSizeMax > s.FreeSegmentSizeMax {
		s.FreeSegmentSizeMax = other.FreeSegmentSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
