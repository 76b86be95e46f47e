package metadata

import "github.com/vkngwrapper/linmem/indexheap"

type segmentID int32

const nilSegment segmentID = -1

// segment is a half-open address range [start, end). heapIndex is the segment's slot in the
// free-segment heap, or indexheap.NotPresent while the segment is allocated.
type segment struct {
	start int
	end   int

	prev segmentID
	next segmentID

	heapIndex int
	handle    Handle
	userData  any
}

func (s *segment) size() int { return s.end - s.start }

func (s *segment) isFree() bool { return s.heapIndex != indexheap.NotPresent }

// directory is an address-ordered doubly-linked list of segments stored in an arena. A
// segmentID stays valid until the segment is removed, no matter how many segments are
// created afterward, so the free-segment heap can hold ids instead of pointers.
type directory struct {
	nodes    []segment
	recycled []segmentID
	head     segmentID
	tail     segmentID
	count    int
}

func (d *directory) reset() {
	d.nodes = d.nodes[:0]
	d.recycled = d.recycled[:0]
	d.head = nilSegment
	d.tail = nilSegment
	d.count = 0
}

// node returns the live arena entry for id. The pointer is only good until the next call to
// newSegment, which may grow the arena.
func (d *directory) node(id segmentID) *segment {
	return &d.nodes[id]
}

func (d *directory) newSegment(start, end int) segmentID {
	seg := segment{
		start:     start,
		end:       end,
		prev:      nilSegment,
		next:      nilSegment,
		heapIndex: indexheap.NotPresent,
		handle:    NoAllocation,
	}

	if n := len(d.recycled); n > 0 {
		id := d.recycled[n-1]
		d.recycled = d.recycled[:n-1]
		d.nodes[id] = seg
		return id
	}

	d.nodes = append(d.nodes, seg)
	return segmentID(len(d.nodes) - 1)
}

func (d *directory) pushBack(start, end int) segmentID {
	id := d.newSegment(start, end)
	seg := d.node(id)

	seg.prev = d.tail
	if d.tail != nilSegment {
		d.node(d.tail).next = id
	} else {
		d.head = id
	}
	d.tail = id
	d.count++

	return id
}

func (d *directory) insertBefore(before segmentID, start, end int) segmentID {
	id := d.newSegment(start, end)
	seg := d.node(id)
	successor := d.node(before)

	seg.next = before
	seg.prev = successor.prev
	if successor.prev != nilSegment {
		d.node(successor.prev).next = id
	} else {
		d.head = id
	}
	successor.prev = id
	d.count++

	return id
}

func (d *directory) remove(id segmentID) {
	seg := d.node(id)

	if seg.prev != nilSegment {
		d.node(seg.prev).next = seg.next
	} else {
		d.head = seg.next
	}

	if seg.next != nilSegment {
		d.node(seg.next).prev = seg.prev
	} else {
		d.tail = seg.prev
	}

	*seg = segment{
		prev:      nilSegment,
		next:      nilSegment,
		heapIndex: indexheap.NotPresent,
		handle:    NoAllocation,
	}
	d.recycled = append(d.recycled, id)
	d.count--
}
