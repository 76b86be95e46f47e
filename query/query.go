// Package query reads a log of allocate/free requests and replays it against a
// metadata.SegmentMetadata, producing one response per allocation request.
package query

// Query is a single entry in a request log. It is either an AllocationRequest or a FreeRequest.
type Query interface {
	isQuery()
}

// AllocationRequest asks for Size contiguous units
type AllocationRequest struct {
	Size int
}

// FreeRequest releases whatever the query at TargetIndex (0-based, counting every query in
// the log) allocated. Releasing a failed allocation, or a query that was itself a free, does
// nothing.
type FreeRequest struct {
	TargetIndex int
}

func (AllocationRequest) isQuery() {}
func (FreeRequest) isQuery()       {}

// Log is a parsed request log
type Log struct {
	// MemorySize is the number of units in the managed address range
	MemorySize int
	Queries    []Query
}

// AllocationCount returns the number of AllocationRequest entries, which is also the number of
// responses a replay will produce
func (l Log) AllocationCount() int {
	var count int
	for _, q := range l.Queries {
		if _, ok := q.(AllocationRequest); ok {
			count++
		}
	}
	return count
}
