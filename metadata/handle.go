package metadata

import "math"

// Handle is an opaque, stable reference to a single segment in a SegmentMetadata. Handles
// are never reused by the metadata that issued them.
type Handle uint64

const (
	// NoAllocation is the handle returned from a failed allocation. Freeing it is a no-op.
	NoAllocation Handle = math.MaxUint64
)
