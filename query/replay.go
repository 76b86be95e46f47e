package query

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linmem"
	"github.com/vkngwrapper/linmem/metadata"
	"golang.org/x/exp/slog"
)

// Options contains optional settings for Run. It is valid to leave all the fields blank.
type Options struct {
	// Base is added to every reported offset. Offsets are 0-based by default; set Base to 1 for
	// logs that expect the first unit to be numbered 1.
	Base int
	// Validate runs a full metadata consistency check after every query. This is slow. It is always
	// on in builds with the debug_linmem tag.
	Validate bool
}

// Response is the outcome of one AllocationRequest
type Response struct {
	Success bool
	Offset  int
}

// Result is everything produced by a replay
type Result struct {
	Responses []Response
	// Metadata is the allocator state after the final query. Allocations that were never freed
	// are still live in it.
	Metadata *metadata.SegmentMetadata
}

// Run replays every query in order against a fresh SegmentMetadata sized to log.MemorySize.
// Cancelling ctx stops the replay between queries.
func Run(ctx context.Context, logger *slog.Logger, log Log, options Options) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	md, err := metadata.New(logger, metadata.CreateOptions{Size: log.MemorySize})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Responses: make([]Response, 0, log.AllocationCount()),
		Metadata:  md,
	}
	handles := make([]metadata.Handle, 0, len(log.Queries))
	validateEach := options.Validate || linmem.DebugEnabled

	for i, q := range log.Queries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "replay stopped at query %d", i)
		}

		switch q := q.(type) {
		case AllocationRequest:
			handle, err := md.Allocate(q.Size)
			if err != nil {
				return nil, errors.Wrapf(err, "query %d", i)
			}
			handles = append(handles, handle)

			if handle == metadata.NoAllocation {
				result.Responses = append(result.Responses, Response{})
				break
			}

			offset, err := md.AllocationOffset(handle)
			if err != nil {
				return nil, errors.Wrapf(err, "query %d", i)
			}
			result.Responses = append(result.Responses, Response{Success: true, Offset: offset + options.Base})

		case FreeRequest:
			if q.TargetIndex < 0 || q.TargetIndex >= len(handles) {
				return nil, errors.Wrapf(ErrMalformedLog, "query %d frees query %d, which has not run yet", i, q.TargetIndex)
			}

			err := md.Free(handles[q.TargetIndex])
			if err != nil {
				return nil, errors.Wrapf(err, "query %d", i)
			}
			handles[q.TargetIndex] = metadata.NoAllocation
			handles = append(handles, metadata.NoAllocation)

		default:
			return nil, errors.AssertionFailedf("unknown query type %T at index %d", q, i)
		}

		if validateEach {
			if err := md.Validate(); err != nil {
				return nil, errors.Wrapf(err, "after query %d", i)
			}
		}
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "query::Run complete",
		slog.Int("queries", len(log.Queries)),
		slog.Int("responses", len(result.Responses)),
		slog.Int("liveAllocations", md.AllocationCount()))

	return result, nil
}
