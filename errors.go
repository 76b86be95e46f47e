package linmem

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidSize is returned when a size that must be positive is not
	ErrInvalidSize error = errors.New("size must be greater than zero")
	// ErrUnknownHandle is returned when a handle does not map to a live allocation in the metadata that received it, including handles that were already freed
	ErrUnknownHandle error = errors.New("received a handle that was incompatible with this metadata")
	// ErrCorrupted is returned from Validate when internal structures disagree with one another
	ErrCorrupted error = errors.New("segment metadata is corrupted")
)
