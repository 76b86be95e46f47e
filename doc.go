// Package linmem holds the pieces shared by the linear address-space allocator packages:
// statistics accumulators, sentinel errors, and validation hooks that only run when built
// with the debug_linmem tag.
//
// The allocator itself lives in the metadata package, and query replays request logs
// against it.
package linmem
