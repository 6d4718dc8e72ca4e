package ftl

import "errors"

// Sentinel errors surfaced by Device and the GC engine. All of them are
// fatal to a run: none are retried beyond the bounded retry already built
// into the write and collect paths.
var (
	// ErrOutOfSpace means host-mode allocation found no destination for a
	// host write: no reusable active head, no partially-free block, and no
	// completely-free block above the reserve. Device.Write does not run GC
	// itself.
	ErrOutOfSpace = errors.New("ftl: out of space for host write")
	// ErrNoVictim means GC was requested but every block is empty.
	ErrNoVictim = errors.New("ftl: no victim block available")
	// ErrNoDestination means GC could not acquire a migration destination
	// even after erasing any fully-invalid candidate block.
	ErrNoDestination = errors.New("ftl: no GC destination available")
	// ErrAllocatorInconsistency means a FREE slot was expected but not
	// found after rotating the active head; it indicates a broken
	// invariant and should be unreachable.
	ErrAllocatorInconsistency = errors.New("ftl: allocator inconsistency")
)
