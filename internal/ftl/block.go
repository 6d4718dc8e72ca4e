// Package ftl implements the core FTL (Flash Translation Layer) and GC
// engine described in the specification: page-indirection mapping,
// out-of-place writes, multi-stream block allocation with a reserved-free
// safeguard, and garbage-collection execution.
package ftl

import "github.com/flashbench/ftlsim/internal/ftl/policy"

// PageState is the lifecycle state of a single page slot within a block.
type PageState uint8

const (
	// PageFree marks a slot that has never been programmed since the last
	// erase, or was reset by an erase.
	PageFree PageState = iota
	// PageValid marks a slot holding the live data for some LPN.
	PageValid
	// PageInvalid marks a slot that was once valid but has since been
	// superseded by a newer write, a trim, or a GC migration.
	PageInvalid
)

// StreamID tags a write destination by expected hotness.
type StreamID uint8

const (
	// StreamUser is the default, hotness-agnostic stream.
	StreamUser StreamID = iota
	// StreamHot receives writes classified as hot by the active hotness
	// classifier.
	StreamHot
	// StreamCold receives writes classified as cold, when three-stream
	// routing is enabled.
	StreamCold
)

// PoolTag groups blocks for reporting and destination preference. It
// defaults to PoolGen (generic) and is set on (re)allocation as a write
// destination.
type PoolTag uint8

const (
	// PoolGen is the neutral, default pool.
	PoolGen PoolTag = iota
	// PoolHot groups blocks currently serving the hot stream.
	PoolHot
	// PoolCold groups blocks currently serving the cold stream.
	PoolCold
)

// Block is a physical erase-block: an ordered array of page slots plus the
// counters and activity timestamps the GC policies read.
//
// Blocks are exclusively owned by the Device that created them; callers
// outside this package observe a Block through its read-only accessors
// (via Device.Block) or a policy.BlockView, never mutating it directly.
type Block struct {
	pages []PageState

	validCount   int64
	invalidCount int64
	eraseCount   int64
	trimmedPages int64

	lastProgStep    int64
	lastInvalidStep int64
	invEWMA         float64

	streamID StreamID
	pool     PoolTag
}

// NewBlock creates a single erase-block with pagesPerBlock FREE slots.
func NewBlock(pagesPerBlock int) *Block {
	return &Block{pages: make([]PageState, pagesPerBlock)}
}

// PagesPerBlock returns the fixed number of page slots in the block.
func (b *Block) PagesPerBlock() int { return len(b.pages) }

// ValidCount returns the number of VALID slots.
func (b *Block) ValidCount() int64 { return b.validCount }

// InvalidCount returns the number of INVALID slots.
func (b *Block) InvalidCount() int64 { return b.invalidCount }

// EraseCount returns the number of times the block has been erased.
func (b *Block) EraseCount() int64 { return b.eraseCount }

// TrimmedPages returns the number of pages invalidated by a trim since the
// last erase.
func (b *Block) TrimmedPages() int64 { return b.trimmedPages }

// FreeCount returns the number of FREE slots.
func (b *Block) FreeCount() int64 {
	return int64(len(b.pages)) - b.validCount - b.invalidCount
}

// IsCompletelyFree reports whether every slot in the block is FREE.
func (b *Block) IsCompletelyFree() bool {
	return b.FreeCount() == int64(len(b.pages))
}

// State returns the page state at pageIdx.
func (b *Block) State(pageIdx int) PageState { return b.pages[pageIdx] }

// StreamID returns the stream tag the block was last allocated under.
func (b *Block) StreamID() StreamID { return b.streamID }

// Pool returns the pool tag the block was last allocated under.
func (b *Block) Pool() PoolTag { return b.pool }

// SetStreamPool tags the block with a stream/pool pair. Called by the
// allocator when the block becomes (or remains) an active write head.
func (b *Block) SetStreamPool(s StreamID, p PoolTag) {
	b.streamID = s
	b.pool = p
}

// LastActivity returns the later of the block's last program and last
// invalidation logical-clock steps.
func (b *Block) LastActivity() int64 {
	if b.lastProgStep > b.lastInvalidStep {
		return b.lastProgStep
	}
	return b.lastInvalidStep
}

// InvalidRatio returns InvalidCount/(ValidCount+InvalidCount), or 0 for an
// empty block.
func (b *Block) InvalidRatio() float64 {
	used := b.validCount + b.invalidCount
	if used == 0 {
		return 0
	}
	return float64(b.invalidCount) / float64(used)
}

// WearNorm returns EraseCount/maxErase, or 0 when maxErase is 0.
func (b *Block) WearNorm(maxErase int64) float64 {
	if maxErase <= 0 {
		return 0
	}
	return float64(b.eraseCount) / float64(maxErase)
}

// AllocateFreePage finds the lowest-indexed FREE slot, transitions it to
// VALID, and returns its index. ok is false iff no FREE slot exists. The
// caller is responsible for recording LastProgStep after the allocation.
func (b *Block) AllocateFreePage() (idx int, ok bool) {
	for i, st := range b.pages {
		if st == PageFree {
			b.pages[i] = PageValid
			b.validCount++
			return i, true
		}
	}
	return 0, false
}

// MarkProgrammed records that a page of the block was just written at the
// given logical clock step. It does not change page state.
func (b *Block) MarkProgrammed(step int64) { b.lastProgStep = step }

// Invalidate transitions a VALID slot to INVALID, adjusts counters, stamps
// LastInvalidStep, and updates the invalidation EWMA. It is a no-op on a
// slot that is already INVALID or already FREE; invalidating a FREE slot
// indicates a caller bug but is defensively ignored rather than panicking,
// since the only caller paths that reach here have already checked
// liveness via the reverse map.
func (b *Block) Invalidate(pageIdx int, step int64, lambda float64) {
	if b.pages[pageIdx] != PageValid {
		return
	}
	b.pages[pageIdx] = PageInvalid
	b.validCount--
	b.invalidCount++
	b.lastInvalidStep = step
	b.invEWMA = (1-lambda)*b.invEWMA + lambda*1
}

// MarkTrimmed increments the trimmed-page counter. Called in addition to
// Invalidate when the invalidation was caused by a trim.
func (b *Block) MarkTrimmed() { b.trimmedPages++ }

// Erase resets every slot to FREE, zeroes all counters and timestamps, and
// increments EraseCount.
func (b *Block) Erase() {
	for i := range b.pages {
		b.pages[i] = PageFree
	}
	b.validCount = 0
	b.invalidCount = 0
	b.trimmedPages = 0
	b.lastProgStep = 0
	b.lastInvalidStep = 0
	b.invEWMA = 0
	b.eraseCount++
}

// View returns a read-only policy.BlockView snapshot of the block for
// policy scoring, tagged with the given index.
func (b *Block) View(index int) policy.BlockView {
	return policy.BlockView{
		Index:           index,
		ValidCount:      b.validCount,
		InvalidCount:    b.invalidCount,
		EraseCount:      b.eraseCount,
		TrimmedPages:    b.trimmedPages,
		LastProgStep:    b.lastProgStep,
		LastInvalidStep: b.lastInvalidStep,
		InvEWMA:         b.invEWMA,
	}
}
