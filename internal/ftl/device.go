package ftl

import (
	"math/rand"
	"time"

	"github.com/flashbench/ftlsim/internal/ftl/policy"
)

// ppn is a physical page address: a (block, page) pair.
type ppn struct {
	block int
	page  int
}

// allocMode selects which set of allocation rules acquireDestination
// applies: HostMode additionally guards the reserved-free-block invariant,
// GCMode may consume reserved blocks and may erase an all-invalid
// candidate as a last resort.
type allocMode uint8

const (
	hostMode allocMode = iota
	gcMode
)

const noHead = -1

// DeviceConfig is the geometry and tuning knobs a Device is constructed
// with. All fields are validated by config.Config.Validate before a Device
// is built; Device itself assumes they are already sane.
type DeviceConfig struct {
	NumBlocks          int
	PagesPerBlock      int
	ReservedFreeBlocks int
	EWMALambda         float64
	RNGSeed            int64
	Streams            StreamConfig
}

// Device is the ordered collection of Blocks plus the forward/reverse
// mapping, logical clock, and aggregate counters described in spec.md §3.
//
// Device is the sole owner of its Blocks: every mutation goes through a
// Block method, never through direct field assignment from outside this
// package.
type Device struct {
	cfg    DeviceConfig
	blocks []*Block

	mapping    map[uint64]ppn
	reverseMap map[ppn]uint64

	clock int64

	activeBlock  [3]int // indexed by StreamID; noHead when unset
	lpnLastWrite map[uint64]int64

	rng *rand.Rand

	hostWritePages   int64
	deviceWritePages int64
	gcCount          int64
	gcDurations      []time.Duration
	gcEventLog       []GCEvent
}

// NewDevice constructs a Device with cfg.NumBlocks completely-free blocks
// and a RNG seeded from cfg.RNGSeed.
func NewDevice(cfg DeviceConfig) *Device {
	blocks := make([]*Block, cfg.NumBlocks)
	for i := range blocks {
		blocks[i] = NewBlock(cfg.PagesPerBlock)
	}
	d := &Device{
		cfg:          cfg,
		blocks:       blocks,
		mapping:      make(map[uint64]ppn),
		reverseMap:   make(map[ppn]uint64),
		lpnLastWrite: make(map[uint64]int64),
		rng:          rand.New(rand.NewSource(cfg.RNGSeed)),
	}
	d.activeBlock = [3]int{noHead, noHead, noHead}
	return d
}

// NumBlocks returns the fixed block count.
func (d *Device) NumBlocks() int { return len(d.blocks) }

// PagesPerBlock returns the fixed pages-per-block count.
func (d *Device) PagesPerBlock() int { return d.cfg.PagesPerBlock }

// TotalPages returns NumBlocks * PagesPerBlock.
func (d *Device) TotalPages() int64 { return int64(len(d.blocks)) * int64(d.cfg.PagesPerBlock) }

// Clock returns the current logical clock value.
func (d *Device) Clock() int64 { return d.clock }

// FreePages returns the sum of FreeCount across all blocks.
func (d *Device) FreePages() int64 {
	var total int64
	for _, b := range d.blocks {
		total += b.FreeCount()
	}
	return total
}

// FreeBlocks returns the number of completely-free blocks.
func (d *Device) FreeBlocks() int {
	var n int
	for _, b := range d.blocks {
		if b.IsCompletelyFree() {
			n++
		}
	}
	return n
}

// MappedPages returns the size of the forward mapping (= live LPN count).
func (d *Device) MappedPages() int { return len(d.mapping) }

// HostWritePages returns the total number of host-initiated page writes.
func (d *Device) HostWritePages() int64 { return d.hostWritePages }

// DeviceWritePages returns the total number of physical page programs,
// including GC migrations.
func (d *Device) DeviceWritePages() int64 { return d.deviceWritePages }

// GCCount returns the number of completed GC invocations.
func (d *Device) GCCount() int64 { return d.gcCount }

// WAF returns DeviceWritePages/HostWritePages, or 0 when no host write has
// occurred yet.
func (d *Device) WAF() float64 {
	if d.hostWritePages == 0 {
		return 0
	}
	return float64(d.deviceWritePages) / float64(d.hostWritePages)
}

// Block returns the block at idx. It is exported for read-only inspection
// (metrics, tests); callers must not mutate the returned value's exported
// methods in ways that bypass Device bookkeeping.
func (d *Device) Block(idx int) *Block { return d.blocks[idx] }

// Snapshot returns a read-only view of every block for policy scoring.
func (d *Device) Snapshot() []policy.BlockView {
	views := make([]policy.BlockView, len(d.blocks))
	for i, b := range d.blocks {
		views[i] = b.View(i)
	}
	return views
}

// Write performs a host write of one page to lpn: spec.md §4.2.
func (d *Device) Write(lpn uint64) error {
	d.clock++

	if old, ok := d.mapping[lpn]; ok {
		d.blocks[old.block].Invalidate(old.page, d.clock, d.cfg.EWMALambda)
		delete(d.reverseMap, old)
	}

	stream := d.cfg.Streams.classifyStream(lpn, d.clock, d.lpnLastWrite)

	dest, err := d.acquireDestination(hostMode, stream, noHead)
	if err != nil {
		return err
	}

	pageIdx, ok := d.blocks[dest].AllocateFreePage()
	if !ok {
		d.clearActiveHead(stream)
		dest, err = d.acquireDestination(hostMode, stream, noHead)
		if err != nil {
			return err
		}
		pageIdx, ok = d.blocks[dest].AllocateFreePage()
		if !ok {
			return ErrAllocatorInconsistency
		}
	}

	d.blocks[dest].MarkProgrammed(d.clock)
	d.blocks[dest].SetStreamPool(stream, poolForStream(stream))

	loc := ppn{block: dest, page: pageIdx}
	d.mapping[lpn] = loc
	d.reverseMap[loc] = lpn
	d.lpnLastWrite[lpn] = d.clock

	d.hostWritePages++
	d.deviceWritePages++
	return nil
}

// Trim performs a host trim of lpn: spec.md §4.2. Trimming an unmapped LPN
// is a silent no-op beyond the clock tick.
func (d *Device) Trim(lpn uint64) {
	d.clock++

	loc, ok := d.mapping[lpn]
	if !ok {
		return
	}

	delete(d.mapping, lpn)
	delete(d.reverseMap, loc)
	d.blocks[loc.block].Invalidate(loc.page, d.clock, d.cfg.EWMALambda)
	d.blocks[loc.block].MarkTrimmed()
}

func poolForStream(s StreamID) PoolTag {
	switch s {
	case StreamHot:
		return PoolHot
	case StreamCold:
		return PoolCold
	default:
		return PoolGen
	}
}

func (d *Device) activeHead(stream StreamID) (int, bool) {
	idx := d.activeBlock[stream]
	if idx == noHead {
		return 0, false
	}
	return idx, true
}

func (d *Device) setActiveHead(stream StreamID, idx int) { d.activeBlock[stream] = idx }

func (d *Device) clearActiveHead(stream StreamID) { d.activeBlock[stream] = noHead }

// clearActiveHeadsOn clears any stream head currently pointing at idx; used
// when a block is erased so stale heads are never reused.
func (d *Device) clearActiveHeadsOn(idx int) {
	for s, head := range d.activeBlock {
		if head == idx {
			d.activeBlock[s] = noHead
		}
	}
}

func (d *Device) countCompletelyFree() int { return d.FreeBlocks() }

// findPartialExcluding returns the lowest-indexed block that is neither
// completely free nor completely full, excluding exclude.
func (d *Device) findPartialExcluding(exclude int) (int, bool) {
	for i, b := range d.blocks {
		if i == exclude {
			continue
		}
		fc := b.FreeCount()
		if fc > 0 && !b.IsCompletelyFree() {
			return i, true
		}
	}
	return 0, false
}

// pickRandomCompletelyFreeExcluding picks a uniformly random completely
// free block, excluding exclude, using the device's seeded RNG.
func (d *Device) pickRandomCompletelyFreeExcluding(exclude int) (int, bool) {
	var candidates []int
	for i, b := range d.blocks {
		if i != exclude && b.IsCompletelyFree() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[d.rng.Intn(len(candidates))], true
}

// findAllInvalidExcluding returns the lowest-indexed block holding no valid
// pages but at least one invalid page, excluding exclude.
func (d *Device) findAllInvalidExcluding(exclude int) (int, bool) {
	for i, b := range d.blocks {
		if i == exclude {
			continue
		}
		if b.ValidCount() == 0 && b.InvalidCount() > 0 {
			return i, true
		}
	}
	return 0, false
}

// acquireDestination implements the single allocation entry point
// described in spec.md §4.3 and Design Notes: all host-mode vs GC-mode
// rules live here, because the reserved-free invariant is the
// most error-prone area of the source this was distilled from.
func (d *Device) acquireDestination(mode allocMode, stream StreamID, exclude int) (int, error) {
	if head, ok := d.activeHead(stream); ok && head != exclude && d.blocks[head].FreeCount() > 0 {
		pinning := mode == hostMode && d.blocks[head].IsCompletelyFree() && d.countCompletelyFree() <= d.cfg.ReservedFreeBlocks
		if !pinning {
			return head, nil
		}
	}

	if idx, ok := d.findPartialExcluding(exclude); ok {
		d.setActiveHead(stream, idx)
		return idx, nil
	}

	if mode == hostMode {
		if d.countCompletelyFree() > d.cfg.ReservedFreeBlocks {
			if idx, ok := d.pickRandomCompletelyFreeExcluding(exclude); ok {
				d.setActiveHead(stream, idx)
				return idx, nil
			}
		}
		return -1, ErrOutOfSpace
	}

	// GC-mode: reserved blocks are fair game.
	if idx, ok := d.pickRandomCompletelyFreeExcluding(exclude); ok {
		d.setActiveHead(stream, idx)
		return idx, nil
	}

	if idx, ok := d.findAllInvalidExcluding(exclude); ok {
		d.clearActiveHeadsOn(idx)
		d.blocks[idx].Erase()
		d.setActiveHead(stream, idx)
		return idx, nil
	}

	return -1, ErrNoDestination
}
