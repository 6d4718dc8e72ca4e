package ftl

import (
	"time"

	"github.com/flashbench/ftlsim/internal/ftl/policy"
)

// Cause identifies why a GC invocation was triggered.
type Cause string

const (
	// CauseFGThreshold fires when free_blocks/num_blocks drops to or below
	// the configured threshold, checked before each workload op.
	CauseFGThreshold Cause = "fg_threshold"
	// CauseFGNoFree is the safety net that fires immediately before a
	// write when there are zero free pages anywhere on the device.
	CauseFGNoFree Cause = "fg_nofree"
	// CauseBGToken fires opportunistically every K ops when background GC
	// is enabled and free space is not already tight.
	CauseBGToken Cause = "bg_token"
)

// GCEvent records one completed GC invocation, per spec.md §3.
type GCEvent struct {
	Step            int64
	Cause           Cause
	Victim          int
	MovedValid      int64
	FreedPages      int64
	DurationSeconds float64
	FreeBlocksAfter int

	ValidBefore   int64
	InvalidBefore int64
	InvEWMABefore float64
	EraseBefore   int64

	// PolicyScores optionally snapshots the scores every eligible block
	// received at selection time, keyed by block index. It is nil unless
	// the caller opted in via CollectWithScores.
	PolicyScores map[int]float64
}

// Collect runs one GC invocation using pol to select a victim: spec.md
// §4.5. It is equivalent to CollectWithScores(pol, cause, false).
func (d *Device) Collect(pol policy.Policy, cause Cause) (*GCEvent, error) {
	return d.CollectWithScores(pol, cause, false)
}

// CollectWithScores runs one GC invocation, optionally attaching a
// victim-time policy score snapshot to the emitted event for debugging
// policy behavior (spec.md §9 supplemented feature).
func (d *Device) CollectWithScores(pol policy.Policy, cause Cause, withScores bool) (*GCEvent, error) {
	snapshot := d.Snapshot()

	victimIdx, ok := pol.Pick(snapshot, d.clock)
	if !ok {
		victimIdx, ok = d.fallbackMostInvalid()
	}
	if !ok {
		return nil, ErrNoVictim
	}

	victim := d.blocks[victimIdx]

	var scores map[int]float64
	if withScores {
		scores = d.scoreSnapshot(pol)
	}

	before := snapshotStats(victim)

	if victim.ValidCount() == 0 && victim.InvalidCount() > 0 {
		start := time.Now()
		d.clearActiveHeadsOn(victimIdx)
		victim.Erase()
		dt := time.Since(start)
		return d.recordEvent(cause, victimIdx, 0, int64(victim.PagesPerBlock()), dt, before, scores), nil
	}

	migrationStream := victim.StreamID()
	if _, err := d.acquireDestination(gcMode, migrationStream, victimIdx); err != nil {
		return nil, ErrNoDestination
	}

	start := time.Now()
	movedValid, err := d.migrateValidPages(victim, victimIdx, migrationStream)
	if err != nil {
		return nil, err
	}

	d.clearActiveHeadsOn(victimIdx)
	victim.Erase()
	dt := time.Since(start)

	return d.recordEvent(cause, victimIdx, movedValid, int64(victim.PagesPerBlock()), dt, before, scores), nil
}

// migrateValidPages copies every VALID page out of victim into other
// blocks, in ascending page order, per spec.md §4.5 step 5.
func (d *Device) migrateValidPages(victim *Block, victimIdx int, stream StreamID) (movedValid int64, err error) {
	for p := 0; p < victim.PagesPerBlock(); p++ {
		if victim.State(p) != PageValid {
			continue
		}

		src := ppn{block: victimIdx, page: p}
		lpn, ok := d.reverseMap[src]
		if !ok {
			// Should not occur under the invariants; skip defensively.
			continue
		}

		dest, err := d.acquireDestination(gcMode, stream, victimIdx)
		if err != nil {
			return movedValid, err
		}

		newPage, ok := d.blocks[dest].AllocateFreePage()
		if !ok {
			d.clearActiveHead(stream)
			dest, err = d.acquireDestination(gcMode, stream, victimIdx)
			if err != nil {
				return movedValid, err
			}
			newPage, ok = d.blocks[dest].AllocateFreePage()
			if !ok {
				return movedValid, ErrAllocatorInconsistency
			}
		}

		victim.Invalidate(p, d.clock, d.cfg.EWMALambda)
		delete(d.reverseMap, src)

		newLoc := ppn{block: dest, page: newPage}
		d.mapping[lpn] = newLoc
		d.reverseMap[newLoc] = lpn
		d.blocks[dest].MarkProgrammed(d.clock)
		d.blocks[dest].SetStreamPool(stream, poolForStream(stream))

		d.deviceWritePages++
		movedValid++
	}
	return movedValid, nil
}

type beforeStats struct {
	valid, invalid, erase int64
	invEWMA               float64
}

func snapshotStats(b *Block) beforeStats {
	return beforeStats{valid: b.ValidCount(), invalid: b.InvalidCount(), erase: b.EraseCount(), invEWMA: b.invEWMA}
}

func (d *Device) recordEvent(cause Cause, victimIdx int, movedValid, freedPages int64, dt time.Duration, before beforeStats, scores map[int]float64) *GCEvent {
	d.gcCount++
	d.gcDurations = append(d.gcDurations, dt)

	ev := &GCEvent{
		Step:            d.clock,
		Cause:           cause,
		Victim:          victimIdx,
		MovedValid:      movedValid,
		FreedPages:      freedPages,
		DurationSeconds: dt.Seconds(),
		FreeBlocksAfter: d.FreeBlocks(),
		ValidBefore:     before.valid,
		InvalidBefore:   before.invalid,
		InvEWMABefore:   before.invEWMA,
		EraseBefore:     before.erase,
		PolicyScores:    scores,
	}
	d.gcEventLog = append(d.gcEventLog, *ev)
	return ev
}

// fallbackMostInvalid selects the eligible block with the greatest
// InvalidCount, breaking ties by lowest index. Used when the configured
// policy declines to pick a victim.
func (d *Device) fallbackMostInvalid() (int, bool) {
	best := -1
	var bestInvalid int64 = -1
	for i, b := range d.blocks {
		if b.ValidCount()+b.InvalidCount() == 0 {
			continue
		}
		if b.InvalidCount() > bestInvalid {
			bestInvalid = b.InvalidCount()
			best = i
		}
	}
	return best, best != -1
}

// scoreSnapshot is a debugging aid: it asks the policy for the score every
// eligible block received at victim-selection time, so the emitted event
// can record the full ranking, not just the winner.
func (d *Device) scoreSnapshot(pol policy.Policy) map[int]float64 {
	return pol.Scores(d.Snapshot(), d.clock)
}

// GCDurations returns the wall-clock duration of every completed GC
// invocation, in run order. Durations are not part of the determinism
// guarantee (spec.md §5).
func (d *Device) GCDurations() []time.Duration { return d.gcDurations }

// GCEventLog returns every emitted GCEvent, in run order.
func (d *Device) GCEventLog() []GCEvent { return d.gcEventLog }
