// Package policy implements the GC victim-selection policy family.
//
// Every policy is a pure function over a read-only snapshot of the device's
// blocks and the current logical clock: it never mutates block state and it
// never reaches outside the arguments it is given. This keeps policies
// trivially reproducible under a fixed seed, and lets the GC engine call a
// policy without holding any lock.
package policy

// BlockView is a read-only projection of a block's state, as seen by a
// policy. It intentionally has no pointer back into the owning block: a
// policy that wants to mutate state has to go through the device, it cannot
// do so through a BlockView.
type BlockView struct {
	Index           int
	ValidCount      int64
	InvalidCount    int64
	EraseCount      int64
	TrimmedPages    int64
	LastProgStep    int64
	LastInvalidStep int64
	InvEWMA         float64
}

// Used returns the number of non-free pages in the block.
func (b BlockView) Used() int64 { return b.ValidCount + b.InvalidCount }

// LastActivity returns the logical clock value of the block's most recent
// program or invalidation event.
func (b BlockView) LastActivity() int64 {
	if b.LastProgStep > b.LastInvalidStep {
		return b.LastProgStep
	}
	return b.LastInvalidStep
}

// InvalidRatio returns InvalidCount/Used, or 0 for an empty block.
func (b BlockView) InvalidRatio() float64 {
	used := b.Used()
	if used == 0 {
		return 0
	}
	return float64(b.InvalidCount) / float64(used)
}

// Policy picks a victim block index for garbage collection given a
// read-only snapshot of all blocks and the current logical clock. It
// returns ok=false when no block is eligible (every block is empty).
type Policy interface {
	Pick(blocks []BlockView, clock int64) (idx int, ok bool)
	// Name returns the registry name the policy was constructed under.
	Name() string
	// Scores returns the score every eligible block received, keyed by
	// block index, without committing to a selection. The GC engine uses
	// it to attach a debugging snapshot to a GCEvent.
	Scores(blocks []BlockView, clock int64) map[int]float64
}

// eligible reports whether a block may ever be selected as a victim: it
// must hold at least one valid or invalid page. Blocks with Used()==0 are
// never selected, per spec.
func eligible(b BlockView) bool { return b.Used() > 0 }

// ageNorm normalizes a block's LastActivity against the observed
// [min,max] range of LastActivity across all non-empty blocks, returning a
// value in [0,1). A block that was touched least recently (lastMin) scores
// (lastMax-lastMin)/(lastMax-lastMin+1), the highest value; the most
// recently touched (lastMax) scores 0. Denominators are guarded
// so an empty or degenerate range yields 0 rather than NaN.
func ageNorm(lastActivity, lastMin, lastMax int64) float64 {
	denom := lastMax - lastMin + 1
	if denom <= 0 {
		return 0
	}
	return float64(lastMax-lastActivity) / float64(denom)
}

// wearNorm normalizes erase count against the observed maximum erase count
// across all blocks. When maxErase is 0, every block's wear is defined as 0.
func wearNorm(eraseCount, maxErase int64) float64 {
	if maxErase <= 0 {
		return 0
	}
	return float64(eraseCount) / float64(maxErase)
}

// activityRange returns the [min,max] of LastActivity across eligible
// blocks. ok is false when there are no eligible blocks.
func activityRange(blocks []BlockView) (lastMin, lastMax int64, ok bool) {
	first := true
	for _, b := range blocks {
		if !eligible(b) {
			continue
		}
		la := b.LastActivity()
		if first {
			lastMin, lastMax = la, la
			first = false
			continue
		}
		if la < lastMin {
			lastMin = la
		}
		if la > lastMax {
			lastMax = la
		}
	}
	return lastMin, lastMax, !first
}

// maxEraseCount returns the maximum EraseCount across all blocks (eligible
// or not, per spec.md §4.4: wear_norm uses "the current maximum erase_count
// across all blocks").
func maxEraseCount(blocks []BlockView) int64 {
	var m int64
	for _, b := range blocks {
		if b.EraseCount > m {
			m = b.EraseCount
		}
	}
	return m
}

// scoresOf evaluates score over every eligible block, returning the
// per-index score map.
func scoresOf(blocks []BlockView, score func(BlockView) float64) map[int]float64 {
	scores := make(map[int]float64, len(blocks))
	for _, b := range blocks {
		if !eligible(b) {
			continue
		}
		scores[b.Index] = score(b)
	}
	return scores
}

// pickFromScores scans blocks in ascending index order and returns the
// index of the eligible block with the strictly greatest score. Ties keep
// the lowest index, because later blocks only replace the incumbent on a
// strictly greater score.
func pickFromScores(blocks []BlockView, scores map[int]float64) (int, bool) {
	best := -1
	bestScore := 0.0
	for _, b := range blocks {
		s, ok := scores[b.Index]
		if !ok {
			continue
		}
		if best == -1 || s > bestScore {
			best = b.Index
			bestScore = s
		}
	}
	return best, best != -1
}

// pickMax evaluates score over every eligible block and returns the index
// of the strict maximum, ties keeping the lowest index.
func pickMax(blocks []BlockView, score func(BlockView) float64) (int, bool) {
	return pickFromScores(blocks, scoresOf(blocks, score))
}
