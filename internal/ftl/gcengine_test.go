package ftl

import (
	"testing"

	"github.com/flashbench/ftlsim/internal/ftl/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillBlock(t *testing.T, d *Device, lpns ...uint64) {
	t.Helper()
	for _, lpn := range lpns {
		require.NoError(t, d.Write(lpn))
	}
}

func TestCollectDirectErasesAllInvalidVictimWithoutMigration(t *testing.T) {
	d := newTestDevice(2, 2, 1, 1)
	fillBlock(t, d, 0, 1) // fills block 0 entirely
	// invalidate both pages by overwriting, forcing new writes to block 1
	require.NoError(t, d.Write(0))
	require.NoError(t, d.Write(1))

	pol := policy.Greedy{}
	ev, err := d.Collect(pol, CauseFGThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ev.MovedValid)
	assert.Equal(t, int64(1), d.GCCount())
}

func TestCollectMigratesValidPagesBeforeErase(t *testing.T) {
	d := newTestDevice(3, 2, 1, 2)
	fillBlock(t, d, 0, 1) // one block full, both valid

	pol := policy.Greedy{}
	// Nothing is invalid yet, so a victim with valid pages is the only
	// option once the pool is otherwise exhausted; invalidate one page to
	// give Greedy a clear non-empty, partially-invalid victim.
	loc := d.mapping[0]
	d.blocks[loc.block].Invalidate(loc.page, d.clock, d.cfg.EWMALambda)
	delete(d.reverseMap, loc)
	delete(d.mapping, 0)

	before := d.DeviceWritePages()
	ev, err := d.Collect(pol, CauseFGThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ev.MovedValid)
	assert.Greater(t, d.DeviceWritePages(), before)

	newLoc, ok := d.mapping[1]
	require.True(t, ok)
	assert.Equal(t, PageValid, d.blocks[newLoc.block].State(newLoc.page))
}

func TestCollectRecordsExactlyOneEventPerInvocation(t *testing.T) {
	d := newTestDevice(3, 2, 1, 1)
	fillBlock(t, d, 0, 1)
	require.NoError(t, d.Write(0))
	require.NoError(t, d.Write(1))

	before := len(d.GCEventLog())
	_, err := d.Collect(policy.Greedy{}, CauseFGThreshold)
	require.NoError(t, err)
	assert.Equal(t, before+1, len(d.GCEventLog()))
}

func TestCollectReturnsNoVictimWhenDeviceEmpty(t *testing.T) {
	d := newTestDevice(2, 2, 1, 1)
	_, err := d.Collect(policy.Greedy{}, CauseFGThreshold)
	assert.ErrorIs(t, err, ErrNoVictim)
}

// Invariant 6: after erase(b), every slot is FREE, all counters zeroed, and
// erase_count strictly increases.
func TestInvariantEraseResetsVictim(t *testing.T) {
	d := newTestDevice(3, 2, 1, 1)
	fillBlock(t, d, 0, 1)
	victimIdx := d.mapping[0].block // becomes all-invalid below, so Greedy picks it
	require.NoError(t, d.Write(0))
	require.NoError(t, d.Write(1))

	beforeErase := d.Block(victimIdx).EraseCount()

	ev, err := d.Collect(policy.Greedy{}, CauseFGThreshold)
	require.NoError(t, err)
	require.Equal(t, victimIdx, ev.Victim)

	b := d.Block(victimIdx)
	assert.Greater(t, b.EraseCount(), beforeErase)
	assert.Equal(t, int64(0), b.ValidCount())
	assert.Equal(t, int64(0), b.InvalidCount())
	assert.Equal(t, int64(0), b.TrimmedPages())
	for p := 0; p < b.PagesPerBlock(); p++ {
		assert.Equal(t, PageFree, b.State(p))
	}
}

func TestCollectWithScoresAttachesSnapshot(t *testing.T) {
	d := newTestDevice(3, 2, 1, 1)
	fillBlock(t, d, 0, 1)
	require.NoError(t, d.Write(0))
	require.NoError(t, d.Write(1))

	ev, err := d.CollectWithScores(policy.Greedy{}, CauseFGThreshold, true)
	require.NoError(t, err)
	assert.NotNil(t, ev.PolicyScores)
}
