package ftl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockAllocateFreePageLowestIndex(t *testing.T) {
	b := NewBlock(4)
	idx, ok := b.AllocateFreePage()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, int64(1), b.ValidCount())
	assert.Equal(t, int64(3), b.FreeCount())
}

func TestBlockAllocateFreePageExhausted(t *testing.T) {
	b := NewBlock(2)
	_, _ = b.AllocateFreePage()
	_, _ = b.AllocateFreePage()
	_, ok := b.AllocateFreePage()
	assert.False(t, ok)
}

func TestBlockInvalidateIsIdempotent(t *testing.T) {
	b := NewBlock(2)
	idx, _ := b.AllocateFreePage()
	b.Invalidate(idx, 1, 0.2)
	assert.Equal(t, int64(0), b.ValidCount())
	assert.Equal(t, int64(1), b.InvalidCount())
	b.Invalidate(idx, 2, 0.2)
	assert.Equal(t, int64(1), b.InvalidCount(), "re-invalidating an already-INVALID slot must be a no-op")
}

func TestBlockInvalidateFreeSlotIsNoop(t *testing.T) {
	b := NewBlock(2)
	b.Invalidate(0, 1, 0.2)
	assert.Equal(t, int64(0), b.InvalidCount())
}

func TestBlockEraseResetsEverything(t *testing.T) {
	b := NewBlock(2)
	idx, _ := b.AllocateFreePage()
	b.Invalidate(idx, 1, 0.2)
	b.MarkTrimmed()
	b.Erase()

	assert.Equal(t, int64(0), b.ValidCount())
	assert.Equal(t, int64(0), b.InvalidCount())
	assert.Equal(t, int64(0), b.TrimmedPages())
	assert.Equal(t, int64(1), b.EraseCount())
	for p := 0; p < b.PagesPerBlock(); p++ {
		assert.Equal(t, PageFree, b.State(p))
	}
}

func TestBlockEraseCountStrictlyIncreases(t *testing.T) {
	b := NewBlock(1)
	before := b.EraseCount()
	b.Erase()
	assert.Greater(t, b.EraseCount(), before)
}

func TestBlockInvalidRatioGuardsEmptyBlock(t *testing.T) {
	b := NewBlock(4)
	assert.Equal(t, 0.0, b.InvalidRatio())
}

func TestBlockWearNormGuardsZeroMax(t *testing.T) {
	b := NewBlock(4)
	assert.Equal(t, 0.0, b.WearNorm(0))
}

func TestBlockViewMirrorsState(t *testing.T) {
	b := NewBlock(4)
	idx, _ := b.AllocateFreePage()
	b.MarkProgrammed(5)
	b.Invalidate(idx, 6, 0.1)

	v := b.View(3)
	assert.Equal(t, 3, v.Index)
	assert.Equal(t, int64(0), v.ValidCount)
	assert.Equal(t, int64(1), v.InvalidCount)
	assert.Equal(t, int64(6), v.LastActivity())
}
