package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(idx int, valid, invalid, erase int64) BlockView {
	return BlockView{Index: idx, ValidCount: valid, InvalidCount: invalid, EraseCount: erase}
}

func TestGreedyPicksMostInvalid(t *testing.T) {
	g := Greedy{}
	blocks := []BlockView{
		block(0, 2, 1, 0),
		block(1, 0, 5, 0),
		block(2, 3, 3, 0),
	}
	idx, ok := g.Pick(blocks, 0)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestGreedyIgnoresEmptyBlocks(t *testing.T) {
	g := Greedy{}
	blocks := []BlockView{block(0, 0, 0, 0), block(1, 0, 0, 0)}
	_, ok := g.Pick(blocks, 0)
	assert.False(t, ok)
}

func TestTiesBreakToLowestIndex(t *testing.T) {
	g := Greedy{}
	blocks := []BlockView{block(0, 0, 4, 0), block(1, 0, 4, 0), block(2, 0, 4, 0)}
	idx, ok := g.Pick(blocks, 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCostBenefitPrefersMostlyInvalidLowErase(t *testing.T) {
	cb := CostBenefit{}
	blocks := []BlockView{
		block(0, 1, 9, 0),  // mostly invalid, never erased
		block(1, 9, 1, 0),  // mostly valid
		block(2, 1, 9, 10), // mostly invalid but heavily erased
	}
	idx, ok := cb.Pick(blocks, 0)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestBSGCDefaultsApplied(t *testing.T) {
	p, err := NewBSGC(Params{})
	require.NoError(t, err)
	b := p.(BSGC)
	assert.Equal(t, defaultBSGCAlpha, b.Alpha)
	assert.Equal(t, defaultBSGCBeta, b.Beta)
}

func TestBSGCExplicitWeightsOverrideDefaults(t *testing.T) {
	p, err := NewBSGC(Params{Alpha: 0.1, Beta: 0.9})
	require.NoError(t, err)
	b := p.(BSGC)
	assert.Equal(t, 0.1, b.Alpha)
	assert.Equal(t, 0.9, b.Beta)
}

func TestCATDefaultsSumToOne(t *testing.T) {
	p, err := NewCAT(Params{})
	require.NoError(t, err)
	c := p.(CAT)
	assert.InDelta(t, 1.0, c.Alpha+c.Beta+c.Gamma+c.Delta, 1e-9)
}

func TestATCBPicksWornColdMostlyInvalidBlock(t *testing.T) {
	p, err := NewATCB(Params{})
	require.NoError(t, err)
	blocks := []BlockView{
		{Index: 0, ValidCount: 1, InvalidCount: 9, EraseCount: 50, LastProgStep: 1, LastInvalidStep: 1},
		{Index: 1, ValidCount: 9, InvalidCount: 1, EraseCount: 1, LastProgStep: 100, LastInvalidStep: 100},
	}
	idx, ok := p.Pick(blocks, 200)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRE50315WeighsAgeAndInvalidCount(t *testing.T) {
	p, err := NewRE50315(Params{K: 1})
	require.NoError(t, err)
	blocks := []BlockView{
		{Index: 0, InvalidCount: 2, ValidCount: 1, LastProgStep: 0, LastInvalidStep: 0},  // old, few invalid
		{Index: 1, InvalidCount: 1, ValidCount: 1, LastProgStep: 99, LastInvalidStep: 99}, // fresh, fewer invalid
	}
	idx, ok := p.Pick(blocks, 100)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRegistryConstructsEveryBuiltinPolicy(t *testing.T) {
	for _, name := range []string{"greedy", "cost_benefit", "cb", "bsgc", "cat", "atcb", "re50315"} {
		p, err := New(name, Params{})
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Name())
	}
}

func TestRegistryRejectsUnknownName(t *testing.T) {
	_, err := New("does-not-exist", Params{})
	assert.Error(t, err)
}
