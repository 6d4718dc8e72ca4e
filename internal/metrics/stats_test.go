package metrics

import (
	"testing"
	"time"

	"github.com/flashbench/ftlsim/internal/ftl"
	"github.com/flashbench/ftlsim/internal/ftl/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, Percentile(xs, 0.5))
	assert.Equal(t, 1.0, Percentile(xs, 0))
	assert.Equal(t, 5.0, Percentile(xs, 1))
	assert.InDelta(t, 4.6, Percentile(xs, 0.9), 1e-9)
}

func TestPercentileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
}

func TestComputeWearStatsUniform(t *testing.T) {
	blocks := []policy.BlockView{
		{Index: 0, EraseCount: 3},
		{Index: 1, EraseCount: 3},
		{Index: 2, EraseCount: 3},
	}
	ws := ComputeWearStats(blocks)
	require.Equal(t, int64(3), ws.Max)
	require.Equal(t, int64(3), ws.Min)
	assert.Equal(t, int64(0), ws.Delta)
	assert.Equal(t, 0.0, ws.Stdev)
	assert.Equal(t, 0.0, ws.Gini)
}

func TestComputeWearStatsSkewed(t *testing.T) {
	blocks := []policy.BlockView{
		{Index: 0, EraseCount: 0},
		{Index: 1, EraseCount: 0},
		{Index: 2, EraseCount: 10},
	}
	ws := ComputeWearStats(blocks)
	assert.Equal(t, int64(10), ws.Max)
	assert.Equal(t, int64(10), ws.Delta)
	assert.Greater(t, ws.Gini, 0.0)
}

func TestComputeGCLatencyStats(t *testing.T) {
	durations := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
	}
	stats := ComputeGCLatencyStats(durations)
	assert.Equal(t, 60*time.Millisecond, stats.Total)
	assert.Equal(t, 20*time.Millisecond, stats.Avg)
}

func TestComputeGCEventStatsZeroRatio(t *testing.T) {
	events := []ftl.GCEvent{
		{MovedValid: 0},
		{MovedValid: 0},
		{MovedValid: 4},
	}
	stats := ComputeGCEventStats(events)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 2.0/3.0, stats.ZeroMovedRatio, 1e-9)
}

func TestSummarizeEmptyDevice(t *testing.T) {
	dev := ftl.NewDevice(ftl.DeviceConfig{
		NumBlocks:          4,
		PagesPerBlock:      4,
		ReservedFreeBlocks: 1,
		EWMALambda:         0.2,
		RNGSeed:            1,
	})
	summary := Summarize(dev, "greedy", 0, IOProfileDefault, "")
	assert.Equal(t, "greedy", summary.Policy)
	assert.Equal(t, 0.0, summary.WAF)
	assert.Equal(t, int64(16), summary.TotalPages)
}
