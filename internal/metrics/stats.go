// Package metrics computes summary statistics over a completed simulation
// run: wear distribution, GC latency distribution, and the aggregate
// Summary row described in spec.md §6.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/flashbench/ftlsim/internal/ftl"
	"github.com/flashbench/ftlsim/internal/ftl/policy"
)

// Percentile returns the q-quantile (q in [0,1]) of xs via linear
// interpolation between order statistics, k = (n-1)*q, per spec.md §6.
func Percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	n := len(sorted)
	k := (float64(n) - 1) * q
	f := int(math.Floor(k))
	c := int(math.Ceil(k))
	if f == c {
		return sorted[f]
	}
	return sorted[f] + (k-float64(f))*(sorted[c]-sorted[f])
}

// WearStats summarizes the erase-count distribution across all blocks.
type WearStats struct {
	Mean  float64
	Stdev float64
	P50   float64
	P95   float64
	Max   int64
	Min   int64
	Delta int64
	CV    float64
	Gini  float64
}

// ComputeWearStats derives WearStats from a block snapshot.
func ComputeWearStats(blocks []policy.BlockView) WearStats {
	if len(blocks) == 0 {
		return WearStats{}
	}

	erases := make([]float64, len(blocks))
	minE, maxE := blocks[0].EraseCount, blocks[0].EraseCount
	var sum float64
	for i, b := range blocks {
		erases[i] = float64(b.EraseCount)
		sum += erases[i]
		if b.EraseCount < minE {
			minE = b.EraseCount
		}
		if b.EraseCount > maxE {
			maxE = b.EraseCount
		}
	}

	mean := sum / float64(len(erases))

	var variance float64
	for _, e := range erases {
		d := e - mean
		variance += d * d
	}
	variance /= float64(len(erases))
	stdev := math.Sqrt(variance)

	var cv float64
	if mean > 0 {
		cv = stdev / mean
	}

	return WearStats{
		Mean:  mean,
		Stdev: stdev,
		P50:   Percentile(erases, 0.50),
		P95:   Percentile(erases, 0.95),
		Max:   maxE,
		Min:   minE,
		Delta: maxE - minE,
		CV:    cv,
		Gini:  gini(erases),
	}
}

// gini computes the Gini coefficient of a non-negative sample via the
// sorted-rank formula 2*Σ(i*x_i)/(n*Σx) - (n+1)/n.
func gini(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	var total float64
	for _, x := range sorted {
		total += x
	}
	if total == 0 {
		return 0
	}

	n := float64(len(sorted))
	var cum float64
	for i, x := range sorted {
		cum += float64(i+1) * x
	}
	return (2*cum)/(n*total) - (n+1)/n
}

// GCLatencyStats summarizes the wall-clock duration of every completed GC
// invocation. Durations are not part of the determinism guarantee
// (spec.md §5) but are useful comparison metrics.
type GCLatencyStats struct {
	Total time.Duration
	Avg   time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// ComputeGCLatencyStats derives GCLatencyStats from a run's GC durations.
func ComputeGCLatencyStats(durations []time.Duration) GCLatencyStats {
	if len(durations) == 0 {
		return GCLatencyStats{}
	}

	secs := make([]float64, len(durations))
	var total time.Duration
	for i, d := range durations {
		secs[i] = d.Seconds()
		total += d
	}

	toDur := func(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

	return GCLatencyStats{
		Total: total,
		Avg:   total / time.Duration(len(durations)),
		P50:   toDur(Percentile(secs, 0.50)),
		P95:   toDur(Percentile(secs, 0.95)),
		P99:   toDur(Percentile(secs, 0.99)),
	}
}

// GCEventStats summarizes the per-GC event log: supplemented feature per
// SPEC_FULL.md §5 (zero-GC ratio and moved-valid percentiles), grounded in
// original_source/venv/GC/metrics.py's summarize-style helpers.
type GCEventStats struct {
	Count          int
	ZeroMovedRatio float64
	MovedValidP50  float64
	MovedValidP95  float64
	MovedValidP99  float64
}

// ComputeGCEventStats derives GCEventStats from a run's GC event log.
func ComputeGCEventStats(events []ftl.GCEvent) GCEventStats {
	if len(events) == 0 {
		return GCEventStats{}
	}

	moved := make([]float64, len(events))
	var zero int
	for i, ev := range events {
		moved[i] = float64(ev.MovedValid)
		if ev.MovedValid == 0 {
			zero++
		}
	}

	return GCEventStats{
		Count:          len(events),
		ZeroMovedRatio: float64(zero) / float64(len(events)),
		MovedValidP50:  Percentile(moved, 0.50),
		MovedValidP95:  Percentile(moved, 0.95),
		MovedValidP99:  Percentile(moved, 0.99),
	}
}

// Summary is the end-of-run aggregate row described in spec.md §6 Outputs.
type Summary struct {
	Policy           string
	Ops              int64
	HostWritePages   int64
	DeviceWritePages int64
	WAF              float64
	GCCount          int64
	FreePages        int64
	TotalPages       int64

	Wear       WearStats
	GC         GCLatencyStats
	Events     GCEventStats
	IOProfile  IOProfile
	Throughput Throughput

	Note string
}

// Summarize builds the Summary row for a completed Device run under the
// given IOProfile (cosmetic latency assumptions only, spec.md §6).
func Summarize(dev *ftl.Device, policyName string, ops int64, profile IOProfile, note string) Summary {
	blocks := dev.Snapshot()
	gc := ComputeGCLatencyStats(dev.GCDurations())
	return Summary{
		Policy:           policyName,
		Ops:              ops,
		HostWritePages:   dev.HostWritePages(),
		DeviceWritePages: dev.DeviceWritePages(),
		WAF:              dev.WAF(),
		GCCount:          dev.GCCount(),
		FreePages:        dev.FreePages(),
		TotalPages:       dev.TotalPages(),
		IOProfile:        profile,
		Throughput:       ComputeThroughput(profile, dev.HostWritePages(), dev.DeviceWritePages(), 0),
		Wear:             ComputeWearStats(blocks),
		GC:               gc,
		Events:           ComputeGCEventStats(dev.GCEventLog()),
		Note:             note,
	}
}
