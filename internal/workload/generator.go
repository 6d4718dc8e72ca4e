package workload

import "math/rand"

// GenerateConfig parameterizes the minimal synthetic workload generator.
// This package is a thin, swappable reference implementation of the
// external workload generator spec.md §1 names as an out-of-scope
// collaborator: only its output ([]Op) is part of the core's interface.
type GenerateConfig struct {
	Ops            int
	UpdateRatio    float64 // fraction of ops that overwrite a live LPN
	HotRatio       float64 // fraction of live LPNs considered "hot"
	HotWeight      float64 // fraction of updates routed to hot LPNs
	UserTotalPages uint64
	Seed           int64
	EnableTrim     bool
	TrimRatio      float64 // fraction of ops that trim instead of write
}

// GenerateHotCold produces a hot/cold update-skewed workload, grounded in
// original_source/venv/GC/workload.py's make_workload: a growing pool of
// live LPNs, with a configurable fraction of ops rewriting a
// hotness-weighted sample of that pool rather than allocating a new LPN.
func GenerateHotCold(cfg GenerateConfig) []Op {
	rng := rand.New(rand.NewSource(cfg.Seed))

	var live []uint64
	var hot []uint64
	var nextLPN uint64

	ops := make([]Op, 0, cfg.Ops)

	for i := 0; i < cfg.Ops; i++ {
		if cfg.EnableTrim && len(live) > 0 && rng.Float64() < cfg.TrimRatio {
			victim := live[rng.Intn(len(live))]
			ops = append(ops, Op{Kind: Trim, LPN: victim})
			live = removeLPN(live, victim)
			hot = removeLPN(hot, victim)
			continue
		}

		var lpn uint64
		switch {
		case len(live) > 0 && rng.Float64() < cfg.UpdateRatio:
			if len(hot) > 0 && rng.Float64() < cfg.HotWeight {
				lpn = hot[rng.Intn(len(hot))]
			} else {
				lpn = live[rng.Intn(len(live))]
			}
		default:
			lpn = nextLPN
			if nextLPN+1 < cfg.UserTotalPages {
				nextLPN++
			}
			live = append(live, lpn)
			if rng.Float64() < cfg.HotRatio {
				hot = append(hot, lpn)
			}
		}
		ops = append(ops, Op{Kind: Write, LPN: lpn})
	}
	return ops
}

// GenerateSequential produces a write-only workload covering n sequential
// LPNs starting at 0, the same shape as a warmup fill (spec.md §4.6).
// Simulator.Warmup does not call it; it issues its own writes.
func GenerateSequential(n uint64) []Op {
	ops := make([]Op, n)
	for i := uint64(0); i < n; i++ {
		ops[i] = Op{Kind: Write, LPN: i}
	}
	return ops
}

func removeLPN(xs []uint64, v uint64) []uint64 {
	for i, x := range xs {
		if x == v {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}
