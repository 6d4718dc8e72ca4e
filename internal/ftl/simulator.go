package ftl

import (
	"github.com/flashbench/ftlsim/internal/ftl/policy"
	"github.com/flashbench/ftlsim/internal/workload"
)

// TraceRow is one per-step trace record, per spec.md §6 Outputs.
type TraceRow struct {
	Step          int64
	FreePages     int64
	DeviceWrites  int64
	GCCount       int64
	GCEventThisOp bool
}

// SimulatorConfig tunes the loop behavior around a Device: thresholds,
// background cadence, and optional warmup, per spec.md §4.6.
type SimulatorConfig struct {
	Threshold float64 // foreground GC fires when free_blocks/num_blocks <= Threshold
	BGEvery   int64   // background GC cadence in ops; 0 disables
	// WarmupFraction, when > 0, fills sequential LPNs up to this fraction of
	// UserTotalPages before the timed workload runs (clamped to [0,0.99]).
	WarmupFraction float64
	UserTotalPages uint64
}

// Simulator drives a Device through a workload stream under a chosen
// Policy, per spec.md §4.6. It owns the trace buffer for the duration of a
// Run; the Device and Policy outlive it.
type Simulator struct {
	dev    *Device
	pol    policy.Policy
	cfg    SimulatorConfig
	trace  []TraceRow
	opStep int64
}

// NewSimulator constructs a Simulator over dev and pol with cfg.
func NewSimulator(dev *Device, pol policy.Policy, cfg SimulatorConfig) *Simulator {
	return &Simulator{dev: dev, pol: pol, cfg: cfg}
}

// Device returns the underlying Device for post-run inspection.
func (s *Simulator) Device() *Device { return s.dev }

// Trace returns every trace row recorded across all Run/Warmup calls so far.
func (s *Simulator) Trace() []TraceRow { return s.trace }

// Warmup sequentially writes LPNs 0..n-1 until the device holds
// cfg.WarmupFraction of cfg.UserTotalPages mapped pages, running foreground
// GC whenever free space approaches exhaustion. It is a no-op when
// WarmupFraction <= 0.
func (s *Simulator) Warmup() error {
	frac := s.cfg.WarmupFraction
	if frac <= 0 {
		return nil
	}
	if frac > 0.99 {
		frac = 0.99
	}
	target := uint64(frac * float64(s.cfg.UserTotalPages))

	var lpn uint64
	for uint64(s.dev.MappedPages()) < target {
		ops := workload.FromLPNs([]uint64{lpn % s.cfg.UserTotalPages})
		if err := s.Run(ops); err != nil {
			return err
		}
		lpn++
	}
	return nil
}

// Run processes ops in order against the Device, per spec.md §4.6 steps 1-4.
func (s *Simulator) Run(ops []workload.Op) error {
	for _, op := range ops {
		if err := s.step(op); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) step(op workload.Op) error {
	s.opStep++
	gcFired := false

	if s.freeBlockRatio() <= s.cfg.Threshold {
		if _, err := s.dev.Collect(s.pol, CauseFGThreshold); err != nil {
			return err
		}
		gcFired = true
	}

	switch op.Kind {
	case workload.Trim:
		s.dev.Trim(op.LPN)
	default:
		if s.dev.FreePages() == 0 {
			if _, err := s.dev.Collect(s.pol, CauseFGNoFree); err != nil {
				return err
			}
			gcFired = true
		}
		if err := s.dev.Write(op.LPN); err != nil {
			return err
		}
	}

	s.trace = append(s.trace, TraceRow{
		Step:          s.dev.Clock(),
		FreePages:     s.dev.FreePages(),
		DeviceWrites:  s.dev.DeviceWritePages(),
		GCCount:       s.dev.GCCount(),
		GCEventThisOp: gcFired,
	})

	if s.cfg.BGEvery > 0 && s.opStep%s.cfg.BGEvery == 0 && s.freeBlockRatio() > s.cfg.Threshold {
		if _, err := s.dev.Collect(s.pol, CauseBGToken); err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulator) freeBlockRatio() float64 {
	if s.dev.NumBlocks() == 0 {
		return 0
	}
	return float64(s.dev.FreeBlocks()) / float64(s.dev.NumBlocks())
}
