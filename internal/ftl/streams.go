package ftl

// HotnessMode selects how a device classifies an LPN as hot for the
// purposes of multi-stream routing.
type HotnessMode uint8

const (
	// HotnessRecency classifies lpn as hot when it was last written within
	// RecencyTau logical-clock ticks of the current clock.
	HotnessRecency HotnessMode = iota
	// HotnessOracle classifies lpn as hot when lpn < OracleHotCut,
	// independent of write history.
	HotnessOracle
)

// hotnessClassifier decides, for a given LPN, whether it should route to
// the hot stream.
type hotnessClassifier interface {
	isHot(lpn uint64, clock int64, lastWrite map[uint64]int64) bool
}

type recencyClassifier struct{ tau int64 }

func (c recencyClassifier) isHot(lpn uint64, clock int64, lastWrite map[uint64]int64) bool {
	last, ok := lastWrite[lpn]
	if !ok {
		return false
	}
	return clock-last <= c.tau
}

type oracleClassifier struct{ hotCut uint64 }

func (c oracleClassifier) isHot(lpn uint64, _ int64, _ map[uint64]int64) bool {
	return lpn < c.hotCut
}

// StreamConfig configures multi-stream write routing. When Enabled is
// false, every write routes to StreamUser and stream tagging has no effect
// on allocation beyond the single default head.
type StreamConfig struct {
	Enabled      bool
	Mode         HotnessMode
	RecencyTau   int64
	OracleHotCut uint64
	// ThreeStream additionally splits non-hot traffic into StreamUser and
	// StreamCold; when false, non-hot traffic stays on StreamUser.
	ThreeStream bool
}

func (c StreamConfig) classifier() hotnessClassifier {
	if c.Mode == HotnessOracle {
		return oracleClassifier{hotCut: c.OracleHotCut}
	}
	return recencyClassifier{tau: c.RecencyTau}
}

// classifyStream returns the stream an LPN should be written to under this
// configuration. Cold classification (when ThreeStream is enabled) is the
// absence of a hot signal; this implementation has no separate cold
// predicate because spec.md defines hotness as a single hot/not-hot
// classifier and treats "cold" purely as "not hot, and three-stream mode
// is on".
func (c StreamConfig) classifyStream(lpn uint64, clock int64, lastWrite map[uint64]int64) StreamID {
	if !c.Enabled {
		return StreamUser
	}
	if c.classifier().isHot(lpn, clock, lastWrite) {
		return StreamHot
	}
	if c.ThreeStream {
		return StreamCold
	}
	return StreamUser
}
