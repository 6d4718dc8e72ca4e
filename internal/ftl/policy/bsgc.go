package policy

// Params carries construction-time hyperparameters for a policy. Unused
// fields for a given policy are ignored. A policy falls back to its
// documented defaults only when every field it uses is zero; a partly set
// weight tuple is taken as given, zeros included.
type Params struct {
	Alpha float64
	Beta  float64
	Gamma float64
	Delta float64
	Eta   float64
	K     float64
}

// BSGC scores a block by alpha*invalid_ratio + beta*(1-wear_norm), the
// "balanced scoring GC" policy from spec.md §4.4.
type BSGC struct {
	Alpha, Beta float64
}

const (
	defaultBSGCAlpha = 0.7
	defaultBSGCBeta  = 0.3
)

// NewBSGC constructs a BSGC policy, defaulting alpha=0.7, beta=0.3 when
// both parameters are left at their zero value.
func NewBSGC(p Params) (Policy, error) {
	b := BSGC{Alpha: p.Alpha, Beta: p.Beta}
	if b.Alpha == 0 && b.Beta == 0 {
		b.Alpha, b.Beta = defaultBSGCAlpha, defaultBSGCBeta
	}
	return b, nil
}

// Name implements Policy.
func (BSGC) Name() string { return "bsgc" }

// Pick implements Policy.
func (b BSGC) Pick(blocks []BlockView, clock int64) (int, bool) {
	return pickFromScores(blocks, b.Scores(blocks, clock))
}

// Scores implements Policy.
func (b BSGC) Scores(blocks []BlockView, _ int64) map[int]float64 {
	maxErase := maxEraseCount(blocks)
	return scoresOf(blocks, func(bv BlockView) float64 {
		return b.Alpha*bv.InvalidRatio() + b.Beta*(1-wearNorm(bv.EraseCount, maxErase))
	})
}
