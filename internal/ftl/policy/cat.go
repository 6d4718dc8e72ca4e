package policy

// CAT scores a block by:
//
//	alpha*invalid_ratio + beta*(1-inv_ewma) + gamma*age_norm + delta*(1-wear_norm)
//
// with defaults (0.55, 0.25, 0.15, 0.05), per spec.md §4.4.
type CAT struct {
	Alpha, Beta, Gamma, Delta float64
}

var defaultCATWeights = Params{Alpha: 0.55, Beta: 0.25, Gamma: 0.15, Delta: 0.05}

// NewCAT constructs a CAT policy, falling back to the documented defaults
// when all four weights are left at zero.
func NewCAT(p Params) (Policy, error) {
	c := CAT{Alpha: p.Alpha, Beta: p.Beta, Gamma: p.Gamma, Delta: p.Delta}
	if c.Alpha == 0 && c.Beta == 0 && c.Gamma == 0 && c.Delta == 0 {
		c.Alpha, c.Beta, c.Gamma, c.Delta = defaultCATWeights.Alpha, defaultCATWeights.Beta, defaultCATWeights.Gamma, defaultCATWeights.Delta
	}
	return c, nil
}

// Name implements Policy.
func (CAT) Name() string { return "cat" }

// Pick implements Policy.
func (c CAT) Pick(blocks []BlockView, clock int64) (int, bool) {
	return pickFromScores(blocks, c.Scores(blocks, clock))
}

// Scores implements Policy.
func (c CAT) Scores(blocks []BlockView, _ int64) map[int]float64 {
	lastMin, lastMax, ok := activityRange(blocks)
	if !ok {
		return nil
	}
	maxErase := maxEraseCount(blocks)
	return scoresOf(blocks, func(b BlockView) float64 {
		age := ageNorm(b.LastActivity(), lastMin, lastMax)
		return c.Alpha*b.InvalidRatio() +
			c.Beta*(1-b.InvEWMA) +
			c.Gamma*age +
			c.Delta*(1-wearNorm(b.EraseCount, maxErase))
	})
}
