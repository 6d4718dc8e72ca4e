package policy

// ATCB scores a block by:
//
//	alpha*(1-u) + beta*(1-wear_norm) + gamma*age_norm + eta*(1-inv_ewma)
//
// with defaults (0.5, 0.3, 0.1, 0.1), per spec.md §4.4.
//
// The source repository this policy was distilled from carries two
// conflicting revisions of the weight assignment: one applies (beta, gamma,
// eta) to (wear, age, hotness) in that order, an older one applies them to
// (hotness, wear, age). This implementation follows the most recent,
// non-duplicated revision, which matches the order spec.md documents:
// (wear, age, inv_ewma-derived hotness).
type ATCB struct {
	Alpha, Beta, Gamma, Eta float64
}

var defaultATCBWeights = Params{Alpha: 0.5, Beta: 0.3, Gamma: 0.1, Eta: 0.1}

// NewATCB constructs an ATCB policy, falling back to the documented
// defaults when all four weights are left at zero.
func NewATCB(p Params) (Policy, error) {
	a := ATCB{Alpha: p.Alpha, Beta: p.Beta, Gamma: p.Gamma, Eta: p.Eta}
	if a.Alpha == 0 && a.Beta == 0 && a.Gamma == 0 && a.Eta == 0 {
		a.Alpha, a.Beta, a.Gamma, a.Eta = defaultATCBWeights.Alpha, defaultATCBWeights.Beta, defaultATCBWeights.Gamma, defaultATCBWeights.Eta
	}
	return a, nil
}

// Name implements Policy.
func (ATCB) Name() string { return "atcb" }

// Pick implements Policy.
func (a ATCB) Pick(blocks []BlockView, clock int64) (int, bool) {
	return pickFromScores(blocks, a.Scores(blocks, clock))
}

// Scores implements Policy.
func (a ATCB) Scores(blocks []BlockView, _ int64) map[int]float64 {
	lastMin, lastMax, ok := activityRange(blocks)
	if !ok {
		return nil
	}
	maxErase := maxEraseCount(blocks)
	return scoresOf(blocks, func(b BlockView) float64 {
		used := b.Used()
		u := float64(b.ValidCount) / float64(used)
		age := ageNorm(b.LastActivity(), lastMin, lastMax)
		return a.Alpha*(1-u) +
			a.Beta*(1-wearNorm(b.EraseCount, maxErase)) +
			a.Gamma*age +
			a.Eta*(1-b.InvEWMA)
	})
}
