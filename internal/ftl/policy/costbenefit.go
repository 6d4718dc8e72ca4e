package policy

// CostBenefit scores a block by (1-u) * 1/(1+eraseCount), where u is the
// fraction of used pages that are still valid. It favors blocks that are
// mostly invalid and have not been erased often, per spec.md §4.4.
type CostBenefit struct{}

// NewCostBenefit constructs a CostBenefit policy. It takes no hyperparameters.
func NewCostBenefit(Params) (Policy, error) { return CostBenefit{}, nil }

// Name implements Policy.
func (CostBenefit) Name() string { return "cost_benefit" }

// Pick implements Policy.
func (c CostBenefit) Pick(blocks []BlockView, clock int64) (int, bool) {
	return pickFromScores(blocks, c.Scores(blocks, clock))
}

// Scores implements Policy.
func (CostBenefit) Scores(blocks []BlockView, _ int64) map[int]float64 {
	return scoresOf(blocks, func(b BlockView) float64 {
		used := b.Used()
		u := float64(b.ValidCount) / float64(used)
		ageProxy := 1.0 / (1.0 + float64(b.EraseCount))
		return (1.0 - u) * ageProxy
	})
}
