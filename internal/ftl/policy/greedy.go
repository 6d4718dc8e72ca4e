package policy

// Greedy picks the block with the most invalid pages. It is the simplest
// policy and the baseline every other policy is compared against.
type Greedy struct{}

// NewGreedy constructs a Greedy policy. It takes no hyperparameters.
func NewGreedy(Params) (Policy, error) { return Greedy{}, nil }

// Name implements Policy.
func (Greedy) Name() string { return "greedy" }

// Pick implements Policy.
func (Greedy) Pick(blocks []BlockView, _ int64) (int, bool) {
	return pickMax(blocks, func(b BlockView) float64 { return float64(b.InvalidCount) })
}

// Scores implements Policy.
func (Greedy) Scores(blocks []BlockView, _ int64) map[int]float64 {
	return scoresOf(blocks, func(b BlockView) float64 { return float64(b.InvalidCount) })
}
