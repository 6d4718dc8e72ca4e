package policy

// RE50315 scores a block by invalid_count * (age + K), where age is the
// logical-clock distance since the block's last activity and K is a
// configured constant that keeps freshly-touched, heavily-invalidated
// blocks from scoring zero. Named after the internal ticket that requested
// it in the source repository.
type RE50315 struct {
	K float64
}

const defaultRE50315K = 1.0

// NewRE50315 constructs a RE50315 policy, defaulting K=1.0 when left at zero.
func NewRE50315(p Params) (Policy, error) {
	k := p.K
	if k == 0 {
		k = defaultRE50315K
	}
	return RE50315{K: k}, nil
}

// Name implements Policy.
func (RE50315) Name() string { return "re50315" }

// Pick implements Policy.
func (r RE50315) Pick(blocks []BlockView, clock int64) (int, bool) {
	return pickFromScores(blocks, r.Scores(blocks, clock))
}

// Scores implements Policy.
func (r RE50315) Scores(blocks []BlockView, clock int64) map[int]float64 {
	return scoresOf(blocks, func(b BlockView) float64 {
		age := float64(clock - b.LastActivity())
		return float64(b.InvalidCount) * (age + r.K)
	})
}
