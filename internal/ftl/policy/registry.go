package policy

import "fmt"

// Constructor builds a Policy from its hyperparameters.
type Constructor func(Params) (Policy, error)

// Registry maps a policy name to its constructor, the same shape as the
// teacher's collector.Factories map of name to collector constructor. It is
// populated once at package init and never mutated at runtime, so no
// locking is needed to read it.
type Registry map[string]Constructor

// registry holds every built-in policy, keyed by the name used in spec.md
// §4.4 and accepted on the command line.
var registry = Registry{
	"greedy":       NewGreedy,
	"cost_benefit": NewCostBenefit,
	"cb":           NewCostBenefit,
	"bsgc":         NewBSGC,
	"cat":          NewCAT,
	"atcb":         NewATCB,
	"re50315":      NewRE50315,
}

// New constructs the named policy with the given hyperparameters. It
// performs a single map lookup; there is no reflection or name parsing in
// the hot path, only at construction time.
func New(name string, p Params) (Policy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("policy: unknown policy %q", name)
	}
	return ctor(p)
}

// Names returns the list of registered policy names, for help text and
// config validation.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
