package oracle

// Literal selection. The policy is a configuration-selected variant, not
// an interface hierarchy: selection stays a pure function of the ranked
// scores, the options and the RNG state.

import (
	"math/rand"

	"github.com/pkg/errors"
)

type picker struct {
	mode     SelectionMode
	poolSize int
	rng      *rand.Rand
	pool     []Lit // candidates of the current cycle
}

func newPicker(opts Options) *picker {
	size := opts.PoolSize
	if size <= 0 {
		size = defaultPoolSize
	}
	return &picker{
		mode:     opts.SelectionMode,
		poolSize: size,
		rng:      rand.New(rand.NewSource(opts.RandomSeed)),
	}
}

// pick rebuilds the candidate pool from the ranked scores and returns the
// selected literal. Greedy mode takes the single best literal; Pooled mode
// samples uniformly among the top-K, which spreads decisions over several
// variables when scores are nearly flat. The second return value is false
// when there is no candidate at all.
func (p *picker) pick(g *Graph, scores []Score) (Lit, bool) {
	size := p.poolSize
	if p.mode == Greedy {
		size = 1
	}
	p.pool = TopK(scores, size, nil)
	if len(p.pool) == 0 {
		return 0, false
	}
	var l Lit
	switch p.mode {
	case Greedy:
		l = p.pool[0]
	case Pooled:
		l = p.pool[p.rng.Intn(len(p.pool))]
	default:
		panic("invalid selection mode")
	}
	// Selecting an assigned variable means the scores were computed from a
	// graph that does not match the assignment. Fail loudly: this is a
	// synchronization bug, not a runtime condition.
	if g.Assigned(l.Var()) {
		panic(errors.Errorf("selected literal %d over an assigned variable", l.Int()))
	}
	return l, true
}

// discardPool drops the candidates of the current cycle. Called on
// backtrack: the pool was built for a deeper trail and is meaningless now.
func (p *picker) discardPool() {
	p.pool = nil
}
