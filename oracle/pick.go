package oracle

// Batch picking: rank literals over a formula snapshot and return the
// best k, at most one polarity per variable. This is the entry point the
// reduction harness uses; interactive solvers go through Controller
// instead.

import (
	"math/rand"

	"github.com/pkg/errors"
)

// A LiteralPicker selects up to k branching literals from a formula
// snapshot, skipping variables in avoid. Implementations must be
// deterministic for a fixed seed.
type LiteralPicker interface {
	Pick(src FormulaSource, k int, avoid map[Var]bool) ([]Lit, error)
}

// A SpectralPicker ranks literals by collapse score.
type SpectralPicker struct {
	opts Options
	rng  *rand.Rand
}

// NewSpectralPicker returns a batch picker using the given options.
func NewSpectralPicker(opts Options) *SpectralPicker {
	return &SpectralPicker{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.RandomSeed)),
	}
}

// Pick builds the adjacency, runs the spectral estimate and returns k
// literals by collapse score: the k best in Greedy mode, k sampled from
// the top PoolSize candidates in Pooled mode (reproducible for a fixed
// seed). It returns ErrNoGuidance when the estimate fails or the graph is
// trivial, and a ConflictError when the snapshot contains an empty active
// clause.
func (p *SpectralPicker) Pick(src FormulaSource, k int, avoid map[Var]bool) ([]Lit, error) {
	g, err := BuildGraph(src)
	if err != nil {
		return nil, err
	}
	if g.NumFreeVars() == 0 || g.NumActiveRows() == 0 {
		return nil, ErrNoGuidance
	}
	est := NewEstimator(p.opts).Estimate(g, nil)
	if est.Trivial || est.Failed {
		return nil, ErrNoGuidance
	}
	scores := NewScorer(p.opts).Scores(g, est)
	if len(scores) == 0 {
		return nil, ErrNoGuidance
	}
	size := k
	if p.opts.SelectionMode == Pooled && p.opts.PoolSize > size {
		size = p.opts.PoolSize
	}
	lits := TopK(scores, size, avoid)
	if len(lits) == 0 {
		return nil, errors.Wrap(ErrNoGuidance, "all candidates avoided")
	}
	if p.opts.SelectionMode == Pooled && len(lits) > k {
		p.rng.Shuffle(len(lits), func(i, j int) { lits[i], lits[j] = lits[j], lits[i] })
		lits = lits[:k]
	}
	return lits, nil
}
