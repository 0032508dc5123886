package oracle

// Collapse scoring: for every free variable, estimate how much fixing it
// would lower the Rayleigh quotient xᵗMx/xᵗx. The simulation removes the
// variable's row and column contributions from M — equivalently its
// column from A — and recomputes the quotient with the current
// eigenvector: a real refit would need a fresh eigen-solve per candidate.
// Both polarities of a variable collapse the same structure and share one
// value; the polarity handed out is the one whose occurrences sit in the
// heaviest clauses.

import (
	"math"
	"sort"
)

// A Score is the collapse estimate for one literal.
type Score struct {
	Lit        Lit
	Value      float64 // estimated Rayleigh quotient reduction
	Centrality float64 // |x_v|, first tie-break
	Mass       float64 // squared clause mass behind this polarity, last tie-break
}

// A Scorer turns an eigenvector estimate and a graph into a ranked list of
// literal scores.
type Scorer struct {
	epsilon     float64
	parallelism int
}

// NewScorer returns a scorer configured from opts.
func NewScorer(opts Options) *Scorer {
	eps := opts.ScoreEpsilon
	if eps <= 0 {
		eps = defaultScoreEpsilon
	}
	return &Scorer{epsilon: eps, parallelism: opts.Parallelism}
}

// Scores computes the collapse score of both polarities of every free
// variable occurring in the graph and returns them best-first. The
// ordering is total and reproducible: scores tied within epsilon fall
// back to higher centrality, then lower variable id, then heavier
// polarity mass, then positive polarity. A trivial or failed estimate, or
// any numerical failure, yields no scores.
func (s *Scorer) Scores(g *Graph, est Estimate) []Score {
	if est.Trivial || est.X == nil {
		return nil
	}
	x := est.X
	y := make([]float64, len(g.rows))
	mulA(g, x, y, s.parallelism)

	sumY2 := 0.0
	for _, yc := range y {
		sumY2 += yc * yc
	}
	sumX2 := 0.0
	for _, xv := range x {
		sumX2 += xv * xv
	}
	if sumX2 < smallNorm {
		return nil
	}
	rho := sumY2 / sumX2

	scores := make([]Score, 0, 2*g.NumFreeVars())
	for v := 0; v < g.NumVars(); v++ {
		if g.values[v] != Unassigned || g.degree[v] == 0 {
			continue
		}
		value, posMass, negMass := s.scoreVar(g, Var(v), x, y, rho, sumY2, sumX2)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil // numerical failure taints the whole cycle
		}
		centrality := math.Abs(x[v])
		scores = append(scores,
			Score{Lit: Var(v).Lit(), Value: value, Centrality: centrality, Mass: posMass},
			Score{Lit: Var(v).Lit().Negation(), Value: value, Centrality: centrality, Mass: negMass},
		)
	}
	sort.Slice(scores, func(i, j int) bool { return s.less(scores[i], scores[j]) })
	return scores
}

// scoreVar simulates removing v's column from A: every active row
// containing v loses its contribution, and v leaves the denominator. It
// also accumulates, per polarity, the squared mass of the rows that
// polarity would satisfy.
func (s *Scorer) scoreVar(g *Graph, v Var, x, y []float64, rho, sumY2, sumX2 float64) (value, posMass, negMass float64) {
	xv := x[v]
	num := sumY2
	occs := g.occ[v]
	// occurrences of one row are adjacent, by construction
	for i := 0; i < len(occs); {
		ri := occs[i].row
		coef := 0.0
		hasPos, hasNeg := false, false
		for i < len(occs) && occs[i].row == ri {
			coef += occs[i].lit.Sign()
			if occs[i].lit.IsPositive() {
				hasPos = true
			} else {
				hasNeg = true
			}
			i++
		}
		r := &g.rows[ri]
		if r.satisfied {
			continue
		}
		yr := y[ri]
		shrunk := yr - coef*xv
		num += shrunk*shrunk - yr*yr
		if hasPos {
			posMass += yr * yr
		}
		if hasNeg {
			negMass += yr * yr
		}
	}
	denom := sumX2 - xv*xv
	quotient := 0.0
	if denom >= smallNorm {
		quotient = num / denom
	}
	return rho - quotient, posMass, negMass
}

// less is the selection ordering: best score first, ties within epsilon
// broken by centrality, then variable id, then polarity mass, then
// positive polarity.
func (s *Scorer) less(a, b Score) bool {
	if d := a.Value - b.Value; d > s.epsilon || d < -s.epsilon {
		return d > 0
	}
	if a.Centrality != b.Centrality {
		return a.Centrality > b.Centrality
	}
	if a.Lit.Var() != b.Lit.Var() {
		return a.Lit.Var() < b.Lit.Var()
	}
	if a.Mass != b.Mass {
		return a.Mass > b.Mass
	}
	return a.Lit.IsPositive() && !b.Lit.IsPositive()
}

// TopK returns up to k literals from the ranked scores, keeping at most
// one polarity per variable and skipping variables present in avoid.
// avoid may be nil; k <= 0 yields no literals.
func TopK(scores []Score, k int, avoid map[Var]bool) []Lit {
	if k <= 0 {
		return nil
	}
	lits := make([]Lit, 0, k)
	seen := make(map[Var]bool, k)
	for _, sc := range scores {
		v := sc.Lit.Var()
		if seen[v] || avoid[v] {
			continue
		}
		seen[v] = true
		lits = append(lits, sc.Lit)
		if len(lits) == k {
			break
		}
	}
	return lits
}
