package oracle

// Baseline pickers, kept here so reduction experiments can compare the
// spectral oracle against something dumber on the same interface.

import (
	"math/rand"
	"sort"
)

// A FrequencyPicker ranks variables by total occurrence count and picks
// the majority polarity, ties going to positive.
type FrequencyPicker struct{}

// Pick returns the k most frequent unassigned variables as literals.
func (FrequencyPicker) Pick(src FormulaSource, k int, avoid map[Var]bool) ([]Lit, error) {
	assignment := src.Assignment()
	pos := make([]int, src.NumVars())
	neg := make([]int, src.NumVars())
	for _, clause := range src.ActiveClauses() {
		for _, l := range clause.Lits {
			if assignment[l.Var()] != Unassigned {
				continue
			}
			if l.IsPositive() {
				pos[l.Var()]++
			} else {
				neg[l.Var()]++
			}
		}
	}
	type count struct {
		v     Var
		total int
	}
	counts := make([]count, 0, len(pos))
	for v := range pos {
		if total := pos[v] + neg[v]; total > 0 && !avoid[Var(v)] {
			counts = append(counts, count{v: Var(v), total: total})
		}
	}
	if len(counts) == 0 {
		return nil, ErrNoGuidance
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].total != counts[j].total {
			return counts[i].total > counts[j].total
		}
		return counts[i].v < counts[j].v
	})
	if len(counts) > k {
		counts = counts[:k]
	}
	lits := make([]Lit, len(counts))
	for i, ct := range counts {
		lits[i] = ct.v.SignedLit(neg[ct.v] > pos[ct.v])
	}
	return lits, nil
}

// A RandomPicker picks unassigned variables uniformly with a random
// polarity, from a seeded RNG. It is the control arm of reduction
// experiments.
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker returns a picker seeded with seed.
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns up to k literals over distinct unassigned variables.
func (p *RandomPicker) Pick(src FormulaSource, k int, avoid map[Var]bool) ([]Lit, error) {
	assignment := src.Assignment()
	free := make([]Var, 0, len(assignment))
	for v, val := range assignment {
		if val == Unassigned && !avoid[Var(v)] {
			free = append(free, Var(v))
		}
	}
	if len(free) == 0 {
		return nil, ErrNoGuidance
	}
	p.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	if len(free) > k {
		free = free[:k]
	}
	lits := make([]Lit, len(free))
	for i, v := range free {
		lits[i] = v.SignedLit(p.rng.Intn(2) == 1)
	}
	return lits, nil
}
