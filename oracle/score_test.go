package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoresIdempotent(t *testing.T) {
	g := mustBuild(t, newTestSource(5, [][]int{{1, 2, 3}, {-1, 4}, {2, -4, 5}, {-3, -5}}))
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	require.False(t, est.Failed)

	sc := NewScorer(DefaultOptions())
	first := sc.Scores(g, est)
	second := sc.Scores(g, est)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "entry %d", i)
	}
}

func TestScoresCoverBothPolarities(t *testing.T) {
	g := mustBuild(t, exampleSource())
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	scores := NewScorer(DefaultOptions()).Scores(g, est)
	require.Len(t, scores, 6, "two polarities per free variable")
	seen := make(map[Lit]bool)
	for _, sc := range scores {
		seen[sc.Lit] = true
	}
	for v := Var(0); v < 3; v++ {
		assert.True(t, seen[v.Lit()], "missing positive literal for var %d", v+1)
		assert.True(t, seen[v.Lit().Negation()], "missing negative literal for var %d", v+1)
	}
}

func TestScoresPolaritiesShareValue(t *testing.T) {
	g := mustBuild(t, mixedPolaritySource())
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	scores := NewScorer(DefaultOptions()).Scores(g, est)
	byLit := make(map[Lit]Score)
	for _, sc := range scores {
		byLit[sc.Lit] = sc
	}
	for lit, sc := range byLit {
		other, ok := byLit[lit.Negation()]
		require.True(t, ok)
		assert.Equal(t, sc.Value, other.Value, "polarities of var %d must score alike", lit.Var()+1)
	}
}

func mixedPolaritySource() *testSource {
	return newTestSource(4, [][]int{{1, 2}, {1, -3}, {1, 4}, {-2, 3}, {-1, -4}})
}

func TestScoresRankExample(t *testing.T) {
	g := mustBuild(t, exampleSource())
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	require.True(t, est.Converged)
	scores := NewScorer(DefaultOptions()).Scores(g, est)
	require.NotEmpty(t, scores)
	// all three variables collapse the same structure; the documented
	// tie-break (centrality, then lowest id, then positive polarity)
	// must surface x1
	assert.Equal(t, int32(1), scores[0].Lit.Int())
}

func TestScoresSkipAssigned(t *testing.T) {
	src := exampleSource()
	src.assign(IntToLit(2))
	g := mustBuild(t, src)
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	scores := NewScorer(DefaultOptions()).Scores(g, est)
	for _, sc := range scores {
		assert.NotEqual(t, IntToLit(2).Var(), sc.Lit.Var(), "assigned variable must not be scored")
	}
}

func TestScoresTrivialEstimate(t *testing.T) {
	g := mustBuild(t, exampleSource())
	assert.Nil(t, NewScorer(DefaultOptions()).Scores(g, Estimate{Trivial: true}))
}

func TestTopKOnePolarityPerVar(t *testing.T) {
	g := mustBuild(t, exampleSource())
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	scores := NewScorer(DefaultOptions()).Scores(g, est)

	lits := TopK(scores, 10, nil)
	assert.Len(t, lits, 3)
	seen := make(map[Var]bool)
	for _, l := range lits {
		assert.False(t, seen[l.Var()], "variable %d picked twice", l.Var()+1)
		seen[l.Var()] = true
	}

	avoid := map[Var]bool{IntToLit(1).Var(): true}
	lits = TopK(scores, 10, avoid)
	assert.Len(t, lits, 2)
	for _, l := range lits {
		assert.NotEqual(t, IntToLit(1).Var(), l.Var())
	}
}

func TestTopKNonPositiveK(t *testing.T) {
	g := mustBuild(t, exampleSource())
	est := NewEstimator(DefaultOptions()).Estimate(g, nil)
	scores := NewScorer(DefaultOptions()).Scores(g, est)
	require.NotEmpty(t, scores)

	assert.Empty(t, TopK(scores, 0, nil))
	assert.Empty(t, TopK(scores, -3, nil))
}
