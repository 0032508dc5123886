package oracle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, src FormulaSource) *Graph {
	t.Helper()
	g, err := BuildGraph(src)
	require.NoError(t, err)
	return g
}

func TestEstimateUnitNorm(t *testing.T) {
	for _, clauses := range [][][]int{
		{{1, 2}, {-1, 3}, {2, -3}},
		{{1, 2, 3}, {-2, 4}, {-4, 5}, {1, -5}},
		{{1, -2}, {2, -3}, {3, -1}},
	} {
		src := newTestSource(maxVar(clauses), clauses)
		est := NewEstimator(DefaultOptions()).Estimate(mustBuild(t, src), nil)
		require.False(t, est.Trivial)
		norm := 0.0
		for _, xv := range est.X {
			norm += xv * xv
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9, "clauses %v", clauses)
	}
}

func maxVar(clauses [][]int) int {
	nb := 0
	for _, clause := range clauses {
		for _, lit := range clause {
			if lit < 0 {
				lit = -lit
			}
			if lit > nb {
				nb = lit
			}
		}
	}
	return nb
}

func TestEstimateMonotoneRayleigh(t *testing.T) {
	src := newTestSource(5, [][]int{{1, 2, 3}, {-1, 4}, {2, -4, 5}, {-3, -5}, {1, 5}})
	g := mustBuild(t, src)
	opts := DefaultOptions()
	prev := math.Inf(-1)
	// run the iteration step by step by capping the budget
	for budget := 1; budget <= 20; budget++ {
		opts.MaxIterations = budget
		est := NewEstimator(opts).Estimate(g, nil)
		require.False(t, est.Failed)
		assert.GreaterOrEqual(t, est.Eigenvalue, prev-1e-9, "budget %d", budget)
		if est.Converged {
			break
		}
		prev = est.Eigenvalue
	}
}

func TestEstimateConvergesOnExample(t *testing.T) {
	est := NewEstimator(DefaultOptions()).Estimate(mustBuild(t, exampleSource()), nil)
	require.True(t, est.Converged)
	// dominant eigenvector is (1,1,-1)/sqrt(3), eigenvalue 4
	assert.InDelta(t, 4.0, est.Eigenvalue, 1e-3)
	assert.InDelta(t, est.X[0], est.X[1], 1e-12, "x1 and x2 are symmetric")
	assert.Less(t, est.X[2], 0.0)
}

func TestEstimateTrivialGraph(t *testing.T) {
	est := NewEstimator(DefaultOptions()).Estimate(mustBuild(t, newTestSource(0, nil)), nil)
	assert.True(t, est.Trivial)
	assert.Nil(t, est.X)
}

func TestEstimateIsolatedVariable(t *testing.T) {
	// variable 4 appears in no clause
	src := newTestSource(4, [][]int{{1, 2}, {-2, 3}})
	est := NewEstimator(DefaultOptions()).Estimate(mustBuild(t, src), nil)
	require.False(t, est.Trivial)
	assert.Zero(t, est.X[3], "isolated variable must have centrality 0")
}

func TestEstimateWarmStart(t *testing.T) {
	g := mustBuild(t, exampleSource())
	e := NewEstimator(DefaultOptions())
	cold := e.Estimate(g, nil)
	require.True(t, cold.Converged)
	warm := e.Estimate(g, cold.X)
	require.True(t, warm.Converged)
	assert.LessOrEqual(t, warm.Iterations, cold.Iterations)
	assert.InDelta(t, cold.Eigenvalue, warm.Eigenvalue, 1e-6)
}

func TestEstimateRejectsBadWarmStart(t *testing.T) {
	g := mustBuild(t, exampleSource())
	e := NewEstimator(DefaultOptions())
	for _, warm := range [][]float64{
		{math.NaN(), 0, 0},
		{math.Inf(1), 1, 1},
		{0, 0, 0},
		{1, 2}, // wrong length
	} {
		est := e.Estimate(g, warm)
		require.False(t, est.Failed, "warm start %v", warm)
		for i, xv := range est.X {
			require.False(t, math.IsNaN(xv) || math.IsInf(xv, 0), "X[%d] = %v for warm start %v", i, xv, warm)
		}
	}
}

func TestEstimateParallelMatchesSerial(t *testing.T) {
	// a formula large enough to span several chunks
	clauses := make([][]int, 0, 3*chunkSize)
	nbVars := 200
	for i := 0; i < 3*chunkSize; i++ {
		a := i%nbVars + 1
		b := (i*7+3)%nbVars + 1
		c := (i*13+11)%nbVars + 1
		if a == b || b == c || a == c {
			continue
		}
		sign := 1
		if i%3 == 0 {
			sign = -1
		}
		clauses = append(clauses, []int{sign * a, -b, c})
	}
	src := newTestSource(nbVars, clauses)
	g := mustBuild(t, src)

	serial := DefaultOptions()
	serial.Parallelism = 0
	parallel := DefaultOptions()
	parallel.Parallelism = 4

	got := NewEstimator(parallel).Estimate(g, nil)
	want := NewEstimator(serial).Estimate(g, nil)
	require.Equal(t, want.Iterations, got.Iterations)
	require.Equal(t, want.Eigenvalue, got.Eigenvalue, "parallel run must be bit-for-bit identical")
	for i := range want.X {
		require.Equal(t, want.X[i], got.X[i], "X[%d]", i)
	}
}
