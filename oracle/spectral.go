package oracle

// Power iteration on the variable-interaction matrix M = AᵗA, where A is
// the bipartite adjacency. M is never formed: one iteration is two sparse
// products, y = Ax over the clause rows then z = Aᵗy over the variable
// occurrence lists. Both products are pure gathers (each output entry is
// written by exactly one computation over a fixed-order list), so running
// them on several goroutines cannot reorder any floating point sum: the
// result is bit-for-bit the same for any Parallelism value.

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of rows (resp. variables) handed to a worker at
// once. It is a constant so that the work partition does not depend on the
// number of workers.
const chunkSize = 2048

// smallNorm is the norm under which a vector is considered degenerate.
const smallNorm = 1e-30

// An Estimate is the outcome of one spectral estimation.
type Estimate struct {
	X          []float64 // unit-norm centrality per Var; 0 for assigned or isolated variables
	Eigenvalue float64   // Rayleigh quotient at the returned vector
	Iterations int       // how many iterations were actually run
	Converged  bool      // true iff the tolerance was reached within budget
	Trivial    bool      // true iff there was nothing to estimate
	Failed     bool      // true iff a numerical failure forced the uniform fallback
}

// An Estimator computes dominant eigenvector estimates for a graph.
type Estimator struct {
	maxIter     int
	tol         float64
	parallelism int
}

// NewEstimator returns an estimator configured from opts.
func NewEstimator(opts Options) *Estimator {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	tol := opts.ConvergenceTolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	return &Estimator{maxIter: maxIter, tol: tol, parallelism: opts.Parallelism}
}

// Estimate runs power iteration on g, warm-starting from warm when it has
// the right size. Entries of warm belonging to assigned variables are
// zeroed first: they are stale. The returned vector always has unit norm
// and never contains NaN or ±Inf; when numerical trouble is met the
// estimator falls back to the uniform vector and reports non-convergence.
func (e *Estimator) Estimate(g *Graph, warm []float64) Estimate {
	n := g.NumVars()
	if n == 0 || g.NumFreeVars() == 0 || g.NumActiveRows() == 0 {
		return Estimate{Trivial: true}
	}
	x := e.initVector(g, warm)
	y := make([]float64, len(g.rows))
	z := make([]float64, n)

	res := Estimate{X: x}
	prevRho := math.NaN()
	for it := 1; it <= e.maxIter; it++ {
		mulA(g, x, y, e.parallelism)
		mulAt(g, y, z, e.parallelism)
		rho := 0.0 // xᵗMx = ‖Ax‖², with ‖x‖ = 1
		for _, yc := range y {
			rho += yc * yc
		}
		norm := 0.0
		for _, zv := range z {
			norm += zv * zv
		}
		norm = math.Sqrt(norm)
		if math.IsNaN(norm) || math.IsInf(norm, 0) || norm < smallNorm {
			res.X = uniformVector(g)
			res.Eigenvalue = 0
			res.Iterations = it
			res.Converged = false
			res.Failed = true
			return res
		}
		for i := range z {
			x[i] = z[i] / norm
		}
		res.Eigenvalue = rho
		res.Iterations = it
		if !math.IsNaN(prevRho) && math.Abs(rho-prevRho) <= e.tol*math.Max(math.Abs(rho), 1) {
			res.Converged = true
			break
		}
		prevRho = rho
	}
	return res
}

// initVector returns the starting vector: the warm start when usable, the
// uniform vector over free variables otherwise.
func (e *Estimator) initVector(g *Graph, warm []float64) []float64 {
	n := g.NumVars()
	x := make([]float64, n)
	if len(warm) == n {
		norm := 0.0
		for v := 0; v < n; v++ {
			if g.values[v] != Unassigned || g.degree[v] == 0 {
				continue
			}
			w := warm[v]
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return uniformVector(g)
			}
			x[v] = w
			norm += w * w
		}
		if norm >= smallNorm {
			norm = math.Sqrt(norm)
			for i := range x {
				x[i] /= norm
			}
			return x
		}
	}
	return uniformVector(g)
}

// uniformVector is the unit-norm vector equal on every free variable with
// at least one occurrence, 0 elsewhere.
func uniformVector(g *Graph) []float64 {
	x := make([]float64, g.NumVars())
	nb := 0
	for v := range x {
		if g.values[v] == Unassigned && g.degree[v] > 0 {
			nb++
		}
	}
	if nb == 0 {
		return x
	}
	val := 1 / math.Sqrt(float64(nb))
	for v := range x {
		if g.values[v] == Unassigned && g.degree[v] > 0 {
			x[v] = val
		}
	}
	return x
}

// mulA computes y = Ax: for each active row, the signed sum of x over its
// unassigned literals. Satisfied rows yield 0.
func mulA(g *Graph, x, y []float64, parallelism int) {
	runChunked(len(g.rows), parallelism, func(from, to int) {
		for i := from; i < to; i++ {
			r := &g.rows[i]
			if r.satisfied {
				y[i] = 0
				continue
			}
			sum := 0.0
			for _, l := range r.lits {
				if g.values[l.Var()] == Unassigned {
					sum += l.Sign() * x[l.Var()]
				}
			}
			y[i] = sum
		}
	})
}

// mulAt computes z = Aᵗy: for each free variable, the signed sum of y over
// the active rows it occurs in. Assigned variables get 0.
func mulAt(g *Graph, y, z []float64, parallelism int) {
	runChunked(len(z), parallelism, func(from, to int) {
		for v := from; v < to; v++ {
			if g.values[v] != Unassigned {
				z[v] = 0
				continue
			}
			sum := 0.0
			for _, o := range g.occ[v] {
				if !g.rows[o.row].satisfied {
					sum += o.lit.Sign() * y[o.row]
				}
			}
			z[v] = sum
		}
	})
}

// runChunked runs fn over [0, n) in fixed-size chunks, on up to
// parallelism goroutines. fn writes disjoint output ranges, so no
// synchronization beyond the group wait is needed.
func runChunked(n, parallelism int, fn func(from, to int)) {
	if parallelism <= 1 || n <= chunkSize {
		fn(0, n)
		return
	}
	var grp errgroup.Group
	grp.SetLimit(parallelism)
	for from := 0; from < n; from += chunkSize {
		from := from
		to := from + chunkSize
		if to > n {
			to = n
		}
		grp.Go(func() error {
			fn(from, to)
			return nil
		})
	}
	_ = grp.Wait() // the workers cannot fail
}
