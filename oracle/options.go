package oracle

// Configuration surface of the oracle. Plain struct, zero framework: the
// CLI layer binds flags onto it, library users fill it directly.

import "github.com/pkg/errors"

// SelectionMode tells the oracle how to pick among scored literals.
type SelectionMode byte

const (
	// Greedy always selects the single highest scoring literal.
	Greedy = SelectionMode(iota)
	// Pooled keeps the top-K literals and samples among them with a seeded
	// RNG, to avoid hammering a single variable when scores are flat.
	Pooled
)

func (m SelectionMode) String() string {
	switch m {
	case Greedy:
		return "greedy"
	case Pooled:
		return "pooled"
	default:
		panic("invalid selection mode")
	}
}

// Set parses s into m. Together with String and Type it satisfies
// pflag.Value, so the CLI binds the mode directly onto Options.
func (m *SelectionMode) Set(s string) error {
	switch s {
	case "greedy":
		*m = Greedy
	case "pooled":
		*m = Pooled
	default:
		return errors.Errorf("unknown selection mode %q", s)
	}
	return nil
}

// Type returns the flag type name for pflag.
func (m *SelectionMode) Type() string { return "mode" }

const (
	defaultPoolSize          = 10
	defaultRecomputeInterval = 1
	defaultMaxIterations     = 50
	defaultTolerance         = 1e-6
	defaultScoreEpsilon      = 1e-9
)

// Options holds all recognized knobs of the oracle.
type Options struct {
	// PoolSize is the number of top literals kept as selection candidates
	// in Pooled mode.
	PoolSize int
	// RecomputeInterval is the number of committed decisions between two
	// full spectral recomputations. In between, the cached eigenvector is
	// reused and only scores are recomputed.
	RecomputeInterval int
	// MaxIterations caps the power iteration budget.
	MaxIterations int
	// ConvergenceTolerance is the relative Rayleigh quotient change under
	// which the power iteration is considered converged.
	ConvergenceTolerance float64
	// ScoreEpsilon is the absolute difference under which two collapse
	// scores are treated as tied.
	ScoreEpsilon float64
	// SelectionMode is Greedy or Pooled.
	SelectionMode SelectionMode
	// RandomSeed seeds the RNG used by Pooled selection. Same seed, same
	// formula: same decisions.
	RandomSeed int64
	// Parallelism is the number of goroutines used for the estimator's
	// sparse products. 0 or 1 means serial. The result does not depend on
	// the value: chunks are merged in a fixed order.
	Parallelism int
}

// DefaultOptions returns the options used when the caller does not care.
func DefaultOptions() Options {
	return Options{
		PoolSize:             defaultPoolSize,
		RecomputeInterval:    defaultRecomputeInterval,
		MaxIterations:        defaultMaxIterations,
		ConvergenceTolerance: defaultTolerance,
		ScoreEpsilon:         defaultScoreEpsilon,
		SelectionMode:        Greedy,
	}
}
