package reduce

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/crillab/spectro/cnf"
)

// Status is the outcome of one backend solve.
type Status byte

const (
	// Unknown means the engine gave up before reaching an answer.
	Unknown = Status(iota)
	// Sat means the formula is satisfiable.
	Sat
	// Unsat means the formula is unsatisfiable.
	Unsat
)

func (st Status) String() string {
	switch st {
	case Unknown:
		return "UNKNOWN"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		panic("invalid status")
	}
}

// A Result is the answer of the backend engine, with a model when the
// formula is satisfiable.
type Result struct {
	Status Status
	Model  []bool // indexed by variable - 1; nil unless Status == Sat
}

// An Engine is the conflict-driven solver the reduction loop hands reduced
// formulas to. It plays the role spectral guidance does not: actually
// deciding satisfiability.
type Engine interface {
	Solve(ctx context.Context, pb *cnf.Problem) (Result, error)
}

// A GiniEngine solves formulas with the gini CDCL solver. A fresh solver
// instance is built per call: the reduction loop mutates the formula
// between rounds, so incrementality would buy nothing.
type GiniEngine struct{}

// Solve implements Engine.
func (GiniEngine) Solve(ctx context.Context, pb *cnf.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(err, "before solving")
	}
	g := gini.New()
	for _, clause := range pb.Clauses {
		for _, lit := range clause {
			g.Add(z.Dimacs2Lit(lit))
		}
		g.Add(z.LitNull)
	}
	switch g.Solve() {
	case 1:
		model := make([]bool, pb.NbVars)
		for v := 1; v <= pb.NbVars; v++ {
			model[v-1] = g.Value(z.Dimacs2Lit(v))
		}
		return Result{Status: Sat, Model: model}, nil
	case -1:
		return Result{Status: Unsat}, nil
	default:
		return Result{Status: Unknown}, nil
	}
}
