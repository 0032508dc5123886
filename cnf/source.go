package cnf

import "github.com/crillab/spectro/oracle"

// A Source adapts a Problem to the oracle's FormulaSource interface, with
// a mutable assignment on top. It is the simplest possible base-solver
// stand-in: no propagation, no learning, just bookkeeping. Real solvers
// implement oracle.FormulaSource against their own trail.
type Source struct {
	pb         *Problem
	clauses    []oracle.Clause
	assignment []oracle.Value
	version    uint64
}

// NewSource wraps pb with an all-unassigned assignment.
func NewSource(pb *Problem) *Source {
	clauses := make([]oracle.Clause, len(pb.Clauses))
	for i, clause := range pb.Clauses {
		lits := make([]oracle.Lit, len(clause))
		for j, val := range clause {
			lits[j] = oracle.IntToLit(val)
		}
		clauses[i] = oracle.Clause{ID: oracle.ClauseID(i), Lits: lits}
	}
	return &Source{
		pb:         pb,
		clauses:    clauses,
		assignment: make([]oracle.Value, pb.NbVars),
	}
}

// NumVars implements oracle.FormulaSource.
func (s *Source) NumVars() int { return s.pb.NbVars }

// ActiveClauses implements oracle.FormulaSource. Satisfied clauses are
// filtered out; clauses whose remaining literals are all false stay, so
// the oracle can surface the conflict.
func (s *Source) ActiveClauses() []oracle.Clause {
	active := make([]oracle.Clause, 0, len(s.clauses))
	for _, clause := range s.clauses {
		sat := false
		for _, l := range clause.Lits {
			switch s.assignment[l.Var()] {
			case oracle.True:
				sat = l.IsPositive()
			case oracle.False:
				sat = !l.IsPositive()
			}
			if sat {
				break
			}
		}
		if !sat {
			active = append(active, clause)
		}
	}
	return active
}

// Assignment implements oracle.FormulaSource.
func (s *Source) Assignment() []oracle.Value {
	return append([]oracle.Value(nil), s.assignment...)
}

// Version implements oracle.FormulaSource.
func (s *Source) Version() uint64 { return s.version }

// Assign binds l's variable so that l is true and bumps the version.
func (s *Source) Assign(l oracle.Lit) {
	if l.IsPositive() {
		s.assignment[l.Var()] = oracle.True
	} else {
		s.assignment[l.Var()] = oracle.False
	}
	s.version++
}

// Unassign frees l's variable and bumps the version.
func (s *Source) Unassign(l oracle.Lit) {
	s.assignment[l.Var()] = oracle.Unassigned
	s.version++
}
