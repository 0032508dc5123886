package oracle

// Basic types shared by all components of the oracle.

import "fmt"

// Var start at 0 ; thus the CNF variable 1 is encoded as the Var 0.
type Var int32

// Lit start at 0 and are positive ; the sign is the last bit.
// Thus the CNF literal -3 is encoded as 2 * (3-1) + 1 = 5.
type Lit int32

// IntToLit converts a CNF literal to a Lit.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// IntToVar converts a CNF variable to a Var.
func IntToVar(i int32) Var {
	return Var(i - 1)
}

// Lit returns the positive Lit associated to v.
func (v Var) Lit() Lit {
	return Lit(v * 2)
}

// SignedLit returns the Lit associated to v, negated if 'signed', positive else.
func (v Var) SignedLit(signed bool) Lit {
	if signed {
		return Lit(v*2) + 1
	}
	return Lit(v * 2)
}

// Var returns the variable of l.
func (l Lit) Var() Var {
	return Var(l / 2)
}

// Int returns the equivalent CNF literal.
func (l Lit) Int() int32 {
	sign := l&1 == 1
	res := int32(l/2 + 1)
	if sign {
		return -res
	}
	return res
}

// IsPositive is true iff l is > 0
func (l Lit) IsPositive() bool {
	return l%2 == 0
}

// Negation returns -l, i.e the positive version of l if it is negative,
// or the negative version otherwise.
func (l Lit) Negation() Lit {
	return l ^ 1
}

// Sign returns the coefficient of l in the bipartite adjacency: +1 for a
// positive literal, -1 for a negative one.
func (l Lit) Sign() float64 {
	if l&1 == 1 {
		return -1
	}
	return 1
}

// A Value is the binding of a variable in the assignment reported by the
// base solver.
type Value int8

const (
	// Unassigned means the variable is still free.
	Unassigned = Value(iota)
	// True means the variable is bound to true.
	True
	// False means the variable is bound to false.
	False
)

func (val Value) String() string {
	switch val {
	case Unassigned:
		return "UNASSIGNED"
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		panic("invalid value")
	}
}

// A ClauseID identifies a clause in the base solver's clause database.
// IDs are assigned by the base solver and are opaque to the oracle: they
// only flow back unmodified when a conflict is reported.
type ClauseID int

// A Clause is a view on one clause of the formula: its id and its literals.
// The oracle never mutates the literal slice it is handed.
type Clause struct {
	ID   ClauseID
	Lits []Lit
}

func (c Clause) String() string {
	ints := make([]int32, len(c.Lits))
	for i, l := range c.Lits {
		ints[i] = l.Int()
	}
	return fmt.Sprintf("clause %d: %v", c.ID, ints)
}

// A FormulaSource is the read-only view on the base solver's state that the
// oracle consumes. The base solver implements it; the oracle never mutates
// anything behind it.
type FormulaSource interface {
	// NumVars returns the total number of variables of the formula,
	// assigned or not.
	NumVars() int
	// ActiveClauses returns the clauses that are neither satisfied nor
	// removed under the current assignment. Literals of assigned variables
	// may still appear: the oracle filters them out while building the
	// adjacency.
	ActiveClauses() []Clause
	// Assignment returns the current binding of each variable, indexed by Var.
	Assignment() []Value
	// Version returns a counter the base solver bumps on every trail
	// mutation. The oracle uses it to detect stale snapshots.
	Version() uint64
}
