package oracle

// The bipartite adjacency between active clauses and unassigned variables.
// Rows are clause views, columns are variables; the entry for a literal is
// +1 or -1 depending on its polarity. The structure is built once per
// snapshot and then maintained incrementally: assignments shrink or
// satisfy rows, backtracking restores them from a journal.

import "github.com/pkg/errors"

// An occurrence is one appearance of a variable in a clause row.
type occurrence struct {
	row int // index in Graph.rows
	lit Lit // the literal as it appears in the clause
}

// A row is the active view of one clause.
type row struct {
	id        ClauseID
	lits      []Lit // all literals of unassigned-at-build-time variables
	active    int   // how many lits are over currently unassigned variables
	satisfied bool
}

// journal operation kinds.
const (
	opShrink = iota // a row lost one active literal
	opSatisfy       // a row became satisfied
	opAssign        // a variable became assigned
)

type journalOp struct {
	kind int
	row  int
	v    Var
}

// A Mark is a point in the graph's journal that Backtrack can restore to.
type Mark int

// A Graph is the bipartite variable-clause adjacency for one formula
// snapshot. It is owned by the Controller and must not be mutated while an
// oracle cycle is in progress.
type Graph struct {
	nbVars int
	rows   []row
	occ    [][]occurrence // for each var, its occurrences in rows
	values []Value        // binding of each var, polarity included
	nbFree int // # of unassigned variables appearing in at least one row
	degree []int
	units    []Lit // units discovered at build time
	journal  []journalOp
}

// BuildGraph constructs the adjacency for the source's current state.
// Literals over assigned variables are filtered out: a false literal
// shrinks its row, a true one satisfies the whole clause (the clause
// should not have been reported active, but the builder is lenient about
// it). A clause with no active literal left is a conflict: the build is
// aborted and a ConflictError is returned. Single-literal rows are kept in
// the graph but reported through Units.
func BuildGraph(src FormulaSource) (*Graph, error) {
	assignment := src.Assignment()
	nbVars := src.NumVars()
	if len(assignment) != nbVars {
		return nil, errors.Errorf("assignment has %d entries for %d variables", len(assignment), nbVars)
	}
	g := &Graph{
		nbVars: nbVars,
		occ:    make([][]occurrence, nbVars),
		values: append([]Value(nil), assignment...),
		degree: make([]int, nbVars),
	}
	for _, clause := range src.ActiveClauses() {
		sat := false
		lits := make([]Lit, 0, len(clause.Lits))
		for _, l := range clause.Lits {
			switch assignment[l.Var()] {
			case Unassigned:
				lits = append(lits, l)
			case True:
				sat = l.IsPositive()
			case False:
				sat = !l.IsPositive()
			}
			if sat {
				break
			}
		}
		if sat {
			continue
		}
		if len(lits) == 0 {
			return nil, ConflictError{Clause: clause.ID}
		}
		idx := len(g.rows)
		g.rows = append(g.rows, row{id: clause.ID, lits: lits, active: len(lits)})
		for _, l := range lits {
			v := l.Var()
			if g.degree[v] == 0 {
				g.nbFree++
			}
			g.degree[v]++
			g.occ[v] = append(g.occ[v], occurrence{row: idx, lit: l})
		}
		if len(lits) == 1 {
			g.units = append(g.units, lits[0])
		}
	}
	return g, nil
}

// NumVars returns the total number of variables, assigned or not.
func (g *Graph) NumVars() int { return g.nbVars }

// NumFreeVars returns the number of unassigned variables occurring in at
// least one active clause.
func (g *Graph) NumFreeVars() int { return g.nbFree }

// NumActiveRows returns the number of clause rows that are neither
// satisfied nor empty.
func (g *Graph) NumActiveRows() int {
	nb := 0
	for i := range g.rows {
		if !g.rows[i].satisfied {
			nb++
		}
	}
	return nb
}

// Assigned reports whether v is currently assigned.
func (g *Graph) Assigned(v Var) bool { return g.values[v] != Unassigned }

// Value returns the binding the graph currently models for v.
func (g *Graph) Value(v Var) Value { return g.values[v] }

// Units returns the unit literals discovered while building the graph.
// They belong to the base solver: the oracle never propagates them itself.
func (g *Graph) Units() []Lit { return g.units }

// CurrentMark returns a journal position Backtrack can later restore.
func (g *Graph) CurrentMark() Mark { return Mark(len(g.journal)) }

// Assign fixes l's variable to the polarity making l true and updates the
// adjacency: rows containing l become satisfied, rows containing its
// negation lose one active literal. Newly unit rows are returned so the
// caller can report them. A row reduced to zero active literals is a
// conflict: Assign stops there and returns a ConflictError, leaving the
// journal consistent so the caller can backtrack to its last mark.
//
// Assigning an already-assigned variable is a contract violation and
// panics.
func (g *Graph) Assign(l Lit) ([]Lit, error) {
	v := l.Var()
	if g.values[v] != Unassigned {
		panic(errors.Errorf("variable %d is already assigned", v+1))
	}
	if l.IsPositive() {
		g.values[v] = True
	} else {
		g.values[v] = False
	}
	if g.degree[v] > 0 {
		g.nbFree--
	}
	g.journal = append(g.journal, journalOp{kind: opAssign, v: v})
	var units []Lit
	for _, o := range g.occ[v] {
		r := &g.rows[o.row]
		if r.satisfied {
			continue
		}
		if o.lit == l {
			r.satisfied = true
			g.journal = append(g.journal, journalOp{kind: opSatisfy, row: o.row})
			continue
		}
		r.active--
		g.journal = append(g.journal, journalOp{kind: opShrink, row: o.row})
		switch r.active {
		case 0:
			return nil, ConflictError{Clause: r.id}
		case 1:
			for _, l2 := range r.lits {
				if g.values[l2.Var()] == Unassigned {
					units = append(units, l2)
					break
				}
			}
		}
	}
	return units, nil
}

// Backtrack undoes every operation journaled after m, restoring the
// adjacency to its state when CurrentMark returned m.
func (g *Graph) Backtrack(m Mark) {
	for len(g.journal) > int(m) {
		op := g.journal[len(g.journal)-1]
		g.journal = g.journal[:len(g.journal)-1]
		switch op.kind {
		case opShrink:
			g.rows[op.row].active++
		case opSatisfy:
			g.rows[op.row].satisfied = false
		case opAssign:
			g.values[op.v] = Unassigned
			if g.degree[op.v] > 0 {
				g.nbFree++
			}
		}
	}
}
