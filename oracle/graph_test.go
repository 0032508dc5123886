package oracle

import "testing"

// testSource is a minimal in-memory FormulaSource for tests.
type testSource struct {
	nbVars     int
	clauses    [][]int
	assignment []Value
	version    uint64
}

func newTestSource(nbVars int, clauses [][]int) *testSource {
	return &testSource{
		nbVars:     nbVars,
		clauses:    clauses,
		assignment: make([]Value, nbVars),
	}
}

func (s *testSource) NumVars() int { return s.nbVars }

func (s *testSource) ActiveClauses() []Clause {
	active := make([]Clause, 0, len(s.clauses))
	for i, ints := range s.clauses {
		lits := make([]Lit, len(ints))
		sat := false
		for j, val := range ints {
			lits[j] = IntToLit(val)
			switch s.assignment[lits[j].Var()] {
			case True:
				sat = sat || lits[j].IsPositive()
			case False:
				sat = sat || !lits[j].IsPositive()
			}
		}
		if !sat {
			active = append(active, Clause{ID: ClauseID(i), Lits: lits})
		}
	}
	return active
}

func (s *testSource) Assignment() []Value {
	return append([]Value(nil), s.assignment...)
}

func (s *testSource) Version() uint64 { return s.version }

func (s *testSource) assign(l Lit) {
	if l.IsPositive() {
		s.assignment[l.Var()] = True
	} else {
		s.assignment[l.Var()] = False
	}
	s.version++
}

func (s *testSource) unassign(l Lit) {
	s.assignment[l.Var()] = Unassigned
	s.version++
}

// The formula from the package example: (x1 v x2), (-x1 v x3), (x2 v -x3).
func exampleSource() *testSource {
	return newTestSource(3, [][]int{{1, 2}, {-1, 3}, {2, -3}})
}

func TestBuildGraphDimensions(t *testing.T) {
	g, err := BuildGraph(exampleSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NumActiveRows() != 3 {
		t.Errorf("expected 3 rows, got %d", g.NumActiveRows())
	}
	if g.NumFreeVars() != 3 {
		t.Errorf("expected 3 free vars, got %d", g.NumFreeVars())
	}
}

func TestBuildGraphFiltersAssigned(t *testing.T) {
	src := exampleSource()
	src.assign(IntToLit(2)) // satisfies clauses 0 and 2
	g, err := BuildGraph(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NumActiveRows() != 1 {
		t.Errorf("expected 1 row, got %d", g.NumActiveRows())
	}
	if g.NumFreeVars() != 2 {
		t.Errorf("expected 2 free vars, got %d", g.NumFreeVars())
	}
}

func TestBuildGraphConflict(t *testing.T) {
	src := newTestSource(2, [][]int{{1, 2}})
	src.assignment[0] = False
	src.assignment[1] = False
	_, err := BuildGraph(src)
	if err == nil {
		t.Fatal("expected a conflict")
	}
	ce, ok := err.(ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T", err)
	}
	if ce.Clause != 0 {
		t.Errorf("expected conflict on clause 0, got %d", ce.Clause)
	}
}

func TestBuildGraphReportsUnits(t *testing.T) {
	src := newTestSource(2, [][]int{{1, 2}, {-2}})
	g, err := BuildGraph(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	units := g.Units()
	if len(units) != 1 || units[0] != IntToLit(-2) {
		t.Errorf("expected unit -2, got %v", units)
	}
}

func TestAssignDetectsUnitsAndConflicts(t *testing.T) {
	g, err := BuildGraph(exampleSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	units, err := g.Assign(IntToLit(-2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (x1 v x2) reduces to x1, (x2 v -x3) to -x3
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %v", units)
	}
	if units[0] != IntToLit(1) || units[1] != IntToLit(-3) {
		t.Errorf("expected units [1 -3], got %v", units)
	}
	// committing x1 shrinks (-x1 v x3) to the contradictory unit x3
	units, err = g.Assign(IntToLit(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 || units[0] != IntToLit(3) {
		t.Errorf("expected unit 3, got %v", units)
	}
	if _, err := g.Assign(IntToLit(3)); err == nil {
		t.Fatal("expected a conflict")
	} else if !IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestAssignPanicsOnAssignedVar(t *testing.T) {
	g, err := BuildGraph(exampleSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Assign(IntToLit(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	_, _ = g.Assign(IntToLit(-1))
}

func TestValueTracksPolarity(t *testing.T) {
	src := newTestSource(3, [][]int{{1, 2, 3}})
	src.assign(IntToLit(-3))
	g, err := BuildGraph(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Value(IntToLit(3).Var()); got != False {
		t.Errorf("expected FALSE for variable 3, got %v", got)
	}
	mark := g.CurrentMark()
	if _, err := g.Assign(IntToLit(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Value(IntToLit(1).Var()); got != True {
		t.Errorf("expected TRUE for variable 1, got %v", got)
	}
	g.Backtrack(mark)
	if got := g.Value(IntToLit(1).Var()); got != Unassigned {
		t.Errorf("expected UNASSIGNED for variable 1 after backtrack, got %v", got)
	}
}

func TestBacktrackRestoresGraph(t *testing.T) {
	g, err := BuildGraph(exampleSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mark := g.CurrentMark()
	if _, err := g.Assign(IntToLit(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NumActiveRows() != 1 || g.NumFreeVars() != 2 {
		t.Fatalf("unexpected graph after assignment: %d rows, %d vars", g.NumActiveRows(), g.NumFreeVars())
	}
	g.Backtrack(mark)
	if g.NumActiveRows() != 3 {
		t.Errorf("expected 3 rows after backtrack, got %d", g.NumActiveRows())
	}
	if g.NumFreeVars() != 3 {
		t.Errorf("expected 3 free vars after backtrack, got %d", g.NumFreeVars())
	}
	if g.Assigned(IntToLit(2).Var()) {
		t.Error("variable 2 should be unassigned after backtrack")
	}
}

func TestBacktrackMatchesFreshBuild(t *testing.T) {
	src := newTestSource(4, [][]int{{1, 2, 3}, {-1, 4}, {-2, -3}, {3, -4}})
	g, err := BuildGraph(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mark := g.CurrentMark()
	if _, err := g.Assign(IntToLit(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Assign(IntToLit(-3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Backtrack(mark)

	fresh, err := BuildGraph(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	est := NewEstimator(DefaultOptions())
	got := est.Estimate(g, nil)
	want := est.Estimate(fresh, nil)
	if len(got.X) != len(want.X) {
		t.Fatalf("vector lengths differ: %d vs %d", len(got.X), len(want.X))
	}
	for i := range got.X {
		if got.X[i] != want.X[i] {
			t.Errorf("X[%d]: restored graph gives %v, fresh build gives %v", i, got.X[i], want.X[i])
		}
	}
}
