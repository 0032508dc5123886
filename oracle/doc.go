/*
Package oracle implements a spectral look-ahead branching oracle for SAT
solving.

Instead of ranking variables by local conflict activity, the oracle looks
at the whole formula at once: it builds the bipartite adjacency A between
active clauses and unassigned variables, approximates the dominant
eigenvector x of the interaction matrix M = AᵗA by power iteration, and
scores every literal by how much fixing it true would lower the Rayleigh
quotient xᵗMx/xᵗx. The literal collapsing the most global structure is
handed back to the base solver as the next decision.

The oracle is a guest inside a conflict-driven solver, not a solver
itself. The base solver keeps exclusive ownership of propagation, clause
learning and the trail; the oracle only reads formula state through the
FormulaSource interface and returns decisions:

	ctl := oracle.NewController(source, oracle.DefaultOptions(), nil)
	lit, err := ctl.Decide()
	switch {
	case err == nil:
		// assign lit true, then tell the oracle: ctl.OnAssign(lit)
	case errors.Is(err, oracle.ErrNoGuidance):
		// fall back to the local branching heuristic
	case oracle.IsConflict(err):
		// an active clause is empty: resolve the conflict, then ctl.OnBacktrack()
	}

For batch use (picking k literals from a static formula, wholesale), see
SpectralPicker, and the FrequencyPicker and RandomPicker baselines.
*/
package oracle
