package oracle

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoGuidance is returned by Decide when the oracle has nothing useful
	// to say: trivial graph, failed spectral estimate, empty score set. The
	// base solver should fall back to its local heuristic.
	ErrNoGuidance = errors.New("no spectral guidance available")

	// ErrStaleSnapshot is returned when the formula source's version no
	// longer matches the snapshot the oracle's caches were built from. It
	// indicates a synchronization bug between the oracle and the base
	// solver and is never recovered internally.
	ErrStaleSnapshot = errors.New("formula snapshot is stale")
)

// A ConflictError is returned by Decide when an active clause reduced to
// zero unassigned literals while building the adjacency. Conflict handling
// is the base solver's job, so the error only carries the clause id.
type ConflictError struct {
	Clause ClauseID
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("clause %d has no active literal", e.Clause)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}
