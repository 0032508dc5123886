// Package reduce runs the structural reduction loop: pick the literals
// that collapse the formula's spectral structure the most, commit them as
// unit clauses, hand the reduced formula to a conflict-driven engine, and
// repeat until the engine answers or the round budget runs out.
package reduce

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/spectro/cnf"
	"github.com/crillab/spectro/oracle"
)

// Options configures a reduction run.
type Options struct {
	// PerRound is how many literals are committed per round.
	PerRound int
	// MaxRounds caps the number of reduction rounds after the initial
	// solve. 0 means rounds continue until no pickable literal remains.
	MaxRounds int
}

// RoundStats records one round of the loop.
type RoundStats struct {
	Round      int           // 0 is the untouched formula
	Added      []int         // literals committed this round, CNF notation
	TotalUnits int           // cumulative count of committed literals
	Status     Status        // engine answer for this round's formula
	Duration   time.Duration // engine solve time
}

// A Runner drives reduction rounds over one formula.
type Runner struct {
	picker oracle.LiteralPicker
	engine Engine
	opts   Options
	log    logrus.FieldLogger
}

// NewRunner builds a runner. log may be nil.
func NewRunner(picker oracle.LiteralPicker, engine Engine, opts Options, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.PerRound <= 0 {
		opts.PerRound = 1
	}
	return &Runner{picker: picker, engine: engine, opts: opts, log: log}
}

// Run executes the loop on a copy of pb and returns per-round statistics.
// The input problem is never modified. The loop stops on the first Sat or
// Unsat answer, when the picker runs out of literals, when the round
// budget is exhausted, or when ctx is done.
func (r *Runner) Run(ctx context.Context, pb *cnf.Problem) ([]RoundStats, error) {
	cur := pb.Copy()
	avoid := make(map[oracle.Var]bool)
	var stats []RoundStats
	total := 0

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrapf(err, "round %d", round)
		}
		var added []int
		if round > 0 {
			lits, err := r.picker.Pick(cnf.NewSource(cur), r.opts.PerRound, avoid)
			if errors.Is(err, oracle.ErrNoGuidance) {
				r.log.Info("picker out of candidates, stopping")
				return stats, nil
			}
			if err != nil {
				return stats, errors.Wrapf(err, "picking literals in round %d", round)
			}
			for _, l := range lits {
				avoid[l.Var()] = true
				added = append(added, int(l.Int()))
			}
			cur.AddUnits(added...)
			total += len(added)
		}

		start := time.Now()
		res, err := r.engine.Solve(ctx, cur)
		if err != nil {
			return stats, errors.Wrapf(err, "solving in round %d", round)
		}
		st := RoundStats{
			Round:      round,
			Added:      added,
			TotalUnits: total,
			Status:     res.Status,
			Duration:   time.Since(start),
		}
		stats = append(stats, st)
		r.log.WithFields(logrus.Fields{
			"round":    round,
			"added":    added,
			"units":    total,
			"status":   res.Status.String(),
			"duration": st.Duration,
		}).Info("round finished")

		if res.Status != Unknown {
			return stats, nil
		}
		if r.opts.MaxRounds > 0 && round >= r.opts.MaxRounds {
			r.log.Info("round budget exhausted")
			return stats, nil
		}
	}
}
