package oracle

// The controller drives one oracle cycle per decision request:
//
//	IDLE -> BUILD_GRAPH -> ESTIMATE_SPECTRUM -> SCORE_LITERALS -> SELECT -> COMMIT -> IDLE
//
// with abort transitions back to IDLE on conflict, trivial graph or failed
// estimate. It owns the graph and eigenvector caches exclusively and
// decides when a full spectral recomputation is due versus reusing the
// cached estimate.

import (
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is the controller's position in the decision cycle.
type State byte

const (
	// Idle means no cycle is in progress.
	Idle = State(iota)
	// BuildingGraph means the adjacency is being built or validated.
	BuildingGraph
	// EstimatingSpectrum means power iteration is running.
	EstimatingSpectrum
	// ScoringLiterals means collapse scores are being computed.
	ScoringLiterals
	// Selecting means a literal is being chosen from the scores.
	Selecting
	// Committing means the chosen literal is being handed back.
	Committing
)

func (st State) String() string {
	switch st {
	case Idle:
		return "IDLE"
	case BuildingGraph:
		return "BUILD_GRAPH"
	case EstimatingSpectrum:
		return "ESTIMATE_SPECTRUM"
	case ScoringLiterals:
		return "SCORE_LITERALS"
	case Selecting:
		return "SELECT"
	case Committing:
		return "COMMIT"
	default:
		panic("invalid state")
	}
}

// trailEntry remembers one assignment applied to the cached graph, with
// the journal mark taken just before it.
type trailEntry struct {
	lit  Lit
	mark Mark
}

// A Controller mediates between the base solver and the oracle
// components. It is not safe for concurrent use: each Decide call blocks
// until a literal or an error is returned, per the sequential contract.
type Controller struct {
	src    FormulaSource
	opts   Options
	log    logrus.FieldLogger
	est    *Estimator
	scorer *Scorer
	picker *picker

	state    State
	graph    *Graph
	trail    []trailEntry
	version  uint64 // source version the caches were built for
	digest   uint64 // assignment digest at that version
	estimate Estimate
	hasEst   bool
	sinceEst int // committed decisions since the last full estimation
}

// NewController returns a controller reading formula state from src.
// log may be nil, in which case the standard logger is used.
func NewController(src FormulaSource, opts Options, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.RecomputeInterval <= 0 {
		opts.RecomputeInterval = defaultRecomputeInterval
	}
	return &Controller{
		src:    src,
		opts:   opts,
		log:    log,
		est:    NewEstimator(opts),
		scorer: NewScorer(opts),
		picker: newPicker(opts),
	}
}

// State returns the controller's current cycle state.
func (c *Controller) State() State { return c.state }

// Pool returns the candidate literals of the last completed cycle.
func (c *Controller) Pool() []Lit { return c.picker.pool }

// Units returns the unit literals found in the cached graph, if any. They
// are the base solver's to propagate.
func (c *Controller) Units() []Lit {
	if c.graph == nil {
		return nil
	}
	return c.graph.Units()
}

// Decide runs one full oracle cycle and returns the literal the base
// solver should assign true next. It returns ErrNoGuidance when spectral
// guidance is unavailable (trivial graph, failed estimate, empty scores),
// a ConflictError when an active clause has no literal left, and
// ErrStaleSnapshot when the source's reported state contradicts its
// version counter.
func (c *Controller) Decide() (Lit, error) {
	c.state = BuildingGraph
	defer func() { c.state = Idle }()

	if err := c.ensureGraph(); err != nil {
		return 0, err
	}
	if c.graph.NumFreeVars() == 0 || c.graph.NumActiveRows() == 0 {
		c.log.Debug("trivial graph, no guidance")
		return 0, ErrNoGuidance
	}

	c.state = EstimatingSpectrum
	if !c.hasEst || c.sinceEst >= c.opts.RecomputeInterval {
		var warm []float64
		if c.hasEst {
			warm = c.estimate.X
		}
		est := c.est.Estimate(c.graph, warm)
		if est.Trivial {
			return 0, ErrNoGuidance
		}
		if est.Failed {
			c.log.WithField("iterations", est.Iterations).Warn("spectral estimate failed, skipping guidance")
			return 0, ErrNoGuidance
		}
		if !est.Converged {
			c.log.WithFields(logrus.Fields{
				"iterations": est.Iterations,
				"eigenvalue": est.Eigenvalue,
			}).Debug("estimate hit iteration cap, using best effort")
		}
		c.estimate = est
		c.hasEst = true
		c.sinceEst = 0
	}

	c.state = ScoringLiterals
	scores := c.scorer.Scores(c.graph, c.estimate)
	if len(scores) == 0 {
		return 0, ErrNoGuidance
	}

	c.state = Selecting
	lit, ok := c.picker.pick(c.graph, scores)
	if !ok {
		return 0, ErrNoGuidance
	}

	c.state = Committing
	c.sinceEst++
	c.log.WithFields(logrus.Fields{
		"literal":    lit.Int(),
		"eigenvalue": c.estimate.Eigenvalue,
		"score":      scores[0].Value,
	}).Debug("decision committed")
	return lit, nil
}

// OnAssign tells the controller that the base solver assigned l (by
// decision or propagation). The cached adjacency is updated in place and
// any clause that became unit is returned. A clause left without active
// literals surfaces as a ConflictError; the graph itself is rolled back
// to its pre-assignment state, conflict analysis being the base solver's
// job.
func (c *Controller) OnAssign(l Lit) ([]Lit, error) {
	if c.graph == nil {
		return nil, nil // nothing cached, next Decide rebuilds anyway
	}
	mark := c.graph.CurrentMark()
	units, err := c.graph.Assign(l)
	if err != nil {
		c.graph.Backtrack(mark)
		return nil, err
	}
	c.trail = append(c.trail, trailEntry{lit: l, mark: mark})
	c.resync()
	return units, nil
}

// OnBacktrack tells the controller that the base solver undid part of its
// trail. Assignments the source no longer reports are rolled back from
// the cached graph; the candidate pool is discarded and the next cycle
// runs a full spectral recomputation. If the graph cannot be reconciled
// it is dropped entirely and rebuilt on the next Decide.
func (c *Controller) OnBacktrack() {
	c.picker.discardPool()
	c.sinceEst = c.opts.RecomputeInterval // force a fresh estimate
	if c.graph == nil {
		return
	}
	assignment := c.src.Assignment()
	for len(c.trail) > 0 {
		last := c.trail[len(c.trail)-1]
		if assignment[last.lit.Var()] != Unassigned {
			break
		}
		c.graph.Backtrack(last.mark)
		c.trail = c.trail[:len(c.trail)-1]
	}
	if !c.consistent(assignment) {
		c.graph = nil
		c.trail = nil
	}
	c.resync()
}

// ensureGraph validates the cached adjacency against the source, or
// rebuilds it. With an unchanged version, a changed assignment digest
// means the base solver mutated its trail without bumping the version:
// that is a synchronization bug and fails fast.
func (c *Controller) ensureGraph() error {
	if c.graph != nil && c.src.Version() == c.version {
		digest, err := assignmentDigest(c.src.Assignment())
		if err != nil {
			return errors.Wrap(err, "digesting assignment")
		}
		if digest != c.digest {
			return errors.Wrapf(ErrStaleSnapshot, "version %d unchanged but assignment differs", c.version)
		}
		return nil
	}
	g, err := BuildGraph(c.src)
	if err != nil {
		return err
	}
	c.graph = g
	c.trail = nil
	c.resync()
	c.log.WithFields(logrus.Fields{
		"rows":    g.NumActiveRows(),
		"vars":    g.NumFreeVars(),
		"version": c.version,
	}).Debug("graph built")
	return nil
}

// consistent reports whether the cached graph agrees with the reported
// assignment, polarity included. The base solver may backjump and
// immediately assert the opposite polarity of a trail variable; such a
// variable is still assigned on both sides but the cached rows model the
// wrong binding, so the comparison must be on values, not assigned-ness.
func (c *Controller) consistent(assignment []Value) bool {
	if len(assignment) != c.graph.NumVars() {
		return false
	}
	for v, val := range assignment {
		if val != c.graph.values[v] {
			return false
		}
	}
	return true
}

// resync records the source's version and assignment digest as the state
// the caches now correspond to.
func (c *Controller) resync() {
	c.version = c.src.Version()
	if digest, err := assignmentDigest(c.src.Assignment()); err == nil {
		c.digest = digest
	}
}

func assignmentDigest(assignment []Value) (uint64, error) {
	return hashstructure.Hash(assignment, nil)
}
