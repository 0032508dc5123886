// Package cnf reads, writes and generates formulas in DIMACS CNF format.
// Clauses are kept in the plain integer notation of the format: the CNF
// literal -3 is just the int -3. Conversion to the oracle's encoding
// happens in the Source adapter.
package cnf

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Problem is a CNF formula: a number of variables and a list of clauses
// over them.
type Problem struct {
	NbVars  int
	Clauses [][]int
}

// Parse reads a DIMACS CNF stream. Comment lines are skipped; clauses may
// span several lines and are terminated by 0, per the format. A missing or
// malformed "p cnf" header is an error.
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var pb *Problem
	var clause []int
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "cnf" {
				return nil, errors.Errorf("malformed problem line %q", line)
			}
			nbVars, err := strconv.Atoi(fields[2])
			if err != nil || nbVars < 0 {
				return nil, errors.Errorf("invalid variable count in %q", line)
			}
			nbClauses, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Errorf("invalid clause count in %q", line)
			}
			pb = &Problem{NbVars: nbVars, Clauses: make([][]int, 0, nbClauses)}
			continue
		}
		if pb == nil {
			return nil, errors.Errorf("clause line %q before problem line", line)
		}
		for _, field := range strings.Fields(line) {
			val, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid literal %q", field)
			}
			if val == 0 {
				pb.Clauses = append(pb.Clauses, clause)
				clause = nil
				continue
			}
			if v := abs(val); v > pb.NbVars {
				return nil, errors.Errorf("literal %d exceeds declared %d variables", val, pb.NbVars)
			}
			clause = append(clause, val)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading CNF")
	}
	if pb == nil {
		return nil, errors.New("no problem line found")
	}
	if len(clause) > 0 {
		pb.Clauses = append(pb.Clauses, clause) // unterminated final clause
	}
	return pb, nil
}

// Write emits the problem in DIMACS CNF format.
func (pb *Problem) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", pb.NbVars, len(pb.Clauses)); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, clause := range pb.Clauses {
		for _, lit := range clause {
			if _, err := fmt.Fprintf(bw, "%d ", lit); err != nil {
				return errors.Wrap(err, "writing clause")
			}
		}
		if _, err := bw.WriteString("0\n"); err != nil {
			return errors.Wrap(err, "writing clause")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing CNF")
}

// AddUnits appends one unit clause per literal. The receiver is modified
// in place.
func (pb *Problem) AddUnits(lits ...int) {
	for _, lit := range lits {
		pb.Clauses = append(pb.Clauses, []int{lit})
	}
}

// Copy returns a deep copy of the problem.
func (pb *Problem) Copy() *Problem {
	clauses := make([][]int, len(pb.Clauses))
	for i, clause := range pb.Clauses {
		clauses[i] = append([]int(nil), clause...)
	}
	return &Problem{NbVars: pb.NbVars, Clauses: clauses}
}

// Gen3SAT generates a uniform random 3-SAT problem with nbVars variables
// and nbClauses clauses: each clause picks three distinct variables and
// negates each with probability one half. The same seed always yields the
// same problem.
func Gen3SAT(nbVars, nbClauses int, seed int64) (*Problem, error) {
	if nbVars < 3 {
		return nil, errors.Errorf("need at least 3 variables, got %d", nbVars)
	}
	if nbClauses < 0 {
		return nil, errors.Errorf("negative clause count %d", nbClauses)
	}
	rng := rand.New(rand.NewSource(seed))
	pb := &Problem{NbVars: nbVars, Clauses: make([][]int, nbClauses)}
	for i := range pb.Clauses {
		clause := make([]int, 0, 3)
		for len(clause) < 3 {
			v := rng.Intn(nbVars) + 1
			dup := false
			for _, lit := range clause {
				if abs(lit) == v {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			if rng.Intn(2) == 1 {
				v = -v
			}
			clause = append(clause, v)
		}
		pb.Clauses[i] = clause
	}
	return pb, nil
}

func abs(val int) int {
	if val < 0 {
		return -val
	}
	return val
}
