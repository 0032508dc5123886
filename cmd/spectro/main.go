// Command spectro exposes the spectral branching oracle as a tool: pick
// branching literals from a CNF file, run the full reduction loop against
// the gini backend, or generate random 3-SAT instances to experiment on.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crillab/spectro/cnf"
	"github.com/crillab/spectro/oracle"
	"github.com/crillab/spectro/reduce"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "spectro: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "spectro",
		Short:         "spectral look-ahead branching oracle for SAT",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetLevel(logrus.InfoLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newPickCmd(), newReduceCmd(), newGenCmd())
	return root
}

func pickerFlags(fs *pflag.FlagSet, opts *oracle.Options, heuristic *string) {
	fs.Var(&opts.SelectionMode, "mode", "selection mode: greedy or pooled")
	fs.IntVar(&opts.PoolSize, "pool-size", opts.PoolSize, "candidate pool size in pooled mode")
	fs.IntVar(&opts.MaxIterations, "max-iterations", opts.MaxIterations, "power iteration budget")
	fs.Float64Var(&opts.ConvergenceTolerance, "tolerance", opts.ConvergenceTolerance, "relative Rayleigh quotient convergence tolerance")
	fs.Int64Var(&opts.RandomSeed, "seed", 0, "seed for pooled selection and the random baseline")
	fs.IntVar(&opts.Parallelism, "parallelism", 0, "goroutines for the spectral products (0 = serial)")
	fs.StringVar(heuristic, "heuristic", "spectral", "picking heuristic: spectral, freq or random")
}

func buildPicker(heuristic string, opts oracle.Options) (oracle.LiteralPicker, error) {
	switch heuristic {
	case "spectral":
		return oracle.NewSpectralPicker(opts), nil
	case "freq":
		return oracle.FrequencyPicker{}, nil
	case "random":
		return oracle.NewRandomPicker(opts.RandomSeed), nil
	default:
		return nil, errors.Errorf("unknown heuristic %q", heuristic)
	}
}

func parseFile(path string) (*cnf.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer func() { _ = f.Close() }()
	pb, err := cnf.Parse(f)
	return pb, errors.Wrapf(err, "parsing %q", path)
}

func newPickCmd() *cobra.Command {
	opts := oracle.DefaultOptions()
	var heuristic string
	var k int
	cmd := &cobra.Command{
		Use:   "pick FILE.cnf",
		Short: "print the k best branching literals for a CNF formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := parseFile(args[0])
			if err != nil {
				return err
			}
			picker, err := buildPicker(heuristic, opts)
			if err != nil {
				return err
			}
			lits, err := picker.Pick(cnf.NewSource(pb), k, nil)
			if err != nil {
				return errors.Wrap(err, "picking literals")
			}
			strs := make([]string, len(lits))
			for i, l := range lits {
				strs[i] = fmt.Sprintf("%d", l.Int())
			}
			fmt.Println(strings.Join(strs, " "))
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "count", "k", 1, "number of literals to pick")
	pickerFlags(cmd.Flags(), &opts, &heuristic)
	return cmd
}

func newReduceCmd() *cobra.Command {
	opts := oracle.DefaultOptions()
	var heuristic string
	var perRound, maxRounds int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "reduce FILE.cnf",
		Short: "iteratively commit spectral units and solve with gini",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := parseFile(args[0])
			if err != nil {
				return err
			}
			picker, err := buildPicker(heuristic, opts)
			if err != nil {
				return err
			}
			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			runner := reduce.NewRunner(picker, reduce.GiniEngine{}, reduce.Options{
				PerRound:  perRound,
				MaxRounds: maxRounds,
			}, logrus.StandardLogger())
			stats, err := runner.Run(ctx, pb)
			if err != nil {
				return errors.Wrap(err, "running reduction")
			}
			if len(stats) == 0 {
				return errors.New("no round was run")
			}
			last := stats[len(stats)-1]
			fmt.Printf("s %s\nc rounds=%d units=%d\n", last.Status, last.Round, last.TotalUnits)
			return nil
		},
	}
	cmd.Flags().IntVar(&perRound, "per-round", 1, "literals committed per round")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 30, "maximum number of reduction rounds (0 = unbounded)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the run (0 = none)")
	pickerFlags(cmd.Flags(), &opts, &heuristic)
	return cmd
}

func newGenCmd() *cobra.Command {
	var nbVars, nbClauses int
	var seed int64
	cmd := &cobra.Command{
		Use:   "gen FILE.cnf",
		Short: "generate a random 3-SAT instance in DIMACS format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := cnf.Gen3SAT(nbVars, nbClauses, seed)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return errors.Wrapf(err, "creating %q", args[0])
			}
			defer func() { _ = f.Close() }()
			return pb.Write(f)
		},
	}
	cmd.Flags().IntVarP(&nbVars, "vars", "n", 100, "number of variables")
	cmd.Flags().IntVarP(&nbClauses, "clauses", "m", 420, "number of clauses")
	cmd.Flags().Int64Var(&seed, "seed", 1, "generator seed")
	return cmd
}
