package suite

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
	"github.com/lattice-substrate/chess-oracle/internal/fixture"
)

// Solver yields the engine's best move for one position at one depth.
type Solver interface {
	BestMove(ctx context.Context, fen string, depth int) (string, error)
}

// BestMoveOptions configures one best-move run.
type BestMoveOptions struct {
	Jobs int
	Log  io.Writer
}

// RunBestMove evaluates every search-oracle case. Like the legality runner,
// invocations may overlap when Jobs exceeds one, and outcomes are folded in
// fixture order.
func RunBestMove(ctx context.Context, cases []fixture.BestMoveCase, solver Solver, opts BestMoveOptions) (Tally, error) {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	var tally Tally

	outcomes := make([]compare.Outcome, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			unit := fmt.Sprintf("%s depth %d", c.FEN, c.Depth)
			actual, err := solver.BestMove(gctx, c.FEN, c.Depth)
			if err != nil {
				if abortRun(err) {
					return err
				}
				outcomes[i] = compare.Outcome{Unit: unit, Verdict: compare.VerdictFatalFail, Error: err.Error()}
				return nil
			}
			outcomes[i] = compare.BestMove(unit, c.Move, actual)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return tally, err
	}
	for i, outcome := range outcomes {
		writef(opts.Log, "[bestmove] test position %s\n", cases[i].FEN)
		tally = tally.Add(outcome)
		logOutcome(opts.Log, "bestmove", outcome)
	}
	return tally, nil
}
