package suite

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
	"github.com/lattice-substrate/chess-oracle/internal/engine"
	"github.com/lattice-substrate/chess-oracle/internal/fixture"
)

// MoveGenerator yields the engine's generated move set for one position.
type MoveGenerator interface {
	Movegen(ctx context.Context, fen, outPath string) ([]engine.MoveRecord, error)
}

// NamedLegality pairs a legality fixture with its source name for reporting.
type NamedLegality struct {
	Name    string
	Fixture *fixture.LegalityFixture
}

// LegalityOptions configures one legality run.
type LegalityOptions struct {
	// Jobs bounds concurrent movegen invocations. Values above one are safe
	// because each invocation is an independent one-shot process; outcomes
	// are still folded in fixture order, so reruns stay deterministic.
	Jobs   int
	OutDir string
	Log    io.Writer
}

// RunLegality evaluates every test case of every fixture. Per-case output
// files are written under OutDir/<fixture-name>/<case-index>.json.
func RunLegality(ctx context.Context, fixtures []NamedLegality, gen MoveGenerator, opts LegalityOptions) (Tally, error) {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	var tally Tally
	for _, nf := range fixtures {
		writef(opts.Log, "[legality] running tests from %s\n", nf.Name)

		outcomes := make([]compare.Outcome, len(nf.Fixture.TestCases))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for i, tc := range nf.Fixture.TestCases {
			i, tc := i, tc
			g.Go(func() error {
				unit := fmt.Sprintf("%s[%d] %s", nf.Name, i+1, tc.Start.FEN)
				outPath := filepath.Join(opts.OutDir, nf.Name, fmt.Sprintf("%d.json", i+1))
				actual, err := gen.Movegen(gctx, tc.Start.FEN, outPath)
				if err != nil {
					if abortRun(err) {
						return err
					}
					outcomes[i] = compare.Outcome{Unit: unit, Verdict: compare.VerdictFatalFail, Error: err.Error()}
					return nil
				}
				outcomes[i] = compare.MoveSets(unit, tc.Expected, actual)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return tally, err
		}
		for _, outcome := range outcomes {
			tally = tally.Add(outcome)
			logOutcome(opts.Log, "legality", outcome)
		}
	}
	return tally, nil
}
