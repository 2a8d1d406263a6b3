package suite

import (
	"context"
	"fmt"
	"io"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
	"github.com/lattice-substrate/chess-oracle/internal/engine"
	"github.com/lattice-substrate/chess-oracle/internal/fixture"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// PerftSession yields one perft result per requested depth. Both the
// protocol-mode session and the CLI-mode adapter satisfy it, so the runner
// does not branch by mode.
type PerftSession interface {
	Perft(ctx context.Context, depth int) (engine.Counts, error)
	Close() error
}

// PerftOptions configures one perft run.
type PerftOptions struct {
	// Depths restricts the run to a subset of the fixture's depths; nil
	// means every depth. A requested depth absent from the fixture aborts
	// the run as a harness defect.
	Depths      []int
	FatalFields compare.FieldSet
	Log         io.Writer
}

// RunPerft drives one position through its fixture depths in ascending
// order. A fatal verdict at any depth aborts the remaining depths for this
// position: deeper counts built on a structurally wrong tree are
// meaningless. Soft failures are recorded and the run continues, because
// deeper-depth evidence is still useful for triage.
func RunPerft(ctx context.Context, fx *fixture.PerftFixture, sess PerftSession, opts PerftOptions) (Tally, error) {
	fatal := opts.FatalFields
	if fatal == nil {
		fatal = compare.DefaultFatalFields()
	}
	var tally Tally
	writef(opts.Log, "[perft] running tests for position %s\n", fx.Position)

	units := fx.Depths
	if opts.Depths != nil {
		units = make([]fixture.DepthCase, 0, len(opts.Depths))
		for _, depth := range opts.Depths {
			expected, err := fx.ResultsAt(depth)
			if err != nil {
				return tally, err
			}
			units = append(units, fixture.DepthCase{Depth: depth, Results: expected})
		}
	}

	for _, dc := range units {
		writef(opts.Log, "[perft] running depth %d\n", dc.Depth)
		unit := fmt.Sprintf("%s depth %d", fx.Position, dc.Depth)
		actual, err := sess.Perft(ctx, dc.Depth)
		if err != nil {
			if abortRun(err) {
				return tally, err
			}
			// Unparsable output is fatal for this unit: a value that cannot
			// be read cannot be judged right or wrong.
			outcome := compare.Outcome{Unit: unit, Verdict: compare.VerdictFatalFail, Error: err.Error()}
			tally = tally.Add(outcome)
			logOutcome(opts.Log, "perft", outcome)
			writef(opts.Log, "[perft] aborting remaining depths for %s\n", fx.Position)
			break
		}
		outcome := compare.Perft(unit, dc.Results, actual, fatal)
		tally = tally.Add(outcome)
		logOutcome(opts.Log, "perft", outcome)
		if outcome.Verdict == compare.VerdictFatalFail {
			writef(opts.Log, "[perft] aborting remaining depths for %s\n", fx.Position)
			break
		}
	}
	return tally, nil
}

// abortRun reports whether err is a run-level condition (the harness or the
// engine process is broken) rather than a unit-level defect in one answer.
func abortRun(err error) bool {
	switch oraclerr.ClassOf(err) {
	case oraclerr.ProtocolViolation, oraclerr.MissingField, oraclerr.SchemaError:
		return false
	default:
		return true
	}
}
