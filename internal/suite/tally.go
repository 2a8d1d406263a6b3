// Package suite iterates fixtures against the engine under test,
// accumulates verdicts, and determines the harness's overall exit status.
package suite

import (
	"io"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
)

// Tally accumulates unit verdicts. It is threaded through the runners as a
// value and returned from each evaluation, never mutated as ambient state.
type Tally struct {
	Passed     int
	SoftFailed int
	Failed     int
	Outcomes   []compare.Outcome
}

// Add records one unit outcome.
func (t Tally) Add(o compare.Outcome) Tally {
	switch o.Verdict {
	case compare.VerdictPass:
		t.Passed++
	case compare.VerdictSoftFail:
		t.SoftFailed++
	default:
		t.Failed++
	}
	t.Outcomes = append(t.Outcomes, o)
	return t
}

// Merge folds another tally into this one, preserving outcome order.
func (t Tally) Merge(other Tally) Tally {
	t.Passed += other.Passed
	t.SoftFailed += other.SoftFailed
	t.Failed += other.Failed
	t.Outcomes = append(t.Outcomes, other.Outcomes...)
	return t
}

// Units returns the number of evaluated test units.
func (t Tally) Units() int {
	return t.Passed + t.SoftFailed + t.Failed
}

// ExitCode returns 0 only if every unit passed; any fatal or soft failure
// anywhere yields a non-zero exit, making the harness usable as a CI gate.
func (t Tally) ExitCode() int {
	if t.SoftFailed == 0 && t.Failed == 0 {
		return 0
	}
	return 1
}

// WriteSummary prints the closing pass/fail lines. unitLabel names the test
// unit kind: "depths", "test cases".
func WriteSummary(w io.Writer, unitLabel string, t Tally) {
	writef(w, "%d %s passed\n", t.Passed, unitLabel)
	writef(w, "%d %s failed\n", t.SoftFailed+t.Failed, unitLabel)
	if t.SoftFailed > 0 {
		writef(w, "(%d of the failures are soft breakdown mismatches)\n", t.SoftFailed)
	}
}
