package suite

import (
	"fmt"
	"io"

	"github.com/lattice-substrate/chess-oracle/internal/compare"
)

// Progress output is advisory: write errors never affect verdicts.
func writef(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

func logOutcome(w io.Writer, tag string, o compare.Outcome) {
	switch o.Verdict {
	case compare.VerdictPass:
		writef(w, "[%s] PASS %s\n", tag, o.Unit)
		return
	case compare.VerdictSoftFail:
		writef(w, "[%s] SOFT FAIL %s\n", tag, o.Unit)
	default:
		writef(w, "[%s] FAIL %s\n", tag, o.Unit)
	}
	for _, m := range o.Mismatches {
		switch m.Kind {
		case compare.KindField:
			writef(w, "[%s]   expected %s %s, got %s\n", tag, m.Expected, m.Field, m.Actual)
		case compare.KindMissingMove:
			writef(w, "[%s]   move %s was not generated\n", tag, m.Move)
		case compare.KindExtraMove:
			writef(w, "[%s]   move %s was incorrectly generated\n", tag, m.Move)
		case compare.KindWrongPosition:
			writef(w, "[%s]   move %s produced wrong resulting position: expected %s, got %s\n", tag, m.Move, m.Expected, m.Actual)
		case compare.KindDuplicateMove:
			writef(w, "[%s]   move %s generated more than once\n", tag, m.Move)
		case compare.KindBestMove:
			writef(w, "[%s]   expected %s, got %s\n", tag, m.Expected, m.Actual)
		}
	}
	if o.Error != "" {
		writef(w, "[%s]   %s\n", tag, o.Error)
	}
}
