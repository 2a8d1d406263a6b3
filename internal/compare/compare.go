// Package compare computes the verdict for one test unit by structurally
// diffing the engine's reported result against the fixture's expected value.
package compare

import (
	"strconv"

	"github.com/lattice-substrate/chess-oracle/internal/engine"
)

// Verdict classifies one test unit outcome.
type Verdict string

const (
	// VerdictPass means every compared field matched.
	VerdictPass Verdict = "pass"
	// VerdictSoftFail means only non-fatal fields mismatched; the unit is
	// recorded as failed but further work for its position stays useful.
	VerdictSoftFail Verdict = "soft-fail"
	// VerdictFatalFail means a fatal field mismatched or the result was
	// unusable; remaining depths for the position are meaningless.
	VerdictFatalFail Verdict = "fatal-fail"
)

// MismatchKind distinguishes the defect categories. A move present in both
// sets with differing resulting positions is a wrong-resulting-position
// defect, never conflated with a missing or extra move.
type MismatchKind string

const (
	KindField         MismatchKind = "field"
	KindMissingMove   MismatchKind = "missing-move"
	KindExtraMove     MismatchKind = "extra-move"
	KindWrongPosition MismatchKind = "wrong-resulting-position"
	KindDuplicateMove MismatchKind = "duplicate-move"
	KindBestMove      MismatchKind = "best-move"
)

// Mismatch is one observed difference, carrying both values for triage.
type Mismatch struct {
	Kind     MismatchKind `json:"kind"`
	Field    string       `json:"field,omitempty"`
	Move     string       `json:"move,omitempty"`
	Expected string       `json:"expected"`
	Actual   string       `json:"actual"`
}

// Outcome is the verdict for one test unit.
type Outcome struct {
	Unit       string     `json:"unit"`
	Verdict    Verdict    `json:"verdict"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// FieldSet marks counter fields whose mismatch is fatal.
type FieldSet map[string]bool

// DefaultFatalFields returns the standard policy: only a wrong totalNodes is
// fatal, because it signals a structurally wrong game tree; a miscounted
// breakdown category does not invalidate the node count.
func DefaultFatalFields() FieldSet {
	return FieldSet{engine.FieldTotalNodes: true}
}

// Perft compares every counter field independently and applies the
// fatal-field policy.
func Perft(unit string, expected, actual engine.Counts, fatal FieldSet) Outcome {
	out := Outcome{Unit: unit, Verdict: VerdictPass}
	anyFatal := false
	for _, name := range engine.FieldNames {
		want, _ := expected.Field(name)
		got, _ := actual.Field(name)
		if want == got {
			continue
		}
		out.Mismatches = append(out.Mismatches, Mismatch{
			Kind:     KindField,
			Field:    name,
			Expected: strconv.FormatUint(want, 10),
			Actual:   strconv.FormatUint(got, 10),
		})
		if fatal[name] {
			anyFatal = true
		}
	}
	switch {
	case anyFatal:
		out.Verdict = VerdictFatalFail
	case len(out.Mismatches) > 0:
		out.Verdict = VerdictSoftFail
	}
	return out
}

// MoveSets diffs two legal-move sets keyed by move notation. Missing and
// extra moves are reported distinctly; moves present in both sets are then
// checked for resulting-position equality. Any mismatch fails the unit: the
// fatal/soft split does not apply to legality checks.
func MoveSets(unit string, expected, actual []engine.MoveRecord) Outcome {
	out := Outcome{Unit: unit, Verdict: VerdictPass}

	actualByMove := make(map[string]engine.MoveRecord, len(actual))
	for _, rec := range actual {
		if prev, dup := actualByMove[rec.Move]; dup {
			// The engine emitted the same notation twice: its move list is
			// ambiguous regardless of the resulting positions.
			out.Mismatches = append(out.Mismatches, Mismatch{
				Kind:     KindDuplicateMove,
				Move:     rec.Move,
				Expected: prev.FEN,
				Actual:   rec.FEN,
			})
			continue
		}
		actualByMove[rec.Move] = rec
	}

	expectedMoves := make(map[string]struct{}, len(expected))
	for _, rec := range expected {
		expectedMoves[rec.Move] = struct{}{}
		got, ok := actualByMove[rec.Move]
		if !ok {
			out.Mismatches = append(out.Mismatches, Mismatch{
				Kind:     KindMissingMove,
				Move:     rec.Move,
				Expected: rec.FEN,
			})
			continue
		}
		if got.FEN != rec.FEN {
			out.Mismatches = append(out.Mismatches, Mismatch{
				Kind:     KindWrongPosition,
				Move:     rec.Move,
				Expected: rec.FEN,
				Actual:   got.FEN,
			})
		}
	}

	reported := make(map[string]struct{}, len(actual))
	for _, rec := range actual {
		if _, done := reported[rec.Move]; done {
			continue
		}
		reported[rec.Move] = struct{}{}
		if _, ok := expectedMoves[rec.Move]; !ok {
			out.Mismatches = append(out.Mismatches, Mismatch{
				Kind:   KindExtraMove,
				Move:   rec.Move,
				Actual: rec.FEN,
			})
		}
	}

	if len(out.Mismatches) > 0 {
		out.Verdict = VerdictFatalFail
	}
	return out
}

// BestMove compares move notations by exact string equality: there is no
// partial credit for an equivalent but differently-notated move.
func BestMove(unit, expected, actual string) Outcome {
	if expected == actual {
		return Outcome{Unit: unit, Verdict: VerdictPass}
	}
	return Outcome{
		Unit:    unit,
		Verdict: VerdictFatalFail,
		Mismatches: []Mismatch{{
			Kind:     KindBestMove,
			Expected: expected,
			Actual:   actual,
		}},
	}
}
