// Package fixture loads the ground-truth datasets consumed by the harness:
// perft statistics keyed by depth, per-position legal-move sets, and
// best-move answers. Fixtures are produced by an offline ground-truth
// process, loaded once per run, and read-only thereafter, so concurrent
// lookups need no locking.
package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lattice-substrate/chess-oracle/internal/engine"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// DepthCase is the expected perft statistics at one depth.
type DepthCase struct {
	Depth   int
	Results engine.Counts
}

// PerftFixture holds expected perft statistics for one position over an
// ascending set of depths.
type PerftFixture struct {
	Position string
	Depths   []DepthCase
}

// ResultsAt returns the expected statistics for one depth. A depth absent
// from the fixture is a harness defect, never a silent pass.
func (f *PerftFixture) ResultsAt(depth int) (engine.Counts, error) {
	for _, dc := range f.Depths {
		if dc.Depth == depth {
			return dc.Results, nil
		}
	}
	return engine.Counts{}, oraclerr.New(oraclerr.FixtureNotFound,
		fmt.Sprintf("depth %d", depth), "no expected results in fixture for position "+f.Position)
}

type perftDoc struct {
	Position string          `json:"position"`
	Depths   []perftDepthDoc `json:"depths"`
}

type perftDepthDoc struct {
	Depth   *int              `json:"depth"`
	Results map[string]uint64 `json:"results"`
}

// LoadPerft reads and validates one perft fixture file.
func LoadPerft(path string) (*PerftFixture, error) {
	data, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	var doc perftDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "decode perft fixture", err)
	}
	if doc.Position == "" {
		return nil, oraclerr.New(oraclerr.MalformedFixture, path, "position is required")
	}
	if len(doc.Depths) == 0 {
		return nil, oraclerr.New(oraclerr.MalformedFixture, path, "depths cannot be empty")
	}
	fx := &PerftFixture{Position: doc.Position, Depths: make([]DepthCase, 0, len(doc.Depths))}
	lastDepth := -1
	for i, dd := range doc.Depths {
		if dd.Depth == nil {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("depths[%d]: depth is required", i))
		}
		if *dd.Depth < 0 {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("depths[%d]: depth cannot be negative", i))
		}
		if *dd.Depth <= lastDepth {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("depths[%d]: depths must be ascending and unique", i))
		}
		lastDepth = *dd.Depth
		if dd.Results == nil {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("depths[%d]: results object is required", i))
		}
		counts, err := engine.CountsFromFields(dd.Results)
		if err != nil {
			return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, fmt.Sprintf("depths[%d]: invalid results", i), err)
		}
		fx.Depths = append(fx.Depths, DepthCase{Depth: *dd.Depth, Results: counts})
	}
	return fx, nil
}

// StartPosition identifies the board a legality test case starts from.
type StartPosition struct {
	FEN string `json:"fen"`
}

// MoveCase is one legality test case: a starting position and the complete
// set of legal moves with their resulting positions.
type MoveCase struct {
	Start    StartPosition       `json:"start"`
	Expected []engine.MoveRecord `json:"expected"`
}

// LegalityFixture is an ordered collection of legality test cases.
type LegalityFixture struct {
	TestCases []MoveCase `json:"testCases"`
}

// LoadLegality reads and validates one legality fixture file.
func LoadLegality(path string) (*LegalityFixture, error) {
	data, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	var fx LegalityFixture
	if err := decodeStrict(data, &fx); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "decode legality fixture", err)
	}
	if len(fx.TestCases) == 0 {
		return nil, oraclerr.New(oraclerr.MalformedFixture, path, "testCases cannot be empty")
	}
	for i, tc := range fx.TestCases {
		if tc.Start.FEN == "" {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("testCases[%d]: start.fen is required", i))
		}
		seen := make(map[string]struct{}, len(tc.Expected))
		for _, rec := range tc.Expected {
			if rec.Move == "" {
				return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("testCases[%d]: move notation is required", i))
			}
			if rec.FEN == "" {
				return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("testCases[%d]: move %s: fen is required", i, rec.Move))
			}
			// Two records sharing a notation would make the expected set
			// ambiguous; that is broken test data, not a valid state.
			if _, dup := seen[rec.Move]; dup {
				return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("testCases[%d]: duplicate expected move %s", i, rec.Move))
			}
			seen[rec.Move] = struct{}{}
		}
	}
	return &fx, nil
}

// BestMoveCase is ground truth for one search-oracle check.
type BestMoveCase struct {
	FEN   string `json:"fen"`
	Move  string `json:"move"`
	Depth int    `json:"depth"`
}

// LoadBestMove reads and validates one best-move fixture file, a top-level
// array of cases.
func LoadBestMove(path string) ([]BestMoveCase, error) {
	data, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	var cases []BestMoveCase
	if err := decodeStrict(data, &cases); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "decode best-move fixture", err)
	}
	if len(cases) == 0 {
		return nil, oraclerr.New(oraclerr.MalformedFixture, path, "fixture cannot be empty")
	}
	for i, c := range cases {
		if c.FEN == "" {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("case[%d]: fen is required", i))
		}
		if c.Move == "" {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("case[%d]: move is required", i))
		}
		if c.Depth < 0 {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, fmt.Sprintf("case[%d]: depth cannot be negative", i))
		}
	}
	return cases, nil
}

func readFixture(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oraclerr.Wrap(oraclerr.FixtureNotFound, path, "read fixture", err)
	}
	return data, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("unexpected trailing json content")
		}
		return fmt.Errorf("decode trailing json token: %w", err)
	}
	return nil
}
