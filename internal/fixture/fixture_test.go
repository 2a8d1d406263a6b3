package fixture_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lattice-substrate/chess-oracle/internal/fixture"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

const startposFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

const perftFixtureJSON = `{
  "position": "` + startposFEN + `",
  "depths": [
    {"depth": 1, "results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0,
      "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}},
    {"depth": 2, "results": {"totalNodes": 400, "captures": 0, "castles": 0, "checks": 0,
      "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}
  ]
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadPerft(t *testing.T) {
	fx, err := fixture.LoadPerft(writeFixture(t, "perft.json", perftFixtureJSON))
	if err != nil {
		t.Fatalf("load perft fixture: %v", err)
	}
	if fx.Position != startposFEN {
		t.Fatalf("position = %q", fx.Position)
	}
	if len(fx.Depths) != 2 || fx.Depths[1].Results.TotalNodes != 400 {
		t.Fatalf("unexpected depths: %+v", fx.Depths)
	}
}

func TestLoadPerftMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing_position", `{"depths": [{"depth": 1, "results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}]}`},
		{"empty_depths", `{"position": "x", "depths": []}`},
		{"missing_depth_key", `{"position": "x", "depths": [{"results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}]}`},
		{"negative_depth", `{"position": "x", "depths": [{"depth": -1, "results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}]}`},
		{"missing_counter", `{"position": "x", "depths": [{"depth": 1, "results": {"totalNodes": 20}}]}`},
		{"unknown_top_key", `{"position": "x", "bogus": 1, "depths": [{"depth": 1, "results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}]}`},
		{"not_json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixture.LoadPerft(writeFixture(t, "perft.json", tc.input))
			if err == nil {
				t.Fatal("expected load to fail")
			}
			if got := oraclerr.ClassOf(err); got != oraclerr.MalformedFixture {
				t.Fatalf("class = %s, want MALFORMED_FIXTURE", got)
			}
		})
	}
}

func TestLoadPerftNonAscendingDepths(t *testing.T) {
	input := `{"position": "x", "depths": [
	  {"depth": 2, "results": {"totalNodes": 400, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}},
	  {"depth": 1, "results": {"totalNodes": 20, "captures": 0, "castles": 0, "checks": 0, "checkmates": 0, "stalemates": 0, "en_passants": 0, "promotions": 0}}
	]}`
	if _, err := fixture.LoadPerft(writeFixture(t, "perft.json", input)); err == nil {
		t.Fatal("expected non-ascending depths to fail validation")
	}
}

func TestLoadPerftMissingFile(t *testing.T) {
	_, err := fixture.LoadPerft(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if got := oraclerr.ClassOf(err); got != oraclerr.FixtureNotFound {
		t.Fatalf("class = %s, want FIXTURE_NOT_FOUND", got)
	}
}

func TestResultsAt(t *testing.T) {
	fx, err := fixture.LoadPerft(writeFixture(t, "perft.json", perftFixtureJSON))
	if err != nil {
		t.Fatalf("load perft fixture: %v", err)
	}
	counts, err := fx.ResultsAt(2)
	if err != nil {
		t.Fatalf("lookup depth 2: %v", err)
	}
	if counts.TotalNodes != 400 {
		t.Fatalf("totalNodes = %d, want 400", counts.TotalNodes)
	}
	_, err = fx.ResultsAt(7)
	if err == nil {
		t.Fatal("lookup of absent depth must fail, never pass silently")
	}
	if got := oraclerr.ClassOf(err); got != oraclerr.FixtureNotFound {
		t.Fatalf("class = %s, want FIXTURE_NOT_FOUND", got)
	}
}

func TestLoadLegality(t *testing.T) {
	input := `{"testCases": [
	  {"start": {"fen": "` + startposFEN + `"},
	   "expected": [{"move": "e2e4", "fen": "FEN_A"}, {"move": "g1f3", "fen": "FEN_B"}]}
	]}`
	fx, err := fixture.LoadLegality(writeFixture(t, "legality.json", input))
	if err != nil {
		t.Fatalf("load legality fixture: %v", err)
	}
	if len(fx.TestCases) != 1 || len(fx.TestCases[0].Expected) != 2 {
		t.Fatalf("unexpected fixture: %+v", fx)
	}
}

func TestLoadLegalityDuplicateMove(t *testing.T) {
	input := `{"testCases": [
	  {"start": {"fen": "x"},
	   "expected": [{"move": "e2e4", "fen": "FEN_A"}, {"move": "e2e4", "fen": "FEN_B"}]}
	]}`
	_, err := fixture.LoadLegality(writeFixture(t, "legality.json", input))
	if err == nil {
		t.Fatal("expected duplicate expected move to fail validation")
	}
	if got := oraclerr.ClassOf(err); got != oraclerr.MalformedFixture {
		t.Fatalf("class = %s, want MALFORMED_FIXTURE", got)
	}
}

func TestLoadBestMove(t *testing.T) {
	input := `[{"fen": "X", "move": "e7e8q", "depth": 3}, {"fen": "Y", "move": "d2d4", "depth": 5}]`
	cases, err := fixture.LoadBestMove(writeFixture(t, "bestmove.json", input))
	if err != nil {
		t.Fatalf("load best-move fixture: %v", err)
	}
	if len(cases) != 2 || cases[0].Move != "e7e8q" || cases[1].Depth != 5 {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestLoadBestMoveMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          `[]`,
		"missing_move":   `[{"fen": "X", "depth": 3}]`,
		"negative_depth": `[{"fen": "X", "move": "e7e8q", "depth": -3}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := fixture.LoadBestMove(writeFixture(t, "bestmove.json", input)); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}
