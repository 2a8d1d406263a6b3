package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

const validResultsJSON = `{
  "results": {
    "totalNodes": 8902,
    "captures": 34,
    "castles": 0,
    "checks": 12,
    "checkmates": 0,
    "stalemates": 0,
    "en_passants": 0,
    "promotions": 0
  }
}`

func TestDecodeResults(t *testing.T) {
	counts, err := DecodeResults([]byte(validResultsJSON))
	if err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if counts.TotalNodes != 8902 || counts.Captures != 34 || counts.Checks != 12 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestDecodeResultsMissingField(t *testing.T) {
	input := `{"results": {"totalNodes": 20}}`
	_, err := DecodeResults([]byte(input))
	if err == nil {
		t.Fatal("expected error for missing fields")
	}
	if got := oraclerr.ClassOf(err); got != oraclerr.SchemaError {
		t.Fatalf("class = %s, want SCHEMA_ERROR", got)
	}
	if !strings.Contains(err.Error(), `"captures"`) {
		t.Fatalf("error does not name the missing field: %v", err)
	}
}

func TestDecodeResultsUnknownField(t *testing.T) {
	input := strings.Replace(validResultsJSON, `"promotions": 0`, `"promotions": 0, "bogus": 1`, 1)
	if _, err := DecodeResults([]byte(input)); err == nil {
		t.Fatal("expected error for unknown results field")
	}
}

func TestDecodeResultsMissingObject(t *testing.T) {
	if _, err := DecodeResults([]byte(`{}`)); err == nil {
		t.Fatal("expected error for missing results object")
	}
}

func TestDecodeResultsTrailingDocument(t *testing.T) {
	if _, err := DecodeResults([]byte(validResultsJSON + `{}`)); err == nil {
		t.Fatal("expected error for trailing json content")
	}
}

func TestDecodeResultsNegativeCounter(t *testing.T) {
	input := strings.Replace(validResultsJSON, `"captures": 34`, `"captures": -1`, 1)
	if _, err := DecodeResults([]byte(input)); err == nil {
		t.Fatal("expected error for negative counter")
	}
}

func TestCountsField(t *testing.T) {
	c := Counts{TotalNodes: 20, EnPassants: 3}
	if v, ok := c.Field(FieldTotalNodes); !ok || v != 20 {
		t.Fatalf("Field(totalNodes) = %d, %t", v, ok)
	}
	if v, ok := c.Field(FieldEnPassants); !ok || v != 3 {
		t.Fatalf("Field(en_passants) = %d, %t", v, ok)
	}
	if _, ok := c.Field("nope"); ok {
		t.Fatal("Field accepted an unknown name")
	}
}

func TestDecodeMovegen(t *testing.T) {
	input := `{"generated": [{"move": "e2e4", "fen": "FEN_A"}, {"move": "g1f3", "fen": "FEN_B"}]}`
	moves, err := DecodeMovegen([]byte(input))
	if err != nil {
		t.Fatalf("decode movegen: %v", err)
	}
	if len(moves) != 2 || moves[0].Move != "e2e4" || moves[1].FEN != "FEN_B" {
		t.Fatalf("unexpected moves: %+v", moves)
	}
}

func TestDecodeMovegenMissingArray(t *testing.T) {
	_, err := DecodeMovegen([]byte(`{}`))
	if err == nil {
		t.Fatal("expected error for missing generated array")
	}
	var oe *oraclerr.Error
	if !errors.As(err, &oe) || oe.Class != oraclerr.SchemaError {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeMovegenEmptyMove(t *testing.T) {
	input := `{"generated": [{"move": "", "fen": "FEN_A"}]}`
	if _, err := DecodeMovegen([]byte(input)); err == nil {
		t.Fatal("expected error for empty move notation")
	}
}
