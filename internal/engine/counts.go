// Package engine decodes results reported by the engine under test: the
// structured results file written by one-shot CLI invocations, the
// label:integer block emitted over the line protocol, and the generated-move
// list written by the move-generation binary.
package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// Counter field names as they appear in fixtures and results files.
const (
	FieldTotalNodes = "totalNodes"
	FieldCaptures   = "captures"
	FieldCastles    = "castles"
	FieldChecks     = "checks"
	FieldCheckmates = "checkmates"
	FieldStalemates = "stalemates"
	FieldEnPassants = "en_passants"
	FieldPromotions = "promotions"
)

// FieldNames lists the compared counter fields in reporting order.
// TotalNodes is the authoritative aggregate; the rest are a breakdown that
// need not sum to it (a move may be simultaneously a capture and a check).
var FieldNames = []string{
	FieldTotalNodes,
	FieldCaptures,
	FieldCastles,
	FieldChecks,
	FieldCheckmates,
	FieldStalemates,
	FieldEnPassants,
	FieldPromotions,
}

// Counts is one perft statistics record.
type Counts struct {
	TotalNodes uint64 `json:"totalNodes"`
	Captures   uint64 `json:"captures"`
	Castles    uint64 `json:"castles"`
	Checks     uint64 `json:"checks"`
	Checkmates uint64 `json:"checkmates"`
	Stalemates uint64 `json:"stalemates"`
	EnPassants uint64 `json:"en_passants"`
	Promotions uint64 `json:"promotions"`
}

// Field returns the counter value for a field name.
func (c Counts) Field(name string) (uint64, bool) {
	switch name {
	case FieldTotalNodes:
		return c.TotalNodes, true
	case FieldCaptures:
		return c.Captures, true
	case FieldCastles:
		return c.Castles, true
	case FieldChecks:
		return c.Checks, true
	case FieldCheckmates:
		return c.Checkmates, true
	case FieldStalemates:
		return c.Stalemates, true
	case FieldEnPassants:
		return c.EnPassants, true
	case FieldPromotions:
		return c.Promotions, true
	default:
		return 0, false
	}
}

// CountsFromFields builds Counts from a field-name map, rejecting unknown
// fields and reporting the first missing required field. Callers classify the
// returned error (SchemaError for engine output, MalformedFixture for test
// data).
func CountsFromFields(fields map[string]uint64) (Counts, error) {
	for name := range fields {
		known := false
		for _, want := range FieldNames {
			if name == want {
				known = true
				break
			}
		}
		if !known {
			return Counts{}, fmt.Errorf("unknown results field %q", name)
		}
	}
	var c Counts
	for _, name := range FieldNames {
		value, ok := fields[name]
		if !ok {
			return Counts{}, fmt.Errorf("missing results field %q", name)
		}
		switch name {
		case FieldTotalNodes:
			c.TotalNodes = value
		case FieldCaptures:
			c.Captures = value
		case FieldCastles:
			c.Castles = value
		case FieldChecks:
			c.Checks = value
		case FieldCheckmates:
			c.Checkmates = value
		case FieldStalemates:
			c.Stalemates = value
		case FieldEnPassants:
			c.EnPassants = value
		case FieldPromotions:
			c.Promotions = value
		}
	}
	return c, nil
}

type resultsDoc struct {
	Results map[string]uint64 `json:"results"`
}

// DecodeResults parses the structured results file written by a CLI-mode
// perft invocation: {"results": {<8 counters>}}.
func DecodeResults(data []byte) (Counts, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc resultsDoc
	if err := dec.Decode(&doc); err != nil {
		return Counts{}, oraclerr.Wrap(oraclerr.SchemaError, "", "decode results json", err)
	}
	if err := ensureSingleJSONDocument(dec); err != nil {
		return Counts{}, oraclerr.Wrap(oraclerr.SchemaError, "", "decode results json", err)
	}
	if doc.Results == nil {
		return Counts{}, oraclerr.New(oraclerr.SchemaError, "results", "results object is required")
	}
	counts, err := CountsFromFields(doc.Results)
	if err != nil {
		return Counts{}, oraclerr.Wrap(oraclerr.SchemaError, "results", "invalid results object", err)
	}
	return counts, nil
}

// MoveRecord is one legal move and the position it produces. Move notation
// and FEN strings are opaque to the harness beyond exact equality.
type MoveRecord struct {
	Move string `json:"move"`
	FEN  string `json:"fen"`
}

type movegenDoc struct {
	Generated []MoveRecord `json:"generated"`
}

// DecodeMovegen parses the results file written by a move-generation
// invocation: {"generated": [{move, fen}, ...]}.
func DecodeMovegen(data []byte) ([]MoveRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc movegenDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, oraclerr.Wrap(oraclerr.SchemaError, "", "decode movegen json", err)
	}
	if err := ensureSingleJSONDocument(dec); err != nil {
		return nil, oraclerr.Wrap(oraclerr.SchemaError, "", "decode movegen json", err)
	}
	if doc.Generated == nil {
		return nil, oraclerr.New(oraclerr.SchemaError, "generated", "generated array is required")
	}
	for i, rec := range doc.Generated {
		if rec.Move == "" {
			return nil, oraclerr.New(oraclerr.SchemaError, fmt.Sprintf("generated[%d]", i), "move is required")
		}
		if rec.FEN == "" {
			return nil, oraclerr.New(oraclerr.SchemaError, rec.Move, "fen is required")
		}
	}
	return doc.Generated, nil
}

func ensureSingleJSONDocument(dec *json.Decoder) error {
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("unexpected trailing json content")
		}
		return fmt.Errorf("decode trailing json token: %w", err)
	}
	return nil
}
