package engine

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// Labels reported in one perft block over the line protocol, in the order
// the engine prints them. "Stalemates" is by convention the last statistic
// of a block.
const (
	LabelNodes      = "Nodes"
	LabelCaptures   = "Captures"
	LabelCastles    = "Castles"
	LabelCheckmates = "Checkmates"
	LabelChecks     = "Checks"
	LabelEnPassants = "En passant captures"
	LabelPromotions = "Promotions"
	LabelStalemates = "Stalemates"
)

// labelOrder fixes the resolution order so a block missing several labels
// always reports the same one first.
var labelOrder = []string{
	LabelNodes,
	LabelCaptures,
	LabelCastles,
	LabelCheckmates,
	LabelChecks,
	LabelEnPassants,
	LabelPromotions,
	LabelStalemates,
}

// labelFields maps protocol labels to counter field names. Lookup is
// case-and-spelling exact.
var labelFields = map[string]string{
	LabelNodes:      FieldTotalNodes,
	LabelCaptures:   FieldCaptures,
	LabelCastles:    FieldCastles,
	LabelCheckmates: FieldCheckmates,
	LabelChecks:     FieldChecks,
	LabelEnPassants: FieldEnPassants,
	LabelPromotions: FieldPromotions,
	LabelStalemates: FieldStalemates,
}

// BlockLine is one "<Label>: <value>" line collected from a block.
type BlockLine struct {
	Label string
	Value string
}

// BlockDecoder extracts one result block from an engine's output stream.
//
// The stream is otherwise unbounded: without a stop condition an exhausted or
// momentarily quiet engine would block the reader forever. Terminal names the
// label that ends a block, making the termination condition an explicit
// contract rather than a side effect of loop structure.
type BlockDecoder struct {
	Terminal string
}

// NewBlockDecoder returns a decoder terminating on the Stalemates label.
func NewBlockDecoder() BlockDecoder {
	return BlockDecoder{Terminal: LabelStalemates}
}

// ReadBlock scans lines until the terminal label is seen, or until a line
// lacking a colon follows at least one collected line. Blank lines and free
// text before the first labeled line are discarded. The scanner is left
// exactly past the line that ended the block, never consuming lines that
// belong to the next command's output.
func (d BlockDecoder) ReadBlock(s *bufio.Scanner) ([]BlockLine, error) {
	var lines []BlockLine
	for s.Scan() {
		text := s.Text()
		label, value, found := strings.Cut(text, ":")
		if !found {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, BlockLine{Label: label, Value: strings.TrimSpace(value)})
		if label == d.Terminal {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, oraclerr.Wrap(oraclerr.ProtocolViolation, "", "read engine output", err)
	}
	if len(lines) == 0 {
		return nil, oraclerr.New(oraclerr.ProtocolViolation, "", "engine output ended before a result block")
	}
	return lines, nil
}

// Decode reads one block and resolves it into Counts. A required label
// absent from the block means the engine's output is unparsable for this
// unit, not merely numerically wrong.
func (d BlockDecoder) Decode(s *bufio.Scanner) (Counts, error) {
	lines, err := d.ReadBlock(s)
	if err != nil {
		return Counts{}, err
	}
	fields := make(map[string]uint64, len(FieldNames))
	for _, label := range labelOrder {
		field := labelFields[label]
		value, ok := lookupLabel(lines, label)
		if !ok {
			return Counts{}, oraclerr.New(oraclerr.MissingField, label, "label not reported in result block")
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Counts{}, oraclerr.Wrap(oraclerr.ProtocolViolation, label, "value is not a non-negative integer", err)
		}
		fields[field] = n
	}
	counts, err := CountsFromFields(fields)
	if err != nil {
		return Counts{}, oraclerr.Wrap(oraclerr.ProtocolViolation, "", "resolve result block", err)
	}
	return counts, nil
}

// lookupLabel returns the first value collected for label, matching the
// engine's convention that the first occurrence wins.
func lookupLabel(lines []BlockLine, label string) (string, bool) {
	for _, line := range lines {
		if line.Label == label {
			return line.Value, true
		}
	}
	return "", false
}
