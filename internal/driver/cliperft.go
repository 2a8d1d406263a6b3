package driver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lattice-substrate/chess-oracle/internal/engine"
)

// CLIPerft adapts one-shot CLI invocations to the same per-depth interface
// the protocol session offers, so the suite runner does not branch by mode.
// Each depth writes its own results file under OutDir.
type CLIPerft struct {
	Invoker Invoker
	FEN     string // empty means the engine's default starting position
	OutDir  string
}

// Perft invokes the binary for one depth and decodes its results file.
func (c CLIPerft) Perft(ctx context.Context, depth int) (engine.Counts, error) {
	outPath := filepath.Join(c.OutDir, fmt.Sprintf("%d_results.json", depth))
	return c.Invoker.Perft(ctx, depth, c.FEN, outPath)
}

// Close is a no-op: CLI invocations hold no persistent process.
func (CLIPerft) Close() error { return nil }
