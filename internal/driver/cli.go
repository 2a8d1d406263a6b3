// Package driver manages the lifecycle of the engine-under-test process, in
// both of its shapes: one-shot CLI invocations that write a results file,
// and a long-lived process speaking a line protocol over stdin/stdout.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lattice-substrate/chess-oracle/internal/engine"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// CommandRunner abstracts one-shot engine invocations.
type CommandRunner interface {
	// Run executes argv and returns captured stdout. An *exec.ExitError is
	// returned as-is; any other error means the process never ran.
	Run(ctx context.Context, argv []string) (string, error)
}

// OSRunner executes commands on the host.
type OSRunner struct{}

// Run executes argv with stdout captured and stderr discarded.
func (OSRunner) Run(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty argv")
	}
	// #nosec G204 -- argv names the operator-supplied engine under test.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), err
		}
		msg := strings.TrimSpace(errOut.String())
		if msg != "" {
			return out.String(), fmt.Errorf("run %q failed: %w: %s", argv, err, msg)
		}
		return out.String(), fmt.Errorf("run %q failed: %w", argv, err)
	}
	return out.String(), nil
}

// Invoker drives one CLI-mode engine binary. Each call spawns an independent
// process with no state shared between invocations, so calls are safe to
// retry and safe to run concurrently.
type Invoker struct {
	Binary string
	Runner CommandRunner
}

// NewInvoker returns an Invoker over the host's process runner.
func NewInvoker(binary string) Invoker {
	return Invoker{Binary: binary, Runner: OSRunner{}}
}

// Perft runs one perft query: `binary <depth> [--fen POS] --write-json OUT`.
// The exit code is not inspected; the results file is authoritative.
func (inv Invoker) Perft(ctx context.Context, depth int, fen, outPath string) (engine.Counts, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return engine.Counts{}, oraclerr.Wrap(oraclerr.InternalIO, outPath, "create output dir", err)
	}
	argv := []string{inv.Binary, strconv.Itoa(depth)}
	if fen != "" {
		argv = append(argv, "--fen", fen)
	}
	argv = append(argv, "--write-json", outPath)
	if _, err := inv.Runner.Run(ctx, argv); spawnFailed(err) {
		return engine.Counts{}, oraclerr.Wrap(oraclerr.EngineUnavailable, inv.Binary, "spawn perft engine", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return engine.Counts{}, oraclerr.Wrap(oraclerr.ProtocolViolation,
			fmt.Sprintf("depth %d", depth), "engine wrote no readable results file", err)
	}
	counts, err := engine.DecodeResults(data)
	if err != nil {
		return engine.Counts{}, fmt.Errorf("depth %d: %w", depth, err)
	}
	return counts, nil
}

// Movegen runs one move-generation query: `binary <FEN> <OUT>`.
func (inv Invoker) Movegen(ctx context.Context, fen, outPath string) ([]engine.MoveRecord, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return nil, oraclerr.Wrap(oraclerr.InternalIO, outPath, "create output dir", err)
	}
	if _, err := inv.Runner.Run(ctx, []string{inv.Binary, fen, outPath}); spawnFailed(err) {
		return nil, oraclerr.Wrap(oraclerr.EngineUnavailable, inv.Binary, "spawn movegen engine", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, oraclerr.Wrap(oraclerr.ProtocolViolation, fen, "engine wrote no readable results file", err)
	}
	moves, err := engine.DecodeMovegen(data)
	if err != nil {
		return nil, fmt.Errorf("position %s: %w", fen, err)
	}
	return moves, nil
}

// BestMove runs one search query: `binary <FEN> <depth>`. The engine's
// answer is its trimmed stdout, taken regardless of exit status.
func (inv Invoker) BestMove(ctx context.Context, fen string, depth int) (string, error) {
	stdout, err := inv.Runner.Run(ctx, []string{inv.Binary, fen, strconv.Itoa(depth)})
	if spawnFailed(err) {
		return "", oraclerr.Wrap(oraclerr.EngineUnavailable, inv.Binary, "spawn solver engine", err)
	}
	return strings.TrimSpace(stdout), nil
}

// spawnFailed reports whether err means the engine process never ran, as
// opposed to running and exiting non-zero.
func spawnFailed(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return !errors.As(err, &exitErr)
}
