// Command chess-oracle checks an external chess engine against ground-truth
// fixtures.
//
// Commands:
//
//	chess-oracle perft --engine BIN [--mode cli|uci] [options] fixture...
//	    Compare the engine's perft statistics against expected values,
//	    depth by depth. A wrong totalNodes aborts deeper depths for that
//	    position.
//
//	chess-oracle legality --engine BIN [options] fixture...
//	    Compare the engine's generated move set for each position against
//	    the expected legal-move set, including resulting positions.
//
//	chess-oracle bestmove --engine BIN [options] fixture...
//	    Compare the engine's best-move answer for each position against
//	    the expected move, by exact notation.
//
//	chess-oracle suite [--config FILE]
//	    Run every suite configured in the YAML config file (default
//	    oracle.yaml) and optionally write canonical report artifacts.
//
// Exit codes:
//
//	0  every test unit passed
//	1  at least one unit failed (engine defect)
//	2  command-line usage error
//	10 harness defect: unreadable fixture, config, or internal I/O
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lattice-substrate/chess-oracle/internal/config"
	"github.com/lattice-substrate/chess-oracle/internal/driver"
	"github.com/lattice-substrate/chess-oracle/internal/fixture"
	"github.com/lattice-substrate/chess-oracle/internal/suite"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

const usageLine = "usage: chess-oracle <perft|legality|bestmove|suite> [options] [fixture...]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usageLine)
		return oraclerr.CLIUsage.ExitCode()
	}
	ctx := context.Background()
	switch args[0] {
	case "perft":
		return cmdPerft(ctx, args[1:], stdout, stderr)
	case "legality":
		return cmdLegality(ctx, args[1:], stdout, stderr)
	case "bestmove":
		return cmdBestMove(ctx, args[1:], stdout, stderr)
	case "suite":
		return cmdSuite(ctx, args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usageLine)
		return oraclerr.CLIUsage.ExitCode()
	}
}

// flags holds the parsed option values shared by all commands; each command
// reads the subset it documents.
type flags struct {
	engine string
	mode   config.Mode
	out    string
	report string
	config string
	jobs   int
	depths []int
	grace  time.Duration
	help   bool
}

// takesValue reports whether the flag consumes the next argument.
func takesValue(arg string) bool {
	switch arg {
	case "--engine", "--mode", "--out", "--report", "--config", "--jobs", "--depth", "--grace":
		return true
	}
	return false
}

func parseFlags(args []string) (flags, []string, error) {
	fl := flags{mode: config.ModeCLI, out: "out", jobs: 1, grace: driver.DefaultShutdownGrace}
	var positional []string
	i := 0
	for i < len(args) {
		arg := args[i]
		i++
		if !takesValue(arg) {
			switch {
			case arg == "-h" || arg == "--help":
				fl.help = true
			case strings.HasPrefix(arg, "-") && arg != "-":
				return fl, nil, fmt.Errorf("unknown flag %s", arg)
			default:
				positional = append(positional, arg)
			}
			continue
		}
		if i >= len(args) {
			return fl, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		v := args[i]
		i++
		switch arg {
		case "--engine":
			fl.engine = v
		case "--mode":
			switch config.Mode(v) {
			case config.ModeCLI, config.ModeUCI:
				fl.mode = config.Mode(v)
			default:
				return fl, nil, fmt.Errorf("unsupported mode %q (want cli or uci)", v)
			}
		case "--out":
			fl.out = v
		case "--report":
			fl.report = v
		case "--config":
			fl.config = v
		case "--jobs":
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fl, nil, fmt.Errorf("invalid --jobs value %q", v)
			}
			fl.jobs = n
		case "--depth":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fl, nil, fmt.Errorf("invalid --depth value %q", v)
			}
			fl.depths = append(fl.depths, n)
		case "--grace":
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fl, nil, fmt.Errorf("invalid --grace value %q", v)
			}
			fl.grace = d
		}
	}
	return fl, positional, nil
}

func usageError(stderr io.Writer, msg string) int {
	fmt.Fprintf(stderr, "error: %s\n", msg)
	fmt.Fprintln(stderr, usageLine)
	return oraclerr.CLIUsage.ExitCode()
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error: %v\n", err)
	return oraclerr.ClassOf(err).ExitCode()
}

// fixtureName derives a per-fixture artifact directory name from its path.
func fixtureName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func cmdPerft(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fl, fixtures, err := parseFlags(args)
	if err != nil {
		return usageError(stderr, err.Error())
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: chess-oracle perft --engine BIN [--mode cli|uci] [--out DIR] [--depth N]... [--grace DUR] [--report FILE] fixture...")
		return 0
	}
	if fl.engine == "" {
		return usageError(stderr, "--engine is required")
	}
	if len(fixtures) == 0 {
		return usageError(stderr, "at least one fixture file is required")
	}

	var total suite.Tally
	for _, path := range fixtures {
		fx, err := fixture.LoadPerft(path)
		if err != nil {
			return fail(stderr, err)
		}
		sess, err := openPerftSession(ctx, fl, fx.Position, fixtureName(path))
		if err != nil {
			return fail(stderr, err)
		}
		tally, runErr := suite.RunPerft(ctx, fx, sess, suite.PerftOptions{Depths: fl.depths, Log: stdout})
		if closeErr := sess.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "warning: engine shutdown: %v\n", closeErr)
		}
		if runErr != nil {
			return fail(stderr, runErr)
		}
		total = total.Merge(tally)
	}
	suite.WriteSummary(stdout, "depths", total)
	if fl.report != "" {
		if err := suite.WriteReport(fl.report, suite.BuildReport("perft", fl.engine, total)); err != nil {
			return fail(stderr, err)
		}
	}
	return total.ExitCode()
}

// openPerftSession returns the per-depth perft source for the configured
// mode: a one-shot CLI adapter or a long-lived protocol session.
func openPerftSession(ctx context.Context, fl flags, position, name string) (suite.PerftSession, error) {
	if fl.mode == config.ModeUCI {
		return driver.StartSession(ctx, fl.engine, position, fl.grace)
	}
	fen := position
	if fen == "startpos" {
		// The CLI engine defaults to the starting position; passing the
		// keyword as a FEN would be rejected.
		fen = ""
	}
	return driver.CLIPerft{
		Invoker: driver.NewInvoker(fl.engine),
		FEN:     fen,
		OutDir:  filepath.Join(fl.out, name),
	}, nil
}

func cmdLegality(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fl, paths, err := parseFlags(args)
	if err != nil {
		return usageError(stderr, err.Error())
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: chess-oracle legality --engine BIN [--out DIR] [--jobs N] [--report FILE] fixture...")
		return 0
	}
	if fl.engine == "" {
		return usageError(stderr, "--engine is required")
	}
	if len(paths) == 0 {
		return usageError(stderr, "at least one fixture file is required")
	}

	fixtures := make([]suite.NamedLegality, 0, len(paths))
	for _, path := range paths {
		fx, err := fixture.LoadLegality(path)
		if err != nil {
			return fail(stderr, err)
		}
		fixtures = append(fixtures, suite.NamedLegality{Name: fixtureName(path), Fixture: fx})
	}
	tally, err := suite.RunLegality(ctx, fixtures, driver.NewInvoker(fl.engine), suite.LegalityOptions{
		Jobs:   fl.jobs,
		OutDir: fl.out,
		Log:    stdout,
	})
	if err != nil {
		return fail(stderr, err)
	}
	suite.WriteSummary(stdout, "test cases", tally)
	if fl.report != "" {
		if err := suite.WriteReport(fl.report, suite.BuildReport("legality", fl.engine, tally)); err != nil {
			return fail(stderr, err)
		}
	}
	return tally.ExitCode()
}

func cmdBestMove(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fl, paths, err := parseFlags(args)
	if err != nil {
		return usageError(stderr, err.Error())
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: chess-oracle bestmove --engine BIN [--jobs N] [--report FILE] fixture...")
		return 0
	}
	if fl.engine == "" {
		return usageError(stderr, "--engine is required")
	}
	if len(paths) == 0 {
		return usageError(stderr, "at least one fixture file is required")
	}

	var cases []fixture.BestMoveCase
	for _, path := range paths {
		loaded, err := fixture.LoadBestMove(path)
		if err != nil {
			return fail(stderr, err)
		}
		cases = append(cases, loaded...)
	}
	tally, err := suite.RunBestMove(ctx, cases, driver.NewInvoker(fl.engine), suite.BestMoveOptions{
		Jobs: fl.jobs,
		Log:  stdout,
	})
	if err != nil {
		return fail(stderr, err)
	}
	suite.WriteSummary(stdout, "test cases", tally)
	if fl.report != "" {
		if err := suite.WriteReport(fl.report, suite.BuildReport("bestmove", fl.engine, tally)); err != nil {
			return fail(stderr, err)
		}
	}
	return tally.ExitCode()
}
