package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lattice-substrate/chess-oracle/internal/config"
	"github.com/lattice-substrate/chess-oracle/internal/driver"
	"github.com/lattice-substrate/chess-oracle/internal/fixture"
	"github.com/lattice-substrate/chess-oracle/internal/suite"
)

const defaultConfigPath = "oracle.yaml"

// cmdSuite runs every suite the config file enables, in fixed order: perft,
// then legality, then bestmove. All suites run even when an earlier one
// fails; only a run-level error stops the remainder.
func cmdSuite(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fl, positional, err := parseFlags(args)
	if err != nil {
		return usageError(stderr, err.Error())
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: chess-oracle suite [--config FILE] [--out DIR]")
		return 0
	}
	if len(positional) > 0 {
		return usageError(stderr, "suite takes no positional arguments")
	}
	path := fl.config
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return fail(stderr, err)
	}

	var total suite.Tally
	runners := []struct {
		name     string
		engine   string
		fixtures []string
		run      func() (suite.Tally, error)
	}{
		{"perft", perftEngine(cfg), cfg.Fixtures.Perft, func() (suite.Tally, error) {
			return runPerftSuite(ctx, cfg, fl.out, stdout, stderr)
		}},
		{"legality", cfg.Engine.Movegen, cfg.Fixtures.Legality, func() (suite.Tally, error) {
			return runLegalitySuite(ctx, cfg, fl.out, stdout)
		}},
		{"bestmove", cfg.Engine.Solver, cfg.Fixtures.BestMove, func() (suite.Tally, error) {
			return runBestMoveSuite(ctx, cfg, stdout)
		}},
	}
	for _, r := range runners {
		if len(r.fixtures) == 0 {
			continue
		}
		writeHeader(stdout, r.name)
		tally, err := r.run()
		if err != nil {
			return fail(stderr, err)
		}
		if cfg.ReportDir != "" {
			reportPath := filepath.Join(cfg.ReportDir, r.name+".json")
			if err := suite.WriteReport(reportPath, suite.BuildReport(r.name, r.engine, tally)); err != nil {
				return fail(stderr, err)
			}
		}
		total = total.Merge(tally)
	}
	suite.WriteSummary(stdout, "test units", total)
	return total.ExitCode()
}

func loadConfig(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return config.Load(path, f)
}

func writeHeader(w io.Writer, name string) {
	fmt.Fprintf(w, "[suite] running %s\n", name)
}

func perftEngine(cfg *config.Config) string {
	if cfg.Mode == config.ModeUCI {
		return cfg.Engine.UCI
	}
	return cfg.Engine.Perft
}

func runPerftSuite(ctx context.Context, cfg *config.Config, outDir string, stdout, stderr io.Writer) (suite.Tally, error) {
	var total suite.Tally
	for _, path := range cfg.Fixtures.Perft {
		fx, err := fixture.LoadPerft(path)
		if err != nil {
			return total, err
		}
		sess, err := openSuitePerftSession(ctx, cfg, fx.Position, filepath.Join(outDir, fixtureName(path)))
		if err != nil {
			return total, err
		}
		tally, runErr := suite.RunPerft(ctx, fx, sess, suite.PerftOptions{Log: stdout})
		if closeErr := sess.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "warning: engine shutdown: %v\n", closeErr)
		}
		if runErr != nil {
			return total, runErr
		}
		total = total.Merge(tally)
	}
	return total, nil
}

func openSuitePerftSession(ctx context.Context, cfg *config.Config, position, outDir string) (suite.PerftSession, error) {
	if cfg.Mode == config.ModeUCI {
		return driver.StartSession(ctx, cfg.Engine.UCI, position, cfg.Grace())
	}
	fen := position
	if fen == "startpos" {
		fen = ""
	}
	return driver.CLIPerft{
		Invoker: driver.NewInvoker(cfg.Engine.Perft),
		FEN:     fen,
		OutDir:  outDir,
	}, nil
}

func runLegalitySuite(ctx context.Context, cfg *config.Config, outDir string, stdout io.Writer) (suite.Tally, error) {
	fixtures := make([]suite.NamedLegality, 0, len(cfg.Fixtures.Legality))
	for _, path := range cfg.Fixtures.Legality {
		fx, err := fixture.LoadLegality(path)
		if err != nil {
			return suite.Tally{}, err
		}
		fixtures = append(fixtures, suite.NamedLegality{Name: fixtureName(path), Fixture: fx})
	}
	return suite.RunLegality(ctx, fixtures, driver.NewInvoker(cfg.Engine.Movegen), suite.LegalityOptions{
		Jobs:   cfg.Jobs,
		OutDir: outDir,
		Log:    stdout,
	})
}

func runBestMoveSuite(ctx context.Context, cfg *config.Config, stdout io.Writer) (suite.Tally, error) {
	var cases []fixture.BestMoveCase
	for _, path := range cfg.Fixtures.BestMove {
		loaded, err := fixture.LoadBestMove(path)
		if err != nil {
			return suite.Tally{}, err
		}
		cases = append(cases, loaded...)
	}
	return suite.RunBestMove(ctx, cases, driver.NewInvoker(cfg.Engine.Solver), suite.BestMoveOptions{
		Jobs: cfg.Jobs,
		Log:  stdout,
	})
}
