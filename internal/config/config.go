// Package config loads the harness suite configuration. The file is YAML,
// decoded strictly: an unknown key is a typo, not an extension point.
package config

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// Mode selects how perft results are obtained from the engine.
type Mode string

const (
	// ModeCLI spawns one one-shot process per depth and reads a JSON
	// results file.
	ModeCLI Mode = "cli"
	// ModeUCI drives one long-lived process over the line protocol.
	ModeUCI Mode = "uci"
)

// DefaultShutdownGrace bounds how long a protocol-mode engine may take to
// exit after quit before it is killed.
const DefaultShutdownGrace = 15 * time.Second

// Engine holds the binary path per oracle role. Only the roles exercised by
// the requested suites need to be set.
type Engine struct {
	Perft   string `yaml:"perft"`
	UCI     string `yaml:"uci"`
	Movegen string `yaml:"movegen"`
	Solver  string `yaml:"solver"`
}

// Fixtures lists the ground-truth files per suite.
type Fixtures struct {
	Perft    []string `yaml:"perft"`
	Legality []string `yaml:"legality"`
	BestMove []string `yaml:"bestmove"`
}

// Config is the top-level suite configuration document.
type Config struct {
	Version       string   `yaml:"version"`
	Mode          Mode     `yaml:"mode"`
	Engine        Engine   `yaml:"engine"`
	ShutdownGrace string   `yaml:"shutdown_grace"`
	Jobs          int      `yaml:"jobs"`
	Fixtures      Fixtures `yaml:"fixtures"`
	ReportDir     string   `yaml:"report_dir"`

	grace time.Duration
}

// Grace returns the parsed shutdown grace, defaulted when the document
// omits it.
func (c *Config) Grace() time.Duration {
	if c.grace == 0 {
		return DefaultShutdownGrace
	}
	return c.grace
}

// Load decodes and validates a suite configuration document.
func Load(path string, r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, oraclerr.Wrap(oraclerr.InternalIO, path, "read config", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "decode config yaml", err)
	}
	if err := ensureSingleYAMLDocument(dec); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "decode config yaml", err)
	}
	if err := Validate(&c); err != nil {
		return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "validate config", err)
	}
	if c.ShutdownGrace != "" {
		grace, err := time.ParseDuration(c.ShutdownGrace)
		if err != nil {
			return nil, oraclerr.Wrap(oraclerr.MalformedFixture, path, "parse shutdown_grace", err)
		}
		if grace <= 0 {
			return nil, oraclerr.New(oraclerr.MalformedFixture, path, "shutdown_grace must be positive")
		}
		c.grace = grace
	}
	return &c, nil
}

func ensureSingleYAMLDocument(dec *yaml.Decoder) error {
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("unexpected trailing yaml document")
		}
		return fmt.Errorf("decode trailing yaml document: %w", err)
	}
	return nil
}

// Validate checks config semantics: every suite with fixtures configured
// must also name the engine binary that serves it.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	switch c.Mode {
	case ModeCLI, ModeUCI:
	case "":
		return fmt.Errorf("mode is required")
	default:
		return fmt.Errorf("unsupported mode %q (want %q or %q)", c.Mode, ModeCLI, ModeUCI)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs cannot be negative")
	}
	if c.Jobs > 1 && c.Mode == ModeUCI {
		// One protocol session is one ordered conversation; overlapping
		// perft requests on it would interleave answer blocks.
		return fmt.Errorf("jobs above 1 requires cli mode")
	}
	if len(c.Fixtures.Perft)+len(c.Fixtures.Legality)+len(c.Fixtures.BestMove) == 0 {
		return fmt.Errorf("at least one fixture list must be non-empty")
	}
	if len(c.Fixtures.Perft) > 0 {
		if c.Mode == ModeCLI && c.Engine.Perft == "" {
			return fmt.Errorf("engine.perft is required for perft fixtures in cli mode")
		}
		if c.Mode == ModeUCI && c.Engine.UCI == "" {
			return fmt.Errorf("engine.uci is required for perft fixtures in uci mode")
		}
	}
	if len(c.Fixtures.Legality) > 0 && c.Engine.Movegen == "" {
		return fmt.Errorf("engine.movegen is required for legality fixtures")
	}
	if len(c.Fixtures.BestMove) > 0 && c.Engine.Solver == "" {
		return fmt.Errorf("engine.solver is required for bestmove fixtures")
	}
	return nil
}
