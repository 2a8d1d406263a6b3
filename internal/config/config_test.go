package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lattice-substrate/chess-oracle/internal/config"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

const validDoc = `
version: "1"
mode: cli
engine:
  perft: /opt/engine/perft
  movegen: /opt/engine/movegen
  solver: /opt/engine/solver
shutdown_grace: 10s
jobs: 4
fixtures:
  perft:
    - fixtures/perft/startpos.json
  legality:
    - fixtures/legality/castling.json
  bestmove:
    - fixtures/bestmove/tactics.json
report_dir: out/reports
`

func TestLoadValid(t *testing.T) {
	c, err := config.Load("oracle.yaml", strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Mode != config.ModeCLI || c.Jobs != 4 {
		t.Fatalf("config = %+v", c)
	}
	if c.Grace() != 10*time.Second {
		t.Fatalf("grace = %v", c.Grace())
	}
	if len(c.Fixtures.Perft) != 1 || c.Engine.Perft != "/opt/engine/perft" {
		t.Fatalf("config = %+v", c)
	}
}

func TestLoadDefaultsShutdownGrace(t *testing.T) {
	doc := `
version: "1"
mode: uci
engine:
  uci: /opt/engine/uci
fixtures:
  perft:
    - fixtures/perft/startpos.json
`
	c, err := config.Load("oracle.yaml", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Grace() != config.DefaultShutdownGrace {
		t.Fatalf("grace = %v, want default", c.Grace())
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	doc := strings.Replace(validDoc, "jobs: 4", "jobs: 4\nworkers: 4", 1)
	_, err := config.Load("oracle.yaml", strings.NewReader(doc))
	if err == nil {
		t.Fatal("unknown key must be rejected")
	}
	if got := oraclerr.ClassOf(err); got != oraclerr.MalformedFixture {
		t.Fatalf("class = %s, want MALFORMED_FIXTURE", got)
	}
}

func TestLoadRejectsTrailingDocument(t *testing.T) {
	_, err := config.Load("oracle.yaml", strings.NewReader(validDoc+"---\nversion: \"2\"\n"))
	if err == nil {
		t.Fatal("trailing document must be rejected")
	}
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		c, err := config.Load("oracle.yaml", strings.NewReader(validDoc))
		if err != nil {
			t.Fatalf("load base: %v", err)
		}
		return c
	}
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"ok", func(*config.Config) {}, ""},
		{"missing version", func(c *config.Config) { c.Version = "" }, "version is required"},
		{"bad mode", func(c *config.Config) { c.Mode = "pipe" }, "unsupported mode"},
		{"negative jobs", func(c *config.Config) { c.Jobs = -1 }, "jobs cannot be negative"},
		{"parallel uci", func(c *config.Config) {
			c.Mode = config.ModeUCI
			c.Engine.UCI = "/opt/engine/uci"
		}, "jobs above 1 requires cli mode"},
		{"no fixtures", func(c *config.Config) { c.Fixtures = config.Fixtures{} }, "at least one fixture"},
		{"perft without binary", func(c *config.Config) { c.Engine.Perft = "" }, "engine.perft is required"},
		{"legality without binary", func(c *config.Config) { c.Engine.Movegen = "" }, "engine.movegen is required"},
		{"bestmove without binary", func(c *config.Config) { c.Engine.Solver = "" }, "engine.solver is required"},
	}
	for _, tc := range cases {
		c := base()
		tc.mutate(c)
		err := config.Validate(c)
		if tc.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: error = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestLoadRejectsBadGrace(t *testing.T) {
	for _, grace := range []string{"soon", "-3s", "0s"} {
		doc := strings.Replace(validDoc, "shutdown_grace: 10s", "shutdown_grace: "+grace, 1)
		if _, err := config.Load("oracle.yaml", strings.NewReader(doc)); err == nil {
			t.Errorf("grace %q must be rejected", grace)
		}
	}
}
