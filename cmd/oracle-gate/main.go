// Command oracle-gate runs the repository's required verification gates in order.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

type gate struct {
	label string
	args  []string
}

// gates run in order; the first failure stops the run. The race pass repeats
// the unit tests because the suite runners fan out engine invocations and a
// data race there would invalidate every verdict.
var gates = []gate{
	{label: "build", args: []string{"build", "./..."}},
	{label: "go vet", args: []string{"vet", "./..."}},
	{label: "unit tests", args: []string{"test", "./...", "-count=1", "-timeout=15m"}},
	{label: "race tests", args: []string{"test", "./...", "-race", "-count=1", "-timeout=20m"}},
}

type commandRunner interface {
	Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error
}

type realRunner struct{}

func (realRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error {
	// #nosec G204 -- command and args are fixed repository gate invocations.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, realRunner{}))
}

func run(args []string, stdout, stderr io.Writer, runner commandRunner) int {
	if len(args) > 0 {
		if args[0] == "--help" || args[0] == "-h" {
			usage(stdout)
			return 0
		}
		fmt.Fprintf(stderr, "error: unknown argument %q\n", args[0])
		usage(stderr)
		return 2
	}

	ctx := context.Background()
	for i, g := range gates {
		fmt.Fprintf(stdout, "[%d/%d] %s\n", i+1, len(gates), g.label)
		if err := runner.Run(ctx, "go", g.args, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "gate failed: %s: %v\n", g.label, err)
			return 1
		}
	}
	fmt.Fprintln(stdout, "all gates passed")
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: go run ./cmd/oracle-gate [--help]")
	fmt.Fprintln(w, "runs: build, vet, unit tests, race tests")
}
