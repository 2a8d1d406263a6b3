package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/lattice-substrate/chess-oracle/internal/engine"
	"github.com/lattice-substrate/chess-oracle/oraclerr"
)

// ReadySentinel bounds the handshake phase: all output before this line is
// greeting and option noise to be discarded.
const ReadySentinel = "uciok"

// DefaultShutdownGrace is how long Close waits after `quit` before
// force-terminating the engine.
const DefaultShutdownGrace = 15 * time.Second

// procHandle is the slice of process control a session needs.
type procHandle interface {
	Wait() error
	Kill() error
}

type osProc struct {
	cmd *exec.Cmd
}

func (p osProc) Wait() error { return p.cmd.Wait() }
func (p osProc) Kill() error { return p.cmd.Process.Kill() }

// Session owns one long-lived engine process for the duration of a suite.
// Command/response ordering is strictly request-then-response: a second
// command must not be sent before the first's output block is fully
// consumed, or the two outputs interleave and corrupt parsing. Session is
// therefore not safe for concurrent use.
type Session struct {
	in    *bufio.Writer
	out   *bufio.Scanner
	proc  procHandle
	grace time.Duration
	dec   engine.BlockDecoder
}

// StartSession spawns the engine binary, performs the handshake for the
// given position, and waits for the ready sentinel.
func StartSession(ctx context.Context, binary, fen string, grace time.Duration) (*Session, error) {
	// #nosec G204 -- binary is the operator-supplied engine under test.
	cmd := exec.CommandContext(ctx, binary)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, oraclerr.Wrap(oraclerr.EngineUnavailable, binary, "open engine stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, oraclerr.Wrap(oraclerr.EngineUnavailable, binary, "open engine stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, oraclerr.Wrap(oraclerr.EngineUnavailable, binary, "spawn engine", err)
	}
	s := newSession(stdin, stdout, osProc{cmd: cmd}, grace)
	if err := s.handshake(fen); err != nil {
		_ = s.proc.Kill()
		_ = s.proc.Wait()
		return nil, err
	}
	return s, nil
}

func newSession(in io.Writer, out io.Reader, proc procHandle, grace time.Duration) *Session {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	return &Session{
		in:    bufio.NewWriter(in),
		out:   bufio.NewScanner(out),
		proc:  proc,
		grace: grace,
		dec:   engine.NewBlockDecoder(),
	}
}

// handshake issues the fixed command sequence and discards all output until
// the ready sentinel is observed.
func (s *Session) handshake(fen string) error {
	for _, cmd := range []string{"uci", "ucinewgame", "position " + fen} {
		if err := s.send(cmd); err != nil {
			return err
		}
	}
	for s.out.Scan() {
		if s.out.Text() == ReadySentinel {
			return nil
		}
	}
	if err := s.out.Err(); err != nil {
		return oraclerr.Wrap(oraclerr.ProtocolViolation, fen, "read handshake output", err)
	}
	return oraclerr.New(oraclerr.ProtocolViolation, fen, "engine output ended before ready sentinel")
}

// Perft issues one perft command and decodes its result block. The read is
// bounded by the block decoder's terminal label.
func (s *Session) Perft(ctx context.Context, depth int) (engine.Counts, error) {
	if err := ctx.Err(); err != nil {
		return engine.Counts{}, err
	}
	if err := s.send(fmt.Sprintf("perft %d", depth)); err != nil {
		return engine.Counts{}, err
	}
	counts, err := s.dec.Decode(s.out)
	if err != nil {
		return engine.Counts{}, fmt.Errorf("depth %d: %w", depth, err)
	}
	return counts, nil
}

// Close asks the engine to quit and allows a bounded grace period for a
// clean exit; if the deadline passes the process is force-terminated. The
// engine's exit status is not part of the verdict, so a non-zero exit after
// quit is not an error.
func (s *Session) Close() error {
	_ = s.send("quit")
	done := make(chan error, 1)
	go func() {
		done <- s.proc.Wait()
	}()
	select {
	case <-done:
		return nil
	case <-time.After(s.grace):
		if err := s.proc.Kill(); err != nil {
			return oraclerr.Wrap(oraclerr.InternalError, "", "terminate unresponsive engine", err)
		}
		<-done
		return nil
	}
}

func (s *Session) send(cmd string) error {
	if _, err := s.in.WriteString(cmd + "\n"); err != nil {
		return oraclerr.Wrap(oraclerr.EngineUnavailable, cmd, "write engine command", err)
	}
	if err := s.in.Flush(); err != nil {
		return oraclerr.Wrap(oraclerr.EngineUnavailable, cmd, "write engine command", err)
	}
	return nil
}
