package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLoop() (*Loop, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewLoop(out, errOut), out, errOut
}

func TestUCIHandshake(t *testing.T) {
	l, out, _ := newTestLoop()
	in := strings.NewReader("uci\nquit\n")
	l.Run(in)

	got := out.String()
	if !strings.Contains(got, "id name jungine") {
		t.Fatalf("expected id name line, got %q", got)
	}
	if !strings.Contains(got, "uciok") {
		t.Fatalf("expected uciok, got %q", got)
	}
}

func TestIsReady(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("isready\nquit\n"))
	if !strings.Contains(out.String(), "readyok") {
		t.Fatalf("expected readyok, got %q", out.String())
	}
}

func TestPositionStartposThenMoves(t *testing.T) {
	l, out, _ := newTestLoop()
	// Light's Tiger sits on a1 at the start; a1a2 is a plain forward step.
	l.Run(strings.NewReader("position startpos moves a1a2\nd\nquit\n"))
	if strings.Contains(out.String(), "error") {
		t.Fatalf("expected the move to apply cleanly, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Ply: 1") {
		t.Fatalf("expected display to report the ply reached after one move, got %q", out.String())
	}
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos moves a1d1\nquit\n"))
	if !strings.Contains(out.String(), "illegal move") {
		t.Fatalf("expected an illegal-move report, got %q", out.String())
	}
}

func TestPositionFEN(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position fen 7/3D3/7/7/7/7/7/7/e6 w\nd\nquit\n"))
	if strings.Contains(out.String(), "error") {
		t.Fatalf("expected the fen to be accepted, got %q", out.String())
	}
}

func TestGoDepthReportsBestMove(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos\ngo depth 2\nquit\n"))
	if !strings.Contains(out.String(), "bestmove") {
		t.Fatalf("expected a bestmove line, got %q", out.String())
	}
}

func TestPerftReportsPerDepthCounts(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos\nperft 2\nquit\n"))
	if !strings.Contains(out.String(), "Total") && !strings.Contains(out.String(), "Nodes") {
		t.Fatalf("expected a perft table, got %q", out.String())
	}
}

func TestDivideReportsTotal(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos\ndivide 1\nquit\n"))
	if !strings.Contains(out.String(), "Total:") {
		t.Fatalf("expected a divide total line, got %q", out.String())
	}
}

func TestEvalPrintsScore(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos\neval\nquit\n"))
	if !strings.Contains(out.String(), "Evaluation:") {
		t.Fatalf("expected an evaluation line, got %q", out.String())
	}
}

func TestMovesListsLegalMoves(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("position startpos\nmoves\nquit\n"))
	if !strings.Contains(out.String(), "moves:") {
		t.Fatalf("expected a move list line, got %q", out.String())
	}
}

func TestSetOptionHashResizesTable(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("setoption name Hash value 4\nquit\n"))
	if !strings.Contains(out.String(), "Hash set to 4 MB") {
		t.Fatalf("expected a hash-resize confirmation, got %q", out.String())
	}
}

func TestSetOptionHashDegenerateFallsBackInsteadOfRejecting(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("setoption name Hash value 0\nquit\n"))
	got := out.String()
	if strings.Contains(got, "invalid hash value") {
		t.Fatalf("degenerate hash size must fall back, not reject outright: %q", got)
	}
	if !strings.Contains(got, "falling back to 1 MB") {
		t.Fatalf("expected a fallback notice, got %q", got)
	}
}

func TestSetOptionHashUnparseableFallsBack(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("setoption name Hash value not-a-number\nquit\n"))
	if !strings.Contains(out.String(), "falling back to 1 MB") {
		t.Fatalf("expected a fallback notice, got %q", out.String())
	}
}

func TestUnknownCommandIsReported(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("bogus\nquit\n"))
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected an unknown-command notice, got %q", out.String())
	}
}

func TestParseSetOptionSplitsNameAndValue(t *testing.T) {
	name, value := parseSetOption([]string{"setoption", "name", "Hash", "value", "128"})
	if name != "Hash" || value != "128" {
		t.Fatalf("got name=%q value=%q", name, value)
	}
}

func TestParseSetOptionHandlesMultiWordName(t *testing.T) {
	name, value := parseSetOption([]string{"setoption", "name", "Move", "Overhead", "value", "30"})
	if name != "Move Overhead" || value != "30" {
		t.Fatalf("got name=%q value=%q", name, value)
	}
}

func TestNewGameReportsSessionID(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("ucinewgame\nquit\n"))
	if !strings.Contains(out.String(), "info string session ") {
		t.Fatalf("expected a session id line, got %q", out.String())
	}
}

func TestStopBeforeGoIsANoop(t *testing.T) {
	l, out, _ := newTestLoop()
	l.Run(strings.NewReader("stop\nquit\n"))
	if strings.Contains(out.String(), "panic") {
		t.Fatalf("stop before any search must not panic, got %q", out.String())
	}
}
