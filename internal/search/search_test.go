package search

import (
	"testing"

	"github.com/notune/jungine/internal/board"
	"github.com/notune/jungine/internal/tt"
)

func newSearch() *Search {
	return New(tt.New(1))
}

func TestThinkFindsImmediateDenWin(t *testing.T) {
	p := &board.Position{}
	if err := p.SetFEN("7/3D3/7/7/7/7/7/7/e6 w"); err != nil {
		t.Fatalf("SetFEN: %v", err)
	}
	s := newSearch()
	tc := NewTimeControl(3, 0, 0, 0, false, true)

	want := board.NewMove(board.SquareAt(7, 3), board.SquareAt(8, 3))
	got := s.Think(p, tc, nil)
	if got != want {
		t.Fatalf("expected the immediate den-winning move %v, got %v", want, got)
	}
}

func TestThinkReturnsLegalMoveFromStartPosition(t *testing.T) {
	p := board.NewPosition()
	s := newSearch()
	tc := NewTimeControl(2, 0, 0, 0, false, true)

	move := s.Think(p, tc, nil)
	if move == board.NoMove {
		t.Fatal("expected a legal move from the start position")
	}
	var buf [board.MaxMovesPerPosition]board.Move
	n := p.GenerateMoves(buf[:0])
	found := false
	for _, m := range buf[:n] {
		if m == move {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("returned move %v is not legal in the start position", move)
	}
}

func TestQuiesceStandPatRespectsBeta(t *testing.T) {
	p := board.NewPosition()
	s := newSearch()
	s.tc = NewTimeControl(0, 10_000, 0, 0, false, true)
	score := s.quiesce(p, -1000, -999, 0)
	if score < -999 {
		t.Fatalf("stand pat at or above beta should fail high, got %d below beta", score)
	}
}

func TestLMRReductionIsMonotonicInDepth(t *testing.T) {
	if lmrReduction(3, 5) > lmrReduction(10, 5) {
		t.Fatal("reduction should not shrink as depth grows at a fixed move index")
	}
}

func TestLMRReductionNeverNegative(t *testing.T) {
	for d := 1; d < lmrTableSize; d++ {
		for i := 1; i < lmrTableSize; i++ {
			if lmrReduction(d, i) < 0 {
				t.Fatalf("negative reduction at d=%d i=%d", d, i)
			}
		}
	}
}

func TestInDangerForDetectsCloseOpponentPiece(t *testing.T) {
	p := &board.Position{}
	// A Dark piece adjacent to Light's den (row0,col3) puts Light in danger.
	if err := p.SetFEN("7/7/7/7/7/7/7/3d3/e6 w"); err != nil {
		t.Fatalf("SetFEN: %v", err)
	}
	if !inDangerFor(p, board.Light) {
		t.Fatal("expected Light to be in danger with a Dark piece one step from its den")
	}
}

func TestClearGameResetsHeuristics(t *testing.T) {
	s := newSearch()
	s.history[board.Light][0][1] = 500
	s.killers[2][0] = board.NewMove(1, 2)
	s.ClearGame()
	if s.history[board.Light][0][1] != 0 {
		t.Fatal("expected history to be cleared")
	}
	if s.killers[2][0] != board.NoMove {
		t.Fatal("expected killers to be cleared")
	}
}
