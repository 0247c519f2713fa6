package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	p := NewPosition()
	fen := p.ToFEN()

	p2 := &Position{}
	must(t, p2.SetFEN(fen))
	if p2.ToFEN() != fen {
		t.Fatalf("FEN round-trip mismatch: got %q want %q", p2.ToFEN(), fen)
	}
	if p2.hash != p.hash {
		t.Fatal("FEN round-trip produced a different hash")
	}
}

func TestSetFENRejectsMalformed(t *testing.T) {
	p := NewPosition()
	cases := []string{
		"",
		"not a fen",
		"7/7/7/7/7/7/7/7/7", // missing side to move
		"7/7/7/7/7/7/7/7 w", // only 8 ranks
		"8/7/7/7/7/7/7/7/7 w", // rank sums to 8, not 7
	}
	for _, c := range cases {
		if err := p.SetFEN(c); err == nil {
			t.Errorf("expected error parsing %q", c)
		}
	}
}

func TestDistanceFieldsMonotonicFromDen(t *testing.T) {
	if landDist[Light][DenSquare(Light)] != 0 {
		t.Fatal("distance from a den to itself should be 0")
	}
	neighborSq := SquareAt(1, CenterC) // directly north of Light's den
	if landDist[Light][neighborSq] != 1 {
		t.Fatalf("expected distance 1, got %d", landDist[Light][neighborSq])
	}
}
