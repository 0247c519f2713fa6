package tt

import "testing"

func TestStoreThenProbeRoundTrips(t *testing.T) {
	table := New(1)
	table.Store(0x1234, 42, 17, 5, Exact)

	move, score, depth, flag, ok := table.Probe(0x1234)
	if !ok {
		t.Fatal("expected a hit")
	}
	if move != 42 || score != 17 || depth != 5 || flag != Exact {
		t.Fatalf("got move=%d score=%d depth=%d flag=%v", move, score, depth, flag)
	}
}

func TestProbeMissOnDifferentKey(t *testing.T) {
	table := New(1)
	table.Store(0x1, 1, 1, 1, Exact)
	if _, _, _, _, ok := table.Probe(0x2); ok {
		t.Fatal("expected a miss for a different key")
	}
}

func TestReplacementPolicyKeepsDeeperEntry(t *testing.T) {
	table := New(1)
	// Force a same-slot collision by using keys that share low bits.
	size := uint64(table.mask) + 1
	keyA := uint64(7)
	keyB := keyA + size

	table.Store(keyA, 1, 100, 10, Exact)
	table.Store(keyB, 2, 200, 3, Exact) // shallower, different key: must not replace

	move, score, depth, _, ok := table.Probe(keyA)
	if !ok || move != 1 || score != 100 || depth != 10 {
		t.Fatalf("shallower store should not have evicted the deeper entry: move=%d score=%d depth=%d ok=%v", move, score, depth, ok)
	}

	table.Store(keyB, 2, 200, 20, Exact) // deeper now: must replace
	move, score, depth, _, ok = table.Probe(keyB)
	if !ok || move != 2 || score != 200 || depth != 20 {
		t.Fatalf("deeper store should have replaced: move=%d score=%d depth=%d ok=%v", move, score, depth, ok)
	}
}

func TestClearWipesEntries(t *testing.T) {
	table := New(1)
	table.Store(0x1, 1, 1, 1, Exact)
	table.Clear()
	if _, _, _, _, ok := table.Probe(0x1); ok {
		t.Fatal("expected no entries after Clear")
	}
}

func TestMateDistanceAdjustmentRoundTrips(t *testing.T) {
	cases := []struct {
		score, storedAtPly, probedAtPly int
	}{
		{Mate - 3, 3, 3},
		{Mate - 3, 3, 7},
		{-(Mate - 5), 5, 5},
		{-(Mate - 5), 5, 1},
		{15, 4, 9}, // ordinary score: untouched regardless of ply
	}
	for _, c := range cases {
		stored := AdjustForStore(c.score, c.storedAtPly)
		got := AdjustForProbe(stored, c.probedAtPly)
		want := c.score
		switch {
		case c.score > MateScoreGuard:
			want = c.score + c.storedAtPly - c.probedAtPly
		case c.score < -MateScoreGuard:
			want = c.score - c.storedAtPly + c.probedAtPly
		}
		if got != want {
			t.Fatalf("score=%d storedAtPly=%d probedAtPly=%d: got %d want %d", c.score, c.storedAtPly, c.probedAtPly, got, want)
		}
	}
}

func TestNewFallsBackOnAbsurdSize(t *testing.T) {
	table := New(1 << 30) // would request an impossible allocation
	if table == nil || len(table.entries) == 0 {
		t.Fatal("expected a usable fallback table")
	}
}

func TestSizeMBReflectsActualAllocation(t *testing.T) {
	table := New(4)
	if got := table.SizeMB(); got != 4 {
		t.Fatalf("SizeMB() = %d, want 4", got)
	}
	if got := table.SizeBytes(); got != 4*1024*1024 {
		t.Fatalf("SizeBytes() = %d, want %d", got, 4*1024*1024)
	}
}

func TestResizeZeroFallsBackToDefaultLikeNew(t *testing.T) {
	table := New(4)
	table.Resize(0)
	if got := table.SizeMB(); got != defaultSizeMB {
		t.Fatalf("Resize(0) SizeMB() = %d, want the default %d", got, defaultSizeMB)
	}
}
