package board

// MaxMovesPerPosition bounds generateMoves' output (spec §8: "generateMoves
// returns <= 80 moves for any reachable position"). Callers pass a
// fixed-size buffer of at least this length to stay allocation-free.
const MaxMovesPerPosition = 80

var stepDirs = [4]int{DirN, DirS, DirE, DirW}

// CanCapture implements the terrain-aware capture predicate of spec
// §4.2.1. attacker/defender are ranks; from/to are the attacker's current
// square and the defender's square; attackerColor is needed only to test
// the trap rule (a defender standing on a trap owned by the attacker's side
// is weakened).
func CanCapture(attacker, defender Rank, from, to Square, attackerColor Color) bool {
	wf, wt := IsWater(from), IsWater(to)
	if wf != wt {
		return false
	}
	if wf && wt {
		// Only RATs can occupy water; both attacker and defender are RATs.
		return true
	}
	// Both on land from here on. The defender is weakened when standing on
	// a trap owned by the attacker's side, so IsEnemyTrap is asked from the
	// defender's perspective.
	if IsEnemyTrap(to, attackerColor.Other()) {
		return true
	}
	if attacker == Rat && defender == Elephant {
		return true
	}
	if attacker == Elephant && defender == Rat {
		return false
	}
	return attacker >= defender
}

// GenerateMoves appends every legal move for the side to move into buf
// (which must have spare capacity) and returns the number of moves
// appended. buf may be
// passed as buf[:0] on a pre-allocated fixed array.
func (p *Position) GenerateMoves(buf []Move) int {
	return p.generate(buf, false)
}

// GenerateCaptures appends only captures (moves whose destination square
// holds an enemy piece) and den-entering moves, used by quiescence.
func (p *Position) GenerateCaptures(buf []Move) int {
	return p.generate(buf, true)
}

func (p *Position) generate(buf []Move, capturesOnly bool) int {
	side := p.sideToMove
	n := len(buf)

	for r := Rank(1); r <= NumRanks; r++ {
		from := p.pieceSquare[side][r]
		if from == NoSquare {
			continue
		}

		for _, d := range stepDirs {
			if !stepInBounds(from, d) {
				continue
			}
			to := from + Square(d)
			if mv, ok := p.tryStep(side, r, from, to); ok {
				if !capturesOnly || isCaptureOrDenEntry(p, side, to) {
					buf = append(buf, mv)
				}
			}
		}

		if r == Lion || r == Tiger {
			if dest := jumpDest[from]; dest != NoSquare && !p.jumpBlocked(from) {
				if mv, ok := p.tryStep(side, r, from, dest); ok {
					if !capturesOnly || isCaptureOrDenEntry(p, side, dest) {
						buf = append(buf, mv)
					}
				}
			}
		}
	}
	return len(buf) - n
}

// Perft counts leaf positions reachable in exactly depth plies, used by the
// external loop's `perft` command and by tests to validate the generator
// against known node counts (spec §8).
func (p *Position) Perft(depth int) int {
	if depth == 0 {
		return 1
	}
	var buf [MaxMovesPerPosition]Move
	n := p.GenerateMoves(buf[:0])
	if depth == 1 {
		return n
	}
	total := 0
	for _, m := range buf[:n] {
		p.MakeMove(m)
		total += p.Perft(depth - 1)
		p.UnmakeMove()
	}
	return total
}

// PerftLine is one root move's contribution to a PerftDivide count.
type PerftLine struct {
	Move  Move
	Nodes int
}

// PerftDivide returns the leaf count contributed by each root move, for the
// `divide` command's per-branch node-count diagnostic.
func (p *Position) PerftDivide(depth int) []PerftLine {
	var buf [MaxMovesPerPosition]Move
	n := p.GenerateMoves(buf[:0])
	out := make([]PerftLine, 0, n)
	for _, m := range buf[:n] {
		p.MakeMove(m)
		nodes := p.Perft(depth - 1)
		p.UnmakeMove()
		out = append(out, PerftLine{m, nodes})
	}
	return out
}

func isCaptureOrDenEntry(p *Position, side Color, to Square) bool {
	if _, _, ok := p.At(to); ok {
		return true
	}
	return IsEnemyDen(to, side)
}

// jumpBlocked reports whether any piece (of either color) occupies one of
// the water squares a jump from `from` must cross. Spec §4.2/§9: the
// conservative "any piece blocks" rule is kept even though only a RAT can
// physically be in the water.
func (p *Position) jumpBlocked(from Square) bool {
	for _, w := range jumpBlockers[from] {
		if _, _, ok := p.At(w); ok {
			return true
		}
	}
	return false
}

// tryStep evaluates one candidate destination (a single step, or a jump
// landing square) for a piece of rank r/color side moving from `from` to
// `to`, applying the water-access, own-den, and capture rules. Returns the
// move and whether it is legal.
func (p *Position) tryStep(side Color, r Rank, from, to Square) (Move, bool) {
	if IsWater(to) && r != Rat {
		return 0, false
	}
	if IsOwnDen(to, side) {
		return 0, false
	}
	if c, dr, ok := p.At(to); ok {
		if c == side {
			return 0, false
		}
		if !CanCapture(r, dr, from, to, side) {
			return 0, false
		}
	}
	return NewMove(from, to), true
}
