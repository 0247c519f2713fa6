// Package eval implements the static evaluator for a Jungle position: an
// integer centipawn-scale score from the side-to-move's perspective,
// summing material/piece-square, den-proximity, trap-control, RAT/ELEPHANT
// threat, den-safety, piece-count, and endgame terms. Grounded on the
// teacher's evaluate()/evalPawns/evalMobility decomposition (one additive
// sub-evaluator per concern, summed in one function) and on
// original_source's evaluate.h for the shape of the piece-square and
// den-threat terms; the concrete weights follow spec §4.3.
package eval

import "github.com/notune/jungine/internal/board"

// Material values, centipawn scale (spec §4.3).
var materialValue = [board.NumRanks + 1]int{
	0,
	400, // RAT
	250, // CAT
	300, // DOG
	450, // WOLF
	650, // LEOPARD
	950, // TIGER
	1050, // LION
	1000, // ELEPHANT
}

// MaterialValue returns the centipawn material value of rank r, for use by
// the search's move ordering (MVV/LVA) and quiescence delta pruning.
func MaterialValue(r board.Rank) int {
	return materialValue[r]
}

// Den-proximity tiers, BFS distance -> bonus (spec §4.3 item 2).
func denProximityTier(d int) int {
	switch {
	case d <= 1:
		return 250
	case d <= 2:
		return 120
	case d <= 3:
		return 60
	case d <= 5:
		return 20
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func manhattan(a, b board.Square) int {
	return abs(a.Row()-b.Row()) + abs(a.Col()-b.Col())
}

// pieceSquareBonus combines the forward-advancement gradient, the
// center-column gradient, an extra RAT bonus on water, an extra LION/TIGER
// bonus on river-edge jump origins, and a steep bonus for squares within
// land-BFS distance 8 of the opponent den. The same table is mirrored for
// Dark by indexing NumSq-1-s (spec §4.3 item 1).
func pieceSquareBonus(s board.Square, c board.Color, r board.Rank) int {
	idx := s
	if c == board.Dark {
		idx = board.Square(board.NumSq) - 1 - s
	}
	forward := idx.Row() * 5
	center := (3 - abs(idx.Col()-3)) * 6
	bonus := forward + center

	if d := board.LandDistanceToDen(s, c.Other()); d <= 8 {
		bonus += (8 - d) * 6
	}

	switch r {
	case board.Rat:
		bonus /= 2
		if board.IsWater(s) {
			bonus += 25
		}
	case board.Lion, board.Tiger:
		if board.HasJump(s) {
			bonus += 30
		}
	}
	return bonus
}

// Evaluate returns the static score of pos from the side-to-move's
// perspective. Terminal positions are handled by the search via
// CheckGameOver, not here (spec §4.3).
func Evaluate(pos *board.Position) int {
	stm := pos.SideToMove()
	opp := stm.Other()

	absScore := 0 // Light-positive; negated for Dark at the end.

	for c := board.Color(0); c < 2; c++ {
		sign := 1
		if c == board.Dark {
			sign = -1
		}
		for r := board.Rank(1); r <= board.NumRanks; r++ {
			s := pos.PieceSquare(c, r)
			if s == board.NoSquare {
				continue
			}

			value := materialValue[r] + pieceSquareBonus(s, c, r)
			absScore += sign * value

			tier := denProximityTier(board.DenDistance(s, c.Other(), r))
			absScore += sign * tier

			if board.IsEnemyTrap(s, c) {
				absScore -= sign * (materialValue[r] / 3)
			}
		}
	}

	absScore += (pos.PieceCount(board.Light) - pos.PieceCount(board.Dark)) * 30

	score := absScore
	if stm == board.Dark {
		score = -absScore
	}

	score += ratElephantDynamics(pos, stm, opp)
	score += denSafety(pos, stm, opp)
	score += endgameAccent(pos, stm, opp)

	return score
}

// ratElephantDynamics implements spec §4.3 item 4. It is computed directly
// from the side-to-move's perspective (not mirrored symmetrically) because
// the spec explicitly gives the mirrored term reduced magnitude.
func ratElephantDynamics(pos *board.Position, stm, opp board.Color) int {
	score := 0

	if ourRat, oppEle := pos.PieceSquare(stm, board.Rat), pos.PieceSquare(opp, board.Elephant); ourRat != board.NoSquare && oppEle != board.NoSquare {
		score += 40
		d := manhattan(ourRat, oppEle)
		if d <= 2 {
			score += 60
		}
		if d == 1 {
			score += 80
		}
	}

	if oppRat, ourEle := pos.PieceSquare(opp, board.Rat), pos.PieceSquare(stm, board.Elephant); oppRat != board.NoSquare && ourEle != board.NoSquare {
		score -= 20
		d := manhattan(oppRat, ourEle)
		if d <= 2 {
			score -= 30
		}
		if d == 1 {
			score -= 40
		}
	}

	return score
}

// denSafety implements spec §4.3 item 5: opponent pieces close to our own
// den cost us, tiered by Manhattan distance.
func denSafety(pos *board.Position, stm, opp board.Color) int {
	score := 0
	ourDen := board.DenSquare(stm)
	for r := board.Rank(1); r <= board.NumRanks; r++ {
		s := pos.PieceSquare(opp, r)
		if s == board.NoSquare {
			continue
		}
		switch d := manhattan(s, ourDen); {
		case d <= 1:
			score -= 300
		case d == 2:
			score -= 100
		case d == 3:
			score -= 30
		}
	}
	return score
}

// endgameAccent implements spec §4.3 item 7: once total material is low,
// weight our own pieces' den-proximity even more heavily.
func endgameAccent(pos *board.Position, stm, opp board.Color) int {
	total := pos.PieceCount(board.Light) + pos.PieceCount(board.Dark)
	if total > 6 {
		return 0
	}
	score := 0
	for r := board.Rank(1); r <= board.NumRanks; r++ {
		s := pos.PieceSquare(stm, r)
		if s == board.NoSquare {
			continue
		}
		if d := board.DenDistance(s, opp, r); d <= 3 {
			score += (4 - d) * 80
		}
	}
	return score
}
