// Package search implements the alpha-beta (negamax) search with
// quiescence, transposition-table-driven cutoffs, null-move pruning, late
// move reductions, killer/history move ordering, and iterative deepening
// with aspiration windows. Grounded on the teacher's negamax/quiesce/search
// trio: same order of node checks, same aspiration widening loop, same
// killer/history update on a beta cutoff, same PV-by-slice-copy.
package search

import (
	"time"

	"github.com/notune/jungine/internal/board"
	"github.com/notune/jungine/internal/eval"
	"github.com/notune/jungine/internal/tt"
)

// MaxPly bounds recursion depth and the fixed-size PV/killer tables.
const MaxPly = 128

// nodeCheckMask matches the teacher's NodeCheckMaskSearch: sample the stop
// flag and the clock every 4096 nodes rather than on every single one.
const nodeCheckMask = 4095

// Search owns the heuristic tables and PV scratch space for one engine
// instance. It is reused across searches within a game; ClearGame wipes it
// for a new one (spec §5: "TT memory is owned by the search object across
// games; it is re-initialized on new game").
type Search struct {
	tt       *tt.Table
	killers  [MaxPly][2]board.Move
	history  [2][board.NumSq][board.NumSq]int
	pvTable  [MaxPly][MaxPly]board.Move
	pvLength [MaxPly]int
	nodes    uint64
	tc       *TimeControl
}

// New wraps an existing transposition table in a Search.
func New(table *tt.Table) *Search {
	return &Search{tt: table}
}

// ClearGame resets heuristic tables and the TT for a new game.
func (s *Search) ClearGame() {
	s.tt.Clear()
	s.killers = [MaxPly][2]board.Move{}
	s.history = [2][board.NumSq][board.NumSq]int{}
}

// SetTTSize reallocates the transposition table and returns the size
// actually achieved in megabytes, which may differ from mb on a fallback.
func (s *Search) SetTTSize(mb int) int {
	s.tt.Resize(mb)
	return s.tt.SizeMB()
}

// Info is one completed iteration's progress report (spec §6).
type Info struct {
	Depth   int
	ScoreCP int
	MateIn  int // non-zero only when this iteration found a mate
	Nodes   uint64
	NPS     uint64
	TimeMs  int64
	PV      []board.Move
}

// Think runs iterative deepening from pos until tc says to stop, reporting
// one Info per completed depth, and returns the best move found.
func (s *Search) Think(pos *board.Position, tc *TimeControl, report func(Info)) board.Move {
	s.tc = tc
	s.nodes = 0
	s.pvLength = [MaxPly]int{}

	var rootBuf [board.MaxMovesPerPosition]board.Move
	rootCount := pos.GenerateMoves(rootBuf[:0])
	var bestMove board.Move
	if rootCount > 0 {
		bestMove = rootBuf[0]
	}
	if rootCount == 0 {
		return board.NoMove
	}

	maxDepth := tc.depth
	if maxDepth <= 0 || maxDepth >= MaxPly {
		maxDepth = MaxPly - 1
	}

	start := time.Now()
	prevScore := 0
	for depth := 1; depth <= maxDepth; depth++ {
		s.pvLength[0] = 0
		iterStart := time.Now()

		var score int
		if depth > 4 {
			score = s.aspirationSearch(pos, depth, prevScore)
		} else {
			score = s.negamax(pos, depth, -tt.Mate, tt.Mate, 0, true, true, board.NoMove)
		}
		if tc.shouldStop() {
			break
		}

		prevScore = score
		if s.pvLength[0] > 0 {
			bestMove = s.pvTable[0][0]
		}

		if report != nil {
			report(s.buildInfo(depth, score, start))
		}

		if abs(score) >= tt.MateScoreGuard {
			break
		}
		if !tc.shouldStartNextIteration(time.Since(iterStart)) {
			break
		}
		if tc.budgetFractionUsed(start) >= 0.45 {
			break
		}
	}
	return bestMove
}

func (s *Search) buildInfo(depth, score int, start time.Time) Info {
	elapsed := time.Since(start)
	var nps uint64
	if elapsed > 0 {
		nps = uint64(float64(s.nodes) / elapsed.Seconds())
	}
	info := Info{
		Depth:  depth,
		Nodes:  s.nodes,
		NPS:    nps,
		TimeMs: elapsed.Milliseconds(),
		PV:     append([]board.Move(nil), s.pvTable[0][:s.pvLength[0]]...),
	}
	if abs(score) >= tt.MateScoreGuard {
		matePly := tt.Mate - abs(score)
		mateIn := (matePly + 1) / 2
		if score < 0 {
			mateIn = -mateIn
		}
		info.MateIn = mateIn
	} else {
		info.ScoreCP = score
	}
	return info
}

// aspirationSearch implements spec §4.5.1: an initial window of ±45 around
// the previous iteration's score, widened ×3 on the first failure, and the
// full window on a second.
func (s *Search) aspirationSearch(pos *board.Position, depth, prevScore int) int {
	window := 45
	low, high := prevScore-window, prevScore+window
	fails := 0
	for {
		score := s.negamax(pos, depth, low, high, 0, true, true, board.NoMove)
		if s.tc.shouldStop() {
			return score
		}
		if score <= low || score >= high {
			fails++
			if fails >= 2 {
				low, high = -tt.Mate, tt.Mate
			} else {
				window *= 3
				low, high = prevScore-window, prevScore+window
			}
			continue
		}
		return score
	}
}

// negamax implements the node logic of spec §4.5.2, in the order specified
// there. isPV marks a principal-variation node (full-window search);
// allowNull forbids a second consecutive null move.
func (s *Search) negamax(pos *board.Position, depth, alpha, beta, ply int, isPV, allowNull bool, prevMove board.Move) int {
	s.nodes++
	if s.nodes&nodeCheckMask == 0 && s.tc.shouldStop() {
		return 0
	}

	// 1. Terminal.
	if result := pos.CheckGameOver(); result != board.Ongoing {
		switch result {
		case board.WinForSTM:
			return tt.Mate - ply
		case board.LossForSTM:
			return -(tt.Mate - ply)
		default:
			return 0
		}
	}

	// 2. Draw.
	if ply > 0 {
		if pos.IsRepetition() {
			return 0
		}
		if pos.HalfmoveClock() >= 200 {
			return 0
		}
	}

	// 3. Ply cap.
	if ply >= MaxPly-1 {
		return eval.Evaluate(pos)
	}

	// 4. Depth 0 -> quiescence.
	if depth <= 0 {
		return s.quiesce(pos, alpha, beta, ply)
	}

	// 5. TT probe.
	origAlpha := alpha
	hashMove := board.NoMove
	if move, score, ttDepth, flag, ok := s.tt.Probe(pos.Hash()); ok {
		hashMove = board.Move(move)
		if ttDepth >= depth {
			adjScore := tt.AdjustForProbe(score, ply)
			switch flag {
			case tt.Exact:
				return adjScore
			case tt.Alpha:
				if adjScore <= alpha {
					return adjScore
				}
			case tt.Beta:
				if adjScore >= beta {
					return adjScore
				}
			}
		}
	}

	// 6. Static eval and danger flag.
	staticEval := eval.Evaluate(pos)
	stm := pos.SideToMove()
	inDanger := inDangerFor(pos, stm)

	// 7. Razoring.
	if !isPV && !inDanger && depth <= 2 && staticEval+300*depth <= alpha {
		score := s.quiesce(pos, alpha, beta, ply)
		if score <= alpha {
			return score
		}
	}

	// 8. Reverse futility pruning.
	if !isPV && !inDanger && depth <= 3 && isFarFromMate(beta) && staticEval-120*depth >= beta {
		return staticEval - 120*depth
	}

	// 9. Null-move pruning.
	if !isPV && allowNull && depth >= 3 && !inDanger && staticEval >= beta &&
		pos.PieceCount(stm) >= 2 && isFarFromMate(beta) {
		r := 3 + depth/6
		pos.MakeNullMove()
		score := -s.negamax(pos, depth-1-r, -beta, -beta+1, ply+1, false, false, board.NoMove)
		pos.UnmakeNullMove()
		if score >= beta {
			if score > tt.MateScoreGuard {
				score = beta
			}
			return score
		}
	}

	// 10. Internal iterative deepening.
	if isPV && hashMove == board.NoMove && depth >= 4 {
		s.negamax(pos, depth-2, alpha, beta, ply, true, true, prevMove)
		if move, _, _, _, ok := s.tt.Probe(pos.Hash()); ok {
			hashMove = board.Move(move)
		}
	}

	// 11. Generate moves.
	var buf [board.MaxMovesPerPosition]board.Move
	n := pos.GenerateMoves(buf[:0])
	if n == 0 {
		return -(tt.Mate - ply)
	}
	moves := buf[:n]
	s.orderMoves(pos, moves, hashMove, ply)

	// 12. Move loop.
	var quietsTried [board.MaxMovesPerPosition]board.Move
	quietCount := 0
	bestScore := -tt.Mate
	bestMove := board.NoMove

	for moveIdx, m := range moves {
		if s.nodes&nodeCheckMask == 0 && s.tc.shouldStop() {
			return 0
		}

		to := m.To()
		if board.IsEnemyDen(to, stm) {
			s.pvTable[ply][0] = m
			s.pvLength[ply] = 1
			score := tt.Mate - ply
			s.tt.Store(pos.Hash(), uint16(m), tt.AdjustForStore(score, ply), depth, tt.Exact)
			return score
		}

		_, victim, isCapture := pos.At(to)
		isQuiet := !isCapture

		ext := 0
		if inDanger {
			ext = 1
		}
		if isCapture && victim >= board.Tiger {
			ext = 1
		}

		if moveIdx > 0 && !isPV && !inDanger && depth <= 2 && isQuiet && staticEval+150*depth <= alpha {
			continue
		}

		if isQuiet {
			quietsTried[quietCount] = m
			quietCount++
		}

		pos.MakeMove(m)
		childDepth := depth - 1 + ext

		var score int
		switch {
		case moveIdx == 0:
			score = -s.negamax(pos, childDepth, -beta, -alpha, ply+1, isPV, true, m)
		default:
			reduction := 0
			if isQuiet && !inDanger && depth >= 3 && moveIdx >= 2 {
				reduction = lmrReduction(depth, moveIdx)
				if isPV && reduction > 0 {
					reduction--
				}
				if childDepth-reduction < 0 {
					reduction = childDepth
				}
			}
			score = -s.negamax(pos, childDepth-reduction, -alpha-1, -alpha, ply+1, false, true, m)
			if score > alpha && reduction > 0 {
				score = -s.negamax(pos, childDepth, -alpha-1, -alpha, ply+1, false, true, m)
			}
			if isPV && score > alpha && score < beta {
				score = -s.negamax(pos, childDepth, -beta, -alpha, ply+1, true, true, m)
			}
		}
		pos.UnmakeMove()

		if s.tc.shouldStop() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			s.pvTable[ply][0] = m
			copy(s.pvTable[ply][1:], s.pvTable[ply+1][:s.pvLength[ply+1]])
			s.pvLength[ply] = 1 + s.pvLength[ply+1]
		}
		if score >= beta {
			if isQuiet {
				k := &s.killers[ply]
				if m != k[0] {
					k[1] = k[0]
					k[0] = m
				}
				bonus := depth * depth
				s.history[stm][m.From()][m.To()] += bonus
				for i := 0; i < quietCount-1; i++ {
					qm := quietsTried[i]
					s.history[stm][qm.From()][qm.To()] -= bonus
				}
			}
			s.tt.Store(pos.Hash(), uint16(m), tt.AdjustForStore(score, ply), depth, tt.Beta)
			return score
		}
	}

	// 13. Store.
	flag := tt.Exact
	if bestScore <= origAlpha {
		flag = tt.Alpha
	}
	s.tt.Store(pos.Hash(), uint16(bestMove), tt.AdjustForStore(bestScore, ply), depth, flag)
	return bestScore
}

// quiesce implements spec §4.5.4: stand pat, captures (and den-entering
// moves) only, delta pruning, same ordering key function with no hash move.
func (s *Search) quiesce(pos *board.Position, alpha, beta, ply int) int {
	s.nodes++
	if s.nodes&nodeCheckMask == 0 && s.tc.shouldStop() {
		return alpha
	}
	if ply >= MaxPly-1 {
		return eval.Evaluate(pos)
	}
	if result := pos.CheckGameOver(); result != board.Ongoing {
		switch result {
		case board.WinForSTM:
			return tt.Mate - ply
		case board.LossForSTM:
			return -(tt.Mate - ply)
		default:
			return 0
		}
	}

	standPat := eval.Evaluate(pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	var buf [board.MaxMovesPerPosition]board.Move
	n := pos.GenerateCaptures(buf[:0])
	moves := buf[:n]
	s.orderMoves(pos, moves, board.NoMove, ply)

	stm := pos.SideToMove()
	for _, m := range moves {
		to := m.To()
		if board.IsEnemyDen(to, stm) {
			return tt.Mate - ply
		}
		_, victim, _ := pos.At(to)
		if standPat+eval.MaterialValue(victim)+200 < alpha {
			continue
		}
		pos.MakeMove(m)
		score := -s.quiesce(pos, -beta, -alpha, ply+1)
		pos.UnmakeMove()
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// orderMoves sorts moves in place, highest key first, by repeated
// insertion (spec §4.5.3: "selection-sort by key, not full sort" — move
// counts per node are small enough that either reads the same).
func (s *Search) orderMoves(pos *board.Position, moves []board.Move, hashMove board.Move, ply int) {
	stm := pos.SideToMove()
	var keys [board.MaxMovesPerPosition]int
	for i, m := range moves {
		keys[i] = s.moveKey(pos, m, hashMove, ply, stm)
	}
	for i := 1; i < len(moves); i++ {
		km, ks := moves[i], keys[i]
		j := i - 1
		for j >= 0 && keys[j] < ks {
			moves[j+1] = moves[j]
			keys[j+1] = keys[j]
			j--
		}
		moves[j+1] = km
		keys[j+1] = ks
	}
}

func (s *Search) moveKey(pos *board.Position, m, hashMove board.Move, ply int, stm board.Color) int {
	if m == hashMove {
		return 1_000_000
	}
	to := m.To()
	if board.IsEnemyDen(to, stm) {
		return 900_000
	}
	if _, victim, ok := pos.At(to); ok {
		_, attacker, _ := pos.At(m.From())
		return 500_000 + 10*eval.MaterialValue(victim) - eval.MaterialValue(attacker)
	}
	k := s.killers[ply]
	if m == k[0] {
		return 400_000
	}
	if m == k[1] {
		return 399_000
	}
	return s.history[stm][m.From()][m.To()]
}

func inDangerFor(pos *board.Position, stm board.Color) bool {
	den := board.DenSquare(stm)
	opp := stm.Other()
	for r := board.Rank(1); r <= board.NumRanks; r++ {
		sq := pos.PieceSquare(opp, r)
		if sq == board.NoSquare {
			continue
		}
		if manhattan(sq, den) <= 2 {
			return true
		}
	}
	return false
}

func isFarFromMate(score int) bool {
	return score > -tt.MateScoreGuard && score < tt.MateScoreGuard
}

func manhattan(a, b board.Square) int {
	return abs(a.Row()-b.Row()) + abs(a.Col()-b.Col())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
