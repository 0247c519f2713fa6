package board

// terrainTable is built once at package init and never mutated afterward.
var terrainTable [NumSq]Terrain

// jumpDest[from] is the landing square for a LION/TIGER jump starting at
// from, or -1 if from is not a jump origin. jumpBlockers[from] lists the
// water squares that must be empty for the jump to proceed.
var (
	jumpDest     [NumSq]Square
	jumpBlockers [NumSq][]Square
)

// Distance fields, BFS distance to each side's den under three mobility
// models. landDist/jumperDist/swimmerDist[color][square].
var (
	landDist    [2][NumSq]int
	jumperDist  [2][NumSq]int
	swimmerDist [2][NumSq]int
)

const infDist = 1 << 20

func init() {
	buildTerrain()
	buildJumpTables()
	buildDistanceFields()
}

func buildTerrain() {
	for i := range terrainTable {
		terrainTable[i] = Land
	}
	terrainTable[SquareAt(0, CenterC)] = DenLight
	terrainTable[SquareAt(8, CenterC)] = DenDark

	terrainTable[SquareAt(0, 2)] = TrapLight
	terrainTable[SquareAt(0, 4)] = TrapLight
	terrainTable[SquareAt(1, CenterC)] = TrapLight

	terrainTable[SquareAt(8, 2)] = TrapDark
	terrainTable[SquareAt(8, 4)] = TrapDark
	terrainTable[SquareAt(7, CenterC)] = TrapDark

	for _, r := range []int{3, 4, 5} {
		for _, c := range []int{1, 2, 4, 5} {
			terrainTable[SquareAt(r, c)] = Water
		}
	}
}

func TerrainAt(s Square) Terrain { return terrainTable[s] }

func IsWater(s Square) bool { return terrainTable[s] == Water }

func IsTrap(s Square) bool {
	t := terrainTable[s]
	return t == TrapLight || t == TrapDark
}

// IsEnemyTrap reports whether s is a trap owned by the side opposite c —
// i.e. stepping onto it as c weakens the piece there (spec §4.2.1 rule 3).
func IsEnemyTrap(s Square, c Color) bool {
	t := terrainTable[s]
	if c == Light {
		return t == TrapDark
	}
	return t == TrapLight
}

func IsOwnDen(s Square, c Color) bool {
	t := terrainTable[s]
	if c == Light {
		return t == DenLight
	}
	return t == DenDark
}

func IsEnemyDen(s Square, c Color) bool {
	t := terrainTable[s]
	if c == Light {
		return t == DenDark
	}
	return t == DenLight
}

func DenSquare(c Color) Square {
	if c == Light {
		return SquareAt(0, CenterC)
	}
	return SquareAt(8, CenterC)
}

// stepNeighbors returns the up-to-4 land/water neighbors of s, honoring
// board edges (no wraparound on E/W).
func stepNeighbors(s Square) []Square {
	out := make([]Square, 0, 4)
	row, col := s.Row(), s.Col()
	if row+1 < Rows {
		out = append(out, s+DirN)
	}
	if row-1 >= 0 {
		out = append(out, s+DirS)
	}
	if col+1 < Cols {
		out = append(out, s+DirE)
	}
	if col-1 >= 0 {
		out = append(out, s+DirW)
	}
	return out
}

// buildJumpTables finds, for every land square adjacent to a water block,
// the opposite land square across the strip and the water squares in
// between that must be empty for a LION/TIGER to jump.
func buildJumpTables() {
	for i := range jumpDest {
		jumpDest[i] = NoSquare
	}
	dirs := []int{DirN, DirS, DirE, DirW}
	for sq := Square(0); sq < NumSq; sq++ {
		if IsWater(sq) {
			continue
		}
		for _, d := range dirs {
			if !stepInBounds(sq, d) {
				continue
			}
			first := sq + Square(d)
			if !IsWater(first) {
				continue
			}
			var through []Square
			cur := first
			ok := true
			for IsWater(cur) {
				through = append(through, cur)
				if !stepInBounds(cur, d) {
					ok = false
					break
				}
				cur = cur + Square(d)
			}
			if !ok || IsWater(cur) {
				continue
			}
			// cur is the first land square past the water strip: a valid
			// jump landing square.
			jumpDest[sq] = cur
			jumpBlockers[sq] = through
		}
	}
}

// stepInBounds reports whether stepping one square from sq in direction d
// (one of DirN/DirS/DirE/DirW) stays on the board.
func stepInBounds(sq Square, d int) bool {
	switch d {
	case DirN:
		return sq.Row()+1 < Rows
	case DirS:
		return sq.Row()-1 >= 0
	case DirE:
		return sq.Col()+1 < Cols
	case DirW:
		return sq.Col()-1 >= 0
	}
	return false
}

// buildDistanceFields runs a BFS from each den under three mobility models:
// land-only (every rank but RAT/LION/TIGER crossing water), jumper (land
// steps plus LION/TIGER jumps), and swimmer (land and water steps, for RAT).
func buildDistanceFields() {
	for c := Color(0); c < 2; c++ {
		bfs(DenSquare(c), landDist[c][:], func(s Square) []Square {
			var next []Square
			for _, n := range stepNeighbors(s) {
				if !IsWater(n) {
					next = append(next, n)
				}
			}
			return next
		})
		bfs(DenSquare(c), jumperDist[c][:], func(s Square) []Square {
			var next []Square
			for _, n := range stepNeighbors(s) {
				if !IsWater(n) {
					next = append(next, n)
				}
			}
			if jumpDest[s] != NoSquare {
				next = append(next, jumpDest[s])
			}
			return next
		})
		bfs(DenSquare(c), swimmerDist[c][:], func(s Square) []Square {
			return stepNeighbors(s)
		})
	}
}

func bfs(start Square, dist []int, neighbors func(Square) []Square) {
	for i := range dist {
		dist[i] = infDist
	}
	dist[start] = 0
	queue := []Square{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range neighbors(cur) {
			if dist[cur]+1 < dist[n] {
				dist[n] = dist[cur] + 1
				queue = append(queue, n)
			}
		}
	}
}

// HasJump reports whether a LION/TIGER standing on s has a jump available
// from here (s sits on land adjacent to a crossable water strip).
func HasJump(s Square) bool {
	return jumpDest[s] != NoSquare
}

// LandDistanceToDen returns the land-only BFS distance from s to denColor's
// den, regardless of the piece's own rank — used by the evaluator's
// rank-independent piece-square term.
func LandDistanceToDen(s Square, denColor Color) int {
	return landDist[denColor][s]
}

// DenDistance returns the approach distance from square s to denColor's den,
// using the mobility model appropriate for rank r. Callers pass the target
// den's color explicitly: to score a piece's threat against the enemy den,
// pass the enemy's color; to score danger to one's own den, pass one's own
// color.
func DenDistance(s Square, denColor Color, r Rank) int {
	switch r {
	case Rat:
		return swimmerDist[denColor][s]
	case Lion, Tiger:
		return jumperDist[denColor][s]
	default:
		return landDist[denColor][s]
	}
}
