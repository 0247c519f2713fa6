// Package protocol implements the engine's line-oriented external
// interface: a UCI-style command loop read from an io.Reader and written to
// an io.Writer, generalized from the teacher's uciLoop/parseSetOption/
// printHelp for the Jungle domain (position/fen, perft/divide over a 7x9
// board, no castling/promotion concepts).
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/notune/jungine/internal/board"
	"github.com/notune/jungine/internal/eval"
	"github.com/notune/jungine/internal/search"
	"github.com/notune/jungine/internal/tt"
)

const engineName = "jungine"
const engineAuthor = "notune"

// Loop owns one engine session's mutable state: the current position, the
// search object, and the async search lifecycle (currentTC/searchWG mirror
// the teacher's package-level pair, scoped here to the session instead of
// globals since a Loop may be constructed more than once in a test).
type Loop struct {
	pos  *board.Position
	srch *search.Search

	out    io.Writer
	errOut io.Writer

	currentTC atomic.Pointer[search.TimeControl]
	searchWG  sync.WaitGroup

	sessionID string
}

// NewLoop constructs a session writing responses to out/errOut. Run reads
// the command stream.
func NewLoop(out, errOut io.Writer) *Loop {
	return &Loop{
		pos:    board.NewPosition(),
		srch:   search.New(tt.New(256)),
		out:    out,
		errOut: errOut,
	}
}

// Run reads and dispatches commands until "quit" or EOF, returning a
// process exit code.
func (l *Loop) Run(in io.Reader) int {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Fprintf(l.errOut, "# %s ready. Type 'help' for available commands.\n", engineName)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "uci":
			l.cmdUCI()
		case "isready":
			fmt.Fprintln(l.out, "readyok")
		case "setoption":
			l.cmdSetOption(parts)
		case "ucinewgame":
			l.cmdNewGame()
		case "position":
			l.cmdPosition(parts)
		case "go":
			l.cmdGo(parts)
		case "stop":
			if cur := l.currentTC.Load(); cur != nil {
				cur.Stop()
			}
		case "quit":
			if cur := l.currentTC.Load(); cur != nil {
				cur.Stop()
			}
			l.searchWG.Wait()
			return 0
		case "d", "display":
			l.cmdDisplay()
		case "eval":
			l.cmdEval()
		case "moves":
			l.cmdMoves()
		case "perft":
			l.cmdPerft(parts)
		case "divide":
			l.cmdDivide(parts)
		case "help":
			l.printHelp()
		default:
			fmt.Fprintf(l.out, "# unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}
	return 0
}

func (l *Loop) cmdUCI() {
	fmt.Fprintf(l.out, "id name %s\n", engineName)
	fmt.Fprintf(l.out, "id author %s\n", engineAuthor)
	fmt.Fprintln(l.out, "option name Hash type spin default 256 min 1 max 4096")
	fmt.Fprintln(l.out, "uciok")
}

func (l *Loop) cmdSetOption(parts []string) {
	name, value := parseSetOption(parts)
	if !strings.EqualFold(name, "Hash") {
		fmt.Fprintf(l.out, "info string setoption %q = %q (ignored)\n", name, value)
		return
	}
	sizeMB, err := strconv.Atoi(value)
	fallback := false
	if err != nil || sizeMB <= 0 {
		fallback = true
		sizeMB = 1
	}
	if cur := l.currentTC.Load(); cur != nil {
		cur.Stop()
		l.searchWG.Wait()
	}
	achievedMB := l.srch.SetTTSize(sizeMB)
	if fallback {
		fmt.Fprintf(l.out, "info string Hash value %q invalid, falling back to %d MB\n", value, achievedMB)
		return
	}
	fmt.Fprintf(l.out, "info string Hash set to %d MB\n", achievedMB)
}

// parseSetOption extracts the name/value pair out of a "setoption name X
// value Y" command line, grounded on the teacher's token-scanning approach
// (names may contain spaces, values may be empty).
func parseSetOption(parts []string) (name, value string) {
	nameStart, nameEnd, valueStart := -1, -1, -1
	for i, p := range parts {
		if p == "name" && nameStart == -1 {
			nameStart = i + 1
			continue
		}
		if p == "value" && nameStart != -1 && nameEnd == -1 {
			nameEnd = i
			valueStart = i + 1
			break
		}
	}
	if nameStart == -1 {
		return "", ""
	}
	if nameEnd == -1 {
		return strings.Join(parts[nameStart:], " "), ""
	}
	if nameStart >= nameEnd {
		return "", ""
	}
	return strings.Join(parts[nameStart:nameEnd], " "), strings.Join(parts[valueStart:], " ")
}

func (l *Loop) cmdNewGame() {
	if cur := l.currentTC.Swap(nil); cur != nil {
		cur.Stop()
	}
	l.searchWG.Wait()
	l.srch.ClearGame()
	l.pos = board.NewPosition()
	l.sessionID = uuid.NewString()
	fmt.Fprintf(l.out, "info string session %s\n", l.sessionID)
}

func (l *Loop) cmdPosition(parts []string) {
	if cur := l.currentTC.Swap(nil); cur != nil {
		cur.Stop()
	}
	l.searchWG.Wait()

	if len(parts) < 2 {
		fmt.Fprintln(l.out, "# error: position requires arguments")
		return
	}

	moveIdx := -1
	if parts[1] == "startpos" {
		l.pos = board.NewPosition()
		for i := 2; i < len(parts); i++ {
			if parts[i] == "moves" {
				moveIdx = i
				break
			}
		}
	} else if parts[1] == "fen" {
		fenParts := []string{}
		for i := 2; i < len(parts); i++ {
			if parts[i] == "moves" {
				moveIdx = i
				break
			}
			fenParts = append(fenParts, parts[i])
		}
		next := board.NewPosition()
		if err := next.SetFEN(strings.Join(fenParts, " ")); err != nil {
			fmt.Fprintf(l.out, "# error: invalid fen: %v\n", err)
			return
		}
		l.pos = next
	} else {
		fmt.Fprintf(l.out, "# error: unknown position subcommand %q\n", parts[1])
		return
	}

	if moveIdx != -1 && moveIdx+1 < len(parts) {
		for _, mvStr := range parts[moveIdx+1:] {
			if err := l.pos.MakeMoveByCoord(mvStr); err != nil {
				fmt.Fprintf(l.out, "# error: illegal move %s: %v. Further moves ignored.\n", mvStr, err)
				break
			}
		}
	}
}

func (l *Loop) cmdGo(parts []string) {
	if cur := l.currentTC.Swap(nil); cur != nil {
		cur.Stop()
	}
	l.searchWG.Wait()

	var depth int
	var movetimeMs, wtimeMs, btimeMs int64
	infinite := false

	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "depth":
			if i+1 < len(parts) {
				depth, _ = strconv.Atoi(parts[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(parts) {
				movetimeMs, _ = strconv.ParseInt(parts[i+1], 10, 64)
				i++
			}
		case "wtime":
			if i+1 < len(parts) {
				wtimeMs, _ = strconv.ParseInt(parts[i+1], 10, 64)
				i++
			}
		case "btime":
			if i+1 < len(parts) {
				btimeMs, _ = strconv.ParseInt(parts[i+1], 10, 64)
				i++
			}
		case "infinite":
			infinite = true
		}
	}

	sideIsLight := l.pos.SideToMove() == board.Light
	tc := search.NewTimeControl(depth, movetimeMs, wtimeMs, btimeMs, infinite, sideIsLight)
	posCopy := *l.pos
	l.currentTC.Store(tc)

	l.searchWG.Add(1)
	go l.runSearchAndReport(&posCopy, tc)
}

// runSearchAndReport mirrors the teacher's same-named goroutine: it owns the
// search's lifetime and is the only writer of "bestmove" for this search.
func (l *Loop) runSearchAndReport(pos *board.Position, tc *search.TimeControl) {
	defer l.searchWG.Done()
	move := l.srch.Think(pos, tc, func(info search.Info) {
		l.reportInfo(info)
	})
	if !l.currentTC.CompareAndSwap(tc, nil) {
		return
	}
	fmt.Fprintf(l.out, "bestmove %v\n", move)
}

func (l *Loop) reportInfo(info search.Info) {
	pvStr := make([]string, len(info.PV))
	for i, m := range info.PV {
		pvStr[i] = m.String()
	}
	if info.MateIn != 0 {
		fmt.Fprintf(l.out, "info depth %d score mate %d nodes %d nps %d time %d pv %s\n",
			info.Depth, info.MateIn, info.Nodes, info.NPS, info.TimeMs, strings.Join(pvStr, " "))
		return
	}
	fmt.Fprintf(l.out, "info depth %d score cp %d nodes %d nps %d time %d pv %s\n",
		info.Depth, info.ScoreCP, info.Nodes, info.NPS, info.TimeMs, strings.Join(pvStr, " "))
}

func (l *Loop) cmdDisplay() {
	fmt.Fprintln(l.out)
	for row := board.Rows - 1; row >= 0; row-- {
		fmt.Fprintf(l.out, "%d |", row+1)
		for col := 0; col < board.Cols; col++ {
			sq := board.SquareAt(row, col)
			c, r, ok := l.pos.At(sq)
			if !ok {
				fmt.Fprint(l.out, " .")
				continue
			}
			ch := r.Letter()
			if c == board.Dark {
				ch += 'a' - 'A'
			}
			fmt.Fprintf(l.out, " %c", ch)
		}
		fmt.Fprintln(l.out, " |")
	}
	fmt.Fprintln(l.out, "    a b c d e f g")
	fmt.Fprintf(l.out, "Side to move: %s\n", l.pos.SideToMove())
	fmt.Fprintf(l.out, "Ply: %d\n", l.pos.Ply())
	fmt.Fprintf(l.out, "Hash: %x\n", l.pos.Hash())
	fmt.Fprintf(l.out, "FEN: %s\n\n", l.pos.ToFEN())
}

func (l *Loop) cmdEval() {
	score := eval.Evaluate(l.pos)
	fmt.Fprintf(l.out, "Evaluation: %+d (from %s's perspective)\n", score, l.pos.SideToMove())
}

func (l *Loop) cmdMoves() {
	var buf [board.MaxMovesPerPosition]board.Move
	n := l.pos.GenerateMoves(buf[:0])
	strs := make([]string, n)
	for i, m := range buf[:n] {
		strs[i] = m.String()
	}
	fmt.Fprintf(l.out, "%d moves: %s\n", n, strings.Join(strs, " "))
}

func (l *Loop) cmdPerft(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintln(l.out, "# usage: perft <depth>")
		return
	}
	maxDepth, err := strconv.Atoi(parts[1])
	if err != nil || maxDepth < 1 {
		fmt.Fprintln(l.out, "# usage: perft <depth>")
		return
	}
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, "Depth    Nodes           Time        NPS")
	fmt.Fprintln(l.out, "---------------------------------------------")
	for depth := 1; depth <= maxDepth; depth++ {
		start := time.Now()
		count := l.pos.Perft(depth)
		elapsed := time.Since(start)
		var nps int64
		if elapsed.Seconds() > 0 {
			nps = int64(float64(count) / elapsed.Seconds())
		}
		var timeStr string
		if elapsed < time.Second {
			timeStr = fmt.Sprintf("%d ms", elapsed.Milliseconds())
		} else {
			timeStr = fmt.Sprintf("%.2f s", elapsed.Seconds())
		}
		fmt.Fprintf(l.out, "%-8d %-15d %-11s %d\n", depth, count, timeStr, nps)
	}
	fmt.Fprintln(l.out)
}

func (l *Loop) cmdDivide(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintln(l.out, "# usage: divide <depth>")
		return
	}
	depth, err := strconv.Atoi(parts[1])
	if err != nil || depth < 1 {
		fmt.Fprintln(l.out, "# usage: divide <depth>")
		return
	}
	total := 0
	for _, line := range l.pos.PerftDivide(depth) {
		fmt.Fprintf(l.out, "%v: %d\n", line.Move, line.Nodes)
		total += line.Nodes
	}
	fmt.Fprintf(l.out, "\nTotal: %d\n", total)
}

func (l *Loop) printHelp() {
	fmt.Fprint(l.out, `# jungine - available commands:

UCI-style protocol:
  uci                              - initialize and print engine identity
  isready                          - readiness handshake
  setoption name Hash value <mb>   - resize the transposition table
  ucinewgame                       - clear heuristics/TT, start a new session
  position startpos                - set the starting layout
  position fen <fen> [moves ...]   - set an arbitrary layout, then apply moves
  position startpos moves <moves>  - set starting layout, then apply moves
  go [options]                     - start searching
      depth <n>                    - search to fixed depth
      movetime <ms>                - search for a fixed duration
      wtime <ms> / btime <ms>      - remaining clock time for allocation
      infinite                     - search until stopped
  stop                             - stop the running search
  quit                             - exit

Additional commands:
  d, display                       - print the board, side to move, hash, FEN
  eval                              - print the static evaluation
  moves                             - list legal moves in the current position
  perft <depth>                    - count leaf nodes at each depth up to N
  divide <depth>                   - perft, broken down by root move
  help                              - show this message
`)
}
