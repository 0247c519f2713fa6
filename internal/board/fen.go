package board

import (
	"strconv"
	"strings"
)

// SetFEN parses the FEN-like position format described in spec §6: nine
// ranks separated by '/', listed from rank 9 (Dark's back) down to rank 1
// (Light's back); within a rank, piece letters R C D W P T L E
// (uppercase=Light, lowercase=Dark) and digits 1-7 for runs of empty
// squares; then a space and 'w' or 'b'. Optional trailing halfmove/fullmove
// fields are accepted but not required. On error, the position is left
// unchanged.
func (p *Position) SetFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return ErrInvalidFEN
	}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != Rows {
		return ErrInvalidFEN
	}

	var squares [NumSq]Cell
	for i := range squares {
		squares[i] = emptyCell
	}
	var pieceSquare [2][NumRanks + 1]Square
	for c := 0; c < 2; c++ {
		for r := range pieceSquare[c] {
			pieceSquare[c][r] = NoSquare
		}
	}
	var pieceCount [2]int

	for i, rankStr := range ranks {
		row := Rows - 1 - i // rank 9 first in the string -> row 8
		col := 0
		for _, ch := range rankStr {
			if col >= Cols {
				return ErrInvalidFEN
			}
			if ch >= '1' && ch <= '7' {
				col += int(ch - '0')
				continue
			}
			rank, color, ok := decodePieceChar(byte(ch))
			if !ok {
				return ErrInvalidFEN
			}
			if pieceSquare[color][rank] != NoSquare {
				return ErrInvalidFEN
			}
			sq := SquareAt(row, col)
			squares[sq] = Cell{Rank: rank, Color: color}
			pieceSquare[color][rank] = sq
			pieceCount[color]++
			col++
		}
		if col != Cols {
			return ErrInvalidFEN
		}
	}

	var side Color
	switch fields[1] {
	case "w":
		side = Light
	case "b":
		side = Dark
	default:
		return ErrInvalidFEN
	}

	halfmove := 0
	if len(fields) >= 3 {
		if n, err := strconv.Atoi(fields[2]); err == nil {
			halfmove = n
		}
	}

	p.squares = squares
	p.pieceSquare = pieceSquare
	p.pieceCount = pieceCount
	p.sideToMove = side
	p.halfmoveClock = halfmove
	p.historyLen = 0
	p.undoLen = 0
	p.recomputeHash()
	p.pushHistory()
	return nil
}

func decodePieceChar(ch byte) (Rank, Color, bool) {
	color := Light
	upper := ch
	if ch >= 'a' && ch <= 'z' {
		color = Dark
		upper = ch - 'a' + 'A'
	}
	for r := Rank(1); r <= NumRanks; r++ {
		if r.Letter() == upper {
			return r, color, true
		}
	}
	return NoRank, Light, false
}

// ToFEN renders the current position in the same format SetFEN parses.
func (p *Position) ToFEN() string {
	var b strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		empty := 0
		for col := 0; col < Cols; col++ {
			cell := p.squares[SquareAt(row, col)]
			if cell.Rank == NoRank {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			letter := cell.Rank.Letter()
			if cell.Color == Dark {
				letter = letter - 'A' + 'a'
			}
			b.WriteByte(letter)
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if row > 0 {
			b.WriteByte('/')
		}
	}
	b.WriteByte(' ')
	if p.sideToMove == Light {
		b.WriteByte('w')
	} else {
		b.WriteByte('b')
	}
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.halfmoveClock))
	return b.String()
}

// MarshalText implements encoding.TextMarshaler, returning the FEN string.
func (p *Position) MarshalText() ([]byte, error) {
	return []byte(p.ToFEN()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, parsing a FEN string.
func (p *Position) UnmarshalText(text []byte) error {
	return p.SetFEN(string(text))
}
