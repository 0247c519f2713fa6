package board

import "errors"

// Parse/validation errors returned at the external boundary (spec §7):
// the core never panics on malformed input, it reports and the caller
// decides what to do.
var (
	ErrInvalidFEN         = errors.New("board: invalid fen")
	ErrInvalidCoordinate  = errors.New("board: invalid coordinate move")
	ErrIllegalMove        = errors.New("board: illegal move")
)
