package board

import "errors"

var (
	// ErrInvalidSquare reports a malformed square or move name.
	ErrInvalidSquare = errors.New("invalid square name")

	// ErrIllegalPosition reports that a move would leave the mover's own king attacked.
	ErrIllegalPosition = errors.New("illegal position")

	// ErrTurnViolation reports a move of a piece that does not belong to the side to move.
	ErrTurnViolation = errors.New("piece does not belong to the side to move")

	// ErrInvariant reports internal corruption of a position.
	ErrInvariant = errors.New("board invariant violated")
)
