package board

import "math"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Sign is +1 for white and -1 for black, matching the material convention.
func (c Color) Sign() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"pawn", "knight", "bishop", "rook", "queen", "king"}

// King has no material value.
var kindValues = [...]int{1, 3, 3, 5, 9, 0}

// Kinds lists every piece kind in value order.
var Kinds = []Kind{Pawn, Knight, Bishop, Rook, Queen, King}

func (k Kind) String() string {
	return kindNames[k]
}

func (k Kind) Value() int {
	return kindValues[k]
}

// Unbounded is the maximum distance of sliding vectors.
const Unbounded = math.MaxInt

// Vector is a piece-relative direction of travel.
type Vector struct {
	DFile       int
	DRank       int
	MaxDistance int
	CanCapture  bool
	CaptureOnly bool
}

func slide(df, dr int) Vector {
	return Vector{DFile: df, DRank: dr, MaxDistance: Unbounded, CanCapture: true}
}

func step(df, dr int) Vector {
	return Vector{DFile: df, DRank: dr, MaxDistance: 1, CanCapture: true}
}

var (
	rookVectors = []Vector{slide(1, 0), slide(0, 1), slide(-1, 0), slide(0, -1)}

	bishopVectors = []Vector{slide(1, 1), slide(1, -1), slide(-1, -1), slide(-1, 1)}

	queenVectors = []Vector{
		slide(1, 0), slide(0, 1), slide(-1, 0), slide(0, -1),
		slide(1, 1), slide(1, -1), slide(-1, -1), slide(-1, 1),
	}

	kingVectors = []Vector{
		step(1, 0), step(0, 1), step(-1, 0), step(0, -1),
		step(1, 1), step(1, -1), step(-1, -1), step(-1, 1),
	}

	knightVectors = []Vector{
		step(1, 2), step(2, 1), step(2, -1), step(1, -2),
		step(-1, -2), step(-2, -1), step(-2, 1), step(-1, 2),
	}

	// indexed by color, then by whether the pawn has moved
	pawnVectors = [2][2][]Vector{
		{pawnVectorsFor(1, 2), pawnVectorsFor(1, 1)},
		{pawnVectorsFor(-1, 2), pawnVectorsFor(-1, 1)},
	}
)

// The straight vector never captures; the diagonals only capture.
func pawnVectorsFor(forward, reach int) []Vector {
	return []Vector{
		{DFile: 0, DRank: forward, MaxDistance: reach},
		{DFile: 1, DRank: forward, MaxDistance: 1, CanCapture: true, CaptureOnly: true},
		{DFile: -1, DRank: forward, MaxDistance: 1, CanCapture: true, CaptureOnly: true},
	}
}

// Vectors returns the movement vectors of a piece of this kind. Only pawns
// depend on color, and their double step collapses once they have moved.
func (k Kind) Vectors(c Color, moved bool) []Vector {
	switch k {
	case Pawn:
		if moved {
			return pawnVectors[c][1]
		}
		return pawnVectors[c][0]
	case Knight:
		return knightVectors
	case Bishop:
		return bishopVectors
	case Rook:
		return rookVectors
	case Queen:
		return queenVectors
	default:
		return kingVectors
	}
}

// Placement describes a piece before it is put on a board.
type Placement struct {
	Kind  Kind
	Color Color
	Moved bool
}

type PieceID uint32

// Piece is a piece bound to a square. It caches every square it currently
// sees together with the index of the vector that reaches it, so a move that
// disturbs one of those squares only needs that vector rescanned.
type Piece struct {
	ID     PieceID
	Kind   Kind
	Color  Color
	Moved  bool
	Square Square

	sight *sightMap
}

func (p *Piece) Vectors() []Vector {
	return p.Kind.Vectors(p.Color, p.Moved)
}

func (p *Piece) Placement() Placement {
	return Placement{Kind: p.Kind, Color: p.Color, Moved: p.Moved}
}
