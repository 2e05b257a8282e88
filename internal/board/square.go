package board

import "fmt"

const (
	fileNames = "abcdefgh"
	rankNames = "12345678"
)

// Square is a file/rank pair. a1 is file 0, rank 0 and h8 is file 7, rank 7.
type Square struct {
	File int
	Rank int
}

// NoSquare is off the board and never valid.
var NoSquare = Square{File: -1, Rank: -1}

func NewSquare(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

// ParseSquare reads an algebraic square name such as "e4".
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}

	file := indexOf(fileNames, name[0])
	rank := indexOf(rankNames, name[1])
	if file < 0 || rank < 0 {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}

	return Square{File: file, Rank: rank}, nil
}

func indexOf(names string, c byte) int {
	for i := 0; i < len(names); i++ {
		if names[i] == c {
			return i
		}
	}
	return -1
}

func (s Square) Valid() bool {
	return s.File >= 0 && s.File < len(fileNames) && s.Rank >= 0 && s.Rank < len(rankNames)
}

// Offset returns the square df files and dr ranks away. The result may be off the board.
func (s Square) Offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// Index orders squares a1, b1, ... h8.
func (s Square) Index() int {
	return s.Rank*len(fileNames) + s.File
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{fileNames[s.File], rankNames[s.Rank]})
}

func compareSquares(a, b Square) int {
	return a.Index() - b.Index()
}

// Move carries a piece from one square to another.
type Move struct {
	From Square
	To   Square
}

// NoMove marks the root of a game, which has no prior move.
var NoMove = Move{From: NoSquare, To: NoSquare}

func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// ParseMove reads coordinate notation such as "e2e4".
func ParseMove(text string) (Move, error) {
	if len(text) != 4 {
		return NoMove, fmt.Errorf("%w: move %q", ErrInvalidSquare, text)
	}
	from, err := ParseSquare(text[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(text[2:])
	if err != nil {
		return NoMove, err
	}
	return Move{From: from, To: to}, nil
}

func (m Move) IsNone() bool {
	return m == NoMove
}

func (m Move) String() string {
	if m.IsNone() {
		return "--"
	}
	return m.From.String() + m.To.String()
}

// CompareMoves orders moves by origin square, then destination square.
func CompareMoves(a, b Move) int {
	if c := compareSquares(a.From, b.From); c != 0 {
		return c
	}
	return compareSquares(a.To, b.To)
}

func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
