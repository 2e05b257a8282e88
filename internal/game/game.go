package game

import (
	"errors"
	"fmt"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

var backRank = []board.Kind{
	board.Rook, board.Knight, board.Bishop, board.Queen,
	board.King, board.Bishop, board.Knight, board.Rook,
}

// StartingPosition returns the placements of the standard initial position.
func StartingPosition() map[board.Square]board.Placement {
	placements := make(map[board.Square]board.Placement, 32)
	for file, kind := range backRank {
		placements[board.NewSquare(file, 0)] = board.Placement{Kind: kind, Color: board.White}
		placements[board.NewSquare(file, 1)] = board.Placement{Kind: board.Pawn, Color: board.White}
		placements[board.NewSquare(file, 6)] = board.Placement{Kind: board.Pawn, Color: board.Black}
		placements[board.NewSquare(file, 7)] = board.Placement{Kind: kind, Color: board.Black}
	}
	return placements
}

// Game is one analysis session: a search tree rooted at the current
// position and the moves played to reach it.
type Game struct {
	engine    *search.Engine
	history   []board.Move
	startTurn board.Color
}

// New starts a game from the standard position and builds its tree.
func New(maxDepth, maxBreadth int, opts ...search.Option) (*Game, error) {
	pos, err := board.NewPosition(StartingPosition(), board.White)
	if err != nil {
		return nil, err
	}
	return NewFromPosition(pos, maxDepth, maxBreadth, opts...)
}

// NewFromFEN starts a game from an arbitrary FEN position.
func NewFromFEN(fen string, maxDepth, maxBreadth int, opts ...search.Option) (*Game, error) {
	placements, turn, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	pos, err := board.NewPosition(placements, turn)
	if err != nil {
		return nil, fmt.Errorf("loading FEN %q: %w", fen, err)
	}
	return NewFromPosition(pos, maxDepth, maxBreadth, opts...)
}

func NewFromPosition(pos *board.Position, maxDepth, maxBreadth int, opts ...search.Option) (*Game, error) {
	engine, err := search.NewEngine(pos, maxDepth, maxBreadth, opts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Build(); err != nil {
		return nil, err
	}
	return &Game{engine: engine, startTurn: pos.Turn()}, nil
}

// Position returns the current root position.
func (g *Game) Position() *board.Position {
	return g.engine.Root().Position
}

func (g *Game) Engine() *search.Engine {
	return g.engine
}

// History lists the moves played since the game started.
func (g *Game) History() []board.Move {
	return append([]board.Move(nil), g.history...)
}

// MakeMove plays m, re-roots the tree on it and extends the search again.
func (g *Game) MakeMove(m board.Move) (*MoveResult, error) {
	description, err := g.DescribeMove(m)
	if err != nil {
		return nil, err
	}

	if err := g.engine.Advance(m); err != nil {
		if errors.Is(err, search.ErrUnknownMove) {
			return nil, fmt.Errorf("%w: %s", ErrIllegalMove, m)
		}
		return nil, err
	}
	if err := g.engine.Build(); err != nil {
		return nil, err
	}
	g.history = append(g.history, m)

	root := g.engine.Root()
	outcome := g.outcome()
	return &MoveResult{
		Move:        m.String(),
		Description: description,
		FEN:         g.FEN(),
		Check:       root.Position.InCheck(root.Position.Turn()),
		Checkmate:   root.Checkmate,
		Stalemate:   root.Stalemate,
		GameOver:    outcome != OutcomeActive,
		Outcome:     outcome,
		Score:       root.Score,
	}, nil
}

// SuggestMoves returns up to n moves, best first.
func (g *Game) SuggestMoves(n int) []search.Suggestion {
	suggestions := g.engine.Suggestions()
	if n < 0 {
		n = 0
	}
	if n < len(suggestions) {
		suggestions = suggestions[:n]
	}
	return suggestions
}

// AllMoves returns every root move, best first.
func (g *Game) AllMoves() []search.Suggestion {
	return g.engine.Suggestions()
}

// LegalMoves lists the moves available at the root in move order.
func (g *Game) LegalMoves() []board.Move {
	return g.engine.Root().Moves()
}

func (g *Game) Status() Status {
	root := g.engine.Root()
	pos := root.Position
	return Status{
		Turn:         pos.Turn().String(),
		WhiteInCheck: pos.InCheck(board.White),
		BlackInCheck: pos.InCheck(board.Black),
		Material:     pos.Material(),
		Score:        root.Score,
		Outcome:      g.outcome(),
		Counts:       pos.MaterialCount(),
		FEN:          g.FEN(),
		Ply:          len(g.history),
	}
}

func (g *Game) outcome() Outcome {
	root := g.engine.Root()
	switch {
	case root.Stalemate:
		return OutcomeDraw
	case root.Checkmate && root.Position.Turn() == board.White:
		return OutcomeBlackWon
	case root.Checkmate:
		return OutcomeWhiteWon
	default:
		return OutcomeActive
	}
}

// PieceAt returns the piece on sq in the current position.
func (g *Game) PieceAt(sq board.Square) (board.Piece, bool) {
	return g.Position().PieceAt(sq)
}

func (g *Game) MaterialCount() board.MaterialCount {
	return g.Position().MaterialCount()
}

// TreeSize is the number of nodes in the search tree, root included.
func (g *Game) TreeSize() int {
	return g.engine.Tree().Size()
}

// LevelCounts returns the number of nodes at each ply below the root.
func (g *Game) LevelCounts() []int {
	tree := g.engine.Tree()
	return tree.LevelCounts(tree.Root())
}

func (g *Game) FEN() string {
	plies := len(g.history)
	if g.startTurn == board.Black {
		plies++
	}
	return EncodeFEN(g.Position(), 1+plies/2)
}
