package game

import (
	"fmt"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
)

// DescribeMove renders m in words, e.g. "knight on g1 to f3" or
// "pawn on e4 takes on d5".
func DescribeMove(pos *board.Position, m board.Move) (string, error) {
	piece, ok := pos.PieceAt(m.From)
	if !ok {
		return "", fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.From)
	}
	verb := "to"
	if _, capture := pos.PieceAt(m.To); capture {
		verb = "takes on"
	}
	return fmt.Sprintf("%s on %s %s %s", piece.Kind, m.From, verb, m.To), nil
}

func (g *Game) DescribeMove(m board.Move) (string, error) {
	return DescribeMove(g.Position(), m)
}

// DescribeSuggestion renders a suggestion as "<move in words>: <score>".
func (g *Game) DescribeSuggestion(s search.Suggestion) (string, error) {
	description, err := g.DescribeMove(s.Move)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %.2f", description, s.Score), nil
}
