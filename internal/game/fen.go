package game

import (
	"fmt"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/notnil/chess"
)

var kindsByType = map[chess.PieceType]board.Kind{
	chess.Pawn:   board.Pawn,
	chess.Knight: board.Knight,
	chess.Bishop: board.Bishop,
	chess.Rook:   board.Rook,
	chess.Queen:  board.Queen,
	chess.King:   board.King,
}

var typesByKind = map[board.Kind]chess.PieceType{
	board.Pawn:   chess.Pawn,
	board.Knight: chess.Knight,
	board.Bishop: chess.Bishop,
	board.Rook:   chess.Rook,
	board.Queen:  chess.Queen,
	board.King:   chess.King,
}

// ParseFEN reads the piece placement and side to move of a FEN record.
// Castling rights and en passant targets are accepted but ignored. Pawns
// off their home rank are marked as moved.
func ParseFEN(fen string) (map[board.Square]board.Placement, board.Color, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, board.White, fmt.Errorf("invalid FEN: %w", err)
	}
	pos := chess.NewGame(opt).Position()

	placements := make(map[board.Square]board.Placement)
	for sq, p := range pos.Board().SquareMap() {
		kind, ok := kindsByType[p.Type()]
		if !ok {
			continue
		}
		color := board.White
		if p.Color() == chess.Black {
			color = board.Black
		}
		target := board.NewSquare(int(sq.File()), int(sq.Rank()))
		placements[target] = board.Placement{
			Kind:  kind,
			Color: color,
			Moved: kind == board.Pawn && target.Rank != homeRank(color),
		}
	}

	turn := board.White
	if pos.Turn() == chess.Black {
		turn = board.Black
	}
	return placements, turn, nil
}

// EncodeFEN writes pos as a FEN record with no castling rights and no en
// passant target.
func EncodeFEN(pos *board.Position, fullmove int) string {
	squares := make(map[chess.Square]chess.Piece)
	for sq, pl := range pos.Placements() {
		color := chess.White
		if pl.Color == board.Black {
			color = chess.Black
		}
		squares[chess.Square(sq.Index())] = chess.NewPiece(typesByKind[pl.Kind], color)
	}

	turn := "w"
	if pos.Turn() == board.Black {
		turn = "b"
	}
	return fmt.Sprintf("%s %s - - 0 %d", chess.NewBoard(squares).String(), turn, fullmove)
}

func homeRank(c board.Color) int {
	if c == board.White {
		return 1
	}
	return 6
}
