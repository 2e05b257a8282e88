package game

import (
	"errors"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
)

var ErrIllegalMove = errors.New("illegal move")

type Outcome string

const (
	OutcomeActive   Outcome = "active"
	OutcomeDraw     Outcome = "draw"
	OutcomeWhiteWon Outcome = "white_won"
	OutcomeBlackWon Outcome = "black_won"
)

// Status summarises the current root of a game.
type Status struct {
	Turn         string              `json:"turn"`
	WhiteInCheck bool                `json:"whiteInCheck"`
	BlackInCheck bool                `json:"blackInCheck"`
	Material     int                 `json:"material"` // positive favours white
	Score        float64             `json:"score"`
	Outcome      Outcome             `json:"outcome"`
	Counts       board.MaterialCount `json:"counts"`
	FEN          string              `json:"fen"`
	Ply          int                 `json:"ply"`
}

type MoveResult struct {
	Move        string  `json:"move"`
	Description string  `json:"description"`
	FEN         string  `json:"fen"`
	Check       bool    `json:"check"`
	Checkmate   bool    `json:"checkmate"`
	Stalemate   bool    `json:"stalemate"`
	GameOver    bool    `json:"gameOver"`
	Outcome     Outcome `json:"outcome"`
	Score       float64 `json:"score"`
}

// StandardPieceValues maps piece names to their material values
var StandardPieceValues = func() map[string]int {
	values := make(map[string]int, len(board.Kinds))
	for _, k := range board.Kinds {
		values[k.String()] = k.Value()
	}
	return values
}()
