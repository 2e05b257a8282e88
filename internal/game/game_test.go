package game

import (
	"testing"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mv(t *testing.T, text string) board.Move {
	t.Helper()
	m, err := board.ParseMove(text)
	require.NoError(t, err)
	return m
}

func newGame(t *testing.T, depth, breadth int) *Game {
	t.Helper()
	g, err := New(depth, breadth, search.WithLogger(zerolog.New(zerolog.NewTestWriter(t))))
	require.NoError(t, err)
	return g
}

func play(t *testing.T, g *Game, moves ...string) *MoveResult {
	t.Helper()
	var result *MoveResult
	for _, text := range moves {
		var err error
		result, err = g.MakeMove(mv(t, text))
		require.NoError(t, err, "playing %s", text)
	}
	return result
}

func TestNewGame(t *testing.T) {
	g := newGame(t, 1, 0)

	status := g.Status()
	assert.Equal(t, "white", status.Turn)
	assert.False(t, status.WhiteInCheck)
	assert.False(t, status.BlackInCheck)
	assert.Equal(t, 0, status.Material)
	assert.Equal(t, 0.0, status.Score)
	assert.Equal(t, OutcomeActive, status.Outcome)
	assert.Equal(t, board.MaterialCount{White: 39, Black: 39}, status.Counts)
	assert.Equal(t, StartingFEN, status.FEN)
	assert.Equal(t, 0, status.Ply)

	assert.Len(t, g.AllMoves(), 20)
	assert.Len(t, g.LegalMoves(), 20)
	assert.Equal(t, 21, g.TreeSize())
	assert.Empty(t, g.History())
}

func TestNewGameRequiresALimit(t *testing.T) {
	_, err := New(0, 0)
	assert.ErrorIs(t, err, search.ErrUnboundedSearch)
}

func TestMakeMove(t *testing.T) {
	g := newGame(t, 2, 0)

	result := play(t, g, "e2e4")
	assert.Equal(t, "e2e4", result.Move)
	assert.Equal(t, "pawn on e2 to e4", result.Description)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1", result.FEN)
	assert.False(t, result.Check)
	assert.False(t, result.GameOver)
	assert.Equal(t, OutcomeActive, result.Outcome)

	assert.Equal(t, []board.Move{mv(t, "e2e4")}, g.History())
	assert.Equal(t, "black", g.Status().Turn)
	assert.Equal(t, 1, g.Status().Ply)
	assert.Len(t, g.LevelCounts(), 2)

	e4, err := board.ParseSquare("e4")
	require.NoError(t, err)
	piece, ok := g.PieceAt(e4)
	require.True(t, ok)
	assert.Equal(t, board.Pawn, piece.Kind)
	assert.True(t, piece.Moved)
}

func TestMakeMoveRejectsIllegalMoves(t *testing.T) {
	g := newGame(t, 1, 0)

	_, err := g.MakeMove(mv(t, "e2e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = g.MakeMove(mv(t, "e4e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = g.MakeMove(mv(t, "e7e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)

	// The game is still usable afterwards.
	play(t, g, "e2e4")
	assert.Len(t, g.History(), 1)
}

func TestSuggestMoves(t *testing.T) {
	g := newGame(t, 1, 0)

	assert.Len(t, g.SuggestMoves(1), 1)
	assert.Len(t, g.SuggestMoves(3), 3)
	assert.Empty(t, g.SuggestMoves(0))
	assert.Len(t, g.SuggestMoves(100), 20)
	assert.Equal(t, g.AllMoves()[:5], g.SuggestMoves(5))
}

func TestDescribeMoves(t *testing.T) {
	g := newGame(t, 1, 0)

	description, err := g.DescribeSuggestion(search.Suggestion{Move: mv(t, "g1f3"), Score: 0})
	require.NoError(t, err)
	assert.Equal(t, "knight on g1 to f3: 0.00", description)

	play(t, g, "e2e4", "d7d5")
	description, err = g.DescribeMove(mv(t, "e4d5"))
	require.NoError(t, err)
	assert.Equal(t, "pawn on e4 takes on d5", description)

	description, err = g.DescribeSuggestion(search.Suggestion{Move: mv(t, "e4d5"), Score: -1.5})
	require.NoError(t, err)
	assert.Equal(t, "pawn on e4 takes on d5: -1.50", description)

	_, err = g.DescribeMove(mv(t, "e5e6"))
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestCaptureIsSuggestedFirst(t *testing.T) {
	g := newGame(t, 1, 0)
	play(t, g, "e2e4", "d7d5")

	suggestions := g.SuggestMoves(1)
	require.Len(t, suggestions, 1)
	assert.Equal(t, mv(t, "e4d5"), suggestions[0].Move)
	assert.Equal(t, 1.0, suggestions[0].Score)
}

func TestFoolsMate(t *testing.T) {
	g := newGame(t, 1, 0)

	result := play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
	assert.Equal(t, "queen on d8 to h4", result.Description)
	assert.True(t, result.Check)
	assert.True(t, result.Checkmate)
	assert.True(t, result.GameOver)
	assert.Equal(t, OutcomeBlackWon, result.Outcome)
	assert.Equal(t, -float64(search.MateScore), result.Score)
	assert.Equal(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 0 3", result.FEN)

	status := g.Status()
	assert.True(t, status.WhiteInCheck)
	assert.False(t, status.BlackInCheck)
	assert.Empty(t, g.AllMoves())
	assert.Empty(t, g.LegalMoves())
}

func TestStalemateIsADraw(t *testing.T) {
	g, err := NewFromFEN("7k/8/6Q1/5K2/8/8/8/8 w - - 0 1", 1, 0)
	require.NoError(t, err)

	result, err := g.MakeMove(mv(t, "f5f6"))
	require.NoError(t, err)
	assert.True(t, result.Stalemate)
	assert.False(t, result.Check)
	assert.True(t, result.GameOver)
	assert.Equal(t, OutcomeDraw, result.Outcome)

	g, err = NewFromFEN("7k/5K2/6Q1/8/8/8/8/8 b - - 0 1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDraw, g.Status().Outcome)
	assert.Empty(t, g.AllMoves())
}

func TestLevelCounts(t *testing.T) {
	g := newGame(t, 2, 0)
	assert.Equal(t, []int{20, 400}, g.LevelCounts())
	assert.Equal(t, 421, g.TreeSize())
}

func TestStandardPieceValues(t *testing.T) {
	assert.Equal(t, map[string]int{
		"pawn":   1,
		"knight": 3,
		"bishop": 3,
		"rook":   5,
		"queen":  9,
		"king":   0,
	}, StandardPieceValues)
}
