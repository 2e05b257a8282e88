package search

import (
	"math"
	"testing"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T, name string) board.Square {
	t.Helper()
	s, err := board.ParseSquare(name)
	require.NoError(t, err)
	return s
}

func move(t *testing.T, text string) board.Move {
	t.Helper()
	m, err := board.ParseMove(text)
	require.NoError(t, err)
	return m
}

func position(t *testing.T, turn board.Color, pieces map[string]board.Placement) *board.Position {
	t.Helper()
	placements := make(map[board.Square]board.Placement, len(pieces))
	for name, pl := range pieces {
		placements[square(t, name)] = pl
	}
	pos, err := board.NewPosition(placements, turn)
	require.NoError(t, err)
	return pos
}

func white(k board.Kind) board.Placement {
	return board.Placement{Kind: k, Color: board.White}
}

func black(k board.Kind) board.Placement {
	return board.Placement{Kind: k, Color: board.Black}
}

func startingPosition(t *testing.T) *board.Position {
	t.Helper()
	back := []board.Kind{board.Rook, board.Knight, board.Bishop, board.Queen, board.King, board.Bishop, board.Knight, board.Rook}
	placements := make(map[board.Square]board.Placement, 32)
	for file, k := range back {
		placements[board.NewSquare(file, 0)] = white(k)
		placements[board.NewSquare(file, 1)] = white(board.Pawn)
		placements[board.NewSquare(file, 6)] = black(board.Pawn)
		placements[board.NewSquare(file, 7)] = black(k)
	}
	pos, err := board.NewPosition(placements, board.White)
	require.NoError(t, err)
	return pos
}

func newEngine(t *testing.T, pos *board.Position, depth, breadth int, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.New(zerolog.NewTestWriter(t)))}, opts...)
	e, err := NewEngine(pos, depth, breadth, opts...)
	require.NoError(t, err)
	return e
}

// assertAggregates recomputes size and leaves of every node from scratch.
func assertAggregates(t *testing.T, tree *Tree, id NodeID) (int, map[NodeID]struct{}) {
	t.Helper()
	n := tree.Node(id)
	children := tree.Children(id)
	if len(children) == 0 {
		assert.Equal(t, 1, n.Size())
		assert.Equal(t, map[NodeID]struct{}{id: {}}, n.leaves)
		return 1, n.leaves
	}

	size := 1
	leaves := make(map[NodeID]struct{})
	for _, child := range children {
		assert.Equal(t, id, tree.Node(child).Parent)
		assert.Equal(t, n.Ply+1, tree.Node(child).Ply)
		childSize, childLeaves := assertAggregates(t, tree, child)
		size += childSize
		for leaf := range childLeaves {
			leaves[leaf] = struct{}{}
		}
	}
	assert.Equal(t, size, n.Size())
	assert.Equal(t, leaves, n.leaves)
	return size, leaves
}

func TestNewEngineRequiresAFiniteLimit(t *testing.T) {
	_, err := NewEngine(startingPosition(t), 0, 0)
	assert.ErrorIs(t, err, ErrUnboundedSearch)

	_, err = NewEngine(startingPosition(t), -1, 10)
	assert.Error(t, err)
}

func TestBuildDepthOneFromStart(t *testing.T) {
	e := newEngine(t, startingPosition(t), 1, 0)
	require.NoError(t, e.Build())

	root := e.Tree().Root()
	assert.Len(t, e.Tree().Children(root), 20)
	assert.Len(t, e.Tree().Leaves(root), 20)
	assert.Equal(t, 21, e.Tree().Size())
	assert.Equal(t, 1, e.Depth())
	assert.Len(t, e.Suggestions(), 20)
	assert.Equal(t, 0.0, e.Score())
	assertAggregates(t, e.Tree(), root)
}

func TestBuildDepthTwoFromStart(t *testing.T) {
	e := newEngine(t, startingPosition(t), 2, 0)
	require.NoError(t, e.Build())

	root := e.Tree().Root()
	assert.Equal(t, 421, e.Tree().Size())
	assert.Len(t, e.Tree().Leaves(root), 400)
	assert.Equal(t, []int{20, 400}, e.Tree().LevelCounts(root))
	assertAggregates(t, e.Tree(), root)
}

func TestBuildStopsAtBreadthCap(t *testing.T) {
	e := newEngine(t, startingPosition(t), 0, 10)
	require.NoError(t, e.Build())

	assert.Equal(t, 21, e.Tree().Size())
	assert.Equal(t, 1, e.Depth())
}

func TestParallelBuildMatchesSequential(t *testing.T) {
	sequential := newEngine(t, startingPosition(t), 2, 0)
	require.NoError(t, sequential.Build())

	parallel := newEngine(t, startingPosition(t), 2, 0, WithWorkers(4))
	require.NoError(t, parallel.Build())

	assert.Equal(t, sequential.Tree().Size(), parallel.Tree().Size())
	assert.Equal(t, sequential.Suggestions(), parallel.Suggestions())
	assert.Equal(t, sequential.Score(), parallel.Score())
	assertAggregates(t, parallel.Tree(), parallel.Tree().Root())
}

func TestAdvanceKeepsOnlyChosenSubtree(t *testing.T) {
	e := newEngine(t, startingPosition(t), 2, 0)
	require.NoError(t, e.Build())

	tree := e.Tree()
	chosen, ok := tree.Child(tree.Root(), move(t, "e2e4"))
	require.True(t, ok)
	keptSize := tree.Node(chosen).Size()

	require.NoError(t, e.Advance(move(t, "e2e4")))

	root := e.Tree().Root()
	assert.Equal(t, NodeID(0), root)
	assert.Equal(t, noNode, e.Root().Parent)
	assert.Equal(t, 0, e.Root().Ply)
	assert.Equal(t, board.Black, e.Root().Position.Turn())
	assert.Equal(t, keptSize, e.Tree().Size())
	assert.Equal(t, 21, e.Tree().Size())
	assert.Len(t, e.Tree().Leaves(root), 20)
	assert.Equal(t, 1, e.Depth())
	assertAggregates(t, e.Tree(), root)

	require.NoError(t, e.Build())
	assert.Equal(t, 2, e.Depth())
	assertAggregates(t, e.Tree(), root)
	assert.Len(t, e.Tree().LevelCounts(root), 2)
}

func TestAdvanceRejectsUnknownMove(t *testing.T) {
	e := newEngine(t, startingPosition(t), 1, 0)
	require.NoError(t, e.Build())

	err := e.Advance(move(t, "e2e5"))
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestHistoryFollowsParents(t *testing.T) {
	e := newEngine(t, startingPosition(t), 2, 0)
	require.NoError(t, e.Build())

	tree := e.Tree()
	child, ok := tree.Child(tree.Root(), move(t, "g1f3"))
	require.True(t, ok)
	grandchild, ok := tree.Child(child, move(t, "d7d5"))
	require.True(t, ok)

	assert.Equal(t, []board.Move{move(t, "g1f3"), move(t, "d7d5")}, tree.History(grandchild))
	assert.Empty(t, tree.History(tree.Root()))
}

func TestCheckmateFavoursTheMatingSide(t *testing.T) {
	pos := position(t, board.White, map[string]board.Placement{
		"g1": white(board.King),
		"a1": white(board.Rook),
		"h8": black(board.King),
		"g7": black(board.Pawn),
		"h7": black(board.Pawn),
	})
	e := newEngine(t, pos, 2, 0)
	require.NoError(t, e.Build())

	mate, ok := e.Tree().Child(e.Tree().Root(), move(t, "a1a8"))
	require.True(t, ok)
	assert.True(t, e.Tree().Node(mate).Checkmate)
	assert.Equal(t, float64(MateScore), e.Tree().Node(mate).Score)

	suggestions := e.Suggestions()
	require.NotEmpty(t, suggestions)
	assert.Equal(t, move(t, "a1a8"), suggestions[0].Move)
	assert.Equal(t, float64(MateScore), suggestions[0].Score)
}

func TestTerminalRoots(t *testing.T) {
	mated := position(t, board.Black, map[string]board.Placement{
		"h8": black(board.King),
		"g7": white(board.Queen),
		"f6": white(board.King),
	})
	e := newEngine(t, mated, 3, 0)
	require.NoError(t, e.Build())
	assert.True(t, e.Root().Checkmate)
	assert.Equal(t, float64(MateScore), e.Score())
	assert.Empty(t, e.Suggestions())
	assert.Equal(t, 1, e.Tree().Size())
	assert.Equal(t, []NodeID{0}, e.Tree().Leaves(0))

	stalemated := position(t, board.Black, map[string]board.Placement{
		"h8": black(board.King),
		"g6": white(board.Queen),
		"f7": white(board.King),
	})
	e = newEngine(t, stalemated, 3, 0)
	require.NoError(t, e.Build())
	assert.True(t, e.Root().Stalemate)
	assert.Equal(t, 0.0, e.Score())
}

func TestScoreKeepsOnlyTheLastRankedChild(t *testing.T) {
	pos := position(t, board.White, map[string]board.Placement{
		"g1": white(board.King),
		"d1": white(board.Rook),
		"h8": black(board.King),
		"d8": black(board.Queen),
	})
	e := newEngine(t, pos, 1, 0)
	require.NoError(t, e.Build())

	n := len(e.Tree().Children(e.Tree().Root()))
	require.Greater(t, n, 1)
	assert.InDelta(t, 5*math.Pow(0.5, float64(n-1)), e.Score(), 1e-12)

	suggestions := e.Suggestions()
	assert.Equal(t, move(t, "d1d8"), suggestions[0].Move)
	assert.Equal(t, 5.0, suggestions[0].Score)
	for _, s := range suggestions[1:] {
		assert.Equal(t, -4.0, s.Score)
	}
}

func TestScoreRanksDescendingForBlack(t *testing.T) {
	pos := position(t, board.Black, map[string]board.Placement{
		"g1": white(board.King),
		"d1": white(board.Queen),
		"h8": black(board.King),
		"d8": black(board.Rook),
	})
	e := newEngine(t, pos, 1, 0)
	require.NoError(t, e.Build())

	suggestions := e.Suggestions()
	require.NotEmpty(t, suggestions)
	assert.Equal(t, move(t, "d8d1"), suggestions[0].Move)
	assert.Equal(t, -5.0, suggestions[0].Score)

	n := len(suggestions)
	assert.InDelta(t, -5*math.Pow(0.5, float64(n-1)), e.Score(), 1e-12)
}
