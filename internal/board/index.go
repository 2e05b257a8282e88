package board

import (
	"github.com/benbjohnson/immutable"
	"golang.org/x/exp/slices"
)

// Index sets are persistent maps: a child position updates its own copy of
// an index in place of the parent's and the two share every untouched node.

type squareHasher struct{}

func (squareHasher) Hash(sq Square) uint32 {
	return uint32(sq.Index())
}

func (squareHasher) Equal(a, b Square) bool {
	return a == b
}

type pieceHasher struct{}

func (pieceHasher) Hash(id PieceID) uint32 {
	return uint32(id)
}

func (pieceHasher) Equal(a, b PieceID) bool {
	return a == b
}

type (
	squareSet = immutable.Map[Square, struct{}]
	pieceSet  = immutable.Map[PieceID, struct{}]
	sightMap  = immutable.Map[Square, int]
)

func newSquareSet() *squareSet {
	return immutable.NewMap[Square, struct{}](squareHasher{})
}

func newPieceSet() *pieceSet {
	return immutable.NewMap[PieceID, struct{}](pieceHasher{})
}

func newSight() *sightMap {
	return immutable.NewMap[Square, int](squareHasher{})
}

func newWatcherIndex() *immutable.Map[Square, *pieceSet] {
	return immutable.NewMap[Square, *pieceSet](squareHasher{})
}

func newDestinationIndex() *immutable.Map[PieceID, *squareSet] {
	return immutable.NewMap[PieceID, *squareSet](pieceHasher{})
}

func contains[K any](m *immutable.Map[K, struct{}], k K) bool {
	if m == nil {
		return false
	}
	_, ok := m.Get(k)
	return ok
}

func keys[K, V any](m *immutable.Map[K, V]) []K {
	if m == nil {
		return nil
	}
	out := make([]K, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		k, _, _ := itr.Next()
		out = append(out, k)
	}
	return out
}

func sortedSquares(s *squareSet) []Square {
	squares := keys(s)
	slices.SortFunc(squares, compareSquares)
	return squares
}

// include returns the set stored under key with item added, creating it if needed.
func include[K, I any](index *immutable.Map[K, *immutable.Map[I, struct{}]], key K, item I,
	empty func() *immutable.Map[I, struct{}]) *immutable.Map[K, *immutable.Map[I, struct{}]] {
	s, _ := index.Get(key)
	if contains(s, item) {
		return index
	}
	if s == nil {
		s = empty()
	}
	return index.Set(key, s.Set(item, struct{}{}))
}

// exclude returns the index with item removed from the set under key. Empty
// sets are dropped.
func exclude[K, I any](index *immutable.Map[K, *immutable.Map[I, struct{}]], key K, item I) *immutable.Map[K, *immutable.Map[I, struct{}]] {
	s, _ := index.Get(key)
	if !contains(s, item) {
		return index
	}
	s = s.Delete(item)
	if s.Len() == 0 {
		return index.Delete(key)
	}
	return index.Set(key, s)
}
