package board

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/immutable"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Position is a board plus two incrementally maintained indexes: which
// pieces see each square, and which squares each piece may pseudo-legally
// move to. The indexes are persistent maps shared with the parent position,
// so a position is never mutated once another position has been derived from it.
type Position struct {
	state State

	board  map[Square]PieceID
	pieces map[PieceID]Piece
	seenBy *immutable.Map[Square, *pieceSet]
	dests  *immutable.Map[PieceID, *squareSet]
}

// NewPosition places the given pieces, with turn to move, and builds every index from scratch.
func NewPosition(placements map[Square]Placement, turn Color) (*Position, error) {
	p := &Position{
		state:  State{LastMove: NoMove, Turn: turn, kings: [2]Square{NoSquare, NoSquare}},
		board:  make(map[Square]PieceID, len(placements)),
		pieces: make(map[PieceID]Piece, len(placements)),
	}

	squares := maps.Keys(placements)
	slices.SortFunc(squares, compareSquares)

	for i, sq := range squares {
		if !sq.Valid() {
			return nil, fmt.Errorf("%w: piece placed off the board", ErrInvariant)
		}
		pl := placements[sq]
		piece := Piece{
			ID:     PieceID(i + 1),
			Kind:   pl.Kind,
			Color:  pl.Color,
			Moved:  pl.Moved,
			Square: sq,
		}
		if piece.Kind == King {
			if p.state.kings[piece.Color] != NoSquare {
				return nil, fmt.Errorf("%w: second %s king on %s", ErrInvariant, piece.Color, sq)
			}
			p.state.kings[piece.Color] = sq
		}
		p.board[sq] = piece.ID
		p.pieces[piece.ID] = piece
		p.state.Material += piece.Color.Sign() * piece.Kind.Value()
	}

	for _, c := range []Color{White, Black} {
		if p.state.kings[c] == NoSquare {
			return nil, fmt.Errorf("%w: no %s king", ErrInvariant, c)
		}
	}

	if err := p.Rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

// Rebuild discards both indexes and fully rescans every piece.
func (p *Position) Rebuild() error {
	p.seenBy = newWatcherIndex()
	p.dests = newDestinationIndex()
	p.state.checks = [2]CheckTracker{}

	for _, id := range p.pieceIDs() {
		piece := p.pieces[id]
		piece.sight = newSight()
		p.pieces[id] = piece
		if err := p.scan(id, nil); err != nil {
			return err
		}
	}
	return nil
}

func (p *Position) State() State {
	return p.state
}

func (p *Position) Turn() Color {
	return p.state.Turn
}

func (p *Position) LastMove() Move {
	return p.state.LastMove
}

func (p *Position) Material() int {
	return p.state.Material
}

func (p *Position) InCheck(c Color) bool {
	return p.state.InCheck(c)
}

func (p *Position) Checks(c Color) CheckTracker {
	return p.state.Checks(c)
}

func (p *Position) KingSquare(c Color) Square {
	return p.state.KingSquare(c)
}

// PieceAt returns a copy of the piece on sq.
func (p *Position) PieceAt(sq Square) (Piece, bool) {
	id, ok := p.board[sq]
	if !ok {
		return Piece{}, false
	}
	piece := p.pieces[id]
	piece.sight = nil
	return piece, true
}

func (p *Position) Placements() map[Square]Placement {
	placements := make(map[Square]Placement, len(p.board))
	for sq, id := range p.board {
		piece := p.pieces[id]
		placements[sq] = piece.Placement()
	}
	return placements
}

// Destinations lists the pseudo-legal destinations of the piece on sq.
func (p *Position) Destinations(sq Square) []Square {
	id, ok := p.board[sq]
	if !ok {
		return nil
	}
	dests, _ := p.dests.Get(id)
	return sortedSquares(dests)
}

// Watchers lists the squares of every piece that currently sees sq.
func (p *Position) Watchers(sq Square) []Square {
	watchers, _ := p.seenBy.Get(sq)
	squares := make([]Square, 0, 8)
	for _, id := range keys(watchers) {
		squares = append(squares, p.pieces[id].Square)
	}
	if len(squares) == 0 {
		return nil
	}
	slices.SortFunc(squares, compareSquares)
	return squares
}

// MaterialCount is the material each side still has on the board.
type MaterialCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (p *Position) MaterialCount() MaterialCount {
	var count MaterialCount
	for _, piece := range p.pieces {
		if piece.Color == White {
			count.White += piece.Kind.Value()
		} else {
			count.Black += piece.Kind.Value()
		}
	}
	return count
}

// Play returns the position reached by applying m to a copy of p.
func (p *Position) Play(m Move) (*Position, error) {
	child := p.clone()
	if err := child.applyMove(m); err != nil {
		return nil, err
	}
	return child, nil
}

// LegalMoves returns one child position for every legal move of the side to
// move, ordered by move. A candidate is legal when applying it does not leave
// the mover's king attacked; anything else going wrong is returned as an error.
func (p *Position) LegalMoves() ([]*Position, error) {
	candidates, err := p.candidates()
	if err != nil {
		return nil, err
	}

	children := make([]*Position, 0, len(candidates))
	for _, m := range candidates {
		child, err := p.Play(m)
		if errors.Is(err, ErrIllegalPosition) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("playing %s: %w", m, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func (p *Position) candidates() ([]Move, error) {
	turn := p.state.Turn
	checks := p.state.checks[turn]
	var moves []Move

	if !checks.InCheck() {
		itr := p.dests.Iterator()
		for !itr.Done() {
			id, dests, _ := itr.Next()
			piece := p.pieces[id]
			if piece.Color != turn {
				continue
			}
			for _, sq := range keys(dests) {
				moves = append(moves, Move{From: piece.Square, To: sq})
			}
		}
		slices.SortFunc(moves, CompareMoves)
		return moves, nil
	}

	kingSquare := p.state.kings[turn]
	kingID, ok := p.board[kingSquare]
	if !ok || p.pieces[kingID].Kind != King {
		return nil, fmt.Errorf("%w: %s king missing from %s", ErrInvariant, turn, kingSquare)
	}
	kingDests, _ := p.dests.Get(kingID)
	for _, sq := range sortedSquares(kingDests) {
		moves = append(moves, Move{From: kingSquare, To: sq})
	}

	for _, sq := range checks.BlockingSquares() {
		watchers, _ := p.seenBy.Get(sq)
		for _, id := range keys(watchers) {
			piece := p.pieces[id]
			dests, _ := p.dests.Get(id)
			if id == kingID || piece.Color != turn || !contains(dests, sq) {
				continue
			}
			moves = append(moves, Move{From: piece.Square, To: sq})
		}
	}
	slices.SortFunc(moves, CompareMoves)
	return moves, nil
}

func (p *Position) clone() *Position {
	return &Position{
		state:  p.state,
		board:  maps.Clone(p.board),
		pieces: maps.Clone(p.pieces),
		seenBy: p.seenBy,
		dests:  p.dests,
	}
}

func (p *Position) applyMove(m Move) error {
	moverID, ok := p.board[m.From]
	if !ok {
		return fmt.Errorf("%w: no piece on %s", ErrTurnViolation, m.From)
	}
	mover := p.pieces[moverID]
	if mover.Color != p.state.Turn {
		return fmt.Errorf("%w: %s %s on %s moved with %s to move",
			ErrTurnViolation, mover.Color, mover.Kind, m.From, p.state.Turn)
	}
	if !m.To.Valid() || m.To == m.From {
		return fmt.Errorf("%w: %s %s cannot move to %s", ErrInvariant, mover.Color, mover.Kind, m.To)
	}

	rescan := p.watchers(m.From, m.To)
	delete(rescan, moverID)

	if capturedID, ok := p.board[m.To]; ok {
		captured := p.pieces[capturedID]
		if captured.Color == mover.Color || captured.Kind == King {
			return fmt.Errorf("%w: %s captures %s %s on %s",
				ErrInvariant, m, captured.Color, captured.Kind, m.To)
		}
		p.state.Material -= captured.Color.Sign() * captured.Kind.Value()
		p.forget(captured)
		delete(p.pieces, capturedID)
		delete(rescan, capturedID)
	}

	p.forget(mover)
	mover.sight = newSight()
	mover.Square = m.To
	mover.Moved = true
	p.pieces[moverID] = mover
	delete(p.board, m.From)
	p.board[m.To] = moverID
	if mover.Kind == King {
		p.state.kings[mover.Color] = m.To
	}

	p.state.LastMove = m
	p.state.Turn = p.state.Turn.Other()
	p.state.checks = [2]CheckTracker{}

	if err := p.scan(moverID, nil); err != nil {
		return err
	}

	ids := maps.Keys(rescan)
	slices.Sort(ids)
	for _, id := range ids {
		if err := p.scan(id, &m); err != nil {
			return err
		}
	}
	return nil
}

// watchers collects every piece that sees any of the given squares.
func (p *Position) watchers(squares ...Square) map[PieceID]struct{} {
	ids := make(map[PieceID]struct{})
	for _, sq := range squares {
		watchers, _ := p.seenBy.Get(sq)
		for _, id := range keys(watchers) {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// forget removes a piece from both indexes. Its own sight cache is left to the caller.
func (p *Position) forget(piece Piece) {
	for _, sq := range keys(piece.sight) {
		p.seenBy = exclude(p.seenBy, sq, piece.ID)
	}
	p.dests = p.dests.Delete(piece.ID)
}

// scan walks the vectors of a piece and refreshes both indexes along them.
// Without a move every vector is walked; with one, only the vectors that
// currently reach the move's start or end square can have changed.
func (p *Position) scan(id PieceID, disturbed *Move) error {
	piece := p.pieces[id]
	defer func() { p.pieces[id] = piece }()
	vectors := piece.Vectors()

	if disturbed == nil {
		for i := range vectors {
			if err := p.walk(&piece, vectors[i], i); err != nil {
				return err
			}
		}
		return nil
	}

	from, fromOK := piece.sight.Get(disturbed.From)
	to, toOK := piece.sight.Get(disturbed.To)
	if fromOK {
		if err := p.walk(&piece, vectors[from], from); err != nil {
			return err
		}
	}
	if toOK && (!fromOK || to != from) {
		if err := p.walk(&piece, vectors[to], to); err != nil {
			return err
		}
	}
	return nil
}

func (p *Position) walk(piece *Piece, v Vector, index int) error {
	blocked := false
	sq := piece.Square
	for distance := 1; ; distance++ {
		sq = sq.Offset(v.DFile, v.DRank)
		if !sq.Valid() {
			return nil
		}
		if blocked || distance > v.MaxDistance {
			p.unsee(piece, sq)
			continue
		}

		p.see(piece, sq, index)
		occupantID, occupied := p.board[sq]
		if !occupied {
			if v.CaptureOnly {
				p.removeDest(piece.ID, sq)
			} else {
				p.addDest(piece.ID, sq)
			}
			continue
		}

		blocked = true
		occupant := p.pieces[occupantID]
		if occupant.Color == piece.Color || !v.CanCapture {
			p.removeDest(piece.ID, sq)
			continue
		}
		if occupant.Kind == King {
			if occupant.Color == p.state.NextTurn() {
				return fmt.Errorf("%w: %s %s on %s attacks the %s king on %s",
					ErrIllegalPosition, piece.Color, piece.Kind, piece.Square, occupant.Color, sq)
			}
			if err := p.state.checks[occupant.Color].add(piece.Square, sq, v); err != nil {
				return err
			}
		}
		p.addDest(piece.ID, sq)
	}
}

func (p *Position) see(piece *Piece, sq Square, index int) {
	if i, ok := piece.sight.Get(sq); !ok || i != index {
		piece.sight = piece.sight.Set(sq, index)
	}
	p.seenBy = include(p.seenBy, sq, piece.ID, newPieceSet)
}

func (p *Position) unsee(piece *Piece, sq Square) {
	piece.sight = piece.sight.Delete(sq)
	p.seenBy = exclude(p.seenBy, sq, piece.ID)
	p.removeDest(piece.ID, sq)
}

func (p *Position) addDest(id PieceID, sq Square) {
	p.dests = include(p.dests, id, sq, newSquareSet)
}

func (p *Position) removeDest(id PieceID, sq Square) {
	p.dests = exclude(p.dests, id, sq)
}

func (p *Position) pieceIDs() []PieceID {
	ids := maps.Keys(p.pieces)
	slices.Sort(ids)
	return ids
}
