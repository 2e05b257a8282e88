package board

import "fmt"

// CheckTracker records the attack paths currently aimed at one color's king.
// Each path runs from the attacker's square up to, but excluding, the king.
type CheckTracker struct {
	paths [][]Square
}

func (t CheckTracker) InCheck() bool {
	return len(t.paths) > 0
}

func (t CheckTracker) Paths() [][]Square {
	paths := make([][]Square, len(t.paths))
	for i, path := range t.paths {
		paths[i] = append([]Square(nil), path...)
	}
	return paths
}

// BlockingSquares returns the squares on which a piece would capture or
// intercept the only checking piece. Double check cannot be blocked, so it
// yields nothing, as does no check at all.
func (t CheckTracker) BlockingSquares() []Square {
	if len(t.paths) != 1 {
		return nil
	}
	return append([]Square(nil), t.paths[0]...)
}

func (t *CheckTracker) add(attacker, king Square, v Vector) error {
	if !v.CanCapture {
		return fmt.Errorf("%w: non-capturing vector from %s checks %s", ErrInvariant, attacker, king)
	}

	var path []Square
	sq := attacker
	for distance := 1; ; distance++ {
		path = append(path, sq)
		if distance > v.MaxDistance {
			return fmt.Errorf("%w: king on %s is out of reach from %s", ErrInvariant, king, attacker)
		}
		sq = sq.Offset(v.DFile, v.DRank)
		if !sq.Valid() {
			return fmt.Errorf("%w: king on %s is not on the line from %s", ErrInvariant, king, attacker)
		}
		if sq == king {
			break
		}
	}

	t.paths = append(t.paths, path)
	return nil
}

// State is the per-position bookkeeping that travels with every board.
type State struct {
	LastMove Move
	Turn     Color
	Material int

	checks [2]CheckTracker
	kings  [2]Square
}

func (s State) NextTurn() Color {
	return s.Turn.Other()
}

func (s State) Checks(c Color) CheckTracker {
	return s.checks[c]
}

func (s State) InCheck(c Color) bool {
	return s.checks[c].InCheck()
}

func (s State) KingSquare(c Color) Square {
	return s.kings[c]
}
