package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrUnboundedSearch = errors.New("at least one of max depth or max breadth must be set")

// Engine drives breadth-first expansion of a Tree within a depth budget and
// a node budget. A zero limit is unbounded, but not both.
type Engine struct {
	tree       *Tree
	maxDepth   int
	maxBreadth int
	depth      int
	workers    int
	logger     zerolog.Logger
}

// Option configures the engine
type Option func(*Engine)

// WithLogger sets a custom logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWorkers generates the children of up to n leaves at a time.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func NewEngine(start *board.Position, maxDepth, maxBreadth int, opts ...Option) (*Engine, error) {
	if maxDepth < 0 || maxBreadth < 0 {
		return nil, fmt.Errorf("negative search limits: depth %d, breadth %d", maxDepth, maxBreadth)
	}
	if maxDepth == 0 && maxBreadth == 0 {
		return nil, ErrUnboundedSearch
	}

	e := &Engine{
		tree:       NewTree(start),
		maxDepth:   maxDepth,
		maxBreadth: maxBreadth,
		workers:    1,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Tree() *Tree {
	return e.tree
}

func (e *Engine) Root() *Node {
	return e.tree.Node(e.tree.Root())
}

func (e *Engine) Depth() int {
	return e.depth
}

func (e *Engine) Score() float64 {
	return e.Root().Score
}

// Build expands every current leaf, level by level, until the depth budget
// is spent or the tree reaches the breadth cap, then scores the whole tree.
func (e *Engine) Build() error {
	started := time.Now()

	for e.withinLimits() {
		leaves := e.tree.Leaves(e.tree.Root())
		expanded, err := e.expandLevel(leaves)
		if err != nil {
			return err
		}
		if expanded == 0 {
			break
		}
		e.depth++

		e.logger.Debug().
			Int("depth", e.depth).
			Int("expanded", expanded).
			Int("size", e.tree.Size()).
			Int("leaves", len(e.tree.Node(e.tree.Root()).leaves)).
			Msg("Expanded search level")
	}

	score := e.tree.Score(e.tree.Root())
	e.logger.Debug().
		Float64("score", score).
		Int("size", e.tree.Size()).
		Dur("elapsed", time.Since(started)).
		Msg("Scored search tree")
	return nil
}

func (e *Engine) withinLimits() bool {
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return false
	}
	if e.maxBreadth > 0 && e.tree.Size() >= e.maxBreadth {
		return false
	}
	return true
}

// expandLevel expands the given leaves and reports how many were expanded.
// With several workers the children are generated concurrently, but they are
// attached one leaf at a time since sibling leaves share ancestors.
func (e *Engine) expandLevel(leaves []NodeID) (int, error) {
	var pending []NodeID
	for _, id := range leaves {
		if !e.tree.Node(id).expanded {
			pending = append(pending, id)
		}
	}

	if e.workers <= 1 {
		for _, id := range pending {
			if err := e.tree.Expand(id); err != nil {
				return 0, err
			}
		}
		return len(pending), nil
	}

	results := make([][]*board.Position, len(pending))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, id := range pending {
		i, id := i, id
		pos := e.tree.Node(id).Position
		g.Go(func() error {
			children, err := pos.LegalMoves()
			if err != nil {
				return e.tree.annotate(id, err)
			}
			results[i] = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, id := range pending {
		e.tree.attach(id, results[i])
	}
	return len(pending), nil
}

// Suggestions returns every root move, best first for the side to move.
func (e *Engine) Suggestions() []Suggestion {
	return e.tree.Suggestions(e.tree.Root())
}

// Advance re-roots the tree at the child reached by m and gives back one
// level of depth budget. Build must be called again afterwards.
func (e *Engine) Advance(m board.Move) error {
	if err := e.tree.Expand(e.tree.Root()); err != nil {
		return err
	}
	if err := e.tree.Reroot(m); err != nil {
		return err
	}
	if e.depth > 0 {
		e.depth--
	}

	e.logger.Debug().
		Str("move", m.String()).
		Int("size", e.tree.Size()).
		Int("depth", e.depth).
		Msg("Advanced search root")
	return nil
}
