package search

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MateScore is the magnitude of a checkmate score.
const MateScore = 100

var ErrUnknownMove = errors.New("move is not in the tree")

// NodeID indexes a node within its tree's arena.
type NodeID int

const noNode NodeID = -1

// Suggestion pairs a candidate move with its score.
type Suggestion struct {
	Move  board.Move `json:"move"`
	Score float64    `json:"score"`
}

// Node is one position in the search tree. Size and leaves are aggregates
// over the node's subtree and are kept current as descendants expand.
type Node struct {
	Position  *board.Position
	Parent    NodeID
	Ply       int
	Score     float64
	Checkmate bool
	Stalemate bool

	expanded bool
	children map[board.Move]NodeID
	moves    []board.Move
	ranked   []Suggestion
	size     int
	leaves   map[NodeID]struct{}
}

func (n *Node) Expanded() bool {
	return n.expanded
}

func (n *Node) Terminal() bool {
	return n.Checkmate || n.Stalemate
}

func (n *Node) Size() int {
	return n.size
}

// Moves lists the moves leading to this node's children, in move order.
func (n *Node) Moves() []board.Move {
	return append([]board.Move(nil), n.moves...)
}

// Tree is an arena of nodes addressed by index. Parents are referenced by
// index, never owned, so advancing the root simply copies the kept subtree
// into a fresh arena.
type Tree struct {
	nodes []*Node
	root  NodeID
}

func NewTree(root *board.Position) *Tree {
	t := &Tree{}
	t.root = t.add(root, noNode)
	return t
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

func (t *Tree) Size() int {
	return t.nodes[t.root].size
}

// Leaves returns the unexpanded or terminal nodes below id, in arena order.
func (t *Tree) Leaves(id NodeID) []NodeID {
	leaves := maps.Keys(t.nodes[id].leaves)
	slices.Sort(leaves)
	return leaves
}

// Child returns the child of id reached by m.
func (t *Tree) Child(id NodeID, m board.Move) (NodeID, bool) {
	child, ok := t.nodes[id].children[m]
	return child, ok
}

// Children returns the children of id in move order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.nodes[id]
	children := make([]NodeID, 0, len(n.moves))
	for _, m := range n.moves {
		children = append(children, n.children[m])
	}
	return children
}

// History lists the moves from the root down to id.
func (t *Tree) History(id NodeID) []board.Move {
	var history []board.Move
	for cur := id; cur != noNode; cur = t.nodes[cur].Parent {
		if m := t.nodes[cur].Position.LastMove(); !m.IsNone() {
			history = append(history, m)
		}
	}
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history
}

// add registers pos as a new node. A node is its own only leaf until it
// expands, and its arrival grows every ancestor by one node and one leaf.
func (t *Tree) add(pos *board.Position, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	n := &Node{
		Position: pos,
		Parent:   parent,
		Score:    float64(pos.Material()),
		children: make(map[board.Move]NodeID),
		size:     1,
		leaves:   map[NodeID]struct{}{id: {}},
	}
	t.nodes = append(t.nodes, n)

	if parent != noNode {
		p := t.nodes[parent]
		n.Ply = p.Ply + 1
		m := pos.LastMove()
		p.children[m] = id
		p.moves = append(p.moves, m)
		t.propagate(parent, 1, noNode, id)
	}
	return id
}

// propagate applies a size delta and a leaf swap to id and every ancestor.
// The cost is bounded by the depth of id, not by the size of any subtree.
func (t *Tree) propagate(id NodeID, grow int, removed, added NodeID) {
	for cur := id; cur != noNode; cur = t.nodes[cur].Parent {
		n := t.nodes[cur]
		n.size += grow
		if removed != noNode {
			delete(n.leaves, removed)
		}
		if added != noNode {
			n.leaves[added] = struct{}{}
		}
	}
}

// Expand generates the children of a leaf. Expanding a node twice is a no-op.
func (t *Tree) Expand(id NodeID) error {
	n := t.nodes[id]
	if n.expanded {
		return nil
	}
	children, err := n.Position.LegalMoves()
	if err != nil {
		return t.annotate(id, err)
	}
	t.attach(id, children)
	return nil
}

// attach links already generated child positions under id.
func (t *Tree) attach(id NodeID, children []*board.Position) {
	n := t.nodes[id]
	n.expanded = true

	if len(children) == 0 {
		turn := n.Position.Turn()
		if n.Position.InCheck(turn) {
			n.Checkmate = true
		} else {
			n.Stalemate = true
		}
		return
	}

	for _, child := range children {
		t.add(child, id)
	}
	t.propagate(id, 0, id, noNode)
}

func (t *Tree) annotate(id NodeID, err error) error {
	history := t.History(id)
	moves := make([]string, len(history))
	for i, m := range history {
		moves[i] = m.String()
	}
	return fmt.Errorf("expanding after [%s]: %w", strings.Join(moves, " "), err)
}

// Score recomputes the score of id and everything below it.
//
// Checkmate favours the side that delivered it, stalemate is level, and an
// unexpanded node is worth its material. Otherwise children are ranked
// ascending, or descending with black to move, and each child replaces the
// running score with its own score weighted by 0.5^rank, so the score that
// remains is that of the last ranked child.
func (t *Tree) Score(id NodeID) float64 {
	n := t.nodes[id]
	turn := n.Position.Turn()

	switch {
	case n.Checkmate:
		n.Score = float64(-MateScore * turn.Sign())
	case n.Stalemate:
		n.Score = 0
	case len(n.moves) == 0:
		n.Score = float64(n.Position.Material())
	default:
		ranked := make([]Suggestion, 0, len(n.moves))
		for _, m := range n.moves {
			ranked = append(ranked, Suggestion{Move: m, Score: t.Score(n.children[m])})
		}
		slices.SortStableFunc(ranked, func(a, b Suggestion) int {
			if turn == board.Black {
				return cmp.Compare(b.Score, a.Score)
			}
			return cmp.Compare(a.Score, b.Score)
		})

		score := 0.0
		for rank, s := range ranked {
			score = s.Score * math.Pow(0.5, float64(rank))
		}
		n.ranked = ranked
		n.Score = score
	}
	return n.Score
}

// Suggestions returns the ranked children of id best first, as of the last Score.
func (t *Tree) Suggestions(id NodeID) []Suggestion {
	ranked := t.nodes[id].ranked
	suggestions := make([]Suggestion, len(ranked))
	for i, s := range ranked {
		suggestions[len(ranked)-1-i] = s
	}
	return suggestions
}

// LevelCounts returns how many nodes sit at each ply below id.
func (t *Tree) LevelCounts(id NodeID) []int {
	var counts []int
	level := []NodeID{id}
	for len(level) > 0 {
		var next []NodeID
		for _, cur := range level {
			next = append(next, t.Children(cur)...)
		}
		if len(next) > 0 {
			counts = append(counts, len(next))
		}
		level = next
	}
	return counts
}

// Reroot makes the child reached by m the new root and drops its siblings.
func (t *Tree) Reroot(m board.Move) error {
	child, ok := t.Child(t.root, m)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMove, m)
	}

	remap := map[NodeID]NodeID{child: 0}
	order := []NodeID{child}
	for i := 0; i < len(order); i++ {
		for _, c := range t.Children(order[i]) {
			remap[c] = NodeID(len(order))
			order = append(order, c)
		}
	}

	nodes := make([]*Node, len(order))
	for i, old := range order {
		n := t.nodes[old]
		if i == 0 {
			n.Parent = noNode
		} else {
			n.Parent = remap[n.Parent]
		}
		for mv, c := range n.children {
			n.children[mv] = remap[c]
		}
		leaves := make(map[NodeID]struct{}, len(n.leaves))
		for leaf := range n.leaves {
			leaves[remap[leaf]] = struct{}{}
		}
		n.leaves = leaves
		nodes[i] = n
	}

	base := nodes[0].Ply
	for _, n := range nodes {
		n.Ply -= base
	}

	t.nodes = nodes
	t.root = 0
	return nil
}
