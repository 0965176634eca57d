package dcel

import (
	"math"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// Angle returns the polar angle of e in [-π, π]: zero along +X, counter-clockwise positive.
func (d *DCEL) Angle(e *HalfEdge) float64 {
	return angleBetween(d.Source(e), d.Target(e))
}

func angleBetween(from, to *Node) float64 {
	dx, dy := to.pos.Sub(from.pos)
	return math.Atan2(dy, dx)
}

// rotationKey orders half-edges around a node by angle, then by handle so that
// equal-angle half-edges keep creation order.
type rotationKey struct {
	angle float64
	id    HalfEdgeID
}

func rotationComparator(a, b interface{}) int {
	ka := a.(rotationKey)
	kb := b.(rotationKey)
	switch {
	case ka.angle < kb.angle:
		return -1
	case ka.angle > kb.angle:
		return 1
	case ka.id < kb.id:
		return -1
	case ka.id > kb.id:
		return 1
	}
	return 0
}

// rotation loads every half-edge leaving node into a tree keyed by rotationKey.
func (d *DCEL) rotation(node *Node) *redblacktree.Tree {
	tree := redblacktree.NewWith(rotationComparator)
	d.eachLeaving(node, func(e *HalfEdge) {
		tree.Put(rotationKey{d.Angle(e), e.id}, e)
	})
	return tree
}

// predecessor returns the half-edge leaving node that a new half-edge with the given
// angle and handle would follow in the rotation (wrapping around past -π).
//
// O(n*log(n)) where n is the degree of node.
func (d *DCEL) predecessor(node *Node, angle float64, id HalfEdgeID) *HalfEdge {
	tree := d.rotation(node)
	prev, found := tree.Floor(rotationKey{angle, id})
	if !found {
		prev = tree.Right()
	}
	return prev.Value.(*HalfEdge)
}

// insertLeaving splices e into the rotation of its source directly after prev.
// The face walk that ran pair(prev) -> next(pair(prev)) now runs pair(prev) -> e ... pair(e) -> next(pair(prev)).
// The caller links e.next and assigns faces.
func (d *DCEL) insertLeaving(prev, e *HalfEdge) {
	in := d.Pair(prev)
	succ := d.NextInFace(in)
	in.next = e.id
	d.Pair(e).next = succ.id
}
