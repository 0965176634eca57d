package dcel

import (
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
)

// Accessors below are contracts: reading a link that was never set means the structure
// is broken or the caller passed a foreign element, so they panic rather than return an error.

func unsetLink(link string, elem interface{}) {
	panic(errors.Wrapf(roadgen.ErrUnsetLink, "%s of %v", link, elem))
}

func (d *DCEL) Source(e *HalfEdge) *Node {
	if e.source == NilNode {
		unsetLink("source", e)
	}
	return d.Node(e.source)
}

func (d *DCEL) Target(e *HalfEdge) *Node {
	if e.target == NilNode {
		unsetLink("target", e)
	}
	return d.Node(e.target)
}

func (d *DCEL) Pair(e *HalfEdge) *HalfEdge {
	if e.pair == NilHalfEdge {
		unsetLink("pair", e)
	}
	return d.HalfEdge(e.pair)
}

// FaceOf returns the face bordered by e.
func (d *DCEL) FaceOf(e *HalfEdge) *Face {
	if e.face == NilFace {
		unsetLink("face", e)
	}
	return d.Face(e.face)
}

// LeavingHalfEdge returns one (arbitrary but stable) half-edge leaving node.
func (d *DCEL) LeavingHalfEdge(node *Node) *HalfEdge {
	if node.leaving == NilHalfEdge {
		unsetLink("leaving half-edge", node)
	}
	return d.HalfEdge(node.leaving)
}

// HalfEdgeOf returns the representative half-edge of face's boundary.
func (d *DCEL) HalfEdgeOf(face *Face) *HalfEdge {
	if face.halfEdge == NilHalfEdge {
		unsetLink("half-edge", face)
	}
	return d.HalfEdge(face.halfEdge)
}

// NextInFace returns the half-edge following e along the boundary walk of its face.
func (d *DCEL) NextInFace(e *HalfEdge) *HalfEdge {
	if e.next == NilHalfEdge {
		unsetLink("next", e)
	}
	return d.HalfEdge(e.next)
}

// NextInNode returns the half-edge after e in the angular rotation around e's source.
func (d *DCEL) NextInNode(e *HalfEdge) *HalfEdge {
	return d.NextInFace(d.Pair(e))
}

// OutgoingHalfEdges returns the half-edges leaving node in rotation order, starting
// with LeavingHalfEdge(node).
func (d *DCEL) OutgoingHalfEdges(node *Node) []*HalfEdge {
	var out []*HalfEdge
	d.eachLeaving(node, func(e *HalfEdge) {
		out = append(out, e)
	})
	return out
}

func (d *DCEL) Degree(node *Node) int {
	n := 0
	d.eachLeaving(node, func(*HalfEdge) { n++ })
	return n
}

// Boundary returns the boundary walk of face starting with HalfEdgeOf(face).
func (d *DCEL) Boundary(face *Face) []*HalfEdge {
	var out []*HalfEdge
	d.eachInFace(face, func(e *HalfEdge) {
		out = append(out, e)
	})
	return out
}

func (d *DCEL) BoundaryLength(face *Face) int {
	n := 0
	d.eachInFace(face, func(*HalfEdge) { n++ })
	return n
}

func (d *DCEL) eachLeaving(node *Node, fn func(e *HalfEdge)) {
	first := d.LeavingHalfEdge(node)
	e := first
	for steps := 0; ; steps++ {
		if steps >= d.halfEdges.len() {
			panic(errors.Wrapf(roadgen.ErrBrokenInvariant, "rotation around node %d does not close", node.id))
		}
		fn(e)
		e = d.NextInNode(e)
		if e == first {
			break
		}
	}
}

func (d *DCEL) eachInFace(face *Face, fn func(e *HalfEdge)) {
	first := d.HalfEdgeOf(face)
	e := first
	for steps := 0; ; steps++ {
		if steps >= d.halfEdges.len() {
			panic(errors.Wrapf(roadgen.ErrBrokenInvariant, "boundary of face %d does not close", face.id))
		}
		fn(e)
		e = d.NextInFace(e)
		if e == first {
			break
		}
	}
}

// ownsNode and ownsHalfEdge panic if the given element was not issued by this DCEL.
func (d *DCEL) ownsNode(node *Node) {
	if got, ok := d.NodeOK(node.id); !ok || got != node {
		panic(errors.Wrapf(roadgen.ErrForeignElement, "node %d", node.id))
	}
}

func (d *DCEL) ownsHalfEdge(e *HalfEdge) {
	if got, ok := d.HalfEdgeOK(e.id); !ok || got != e {
		panic(errors.Wrapf(roadgen.ErrForeignElement, "half-edge %d", e.id))
	}
}
