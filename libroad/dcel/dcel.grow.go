package dcel

import (
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
)

// AddNode adds a node at pos and attaches it to other with a new pair of half-edges.
// No face is split: the new edge lengthens the boundary of the face lying in the
// angular gap of other that the new edge falls into.
//
// O(n*log(n)) where n is the number of half-edges leaving other.
//
// Returns the new node, whose LeavingHalfEdge() points back at other.
func (d *DCEL) AddNode(pos roadgen.Position, other *Node) *Node {
	d.ownsNode(other)

	node := d.newNode(pos)
	out := d.newHalfEdge(other, node)
	back := d.newHalfEdge(node, other)
	out.pair, back.pair = back.id, out.id

	prev := d.predecessor(other, d.Angle(out), out.id)
	face := d.Pair(prev).face
	d.insertLeaving(prev, out)

	// node is a leaf so its rotation is just back
	out.next = back.id
	out.face, back.face = face, face
	node.leaving = back.id
	return node
}

// SplitEdge splits e (and its pair) at pos with a new node of degree 2.
//
// e keeps its source and now ends at the new node, and a new half-edge continues from
// the new node to e's old target; pair(e) is split the same way.  Both face walks
// pass through the new node and no face is added.
//
// Returns the new node.
func (d *DCEL) SplitEdge(pos roadgen.Position, e *HalfEdge) *Node {
	d.ownsHalfEdge(e)

	twin := d.Pair(e)
	src := d.Source(e)
	dst := d.Target(e)

	node := d.newNode(pos)
	toDst := d.newHalfEdge(node, dst) // continues e
	toSrc := d.newHalfEdge(node, src) // continues twin

	toDst.next, toDst.face = e.next, e.face
	toSrc.next, toSrc.face = twin.next, twin.face

	e.target, twin.target = node.id, node.id
	e.next, twin.next = toDst.id, toSrc.id
	e.pair, toSrc.pair = toSrc.id, e.id
	twin.pair, toDst.pair = toDst.id, twin.id

	node.leaving = toDst.id
	return node
}

// ConnectNodes joins node0 and node1 with a new pair of half-edges, splitting the
// face they share in two.
//
// Assumes both nodes lie on the same face (checked against the angular gaps the new
// edge is inserted into; a violation panics with roadgen.ErrNotOnSameFace).
// The existing face keeps the loop containing node0 -> node1 and a new face is issued
// for the loop containing node1 -> node0.
//
// O(n0*log(n0) + n1*log(n1) + nf) where n0 and n1 are the degrees of node0 and node1
// and nf is the number of half-edges bounding the shared face.
//
// Returns the new face.
func (d *DCEL) ConnectNodes(node0, node1 *Node) *Face {
	prev0, prev1 := d.connectGaps(node0, node1)
	in0 := d.Pair(prev0)
	in1 := d.Pair(prev1)
	if in0.face != in1.face {
		panic(errors.Wrapf(roadgen.ErrNotOnSameFace, "nodes %d (face %d) and %d (face %d)", node0.id, in0.face, node1.id, in1.face))
	}
	face := d.Face(in0.face)

	out := d.newHalfEdge(node0, node1)
	back := d.newHalfEdge(node1, node0)
	out.pair, back.pair = back.id, out.id

	d.insertLeaving(prev0, out)  // sets back.next
	d.insertLeaving(prev1, back) // sets out.next

	out.face = face.id
	face.halfEdge = out.id

	split := d.newFace(back)
	d.eachInFace(split, func(e *HalfEdge) {
		if e == out {
			panic(errors.Wrapf(roadgen.ErrBrokenInvariant, "face %d did not split", face.id))
		}
		e.face = split.id
	})
	return split
}

// CanConnect reports whether ConnectNodes(node0, node1) would succeed: the nodes are
// distinct members of this DCEL and the angular gaps the new edge would occupy at each
// end border the same face.
func (d *DCEL) CanConnect(node0, node1 *Node) bool {
	if node0 == node1 {
		return false
	}
	if got, ok := d.NodeOK(node0.id); !ok || got != node0 {
		return false
	}
	if got, ok := d.NodeOK(node1.id); !ok || got != node1 {
		return false
	}
	prev0, prev1 := d.connectGaps(node0, node1)
	return d.Pair(prev0).face == d.Pair(prev1).face
}

// connectGaps returns the half-edges leaving node0 and node1 that the new pair from
// ConnectNodes would follow in each node's rotation.
func (d *DCEL) connectGaps(node0, node1 *Node) (prev0, prev1 *HalfEdge) {
	d.ownsNode(node0)
	d.ownsNode(node1)
	if node0 == node1 {
		panic(errors.Wrapf(roadgen.ErrSelfConnect, "node %d", node0.id))
	}

	// handles the new pair will be issued
	id0 := HalfEdgeID(d.halfEdges.len())
	id1 := id0 + 1

	prev0 = d.predecessor(node0, angleBetween(node0, node1), id0)
	prev1 = d.predecessor(node1, angleBetween(node1, node0), id1)
	return
}
