// Package dcel implements an append-only doubly-connected edge list used to grow
// planar road graphs.
//
// Orientation: Angle() is atan2(dy, dx), zero along +X and increasing counter-clockwise
// in a Y-up frame.  The half-edges leaving a node, visited via NextInNode(), run in
// increasing angle order, which places the face of each half-edge on its right in a
// Y-up frame (on its left in the Y-down frame map tooling uses).
package dcel

import (
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
)

// NodeID, HalfEdgeID and FaceID are zero-based handles issued in creation order.
type (
	NodeID     int32
	HalfEdgeID int32
	FaceID     int32
)

const (
	NilNode     NodeID     = -1
	NilHalfEdge HalfEdgeID = -1
	NilFace     FaceID     = -1
)

// Node is a graph vertex.  Its position never changes after creation.
type Node struct {
	Payload any // caller data; never inspected by the DCEL

	id      NodeID
	pos     roadgen.Position
	leaving HalfEdgeID
}

func (n *Node) ID() NodeID                 { return n.id }
func (n *Node) Position() roadgen.Position { return n.pos }

// HalfEdge is one directed traversal of an edge.
type HalfEdge struct {
	Payload any

	id     HalfEdgeID
	source NodeID
	target NodeID
	pair   HalfEdgeID
	next   HalfEdgeID
	face   FaceID
}

func (e *HalfEdge) ID() HalfEdgeID { return e.id }

// Face is a closed boundary loop of half-edges.
type Face struct {
	Payload any

	id       FaceID
	halfEdge HalfEdgeID
}

func (f *Face) ID() FaceID { return f.id }

// noCopy lets `go vet` (copylocks) flag a DCEL passed or assigned by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// DCEL is a doubly-connected edge list.  Elements are only ever added, never removed,
// and every *Node, *HalfEdge and *Face handed out stays valid for the life of the DCEL.
//
// A DCEL must not be copied; use Clone() for a deep copy.  It has no internal locking.
type DCEL struct {
	noCopy noCopy

	nodes     arena[Node]
	halfEdges arena[HalfEdge]
	faces     arena[Face]
}

// New creates a DCEL with 2 nodes, 2 half-edges and 1 face.
func New(pos0, pos1 roadgen.Position) *DCEL {
	d := &DCEL{}

	n0 := d.newNode(pos0)
	n1 := d.newNode(pos1)
	e01 := d.newHalfEdge(n0, n1)
	e10 := d.newHalfEdge(n1, n0)
	e01.pair, e10.pair = e10.id, e01.id
	e01.next, e10.next = e10.id, e01.id
	n0.leaving, n1.leaving = e01.id, e10.id

	face := d.newFace(e01)
	e01.face, e10.face = face.id, face.id
	return d
}

// NewCycle creates a DCEL forming a closed loop through the given positions.
// The result has N nodes, 2N half-edges and 2 faces (inside and outside).
func NewCycle(cycle []roadgen.Position) (*DCEL, error) {
	if len(cycle) <= 2 {
		return nil, errors.Wrapf(roadgen.ErrCycleTooShort, "got %d positions, need at least 3", len(cycle))
	}

	d := New(cycle[0], cycle[1])
	last := d.Node(1)
	for _, pos := range cycle[2:] {
		last = d.AddNode(pos, last)
	}
	d.ConnectNodes(d.Node(0), last)
	return d, nil
}

// MustNewCycle is NewCycle for literal fixtures; it panics if the cycle is too short.
func MustNewCycle(cycle ...roadgen.Position) *DCEL {
	d, err := NewCycle(cycle)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *DCEL) CountNodes() int     { return d.nodes.len() }
func (d *DCEL) CountHalfEdges() int { return d.halfEdges.len() }
func (d *DCEL) CountFaces() int     { return d.faces.len() }

// Node returns the node with the given handle and panics if there is none.
func (d *DCEL) Node(id NodeID) *Node {
	node, ok := d.NodeOK(id)
	if !ok {
		panic(errors.Wrapf(roadgen.ErrBadNodeID, "node %d of %d", id, d.nodes.len()))
	}
	return node
}

func (d *DCEL) NodeOK(id NodeID) (*Node, bool) {
	if !d.nodes.inRange(int(id)) {
		return nil, false
	}
	return d.nodes.at(int(id)), true
}

// HalfEdge returns the half-edge with the given handle and panics if there is none.
func (d *DCEL) HalfEdge(id HalfEdgeID) *HalfEdge {
	e, ok := d.HalfEdgeOK(id)
	if !ok {
		panic(errors.Wrapf(roadgen.ErrBadHalfEdgeID, "half-edge %d of %d", id, d.halfEdges.len()))
	}
	return e
}

func (d *DCEL) HalfEdgeOK(id HalfEdgeID) (*HalfEdge, bool) {
	if !d.halfEdges.inRange(int(id)) {
		return nil, false
	}
	return d.halfEdges.at(int(id)), true
}

func (d *DCEL) Face(id FaceID) *Face {
	face, ok := d.FaceOK(id)
	if !ok {
		panic(errors.Wrapf(roadgen.ErrBadFaceID, "face %d of %d", id, d.faces.len()))
	}
	return face
}

func (d *DCEL) FaceOK(id FaceID) (*Face, bool) {
	if !d.faces.inRange(int(id)) {
		return nil, false
	}
	return d.faces.at(int(id)), true
}

// NodeRange is a read-only view over all nodes in creation order.
type NodeRange struct{ d *DCEL }

func (r NodeRange) Len() int       { return r.d.nodes.len() }
func (r NodeRange) At(i int) *Node { return r.d.Node(NodeID(i)) }

// Each calls fn for each node until fn returns false.
func (r NodeRange) Each(fn func(node *Node) bool) {
	for i := 0; i < r.d.nodes.len(); i++ {
		if !fn(r.d.nodes.at(i)) {
			return
		}
	}
}

// HalfEdgeRange is a read-only view over all half-edges in creation order.
type HalfEdgeRange struct{ d *DCEL }

func (r HalfEdgeRange) Len() int           { return r.d.halfEdges.len() }
func (r HalfEdgeRange) At(i int) *HalfEdge { return r.d.HalfEdge(HalfEdgeID(i)) }

func (r HalfEdgeRange) Each(fn func(e *HalfEdge) bool) {
	for i := 0; i < r.d.halfEdges.len(); i++ {
		if !fn(r.d.halfEdges.at(i)) {
			return
		}
	}
}

// FaceRange is a read-only view over all faces in creation order.
type FaceRange struct{ d *DCEL }

func (r FaceRange) Len() int       { return r.d.faces.len() }
func (r FaceRange) At(i int) *Face { return r.d.Face(FaceID(i)) }

func (r FaceRange) Each(fn func(face *Face) bool) {
	for i := 0; i < r.d.faces.len(); i++ {
		if !fn(r.d.faces.at(i)) {
			return
		}
	}
}

func (d *DCEL) Nodes() NodeRange         { return NodeRange{d} }
func (d *DCEL) HalfEdges() HalfEdgeRange { return HalfEdgeRange{d} }
func (d *DCEL) Faces() FaceRange         { return FaceRange{d} }

// Clone returns a deep copy of this DCEL with identical handles.
// Payloads are copied by reference.
func (d *DCEL) Clone() *DCEL {
	dup := &DCEL{}
	for i := 0; i < d.nodes.len(); i++ {
		node, _ := dup.nodes.alloc()
		*node = *d.nodes.at(i)
	}
	for i := 0; i < d.halfEdges.len(); i++ {
		e, _ := dup.halfEdges.alloc()
		*e = *d.halfEdges.at(i)
	}
	for i := 0; i < d.faces.len(); i++ {
		face, _ := dup.faces.alloc()
		*face = *d.faces.at(i)
	}
	return dup
}

func (d *DCEL) newNode(pos roadgen.Position) *Node {
	node, idx := d.nodes.alloc()
	*node = Node{
		id:      NodeID(idx),
		pos:     pos,
		leaving: NilHalfEdge,
	}
	return node
}

// newHalfEdge allocates an unlinked half-edge from src to dst.
func (d *DCEL) newHalfEdge(src, dst *Node) *HalfEdge {
	e, idx := d.halfEdges.alloc()
	*e = HalfEdge{
		id:     HalfEdgeID(idx),
		source: src.id,
		target: dst.id,
		pair:   NilHalfEdge,
		next:   NilHalfEdge,
		face:   NilFace,
	}
	return e
}

func (d *DCEL) newFace(e *HalfEdge) *Face {
	face, idx := d.faces.alloc()
	*face = Face{
		id:       FaceID(idx),
		halfEdge: e.id,
	}
	return face
}
