package dcel

import (
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
)

// Validate checks every DCEL invariant and returns an error wrapping
// roadgen.ErrBrokenInvariant describing the first violation found.
//
// Unlike the accessors, Validate never panics on unset or out of range links, so it
// is safe to run on decoded or otherwise untrusted data.
//
// O(total half-edges * log(max degree))
func (d *DCEL) Validate() error {
	Ne := d.halfEdges.len()

	broken := func(format string, args ...interface{}) error {
		return errors.Wrapf(roadgen.ErrBrokenInvariant, format, args...)
	}

	// the smallest DCEL is a seed: 2 nodes, 1 pair, 1 face
	if Nn, Nf := d.nodes.len(), d.faces.len(); Nn < 2 || Nf < 1 || Ne%2 != 0 {
		return broken("%d nodes, %d half-edges, %d faces is not a DCEL", Nn, Ne, Nf)
	}

	// pairing, next and face links
	for i := 0; i < Ne; i++ {
		e := d.halfEdges.at(i)
		if e.id != HalfEdgeID(i) {
			return broken("half-edge %d has handle %d", i, e.id)
		}
		if !d.nodes.inRange(int(e.source)) || !d.nodes.inRange(int(e.target)) {
			return broken("half-edge %d has bad source/target %d -> %d", i, e.source, e.target)
		}
		if !d.halfEdges.inRange(int(e.pair)) || !d.halfEdges.inRange(int(e.next)) {
			return broken("half-edge %d has bad pair/next %d/%d", i, e.pair, e.next)
		}
		if !d.faces.inRange(int(e.face)) {
			return broken("half-edge %d has bad face %d", i, e.face)
		}
		pair := d.halfEdges.at(int(e.pair))
		if pair == e || pair.pair != e.id {
			return broken("half-edge %d: pair(pair(e)) != e", i)
		}
		if pair.source != e.target || pair.target != e.source {
			return broken("half-edge %d: pair runs %d -> %d, expected %d -> %d", i, pair.source, pair.target, e.target, e.source)
		}
		if next := d.halfEdges.at(int(e.next)); next.source != e.target {
			return broken("half-edge %d ends at node %d but next %d leaves node %d", i, e.target, next.id, next.source)
		}
	}

	// face boundaries close and each half-edge is on exactly one of them
	walked := 0
	for i := 0; i < d.faces.len(); i++ {
		face := d.faces.at(i)
		if face.id != FaceID(i) {
			return broken("face %d has handle %d", i, face.id)
		}
		if !d.halfEdges.inRange(int(face.halfEdge)) {
			return broken("face %d has bad half-edge %d", i, face.halfEdge)
		}
		first := d.halfEdges.at(int(face.halfEdge))
		e := first
		for steps := 0; ; steps++ {
			if steps >= Ne {
				return broken("boundary of face %d does not close", i)
			}
			if e.face != face.id {
				return broken("half-edge %d on boundary of face %d reports face %d", e.id, i, e.face)
			}
			walked++
			e = d.halfEdges.at(int(e.next))
			if e == first {
				break
			}
		}
	}
	if walked != Ne {
		return broken("face boundaries cover %d of %d half-edges", walked, Ne)
	}

	// angular order around each node
	degrees := 0
	for i := 0; i < d.nodes.len(); i++ {
		node := d.nodes.at(i)
		if node.id != NodeID(i) {
			return broken("node %d has handle %d", i, node.id)
		}
		if !d.halfEdges.inRange(int(node.leaving)) {
			return broken("node %d has bad leaving half-edge %d", i, node.leaving)
		}
		first := d.halfEdges.at(int(node.leaving))
		if first.source != node.id {
			return broken("leaving half-edge %d of node %d starts at node %d", first.id, i, first.source)
		}

		// In a cyclic sequence sorted by rotationKey there is at most one descent (the wrap past -π).
		descents := 0
		e := first
		for steps := 0; ; steps++ {
			if steps >= Ne {
				return broken("rotation around node %d does not close", i)
			}
			if e.source != node.id {
				return broken("half-edge %d in rotation of node %d starts at node %d", e.id, i, e.source)
			}
			degrees++
			next := d.halfEdges.at(int(d.halfEdges.at(int(e.pair)).next))
			ka := rotationKey{d.Angle(e), e.id}
			kb := rotationKey{d.Angle(next), next.id}
			if rotationComparator(kb, ka) < 0 {
				descents++
			}
			e = next
			if e == first {
				break
			}
		}
		if descents > 1 {
			return broken("half-edges around node %d are not in angular order", i)
		}
	}
	if degrees != Ne {
		return broken("node rotations cover %d of %d half-edges", degrees, Ne)
	}

	return nil
}
