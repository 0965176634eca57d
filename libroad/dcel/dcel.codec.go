package dcel

import (
	"bytes"
	"io"

	"github.com/2x3systems/roadgen/roadgen"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

/***

Snapshot encoding (all integers are protobuf varints):

	"DCEL", version
	Nn, Ne, Nf
	[Nn] zigzag(X), zigzag(Y), leaving+1
	[Ne] source+1, target+1, pair+1, next+1, face+1
	[Nf] halfEdge+1

Links are stored +1 so that 0 denotes an unset link.  Payloads are not encoded.

***/

var snapshotMagic = []byte("DCEL")

const snapshotVersion = 1

// AppendEncoding appends a snapshot of this DCEL's topology to out.
func (d *DCEL) AppendEncoding(out []byte) []byte {
	out = append(out, snapshotMagic...)
	buf := proto.NewBuffer(out)

	buf.EncodeVarint(snapshotVersion)
	buf.EncodeVarint(uint64(d.nodes.len()))
	buf.EncodeVarint(uint64(d.halfEdges.len()))
	buf.EncodeVarint(uint64(d.faces.len()))

	for i := 0; i < d.nodes.len(); i++ {
		node := d.nodes.at(i)
		buf.EncodeZigzag64(uint64(int64(node.pos.X)))
		buf.EncodeZigzag64(uint64(int64(node.pos.Y)))
		buf.EncodeVarint(uint64(node.leaving + 1))
	}
	for i := 0; i < d.halfEdges.len(); i++ {
		e := d.halfEdges.at(i)
		buf.EncodeVarint(uint64(e.source + 1))
		buf.EncodeVarint(uint64(e.target + 1))
		buf.EncodeVarint(uint64(e.pair + 1))
		buf.EncodeVarint(uint64(e.next + 1))
		buf.EncodeVarint(uint64(e.face + 1))
	}
	for i := 0; i < d.faces.len(); i++ {
		buf.EncodeVarint(uint64(d.faces.at(i).halfEdge + 1))
	}

	return buf.Bytes()
}

// Decode rebuilds a DCEL from a snapshot made by AppendEncoding.
// The result is validated; any failure wraps roadgen.ErrBadSnapshot.
func Decode(snapshot []byte) (*DCEL, error) {
	if !bytes.HasPrefix(snapshot, snapshotMagic) {
		return nil, errors.Wrap(roadgen.ErrBadSnapshot, "missing header")
	}
	dec := snapshotDecoder{
		data: snapshot[len(snapshotMagic):],
	}

	if vers := dec.uvarint(); dec.err == nil && vers != snapshotVersion {
		return nil, errors.Wrapf(roadgen.ErrBadSnapshot, "unsupported version %d", vers)
	}

	// Every element takes at least one byte, which bounds the counts before allocating.
	Nn := dec.count()
	Ne := dec.count()
	Nf := dec.count()

	d := &DCEL{}
	for i := 0; i < Nn && dec.err == nil; i++ {
		node, idx := d.nodes.alloc()
		node.id = NodeID(idx)
		node.pos.X = dec.int32()
		node.pos.Y = dec.int32()
		node.leaving = HalfEdgeID(dec.ref(Ne))
	}
	for i := 0; i < Ne && dec.err == nil; i++ {
		e, idx := d.halfEdges.alloc()
		e.id = HalfEdgeID(idx)
		e.source = NodeID(dec.ref(Nn))
		e.target = NodeID(dec.ref(Nn))
		e.pair = HalfEdgeID(dec.ref(Ne))
		e.next = HalfEdgeID(dec.ref(Ne))
		e.face = FaceID(dec.ref(Nf))
	}
	for i := 0; i < Nf && dec.err == nil; i++ {
		face, idx := d.faces.alloc()
		face.id = FaceID(idx)
		face.halfEdge = HalfEdgeID(dec.ref(Ne))
	}

	if dec.err != nil {
		return nil, errors.Wrap(roadgen.ErrBadSnapshot, dec.err.Error())
	}
	if n := len(dec.data) - dec.pos; n != 0 {
		return nil, errors.Wrapf(roadgen.ErrBadSnapshot, "%d trailing bytes", n)
	}
	if err := d.Validate(); err != nil {
		return nil, errors.Wrap(roadgen.ErrBadSnapshot, err.Error())
	}
	return d, nil
}

// snapshotDecoder reads varints, latching the first error.
type snapshotDecoder struct {
	data []byte
	pos  int
	err  error
}

func (dec *snapshotDecoder) uvarint() uint64 {
	if dec.err != nil {
		return 0
	}
	x, n := proto.DecodeVarint(dec.data[dec.pos:])
	if n == 0 {
		dec.err = io.ErrUnexpectedEOF
		return 0
	}
	dec.pos += n
	return x
}

func (dec *snapshotDecoder) count() int {
	n := dec.uvarint()
	if dec.err == nil && n > uint64(len(dec.data)) {
		dec.err = errors.Errorf("element count %d exceeds snapshot size", n)
		return 0
	}
	return int(n)
}

func (dec *snapshotDecoder) int32() int32 {
	x := dec.uvarint()
	v := int64(x>>1) ^ -int64(x&1)
	if dec.err == nil && (v < -1<<31 || v > 1<<31-1) {
		dec.err = errors.Errorf("coordinate %d out of range", v)
		return 0
	}
	return int32(v)
}

// ref reads a +1 encoded link, returning -1 for unset.
func (dec *snapshotDecoder) ref(count int) int32 {
	x := dec.uvarint()
	if dec.err == nil && x > uint64(count) {
		dec.err = errors.Errorf("link %d out of range (%d elements)", int64(x)-1, count)
		return -1
	}
	return int32(x) - 1
}
