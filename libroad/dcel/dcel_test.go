package dcel

import (
	"flag"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/2x3systems/roadgen/roadgen"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func pos(x, y int32) roadgen.Position {
	return roadgen.Pos(x, y)
}

func checkValid(t *testing.T, d *DCEL) {
	t.Helper()
	if err := d.Validate(); err != nil {
		b := strings.Builder{}
		d.WriteAsString(&b, roadgen.PrintOpts{Positions: true, HalfEdges: true, Faces: true, Angles: true})
		t.Fatalf("%v\n%s", err, b.String())
	}
}

func checkCounts(t *testing.T, d *DCEL, Nn, Ne, Nf int) {
	t.Helper()
	if d.CountNodes() != Nn || d.CountHalfEdges() != Ne || d.CountFaces() != Nf {
		t.Fatalf("expected %d/%d/%d nodes/half-edges/faces, got %d/%d/%d",
			Nn, Ne, Nf, d.CountNodes(), d.CountHalfEdges(), d.CountFaces())
	}
}

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %q", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("expected panic wrapping %q, got %v", target, r)
		}
	}()
	fn()
}

func TestSeed(t *testing.T) {
	d := New(pos(0, 0), pos(10, 0))
	checkCounts(t, d, 2, 2, 1)
	checkValid(t, d)

	A := d.HalfEdge(0)
	B := d.HalfEdge(1)
	if d.Pair(A) != B || d.Pair(B) != A {
		t.Fatal("seed half-edges are not mutual pairs")
	}
	if d.Source(A) != d.Target(B) || d.Target(A) != d.Source(B) {
		t.Fatal("seed half-edges are not reversed")
	}
	if d.Source(A).Position() != pos(0, 0) || d.Target(A).Position() != pos(10, 0) {
		t.Fatal("seed positions")
	}
	if d.NextInFace(A) != B || d.NextInFace(B) != A {
		t.Fatal("seed boundary walk")
	}
	if d.FaceOf(A) != d.FaceOf(B) || d.BoundaryLength(d.Face(0)) != 2 {
		t.Fatal("seed face")
	}
	if d.LeavingHalfEdge(d.Node(0)) != A || d.LeavingHalfEdge(d.Node(1)) != B {
		t.Fatal("seed leaving half-edges")
	}
}

func TestAngle(t *testing.T) {
	d := New(pos(0, 0), pos(1, 0))
	center := d.Node(0)
	up := d.AddNode(pos(0, 1), center)
	left := d.AddNode(pos(-1, 0), center)
	down := d.AddNode(pos(0, -1), center)

	expect := func(e *HalfEdge, angle float64) {
		t.Helper()
		if got := d.Angle(e); math.Abs(got-angle) > 1e-12 {
			t.Fatalf("angle of %v: expected %v, got %v", e, angle, got)
		}
	}
	expect(d.HalfEdge(0), 0)
	expect(d.Pair(d.LeavingHalfEdge(up)), math.Pi/2)
	expect(d.Pair(d.LeavingHalfEdge(left)), math.Pi)
	expect(d.Pair(d.LeavingHalfEdge(down)), -math.Pi/2)
	expect(d.LeavingHalfEdge(up), -math.Pi/2)

	d.HalfEdges().Each(func(e *HalfEdge) bool {
		if a := d.Angle(e); a < -math.Pi || a > math.Pi {
			t.Fatalf("angle %v out of range", a)
		}
		return true
	})
}

func TestAddNode(t *testing.T) {
	d := New(pos(0, 0), pos(10, 0))
	center := d.Node(0)

	Nn, Ne, Nf := d.CountNodes(), d.CountHalfEdges(), d.CountFaces()
	node := d.AddNode(pos(0, 10), center)
	checkCounts(t, d, Nn+1, Ne+2, Nf)
	checkValid(t, d)

	back := d.LeavingHalfEdge(node)
	if d.Source(back) != node || d.Target(back) != center {
		t.Fatal("new node's leaving half-edge must run to the node it was attached to")
	}
	out := d.Pair(back)
	if d.Source(out) != center || d.Target(out) != node {
		t.Fatal("pair of new half-edge")
	}
	if d.Degree(node) != 1 || d.Degree(center) != 2 {
		t.Fatal("degree")
	}

	// Fill the remaining directions out of order; the rotation must stay sorted.
	d.AddNode(pos(0, -10), center)
	d.AddNode(pos(-10, 0), center)
	d.AddNode(pos(7, 7), center)
	checkCounts(t, d, Nn+4, Ne+8, Nf)
	checkValid(t, d)

	var angles []float64
	for _, e := range d.OutgoingHalfEdges(center) {
		angles = append(angles, d.Angle(e))
	}
	expect := []float64{0, math.Pi / 4, math.Pi / 2, math.Pi, -math.Pi / 2}
	if len(angles) != len(expect) {
		t.Fatalf("expected %d outgoing half-edges, got %d", len(expect), len(angles))
	}
	for i := range expect {
		if math.Abs(angles[i]-expect[i]) > 1e-12 {
			t.Fatalf("rotation order: expected %v, got %v", expect, angles)
		}
	}

	// A tree has a single face whose walk visits every half-edge.
	if d.BoundaryLength(d.Face(0)) != d.CountHalfEdges() {
		t.Fatal("tree boundary should visit every half-edge")
	}
}

func TestAddNodeTieBreak(t *testing.T) {
	d := New(pos(0, 0), pos(10, 0))
	center := d.Node(0)
	a := d.AddNode(pos(20, 0), center) // same direction as the seed edge
	b := d.AddNode(pos(30, 0), center)
	checkValid(t, d)

	out := d.OutgoingHalfEdges(center)
	if len(out) != 3 || d.Target(out[0]) != d.Node(1) || d.Target(out[1]) != a || d.Target(out[2]) != b {
		t.Fatalf("equal-angle half-edges should keep creation order, got %v", out)
	}
}

func TestSplitEdge(t *testing.T) {
	d := MustNewCycle(pos(0, 0), pos(10, 0), pos(10, 10), pos(0, 10))
	checkValid(t, d)

	e := d.HalfEdge(0)
	twin := d.Pair(e)
	src, dst := d.Source(e), d.Target(e)
	face, twinFace := d.FaceOf(e), d.FaceOf(twin)
	L, twinL := d.BoundaryLength(face), d.BoundaryLength(twinFace)

	Nn, Ne, Nf := d.CountNodes(), d.CountHalfEdges(), d.CountFaces()
	mid := d.SplitEdge(pos(5, 0), e)
	checkCounts(t, d, Nn+1, Ne+2, Nf)
	checkValid(t, d)

	if d.Source(e) != src || d.Target(e) != mid {
		t.Fatal("split half-edge should run from its source to the new node")
	}
	cont := d.NextInFace(e)
	if d.Source(cont) != mid || d.Target(cont) != dst || d.FaceOf(cont) != face {
		t.Fatal("split half-edge should continue to the old target")
	}
	if d.Source(twin) != dst || d.Target(twin) != mid {
		t.Fatal("twin should run from the old target to the new node")
	}
	if d.Degree(mid) != 2 || mid.Position() != pos(5, 0) {
		t.Fatal("new node")
	}
	if d.BoundaryLength(face) != L+1 || d.BoundaryLength(twinFace) != twinL+1 {
		t.Fatal("both faces should gain one half-edge")
	}

	// split the seed of a bare two-node DCEL
	d = New(pos(0, 0), pos(0, 8))
	d.SplitEdge(pos(0, 4), d.HalfEdge(1))
	checkCounts(t, d, 3, 4, 1)
	checkValid(t, d)
	if d.BoundaryLength(d.Face(0)) != 4 {
		t.Fatal("expected a 4 half-edge boundary")
	}
}

func TestConnectNodes(t *testing.T) {
	d := New(pos(0, 0), pos(10, 0))
	n0 := d.Node(0)
	n1 := d.Node(1)
	n2 := d.AddNode(pos(10, 10), n1)
	n3 := d.AddNode(pos(0, 10), n2)
	checkValid(t, d)

	face := d.FaceOf(d.LeavingHalfEdge(n0))
	L := d.BoundaryLength(face)
	Nn, Ne, Nf := d.CountNodes(), d.CountHalfEdges(), d.CountFaces()

	if !d.CanConnect(n0, n3) {
		t.Fatal("n0 and n3 share the only face")
	}
	split := d.ConnectNodes(n0, n3)
	checkCounts(t, d, Nn, Ne+2, Nf+1)
	checkValid(t, d)

	if split.ID() != FaceID(Nf) || split == face {
		t.Fatal("ConnectNodes should return a new face")
	}
	if d.BoundaryLength(face)+d.BoundaryLength(split) != L+2 {
		t.Fatalf("boundary lengths %d + %d != %d", d.BoundaryLength(face), d.BoundaryLength(split), L+2)
	}
	if d.BoundaryLength(face) != 4 || d.BoundaryLength(split) != 4 {
		t.Fatal("a closed square should have two 4 half-edge faces")
	}

	// the original face keeps the node0 -> node1 side
	chord := d.HalfEdgeOf(face)
	if d.Source(chord) != n0 || d.Target(chord) != n3 {
		t.Fatal("original face should be represented by the new n0 -> n3 half-edge")
	}
	if d.FaceOf(d.Pair(chord)) != split {
		t.Fatal("new face should own n3 -> n0")
	}

	// a diagonal splits one of the two faces again
	if !d.CanConnect(n0, n2) {
		t.Fatal("diagonal should be connectable")
	}
	prev0, _ := d.connectGaps(n0, n2)
	L0 := d.BoundaryLength(d.FaceOf(d.Pair(prev0)))
	f := d.ConnectNodes(n0, n2)
	checkValid(t, d)
	checkCounts(t, d, 4, 10, 3)
	if d.BoundaryLength(f)+d.BoundaryLength(d.FaceOf(d.Pair(d.HalfEdgeOf(f)))) != L0+2 {
		t.Fatal("diagonal split")
	}
}

func TestCycle(t *testing.T) {
	d, err := NewCycle([]roadgen.Position{pos(0, 0), pos(10, 0), pos(10, 10), pos(0, 10)})
	if err != nil {
		t.Fatal(err)
	}
	checkCounts(t, d, 4, 8, 2)
	checkValid(t, d)
	for i := 0; i < d.CountFaces(); i++ {
		if L := d.BoundaryLength(d.Face(FaceID(i))); L != 4 {
			t.Fatalf("face %d has boundary length %d", i, L)
		}
	}
	for i := 0; i < d.CountNodes(); i++ {
		if d.Degree(d.Node(NodeID(i))) != 2 {
			t.Fatal("every cycle node has degree 2")
		}
	}

	d = MustNewCycle(pos(0, 0), pos(4, 0), pos(2, 3))
	checkCounts(t, d, 3, 6, 2)
	checkValid(t, d)

	for _, short := range [][]roadgen.Position{nil, {pos(0, 0)}, {pos(0, 0), pos(1, 1)}} {
		if _, err := NewCycle(short); !errors.Is(err, roadgen.ErrCycleTooShort) {
			t.Fatalf("expected ErrCycleTooShort for %d positions, got %v", len(short), err)
		}
	}
	expectPanic(t, roadgen.ErrCycleTooShort, func() {
		MustNewCycle(pos(0, 0), pos(1, 1))
	})
}

func TestContracts(t *testing.T) {
	d := MustNewCycle(pos(0, 0), pos(10, 0), pos(10, 10), pos(0, 10))
	n0, n2 := d.Node(0), d.Node(2)

	inside := d.AddNode(pos(5, 5), n0)
	outside := d.AddNode(pos(15, 15), n2)
	checkValid(t, d)

	if d.CanConnect(inside, outside) {
		t.Fatal("inside and outside leaves do not share a face")
	}
	expectPanic(t, roadgen.ErrNotOnSameFace, func() {
		d.ConnectNodes(inside, outside)
	})
	expectPanic(t, roadgen.ErrSelfConnect, func() {
		d.ConnectNodes(n0, n0)
	})
	if d.CanConnect(n0, n0) {
		t.Fatal("a node cannot connect to itself")
	}

	other := New(pos(0, 0), pos(1, 0))
	expectPanic(t, roadgen.ErrForeignElement, func() {
		d.AddNode(pos(1, 1), other.Node(0))
	})
	expectPanic(t, roadgen.ErrForeignElement, func() {
		d.SplitEdge(pos(1, 1), other.HalfEdge(1))
	})
	if d.CanConnect(n0, other.Node(1)) {
		t.Fatal("foreign node cannot be connected")
	}

	expectPanic(t, roadgen.ErrUnsetLink, func() {
		d.Pair(&HalfEdge{pair: NilHalfEdge})
	})
	expectPanic(t, roadgen.ErrUnsetLink, func() {
		d.LeavingHalfEdge(&Node{leaving: NilHalfEdge})
	})
	expectPanic(t, roadgen.ErrUnsetLink, func() {
		d.HalfEdgeOf(&Face{halfEdge: NilHalfEdge})
	})
	expectPanic(t, roadgen.ErrBadNodeID, func() {
		d.Node(NodeID(d.CountNodes()))
	})

	// range views check their index too, even inside an allocated block
	expectPanic(t, roadgen.ErrBadNodeID, func() {
		d.Nodes().At(d.CountNodes() + 1)
	})
	expectPanic(t, roadgen.ErrBadHalfEdgeID, func() {
		d.HalfEdges().At(-1)
	})
	expectPanic(t, roadgen.ErrBadFaceID, func() {
		d.Faces().At(d.CountFaces())
	})
	if d.Nodes().At(0) != n0 {
		t.Fatal("Nodes().At(0)")
	}

	// the panics above must not have disturbed anything
	checkValid(t, d)

	// the inside leaf can still reach the far corner through the interior
	if !d.CanConnect(inside, n2) {
		t.Fatal("inside leaf shares the interior face with n2")
	}
	d.ConnectNodes(inside, n2)
	checkValid(t, d)
}

func TestReferenceStability(t *testing.T) {
	d := New(pos(0, 0), pos(1<<20, 0))
	n0 := d.Node(0)
	e0 := d.HalfEdge(0)
	e1 := d.HalfEdge(1)
	f0 := d.Face(0)

	rnd := rand.New(rand.NewSource(7))
	last := d.Node(1)
	for i := 0; i < 3*arenaBlockSize; i++ {
		last = d.AddNode(pos(int32(rnd.Intn(2000)-1000)<<10, int32(rnd.Intn(2000)-1000)<<10), last)
	}

	if d.Node(0) != n0 || d.HalfEdge(0) != e0 || d.HalfEdge(1) != e1 || d.Face(0) != f0 {
		t.Fatal("element addresses moved")
	}
	if n0.Position() != pos(0, 0) || d.Pair(e0) != e1 || d.Pair(e1) != e0 {
		t.Fatal("early elements changed")
	}
	checkValid(t, d)
}

// TestRandomGrowth grows a graph with a random mix of operations and validates every step.
func TestRandomGrowth(t *testing.T) {
	const scale = 1 << 16 // keeps repeated midpoints exact so split edges keep their angle

	rnd := rand.New(rand.NewSource(2024))
	randPos := func() roadgen.Position {
		return pos(int32(rnd.Intn(200)-100)*scale, int32(rnd.Intn(200)-100)*scale)
	}

	d := New(randPos(), randPos())
	adds, splits, connects := 0, 0, 0

	for step := 0; step < 400; step++ {
		Nn, Ne, Nf := d.CountNodes(), d.CountHalfEdges(), d.CountFaces()

		switch rnd.Intn(3) {
		case 0:
			d.AddNode(randPos(), d.Node(NodeID(rnd.Intn(Nn))))
			checkCounts(t, d, Nn+1, Ne+2, Nf)
			adds++

		case 1:
			e := d.HalfEdge(HalfEdgeID(rnd.Intn(Ne)))
			a, b := d.Source(e).Position(), d.Target(e).Position()
			if (a.X+b.X)%2 != 0 || (a.Y+b.Y)%2 != 0 {
				continue
			}
			d.SplitEdge(pos((a.X+b.X)/2, (a.Y+b.Y)/2), e)
			checkCounts(t, d, Nn+1, Ne+2, Nf)
			splits++

		case 2:
			n0 := d.Node(NodeID(rnd.Intn(Nn)))
			n1 := d.Node(NodeID(rnd.Intn(Nn)))
			if !d.CanConnect(n0, n1) {
				continue
			}
			prev0, _ := d.connectGaps(n0, n1)
			L := d.BoundaryLength(d.FaceOf(d.Pair(prev0)))
			split := d.ConnectNodes(n0, n1)
			checkCounts(t, d, Nn, Ne+2, Nf+1)
			kept := d.FaceOf(d.Pair(d.HalfEdgeOf(split)))
			if d.BoundaryLength(split)+d.BoundaryLength(kept) != L+2 {
				t.Fatalf("step %d: split face lengths do not sum to %d", step, L+2)
			}
			connects++
		}
		checkValid(t, d)
	}

	if adds == 0 || splits == 0 || connects == 0 {
		t.Fatalf("degenerate run: %d adds, %d splits, %d connects", adds, splits, connects)
	}

	// pairing involution and face closure hold for every element
	d.HalfEdges().Each(func(e *HalfEdge) bool {
		if d.Pair(d.Pair(e)) != e {
			t.Fatalf("pair(pair(%v)) != %v", e, e)
		}
		return true
	})
	total := 0
	d.Faces().Each(func(face *Face) bool {
		for _, e := range d.Boundary(face) {
			if d.FaceOf(e) != face {
				t.Fatalf("%v on boundary of %v", e, face)
			}
		}
		total += d.BoundaryLength(face)
		return true
	})
	if total != d.CountHalfEdges() {
		t.Fatal("faces do not partition the half-edges")
	}
}

func TestClone(t *testing.T) {
	d := MustNewCycle(pos(0, 0), pos(10, 0), pos(10, 10), pos(0, 10))
	d.Node(0).Payload = "junction"

	dup := d.Clone()
	checkValid(t, dup)
	checkCounts(t, dup, 4, 8, 2)
	if dup.Node(0) == d.Node(0) || dup.Node(0).Payload != "junction" {
		t.Fatal("clone should copy elements and keep payloads")
	}

	dup.ConnectNodes(dup.Node(0), dup.Node(2))
	checkCounts(t, dup, 4, 10, 3)
	checkCounts(t, d, 4, 8, 2)
	checkValid(t, d)
}

func TestCodec(t *testing.T) {
	d := MustNewCycle(pos(-3, 0), pos(10, -70000), pos(10, 10), pos(0, 10))
	d.SplitEdge(pos(4, -35000), d.HalfEdge(0))
	d.AddNode(pos(1<<30, -1<<30), d.Node(2))

	enc := d.AppendEncoding(nil)
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	checkValid(t, dec)

	dump := func(X *DCEL) string {
		b := strings.Builder{}
		X.WriteAsString(&b, roadgen.PrintOpts{Positions: true, HalfEdges: true, Faces: true})
		return b.String()
	}
	if dump(d) != dump(dec) {
		t.Fatalf("decoded DCEL differs:\n%s\nvs\n%s", dump(d), dump(dec))
	}

	// prefix is preserved
	withPrefix := d.AppendEncoding([]byte("key:"))
	if !strings.HasPrefix(string(withPrefix), "key:DCEL") {
		t.Fatal("AppendEncoding should append")
	}

	bad := [][]byte{
		nil,
		[]byte("JUNK"),
		enc[:len(enc)-1],
		append(append([]byte{}, enc...), 0),
		append([]byte("DCEL"), 1, 0, 0, 0), // header only: no seed
	}
	badVers := append([]byte{}, enc...)
	badVers[len(snapshotMagic)] = 2
	bad = append(bad, badVers)

	for i, snapshot := range bad {
		if _, err := Decode(snapshot); !errors.Is(err, roadgen.ErrBadSnapshot) {
			t.Fatalf("bad snapshot %d: expected ErrBadSnapshot, got %v", i, err)
		}
	}

	if err := (&DCEL{}).Validate(); !errors.Is(err, roadgen.ErrBrokenInvariant) {
		t.Fatalf("an empty DCEL must not validate, got %v", err)
	}
}

func TestPrint(t *testing.T) {
	d := New(pos(0, 0), pos(10, 0))
	b := strings.Builder{}
	d.WriteAsString(&b, roadgen.PrintOpts{Label: "seed", Positions: true, Angles: true, Faces: true})
	str := b.String()

	for _, expect := range []string{
		"seed DCEL: 2 nodes, 2 half-edges, 1 faces",
		"n0    (0, 0)",
		"angle +0.0000",
		"f0    [e0 e1]  len 2",
	} {
		if !strings.Contains(str, expect) {
			t.Fatalf("missing %q in:\n%s", expect, str)
		}
	}
	d.PrintToLog()
}

func TestPrintToLogVerbosity(t *testing.T) {
	d := MustNewCycle(pos(0, 0), pos(10, 0), pos(10, 10))
	d.PrintToLog() // gated off at the default verbosity

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	defer fset.Set("v", "0")

	d.PrintToLog()
	klog.Flush()
	checkValid(t, d)
}
