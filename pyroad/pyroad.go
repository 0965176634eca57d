// Package pyroad registers the "_pyroad" gpython module, exposing DCEL growth to scripts.
//
// Handles cross into Python as ints.  Bad handles raise IndexError and operations whose
// preconditions do not hold raise ValueError, so a script can never panic the host.
package pyroad

import (
	"math"
	"strings"

	"github.com/2x3systems/roadgen/libroad/dcel"
	"github.com/2x3systems/roadgen/libroad/recipe"
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyDCELType = py.NewType("DCEL", "a growable planar road graph (doubly-connected edge list)")
)

type pyDCEL struct {
	*dcel.DCEL
}

func (d pyDCEL) Type() *py.Type {
	return pyDCELType
}

func (d pyDCEL) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	d.WriteAsString(&writer, roadgen.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (d pyDCEL) M__repr__() (py.Object, error) {
	return d.M__str__()
}

func getInt32(obj py.Object) (int32, error) {
	val, err := py.GetInt(obj)
	if err != nil {
		return 0, err
	}
	if val < math.MinInt32 || val > math.MaxInt32 {
		return 0, py.ExceptionNewf(py.OverflowError, "%d does not fit in 32 bits", val)
	}
	return int32(val), nil
}

// parseInt32s reads len(out) int args
func parseInt32s(args py.Tuple, out ...*int32) error {
	if len(args) != len(out) {
		return py.ExceptionNewf(py.TypeError, "expected %d int args (got %d)", len(out), len(args))
	}
	for i, arg := range args {
		val, err := getInt32(arg)
		if err != nil {
			return err
		}
		*out[i] = val
	}
	return nil
}

func getPosition(obj py.Object) (roadgen.Position, error) {
	xy, ok := obj.(py.Tuple)
	if !ok || len(xy) != 2 {
		return roadgen.Position{}, py.ExceptionNewf(py.TypeError, "expected (x, y) tuple (got %v)", obj.Type().Name)
	}
	x, err := getInt32(xy[0])
	if err != nil {
		return roadgen.Position{}, err
	}
	y, err := getInt32(xy[1])
	if err != nil {
		return roadgen.Position{}, err
	}
	return roadgen.Pos(x, y), nil
}

func (d pyDCEL) node(id int32) (*dcel.Node, error) {
	node, ok := d.NodeOK(dcel.NodeID(id))
	if !ok {
		return nil, py.ExceptionNewf(py.IndexError, "no node %d (%d nodes)", id, d.CountNodes())
	}
	return node, nil
}

func (d pyDCEL) halfEdge(id int32) (*dcel.HalfEdge, error) {
	e, ok := d.HalfEdgeOK(dcel.HalfEdgeID(id))
	if !ok {
		return nil, py.ExceptionNewf(py.IndexError, "no half-edge %d (%d half-edges)", id, d.CountHalfEdges())
	}
	return e, nil
}

func (d pyDCEL) face(id int32) (*dcel.Face, error) {
	face, ok := d.FaceOK(dcel.FaceID(id))
	if !ok {
		return nil, py.ExceptionNewf(py.IndexError, "no face %d (%d faces)", id, d.CountFaces())
	}
	return face, nil
}

// Args: x0, y0, x1, y1
func py_NewDCEL(module py.Object, args py.Tuple) (py.Object, error) {
	var x0, y0, x1, y1 int32
	if err := parseInt32s(args, &x0, &y0, &x1, &y1); err != nil {
		return nil, err
	}
	return pyDCEL{dcel.New(roadgen.Pos(x0, y0), roadgen.Pos(x1, y1))}, nil
}

// Args: (x, y), (x, y), (x, y), ...
func py_NewCycle(module py.Object, args py.Tuple) (py.Object, error) {
	cycle := make([]roadgen.Position, len(args))
	for i, arg := range args {
		pos, err := getPosition(arg)
		if err != nil {
			return nil, err
		}
		cycle[i] = pos
	}
	d, err := dcel.NewCycle(cycle)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return pyDCEL{d}, nil
}

// Arg 1 (str): recipe source
func py_BuildRecipe(module py.Object, args py.Tuple) (py.Object, error) {
	var srcObj py.Object
	if err := py.ParseTuple(args, "s", &srcObj); err != nil {
		return nil, err
	}
	rcp, err := recipe.Parse(string(srcObj.(py.String)))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	d, err := rcp.Build()
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return pyDCEL{d}, nil
}

// Args: x, y, node
func py_DCEL_AddNode(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	var x, y, id int32
	if err := parseInt32s(args, &x, &y, &id); err != nil {
		return nil, err
	}
	other, err := d.node(id)
	if err != nil {
		return nil, err
	}
	node := d.AddNode(roadgen.Pos(x, y), other)
	return py.Int(node.ID()), nil
}

// Args: x, y, halfEdge
func py_DCEL_SplitEdge(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	var x, y, id int32
	if err := parseInt32s(args, &x, &y, &id); err != nil {
		return nil, err
	}
	e, err := d.halfEdge(id)
	if err != nil {
		return nil, err
	}
	node := d.SplitEdge(roadgen.Pos(x, y), e)
	return py.Int(node.ID()), nil
}

func (d pyDCEL) nodePair(args py.Tuple) (node0, node1 *dcel.Node, err error) {
	var id0, id1 int32
	if err = parseInt32s(args, &id0, &id1); err != nil {
		return
	}
	if node0, err = d.node(id0); err != nil {
		return
	}
	node1, err = d.node(id1)
	return
}

// Args: node0, node1
func py_DCEL_ConnectNodes(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	node0, node1, err := d.nodePair(args)
	if err != nil {
		return nil, err
	}
	if !d.CanConnect(node0, node1) {
		return nil, py.ExceptionNewf(py.ValueError, "nodes %d and %d cannot be connected", node0.ID(), node1.ID())
	}
	face := d.ConnectNodes(node0, node1)
	return py.Int(face.ID()), nil
}

// Args: node0, node1
func py_DCEL_CanConnect(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	node0, node1, err := d.nodePair(args)
	if err != nil {
		return nil, err
	}
	return py.NewBool(d.CanConnect(node0, node1)), nil
}

func py_DCEL_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyDCEL).CountNodes()), nil
}

func py_DCEL_NumHalfEdges(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyDCEL).CountHalfEdges()), nil
}

func py_DCEL_NumFaces(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyDCEL).CountFaces()), nil
}

// Arg 1 (int): node
func py_DCEL_Position(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	var id int32
	if err := parseInt32s(args, &id); err != nil {
		return nil, err
	}
	node, err := d.node(id)
	if err != nil {
		return nil, err
	}
	pos := node.Position()
	return py.Tuple{py.Int(pos.X), py.Int(pos.Y)}, nil
}

// Arg 1 (int): halfEdge
func py_DCEL_Angle(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	var id int32
	if err := parseInt32s(args, &id); err != nil {
		return nil, err
	}
	e, err := d.halfEdge(id)
	if err != nil {
		return nil, err
	}
	return py.Float(d.Angle(e)), nil
}

// Arg 1 (int): face
func py_DCEL_BoundaryLength(self py.Object, args py.Tuple) (py.Object, error) {
	d := self.(pyDCEL)
	var id int32
	if err := parseInt32s(args, &id); err != nil {
		return nil, err
	}
	face, err := d.face(id)
	if err != nil {
		return nil, err
	}
	return py.Int(d.BoundaryLength(face)), nil
}

// Validate raises ValueError if the DCEL is inconsistent.
func py_DCEL_Validate(self py.Object, args py.Tuple) (py.Object, error) {
	if err := self.(pyDCEL).Validate(); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.None, nil
}

// PrintToLog dumps the topology to the log (gated by -v=2).
func py_DCEL_PrintToLog(self py.Object, args py.Tuple) (py.Object, error) {
	self.(pyDCEL).PrintToLog()
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// DCEL
	{
		pyDCELType.Dict["AddNode"] = py.MustNewMethod("AddNode", py_DCEL_AddNode, 0, "AddNode(x, y, node) adds a node attached to node and returns its handle")
		pyDCELType.Dict["SplitEdge"] = py.MustNewMethod("SplitEdge", py_DCEL_SplitEdge, 0, "SplitEdge(x, y, halfEdge) splits a half-edge and returns the new node's handle")
		pyDCELType.Dict["ConnectNodes"] = py.MustNewMethod("ConnectNodes", py_DCEL_ConnectNodes, 0, "ConnectNodes(node0, node1) splits their shared face and returns the new face's handle")
		pyDCELType.Dict["CanConnect"] = py.MustNewMethod("CanConnect", py_DCEL_CanConnect, 0, "")
		pyDCELType.Dict["NumNodes"] = py.MustNewMethod("NumNodes", py_DCEL_NumNodes, 0, "")
		pyDCELType.Dict["NumHalfEdges"] = py.MustNewMethod("NumHalfEdges", py_DCEL_NumHalfEdges, 0, "")
		pyDCELType.Dict["NumFaces"] = py.MustNewMethod("NumFaces", py_DCEL_NumFaces, 0, "")
		pyDCELType.Dict["Position"] = py.MustNewMethod("Position", py_DCEL_Position, 0, "")
		pyDCELType.Dict["Angle"] = py.MustNewMethod("Angle", py_DCEL_Angle, 0, "")
		pyDCELType.Dict["BoundaryLength"] = py.MustNewMethod("BoundaryLength", py_DCEL_BoundaryLength, 0, "")
		pyDCELType.Dict["Validate"] = py.MustNewMethod("Validate", py_DCEL_Validate, 0, "")
		pyDCELType.Dict["PrintToLog"] = py.MustNewMethod("PrintToLog", py_DCEL_PrintToLog, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewDCEL", py_NewDCEL, 0, "NewDCEL(x0, y0, x1, y1) returns a DCEL seeded with one edge"),
			py.MustNewMethod("NewCycle", py_NewCycle, 0, "NewCycle((x, y), ...) returns a DCEL forming a closed loop"),
			py.MustNewMethod("BuildRecipe", py_BuildRecipe, 0, "BuildRecipe(src) runs a growth recipe into a new DCEL"),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PI":          py.Float(math.Pi),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyroad",
				Doc:  "procedural road graph gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
