// Package recipe parses and runs growth recipes: short text programs that seed a DCEL
// and grow it one operation per line.
//
//	# a square with a spur
//	cycle (0,0) (10,0) (10,10) (0,10)
//	add (20, 5) to 1
//	split 0 at (5, 0)
//	connect 4 3
//
// Handles are the zero-based ids the DCEL issues in creation order.
package recipe

import (
	"os"

	"github.com/2x3systems/roadgen/libroad/dcel"
	"github.com/2x3systems/roadgen/roadgen"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type Recipe struct {
	Steps []*Step `@@*`
}

type Step struct {
	Pos lexer.Position

	Seed    *Seed    `  "seed" @@`
	Cycle   *Cycle   `| "cycle" @@`
	Add     *Add     `| "add" @@`
	Split   *Split   `| "split" @@`
	Connect *Connect `| "connect" @@`
}

type Point struct {
	X int32 `"(" @Int ","`
	Y int32 `@Int ")"`
}

type Seed struct {
	From *Point `@@`
	To   *Point `@@`
}

type Cycle struct {
	Points []*Point `@@+`
}

type Add struct {
	At   *Point `@@ "to"`
	Node int32  `@Int`
}

type Split struct {
	HalfEdge int32  `@Int "at"`
	At       *Point `@@`
}

type Connect struct {
	Node0 int32 `@Int`
	Node1 int32 `@Int`
}

var sRecipeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

var sParseRecipe = participle.MustBuild[Recipe](
	participle.Lexer(sRecipeLexer),
	participle.Elide("whitespace", "Comment"),
)

// Parse parses recipe source text.  Errors wrap roadgen.ErrBadRecipe.
func Parse(src string) (*Recipe, error) {
	rcp, err := sParseRecipe.ParseString("", src)
	if err != nil {
		return nil, errors.Wrapf(roadgen.ErrBadRecipe, "%v", err)
	}
	return rcp, nil
}

// ParseFile reads and parses the recipe at pathname.
func ParseFile(pathname string) (*Recipe, error) {
	src, err := os.ReadFile(pathname)
	if err != nil {
		return nil, errors.Wrapf(roadgen.ErrBadRecipe, "%v", err)
	}
	rcp, err := sParseRecipe.ParseBytes(pathname, src)
	if err != nil {
		return nil, errors.Wrapf(roadgen.ErrBadRecipe, "%v", err)
	}
	return rcp, nil
}

// Build runs the recipe into a new DCEL.  The first step must be "seed" or "cycle".
func (rcp *Recipe) Build() (*dcel.DCEL, error) {
	if len(rcp.Steps) == 0 {
		return nil, errors.Wrap(roadgen.ErrBadRecipe, "empty recipe")
	}

	first := rcp.Steps[0]
	var d *dcel.DCEL
	switch {
	case first.Seed != nil:
		d = dcel.New(first.Seed.From.Position(), first.Seed.To.Position())
	case first.Cycle != nil:
		cycle := make([]roadgen.Position, len(first.Cycle.Points))
		for i, pt := range first.Cycle.Points {
			cycle[i] = pt.Position()
		}
		var err error
		if d, err = dcel.NewCycle(cycle); err != nil {
			return nil, first.errorf("%v", err)
		}
	default:
		return nil, first.errorf("recipe must start with seed or cycle")
	}

	if err := applySteps(d, rcp.Steps[1:]); err != nil {
		return nil, err
	}
	return d, nil
}

// ApplyTo runs the recipe's grow steps on an existing DCEL.
// Steps before a failing step remain applied.
func (rcp *Recipe) ApplyTo(d *dcel.DCEL) error {
	return applySteps(d, rcp.Steps)
}

func applySteps(d *dcel.DCEL, steps []*Step) error {
	for _, step := range steps {
		if err := step.apply(d); err != nil {
			return err
		}
	}
	return nil
}

func (step *Step) apply(d *dcel.DCEL) error {
	switch {
	case step.Seed != nil, step.Cycle != nil:
		return step.errorf("seed and cycle may only start a recipe")

	case step.Add != nil:
		node, ok := d.NodeOK(dcel.NodeID(step.Add.Node))
		if !ok {
			return step.errorf("no node %d", step.Add.Node)
		}
		d.AddNode(step.Add.At.Position(), node)

	case step.Split != nil:
		e, ok := d.HalfEdgeOK(dcel.HalfEdgeID(step.Split.HalfEdge))
		if !ok {
			return step.errorf("no half-edge %d", step.Split.HalfEdge)
		}
		d.SplitEdge(step.Split.At.Position(), e)

	case step.Connect != nil:
		node0, ok0 := d.NodeOK(dcel.NodeID(step.Connect.Node0))
		node1, ok1 := d.NodeOK(dcel.NodeID(step.Connect.Node1))
		switch {
		case !ok0:
			return step.errorf("no node %d", step.Connect.Node0)
		case !ok1:
			return step.errorf("no node %d", step.Connect.Node1)
		case !d.CanConnect(node0, node1):
			return step.errorf("nodes %d and %d do not share a face", step.Connect.Node0, step.Connect.Node1)
		}
		d.ConnectNodes(node0, node1)
	}
	return nil
}

func (step *Step) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(roadgen.ErrBadRecipe, "%v: "+format, append([]interface{}{step.Pos}, args...)...)
}

func (pt *Point) Position() roadgen.Position {
	return roadgen.Pos(pt.X, pt.Y)
}
