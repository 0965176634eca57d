package roadgen

import (
	"fmt"
)

// Position is an immutable integer map coordinate.
type Position struct {
	X int32
	Y int32
}

func Pos(x, y int32) Position {
	return Position{X: x, Y: y}
}

// Sub returns the offset from b to p as float deltas (dx, dy).
func (p Position) Sub(b Position) (dx, dy float64) {
	return float64(p.X) - float64(b.X), float64(p.Y) - float64(b.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// PrintOpts specifies what is printed when dumping a DCEL
type PrintOpts struct {
	Label     string // Prefix label
	Positions bool   // If set, node positions are printed
	HalfEdges bool   // If set, every half-edge and its links are printed
	Faces     bool   // If set, each face's boundary walk is printed
	Angles    bool   // If set, half-edge angles are printed (implies HalfEdges)
}

// DefaultPrintOpts is what PrintToLog uses.
var DefaultPrintOpts = PrintOpts{
	Positions: true,
	HalfEdges: true,
	Faces:     true,
}
