package dcel

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/2x3systems/roadgen/roadgen"
	"github.com/plan-systems/klog"
)

func (n *Node) String() string {
	return fmt.Sprintf("n%d%v", n.id, n.pos)
}

func (e *HalfEdge) String() string {
	return fmt.Sprintf("e%d(n%d->n%d)", e.id, e.source, e.target)
}

func (f *Face) String() string {
	return fmt.Sprintf("f%d", f.id)
}

// WriteAsString writes a human readable dump of the topology to out.
func (d *DCEL) WriteAsString(out io.Writer, opts roadgen.PrintOpts) {
	w := bufio.NewWriter(out)
	defer w.Flush()

	if len(opts.Label) > 0 {
		w.WriteString(opts.Label)
		w.WriteByte(' ')
	}
	fmt.Fprintf(w, "DCEL: %d nodes, %d half-edges, %d faces\n", d.CountNodes(), d.CountHalfEdges(), d.CountFaces())

	if opts.Positions {
		d.Nodes().Each(func(node *Node) bool {
			fmt.Fprintf(w, "  n%-4d %-16v leaving e%d\n", node.id, node.pos, node.leaving)
			return true
		})
	}

	if opts.HalfEdges || opts.Angles {
		d.HalfEdges().Each(func(e *HalfEdge) bool {
			fmt.Fprintf(w, "  e%-4d n%d -> n%d   pair e%d  next e%d  face f%d", e.id, e.source, e.target, e.pair, e.next, e.face)
			if opts.Angles {
				fmt.Fprintf(w, "  angle %+.4f", d.Angle(e))
			}
			w.WriteByte('\n')
			return true
		})
	}

	if opts.Faces {
		d.Faces().Each(func(face *Face) bool {
			fmt.Fprintf(w, "  f%-4d [", face.id)
			n := 0
			d.eachInFace(face, func(e *HalfEdge) {
				if n > 0 {
					w.WriteByte(' ')
				}
				fmt.Fprintf(w, "e%d", e.id)
				n++
			})
			fmt.Fprintf(w, "]  len %d\n", n)
			return true
		})
	}
}

// PrintToLog dumps the topology to the log at verbosity 2 (-v=2).
func (d *DCEL) PrintToLog() {
	if !klog.V(2) {
		return
	}

	b := strings.Builder{}
	b.Grow(64 * (1 + d.CountNodes() + d.CountHalfEdges() + d.CountFaces()))
	d.WriteAsString(&b, roadgen.DefaultPrintOpts)

	for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		klog.V(2).Info(line)
	}
}
