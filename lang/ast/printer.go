package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/compiscript-lang/compiscript/lang/token"
)

// Printer controls pretty-printing of an AST, either as an indented outline
// (the default) or as Graphviz dot source (Dot: true), the latter
// supplemented for visual debugging of larger trees.
type Printer struct {
	Output io.Writer
	Pos    token.PosMode
	Dot    bool
}

// Print writes a textual rendering of n to p.Output.
func (p *Printer) Print(n Node) error {
	if p.Dot {
		return p.printDot(n)
	}
	pp := &outlinePrinter{w: p.Output, pos: p.Pos}
	Walk(pp, n)
	return pp.err
}

type outlinePrinter struct {
	w     io.Writer
	pos   token.PosMode
	depth int
	err   error
}

func (p *outlinePrinter) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	format := "%s"
	args := []any{strings.Repeat(". ", p.depth-1)}
	if p.pos != token.PosNone {
		format += "[%s] "
		start, _ := n.Span()
		args = append(args, token.Position{Pos: start}.Format(p.pos))
	}
	format += "%v\n"
	args = append(args, n)
	_, p.err = fmt.Fprintf(p.w, format, args...)
	return p
}

// printDot renders n as a Graphviz digraph, one node per tree node, edges
// following Walk's traversal order.
func (p *Printer) printDot(n Node) error {
	dp := &dotPrinter{w: p.Output, ids: map[Node]int{}}
	fmt.Fprintln(dp.w, "digraph ast {")
	Walk(dp, n)
	fmt.Fprintln(dp.w, "}")
	return dp.err
}

type dotPrinter struct {
	w      io.Writer
	ids    map[Node]int
	next   int
	stack  []int
	err    error
}

func (p *dotPrinter) idFor(n Node) int {
	if id, ok := p.ids[n]; ok {
		return id
	}
	id := p.next
	p.next++
	p.ids[n] = id
	return id
}

func (p *dotPrinter) Visit(n Node, dir VisitDirection) Visitor {
	if p.err != nil {
		return nil
	}
	if dir == VisitExit {
		if len(p.stack) > 0 {
			p.stack = p.stack[:len(p.stack)-1]
		}
		return nil
	}
	id := p.idFor(n)
	label := fmt.Sprintf("%v", n)
	label = strings.ReplaceAll(label, `"`, `\"`)
	_, p.err = fmt.Fprintf(p.w, "  n%d [label=\"%s\"];\n", id, label)
	if p.err == nil && len(p.stack) > 0 {
		_, p.err = fmt.Fprintf(p.w, "  n%d -> n%d;\n", p.stack[len(p.stack)-1], id)
	}
	p.stack = append(p.stack, id)
	return p
}
