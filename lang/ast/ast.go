// Package ast defines the abstract syntax tree produced from a parsed
// Compiscript program (package lang/parsetree) and consumed by the semantic
// analyzer (lang/analyzer) and the TAC generator (lang/tac).
//
// Unlike the parse tree, which is a generic Kind-tagged node shape designed
// to mirror an external grammar's rule contexts, the AST is a proper tagged
// union of concrete Go types: one struct per construct, switched on by Go
// type rather than by a Kind field. Building it out of the parse tree is
// the one place the grammar's shape leaks into the rest of the pipeline.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/compiscript-lang/compiscript/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk enters each child node to implement the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement may only appear last in a
	// block (break, continue, return).
	BlockEnding() bool
}

// Program is the root of the tree: the sequence of top-level declarations
// and statements in a source file.
type Program struct {
	Name  string
	Stmts []Stmt
	Start token.Pos
	End   token.Pos
}

func (n *Program) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Program) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}
func (n *Program) Format(f fmt.State, verb rune) {
	label := "program"
	if n.Name != "" {
		label += " " + n.Name
	}
	format(f, verb, n, label, map[string]int{"stmts": len(n.Stmts)})
}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Start, End token.Pos
	Stmts      []Stmt
}

func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}
func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) BlockEnding() bool { return false }

// TypeExpr represents a type annotation: a base name (a primitive keyword or
// a class name) plus a nesting depth of array dimensions.
type TypeExpr struct {
	Pos   token.Pos
	Name  string // "integer", "boolean", "float", "string", "void", or a class name
	Elem  *TypeExpr // non-nil when this is an array type; Name is then "array"
}

func (n *TypeExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *TypeExpr) Walk(v Visitor) {
	if n.Elem != nil {
		Walk(v, n.Elem)
	}
}
func (n *TypeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.String(), nil) }
func (n *TypeExpr) String() string {
	if n == nil {
		return "unknown"
	}
	if n.Elem != nil {
		return n.Elem.String() + "[]"
	}
	return n.Name
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
