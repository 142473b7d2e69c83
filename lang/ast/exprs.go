package ast

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/token"
)

// NameExpr is a reference to a bound identifier.
type NameExpr struct {
	Pos  token.Pos
	Name string
}

func (n *NameExpr) expr()                        {}
func (n *NameExpr) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *NameExpr) Walk(_ Visitor)                {}
func (n *NameExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }

// ThisExpr is the 'this' receiver reference, valid only inside a method.
type ThisExpr struct{ Pos token.Pos }

func (n *ThisExpr) expr()                        {}
func (n *ThisExpr) Span() (start, end token.Pos)  { return n.Pos, n.Pos }
func (n *ThisExpr) Walk(_ Visitor)                {}
func (n *ThisExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "this", nil) }

// LiteralKind tags the scalar kind of a LiteralExpr.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// LiteralExpr is a scalar constant: an int, float, string, boolean or null.
type LiteralExpr struct {
	Pos  token.Pos
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
	Bool bool
}

func (n *LiteralExpr) expr()                       {}
func (n *LiteralExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *LiteralExpr) Walk(_ Visitor)               {}
func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	var label string
	switch n.Kind {
	case LitInt:
		label = fmt.Sprintf("%d", n.Int)
	case LitFloat:
		label = fmt.Sprintf("%g", n.Flt)
	case LitString:
		label = fmt.Sprintf("%q", n.Str)
	case LitBool:
		label = fmt.Sprintf("%t", n.Bool)
	case LitNull:
		label = "null"
	}
	format(f, verb, n, label, nil)
}

// ArrayLiteralExpr is an array literal: [e1, e2, ...].
type ArrayLiteralExpr struct {
	Pos   token.Pos
	Elems []Expr
}

func (n *ArrayLiteralExpr) expr()                       {}
func (n *ArrayLiteralExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *ArrayLiteralExpr) Walk(v Visitor) {
	for _, e := range n.Elems {
		Walk(v, e)
	}
}
func (n *ArrayLiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array literal", map[string]int{"elems": len(n.Elems)})
}

// NewExpr instantiates a class: new ClassName(args...).
type NewExpr struct {
	Pos       token.Pos
	ClassName string
	Args      []Expr
}

func (n *NewExpr) expr()                       {}
func (n *NewExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *NewExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *NewExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "new "+n.ClassName, map[string]int{"args": len(n.Args)})
}

// CallExpr is a function or method invocation: Callee(args...).
type CallExpr struct {
	Pos    token.Pos
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) expr()                       {}
func (n *CallExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}

// MemberExpr is a property access: Target.Name.
type MemberExpr struct {
	Pos    token.Pos
	Target Expr
	Name   string
}

func (n *MemberExpr) expr()                       {}
func (n *MemberExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *MemberExpr) Walk(v Visitor)               { Walk(v, n.Target) }
func (n *MemberExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "."+n.Name, nil)
}

// IndexExpr is an array element access: Target[Index].
type IndexExpr struct {
	Pos    token.Pos
	Target Expr
	Index  Expr
}

func (n *IndexExpr) expr()                       {}
func (n *IndexExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Index)
}
func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "index", nil) }

// UnaryExpr is a prefix operator applied to X: -X or !X.
type UnaryExpr struct {
	Pos token.Pos
	Op  token.Token
	X   Expr
}

func (n *UnaryExpr) expr()                       {}
func (n *UnaryExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *UnaryExpr) Walk(v Visitor)               { Walk(v, n.X) }
func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }

// BinaryExpr is a binary operator applied to X and Y.
type BinaryExpr struct {
	Pos  token.Pos
	Op   token.Token
	X, Y Expr
}

func (n *BinaryExpr) expr()                       {}
func (n *BinaryExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}
func (n *BinaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }

// TernaryExpr is the conditional operator: Cond ? Then : Else.
type TernaryExpr struct {
	Pos              token.Pos
	Cond, Then, Else Expr
}

func (n *TernaryExpr) expr()                       {}
func (n *TernaryExpr) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *TernaryExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (n *TernaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "ternary", nil) }
