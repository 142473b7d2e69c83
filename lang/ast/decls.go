package ast

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/token"
)

// VarDecl declares a mutable ('let') or constant ('const') binding.
type VarDecl struct {
	Pos     token.Pos
	Name    string
	IsConst bool
	Type    *TypeExpr // nil if the type is inferred from Init
	Init    Expr      // nil for an uninitialized 'let' (never nil for 'const')
}

func (n *VarDecl) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *VarDecl) Walk(v Visitor) {
	if n.Type != nil {
		Walk(v, n.Type)
	}
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
func (n *VarDecl) Format(f fmt.State, verb rune) {
	kw := "let"
	if n.IsConst {
		kw = "const"
	}
	format(f, verb, n, kw+" "+n.Name, nil)
}
func (n *VarDecl) BlockEnding() bool { return false }

// Param is a single function parameter.
type Param struct {
	Pos  token.Pos
	Name string
	Type *TypeExpr
}

func (n *Param) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *Param) Walk(v Visitor) {
	if n.Type != nil {
		Walk(v, n.Type)
	}
}
func (n *Param) Format(f fmt.State, verb rune) { format(f, verb, n, "param "+n.Name, nil) }

// FunctionDecl declares a named function, or a class method when nested in
// a ClassDecl's Methods.
type FunctionDecl struct {
	Pos           token.Pos
	Name          string
	Params        []*Param
	RetType       *TypeExpr // nil means void
	Body          *Block
	IsConstructor bool
	IsMethod      bool
	OwnerClass    string // set when IsMethod
}

func (n *FunctionDecl) Span() (start, end token.Pos) {
	_, bodyEnd := n.Body.Span()
	return n.Pos, bodyEnd
}
func (n *FunctionDecl) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.RetType != nil {
		Walk(v, n.RetType)
	}
	Walk(v, n.Body)
}
func (n *FunctionDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "function "+n.Name, map[string]int{"params": len(n.Params)})
}
func (n *FunctionDecl) BlockEnding() bool { return false }

// ClassDecl declares a class, its fields and methods, and optionally the
// base class it extends.
type ClassDecl struct {
	Pos     token.Pos
	Name    string
	Extends string // empty if there is no base class
	Fields  []*VarDecl
	Methods []*FunctionDecl
}

func (n *ClassDecl) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (n *ClassDecl) Walk(v Visitor) {
	for _, fld := range n.Fields {
		Walk(v, fld)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *ClassDecl) Format(f fmt.State, verb rune) {
	label := "class " + n.Name
	if n.Extends != "" {
		label += " extends " + n.Extends
	}
	format(f, verb, n, label, map[string]int{"fields": len(n.Fields), "methods": len(n.Methods)})
}
func (n *ClassDecl) BlockEnding() bool { return false }
