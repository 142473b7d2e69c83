// Package parsetree defines the shape of the concrete parse tree that the
// upstream lexer/parser (an external collaborator per spec §6, not part of
// this module's core) produces and that the AST builder (package ast)
// consumes.
//
// Per §9's first redesign flag ("Parse-tree introspection by string
// class-name matching ... define a proper tagged enum for parse nodes and
// match on variants"), every node carries an explicit Kind tag instead of
// being identified by its Go type name; the named Context types below exist
// only so the grammar's rule names stay recognizable to a reader (as §6
// requires), and each is a thin alias over the single tagged Node
// implementation.
package parsetree

import "github.com/compiscript-lang/compiscript/lang/token"

// Kind tags every node with the grammar rule (or token) it was built from.
type Kind int

// List of supported parse-tree node kinds. Names mirror the ANTLR-style rule
// context class names a Compiscript grammar would generate.
const (
	KindProgram Kind = iota
	KindVariableDeclaration
	KindConstantDeclaration
	KindFunctionDeclaration
	KindClassDeclaration
	KindFieldDeclaration
	KindParameter
	KindBlock
	KindIfStatement
	KindWhileStatement
	KindDoWhileStatement
	KindForStatement
	KindForeachStatement
	KindSwitchStatement
	KindCaseClause
	KindDefaultClause
	KindTryCatchStatement
	KindBreakStatement
	KindContinueStatement
	KindReturnStatement
	KindPrintStatement
	KindExpressionStatement
	KindAssignment

	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindLiteralExpr
	KindIdentifierExpr
	KindThisExpr
	KindNewExpr
	KindArrayLiteralExpr
	KindLeftHandSide
	KindCallExpr
	KindPropertyAccessExpr
	KindIndexExpr
	KindArguments
	KindTypeAnnotation
)

// Node is the interface every parse-tree node implements: child navigation
// by index (GetChild/GetChildCount), raw source text (GetText), and the
// node's Kind tag.
type Node interface {
	Kind() Kind
	GetChild(i int) Node
	GetChildCount() int
	GetText() string
	Pos() token.Pos
}

// Ctx is the single concrete Node implementation; every named Context type
// below is an alias for it. Payload carries whatever rule-specific scalar
// data the node needs (an identifier name, an operator token, a literal
// value, a declared type name): a real ANTLR-generated context would expose
// these through dedicated typed accessor methods, which the Context type
// aliases below provide by reading Payload or indexing Children.
type Ctx struct {
	kind     Kind
	pos      token.Pos
	text     string
	Children []Node
	Payload  any
}

func New(kind Kind, pos token.Pos, text string, payload any, children ...Node) *Ctx {
	return &Ctx{kind: kind, pos: pos, text: text, Payload: payload, Children: children}
}

func (c *Ctx) Kind() Kind    { return c.kind }
func (c *Ctx) GetText() string { return c.text }
func (c *Ctx) Pos() token.Pos { return c.pos }
func (c *Ctx) GetChildCount() int { return len(c.Children) }
func (c *Ctx) GetChild(i int) Node {
	if i < 0 || i >= len(c.Children) {
		return nil
	}
	return c.Children[i]
}

// Named aliases for the rule contexts named explicitly in spec §6, plus the
// remaining statement/expression contexts the grammar implies. All share
// the Ctx representation; the Kind tag (not the Go type) distinguishes them.
type (
	ProgramContext             = Ctx
	VariableDeclarationContext = Ctx
	ConstantDeclarationContext = Ctx
	FunctionDeclarationContext = Ctx
	ClassDeclarationContext    = Ctx
	FieldDeclarationContext    = Ctx
	ParameterContext           = Ctx
	BlockContext               = Ctx
	IfStatementContext         = Ctx
	WhileStatementContext      = Ctx
	DoWhileStatementContext    = Ctx
	ForStatementContext        = Ctx
	ForeachStatementContext    = Ctx
	SwitchStatementContext     = Ctx
	CaseClauseContext          = Ctx
	TryCatchStatementContext   = Ctx
	BreakStatementContext      = Ctx
	ContinueStatementContext   = Ctx
	ReturnStatementContext     = Ctx
	PrintStatementContext      = Ctx
	ExpressionStatementContext = Ctx
	AssignmentContext          = Ctx

	TernaryExprContext         = Ctx
	BinaryExprContext          = Ctx
	UnaryExprContext           = Ctx
	LiteralExprContext         = Ctx
	IdentifierExprContext      = Ctx
	ThisExprContext            = Ctx
	NewExprContext             = Ctx
	ArrayLiteralContext        = Ctx
	LeftHandSideContext        = Ctx
	CallExprContext            = Ctx
	PropertyAccessExprContext = Ctx
	IndexExprContext           = Ctx
	ArgumentsContext           = Ctx
	TypeAnnotationContext      = Ctx
)

// Payload shapes used by specific kinds, documented next to their producer
// in package parser:
//
//	KindIdentifierExpr, KindPropertyAccessExpr: string (the name)
//	KindLiteralExpr:   LiteralValue
//	KindBinaryExpr, KindUnaryExpr: token.Token (the operator)
//	KindVariableDeclaration, KindConstantDeclaration, KindParameter,
//	  KindFieldDeclaration: DeclPayload
//	KindFunctionDeclaration: FuncPayload
//	KindClassDeclaration: ClassPayload
//	KindTypeAnnotation: string (type name, "integer"|"boolean"|...|class name,
//	  or "array" with the element type as the sole child)
//	KindTryCatchStatement: string (the caught error's bound name)
//	KindForeachStatement: string (the loop variable's bound name)

// LiteralValue is the Payload of a KindLiteralExpr node.
type LiteralValue struct {
	Kind LiteralKind
	Int  int64
	Flt  float64
	Str  string
	Bool bool
}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// DeclPayload is the Payload of variable/constant/parameter/field decl nodes.
type DeclPayload struct {
	Name    string
	IsConst bool
}

// FuncPayload is the Payload of a KindFunctionDeclaration node.
type FuncPayload struct {
	Name          string
	IsConstructor bool
}

// ClassPayload is the Payload of a KindClassDeclaration node.
type ClassPayload struct {
	Name    string
	Extends string // empty if no base class
}
