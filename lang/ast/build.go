package ast

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/parsetree"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Build lowers a parse tree produced by lang/parser (or any other producer
// of the lang/parsetree node shape) into the tagged-union AST that the rest
// of the pipeline consumes.
func Build(filename string, prog *parsetree.ProgramContext) *Program {
	b := &builder{filename: filename}
	out := &Program{Name: filename}
	for i := 0; i < prog.GetChildCount(); i++ {
		out.Stmts = append(out.Stmts, b.buildTopLevel(prog.GetChild(i)))
	}
	out.Start, out.End = prog.Pos(), prog.Pos()
	return out
}

type builder struct{ filename string }

func (b *builder) buildTopLevel(n parsetree.Node) Stmt {
	switch n.Kind() {
	case parsetree.KindClassDeclaration:
		return b.buildClassDecl(n)
	case parsetree.KindFunctionDeclaration:
		return b.buildFunctionDecl(n, false, "")
	default:
		return b.buildStmt(n)
	}
}

func (b *builder) buildType(n parsetree.Node) *TypeExpr {
	if n == nil {
		return nil
	}
	ctx := n.(*parsetree.Ctx)
	name := ctx.Payload.(string)
	if name == "array" {
		return &TypeExpr{Pos: n.Pos(), Name: "array", Elem: b.buildType(ctx.GetChild(0))}
	}
	return &TypeExpr{Pos: n.Pos(), Name: name}
}

func (b *builder) buildClassDecl(n parsetree.Node) *ClassDecl {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.ClassPayload)
	out := &ClassDecl{Pos: n.Pos(), Name: payload.Name, Extends: payload.Extends}
	for i := 0; i < n.GetChildCount(); i++ {
		child := n.GetChild(i)
		switch child.Kind() {
		case parsetree.KindFieldDeclaration:
			out.Fields = append(out.Fields, b.buildFieldDecl(child))
		case parsetree.KindFunctionDeclaration:
			out.Methods = append(out.Methods, b.buildFunctionDecl(child, true, payload.Name))
		}
	}
	return out
}

func (b *builder) buildFieldDecl(n parsetree.Node) *VarDecl {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.DeclPayload)
	out := &VarDecl{Pos: n.Pos(), Name: payload.Name}
	if n.GetChildCount() > 0 {
		out.Type = b.buildType(n.GetChild(0))
	}
	return out
}

func (b *builder) buildFunctionDecl(n parsetree.Node, isMethod bool, owner string) *FunctionDecl {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.FuncPayload)
	out := &FunctionDecl{
		Pos: n.Pos(), Name: payload.Name, IsConstructor: payload.IsConstructor,
		IsMethod: isMethod, OwnerClass: owner,
	}
	count := n.GetChildCount()
	body := n.GetChild(count - 1).(*parsetree.Ctx)
	rest := count - 1
	var retTypeNode parsetree.Node
	if rest > 0 && n.GetChild(rest-1).Kind() == parsetree.KindTypeAnnotation {
		retTypeNode = n.GetChild(rest - 1)
		rest--
	}
	for i := 0; i < rest; i++ {
		out.Params = append(out.Params, b.buildParam(n.GetChild(i)))
	}
	if retTypeNode != nil {
		out.RetType = b.buildType(retTypeNode)
	}
	out.Body = b.buildBlock(body)
	return out
}

func (b *builder) buildParam(n parsetree.Node) *Param {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.DeclPayload)
	out := &Param{Pos: n.Pos(), Name: payload.Name}
	if n.GetChildCount() > 0 {
		out.Type = b.buildType(n.GetChild(0))
	}
	return out
}

func (b *builder) buildBlock(n parsetree.Node) *Block {
	out := &Block{Start: n.Pos(), End: n.Pos()}
	for i := 0; i < n.GetChildCount(); i++ {
		child := n.GetChild(i)
		if child.Kind() == parsetree.KindClassDeclaration || child.Kind() == parsetree.KindFunctionDeclaration {
			// nested declarations inside a block are surfaced as ExprStmt-less
			// declarations by reusing buildTopLevel, matching program-level
			// handling; Compiscript does not restrict where they may appear.
			out.Stmts = append(out.Stmts, b.buildTopLevel(child))
			continue
		}
		out.Stmts = append(out.Stmts, b.buildStmt(child))
	}
	return out
}

func (b *builder) buildStmt(n parsetree.Node) Stmt {
	switch n.Kind() {
	case parsetree.KindVariableDeclaration:
		return b.buildVarDecl(n)
	case parsetree.KindConstantDeclaration:
		return b.buildConstDecl(n)
	case parsetree.KindBlock:
		return b.buildBlock(n)
	case parsetree.KindIfStatement:
		return b.buildIf(n)
	case parsetree.KindWhileStatement:
		return &WhileStmt{Pos: n.Pos(), Cond: b.buildExpr(n.GetChild(0)), Body: b.buildStmt(n.GetChild(1))}
	case parsetree.KindDoWhileStatement:
		return &DoWhileStmt{Pos: n.Pos(), Body: b.buildStmt(n.GetChild(0)), Cond: b.buildExpr(n.GetChild(1))}
	case parsetree.KindForStatement:
		return b.buildFor(n)
	case parsetree.KindForeachStatement:
		ctx := n.(*parsetree.Ctx)
		return &ForeachStmt{
			Pos: n.Pos(), Name: ctx.Payload.(string),
			Iterable: b.buildExpr(n.GetChild(0)), Body: b.buildStmt(n.GetChild(1)),
		}
	case parsetree.KindSwitchStatement:
		return b.buildSwitch(n)
	case parsetree.KindTryCatchStatement:
		ctx := n.(*parsetree.Ctx)
		return &TryCatchStmt{
			Pos: n.Pos(), ErrName: ctx.Payload.(string),
			Try: b.buildBlock(n.GetChild(0)), Catch: b.buildBlock(n.GetChild(1)),
		}
	case parsetree.KindBreakStatement:
		return &BreakStmt{Pos: n.Pos()}
	case parsetree.KindContinueStatement:
		return &ContinueStmt{Pos: n.Pos()}
	case parsetree.KindReturnStatement:
		out := &ReturnStmt{Pos: n.Pos()}
		if n.GetChildCount() > 0 {
			out.Value = b.buildExpr(n.GetChild(0))
		}
		return out
	case parsetree.KindPrintStatement:
		return &PrintStmt{Pos: n.Pos(), Arg: b.buildExpr(n.GetChild(0))}
	case parsetree.KindAssignment:
		return &AssignStmt{Pos: n.Pos(), Target: b.buildExpr(n.GetChild(0)), Value: b.buildExpr(n.GetChild(1))}
	case parsetree.KindExpressionStatement:
		inner := n.GetChild(0)
		if inner.Kind() == parsetree.KindAssignment {
			return b.buildStmt(inner)
		}
		return &ExprStmt{Pos: n.Pos(), Expr: b.buildExpr(inner)}
	default:
		panic(fmt.Sprintf("ast.Build: unexpected statement kind %d", n.Kind()))
	}
}

func (b *builder) buildVarDecl(n parsetree.Node) *VarDecl {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.DeclPayload)
	out := &VarDecl{Pos: n.Pos(), Name: payload.Name}
	idx := 0
	if idx < n.GetChildCount() && n.GetChild(idx).Kind() == parsetree.KindTypeAnnotation {
		out.Type = b.buildType(n.GetChild(idx))
		idx++
	}
	if idx < n.GetChildCount() {
		out.Init = b.buildExpr(n.GetChild(idx))
	}
	return out
}

func (b *builder) buildConstDecl(n parsetree.Node) *VarDecl {
	ctx := n.(*parsetree.Ctx)
	payload := ctx.Payload.(parsetree.DeclPayload)
	out := &VarDecl{Pos: n.Pos(), Name: payload.Name, IsConst: true}
	idx := 0
	if n.GetChild(idx).Kind() == parsetree.KindTypeAnnotation {
		out.Type = b.buildType(n.GetChild(idx))
		idx++
	}
	out.Init = b.buildExpr(n.GetChild(idx))
	return out
}

func (b *builder) buildIf(n parsetree.Node) *IfStmt {
	out := &IfStmt{Pos: n.Pos(), Cond: b.buildExpr(n.GetChild(0)), Then: b.buildStmt(n.GetChild(1))}
	if n.GetChildCount() > 2 {
		out.Else = b.buildStmt(n.GetChild(2))
	}
	return out
}

func (b *builder) buildFor(n parsetree.Node) *ForStmt {
	out := &ForStmt{Pos: n.Pos()}
	initNode := n.GetChild(0)
	if !isEmptyBlock(initNode) {
		out.Init = b.buildStmt(initNode)
	}
	condNode := n.GetChild(1)
	if !isEmptyBlock(condNode) {
		out.Cond = b.buildExpr(condNode)
	}
	postNode := n.GetChild(2)
	if !isEmptyBlock(postNode) {
		if postNode.Kind() == parsetree.KindAssignment {
			out.Post = b.buildStmt(postNode)
		} else {
			out.Post = &ExprStmt{Pos: postNode.Pos(), Expr: b.buildExpr(postNode)}
		}
	}
	out.Body = b.buildStmt(n.GetChild(3))
	return out
}

func isEmptyBlock(n parsetree.Node) bool {
	return n.Kind() == parsetree.KindBlock && n.GetChildCount() == 0
}

func (b *builder) buildSwitch(n parsetree.Node) *SwitchStmt {
	out := &SwitchStmt{Pos: n.Pos(), Subject: b.buildExpr(n.GetChild(0))}
	for i := 1; i < n.GetChildCount(); i++ {
		child := n.GetChild(i)
		switch child.Kind() {
		case parsetree.KindCaseClause:
			cc := &CaseClause{Pos: child.Pos(), Value: b.buildExpr(child.GetChild(0))}
			for j := 1; j < child.GetChildCount(); j++ {
				cc.Body = append(cc.Body, b.buildStmt(child.GetChild(j)))
			}
			out.Cases = append(out.Cases, cc)
		case parsetree.KindDefaultClause:
			for j := 0; j < child.GetChildCount(); j++ {
				out.Default = append(out.Default, b.buildStmt(child.GetChild(j)))
			}
		}
	}
	return out
}

func (b *builder) buildExpr(n parsetree.Node) Expr {
	switch n.Kind() {
	case parsetree.KindIdentifierExpr:
		return &NameExpr{Pos: n.Pos(), Name: n.(*parsetree.Ctx).Payload.(string)}
	case parsetree.KindThisExpr:
		return &ThisExpr{Pos: n.Pos()}
	case parsetree.KindLiteralExpr:
		lv := n.(*parsetree.Ctx).Payload.(parsetree.LiteralValue)
		out := &LiteralExpr{Pos: n.Pos()}
		switch lv.Kind {
		case parsetree.LitInt:
			out.Kind, out.Int = LitInt, lv.Int
		case parsetree.LitFloat:
			out.Kind, out.Flt = LitFloat, lv.Flt
		case parsetree.LitString:
			out.Kind, out.Str = LitString, lv.Str
		case parsetree.LitBool:
			out.Kind, out.Bool = LitBool, lv.Bool
		case parsetree.LitNull:
			out.Kind = LitNull
		}
		return out
	case parsetree.KindArrayLiteralExpr:
		out := &ArrayLiteralExpr{Pos: n.Pos()}
		for i := 0; i < n.GetChildCount(); i++ {
			out.Elems = append(out.Elems, b.buildExpr(n.GetChild(i)))
		}
		return out
	case parsetree.KindNewExpr:
		name := n.(*parsetree.Ctx).Payload.(string)
		out := &NewExpr{Pos: n.Pos(), ClassName: name}
		args := n.GetChild(0)
		for i := 0; i < args.GetChildCount(); i++ {
			out.Args = append(out.Args, b.buildExpr(args.GetChild(i)))
		}
		return out
	case parsetree.KindBinaryExpr:
		op := n.(*parsetree.Ctx).Payload.(token.Token)
		return &BinaryExpr{Pos: n.Pos(), Op: op, X: b.buildExpr(n.GetChild(0)), Y: b.buildExpr(n.GetChild(1))}
	case parsetree.KindUnaryExpr:
		op := n.(*parsetree.Ctx).Payload.(token.Token)
		return &UnaryExpr{Pos: n.Pos(), Op: op, X: b.buildExpr(n.GetChild(0))}
	case parsetree.KindTernaryExpr:
		return &TernaryExpr{
			Pos: n.Pos(), Cond: b.buildExpr(n.GetChild(0)),
			Then: b.buildExpr(n.GetChild(1)), Else: b.buildExpr(n.GetChild(2)),
		}
	case parsetree.KindLeftHandSide:
		return b.buildLeftHandSide(n)
	default:
		panic(fmt.Sprintf("ast.Build: unexpected expression kind %d", n.Kind()))
	}
}

// buildLeftHandSide folds a LeftHandSideContext's [atom, suffix...] children
// into a left-associative chain of CallExpr/MemberExpr/IndexExpr nodes.
func (b *builder) buildLeftHandSide(n parsetree.Node) Expr {
	cur := b.buildExpr(n.GetChild(0))
	for i := 1; i < n.GetChildCount(); i++ {
		suffix := n.GetChild(i)
		switch suffix.Kind() {
		case parsetree.KindPropertyAccessExpr:
			name := suffix.(*parsetree.Ctx).Payload.(string)
			cur = &MemberExpr{Pos: suffix.Pos(), Target: cur, Name: name}
		case parsetree.KindCallExpr:
			args := suffix.GetChild(0)
			call := &CallExpr{Pos: suffix.Pos(), Callee: cur}
			for j := 0; j < args.GetChildCount(); j++ {
				call.Args = append(call.Args, b.buildExpr(args.GetChild(j)))
			}
			cur = call
		case parsetree.KindIndexExpr:
			cur = &IndexExpr{Pos: suffix.Pos(), Target: cur, Index: b.buildExpr(suffix.GetChild(0))}
		}
	}
	return cur
}
