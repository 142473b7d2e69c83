package tac

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// genExpr lowers e and returns the Operand holding its value. Every case
// here assumes e came from an error-free analysis pass: a reference that
// cannot be resolved is a generator bug, not a user error, and is reported
// as a CommentInstr rather than aborting, per §7.
func (g *generator) genExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return g.genLiteral(n)
	case *ast.NameExpr:
		return g.resolveName(n.Name)
	case *ast.ThisExpr:
		return Var("this")
	case *ast.ArrayLiteralExpr:
		return g.genArrayLiteral(n)
	case *ast.NewExpr:
		return g.genNew(n)
	case *ast.CallExpr:
		return g.genCall(n, true)
	case *ast.MemberExpr:
		return g.genMemberRead(n)
	case *ast.IndexExpr:
		return g.genIndexRead(n)
	case *ast.UnaryExpr:
		return g.genUnary(n)
	case *ast.BinaryExpr:
		return g.genBinary(n)
	case *ast.TernaryExpr:
		return g.genTernary(n)
	default:
		g.emit(&CommentInstr{Text: fmt.Sprintf("unrecognized expression %T", e)})
		return g.pool.acquire()
	}
}

func (g *generator) genLiteral(n *ast.LiteralExpr) Operand {
	switch n.Kind {
	case ast.LitInt:
		return Int(n.Int)
	case ast.LitFloat:
		return Float(n.Flt)
	case ast.LitString:
		return Str(n.Str)
	case ast.LitBool:
		return Bool(n.Bool)
	default: // LitNull
		return Null
	}
}

// genArrayLiteral allocates a fresh array of the literal's length via the
// 'new_array' runtime helper (lang/mipsgen emits it: a length-prefixed
// block, length word followed by one slot per element) and stores each
// element by index. No construct in §4.6 gives array literals an explicit
// lowering rule; this is this generator's own extension, grounded in the
// same Call/StoreIndex vocabulary §4.6 already defines for 'new' and
// indexed assignment.
func (g *generator) genArrayLiteral(n *ast.ArrayLiteralExpr) Operand {
	g.emit(&ParamInstr{Value: Int(int64(len(n.Elems)))})
	arr := g.pool.acquire()
	g.emit(&CallInstr{Target: arr, Name: "new_array", NumParams: 1})
	for i, elem := range n.Elems {
		val := g.genExpr(elem)
		g.emit(&StoreIndexInstr{Base: arr, Index: Int(int64(i)), Value: val})
		g.pool.release(val)
	}
	return arr
}

// genNew evaluates the constructor arguments and calls the class's
// 'new_<Class>' pseudo-function (§4.6), which lang/mipsgen lowers to an
// allocation of the instance followed by a call to the class's own
// constructor label, with the freshly allocated pointer prepended as the
// implicit receiver.
func (g *generator) genNew(n *ast.NewExpr) Operand {
	vals := make([]Operand, len(n.Args))
	for i, a := range n.Args {
		vals[i] = g.genExpr(a)
	}
	for _, v := range vals {
		g.emit(&ParamInstr{Value: v})
	}
	for _, v := range vals {
		g.pool.release(v)
	}
	target := g.pool.acquire()
	g.emit(&CallInstr{Target: target, Name: "new_" + n.ClassName, NumParams: len(n.Args)})
	return target
}

// genCall lowers a function or method invocation. wantResult controls
// whether a destination temp is minted: an ExprStmt wrapping a call
// discards the result (wantResult=false) so a void call costs no
// temporary, matching the pool's goal of minimizing live names.
func (g *generator) genCall(n *ast.CallExpr, wantResult bool) Operand {
	switch callee := n.Callee.(type) {
	case *ast.NameExpr:
		fi, ok := g.table.LookupFunction(callee.Name)
		if !ok {
			g.emit(&CommentInstr{Text: "call to undeclared function " + callee.Name})
			return Operand{}
		}
		return g.genCallArgs(n.Args, fi.Label, 0, fi.RetType, wantResult)
	case *ast.MemberExpr:
		targetType := g.types[callee.Target]
		obj := g.genExpr(callee.Target)
		if !targetType.IsClass() {
			g.emit(&CommentInstr{Text: "method call on non-class value"})
			return Operand{}
		}
		ci, ok := g.table.ResolveClass(targetType.ClassName())
		if !ok {
			g.emit(&CommentInstr{Text: "unknown class " + targetType.ClassName()})
			return Operand{}
		}
		fi, ok := g.table.ResolveMethod(ci, callee.Name)
		if !ok {
			g.emit(&CommentInstr{Text: "unknown method " + callee.Name})
			return Operand{}
		}
		g.emit(&ParamInstr{Value: obj})
		g.pool.release(obj)
		return g.genCallArgs(n.Args, fi.Label, 1, fi.RetType, wantResult)
	default:
		g.emit(&CommentInstr{Text: "uncallable expression"})
		return Operand{}
	}
}

// genCallArgs evaluates args left-to-right, emitting one Param per value in
// order, then the Call itself; extraParams counts Params already emitted
// by the caller (the implicit receiver for a method call).
func (g *generator) genCallArgs(args []ast.Expr, label string, extraParams int, retType types.Type, wantResult bool) Operand {
	for _, a := range args {
		v := g.genExpr(a)
		g.emit(&ParamInstr{Value: v})
		g.pool.release(v)
	}
	n := len(args) + extraParams
	if !wantResult || retType.Kind() == types.Void {
		g.emit(&CallInstr{Name: label, NumParams: n})
		return Operand{}
	}
	target := g.pool.acquire()
	g.emit(&CallInstr{Target: target, Name: label, NumParams: n})
	return target
}

func (g *generator) genMemberRead(n *ast.MemberExpr) Operand {
	obj := g.genExpr(n.Target)
	target := g.pool.acquire()
	g.emit(&BinaryOpInstr{Target: target, Left: obj, Op: ".", Right: Str(n.Name)})
	g.pool.release(obj)
	return target
}

func (g *generator) genIndexRead(n *ast.IndexExpr) Operand {
	arr := g.genExpr(n.Target)
	idx := g.genExpr(n.Index)
	target := g.pool.acquire()
	g.emit(&BinaryOpInstr{Target: target, Left: arr, Op: "[]", Right: idx})
	g.pool.release(arr)
	g.pool.release(idx)
	return target
}

func (g *generator) genUnary(n *ast.UnaryExpr) Operand {
	x := g.genExpr(n.X)
	var target Operand
	if x.IsTemp() {
		target = x
	} else {
		target = g.pool.acquire()
	}
	g.emit(&UnaryOpInstr{Target: target, Op: n.Op.String(), Source: x})
	return target
}

// reusesTemp reports whether op is one of the arithmetic operators §4.6
// singles out for destination reuse: "for arithmetic + - * /, if either
// operand is already a temporary, reuse it as destination rather than
// minting a new one". % is deliberately excluded, matching the spec's
// literal operator list.
func reusesTemp(op token.Token) bool {
	switch op {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		return true
	default:
		return false
	}
}

func (g *generator) genBinary(n *ast.BinaryExpr) Operand {
	lhs := g.genExpr(n.X)
	rhs := g.genExpr(n.Y)
	opStr := n.Op.String()

	var target Operand
	switch {
	case reusesTemp(n.Op) && lhs.IsTemp():
		target = lhs
		g.pool.release(rhs)
	case reusesTemp(n.Op) && rhs.IsTemp():
		target = rhs
		g.pool.release(lhs)
	default:
		target = g.pool.acquire()
		g.pool.release(lhs)
		g.pool.release(rhs)
	}
	g.emit(&BinaryOpInstr{Target: target, Left: lhs, Op: opStr, Right: rhs})
	return target
}

// genTernary lowers Cond ? Then : Else. §4.6's prose description of this
// lowering has the then/else arms transposed relative to the fixed
// false-fires CondJump polarity it specifies elsewhere (the same class of
// inconsistency §9 calls out explicitly for do-while); this generator
// implements the semantics actually wanted — Then when Cond is true, Else
// when false — rather than the literal (and backwards) prose.
func (g *generator) genTernary(n *ast.TernaryExpr) Operand {
	cond := g.genExpr(n.Cond)
	elseLbl := g.newLabel()
	endLbl := g.newLabel()
	g.emit(&CondJumpInstr{Cond: cond, Target: elseLbl})
	g.pool.release(cond)

	target := g.pool.acquire()
	thenVal := g.genExpr(n.Then)
	g.emit(&AssignInstr{Target: target, Source: thenVal})
	g.pool.release(thenVal)
	g.emit(&JumpInstr{Target: endLbl})

	g.emit(&LabelInstr{Name: elseLbl})
	elseVal := g.genExpr(n.Else)
	g.emit(&AssignInstr{Target: target, Source: elseVal})
	g.pool.release(elseVal)

	g.emit(&LabelInstr{Name: endLbl})
	return target
}
