package tac

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/ast"
)

func (g *generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		g.genVarDecl(n)
	case *ast.ExprStmt:
		g.genExprStmt(n)
	case *ast.AssignStmt:
		g.genAssign(n)
	case *ast.PrintStmt:
		g.genPrint(n)
	case *ast.IfStmt:
		g.genIf(n)
	case *ast.WhileStmt:
		g.genWhile(n)
	case *ast.DoWhileStmt:
		g.genDoWhile(n)
	case *ast.ForStmt:
		g.genFor(n)
	case *ast.ForeachStmt:
		g.genForeach(n)
	case *ast.SwitchStmt:
		g.genSwitch(n)
	case *ast.TryCatchStmt:
		g.genTryCatch(n)
	case *ast.BreakStmt:
		g.emit(&JumpInstr{Target: g.breakTargets[len(g.breakTargets)-1]})
	case *ast.ContinueStmt:
		g.emit(&JumpInstr{Target: g.contTargets[len(g.contTargets)-1]})
	case *ast.ReturnStmt:
		g.genReturn(n)
	case *ast.Block:
		g.pushScope()
		g.genBlock(n)
		g.popScope()
	case *ast.FunctionDecl:
		g.pending = append(g.pending, n)
	case *ast.ClassDecl:
		g.pending = append(g.pending, n.Methods...)
	default:
		g.emit(&CommentInstr{Text: fmt.Sprintf("unrecognized statement %T", s)})
	}
}

func (g *generator) genVarDecl(n *ast.VarDecl) {
	if n.Init == nil {
		g.declareVar(n.Name)
		return
	}
	val := g.genExpr(n.Init)
	dst := g.declareVar(n.Name)
	g.emit(&AssignInstr{Target: dst, Source: val})
	g.pool.release(val)
}

// genExprStmt special-cases a bare call so a discarded void result never
// costs a temporary.
func (g *generator) genExprStmt(n *ast.ExprStmt) {
	if call, ok := n.Expr.(*ast.CallExpr); ok {
		g.genCall(call, false)
		return
	}
	v := g.genExpr(n.Expr)
	g.pool.release(v)
}

func (g *generator) genPrint(n *ast.PrintStmt) {
	v := g.genExpr(n.Arg)
	g.emit(&ParamInstr{Value: v})
	g.pool.release(v)
	g.emit(&CallInstr{Name: "print", NumParams: 1})
}

func (g *generator) genAssign(n *ast.AssignStmt) {
	switch target := n.Target.(type) {
	case *ast.NameExpr:
		val := g.genExpr(n.Value)
		dst := g.resolveName(target.Name)
		g.emit(&AssignInstr{Target: dst, Source: val})
		g.pool.release(val)
	case *ast.MemberExpr:
		obj := g.genExpr(target.Target)
		val := g.genExpr(n.Value)
		g.emit(&StoreFieldInstr{Base: obj, Field: target.Name, Value: val})
		g.pool.release(obj)
		g.pool.release(val)
	case *ast.IndexExpr:
		arr := g.genExpr(target.Target)
		idx := g.genExpr(target.Index)
		val := g.genExpr(n.Value)
		g.emit(&StoreIndexInstr{Base: arr, Index: idx, Value: val})
		g.pool.release(arr)
		g.pool.release(idx)
		g.pool.release(val)
	default:
		g.emit(&CommentInstr{Text: fmt.Sprintf("unrecognized assignment target %T", n.Target)})
	}
}

func (g *generator) genIf(n *ast.IfStmt) {
	cond := g.genExpr(n.Cond)
	elseLbl := g.newLabel()
	g.emit(&CondJumpInstr{Cond: cond, Target: elseLbl})
	g.pool.release(cond)

	g.genStmt(n.Then)

	if n.Else == nil {
		g.emit(&LabelInstr{Name: elseLbl})
		return
	}
	endLbl := g.newLabel()
	g.emit(&JumpInstr{Target: endLbl})
	g.emit(&LabelInstr{Name: elseLbl})
	g.genStmt(n.Else)
	g.emit(&LabelInstr{Name: endLbl})
}

func (g *generator) genWhile(n *ast.WhileStmt) {
	startLbl := g.newLabel()
	endLbl := g.newLabel()

	g.emit(&LabelInstr{Name: startLbl})
	cond := g.genExpr(n.Cond)
	g.emit(&CondJumpInstr{Cond: cond, Target: endLbl})
	g.pool.release(cond)

	g.breakTargets = append(g.breakTargets, endLbl)
	g.contTargets = append(g.contTargets, startLbl)
	g.genStmt(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.contTargets = g.contTargets[:len(g.contTargets)-1]

	g.emit(&JumpInstr{Target: startLbl})
	g.emit(&LabelInstr{Name: endLbl})
}

// genDoWhile lowers a post-tested loop. Because CondJump's polarity is
// fixed to fire on false (§3), the straightforward rendering —
// "body; evaluate cond; CondJump(cond, end); goto start; end:" — already
// has the correct natural do-while semantics (loop again while true, fall
// through once false) with no extra negation needed, unlike the inverted
// reading §9 flags as a bug in the original multi-draft source.
func (g *generator) genDoWhile(n *ast.DoWhileStmt) {
	startLbl := g.newLabel()
	contLbl := g.newLabel()
	endLbl := g.newLabel()

	g.emit(&LabelInstr{Name: startLbl})
	g.breakTargets = append(g.breakTargets, endLbl)
	g.contTargets = append(g.contTargets, contLbl)
	g.genStmt(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.contTargets = g.contTargets[:len(g.contTargets)-1]

	g.emit(&LabelInstr{Name: contLbl})
	cond := g.genExpr(n.Cond)
	g.emit(&CondJumpInstr{Cond: cond, Target: endLbl})
	g.pool.release(cond)
	g.emit(&JumpInstr{Target: startLbl})
	g.emit(&LabelInstr{Name: endLbl})
}

func (g *generator) genFor(n *ast.ForStmt) {
	g.pushScope()
	if n.Init != nil {
		g.genStmt(n.Init)
	}

	startLbl := g.newLabel()
	updateLbl := g.newLabel()
	endLbl := g.newLabel()

	g.emit(&LabelInstr{Name: startLbl})
	if n.Cond != nil {
		cond := g.genExpr(n.Cond)
		g.emit(&CondJumpInstr{Cond: cond, Target: endLbl})
		g.pool.release(cond)
	}

	g.breakTargets = append(g.breakTargets, endLbl)
	g.contTargets = append(g.contTargets, updateLbl)
	g.genStmt(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.contTargets = g.contTargets[:len(g.contTargets)-1]

	g.emit(&LabelInstr{Name: updateLbl})
	if n.Post != nil {
		g.genStmt(n.Post)
	}
	g.emit(&JumpInstr{Target: startLbl})
	g.emit(&LabelInstr{Name: endLbl})
	g.popScope()
}

// genForeach lowers 'foreach (x in seq) body' to an index-counted loop over
// the 'length'/'[]' pseudo-ops, exactly as §4.6 prescribes.
func (g *generator) genForeach(n *ast.ForeachStmt) {
	seq := g.genExpr(n.Iterable)
	seqHolder := seq
	if seq.IsTemp() {
		// seq must stay live for the whole loop; copy it into a second
		// temporary that is released only after the loop's end label, so
		// the pool cannot hand its name to an expression in the body.
		seqHolder = g.pool.acquire()
		g.emit(&AssignInstr{Target: seqHolder, Source: seq})
		g.pool.release(seq)
	}

	g.pushScope()
	idx := g.declareLocal("__i")
	g.emit(&AssignInstr{Target: idx, Source: Int(0)})

	startLbl := g.newLabel()
	endLbl := g.newLabel()
	contLbl := g.newLabel()
	g.emit(&LabelInstr{Name: startLbl})

	lenT := g.pool.acquire()
	g.emit(&BinaryOpInstr{Target: lenT, Left: seqHolder, Op: "length", Right: Int(0)})
	condT := g.pool.acquire()
	g.emit(&BinaryOpInstr{Target: condT, Left: idx, Op: "<", Right: lenT})
	g.pool.release(lenT)
	g.emit(&CondJumpInstr{Cond: condT, Target: endLbl})
	g.pool.release(condT)

	elemT := g.pool.acquire()
	g.emit(&BinaryOpInstr{Target: elemT, Left: seqHolder, Op: "[]", Right: idx})
	loopVar := g.declareLocal(n.Name)
	g.emit(&AssignInstr{Target: loopVar, Source: elemT})
	g.pool.release(elemT)

	g.breakTargets = append(g.breakTargets, endLbl)
	g.contTargets = append(g.contTargets, contLbl)
	g.genStmt(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.contTargets = g.contTargets[:len(g.contTargets)-1]

	g.emit(&LabelInstr{Name: contLbl})
	g.emit(&BinaryOpInstr{Target: idx, Left: idx, Op: "+", Right: Int(1)})
	g.emit(&JumpInstr{Target: startLbl})
	g.emit(&LabelInstr{Name: endLbl})
	g.popScope()
	g.pool.release(seqHolder)
}

// genSwitch lowers a chain of equality tests, per §4.6: each case is
// compared against the subject, a false comparison falls through to the
// next case test, and 'default' (if present) runs when every case misses.
func (g *generator) genSwitch(n *ast.SwitchStmt) {
	subj := g.genExpr(n.Subject)
	endLbl := g.newLabel()
	g.breakTargets = append(g.breakTargets, endLbl)

	nextLbls := make([]string, len(n.Cases))
	for i := range n.Cases {
		nextLbls[i] = g.newLabel()
	}

	for i, c := range n.Cases {
		val := g.genExpr(c.Value)
		eqT := g.pool.acquire()
		g.emit(&BinaryOpInstr{Target: eqT, Left: subj, Op: "==", Right: val})
		g.pool.release(val)
		g.emit(&CondJumpInstr{Cond: eqT, Target: nextLbls[i]})
		g.pool.release(eqT)

		g.pushScope()
		for _, s := range c.Body {
			g.genStmt(s)
		}
		g.popScope()
		g.emit(&JumpInstr{Target: endLbl})
		g.emit(&LabelInstr{Name: nextLbls[i]})
	}

	g.pushScope()
	for _, s := range n.Default {
		g.genStmt(s)
	}
	g.popScope()

	g.pool.release(subj)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	g.emit(&LabelInstr{Name: endLbl})
}

// genTryCatch emits a symbolic try/catch per §4.6 and §9: exception
// dispatch is a declared stub, so the try body runs straight through (no
// runtime hook can actually transfer control into the catch block), but
// the shape — a labeled catch block binding the error name — is emitted so
// a later runtime can wire a real raise/dispatch mechanism into it without
// otherwise changing this lowering.
func (g *generator) genTryCatch(n *ast.TryCatchStmt) {
	catchLbl := g.newLabel()
	endLbl := g.newLabel()

	g.pushScope()
	g.genBlock(n.Try)
	g.popScope()
	g.emit(&JumpInstr{Target: endLbl})

	g.emit(&LabelInstr{Name: catchLbl})
	g.pushScope()
	errVar := g.declareLocal(n.ErrName)
	g.emit(&AssignInstr{Target: errVar, Source: Str("error")})
	g.genBlock(n.Catch)
	g.popScope()

	g.emit(&LabelInstr{Name: endLbl})
}

func (g *generator) genReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		g.emit(&ReturnInstr{})
		return
	}
	v := g.genExpr(n.Value)
	g.emit(&ReturnInstr{Value: v})
	g.pool.release(v)
}
