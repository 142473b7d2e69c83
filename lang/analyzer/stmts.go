package analyzer

import (
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// analyzeStmt type-checks and validates s. It does not itself detect
// unreachable code; that is the responsibility of analyzeBlock, which knows
// the statement's position within its enclosing block.
func (a *analyzer) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		a.analyzeVarDecl(n)
	case *ast.ExprStmt:
		a.analyzeExpr(n.Expr)
	case *ast.AssignStmt:
		a.analyzeAssign(n)
	case *ast.PrintStmt:
		a.analyzeExpr(n.Arg)
	case *ast.IfStmt:
		a.analyzeIf(n)
	case *ast.WhileStmt:
		a.analyzeWhile(n)
	case *ast.DoWhileStmt:
		a.analyzeDoWhile(n)
	case *ast.ForStmt:
		a.analyzeFor(n)
	case *ast.ForeachStmt:
		a.analyzeForeach(n)
	case *ast.SwitchStmt:
		a.analyzeSwitch(n)
	case *ast.TryCatchStmt:
		a.analyzeTryCatch(n)
	case *ast.BreakStmt:
		if a.loopDepth == 0 && a.switchDepth == 0 {
			a.errorf(n.Pos, "'break' fuera de un ciclo o switch.")
		}
	case *ast.ContinueStmt:
		if a.loopDepth == 0 {
			a.errorf(n.Pos, "'continue' fuera de un ciclo.")
		}
	case *ast.ReturnStmt:
		a.analyzeReturn(n)
	case *ast.Block:
		a.table.PushBlock()
		a.analyzeBlock(n)
		a.table.PopBlock()
	case *ast.FunctionDecl:
		a.analyzeFunction(n)
	case *ast.ClassDecl:
		a.analyzeClass(n)
	default:
		a.errorf(0, "Sentencia no reconocida en el analizador: %T.", s)
	}
}

// analyzeBlock walks a block's statements in order, flagging as unreachable
// any statement following one that always exits the block (break, continue,
// return).
func (a *analyzer) analyzeBlock(b *ast.Block) {
	a.declareNested(b)

	deadAfter := -1
	for i, s := range b.Stmts {
		if deadAfter >= 0 {
			start, _ := s.Span()
			a.errorf(start, "Codigo inalcanzable.")
		}
		a.analyzeStmt(s)
		if deadAfter < 0 && s.BlockEnding() {
			deadAfter = i
		}
	}
}

// declareNested pre-registers any function or class declared directly in b
// (not nested further inside a child statement), so a forward reference
// from an earlier sibling statement in the same block resolves correctly -
// the same forward-declaration convention top-level declarations get from
// declareTopLevel.
func (a *analyzer) declareNested(b *ast.Block) {
	for _, s := range b.Stmts {
		switch n := s.(type) {
		case *ast.FunctionDecl:
			a.table.RegisterFunctionStub(n.Name, a.resolveTypeExpr(n.RetType))
		case *ast.ClassDecl:
			ci, ok := a.table.DeclareClass(n.Name, n.Extends)
			if !ok {
				a.errorf(n.Pos, "Clase '%s' ya declarada.", n.Name)
				continue
			}
			for _, f := range n.Fields {
				a.table.DeclareField(ci, f.Name, a.resolveTypeExpr(f.Type))
			}
			for _, m := range n.Methods {
				a.table.RegisterMethodStub(ci, m.Name, a.resolveTypeExpr(m.RetType))
			}
		}
	}
}

func (a *analyzer) analyzeVarDecl(n *ast.VarDecl) {
	var declared types.Type
	if n.Type != nil {
		declared = a.resolveTypeExpr(n.Type)
	}
	if n.IsConst && n.Init == nil {
		a.errorf(n.Pos, "Const sin inicializador: '%s'.", n.Name)
	}

	var initType types.Type
	hasInit := n.Init != nil
	if hasInit {
		initType = a.analyzeExpr(n.Init)
	}

	var final types.Type
	switch {
	case n.Type != nil && hasInit:
		if !types.IsAssignable(declared, initType, a.isSubclass) {
			a.errorf(n.Pos, "Tipo incompatible en inicializacion de variable '%s'.", n.Name)
		}
		final = declared
	case n.Type != nil:
		final = declared
	case hasInit:
		final = initType
	default:
		final = types.TUnknown
	}

	b, ok := a.table.DeclareVar(n.Name, final, n.IsConst, n.Pos)
	if !ok {
		a.errorf(n.Pos, "Variable '%s' ya declarada en este ambito.", n.Name)
		return
	}
	_ = b
}

// analyzeAssign validates an assignment's target is a legal lvalue (a name,
// field, or array element — never a method, constant, or arbitrary
// expression) and that Value is assignable to it.
func (a *analyzer) analyzeAssign(n *ast.AssignStmt) {
	valType := a.analyzeExpr(n.Value)

	switch target := n.Target.(type) {
	case *ast.NameExpr:
		b, ok := a.table.Resolve(target.Name)
		if !ok {
			a.errorf(n.Pos, "Variable '%s' no declarada.", target.Name)
			a.setType(target, types.TUnknown)
			return
		}
		a.setType(target, b.Type)
		if b.IsConst {
			a.errorf(n.Pos, "No se puede reasignar a constante '%s'.", target.Name)
			return
		}
		if !types.IsAssignable(b.Type, valType, a.isSubclass) {
			a.errorf(n.Pos, "Tipo incompatible en asignacion a '%s'.", target.Name)
		}
	case *ast.MemberExpr:
		fieldType := a.analyzeMember(target)
		if !types.IsAssignable(fieldType, valType, a.isSubclass) && !fieldType.IsUnknown() {
			a.errorf(n.Pos, "Tipo incompatible en asignacion al miembro '%s'.", target.Name)
		}
	case *ast.IndexExpr:
		elemType := a.analyzeIndex(target)
		if !types.IsAssignable(elemType, valType, a.isSubclass) && !elemType.IsUnknown() {
			a.errorf(n.Pos, "Tipo incompatible en asignacion a elemento de arreglo.")
		}
	default:
		a.analyzeExpr(n.Target)
		a.errorf(n.Pos, "Destino de asignacion invalido.")
	}
}

func (a *analyzer) analyzeIf(n *ast.IfStmt) {
	condType := a.analyzeExpr(n.Cond)
	if condType.Kind() != types.Boolean && !condType.IsUnknown() {
		a.errorf(n.Pos, "La condicion de 'if' debe ser 'boolean'.")
	}
	a.analyzeStmt(n.Then)
	if n.Else != nil {
		a.analyzeStmt(n.Else)
	}
}

func (a *analyzer) analyzeWhile(n *ast.WhileStmt) {
	condType := a.analyzeExpr(n.Cond)
	if condType.Kind() != types.Boolean && !condType.IsUnknown() {
		a.errorf(n.Pos, "La condicion de 'while' debe ser 'boolean'.")
	}
	a.loopDepth++
	a.analyzeStmt(n.Body)
	a.loopDepth--
}

func (a *analyzer) analyzeDoWhile(n *ast.DoWhileStmt) {
	a.loopDepth++
	a.analyzeStmt(n.Body)
	a.loopDepth--
	condType := a.analyzeExpr(n.Cond)
	if condType.Kind() != types.Boolean && !condType.IsUnknown() {
		a.errorf(n.Pos, "La condicion de 'do-while' debe ser 'boolean'.")
	}
}

func (a *analyzer) analyzeFor(n *ast.ForStmt) {
	a.table.PushBlock()
	if n.Init != nil {
		a.analyzeStmt(n.Init)
	}
	if n.Cond != nil {
		condType := a.analyzeExpr(n.Cond)
		if condType.Kind() != types.Boolean && !condType.IsUnknown() {
			a.errorf(n.Pos, "La condicion de 'for' debe ser 'boolean'.")
		}
	}
	a.loopDepth++
	a.analyzeStmt(n.Body)
	if n.Post != nil {
		a.analyzeStmt(n.Post)
	}
	a.loopDepth--
	a.table.PopBlock()
}

func (a *analyzer) analyzeForeach(n *ast.ForeachStmt) {
	iterType := a.analyzeExpr(n.Iterable)
	var elemType types.Type
	if iterType.IsArray() {
		elemType = iterType.Elem()
	} else if !iterType.IsUnknown() {
		a.errorf(n.Pos, "'foreach' requiere un arreglo.")
		elemType = types.TUnknown
	} else {
		elemType = types.TUnknown
	}

	a.table.PushBlock()
	a.table.DeclareVar(n.Name, elemType, false, n.Pos)
	a.loopDepth++
	a.analyzeStmt(n.Body)
	a.loopDepth--
	a.table.PopBlock()
}

func (a *analyzer) analyzeSwitch(n *ast.SwitchStmt) {
	subjType := a.analyzeExpr(n.Subject)
	a.switchDepth++
	for _, c := range n.Cases {
		caseType := a.analyzeExpr(c.Value)
		if !types.AreEqComparable(subjType, caseType) {
			a.errorf(c.Pos, "El valor del 'case' no es comparable con el del 'switch'.")
		}
		a.table.PushBlock()
		for _, s := range c.Body {
			a.analyzeStmt(s)
		}
		a.table.PopBlock()
	}
	a.table.PushBlock()
	for _, s := range n.Default {
		a.analyzeStmt(s)
	}
	a.table.PopBlock()
	a.switchDepth--
}

func (a *analyzer) analyzeTryCatch(n *ast.TryCatchStmt) {
	a.table.PushBlock()
	a.analyzeBlock(n.Try)
	a.table.PopBlock()

	a.table.PushBlock()
	a.table.DeclareVar(n.ErrName, types.TString, false, n.Pos)
	a.analyzeBlock(n.Catch)
	a.table.PopBlock()
}

func (a *analyzer) analyzeReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		if a.currentRetType.Kind() != types.Void && !a.currentRetType.IsUnknown() {
			a.errorf(n.Pos, "Se esperaba un valor de retorno de tipo %s.", a.currentRetType)
		}
		return
	}
	valType := a.analyzeExpr(n.Value)
	if !types.IsAssignable(a.currentRetType, valType, a.isSubclass) {
		a.errorf(n.Pos, "El valor retornado no es compatible con el tipo de retorno %s.", a.currentRetType)
	}
}

// blockAlwaysReturns reports whether every control-flow path through b ends
// in a return statement (a break or continue does not count), so the
// caller can enforce "must return a value in every path".
func blockAlwaysReturns(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if stmtAlwaysReturns(s) {
			return true
		}
	}
	return false
}

func stmtAlwaysReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		return blockAlwaysReturns(n)
	case *ast.IfStmt:
		if lit, ok := n.Cond.(*ast.LiteralExpr); ok && lit.Kind == ast.LitBool {
			if lit.Bool {
				return stmtAlwaysReturns(n.Then)
			}
			if n.Else != nil {
				return stmtAlwaysReturns(n.Else)
			}
			return false
		}
		if n.Else == nil {
			return false
		}
		return stmtAlwaysReturns(n.Then) && stmtAlwaysReturns(n.Else)
	case *ast.TryCatchStmt:
		return blockAlwaysReturns(n.Try) && blockAlwaysReturns(n.Catch)
	case *ast.SwitchStmt:
		if n.Default == nil {
			return false
		}
		for _, c := range n.Cases {
			if !stmtsAlwaysReturn(c.Body) {
				return false
			}
		}
		return stmtsAlwaysReturn(n.Default)
	default:
		return false
	}
}

func stmtsAlwaysReturn(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtAlwaysReturns(s) {
			return true
		}
	}
	return false
}
