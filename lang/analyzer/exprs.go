package analyzer

import (
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/symbols"
	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// analyzeExpr type-checks e and every subexpression, returning e's type.
// Errors never abort the walk: an ill-typed subexpression is annotated
// Unknown so its parent can keep analyzing without cascading diagnostics.
func (a *analyzer) analyzeExpr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return a.analyzeLiteral(n)
	case *ast.NameExpr:
		return a.analyzeName(n)
	case *ast.ThisExpr:
		return a.analyzeThis(n)
	case *ast.ArrayLiteralExpr:
		return a.analyzeArrayLiteral(n)
	case *ast.NewExpr:
		return a.analyzeNew(n)
	case *ast.CallExpr:
		return a.analyzeCall(n)
	case *ast.MemberExpr:
		return a.analyzeMember(n)
	case *ast.IndexExpr:
		return a.analyzeIndex(n)
	case *ast.UnaryExpr:
		return a.analyzeUnary(n)
	case *ast.BinaryExpr:
		return a.analyzeBinary(n)
	case *ast.TernaryExpr:
		return a.analyzeTernary(n)
	default:
		return a.setType(e, types.TUnknown)
	}
}

func (a *analyzer) analyzeLiteral(n *ast.LiteralExpr) types.Type {
	switch n.Kind {
	case ast.LitInt:
		return a.setType(n, types.TInteger)
	case ast.LitFloat:
		return a.setType(n, types.TFloat)
	case ast.LitString:
		return a.setType(n, types.TString)
	case ast.LitBool:
		return a.setType(n, types.TBoolean)
	default: // LitNull
		return a.setType(n, types.TNull)
	}
}

func (a *analyzer) analyzeName(n *ast.NameExpr) types.Type {
	b, ok := a.table.Resolve(n.Name)
	if !ok {
		if _, isFunc := a.table.LookupFunction(n.Name); isFunc {
			a.errorf(n.Pos, "No se puede usar la funcion '%s' como valor.", n.Name)
			return a.setType(n, types.TUnknown)
		}
		a.errorf(n.Pos, "Variable '%s' no declarada.", n.Name)
		return a.setType(n, types.TUnknown)
	}
	return a.setType(n, b.Type)
}

func (a *analyzer) analyzeThis(n *ast.ThisExpr) types.Type {
	if a.currentClass == nil {
		a.errorf(n.Pos, "'this' usado fuera de un metodo.")
		return a.setType(n, types.TUnknown)
	}
	return a.setType(n, types.NewClass(a.currentClass.Name))
}

func (a *analyzer) analyzeArrayLiteral(n *ast.ArrayLiteralExpr) types.Type {
	elemTypes := make([]types.Type, len(n.Elems))
	for i, e := range n.Elems {
		elemTypes[i] = a.analyzeExpr(e)
	}
	t, ok := types.ArrayLiteralType(elemTypes)
	if !ok {
		a.errorf(n.Pos, "Tipos inconsistentes en literal de arreglo.")
	}
	return a.setType(n, t)
}

func (a *analyzer) analyzeNew(n *ast.NewExpr) types.Type {
	ci, ok := a.table.ResolveClass(n.ClassName)
	if !ok {
		a.errorf(n.Pos, "Clase '%s' no declarada.", n.ClassName)
		for _, arg := range n.Args {
			a.analyzeExpr(arg)
		}
		return a.setType(n, types.TUnknown)
	}
	argTypes := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.analyzeExpr(arg)
	}
	if ctor, ok := a.table.ResolveMethod(ci, "constructor"); ok {
		a.checkArgs(n.Pos, ctor, argTypes)
	} else if len(n.Args) > 0 {
		a.errorf(n.Pos, "Llamada a constructor de '%s' con %d argumento(s), se esperaban 0.", n.ClassName, len(n.Args))
	}
	return a.setType(n, types.NewClass(n.ClassName))
}

// checkArgs validates a call's argument list against a FunctionInfo's
// declared parameters, reporting an arity mismatch or, for each matching
// position, a type mismatch.
func (a *analyzer) checkArgs(pos token.Pos, fi *symbols.FunctionInfo, argTypes []types.Type) {
	if len(argTypes) != len(fi.Params) {
		a.errorf(pos, "Llamada a '%s' con %d argumento(s), se esperaban %d.", fi.Name, len(argTypes), len(fi.Params))
		return
	}
	for i, p := range fi.Params {
		if !types.IsAssignable(p.Type, argTypes[i], a.isSubclass) {
			a.errorf(pos, "Argumento %d de '%s' no es compatible: se esperaba %s.", i+1, fi.Name, p.Type)
		}
	}
}

func (a *analyzer) analyzeCall(n *ast.CallExpr) types.Type {
	argTypes := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.analyzeExpr(arg)
	}

	switch callee := n.Callee.(type) {
	case *ast.NameExpr:
		fi, ok := a.table.LookupFunction(callee.Name)
		if !ok {
			a.errorf(n.Pos, "Funcion '%s' no declarada.", callee.Name)
			a.setType(callee, types.TUnknown)
			return a.setType(n, types.TUnknown)
		}
		a.setType(callee, types.TUnknown) // a function name has no value type of its own
		a.checkArgs(n.Pos, fi, argTypes)
		return a.setType(n, fi.RetType)
	case *ast.MemberExpr:
		targetType := a.analyzeExpr(callee.Target)
		a.setType(callee, types.TUnknown)
		if !targetType.IsClass() {
			if !targetType.IsUnknown() {
				a.errorf(n.Pos, "Metodo '%s' llamado sobre un valor que no es una instancia de clase.", callee.Name)
			}
			return a.setType(n, types.TUnknown)
		}
		ci, _ := a.table.ResolveClass(targetType.ClassName())
		fi, ok := a.table.ResolveMethod(ci, callee.Name)
		if !ok {
			a.errorf(n.Pos, "La clase '%s' no tiene el metodo '%s'.", targetType.ClassName(), callee.Name)
			return a.setType(n, types.TUnknown)
		}
		a.checkArgs(n.Pos, fi, argTypes)
		return a.setType(n, fi.RetType)
	default:
		a.analyzeExpr(n.Callee)
		a.errorf(n.Pos, "Expresion no invocable.")
		return a.setType(n, types.TUnknown)
	}
}

func (a *analyzer) analyzeMember(n *ast.MemberExpr) types.Type {
	targetType := a.analyzeExpr(n.Target)
	if !targetType.IsClass() {
		if !targetType.IsUnknown() {
			a.errorf(n.Pos, "Acceso a miembro '%s' sobre un valor que no es una instancia de clase.", n.Name)
		}
		return a.setType(n, types.TUnknown)
	}
	ci, _ := a.table.ResolveClass(targetType.ClassName())
	b, _, ok := a.table.ResolveField(ci, n.Name)
	if !ok {
		a.errorf(n.Pos, "La clase '%s' no tiene el miembro '%s'.", targetType.ClassName(), n.Name)
		return a.setType(n, types.TUnknown)
	}
	return a.setType(n, b.Type)
}

func (a *analyzer) analyzeIndex(n *ast.IndexExpr) types.Type {
	targetType := a.analyzeExpr(n.Target)
	idxType := a.analyzeExpr(n.Index)
	if idxType.Kind() != types.Integer && !idxType.IsUnknown() {
		a.errorf(n.Pos, "El indice de un arreglo debe ser 'integer'.")
	}
	if !targetType.IsArray() {
		if !targetType.IsUnknown() {
			a.errorf(n.Pos, "Indexacion aplicada a un valor que no es un arreglo.")
		}
		return a.setType(n, types.TUnknown)
	}
	return a.setType(n, targetType.Elem())
}

func (a *analyzer) analyzeUnary(n *ast.UnaryExpr) types.Type {
	xt := a.analyzeExpr(n.X)
	switch n.Op {
	case token.MINUS:
		if !xt.IsNumeric() && !xt.IsUnknown() {
			a.errorf(n.Pos, "El operador '-' unario requiere un operando numerico.")
			return a.setType(n, types.TUnknown)
		}
		return a.setType(n, xt)
	case token.NOT:
		if xt.Kind() != types.Boolean && !xt.IsUnknown() {
			a.errorf(n.Pos, "El operador '!' requiere un operando 'boolean'.")
			return a.setType(n, types.TUnknown)
		}
		return a.setType(n, types.TBoolean)
	default:
		return a.setType(n, types.TUnknown)
	}
}

func (a *analyzer) analyzeBinary(n *ast.BinaryExpr) types.Type {
	xt := a.analyzeExpr(n.X)
	yt := a.analyzeExpr(n.Y)

	switch n.Op {
	case token.PLUS:
		if xt.Kind() == types.String && yt.Kind() == types.String {
			return a.setType(n, types.TString)
		}
		fallthrough
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if (xt.IsNumeric() || xt.IsUnknown()) && (yt.IsNumeric() || yt.IsUnknown()) {
			return a.setType(n, types.Promote(xt, yt))
		}
		a.errorf(n.Pos, "El operador '%s' requiere operandos numericos.", n.Op)
		return a.setType(n, types.TUnknown)
	case token.LT, token.GT, token.LE, token.GE:
		if (xt.IsNumeric() || xt.IsUnknown()) && (yt.IsNumeric() || yt.IsUnknown()) {
			return a.setType(n, types.TBoolean)
		}
		a.errorf(n.Pos, "El operador '%s' requiere operandos numericos.", n.Op)
		return a.setType(n, types.TBoolean)
	case token.EQL, token.NEQ:
		if !types.AreEqComparable(xt, yt) {
			a.errorf(n.Pos, "Los operandos de '%s' no son comparables.", n.Op)
		}
		return a.setType(n, types.TBoolean)
	case token.AND, token.OR:
		if (xt.Kind() != types.Boolean && !xt.IsUnknown()) || (yt.Kind() != types.Boolean && !yt.IsUnknown()) {
			a.errorf(n.Pos, "El operador '%s' requiere operandos 'boolean'.", n.Op)
		}
		return a.setType(n, types.TBoolean)
	default:
		return a.setType(n, types.TUnknown)
	}
}

func (a *analyzer) analyzeTernary(n *ast.TernaryExpr) types.Type {
	condType := a.analyzeExpr(n.Cond)
	if condType.Kind() != types.Boolean && !condType.IsUnknown() {
		a.errorf(n.Pos, "La condicion del operador ternario debe ser 'boolean'.")
	}
	thenType := a.analyzeExpr(n.Then)
	elseType := a.analyzeExpr(n.Else)
	if types.TypeEquals(thenType, elseType) {
		return a.setType(n, thenType)
	}
	if thenType.IsUnknown() {
		return a.setType(n, elseType)
	}
	if elseType.IsUnknown() {
		return a.setType(n, thenType)
	}
	a.errorf(n.Pos, "Las ramas del operador ternario tienen tipos incompatibles.")
	return a.setType(n, types.TUnknown)
}
