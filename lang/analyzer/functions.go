package analyzer

import (
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// analyzeFunction analyzes a top-level function's body.
func (a *analyzer) analyzeFunction(fd *ast.FunctionDecl) {
	ret := a.resolveTypeExpr(fd.RetType)
	a.table.EnterFunction(fd.Name, "", false, false, ret)
	a.enterFunctionBody(fd, ret)
}

// analyzeClass analyzes every method of a class, with 'this' and member
// lookups resolved against the class's own fields and methods.
func (a *analyzer) analyzeClass(cd *ast.ClassDecl) {
	ci, ok := a.table.ResolveClass(cd.Name)
	if !ok {
		return
	}
	prevClass := a.currentClass
	a.currentClass = ci
	for _, m := range cd.Methods {
		a.analyzeMethod(cd, m)
	}
	a.currentClass = prevClass
}

func (a *analyzer) analyzeMethod(cd *ast.ClassDecl, m *ast.FunctionDecl) {
	ret := a.resolveTypeExpr(m.RetType)
	if !m.IsConstructor {
		a.checkOverride(cd, m, ret)
	}
	a.table.EnterFunction(m.Name, cd.Name, true, m.IsConstructor, ret)
	a.enterFunctionBody(m, ret)
}

// checkOverride enforces that a method overriding an inherited one of the
// same name has an identical signature: same arity, same parameter types in
// order, and the same return type.
func (a *analyzer) checkOverride(cd *ast.ClassDecl, m *ast.FunctionDecl, ret types.Type) {
	if cd.Extends == "" {
		return
	}
	base, ok := a.table.ResolveClass(cd.Extends)
	if !ok {
		return
	}
	ancestor, ok := a.table.ResolveMethod(base, m.Name)
	if !ok {
		return
	}
	if len(ancestor.Params) != len(m.Params) || !types.TypeEquals(ancestor.RetType, ret) {
		a.errorf(m.Pos, "Override incompatible de metodo '%s' en la clase '%s'.", m.Name, cd.Name)
		return
	}
	for i, p := range m.Params {
		pt := a.resolveTypeExpr(p.Type)
		if !types.TypeEquals(ancestor.Params[i].Type, pt) {
			a.errorf(m.Pos, "Override incompatible de metodo '%s' en la clase '%s'.", m.Name, cd.Name)
			return
		}
	}
}

// enterFunctionBody declares every parameter, analyzes the body, checks
// all-paths-return for a non-void function, and leaves the function scope.
func (a *analyzer) enterFunctionBody(fd *ast.FunctionDecl, ret types.Type) {
	prevRet := a.currentRetType
	prevFunc := a.currentFunc
	a.currentRetType = ret
	a.currentFunc = a.table.CurrentFunction()

	for _, p := range fd.Params {
		a.table.DeclareParam(p.Name, a.resolveTypeExpr(p.Type), p.Pos)
	}
	a.analyzeBlock(fd.Body)

	if ret.Kind() != types.Void && !ret.IsUnknown() && !blockAlwaysReturns(fd.Body) {
		name := fd.Name
		if fd.IsMethod {
			name = fd.OwnerClass + "." + fd.Name
		}
		a.errorf(fd.Pos, "La funcion '%s' debe retornar %s en todos los caminos.", name, ret)
	}

	a.table.LeaveFunction()
	a.currentRetType = prevRet
	a.currentFunc = prevFunc
}
