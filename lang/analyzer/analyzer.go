// Package analyzer implements semantic analysis for Compiscript: name
// resolution, type checking, control-flow validation (unreachable code,
// all-paths-return), class/override validation, and closure-capture
// detection. It walks the AST built by lang/ast, populates a lang/symbols
// Table, and annotates every expression node with its resolved type.
//
// Diagnostics are accumulated into a go/scanner.ErrorList rather than
// returned eagerly: analysis never stops at the first error, so a single
// source file can report every problem it contains in one pass, following
// the same collect-and-continue convention as lang/scanner and lang/parser.
// Error text is in Spanish, matching the diagnostics of the system this
// compiler's front end was modeled on.
package analyzer

import (
	"fmt"
	"go/scanner"
	"sort"

	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/symbols"
	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// Result is the output of a successful (or partially successful) analysis
// pass.
type Result struct {
	Table *symbols.Table
	Types map[ast.Expr]types.Type
	Err   error // a go/scanner.ErrorList, or nil
}

// Analyze performs full semantic analysis of prog, returning the populated
// symbol table, a type annotation for every expression node, and any
// diagnostics collected.
func Analyze(filename string, prog *ast.Program) *Result {
	a := &analyzer{
		filename: filename,
		table:    symbols.NewTable(),
		types:    make(map[ast.Expr]types.Type),
	}
	a.declareTopLevel(prog)
	a.analyzeTopLevel(prog)
	a.table.LayoutClasses()
	a.table.AssignMemoryAddresses()
	a.table.AssignFunctionLabels()

	a.errs.Sort()
	return &Result{Table: a.table, Types: a.types, Err: a.errs.Err()}
}

type analyzer struct {
	filename string
	table    *symbols.Table
	types    map[ast.Expr]types.Type
	errs     scanner.ErrorList

	currentClass   *symbols.ClassInfo
	currentFunc    *symbols.FunctionInfo
	currentRetType types.Type
	loopDepth      int
	switchDepth    int
}

func (a *analyzer) errorf(pos token.Pos, format string, args ...any) {
	gopos := token.Position{Filename: a.filename, Pos: pos}.ToGoPosition()
	a.errs.Add(gopos, fmt.Sprintf(format, args...))
}

// setType records e's resolved type and returns it, so call sites can both
// annotate and use the result in one expression.
func (a *analyzer) setType(e ast.Expr, t types.Type) types.Type {
	a.types[e] = t
	return t
}

func (a *analyzer) typeOf(e ast.Expr) types.Type {
	if t, ok := a.types[e]; ok {
		return t
	}
	return types.TUnknown
}

// resolveTypeExpr converts an ast.TypeExpr into a types.Type, reporting an
// error for an unknown class name (the type becomes unknown so the rest of
// analysis can continue without cascading).
func (a *analyzer) resolveTypeExpr(te *ast.TypeExpr) types.Type {
	if te == nil {
		return types.TVoid
	}
	if te.Name == "array" {
		return types.NewArray(a.resolveTypeExpr(te.Elem))
	}
	switch te.Name {
	case "integer":
		return types.TInteger
	case "boolean":
		return types.TBoolean
	case "float":
		return types.TFloat
	case "string":
		return types.TString
	case "void":
		return types.TVoid
	default:
		if _, ok := a.table.ResolveClass(te.Name); ok {
			return types.NewClass(te.Name)
		}
		a.errorf(te.Pos, "Tipo desconocido '%s'.", te.Name)
		return types.TUnknown
	}
}

func (a *analyzer) isSubclass(derived, base string) bool { return a.table.IsSubclass(derived, base) }

// declareTopLevel runs the forward-declaration passes: every class name (so
// extends chains resolve regardless of declaration order among classes),
// every class's fields and method stubs, and every top-level function's
// stub, so calls can appear before their declaration.
func (a *analyzer) declareTopLevel(prog *ast.Program) {
	var classDecls []*ast.ClassDecl
	for _, s := range prog.Stmts {
		if cd, ok := s.(*ast.ClassDecl); ok {
			classDecls = append(classDecls, cd)
			if _, ok := a.table.DeclareClass(cd.Name, cd.Extends); !ok {
				a.errorf(cd.Pos, "Clase '%s' ya declarada.", cd.Name)
			}
		}
	}
	for _, cd := range classDecls {
		ci, ok := a.table.ResolveClass(cd.Name)
		if !ok {
			continue
		}
		if cd.Extends != "" {
			if _, ok := a.table.ResolveClass(cd.Extends); !ok {
				a.errorf(cd.Pos, "Clase base '%s' no declarada.", cd.Extends)
			}
		}
		for _, f := range cd.Fields {
			ft := a.resolveTypeExpr(f.Type)
			if _, ok := a.table.DeclareField(ci, f.Name, ft); !ok {
				a.errorf(f.Pos, "Campo '%s' ya declarado en la clase '%s'.", f.Name, cd.Name)
			}
		}
		for _, m := range cd.Methods {
			ret := a.resolveTypeExpr(m.RetType)
			a.table.RegisterMethodStub(ci, m.Name, ret)
		}
	}
	for _, s := range prog.Stmts {
		if fd, ok := s.(*ast.FunctionDecl); ok {
			ret := a.resolveTypeExpr(fd.RetType)
			a.table.RegisterFunctionStub(fd.Name, ret)
		}
	}
}

func (a *analyzer) analyzeTopLevel(prog *ast.Program) {
	// Functions and classes are analyzed after every top-level variable so
	// that global state referenced by a function body is already typed;
	// variables are still processed in source order among themselves.
	var funcs []*ast.FunctionDecl
	var classes []*ast.ClassDecl
	for _, s := range prog.Stmts {
		switch n := s.(type) {
		case *ast.FunctionDecl:
			funcs = append(funcs, n)
		case *ast.ClassDecl:
			classes = append(classes, n)
		default:
			a.analyzeStmt(s)
		}
	}
	for _, fd := range funcs {
		a.analyzeFunction(fd)
	}
	// Stable order: base classes before derived, so overrides can consult an
	// already-finalized ancestor method signature.
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[j].Extends == classes[i].Name
	})
	for _, cd := range classes {
		a.analyzeClass(cd)
	}
}
