package tac

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/symbols"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// Generate lowers an error-free, type-annotated AST into a linear TAC
// program. prog must have come from a lang/analyzer.Analyze call whose
// Result.Err was nil: per §5, address and label assignment has already run
// (table.LayoutClasses/AssignMemoryAddresses/AssignFunctionLabels), so
// every reference this pass lowers sees a stable label.
func Generate(prog *ast.Program, table *symbols.Table, exprTypes map[ast.Expr]types.Type) *Program {
	g := &generator{
		table: table,
		types: exprTypes,
		out:     &Program{Classes: make(map[string]ClassMeta)},
		globals: make(map[string]Operand),
	}
	g.declareClassMeta(prog)
	g.resetFrame()

	for _, s := range prog.Stmts {
		switch n := s.(type) {
		case *ast.FunctionDecl:
			g.pending = append(g.pending, n)
		case *ast.ClassDecl:
			g.pending = append(g.pending, n.Methods...)
		default:
			g.genStmt(s)
		}
	}

	for i := 0; i < len(g.pending); i++ {
		g.genFunction(g.pending[i])
	}

	return g.out
}

// generator holds the mutable state of a single lowering pass: the active
// instruction buffer, the temporary pool, and the two name-resolution
// layers (a flat global map and a stack of block-scoped maps mirroring
// lang/analyzer's own PushBlock/PopBlock discipline, re-derived here since
// the symbol table's own ScopeStack is consumed and emptied by the
// analyzer pass and cannot be replayed).
type generator struct {
	table *symbols.Table
	types map[ast.Expr]types.Type
	out   *Program

	pool       tempPool
	globals    map[string]Operand
	scopeStack []map[string]Operand
	usedNames  map[string]int

	curFunc *symbols.FunctionInfo // nil at top level

	pending      []*ast.FunctionDecl
	breakTargets []string
	contTargets  []string
}

// resetFrame clears per-function generation state: a fresh temp pool (each
// function's temporaries are local to its own frame), a fresh
// disambiguation table, and an empty block-scope stack. Called once before
// top-level code and once per function body.
func (g *generator) resetFrame() {
	g.pool = tempPool{}
	g.usedNames = make(map[string]int)
	g.scopeStack = nil
}

func (g *generator) emit(i Instr) { g.out.Lines = append(g.out.Lines, i) }

func (g *generator) newLabel() string { return g.table.GenerateLabel() }

func (g *generator) pushScope() { g.scopeStack = append(g.scopeStack, make(map[string]Operand)) }
func (g *generator) popScope()  { g.scopeStack = g.scopeStack[:len(g.scopeStack)-1] }

// declareClassMeta walks every top-level ClassDecl and records the
// instance size and constructor label lang/mipsgen needs to lower a 'new'
// expression, reading the layout lang/symbols already computed.
func (g *generator) declareClassMeta(prog *ast.Program) {
	for _, s := range prog.Stmts {
		cd, ok := s.(*ast.ClassDecl)
		if !ok {
			continue
		}
		ci, ok := g.table.ResolveClass(cd.Name)
		if !ok {
			continue
		}
		meta := ClassMeta{Size: ci.Size, Fields: make(map[string]int)}
		if ctor, ok := g.table.ResolveMethod(ci, "constructor"); ok {
			meta.CtorLabel = ctor.Label
			meta.CtorArity = len(ctor.Params)
		}
		for cur := ci; cur != nil; {
			for _, f := range cur.Fields {
				if _, exists := meta.Fields[f.Name]; !exists {
					meta.Fields[f.Name] = f.FieldOffset
				}
			}
			if cur.Extends == "" {
				break
			}
			next, ok := g.table.ResolveClass(cur.Extends)
			if !ok {
				break
			}
			cur = next
		}
		g.out.Classes[cd.Name] = meta
	}
}

// declareVar introduces name as a new binding in the current scope: a
// genuinely global declaration (no enclosing function and no pushed block)
// is addressed by its bare name; anything else goes through the
// disambiguating local-scope path, since Compiscript permits shadowing a
// name across nested blocks of the same function (lang/symbols.ScopeStack.Declare).
func (g *generator) declareVar(name string) Operand {
	if g.curFunc == nil && len(g.scopeStack) == 0 {
		op := Var(name)
		g.globals[name] = op
		return op
	}
	return g.declareLocal(name)
}

func (g *generator) declareLocal(name string) Operand {
	uniq := name
	if n, seen := g.usedNames[name]; seen {
		uniq = fmt.Sprintf("%s_%d", name, n)
		g.usedNames[name] = n + 1
	} else {
		g.usedNames[name] = 1
	}
	op := Var(uniq)
	g.scopeStack[len(g.scopeStack)-1][name] = op
	return op
}

// resolveName looks up an identifier reference: innermost-outward through
// the current function's block scopes, then the enclosing function's free
// variables (referenced by their bare declared name — this generator does
// not box captured locals into heap cells, a simplification the design
// ledger records as acceptable given §1's declared non-goal of full
// object-layout codegen), then the global table.
func (g *generator) resolveName(name string) Operand {
	for i := len(g.scopeStack) - 1; i >= 0; i-- {
		if op, ok := g.scopeStack[i][name]; ok {
			return op
		}
	}
	if g.curFunc != nil {
		for _, fv := range g.curFunc.FreeVars {
			if fv.Name == name {
				return Var(name)
			}
		}
	}
	if op, ok := g.globals[name]; ok {
		return op
	}
	return Var(name)
}

// funcInfo resolves fd's FunctionInfo from the symbol table: top-level
// functions are keyed by bare name, methods by their owning class.
func (g *generator) funcInfo(fd *ast.FunctionDecl) *symbols.FunctionInfo {
	if fd.IsMethod {
		ci, ok := g.table.ResolveClass(fd.OwnerClass)
		if !ok {
			return nil
		}
		fi, ok := ci.Methods[fd.Name]
		if !ok {
			return nil
		}
		return fi
	}
	fi, ok := g.table.LookupFunction(fd.Name)
	if !ok {
		return nil
	}
	return fi
}

// genFunction emits a function or method's entry label, BeginFunc,
// lowered body, and EndFunc. A body that falls off the end without an
// explicit return (legal for a void function) relies on lang/mipsgen's
// epilogue being reached by straight-line fallthrough, mirroring how the
// analyzer already permits a void function with no all-paths-return check.
func (g *generator) genFunction(fd *ast.FunctionDecl) {
	fi := g.funcInfo(fd)
	if fi == nil {
		g.emit(&CommentInstr{Text: fmt.Sprintf("could not resolve function info for %q", fd.Name)})
		return
	}

	prevFunc := g.curFunc
	g.curFunc = fi
	g.resetFrame()
	g.pushScope()

	for _, p := range fd.Params {
		g.declareLocal(p.Name)
	}

	g.emit(&LabelInstr{Name: fi.Label})
	g.emit(&BeginFuncInstr{})
	g.genBlock(fd.Body)
	g.emit(&EndFuncInstr{})

	g.popScope()
	g.curFunc = prevFunc
}

func (g *generator) genBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
}
