package symbols

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/maps"

	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// Table is the symbol table for a single compilation unit: the global
// scope, every declared function and class, and the machinery to assign
// runtime addresses and labels once analysis is complete.
//
// Global variable addresses and the function registry are backed by
// dolthub/swiss, a SwissTable-style hash map, since both are populated
// once during analysis and then looked up at high frequency during TAC and
// MIPS generation.
type Table struct {
	scopes *ScopeStack

	globals      *swiss.Map[string, *Binding]
	globalOrder  []string // declaration order, for deterministic address assignment
	funcs        *swiss.Map[string, *FunctionInfo]
	funcOrder    []string
	classes      map[string]*ClassInfo // small and rarely iterated; a plain map is fine
	classOrder   []string
	funcStubs    map[string]*FunctionInfo // top-level function forward declarations

	funcStack []*FunctionInfo
	labelNum  int
}

// NewTable returns an empty symbol table with just the global scope.
func NewTable() *Table {
	return &Table{
		scopes:  NewScopeStack(),
		globals:   swiss.NewMap[string, *Binding](64),
		funcs:     swiss.NewMap[string, *FunctionInfo](64),
		classes:   make(map[string]*ClassInfo),
		funcStubs: make(map[string]*FunctionInfo),
	}
}

// RegisterFunctionStub pre-declares a top-level function's FunctionInfo
// before its body is analyzed, so calls appearing earlier in the program
// can resolve its signature. The stub is reused (not replaced) when
// EnterFunction is later called for the same name.
func (t *Table) RegisterFunctionStub(name string, ret types.Type) *FunctionInfo {
	fi := newFunctionInfo(name)
	fi.RetType = ret
	t.funcStubs[name] = fi
	return fi
}

// LookupFunction resolves a top-level function by name, after
// AssignFunctionLabels (or, during analysis, after its stub has been
// registered).
func (t *Table) LookupFunction(name string) (*FunctionInfo, bool) {
	if fi, ok := t.funcs.Get(name); ok {
		return fi, true
	}
	fi, ok := t.funcStubs[name]
	return fi, ok
}

// PushBlock/PopBlock/AtGlobal delegate to the underlying scope stack;
// analyzer callers use PushBlock/PopBlock directly when walking block
// statements that are not function bodies.
func (t *Table) PushBlock()  { t.scopes.PushBlock() }
func (t *Table) PopBlock()   { t.scopes.Pop() }
func (t *Table) AtGlobal() bool { return t.scopes.AtGlobalScope() }

// DeclareVar declares name in the current scope. At global scope it becomes
// a Global binding registered for later address assignment; otherwise it is
// a plain scope-stack declaration whose final Local/Cell classification and
// frame offset are resolved when the enclosing function is left.
func (t *Table) DeclareVar(name string, typ types.Type, isConst bool, pos token.Pos) (*Binding, bool) {
	b := &Binding{Name: name, Type: typ, IsConst: isConst, DeclPos: pos}
	if t.scopes.AtGlobalScope() {
		b.Scope = Global
	}
	if !t.scopes.Declare(b) {
		return nil, false
	}
	if b.Scope == Global {
		t.globals.Put(name, b)
		t.globalOrder = append(t.globalOrder, name)
	} else if cur := t.CurrentFunction(); cur != nil {
		cur.Locals = append(cur.Locals, b)
	}
	return b, true
}

// DeclareParam declares a parameter in the current function's outermost
// scope and records it on the current FunctionInfo.
func (t *Table) DeclareParam(name string, typ types.Type, pos token.Pos) (*Binding, bool) {
	b := &Binding{Name: name, Type: typ, DeclPos: pos, Scope: Parameter}
	if !t.scopes.Declare(b) {
		return nil, false
	}
	if cur := t.CurrentFunction(); cur != nil {
		cur.Params = append(cur.Params, b)
	}
	return b, true
}

// Resolve looks up name. When the lookup crosses a function boundary to
// reach a non-global binding, that binding is marked Cell, appended to the
// current function's FreeVars, and the current function's key is added to
// its CapturedBy.
func (t *Table) Resolve(name string) (*Binding, bool) {
	b, crossed := t.scopes.Resolve(name)
	if b == nil {
		if gb, ok := t.globals.Get(name); ok {
			return gb, true
		}
		return nil, false
	}
	if crossed > 0 && b.Scope != Global && b.Scope != Field {
		b.Scope = Cell
		if cur := t.CurrentFunction(); cur != nil {
			cur.FreeVars = append(cur.FreeVars, b)
			b.CapturedBy = append(b.CapturedBy, cur.Key())
		}
	}
	return b, true
}

// CurrentFunction returns the FunctionInfo for the innermost function being
// analyzed, or nil at global scope.
func (t *Table) CurrentFunction() *FunctionInfo {
	if len(t.funcStack) == 0 {
		return nil
	}
	return t.funcStack[len(t.funcStack)-1]
}

// EnterFunction begins analysis of a new function body: pushes a function
// scope and a fresh FunctionInfo onto the function stack.
func (t *Table) EnterFunction(name, ownerClass string, isMethod, isCtor bool, ret types.Type) *FunctionInfo {
	var info *FunctionInfo
	if isMethod {
		if ci, ok := t.classes[ownerClass]; ok {
			info = ci.Methods[name]
		}
	} else if fi, ok := t.funcStubs[name]; ok {
		info = fi
	}
	if info == nil {
		info = newFunctionInfo(name)
		info.RetType = ret
	}
	info.OwnerClass, info.IsMethod, info.IsCtor = ownerClass, isMethod, isCtor
	t.funcStack = append(t.funcStack, info)
	t.scopes.PushFunction()
	return info
}

// LeaveFunction finishes analysis of the current function body: lays out
// its frame (parameters then locals, in declaration order) and registers it
// in the function table.
func (t *Table) LeaveFunction() *FunctionInfo {
	info := t.funcStack[len(t.funcStack)-1]
	t.funcStack = t.funcStack[:len(t.funcStack)-1]
	t.scopes.Pop()

	for _, p := range info.Params {
		info.Layout.AllocParam(p)
	}
	for _, l := range info.Locals {
		info.Layout.AllocLocal(l)
	}

	key := info.Key()
	t.funcs.Put(key, info)
	t.funcOrder = append(t.funcOrder, key)
	return info
}

// DeclareClass registers a new class. extends may be empty.
func (t *Table) DeclareClass(name, extends string) (*ClassInfo, bool) {
	if _, exists := t.classes[name]; exists {
		return nil, false
	}
	ci := newClassInfo(name, extends)
	t.classes[name] = ci
	t.classOrder = append(t.classOrder, name)
	return ci, true
}

// ResolveClass looks up a declared class by name.
func (t *Table) ResolveClass(name string) (*ClassInfo, bool) {
	ci, ok := t.classes[name]
	return ci, ok
}

// DeclareField adds a field to a class.
func (t *Table) DeclareField(class *ClassInfo, name string, typ types.Type) (*Binding, bool) {
	if _, exists := class.Field(name); exists {
		return nil, false
	}
	return class.addField(name, typ), true
}

// IsSubclass reports whether derived is base, or transitively extends base.
func (t *Table) IsSubclass(derived, base string) bool {
	for derived != "" {
		if derived == base {
			return true
		}
		ci, ok := t.classes[derived]
		if !ok {
			return false
		}
		derived = ci.Extends
	}
	return false
}

// ResolveField walks class's ancestor chain (most-derived first) looking
// for a field named name.
func (t *Table) ResolveField(class *ClassInfo, name string) (*Binding, *ClassInfo, bool) {
	for cur := class; cur != nil; {
		if b, ok := cur.Field(name); ok {
			return b, cur, true
		}
		if cur.Extends == "" {
			break
		}
		next, ok := t.classes[cur.Extends]
		if !ok {
			break
		}
		cur = next
	}
	return nil, nil, false
}

// ResolveMethod walks class's ancestor chain looking for a method named
// name, returning the FunctionInfo actually registered for the class that
// defines it (so overrides resolve to the most-derived implementation).
func (t *Table) ResolveMethod(class *ClassInfo, name string) (*FunctionInfo, bool) {
	for cur := class; cur != nil; {
		if fi, ok := cur.Methods[name]; ok {
			return fi, true
		}
		if cur.Extends == "" {
			break
		}
		next, ok := t.classes[cur.Extends]
		if !ok {
			break
		}
		cur = next
	}
	return nil, false
}

// LayoutClasses assigns field offsets to every declared class, base classes
// first so derived classes can extend their layout. Must be called after
// all classes and fields have been declared and before codegen.
func (t *Table) LayoutClasses() {
	done := make(map[string]bool, len(t.classes))
	var layout func(name string)
	layout = func(name string) {
		if done[name] {
			return
		}
		ci, ok := t.classes[name]
		if !ok {
			return
		}
		var base *ClassInfo
		if ci.Extends != "" {
			layout(ci.Extends)
			base = t.classes[ci.Extends]
		}
		ci.layoutFields(base)
		done[name] = true
	}
	for _, name := range t.classOrder {
		layout(name)
	}
}

// AssignMemoryAddresses assigns a data label to every global variable, in
// declaration order, of the form "mem_<N>": a monotonic counter starting at
// 0 and advanced by one per variable, matching the original implementation's
// allocate_memory_address.
func (t *Table) AssignMemoryAddresses() {
	addr := 0
	for _, name := range t.globalOrder {
		b, _ := t.globals.Get(name)
		b.Label = fmt.Sprintf("mem_%d", addr)
		addr++
	}
}

// AssignFunctionLabels assigns an assembly entry-point label to every
// function and method: "func_<name>" for top-level functions, matching the
// original implementation's assign_function_labels; methods and
// constructors need a class-qualified label to stay unique across classes,
// so they get "m_<class>_<name>" and "ctor_<class>" respectively.
func (t *Table) AssignFunctionLabels() {
	for _, key := range t.funcOrder {
		fi, _ := t.funcs.Get(key)
		switch {
		case fi.IsCtor:
			fi.Label = "ctor_" + fi.OwnerClass
		case fi.IsMethod:
			fi.Label = "m_" + fi.OwnerClass + "_" + fi.Name
		default:
			fi.Label = "func_" + fi.Name
		}
		if fi.IsMethod {
			if ci, ok := t.classes[fi.OwnerClass]; ok {
				ci.Methods[fi.Name] = fi
			}
		}
	}
}

// RegisterMethodStub pre-declares a method's FunctionInfo on its class
// before the method body is analyzed, so that calls appearing earlier in
// the same class (or in a sibling method) can resolve it. EnterFunction
// reuses the stub, so it is the same FunctionInfo that LeaveFunction later
// lays out.
func (t *Table) RegisterMethodStub(class *ClassInfo, name string, ret types.Type) *FunctionInfo {
	fi := newFunctionInfo(name)
	fi.OwnerClass, fi.IsMethod, fi.RetType = class.Name, true, ret
	class.Methods[name] = fi
	return fi
}

// GenerateLabel mints a fresh, globally unique label of the form "L<N>",
// used for control-flow targets in the TAC and MIPS backends.
func (t *Table) GenerateLabel() string {
	lbl := fmt.Sprintf("L%d", t.labelNum)
	t.labelNum++
	return lbl
}

// DumpGlobals returns every global binding sorted by name, for
// deterministic golden-file output.
func (t *Table) DumpGlobals() []*Binding {
	names := maps.Keys(globalsAsMap(t.globals))
	sort.Strings(names)
	out := make([]*Binding, 0, len(names))
	for _, n := range names {
		b, _ := t.globals.Get(n)
		out = append(out, b)
	}
	return out
}

// DumpFunctions returns every top-level function and method, sorted by
// registry key, for deterministic golden-file output.
func (t *Table) DumpFunctions() []*FunctionInfo {
	keys := append([]string(nil), t.funcOrder...)
	sort.Strings(keys)
	out := make([]*FunctionInfo, 0, len(keys))
	for _, k := range keys {
		fi, _ := t.funcs.Get(k)
		out = append(out, fi)
	}
	return out
}

// globalsAsMap copies the swiss-backed global table into a plain Go map
// just for golang.org/x/exp/maps.Keys, which DumpGlobals uses to produce a
// stable sort order for diagnostics and golden-file tests.
func globalsAsMap(m *swiss.Map[string, *Binding]) map[string]*Binding {
	out := make(map[string]*Binding, m.Count())
	m.Iter(func(k string, v *Binding) bool {
		out[k] = v
		return false
	})
	return out
}
