package symbols

import "github.com/compiscript-lang/compiscript/lang/types"

// FunctionInfo records the static information the TAC/MIPS backends need
// about a declared function or method: its frame layout, its label, and
// its locals/params/free-variable bindings.
type FunctionInfo struct {
	Name       string
	OwnerClass string // non-empty for methods
	IsMethod   bool
	IsCtor     bool
	Params     []*Binding
	Locals     []*Binding // includes Cell-scope locals
	FreeVars   []*Binding // Free-scope bindings captured from an enclosing function
	RetType    types.Type
	Label      string // assembly entry-point label, e.g. "func_main" or "m_Dog_bark"
	Layout     *FrameLayout
}

// Key returns the registry key used by Table's function map: the bare name
// for top-level functions, "Class.method" for methods.
func (f *FunctionInfo) Key() string {
	if f.IsMethod {
		return f.OwnerClass + "." + f.Name
	}
	return f.Name
}

func newFunctionInfo(name string) *FunctionInfo {
	return &FunctionInfo{Name: name, Layout: NewFrameLayout()}
}
