// Package symbols implements name resolution's scope stack and the symbol
// table: bindings, function frame layout, and class layout, shared by the
// semantic analyzer (lang/analyzer) and the TAC/MIPS backends (lang/tac,
// lang/mipsgen), which need the addresses and labels this package assigns.
package symbols

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/compiscript-lang/compiscript/lang/types"
)

// BindingScope classifies where a name lives, mirroring the lexical-scope
// classification a closure-aware resolver needs: a name captured by a
// nested function (Cell) is treated differently at codegen time than one
// that is purely Local to its own function.
type BindingScope uint8

// List of supported binding scopes.
const (
	Undefined BindingScope = iota
	Global                 // top-level variable, addressed by label
	Local                  // local to its function, lives in the frame
	Parameter              // a function parameter, lives in the frame
	Cell                   // local but captured by a nested function
	Free                   // free variable: a Cell of some enclosing function
	Field                  // a class field, addressed via the instance pointer
)

var scopeNames = [...]string{
	Undefined: "undefined",
	Global:    "global",
	Local:     "local",
	Parameter: "parameter",
	Cell:      "cell",
	Free:      "free",
	Field:     "field",
}

func (s BindingScope) String() string {
	if int(s) >= len(scopeNames) {
		return fmt.Sprintf("<invalid BindingScope %d>", s)
	}
	return scopeNames[s]
}

// Binding records everything the rest of the pipeline needs to know about a
// declared name: its type, whether it is reassignable, and where it lives
// at runtime.
type Binding struct {
	Name    string
	Type    types.Type
	IsConst bool
	DeclPos token.Pos
	Scope   BindingScope

	// FrameOffset is the byte offset from the frame pointer for Local,
	// Parameter, Cell and Free bindings, assigned by FunctionInfo.Layout.
	FrameOffset int

	// Label is the data label for Global bindings, assigned by
	// Table.AssignMemoryAddresses.
	Label string

	// FieldOffset is the byte offset from the instance base pointer for
	// Field bindings, assigned by ClassInfo.layoutFields.
	FieldOffset int

	// CapturedBy records, for a Cell binding, the registry keys (see
	// FunctionInfo.Key) of the nested functions that close over it. The TAC
	// generator does not read it.
	CapturedBy []string
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s:%s(%s)", b.Name, b.Type, b.Scope)
}
