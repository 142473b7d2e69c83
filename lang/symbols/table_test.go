package symbols_test

import (
	"testing"

	"github.com/compiscript-lang/compiscript/lang/symbols"
	"github.com/compiscript-lang/compiscript/lang/types"
	"github.com/stretchr/testify/require"
)

func TestDeclareAndResolveGlobal(t *testing.T) {
	tab := symbols.NewTable()
	b, ok := tab.DeclareVar("x", types.TInteger, false, 0)
	require.True(t, ok)
	require.Equal(t, symbols.Global, b.Scope)

	_, dup := tab.DeclareVar("x", types.TInteger, false, 0)
	require.False(t, dup)

	got, ok := tab.Resolve("x")
	require.True(t, ok)
	require.Same(t, b, got)
}

func TestFunctionFrameLayout(t *testing.T) {
	tab := symbols.NewTable()
	fi := tab.EnterFunction("add", "", false, false, types.TInteger)
	tab.DeclareParam("a", types.TInteger, 0)
	tab.DeclareParam("b", types.TInteger, 0)
	tab.DeclareVar("sum", types.TInteger, false, 0)
	done := tab.LeaveFunction()
	require.Same(t, fi, done)

	require.Len(t, done.Params, 2)
	require.Equal(t, -16, done.Params[0].FrameOffset)
	require.Equal(t, -20, done.Params[1].FrameOffset)
	require.Len(t, done.Locals, 1)
	require.Equal(t, 16, done.Locals[0].FrameOffset)
}

func TestClosureCaptureMarksCell(t *testing.T) {
	tab := symbols.NewTable()
	tab.EnterFunction("outer", "", false, false, types.TVoid)
	b, _ := tab.DeclareVar("counter", types.TInteger, false, 0)
	require.Equal(t, symbols.Undefined, b.Scope)

	inner := tab.EnterFunction("inner", "", false, false, types.TVoid)
	got, ok := tab.Resolve("counter")
	require.True(t, ok)
	require.Equal(t, symbols.Cell, got.Scope)
	require.Contains(t, got.CapturedBy, inner.Key())
	tab.LeaveFunction()
	tab.LeaveFunction()
}

func TestClassInheritanceAndFieldLookup(t *testing.T) {
	tab := symbols.NewTable()
	animal, ok := tab.DeclareClass("Animal", "")
	require.True(t, ok)
	tab.DeclareField(animal, "name", types.TString)

	dog, ok := tab.DeclareClass("Dog", "Animal")
	require.True(t, ok)
	tab.DeclareField(dog, "breed", types.TString)

	tab.LayoutClasses()
	require.True(t, tab.IsSubclass("Dog", "Animal"))
	require.False(t, tab.IsSubclass("Animal", "Dog"))

	b, owner, ok := tab.ResolveField(dog, "name")
	require.True(t, ok)
	require.Equal(t, "Animal", owner.Name)
	require.Equal(t, 0, b.FieldOffset)

	breedField, _ := dog.Field("breed")
	require.Equal(t, animal.Size, breedField.FieldOffset)
}

func TestGenerateLabelIsUnique(t *testing.T) {
	tab := symbols.NewTable()
	require.Equal(t, "L0", tab.GenerateLabel())
	require.Equal(t, "L1", tab.GenerateLabel())
}

func TestAssignAddressesAndLabels(t *testing.T) {
	tab := symbols.NewTable()
	tab.DeclareVar("x", types.TInteger, false, 0)
	tab.EnterFunction("main", "", false, false, types.TVoid)
	tab.LeaveFunction()

	tab.AssignMemoryAddresses()
	tab.AssignFunctionLabels()

	globals := tab.DumpGlobals()
	require.Len(t, globals, 1)
	require.Equal(t, "mem_0", globals[0].Label)

	fi, ok := tab.LookupFunction("main")
	require.True(t, ok)
	require.Equal(t, "func_main", fi.Label)
}
