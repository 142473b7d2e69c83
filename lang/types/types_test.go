package types_test

import (
	"testing"

	"github.com/compiscript-lang/compiscript/lang/types"
	"github.com/stretchr/testify/require"
)

func classHierarchy(edges map[string]string) func(derived, base string) bool {
	return func(derived, base string) bool {
		for cur := derived; cur != ""; cur = edges[cur] {
			if cur == base {
				return true
			}
		}
		return false
	}
}

func TestIsAssignablePrimitives(t *testing.T) {
	sub := classHierarchy(nil)
	require.True(t, types.IsAssignable(types.TInteger, types.TInteger, sub))
	require.False(t, types.IsAssignable(types.TInteger, types.TBoolean, sub))
	require.False(t, types.IsAssignable(types.TInteger, types.TNull, sub))
	require.True(t, types.IsAssignable(types.NewArray(types.TInteger), types.TNull, sub))
}

func TestIsAssignableUnknownIsPermissive(t *testing.T) {
	sub := classHierarchy(nil)
	require.True(t, types.IsAssignable(types.TUnknown, types.TInteger, sub))
	require.True(t, types.IsAssignable(types.TInteger, types.TUnknown, sub))
}

func TestIsAssignableArrayCovariance(t *testing.T) {
	sub := classHierarchy(nil)
	require.True(t, types.IsAssignable(types.NewArray(types.TInteger), types.NewArray(types.TInteger), sub))
	// stricter reading of §9: array(unknown) source rejected into a concrete target
	require.False(t, types.IsAssignable(types.NewArray(types.TInteger), types.NewArray(types.TUnknown), sub))
	require.True(t, types.IsAssignable(types.NewArray(types.TUnknown), types.NewArray(types.TUnknown), sub))
}

func TestIsAssignableClassSubtype(t *testing.T) {
	sub := classHierarchy(map[string]string{"Dog": "Animal", "Animal": ""})
	require.True(t, types.IsAssignable(types.NewClass("Animal"), types.NewClass("Dog"), sub))
	require.False(t, types.IsAssignable(types.NewClass("Dog"), types.NewClass("Animal"), sub))
}

func TestPromote(t *testing.T) {
	require.Equal(t, types.TInteger, types.Promote(types.TInteger, types.TInteger))
	require.Equal(t, types.TFloat, types.Promote(types.TInteger, types.TFloat))
	require.Equal(t, types.TFloat, types.Promote(types.TFloat, types.TFloat))
}

func TestAreEqComparable(t *testing.T) {
	require.True(t, types.AreEqComparable(types.TInteger, types.TFloat))
	require.True(t, types.AreEqComparable(types.TString, types.TString))
	require.False(t, types.AreEqComparable(types.TString, types.TInteger))
}

func TestArrayLiteralType(t *testing.T) {
	elemT, ok := types.ArrayLiteralType(nil)
	require.True(t, ok)
	require.Equal(t, types.NewArray(types.TUnknown), elemT)

	elemT, ok = types.ArrayLiteralType([]types.Type{types.TInteger, types.TInteger})
	require.True(t, ok)
	require.Equal(t, types.NewArray(types.TInteger), elemT)

	elemT, ok = types.ArrayLiteralType([]types.Type{types.TInteger, types.TString})
	require.False(t, ok)
	require.Equal(t, types.NewArray(types.TUnknown), elemT)
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "integer", types.TInteger.String())
	require.Equal(t, "array<integer>", types.NewArray(types.TInteger).String())
	require.Equal(t, "Foo", types.NewClass("Foo").String())
}
