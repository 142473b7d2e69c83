// Package types implements the Compiscript type lattice: primitive types,
// array and class types, the assignability relation, and the promotion and
// comparison rules used by the semantic analyzer.
package types

import "fmt"

// Kind distinguishes the shape of a Type.
type Kind uint8

// List of supported type kinds.
const (
	Invalid Kind = iota
	Integer
	Boolean
	Float
	String
	Void
	Null
	Unknown // unresolved placeholder, must not survive a well-typed program
	Array
	Class
)

var kindNames = [...]string{
	Invalid: "<invalid>",
	Integer: "integer",
	Boolean: "boolean",
	Float:   "float",
	String:  "string",
	Void:    "void",
	Null:    "null",
	Unknown: "unknown",
	Array:   "array",
	Class:   "class",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("<invalid Kind %d>", k)
	}
	return kindNames[k]
}

// Size in bytes of a value of the given primitive kind, per the frame layout
// rules: integer=4, boolean=1, float=8, string/array/class=8 (reference).
func (k Kind) Size() int {
	switch k {
	case Integer:
		return 4
	case Boolean:
		return 1
	case Float:
		return 8
	case String, Array, Class:
		return 8
	default:
		return 0
	}
}

// Type is an immutable description of a Compiscript static type. The zero
// Type is Invalid and should never appear on a type-annotated node in a
// well-formed, error-free program.
type Type struct {
	kind  Kind
	elem  *Type  // set iff kind == Array
	class string // set iff kind == Class
}

var (
	TInteger = Type{kind: Integer}
	TBoolean = Type{kind: Boolean}
	TFloat   = Type{kind: Float}
	TString  = Type{kind: String}
	TVoid    = Type{kind: Void}
	TNull    = Type{kind: Null}
	TUnknown = Type{kind: Unknown}
)

// NewArray returns the array(elem) type.
func NewArray(elem Type) Type { return Type{kind: Array, elem: &elem} }

// NewClass returns the class(name) type.
func NewClass(name string) Type { return Type{kind: Class, class: name} }

// Kind returns the receiver's kind.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the element type of an array type. Panics if t is not an
// array type.
func (t Type) Elem() Type {
	if t.kind != Array {
		panic("types: Elem called on non-array type")
	}
	return *t.elem
}

// ClassName returns the class name of a class type. Panics if t is not a
// class type.
func (t Type) ClassName() string {
	if t.kind != Class {
		panic("types: ClassName called on non-class type")
	}
	return t.class
}

func (t Type) IsNumeric() bool { return t.kind == Integer || t.kind == Float }
func (t Type) IsUnknown() bool { return t.kind == Unknown }
func (t Type) IsArray() bool   { return t.kind == Array }
func (t Type) IsClass() bool   { return t.kind == Class }
func (t Type) IsReference() bool {
	return t.kind == Array || t.kind == Class || t.kind == String
}

func (t Type) String() string {
	switch t.kind {
	case Array:
		return fmt.Sprintf("array<%s>", t.elem)
	case Class:
		return t.class
	default:
		return t.kind.String()
	}
}

// TypeEquals reports whether a and b denote the same type, structurally for
// arrays and nominally for classes. Unknown is only equal to itself under
// this relation; assignability (below) is the permissive relation.
func TypeEquals(a, b Type) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Array:
		return TypeEquals(*a.elem, *b.elem)
	case Class:
		return a.class == b.class
	default:
		return true
	}
}

// Promote returns the result type of applying a numeric arithmetic operator
// (* / % or binary -) to operands of type a and b: float if either operand
// is float, else integer. Both operands must be numeric; callers are
// expected to have checked this first.
func Promote(a, b Type) Type {
	if a.kind == Float || b.kind == Float {
		return TFloat
	}
	return TInteger
}

// IsAssignable reports whether a value of type src may be assigned (via
// initialization, assignment, argument passing, or return) to a location of
// type dst, per the §4.1 assignability rules:
//   - identity on primitives
//   - covariant on array element types
//   - derived-to-base substitutability on class types, given a lookup of the
//     extends chain via isSubclass
//   - null is assignable to references (array/class/string) but not to
//     primitives
//   - unknown is permissive on either side
//
// The stricter reading of the two drafts in §9 is followed for array
// covariance: array(unknown) is rejected as a source into a concretely
// typed array target, unless the target itself is array(unknown).
func IsAssignable(dst, src Type, isSubclass func(derived, base string) bool) bool {
	if dst.kind == Unknown || src.kind == Unknown {
		return true
	}
	if src.kind == Null {
		return dst.IsReference()
	}
	if dst.kind == Array && src.kind == Array {
		if src.elem.kind == Unknown {
			return dst.elem.kind == Unknown
		}
		return IsAssignable(*dst.elem, *src.elem, isSubclass)
	}
	if dst.kind == Class && src.kind == Class {
		if dst.class == src.class {
			return true
		}
		return isSubclass != nil && isSubclass(src.class, dst.class)
	}
	return TypeEquals(dst, src)
}

// AreEqComparable reports whether two operands of type a and b may be
// compared with == or !=: same type, or both numeric.
func AreEqComparable(a, b Type) bool {
	if a.kind == Unknown || b.kind == Unknown {
		return true
	}
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	return TypeEquals(a, b)
}

// ArrayLiteralType computes the type of an array literal given the types of
// its elements in source order. An empty literal has type array(unknown),
// matching the original implementation. ok is false if a later element's
// type is inconsistent with the first (the caller should report
// "inconsistent array element types" and use array(unknown) as the result).
func ArrayLiteralType(elems []Type) (t Type, ok bool) {
	if len(elems) == 0 {
		return NewArray(TUnknown), true
	}
	first := elems[0]
	for _, e := range elems[1:] {
		if !TypeEquals(first, e) {
			return NewArray(TUnknown), false
		}
	}
	return NewArray(first), true
}
