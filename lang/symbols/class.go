package symbols

import "github.com/compiscript-lang/compiscript/lang/types"

// ClassInfo records a declared class's layout: the fields declared on the
// class itself (ancestor fields are not copied in; Table.ResolveField walks
// the ancestor chain), its declared methods, and its instance size.
type ClassInfo struct {
	Name        string
	Extends     string // empty if there is no base class
	Fields      []*Binding
	fieldByName map[string]*Binding
	Methods     map[string]*FunctionInfo // method name -> info, this class only
	Size        int                      // instance size in bytes, including any base fields
}

func newClassInfo(name, extends string) *ClassInfo {
	return &ClassInfo{
		Name: name, Extends: extends,
		fieldByName: make(map[string]*Binding),
		Methods:     make(map[string]*FunctionInfo),
	}
}

// Field looks up a field declared directly on this class (not its
// ancestors); Table.ResolveField walks the ancestor chain.
func (c *ClassInfo) Field(name string) (*Binding, bool) {
	b, ok := c.fieldByName[name]
	return b, ok
}

// addField appends a field declaration; its byte offset is assigned later,
// by layoutFields.
func (c *ClassInfo) addField(name string, typ types.Type) *Binding {
	b := &Binding{Name: name, Type: typ, Scope: Field}
	c.Fields = append(c.Fields, b)
	c.fieldByName[name] = b
	return b
}

// layoutFields assigns FieldOffset to every field, base class fields first
// (if base is non-nil), and computes Size.
func (c *ClassInfo) layoutFields(base *ClassInfo) {
	offset := 0
	if base != nil {
		offset = base.Size
	}
	for _, f := range c.Fields {
		f.FieldOffset = offset
		offset += fieldSize(f)
	}
	if rem := offset % 4; rem != 0 {
		offset += 4 - rem
	}
	c.Size = offset
}

func fieldSize(b *Binding) int {
	if sz := b.Type.Kind().Size(); sz > 0 {
		return sz
	}
	return 4
}
