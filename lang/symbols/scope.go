package symbols

// block is a single lexical block's name-to-binding map. Scopes nest: a
// block scope inside a function scope inside the global scope.
type block struct {
	bindings map[string]*Binding
	isFunc   bool // true for the outermost block of a function body
}

func newBlock(isFunc bool) *block {
	return &block{bindings: make(map[string]*Binding), isFunc: isFunc}
}

// ScopeStack implements lexical name resolution: push a block on entering a
// brace-delimited scope, declare bindings into the innermost block, and
// resolve names by walking outward. It does not itself decide Cell vs
// Local: Table.Resolve marks a binding Cell as soon as a lookup reaches it
// across a function boundary, and Table.LeaveFunction makes the remaining
// ones Local when it lays out the frame.
type ScopeStack struct {
	blocks []*block
}

// NewScopeStack returns a stack with a single global block.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{blocks: []*block{newBlock(false)}}
}

// PushBlock enters a new nested scope that is not a function boundary (an
// if/while/for/switch/try body, or a plain brace block).
func (s *ScopeStack) PushBlock() { s.blocks = append(s.blocks, newBlock(false)) }

// PushFunction enters a new function body's outermost scope.
func (s *ScopeStack) PushFunction() { s.blocks = append(s.blocks, newBlock(true)) }

// Pop leaves the innermost scope.
func (s *ScopeStack) Pop() { s.blocks = s.blocks[:len(s.blocks)-1] }

// Depth returns the number of currently nested scopes, including the
// global one.
func (s *ScopeStack) Depth() int { return len(s.blocks) }

// AtGlobalScope reports whether the innermost scope is the single global
// block (depth 1).
func (s *ScopeStack) AtGlobalScope() bool { return len(s.blocks) == 1 }

// Declare adds b to the innermost scope under b.Name. It returns false,
// without modifying the scope, if a binding with the same name already
// exists directly in that scope (shadowing an outer scope's binding is
// allowed; redeclaring in the same scope is not).
func (s *ScopeStack) Declare(b *Binding) bool {
	cur := s.blocks[len(s.blocks)-1]
	if _, exists := cur.bindings[b.Name]; exists {
		return false
	}
	cur.bindings[b.Name] = b
	return true
}

// Resolve looks up name starting at the innermost scope and walking
// outward, returning the binding and the number of function boundaries
// crossed to reach it (0 if found within the current function, or at
// global scope while already inside a function and the name is global).
func (s *ScopeStack) Resolve(name string) (b *Binding, funcBoundariesCrossed int) {
	crossed := 0
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if bnd, ok := s.blocks[i].bindings[name]; ok {
			if i == 0 {
				return bnd, 0
			}
			return bnd, crossed
		}
		if s.blocks[i].isFunc && i > 0 {
			crossed++
		}
	}
	return nil, 0
}

// ResolveLocal looks up name only within the current function's scopes
// (stopping at, and including, the nearest function boundary block). It
// does not see outer functions' locals or the global scope.
func (s *ScopeStack) ResolveLocal(name string) *Binding {
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if bnd, ok := s.blocks[i].bindings[name]; ok {
			return bnd
		}
		if s.blocks[i].isFunc {
			break
		}
	}
	return nil
}
