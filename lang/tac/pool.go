package tac

import "fmt"

// tempPool is the free-list of synthetic operand names described in §4.6:
// acquire returns a previously released temporary if one is free, else
// mints a new "t<N>"; release returns a temporary to the free list so a
// later acquire can reuse it instead of minting a fresh name. This is what
// keeps a long chain of arithmetic ("1+2+3+4+5") down to a single live
// temporary.
type tempPool struct {
	free    []string
	counter int
}

// acquire returns a fresh temporary Operand, reusing a released name when
// one is available.
func (p *tempPool) acquire() Operand {
	if n := len(p.free); n > 0 {
		name := p.free[n-1]
		p.free = p.free[:n-1]
		return Temp(name)
	}
	name := fmt.Sprintf("t%d", p.counter)
	p.counter++
	return Temp(name)
}

// release returns o to the free list iff it names a temporary; releasing a
// non-temporary operand (a variable, literal or label) is a silent no-op,
// matching §4.6's "release(name) pushes back iff name starts with t".
func (p *tempPool) release(o Operand) {
	if o.IsTemp() {
		p.free = append(p.free, o.Name)
	}
}
