package mipsgen

import (
	"fmt"

	"github.com/compiscript-lang/compiscript/lang/tac"
	"golang.org/x/exp/slices"
)

// numTempRegs is 8: TAC temporaries t0..t7 map straight onto $t0..$t7.
// $t8/$t9 are reserved as lowering.go's fixed scratch registers for operand
// loads and binary-op intermediates, so a temp can never alias one of them.
const numTempRegs = 8

// location is where a single-function-scoped name lives for the duration
// of its frame.
type location struct {
	reg     string
	spilled bool
	offset  int // byte offset, -offset($sp), valid iff spilled
}

// frame is the per-function register-allocation state described by
// §4.7's local_map: a location for every variable and overflow
// temporary, plus the callee-saved $s registers that need saving in the
// prologue.
type frame struct {
	locs       map[string]location
	savedS     []string
	spillBytes int
}

// allocate scans body once and assigns every referenced name a location:
// temporaries t0..t7 map straight onto $t0..$t7; anything beyond that
// (an unusually deep expression, since $t8/$t9 stay reserved as scratch)
// spills, like every other variable past the eight callee-saved slots.
func allocate(body []tac.Instr) *frame {
	fr := &frame{locs: make(map[string]location)}
	sUsed := 0
	spillSlots := 0

	assign := func(name string, isTemp bool, tempIdx int) {
		if _, ok := fr.locs[name]; ok {
			return
		}
		if isTemp && tempIdx < numTempRegs {
			fr.locs[name] = location{reg: fmt.Sprintf("$t%d", tempIdx)}
			return
		}
		if !isTemp && sUsed < 8 {
			reg := fmt.Sprintf("$s%d", sUsed)
			fr.locs[name] = location{reg: reg}
			fr.savedS = append(fr.savedS, reg)
			sUsed++
			return
		}
		off := spillSlots * 4
		spillSlots++
		fr.locs[name] = location{spilled: true, offset: off}
	}

	visit := func(o tac.Operand) {
		switch o.Kind {
		case tac.OperandTemp:
			assign(o.Name, true, tempIndex(o.Name))
		case tac.OperandVar:
			assign(o.Name, false, 0)
		}
	}

	for _, ln := range body {
		switch i := ln.(type) {
		case *tac.AssignInstr:
			visit(i.Target)
			visit(i.Source)
		case *tac.BinaryOpInstr:
			visit(i.Target)
			visit(i.Left)
			visit(i.Right)
		case *tac.UnaryOpInstr:
			visit(i.Target)
			visit(i.Source)
		case *tac.StoreFieldInstr:
			visit(i.Base)
			visit(i.Value)
		case *tac.StoreIndexInstr:
			visit(i.Base)
			visit(i.Index)
			visit(i.Value)
		case *tac.CondJumpInstr:
			visit(i.Cond)
		case *tac.ParamInstr:
			visit(i.Value)
		case *tac.CallInstr:
			visit(i.Target)
		case *tac.ReturnInstr:
			visit(i.Value)
		}
	}

	slices.Sort(fr.savedS)
	fr.spillBytes = spillSlots * 4
	return fr
}

// tempIndex extracts N from a temporary named "tN"; malformed names (never
// produced by lang/tac) fall past numTempRegs and spill instead of
// panicking.
func tempIndex(name string) int {
	if len(name) < 2 || name[0] != 't' {
		return numTempRegs
	}
	n := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return numTempRegs
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func (fr *frame) resolve(name string) location {
	if loc, ok := fr.locs[name]; ok {
		return loc
	}
	return location{reg: "$zero"}
}
