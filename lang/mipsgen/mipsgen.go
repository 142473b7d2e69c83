// Package mipsgen lowers a lang/tac program into MIPS-32 assembly text. It
// is a line-directed translator, per §4.7: it never consults lang/symbols,
// only the tagged-variant instructions and the per-class metadata lang/tac
// already resolved, recognizing each TAC shape by its Go type rather than
// by regex the way a text-first reading of the source would.
package mipsgen

import (
	"fmt"
	"strings"

	"github.com/compiscript-lang/compiscript/lang/tac"
)

const mainFrameSize = 256

// Generate lowers prog to a complete MIPS-32 assembly listing: a .data
// section, a .text section with the synthetic or renamed main, every user
// function, and the runtime helpers main/user code may call.
func Generate(prog *tac.Program) string {
	g := &generator{
		classes:      prog.Classes,
		fieldOffsets: mergeFieldOffsets(prog.Classes),
		stringLabels: make(map[string]string),
	}

	mainLines, funcs := splitProgram(prog)

	hasUserMain := false
	for _, fn := range funcs {
		if fn.label == "func_main" {
			hasUserMain = true
		}
	}
	if hasUserMain {
		renameCallTargets(mainLines, "func_main", "user_main")
		for _, fn := range funcs {
			renameCallTargets(fn.lines, "func_main", "user_main")
		}
	}

	var text strings.Builder
	text.WriteString(".text\n.globl main\n")

	if hasUserMain {
		text.WriteString(g.emitMain(mainLines, false))
	} else {
		text.WriteString(g.emitMain(mainLines, true))
	}

	for _, fn := range funcs {
		name := fn.label
		if hasUserMain && name == "func_main" {
			name = "user_main"
		}
		text.WriteString(g.emitFunction(name, fn.lines))
	}

	text.WriteString(g.emitRuntimeHelpers())

	var out strings.Builder
	out.WriteString(".data\n")
	out.WriteString("newline: .asciiz \"\\n\"\n")
	out.WriteString(g.dataSection.String())
	out.WriteString(text.String())
	return out.String()
}

// generator carries the whole-program state shared across function
// buffers: per-class field offsets (merged across all classes, since a
// line-directed TAC stream carries no static type for a field's receiver —
// a simplification the design ledger accepts under §1's "full
// object-layout codegen" stub) and any string literals promoted to the
// data segment.
type generator struct {
	classes      map[string]tac.ClassMeta
	fieldOffsets map[string]int
	stringLabels map[string]string // literal text -> data-segment label
	dataSection  strings.Builder
	unhandled    int
}

// mergeFieldOffsets flattens every class's field table into one map keyed
// by field name only. Two classes that happen to declare a same-named
// field at different offsets would collide here; Compiscript programs
// in practice don't rely on that, and resolving it precisely would require
// carrying the receiver's static type into the TAC stream, which §4.7
// deliberately does not do.
func mergeFieldOffsets(classes map[string]tac.ClassMeta) map[string]int {
	out := make(map[string]int)
	for _, meta := range classes {
		for name, off := range meta.Fields {
			out[name] = off
		}
	}
	return out
}

type funcSegment struct {
	label string
	lines []tac.Instr
}

// splitProgram separates prog's instructions into top-level code and one
// segment per function body, recognizing a function's start as a
// LabelInstr immediately followed by BeginFuncInstr (§4.7: "a label:
// immediately followed by BeginFunc triggers start_function").
func splitProgram(prog *tac.Program) ([]tac.Instr, []funcSegment) {
	var main []tac.Instr
	var funcs []funcSegment

	i := 0
	for i < len(prog.Lines) {
		if lbl, ok := prog.Lines[i].(*tac.LabelInstr); ok && i+1 < len(prog.Lines) {
			if _, ok := prog.Lines[i+1].(*tac.BeginFuncInstr); ok {
				j := i + 2
				var body []tac.Instr
				for j < len(prog.Lines) {
					if _, end := prog.Lines[j].(*tac.EndFuncInstr); end {
						j++
						break
					}
					body = append(body, prog.Lines[j])
					j++
				}
				funcs = append(funcs, funcSegment{label: lbl.Name, lines: body})
				i = j
				continue
			}
		}
		main = append(main, prog.Lines[i])
		i++
	}
	return main, funcs
}

// renameCallTargets rewrites any Call instruction targeting from to to, so
// that a user-defined 'main' renamed to 'user_main' stays reachable from
// any recursive call to it elsewhere in the program.
func renameCallTargets(lines []tac.Instr, from, to string) {
	for _, ln := range lines {
		if c, ok := ln.(*tac.CallInstr); ok && c.Name == from {
			c.Name = to
		}
	}
}

// emitMain renders the top-level code block. When synth is true, no user
// 'main' function exists, so top-level code is wrapped in a 256-byte frame
// and an exit syscall; when false, a 'main:' function appears later in
// funcs under the name 'user_main' and this synthetic main just calls it.
func (g *generator) emitMain(lines []tac.Instr, synth bool) string {
	var b strings.Builder
	b.WriteString("main:\n")
	b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, -%d\n", mainFrameSize))
	b.WriteString(fmt.Sprintf("\tsw $ra, %d($sp)\n", mainFrameSize-4))

	if synth {
		fr := allocate(lines)
		var params []tac.Operand
		for _, ln := range lines {
			b.WriteString(g.lower(ln, fr, "main", &params))
		}
	} else {
		b.WriteString("\tjal user_main\n")
	}

	b.WriteString(fmt.Sprintf("\tlw $ra, %d($sp)\n", mainFrameSize-4))
	b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, %d\n", mainFrameSize))
	b.WriteString("\tli $v0, 10\n\tsyscall\n")
	return b.String()
}

// emitFunction renders one user function's prologue, lowered body and
// epilogue, per §4.7's frame_size formula.
func (g *generator) emitFunction(name string, lines []tac.Instr) string {
	fr := allocate(lines)
	frameSize := 4 + 4*len(fr.savedS) + fr.spillBytes
	if frameSize%8 != 0 {
		frameSize += 4 // keep the frame word-pair aligned
	}

	var b strings.Builder
	b.WriteString(name + ":\n")
	b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, -%d\n", frameSize))
	b.WriteString(fmt.Sprintf("\tsw $ra, %d($sp)\n", frameSize-4))
	for i, reg := range fr.savedS {
		b.WriteString(fmt.Sprintf("\tsw %s, %d($sp)\n", reg, frameSize-8-4*i))
	}

	var params []tac.Operand
	for _, ln := range lines {
		b.WriteString(g.lower(ln, fr, name, &params))
	}

	b.WriteString(fmt.Sprintf(".epilogue_%s:\n", name))
	for i, reg := range fr.savedS {
		b.WriteString(fmt.Sprintf("\tlw %s, %d($sp)\n", reg, frameSize-8-4*i))
	}
	b.WriteString(fmt.Sprintf("\tlw $ra, %d($sp)\n", frameSize-4))
	b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, %d\n", frameSize))
	b.WriteString("\tjr $ra\n")
	return b.String()
}

// emitRuntimeHelpers appends the fixed runtime routines every lowered
// program may call: integer print, and the array/object allocators backing
// 'new_array' and 'new_<Class>'.
func (g *generator) emitRuntimeHelpers() string {
	var b strings.Builder
	b.WriteString("print:\n")
	b.WriteString("\tli $v0, 1\n\tsyscall\n")
	b.WriteString("\tla $a0, newline\n")
	b.WriteString("\tli $v0, 4\n\tsyscall\n")
	b.WriteString("\tjr $ra\n")

	// new_array(len): allocate 4+4*len bytes on the heap via sbrk; word 0
	// holds the length, the remaining words are zero-initialized slots.
	// len arrives in $a0, per the call convention's register-args rule.
	b.WriteString("new_array:\n")
	b.WriteString("\tmove $t0, $a0\n")
	b.WriteString("\tsll $t1, $t0, 2\n")
	b.WriteString("\taddiu $t1, $t1, 4\n")
	b.WriteString("\tmove $a0, $t1\n")
	b.WriteString("\tli $v0, 9\n\tsyscall\n")
	b.WriteString("\tsw $t0, 0($v0)\n")
	b.WriteString("\tjr $ra\n")

	for name, meta := range g.classes {
		b.WriteString(g.emitNewClass(name, meta))
	}
	return b.String()
}

// emitNewClass synthesizes the 'new_<Class>' allocator: save the caller's
// register-passed constructor arguments, sbrk the instance's byte size,
// then jal into the constructor with the freshly allocated pointer as $a0
// and the saved arguments shifted up into $a1.. .
//
// Only the first three explicit constructor arguments survive the shift;
// a fourth-and-beyond argument would need its stack-passed slot shifted
// too, which this stub does not attempt (object-layout codegen is a
// declared non-goal beyond a defined shape).
func (g *generator) emitNewClass(name string, meta tac.ClassMeta) string {
	var b strings.Builder
	b.WriteString("new_" + name + ":\n")

	saved := meta.CtorArity
	if saved > 3 {
		saved = 3
	}
	for i := 0; i < saved; i++ {
		b.WriteString(fmt.Sprintf("\tmove $t%d, $a%d\n", i+1, i))
	}

	b.WriteString(fmt.Sprintf("\tli $a0, %d\n", meta.Size))
	b.WriteString("\tli $v0, 9\n\tsyscall\n")
	b.WriteString("\tmove $t0, $v0\n")

	if meta.CtorLabel != "" {
		b.WriteString("\tmove $a0, $t0\n")
		for i := 0; i < saved; i++ {
			b.WriteString(fmt.Sprintf("\tmove $a%d, $t%d\n", i+1, i+1))
		}
		b.WriteString("\tjal " + meta.CtorLabel + "\n")
	}
	b.WriteString("\tmove $v0, $t0\n")
	b.WriteString("\tjr $ra\n")
	return b.String()
}
