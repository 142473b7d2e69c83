package mipsgen

import (
	"fmt"
	"strings"

	"github.com/compiscript-lang/compiscript/lang/tac"
)

// lower translates one TAC instruction into its MIPS-32 rendering, per
// §4.7's per-opcode table. params accumulates operands pushed by ParamInstr
// since the last Call, mirroring "param x: push onto a caller-side ordered
// list".
func (g *generator) lower(instr tac.Instr, fr *frame, funcName string, params *[]tac.Operand) string {
	switch i := instr.(type) {
	case *tac.LabelInstr:
		return i.Name + ":\n"

	case *tac.JumpInstr:
		return "\tj " + i.Target + "\n"

	case *tac.CondJumpInstr:
		var b strings.Builder
		b.WriteString(g.loadOperand(i.Cond, "$t8", fr))
		b.WriteString(fmt.Sprintf("\tbeq $t8, $zero, %s\n", i.Target))
		return b.String()

	case *tac.AssignInstr:
		var b strings.Builder
		b.WriteString(g.loadOperand(i.Source, "$t8", fr))
		b.WriteString(g.storeOperand("$t8", i.Target, fr))
		return b.String()

	case *tac.UnaryOpInstr:
		return g.lowerUnary(i, fr)

	case *tac.BinaryOpInstr:
		return g.lowerBinary(i, fr)

	case *tac.StoreFieldInstr:
		var b strings.Builder
		b.WriteString(g.loadOperand(i.Base, "$t8", fr))
		b.WriteString(g.loadOperand(i.Value, "$t9", fr))
		off, ok := g.fieldOffsets[i.Field]
		if !ok {
			g.unhandled++
			return fmt.Sprintf("\t# unhandled: store to unknown field %q\n", i.Field)
		}
		b.WriteString(fmt.Sprintf("\tsw $t9, %d($t8)\n", off))
		return b.String()

	case *tac.StoreIndexInstr:
		// Only $t8/$t9 are reserved as scratch, so the address is computed
		// into $t8 first and the value loaded into $t9 last, rather than
		// holding all three of base/index/value live at once.
		var b strings.Builder
		b.WriteString(g.loadOperand(i.Index, "$t8", fr))
		b.WriteString("\tsll $t8, $t8, 2\n")
		b.WriteString("\taddiu $t8, $t8, 4\n")
		b.WriteString(g.loadOperand(i.Base, "$t9", fr))
		b.WriteString("\taddu $t8, $t9, $t8\n")
		b.WriteString(g.loadOperand(i.Value, "$t9", fr))
		b.WriteString("\tsw $t9, 0($t8)\n")
		return b.String()

	case *tac.ParamInstr:
		*params = append(*params, i.Value)
		return ""

	case *tac.CallInstr:
		return g.lowerCall(i, fr, params)

	case *tac.ReturnInstr:
		var b strings.Builder
		if i.Value.Valid() {
			b.WriteString(g.loadOperand(i.Value, "$v0", fr))
		}
		b.WriteString("\tj .epilogue_" + funcName + "\n")
		return b.String()

	case *tac.CommentInstr:
		g.unhandled++
		return "\t# unhandled: " + i.Text + "\n"

	case *tac.BeginFuncInstr, *tac.EndFuncInstr:
		return ""

	default:
		g.unhandled++
		return fmt.Sprintf("\t# unhandled: %s\n", instr.String())
	}
}

func (g *generator) lowerUnary(i *tac.UnaryOpInstr, fr *frame) string {
	var b strings.Builder
	b.WriteString(g.loadOperand(i.Source, "$t8", fr))
	switch i.Op {
	case "-":
		b.WriteString("\tsub $t8, $zero, $t8\n")
	case "!":
		b.WriteString("\tseq $t8, $t8, $zero\n")
	default:
		g.unhandled++
		b.WriteString(fmt.Sprintf("\t# unhandled: unary operator %q\n", i.Op))
	}
	b.WriteString(g.storeOperand("$t8", i.Target, fr))
	return b.String()
}

var binaryMnemonics = map[string]string{
	"+":  "add",
	"-":  "sub",
	"<":  "slt",
	">":  "sgt",
	"<=": "sle",
	">=": "sge",
	"==": "seq",
	"!=": "sne",
	"&&": "and",
	"||": "or",
}

func (g *generator) lowerBinary(i *tac.BinaryOpInstr, fr *frame) string {
	switch i.Op {
	case ".":
		return g.lowerFieldRead(i, fr)
	case "[]":
		return g.lowerIndexRead(i, fr)
	case "length":
		return g.lowerLengthRead(i, fr)
	}

	var b strings.Builder
	b.WriteString(g.loadOperand(i.Left, "$t8", fr))
	b.WriteString(g.loadOperand(i.Right, "$t9", fr))

	switch i.Op {
	case "*":
		b.WriteString("\tmul $t8, $t8, $t9\n")
	case "/":
		b.WriteString("\tdiv $t8, $t9\n\tmflo $t8\n")
	case "%":
		b.WriteString("\tdiv $t8, $t9\n\tmfhi $t8\n")
	default:
		mnemonic, ok := binaryMnemonics[i.Op]
		if !ok {
			g.unhandled++
			b.WriteString(fmt.Sprintf("\t# unhandled: binary operator %q\n", i.Op))
			mnemonic = "add"
		}
		b.WriteString(fmt.Sprintf("\t%s $t8, $t8, $t9\n", mnemonic))
	}

	b.WriteString(g.storeOperand("$t8", i.Target, fr))
	return b.String()
}

// lowerFieldRead reads Base.Field, per the flattened field-offset table
// described on generator.fieldOffsets.
func (g *generator) lowerFieldRead(i *tac.BinaryOpInstr, fr *frame) string {
	var b strings.Builder
	b.WriteString(g.loadOperand(i.Left, "$t8", fr))
	off, ok := g.fieldOffsets[i.Right.Str]
	if !ok {
		g.unhandled++
		b.WriteString(fmt.Sprintf("\t# unhandled: read of unknown field %q\n", i.Right.Str))
		off = 0
	}
	b.WriteString(fmt.Sprintf("\tlw $t8, %d($t8)\n", off))
	b.WriteString(g.storeOperand("$t8", i.Target, fr))
	return b.String()
}

// lowerIndexRead reads Base[Index] out of the "length word then elements"
// array layout new_array allocates.
func (g *generator) lowerIndexRead(i *tac.BinaryOpInstr, fr *frame) string {
	var b strings.Builder
	b.WriteString(g.loadOperand(i.Left, "$t8", fr))
	b.WriteString(g.loadOperand(i.Right, "$t9", fr))
	b.WriteString("\tsll $t9, $t9, 2\n")
	b.WriteString("\taddiu $t9, $t9, 4\n")
	b.WriteString("\taddu $t8, $t8, $t9\n")
	b.WriteString("\tlw $t8, 0($t8)\n")
	b.WriteString(g.storeOperand("$t8", i.Target, fr))
	return b.String()
}

func (g *generator) lowerLengthRead(i *tac.BinaryOpInstr, fr *frame) string {
	var b strings.Builder
	b.WriteString(g.loadOperand(i.Left, "$t8", fr))
	b.WriteString("\tlw $t8, 0($t8)\n")
	b.WriteString(g.storeOperand("$t8", i.Target, fr))
	return b.String()
}

// lowerCall lowers '[dest =] call f, n' per §4.7: the first four
// accumulated params load into $a0..$a3, anything beyond that is pushed
// onto the stack (in increasing-index order, so the callee can still read
// argument k at a fixed positive offset), restored after the jal.
func (g *generator) lowerCall(i *tac.CallInstr, fr *frame, params *[]tac.Operand) string {
	args := *params
	*params = nil

	var b strings.Builder
	regArgs := args
	var stackArgs []tac.Operand
	if len(regArgs) > 4 {
		stackArgs = regArgs[4:]
		regArgs = regArgs[:4]
	}

	for idx, a := range regArgs {
		b.WriteString(g.loadOperand(a, fmt.Sprintf("$a%d", idx), fr))
	}

	extraBytes := 4 * len(stackArgs)
	if extraBytes > 0 {
		b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, -%d\n", extraBytes))
		for idx, a := range stackArgs {
			b.WriteString(g.loadOperand(a, "$t8", fr))
			b.WriteString(fmt.Sprintf("\tsw $t8, %d($sp)\n", idx*4))
		}
	}

	b.WriteString("\tjal " + i.Name + "\n")

	if extraBytes > 0 {
		b.WriteString(fmt.Sprintf("\taddiu $sp, $sp, %d\n", extraBytes))
	}

	if i.Target.Valid() {
		b.WriteString(g.storeOperand("$v0", i.Target, fr))
	}
	return b.String()
}

// loadOperand materializes o into reg. A literal or Label emits li/la; a
// resolved Var/Temp emits move or lw depending on its location, per
// §4.7's load_op.
func (g *generator) loadOperand(o tac.Operand, reg string, fr *frame) string {
	switch o.Kind {
	case tac.OperandInt:
		return fmt.Sprintf("\tli %s, %d\n", reg, o.Int)
	case tac.OperandBool:
		v := 0
		if o.Bool {
			v = 1
		}
		return fmt.Sprintf("\tli %s, %d\n", reg, v)
	case tac.OperandNull:
		return fmt.Sprintf("\tli %s, 0\n", reg)
	case tac.OperandFloat:
		// Floating-point MIPS lowering is a declared stub (§1): no coprocessor
		// registers are modeled, so a float operand degrades to its truncated
		// integer value.
		return fmt.Sprintf("\tli %s, %d\n", reg, int64(o.Float))
	case tac.OperandString:
		label := g.internString(o.Str)
		return fmt.Sprintf("\tla %s, %s\n", reg, label)
	case tac.OperandLabel:
		return fmt.Sprintf("\tla %s, %s\n", reg, o.Name)
	case tac.OperandVar, tac.OperandTemp:
		loc := fr.resolve(o.Name)
		if loc.spilled {
			return fmt.Sprintf("\tlw %s, -%d($sp)\n", reg, loc.offset)
		}
		if loc.reg == reg {
			return ""
		}
		return fmt.Sprintf("\tmove %s, %s\n", reg, loc.reg)
	default:
		g.unhandled++
		return fmt.Sprintf("\t# unhandled: load of invalid operand into %s\n", reg)
	}
}

// storeOperand mirrors loadOperand: it writes reg into dest's resolved
// location. dest must be a Var or Temp.
func (g *generator) storeOperand(reg string, dest tac.Operand, fr *frame) string {
	if dest.Kind != tac.OperandVar && dest.Kind != tac.OperandTemp {
		return ""
	}
	loc := fr.resolve(dest.Name)
	if loc.spilled {
		return fmt.Sprintf("\tsw %s, -%d($sp)\n", reg, loc.offset)
	}
	if loc.reg == reg {
		return ""
	}
	return fmt.Sprintf("\tmove %s, %s\n", loc.reg, reg)
}

// internString returns the data-segment label for s, minting and
// appending a new .asciiz entry the first time s is seen.
func (g *generator) internString(s string) string {
	if label, ok := g.stringLabels[s]; ok {
		return label
	}
	label := fmt.Sprintf("str_%d", len(g.stringLabels))
	g.stringLabels[s] = label
	g.dataSection.WriteString(fmt.Sprintf("%s: .asciiz %q\n", label, s))
	return label
}
