package tac_test

import (
	"testing"

	"github.com/compiscript-lang/compiscript/lang/analyzer"
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/tac"
	"github.com/stretchr/testify/require"
)

func mustGenerate(t *testing.T, src string) *tac.Program {
	t.Helper()
	pt, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	prog := ast.Build("t.cps", pt)
	res := analyzer.Analyze("t.cps", prog)
	require.NoError(t, res.Err)
	return tac.Generate(prog, res.Table, res.Types)
}

func distinctTemps(p *tac.Program) map[string]bool {
	seen := make(map[string]bool)
	mark := func(o tac.Operand) {
		if o.IsTemp() {
			seen[o.Name] = true
		}
	}
	for _, ln := range p.Lines {
		switch i := ln.(type) {
		case *tac.AssignInstr:
			mark(i.Target)
			mark(i.Source)
		case *tac.BinaryOpInstr:
			mark(i.Target)
			mark(i.Left)
			mark(i.Right)
		case *tac.UnaryOpInstr:
			mark(i.Target)
			mark(i.Source)
		case *tac.CallInstr:
			mark(i.Target)
		case *tac.ParamInstr:
			mark(i.Value)
		case *tac.ReturnInstr:
			mark(i.Value)
		case *tac.CondJumpInstr:
			mark(i.Cond)
		}
	}
	return seen
}

func TestChainedAdditionReusesOneTemp(t *testing.T) {
	prog := mustGenerate(t, `
let x: integer = 1 + 2 + 3 + 4 + 5;
`)
	temps := distinctTemps(prog)
	require.Len(t, temps, 1, "chained + should reuse a single temporary, got %v", temps)
}

func TestParenthesizedAdditionUsesAtMostTwoTemps(t *testing.T) {
	prog := mustGenerate(t, `
let x: integer = (1 + 2) + (3 + 4);
`)
	temps := distinctTemps(prog)
	require.LessOrEqual(t, len(temps), 2, "got %v", temps)
}

func TestModuloDoesNotReuseOperandTemp(t *testing.T) {
	// % is excluded from the destination-reuse rule, so a chain built purely
	// from % should still mint a fresh temporary for the outer operation.
	prog := mustGenerate(t, `
let x: integer = (1 % 2) % 3;
`)
	temps := distinctTemps(prog)
	require.GreaterOrEqual(t, len(temps), 2)
}

func labelNames(p *tac.Program) (defined []string, used []string) {
	for _, ln := range p.Lines {
		switch i := ln.(type) {
		case *tac.LabelInstr:
			defined = append(defined, i.Name)
		case *tac.JumpInstr:
			used = append(used, i.Target)
		case *tac.CondJumpInstr:
			used = append(used, i.Target)
		}
	}
	return defined, used
}

func TestLabelsAreUniqueAndJumpTargetsAreDefined(t *testing.T) {
	prog := mustGenerate(t, `
let i: integer = 0;
while (i < 10) {
	if (i == 5) {
		break;
	}
	i = i + 1;
}

function classify(n: integer): string {
	if (n < 0) {
		return "negative";
	} else {
		return "non-negative";
	}
}
`)
	defined, used := labelNames(prog)

	seen := make(map[string]bool)
	for _, l := range defined {
		require.False(t, seen[l], "label %q defined more than once", l)
		seen[l] = true
	}
	for _, l := range used {
		require.True(t, seen[l], "jump target %q has no matching label", l)
	}
}

func TestEveryCondJumpHasAnEvaluatedCondition(t *testing.T) {
	prog := mustGenerate(t, `
let i: integer = 0;
do {
	i = i + 1;
} while (i < 3);
`)
	var sawCond bool
	for _, ln := range prog.Lines {
		if cj, ok := ln.(*tac.CondJumpInstr); ok {
			require.True(t, cj.Cond.Valid(), "CondJump has an unset condition operand")
			sawCond = true
		}
	}
	require.True(t, sawCond, "expected at least one CondJump in a do-while lowering")
}

func TestDoWhileLoopsAgainWhileConditionHolds(t *testing.T) {
	// With the false-fires CondJump polarity, a do-while body must appear
	// once, unconditionally, after the loop's start label and before the
	// first condition test; a false condition jumps out of the loop, and a
	// true one falls through to the jump back to the start label.
	prog := mustGenerate(t, `
let i: integer = 0;
do {
	i = i + 1;
} while (i < 3);
`)
	var startLbl string
	var sawBodyBeforeCond bool
	for idx, ln := range prog.Lines {
		switch i := ln.(type) {
		case *tac.LabelInstr:
			if startLbl == "" {
				startLbl = i.Name
			}
		case *tac.AssignInstr:
			if startLbl != "" {
				sawBodyBeforeCond = true
			}
		case *tac.CondJumpInstr:
			require.True(t, sawBodyBeforeCond, "do-while body must run before its first condition check")
			require.NotEqual(t, startLbl, i.Target, "a false condition must leave the loop")
			require.Less(t, idx+1, len(prog.Lines), "CondJump must be followed by the back edge")
			back, ok := prog.Lines[idx+1].(*tac.JumpInstr)
			require.True(t, ok, "a true condition must fall through to a jump back to the loop start")
			require.Equal(t, startLbl, back.Target)
			return
		}
	}
	t.Fatal("expected a CondJump in a do-while lowering")
}

func TestFunctionBodyIsBracketedByBeginAndEndFunc(t *testing.T) {
	prog := mustGenerate(t, `
function add(a: integer, b: integer): integer {
	return a + b;
}
`)
	var sawLabel, sawBegin, sawEnd bool
	for _, ln := range prog.Lines {
		switch ln.(type) {
		case *tac.LabelInstr:
			sawLabel = true
		case *tac.BeginFuncInstr:
			require.True(t, sawLabel, "BeginFunc must follow the function's entry label")
			sawBegin = true
		case *tac.EndFuncInstr:
			sawEnd = true
		}
	}
	require.True(t, sawBegin)
	require.True(t, sawEnd)
}

func TestForeachLowersToIndexedLoopOverLengthAndIndex(t *testing.T) {
	prog := mustGenerate(t, `
let xs: integer[] = [1, 2, 3];
foreach (x in xs) {
	print(x);
}
`)
	var sawLength, sawIndex bool
	for _, ln := range prog.Lines {
		if bo, ok := ln.(*tac.BinaryOpInstr); ok {
			switch bo.Op {
			case "length":
				sawLength = true
			case "[]":
				sawIndex = true
			}
		}
	}
	require.True(t, sawLength, "foreach must query the sequence length")
	require.True(t, sawIndex, "foreach must index the sequence by its loop counter")
}

func TestNewExpressionEmitsConstructorPseudoCall(t *testing.T) {
	prog := mustGenerate(t, `
class Point {
	let x: integer;
	function constructor(x: integer) {
		this.x = x;
	}
}
let p: Point = new Point(3);
`)
	var found bool
	for _, ln := range prog.Lines {
		if c, ok := ln.(*tac.CallInstr); ok && c.Name == "new_Point" {
			found = true
			require.Equal(t, 1, c.NumParams)
		}
	}
	require.True(t, found, "expected a new_Point pseudo-call")
	meta, ok := prog.Classes["Point"]
	require.True(t, ok)
	require.NotEmpty(t, meta.CtorLabel)
	require.Equal(t, 1, meta.CtorArity)
}
