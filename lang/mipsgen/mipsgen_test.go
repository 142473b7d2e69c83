package mipsgen_test

import (
	"strings"
	"testing"

	"github.com/compiscript-lang/compiscript/lang/analyzer"
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/mipsgen"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/tac"
	"github.com/stretchr/testify/require"
)

func mustAssemble(t *testing.T, src string) string {
	t.Helper()
	pt, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	prog := ast.Build("t.cps", pt)
	res := analyzer.Analyze("t.cps", prog)
	require.NoError(t, res.Err)
	tacProg := tac.Generate(prog, res.Table, res.Types)
	return mipsgen.Generate(tacProg)
}

var mnemonicWhitelist = map[string]bool{
	"li": true, "la": true, "move": true, "lw": true, "sw": true,
	"add": true, "sub": true, "mul": true, "div": true, "mflo": true, "mfhi": true,
	"slt": true, "sgt": true, "sle": true, "sge": true, "seq": true, "sne": true,
	"and": true, "or": true, "xori": true,
	"sll": true, "addu": true, "addiu": true,
	"j": true, "jal": true, "jr": true, "beq": true, "syscall": true,
}

func TestEverySourceLineBeginsWithAWhitelistedMnemonic(t *testing.T) {
	asm := mustAssemble(t, `
let total: integer = 0;
let i: integer = 0;
while (i < 5) {
	total = total + i;
	i = i + 1;
}
print(total);
`)
	inText := false
	for _, line := range strings.Split(asm, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ".text" {
			inText = true
			continue
		}
		if trimmed == ".data" {
			inText = false
			continue
		}
		if !inText {
			continue
		}
		if strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, "#") || strings.HasSuffix(trimmed, ":") {
			continue
		}
		mnemonic := strings.SplitN(trimmed, " ", 2)[0]
		mnemonic = strings.TrimSuffix(mnemonic, ",")
		require.True(t, mnemonicWhitelist[mnemonic], "line %q uses non-whitelisted mnemonic %q", trimmed, mnemonic)
	}
}

func TestFrameAllocationIsBalancedByFunction(t *testing.T) {
	asm := mustAssemble(t, `
function fib(n: integer): integer {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
let x: integer = fib(5);
print(x);
`)

	funcs := strings.Split(asm, "\nfunc_")
	for idx, chunk := range funcs {
		if idx == 0 {
			continue
		}
		var negSeen, posSeen int
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "addiu $sp, $sp, -") {
				negSeen++
			}
			if strings.HasPrefix(trimmed, "addiu $sp, $sp, ") && !strings.Contains(trimmed, "-") {
				posSeen++
			}
		}
		require.Equal(t, 1, negSeen, "expected exactly one frame-allocating addiu in function chunk")
		require.Equal(t, 1, posSeen, "expected exactly one frame-releasing addiu in function chunk")
	}
}

func TestRecursiveFunctionEmitsJalToItsOwnLabel(t *testing.T) {
	asm := mustAssemble(t, `
function fact(n: integer): integer {
	if (n <= 1) {
		return 1;
	}
	return n * fact(n - 1);
}
print(fact(5));
`)
	require.Contains(t, asm, "jal func_fact")
}

func TestNoUserMainProducesExactlyOneMainLabel(t *testing.T) {
	asm := mustAssemble(t, `
let x: integer = 1 + 2;
print(x);
`)
	count := 0
	for _, line := range strings.Split(asm, "\n") {
		if strings.TrimSpace(line) == "main:" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestUserDefinedMainIsRenamedAndCalledFromSyntheticMain(t *testing.T) {
	asm := mustAssemble(t, `
function main(): void {
	print(1);
}
`)
	require.Contains(t, asm, "jal user_main")
	require.NotContains(t, asm, "func_main:")
}
