package analyzer_test

import (
	"go/scanner"
	"testing"

	"github.com/compiscript-lang/compiscript/lang/analyzer"
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/symbols"
	"github.com/stretchr/testify/require"
)

func mustAnalyze(t *testing.T, src string) *analyzer.Result {
	t.Helper()
	prog, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	return analyzer.Analyze("t.cps", ast.Build("t.cps", prog))
}

func errMessages(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	list, ok := err.(scanner.ErrorList)
	require.True(t, ok, "expected a go/scanner.ErrorList, got %T", err)
	msgs := make([]string, len(list))
	for i, e := range list {
		msgs[i] = e.Msg
	}
	return msgs
}

func requireContainsSubstring(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if containsSubstring(m, substr) {
			return
		}
	}
	t.Fatalf("no diagnostic contains %q, got: %v", substr, msgs)
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestAnalyzeCleanProgramHasNoErrors(t *testing.T) {
	src := `
let total: integer = 0;

function sum(a: integer, b: integer): integer {
	return a + b;
}

class Animal {
	let name: string;
	function constructor(name: string) {
		this.name = name;
	}
	function speak(): string {
		return this.name;
	}
}

class Dog extends Animal {
	function speak(): string {
		return this.name;
	}
}

function main(): void {
	let a: Dog = new Dog("Rex");
	print(a.speak());
	total = sum(1, 2);
}
`
	res := mustAnalyze(t, src)
	msgs := errMessages(t, res.Err)
	require.Empty(t, msgs)
}

func TestVarInitTypeMismatch(t *testing.T) {
	res := mustAnalyze(t, `let x: integer = "hello";`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "Tipo incompatible en inicializacion de variable 'x'")
}

func TestConstReassignment(t *testing.T) {
	res := mustAnalyze(t, `
const K: integer = 1;
function main(): void {
	K = 2;
}
`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "No se puede reasignar a constante 'K'")
}

func TestCallArityMismatch(t *testing.T) {
	res := mustAnalyze(t, `
function sum(a: integer, b: integer): integer {
	return a + b;
}
function main(): void {
	sum(1);
}
`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "Llamada a 'sum' con 1 argumento(s), se esperaban 2")
}

func TestAllPathsMustReturn(t *testing.T) {
	res := mustAnalyze(t, `
function f(x: integer): integer {
	if (x > 0) {
		return x;
	}
}
`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "debe retornar integer en todos los caminos.")
}

func TestOverrideIncompatible(t *testing.T) {
	res := mustAnalyze(t, `
class A {
	function m(x: integer): integer {
		return x;
	}
}
class B extends A {
	function m(x: string): integer {
		return 1;
	}
}
`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "Override incompatible de metodo")
}

func TestUnreachableCodeAfterBreak(t *testing.T) {
	res := mustAnalyze(t, `
function main(): void {
	while (true) {
		break;
		let z: integer = 1;
	}
}
`)
	msgs := errMessages(t, res.Err)
	requireContainsSubstring(t, msgs, "Codigo inalcanzable")
}

func TestClosureCapturePromotesToCell(t *testing.T) {
	res := mustAnalyze(t, `
function makeCounter(): integer {
	let count: integer = 0;
	function increment(): integer {
		count = count + 1;
		return count;
	}
	return increment();
}
`)
	require.Empty(t, errMessages(t, res.Err))

	fi, ok := res.Table.LookupFunction("makeCounter")
	require.True(t, ok)
	require.Len(t, fi.Locals, 1)
	require.Equal(t, symbols.Cell, fi.Locals[0].Scope)
	require.Contains(t, fi.Locals[0].CapturedBy, "increment")
}
