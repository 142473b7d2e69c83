package parser_test

import (
	"testing"

	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/parsetree"
	"github.com/stretchr/testify/require"
)

func TestParseVarAndFunction(t *testing.T) {
	src := `
let x: integer = 1 + 2 * 3;
function add(a: integer, b: integer): integer {
	return a + b;
}
`
	prog, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	require.Equal(t, parsetree.KindProgram, prog.Kind())
	require.Equal(t, 2, prog.GetChildCount())
	require.Equal(t, parsetree.KindVariableDeclaration, prog.GetChild(0).Kind())
	require.Equal(t, parsetree.KindFunctionDeclaration, prog.GetChild(1).Kind())
}

func TestParseClassWithInheritance(t *testing.T) {
	src := `
class Animal {
	let name: string;
	function speak(): void {
		print(this.name);
	}
}
class Dog extends Animal {
	function bark(): void {
		print("woof");
	}
}
`
	prog, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	require.Equal(t, 2, prog.GetChildCount())
	dog := prog.GetChild(1)
	require.Equal(t, parsetree.KindClassDeclaration, dog.Kind())
	payload := dog.(*parsetree.Ctx).Payload.(parsetree.ClassPayload)
	require.Equal(t, "Dog", payload.Name)
	require.Equal(t, "Animal", payload.Extends)
}

func TestParseControlFlowAndLeftHandSide(t *testing.T) {
	src := `
function main(): void {
	let arr: integer[] = [1, 2, 3];
	for (let i: integer = 0; i < 3; i = i + 1) {
		if (arr[i] > 1) {
			print(arr[i]);
		} else {
			continue;
		}
	}
	foreach (v in arr) {
		print(v);
	}
	let obj: Dog = new Dog();
	obj.bark();
}
`
	_, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
}

func TestParseSwitchTryCatch(t *testing.T) {
	src := `
function f(x: integer): void {
	switch (x) {
		case 1:
			print("one");
		case 2:
			print("two");
		default:
			print("other");
	}
	try {
		print("body");
	} catch (e) {
		print(e);
	}
}
`
	_, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
}

func TestParseSyntaxErrorRecovers(t *testing.T) {
	src := `
let x: integer = ;
let y: integer = 5;
`
	prog, err := parser.Parse("t.cps", []byte(src))
	require.Error(t, err)
	require.Equal(t, 2, prog.GetChildCount(), "parsing must resume at the next declaration")
}

func TestParseTernaryAndAssignment(t *testing.T) {
	src := `
function f(): void {
	let x: integer = 0;
	x = (x > 0) ? 1 : -1;
}
`
	_, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
}
