package ast_test

import (
	"bytes"
	"testing"

	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tree, err := parser.Parse("t.cps", []byte(src))
	require.NoError(t, err)
	return ast.Build("t.cps", tree)
}

func TestBuildVarAndBinary(t *testing.T) {
	prog := mustParse(t, `let x: integer = 1 + 2 * 3;`)
	require.Len(t, prog.Stmts, 1)
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name)
	require.False(t, decl.IsConst)
	bin, ok := decl.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op.String())
}

func TestBuildFunctionAndCall(t *testing.T) {
	prog := mustParse(t, `
function add(a: integer, b: integer): integer {
	return a + b;
}
function main(): void {
	let r: integer = add(1, 2);
}
`)
	require.Len(t, prog.Stmts, 2)
	fn := prog.Stmts[0].(*ast.FunctionDecl)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.RetType)
	require.Equal(t, "integer", fn.RetType.String())

	main := prog.Stmts[1].(*ast.FunctionDecl)
	decl := main.Body.Stmts[0].(*ast.VarDecl)
	call := decl.Init.(*ast.CallExpr)
	callee := call.Callee.(*ast.NameExpr)
	require.Equal(t, "add", callee.Name)
	require.Len(t, call.Args, 2)
}

func TestBuildClassFieldsAndMethods(t *testing.T) {
	prog := mustParse(t, `
class Animal {
	let name: string;
	function speak(): void {
		print(this.name);
	}
}
`)
	cls := prog.Stmts[0].(*ast.ClassDecl)
	require.Equal(t, "Animal", cls.Name)
	require.Len(t, cls.Fields, 1)
	require.Len(t, cls.Methods, 1)
	method := cls.Methods[0]
	require.True(t, method.IsMethod)
	require.Equal(t, "Animal", method.OwnerClass)
	print := method.Body.Stmts[0].(*ast.PrintStmt)
	member := print.Arg.(*ast.MemberExpr)
	_, isThis := member.Target.(*ast.ThisExpr)
	require.True(t, isThis)
	require.Equal(t, "name", member.Name)
}

func TestBuildLeftHandSideChain(t *testing.T) {
	prog := mustParse(t, `
function main(): void {
	let obj: Dog = new Dog();
	obj.bark()[0];
}
`)
	main := prog.Stmts[0].(*ast.FunctionDecl)
	exprStmt := main.Body.Stmts[1].(*ast.ExprStmt)
	idx := exprStmt.Expr.(*ast.IndexExpr)
	call := idx.Target.(*ast.CallExpr)
	member := call.Callee.(*ast.MemberExpr)
	require.Equal(t, "bark", member.Name)
	_, isName := member.Target.(*ast.NameExpr)
	require.True(t, isName)
}

func TestBuildForAndAssignment(t *testing.T) {
	prog := mustParse(t, `
function main(): void {
	for (let i: integer = 0; i < 10; i = i + 1) {
		print(i);
	}
}
`)
	main := prog.Stmts[0].(*ast.FunctionDecl)
	forStmt := main.Body.Stmts[0].(*ast.ForStmt)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	assign, ok := forStmt.Post.(*ast.AssignStmt)
	require.True(t, ok)
	_, isName := assign.Target.(*ast.NameExpr)
	require.True(t, isName)
}

func TestPrinterOutline(t *testing.T) {
	prog := mustParse(t, `let x: integer = 1;`)
	var buf bytes.Buffer
	p := &ast.Printer{Output: &buf}
	require.NoError(t, p.Print(prog))
	require.Contains(t, buf.String(), "program")
	require.Contains(t, buf.String(), "let x")
}

func TestPrinterDot(t *testing.T) {
	prog := mustParse(t, `let x: integer = 1;`)
	var buf bytes.Buffer
	p := &ast.Printer{Output: &buf, Dot: true}
	require.NoError(t, p.Print(prog))
	require.Contains(t, buf.String(), "digraph ast")
}
