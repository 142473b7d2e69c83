package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/compiscript-lang/compiscript/lang/analyzer"
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/mipsgen"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/parsetree"
	"github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/tac"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Compile runs the full pipeline — scan, parse, build the AST, analyze,
// and (if the source is error-free) lower to TAC and MIPS — writing
// whichever artifacts the --ast-dump/--ast-dot/--tac/--mips flags select
// into the working directory.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, name := range args {
		if err := compileFile(stdio, name, c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func compileFile(stdio mainer.Stdio, name string, c *Cmd) error {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	tree, perr := parser.Parse(name, src)
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
		return perr
	}

	if c.AstDump {
		if err := dumpParseTree(tree, "parse_tree.txt", false); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if c.AstDot {
		if err := dumpParseTree(tree, "parse_tree.dot", true); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	prog := ast.Build(name, tree)
	res := analyzer.Analyze(name, prog)

	if c.AstDump {
		if err := dumpAST(prog, "ast.txt", false); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if c.AstDot {
		if err := dumpAST(prog, "ast.dot", true); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if res.Err != nil {
		scanner.PrintError(stdio.Stderr, res.Err)
		return res.Err
	}

	tacProg := tac.Generate(prog, res.Table, res.Types)
	if c.Tac {
		if err := os.WriteFile("tac.txt", []byte(tacProg.String()), 0o644); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if c.Mips {
		asm := mipsgen.Generate(tacProg)
		if err := os.WriteFile("out.s", []byte(asm), 0o644); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	return nil
}

func dumpParseTree(tree *parsetree.Ctx, path string, dot bool) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()
	printer := parsetree.Printer{Output: f, Dot: dot}
	return printer.Print(tree)
}

func dumpAST(prog *ast.Program, path string, dot bool) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()
	printer := ast.Printer{Output: f, Pos: token.PosLong, Dot: dot}
	return printer.Print(prog)
}
