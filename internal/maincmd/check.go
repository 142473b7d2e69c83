package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/compiscript-lang/compiscript/lang/analyzer"
	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Check runs the full front end — scan, parse, build the AST, and
// semantically analyze it — over each file given. On success it prints a
// summary of the file's global symbols; on failure it prints every
// diagnostic collected.
func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, name := range args {
		if err := checkFile(stdio, name, c.Dot); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func checkFile(stdio mainer.Stdio, name string, dot bool) error {
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

	prog := ast.Build(name, tree)
	res := analyzer.Analyze(name, prog)

	if dot {
		printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong, Dot: true}
		if err := printer.Print(prog); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}

	if res.Err != nil {
		scanner.PrintError(stdio.Stderr, res.Err)
		return res.Err
	}

	for _, g := range res.Table.DumpGlobals() {
		fmt.Fprintf(stdio.Stdout, "%s: addr=%s type=%s\n", g.Name, g.Label, g.Type)
	}
	for _, fi := range res.Table.DumpFunctions() {
		fmt.Fprintf(stdio.Stdout, "%s: label=%s type=%s\n", fi.Name, fi.Label, fi.RetType)
	}
	return nil
}
