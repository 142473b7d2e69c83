package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/compiscript-lang/compiscript/lang/ast"
	"github.com/compiscript-lang/compiscript/lang/parser"
	"github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Parse runs the parser over each file given and prints the resulting AST,
// as an indented outline by default or as Graphviz dot with --dot.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, name := range args {
		if err := parseFile(stdio, name, c.Dot); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func parseFile(stdio mainer.Stdio, name string, dot bool) error {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	tree, perr := parser.Parse(name, src)
	prog := ast.Build(name, tree)

	printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLong, Dot: dot}
	if err := printer.Print(prog); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if perr != nil {
		scanner.PrintError(stdio.Stderr, perr)
	}
	return perr
}
