package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Tokenize runs the scanner over each file given and prints its token
// stream, one token per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var firstErr error
	for _, name := range args {
		if err := tokenizeFile(stdio, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func tokenizeFile(stdio mainer.Stdio, name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	toks, scanErr := scanner.ScanAll(name, src)
	for _, tv := range toks {
		pos := token.Position{Filename: name, Pos: tv.Pos}
		fmt.Fprintf(stdio.Stdout, "%s: %s", pos.Format(token.PosLong), tv.Token)
		if tv.Lit != "" {
			fmt.Fprintf(stdio.Stdout, " %s", tv.Lit)
		}
		fmt.Fprintln(stdio.Stdout)
	}
	if scanErr != nil {
		scanner.PrintError(stdio.Stderr, scanErr)
	}
	return scanErr
}
