// Package maincmd implements the compiscript command-line driver: argument
// parsing and dispatch to the tokenize/parse/check/compile subcommands, built on
// github.com/mna/mainer the same way the teacher repo's own CLI is.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "compiscript"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler front end for the Compiscript programming language: lexes,
parses and semantically analyzes source files.

The <command> can be one of:
       tokenize                  Run the scanner and print the resulting
                                 token stream.
       parse                     Run the parser and print the resulting
                                 abstract syntax tree.
       check                     Run the full semantic analyzer and print
                                 every diagnostic found, or the symbol
                                 table summary if there are none.
       compile                   Run the full pipeline and, per the
                                 selected flags below, write parse_tree,
                                 ast, tac and/or out.s artifacts to the
                                 working directory.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Valid flag options for the <parse> and <check> commands are:
       --dot                     Print the AST as Graphviz dot instead of
                                 the default outline form.

Valid flag options for the <compile> command are:
       --ast-dump                Write parse_tree.txt and ast.txt.
       --ast-dot                 Write parse_tree.dot and ast.dot.
       --tac                     Write tac.txt, the generated three-address
                                 code listing.
       --mips                    Write out.s, the generated MIPS-32
                                 assembly listing. Implies semantic
                                 analysis must succeed with no errors.
`, binName)
)

// Cmd is the root command, populated from the process's argument vector by
// github.com/mna/mainer's flag parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Dot bool `flag:"dot"`

	AstDump bool `flag:"ast-dump"`
	AstDot  bool `flag:"ast-dot"`
	Tac     bool `flag:"tac"`
	Mips    bool `flag:"mips"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)         { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one file must be provided", cmdName)
	}

	if c.flags["dot"] && cmdName != "parse" && cmdName != "check" {
		return fmt.Errorf("%s: invalid flag 'dot'", cmdName)
	}

	for _, f := range []string{"ast-dump", "ast-dot", "tac", "mips"} {
		if c.flags[f] && cmdName != "compile" {
			return fmt.Errorf("%s: invalid flag '%s'", cmdName, f)
		}
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds reflects over v's exported methods to find the ones matching
// the (context.Context, mainer.Stdio, []string) error shape, and indexes
// them by lowercased method name, so adding a new subcommand is just adding
// a new method to Cmd.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
