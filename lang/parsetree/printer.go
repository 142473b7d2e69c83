package parsetree

import (
	"fmt"
	"io"
	"strings"

	"github.com/compiscript-lang/compiscript/lang/token"
)

var kindNames = [...]string{
	KindProgram:                "Program",
	KindVariableDeclaration:    "VariableDeclaration",
	KindConstantDeclaration:    "ConstantDeclaration",
	KindFunctionDeclaration:    "FunctionDeclaration",
	KindClassDeclaration:       "ClassDeclaration",
	KindFieldDeclaration:       "FieldDeclaration",
	KindParameter:              "Parameter",
	KindBlock:                  "Block",
	KindIfStatement:            "IfStatement",
	KindWhileStatement:         "WhileStatement",
	KindDoWhileStatement:       "DoWhileStatement",
	KindForStatement:           "ForStatement",
	KindForeachStatement:       "ForeachStatement",
	KindSwitchStatement:        "SwitchStatement",
	KindCaseClause:             "CaseClause",
	KindDefaultClause:          "DefaultClause",
	KindTryCatchStatement:      "TryCatchStatement",
	KindBreakStatement:         "BreakStatement",
	KindContinueStatement:      "ContinueStatement",
	KindReturnStatement:        "ReturnStatement",
	KindPrintStatement:         "PrintStatement",
	KindExpressionStatement:    "ExpressionStatement",
	KindAssignment:             "Assignment",
	KindTernaryExpr:            "TernaryExpr",
	KindBinaryExpr:             "BinaryExpr",
	KindUnaryExpr:              "UnaryExpr",
	KindLiteralExpr:            "LiteralExpr",
	KindIdentifierExpr:         "IdentifierExpr",
	KindThisExpr:               "ThisExpr",
	KindNewExpr:                "NewExpr",
	KindArrayLiteralExpr:       "ArrayLiteralExpr",
	KindLeftHandSide:           "LeftHandSide",
	KindCallExpr:               "CallExpr",
	KindPropertyAccessExpr:     "PropertyAccessExpr",
	KindIndexExpr:              "IndexExpr",
	KindArguments:              "Arguments",
	KindTypeAnnotation:         "TypeAnnotation",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Printer renders a parse tree either as an indented outline (the default)
// or as Graphviz dot source, mirroring package ast's own Printer.
type Printer struct {
	Output io.Writer
	Dot    bool
}

// Print writes a textual rendering of n to p.Output.
func (p *Printer) Print(n Node) error {
	if n == nil {
		return nil
	}
	if p.Dot {
		fmt.Fprintln(p.Output, "digraph parsetree {")
		id := 0
		err := printDot(p.Output, n, -1, &id)
		fmt.Fprintln(p.Output, "}")
		return err
	}
	return printOutline(p.Output, n, 0)
}

func printOutline(w io.Writer, n Node, depth int) error {
	text := n.GetText()
	label := n.Kind().String()
	if text != "" && n.GetChildCount() == 0 {
		label += " " + fmt.Sprintf("%q", text)
	}
	if _, err := fmt.Fprintf(w, "%s[%s] %s\n", strings.Repeat(". ", depth), positionOf(n), label); err != nil {
		return err
	}
	for i := 0; i < n.GetChildCount(); i++ {
		if err := printOutline(w, n.GetChild(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func printDot(w io.Writer, n Node, parentID int, nextID *int) error {
	id := *nextID
	*nextID++
	label := n.Kind().String()
	if text := n.GetText(); text != "" && n.GetChildCount() == 0 {
		label += ": " + strings.ReplaceAll(text, `"`, `\"`)
	}
	if _, err := fmt.Fprintf(w, "  n%d [label=\"%s\"];\n", id, label); err != nil {
		return err
	}
	if parentID >= 0 {
		if _, err := fmt.Fprintf(w, "  n%d -> n%d;\n", parentID, id); err != nil {
			return err
		}
	}
	for i := 0; i < n.GetChildCount(); i++ {
		if err := printDot(w, n.GetChild(i), id, nextID); err != nil {
			return err
		}
	}
	return nil
}

func positionOf(n Node) string {
	return token.Position{Pos: n.Pos()}.Format(token.PosLong)
}
