// Package parser is a small recursive-descent parser that turns a token
// stream from lang/scanner into the parse tree shape defined by
// lang/parsetree. Like lang/scanner, it stands in for the external
// lexer/parser collaborator described in spec §6; it exists so the rest of
// the pipeline can be built and tested end to end.
package parser

import (
	"fmt"
	"go/scanner"

	"github.com/compiscript-lang/compiscript/lang/parsetree"
	sc "github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/token"
)

// Parse tokenizes and parses filename's source text, returning the
// program's root parse-tree node. Both lexical and syntax errors are
// accumulated into a scanner.ErrorList and returned together; the caller
// should still inspect the returned node, since parsing recovers at
// statement boundaries and keeps going after an error.
func Parse(filename string, src []byte) (*parsetree.ProgramContext, error) {
	toks, lexErr := sc.ScanAll(filename, src)
	p := &parser{filename: filename, toks: toks}
	prog := p.parseProgram()

	var errs scanner.ErrorList
	if le, ok := lexErr.(scanner.ErrorList); ok {
		errs = append(errs, le...)
	}
	errs = append(errs, p.errs...)
	errs.Sort()
	if len(errs) == 0 {
		return prog, nil
	}
	return prog, errs.Err()
}

type parser struct {
	filename string
	toks     []sc.TokenAndValue
	pos      int
	errs     scanner.ErrorList
}

func (p *parser) cur() sc.TokenAndValue   { return p.toks[p.pos] }
func (p *parser) curTok() token.Token     { return p.cur().Token }
func (p *parser) at(tok token.Token) bool { return p.curTok() == tok }

func (p *parser) advance() sc.TokenAndValue {
	t := p.toks[p.pos]
	if t.Token != token.EOF {
		p.pos++
	}
	return t
}

func (p *parser) match(toks ...token.Token) bool {
	for _, tok := range toks {
		if p.at(tok) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(tok token.Token) sc.TokenAndValue {
	if p.at(tok) {
		return p.advance()
	}
	p.errorf("se esperaba %s pero se encontro %s", tok.GoString(), p.curTok().GoString())
	return p.cur()
}

func (p *parser) errorf(format string, args ...any) {
	pos := p.cur().Pos
	gopos := token.Position{Filename: p.filename, Pos: pos}.ToGoPosition()
	p.errs.Add(gopos, fmt.Sprintf(format, args...))
}

// synchronize skips tokens until a likely statement boundary, so one syntax
// error does not cascade into dozens of spurious follow-on errors.
func (p *parser) synchronize() {
	for !p.at(token.EOF) {
		if p.curTok() == token.SEMI {
			p.advance()
			return
		}
		switch p.curTok() {
		case token.CLASS, token.FUNCTION, token.LET, token.CONST, token.FOR, token.FOREACH,
			token.IF, token.WHILE, token.DO, token.RETURN, token.SWITCH, token.TRY, token.PRINT:
			return
		}
		p.advance()
	}
}

func (p *parser) parseProgram() *parsetree.ProgramContext {
	pos := p.cur().Pos
	var children []parsetree.Node
	for !p.at(token.EOF) {
		children = append(children, p.parseDeclaration())
	}
	return parsetree.New(parsetree.KindProgram, pos, "", nil, children...)
}

func (p *parser) parseDeclaration() parsetree.Node {
	switch p.curTok() {
	case token.CLASS:
		return p.parseClassDecl()
	case token.FUNCTION:
		return p.parseFunctionDecl()
	case token.LET:
		return p.parseVarDecl()
	case token.CONST:
		return p.parseConstDecl()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseTypeAnnotation() *parsetree.TypeAnnotationContext {
	pos := p.cur().Pos
	var base string
	switch p.curTok() {
	case token.INTEGER, token.BOOLEAN, token.FLOATKW, token.STRINGKW, token.VOID:
		base = p.advance().Token.String()
	case token.IDENT:
		base = p.advance().Lit
	default:
		p.errorf("se esperaba un tipo pero se encontro %s", p.curTok().GoString())
		base = "unknown"
	}
	node := parsetree.New(parsetree.KindTypeAnnotation, pos, base, base)
	for p.at(token.LBRACK) {
		p.advance()
		p.expect(token.RBRACK)
		node = parsetree.New(parsetree.KindTypeAnnotation, pos, "array", "array", node)
	}
	return node
}

func (p *parser) parseVarDecl() *parsetree.VariableDeclarationContext {
	pos := p.cur().Pos
	p.expect(token.LET)
	name := p.expect(token.IDENT).Lit
	var children []parsetree.Node
	if p.match(token.COLON) {
		children = append(children, p.parseTypeAnnotation())
	}
	if p.match(token.EQ) {
		children = append(children, p.parseExpr())
	}
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindVariableDeclaration, pos, name,
		parsetree.DeclPayload{Name: name}, children...)
}

func (p *parser) parseConstDecl() *parsetree.ConstantDeclarationContext {
	pos := p.cur().Pos
	p.expect(token.CONST)
	name := p.expect(token.IDENT).Lit
	var children []parsetree.Node
	if p.match(token.COLON) {
		children = append(children, p.parseTypeAnnotation())
	}
	p.expect(token.EQ)
	children = append(children, p.parseExpr())
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindConstantDeclaration, pos, name,
		parsetree.DeclPayload{Name: name, IsConst: true}, children...)
}

func (p *parser) parseClassDecl() *parsetree.ClassDeclarationContext {
	pos := p.cur().Pos
	p.expect(token.CLASS)
	name := p.expect(token.IDENT).Lit
	var extends string
	if p.match(token.EXTENDS) {
		extends = p.expect(token.IDENT).Lit
	}
	p.expect(token.LBRACE)
	var children []parsetree.Node
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.FUNCTION) {
			children = append(children, p.parseFunctionDecl())
		} else {
			children = append(children, p.parseFieldDecl())
		}
	}
	p.expect(token.RBRACE)
	return parsetree.New(parsetree.KindClassDeclaration, pos, name,
		parsetree.ClassPayload{Name: name, Extends: extends}, children...)
}

func (p *parser) parseFieldDecl() *parsetree.FieldDeclarationContext {
	pos := p.cur().Pos
	p.expect(token.LET)
	name := p.expect(token.IDENT).Lit
	var children []parsetree.Node
	if p.match(token.COLON) {
		children = append(children, p.parseTypeAnnotation())
	}
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindFieldDeclaration, pos, name,
		parsetree.DeclPayload{Name: name}, children...)
}

func (p *parser) parseFunctionDecl() *parsetree.FunctionDeclarationContext {
	pos := p.cur().Pos
	p.expect(token.FUNCTION)
	name := p.expect(token.IDENT).Lit
	p.expect(token.LPAREN)
	var params []parsetree.Node
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		params = append(params, p.parseParameter())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	var retType parsetree.Node
	if p.match(token.COLON) {
		retType = p.parseTypeAnnotation()
	}
	body := p.parseBlock()

	children := make([]parsetree.Node, 0, len(params)+2)
	children = append(children, params...)
	if retType != nil {
		children = append(children, retType)
	}
	children = append(children, body)
	return parsetree.New(parsetree.KindFunctionDeclaration, pos, name,
		parsetree.FuncPayload{Name: name, IsConstructor: name == "constructor"}, children...)
}

func (p *parser) parseParameter() *parsetree.ParameterContext {
	pos := p.cur().Pos
	name := p.expect(token.IDENT).Lit
	var children []parsetree.Node
	if p.match(token.COLON) {
		children = append(children, p.parseTypeAnnotation())
	}
	return parsetree.New(parsetree.KindParameter, pos, name, parsetree.DeclPayload{Name: name}, children...)
}

func (p *parser) parseBlock() *parsetree.BlockContext {
	pos := p.cur().Pos
	p.expect(token.LBRACE)
	var children []parsetree.Node
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		children = append(children, p.parseDeclaration())
	}
	p.expect(token.RBRACE)
	return parsetree.New(parsetree.KindBlock, pos, "", nil, children...)
}

func (p *parser) parseStatement() parsetree.Node {
	switch p.curTok() {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForeach()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TRY:
		return p.parseTryCatch()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.RETURN:
		return p.parseReturn()
	case token.PRINT:
		return p.parsePrint()
	default:
		return p.parseExprStatement()
	}
}

func (p *parser) parseIf() *parsetree.IfStatementContext {
	pos := p.cur().Pos
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	children := []parsetree.Node{cond, then}
	if p.match(token.ELSE) {
		children = append(children, p.parseStatement())
	}
	return parsetree.New(parsetree.KindIfStatement, pos, "", nil, children...)
}

func (p *parser) parseWhile() *parsetree.WhileStatementContext {
	pos := p.cur().Pos
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return parsetree.New(parsetree.KindWhileStatement, pos, "", nil, cond, body)
}

func (p *parser) parseDoWhile() *parsetree.DoWhileStatementContext {
	pos := p.cur().Pos
	p.expect(token.DO)
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindDoWhileStatement, pos, "", nil, body, cond)
}

func (p *parser) parseFor() *parsetree.ForStatementContext {
	pos := p.cur().Pos
	p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init parsetree.Node
	switch {
	case p.at(token.SEMI):
		p.advance()
	case p.at(token.LET):
		init = p.parseVarDecl()
	default:
		init = p.parseExprStatement()
	}

	var cond parsetree.Node
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var post parsetree.Node
	if !p.at(token.RPAREN) {
		post = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStatement()

	empty := parsetree.New(parsetree.KindBlock, pos, "", nil)
	children := []parsetree.Node{
		orPlaceholder(init, empty),
		orPlaceholder(cond, empty),
		orPlaceholder(post, empty),
		body,
	}
	return parsetree.New(parsetree.KindForStatement, pos, "", nil, children...)
}

func orPlaceholder(n, placeholder parsetree.Node) parsetree.Node {
	if n == nil {
		return placeholder
	}
	return n
}

func (p *parser) parseForeach() *parsetree.ForeachStatementContext {
	pos := p.cur().Pos
	p.expect(token.FOREACH)
	p.expect(token.LPAREN)
	name := p.expect(token.IDENT).Lit
	p.expect(token.IN)
	iterable := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return parsetree.New(parsetree.KindForeachStatement, pos, name, name, iterable, body)
}

func (p *parser) parseSwitch() *parsetree.SwitchStatementContext {
	pos := p.cur().Pos
	p.expect(token.SWITCH)
	p.expect(token.LPAREN)
	subject := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	children := []parsetree.Node{subject}
	for p.at(token.CASE) {
		children = append(children, p.parseCase())
	}
	if p.at(token.DEFAULT) {
		dpos := p.cur().Pos
		p.advance()
		p.expect(token.COLON)
		var stmts []parsetree.Node
		for !p.at(token.CASE) && !p.at(token.DEFAULT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
			stmts = append(stmts, p.parseStatement())
		}
		children = append(children, parsetree.New(parsetree.KindDefaultClause, dpos, "", nil, stmts...))
	}
	p.expect(token.RBRACE)
	return parsetree.New(parsetree.KindSwitchStatement, pos, "", nil, children...)
}

func (p *parser) parseCase() *parsetree.CaseClauseContext {
	pos := p.cur().Pos
	p.expect(token.CASE)
	val := p.parseExpr()
	p.expect(token.COLON)
	children := []parsetree.Node{val}
	for !p.at(token.CASE) && !p.at(token.DEFAULT) && !p.at(token.RBRACE) && !p.at(token.EOF) {
		children = append(children, p.parseStatement())
	}
	return parsetree.New(parsetree.KindCaseClause, pos, "", nil, children...)
}

func (p *parser) parseTryCatch() *parsetree.TryCatchStatementContext {
	pos := p.cur().Pos
	p.expect(token.TRY)
	tryBlock := p.parseBlock()
	p.expect(token.CATCH)
	p.expect(token.LPAREN)
	errName := p.expect(token.IDENT).Lit
	p.expect(token.RPAREN)
	catchBlock := p.parseBlock()
	return parsetree.New(parsetree.KindTryCatchStatement, pos, errName, errName, tryBlock, catchBlock)
}

func (p *parser) parseBreak() *parsetree.BreakStatementContext {
	pos := p.cur().Pos
	p.expect(token.BREAK)
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindBreakStatement, pos, "", nil)
}

func (p *parser) parseContinue() *parsetree.ContinueStatementContext {
	pos := p.cur().Pos
	p.expect(token.CONTINUE)
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindContinueStatement, pos, "", nil)
}

func (p *parser) parseReturn() *parsetree.ReturnStatementContext {
	pos := p.cur().Pos
	p.expect(token.RETURN)
	var children []parsetree.Node
	if !p.at(token.SEMI) {
		children = append(children, p.parseExpr())
	}
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindReturnStatement, pos, "", nil, children...)
}

// parsePrint handles the supplemented print statement (print(expr);), not
// part of the core AST but present in the original grammar and kept as a
// convenient way to exercise the TAC/MIPS backends end to end.
func (p *parser) parsePrint() *parsetree.PrintStatementContext {
	pos := p.cur().Pos
	p.expect(token.PRINT)
	p.expect(token.LPAREN)
	arg := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindPrintStatement, pos, "", nil, arg)
}

func (p *parser) parseExprStatement() *parsetree.ExpressionStatementContext {
	pos := p.cur().Pos
	e := p.parseExpr()
	p.expect(token.SEMI)
	return parsetree.New(parsetree.KindExpressionStatement, pos, "", nil, e)
}

// ---- expressions, precedence climbing ----

func (p *parser) parseExpr() parsetree.Node { return p.parseAssignment() }

func (p *parser) parseAssignment() parsetree.Node {
	pos := p.cur().Pos
	lhs := p.parseTernary()
	if p.at(token.EQ) {
		p.advance()
		rhs := p.parseAssignment()
		return parsetree.New(parsetree.KindAssignment, pos, "", nil, lhs, rhs)
	}
	return lhs
}

func (p *parser) parseTernary() parsetree.Node {
	pos := p.cur().Pos
	cond := p.parseLogicOr()
	if p.match(token.QUESTION) {
		then := p.parseExpr()
		p.expect(token.COLON)
		els := p.parseTernary()
		return parsetree.New(parsetree.KindTernaryExpr, pos, "", nil, cond, then, els)
	}
	return cond
}

func (p *parser) parseLogicOr() parsetree.Node  { return p.parseBinaryLevel(p.parseLogicAnd, token.OR) }
func (p *parser) parseLogicAnd() parsetree.Node { return p.parseBinaryLevel(p.parseEquality, token.AND) }
func (p *parser) parseEquality() parsetree.Node {
	return p.parseBinaryLevel(p.parseComparison, token.EQL, token.NEQ)
}
func (p *parser) parseComparison() parsetree.Node {
	return p.parseBinaryLevel(p.parseTerm, token.LT, token.GT, token.LE, token.GE)
}
func (p *parser) parseTerm() parsetree.Node { return p.parseBinaryLevel(p.parseFactor, token.PLUS, token.MINUS) }
func (p *parser) parseFactor() parsetree.Node {
	return p.parseBinaryLevel(p.parseUnary, token.STAR, token.SLASH, token.PERCENT)
}

func (p *parser) parseBinaryLevel(next func() parsetree.Node, ops ...token.Token) parsetree.Node {
	left := next()
	for {
		matched := false
		for _, op := range ops {
			if p.at(op) {
				pos := p.cur().Pos
				p.advance()
				right := next()
				left = parsetree.New(parsetree.KindBinaryExpr, pos, op.String(), op, left, right)
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *parser) parseUnary() parsetree.Node {
	if p.at(token.MINUS) || p.at(token.NOT) {
		pos := p.cur().Pos
		op := p.advance().Token
		operand := p.parseUnary()
		return parsetree.New(parsetree.KindUnaryExpr, pos, op.String(), op, operand)
	}
	return p.parseLeftHandSide()
}

// parseLeftHandSide parses a primary atom followed by zero or more suffix
// operations (call, property access, index), wrapping the chain in a single
// LeftHandSideContext node per spec §6. When there are no suffixes, the atom
// itself is returned unwrapped.
func (p *parser) parseLeftHandSide() parsetree.Node {
	pos := p.cur().Pos
	atom := p.parsePrimary()
	var suffixes []parsetree.Node
	for {
		switch {
		case p.at(token.DOT):
			spos := p.cur().Pos
			p.advance()
			name := p.expect(token.IDENT).Lit
			suffixes = append(suffixes, parsetree.New(parsetree.KindPropertyAccessExpr, spos, name, name))
		case p.at(token.LPAREN):
			spos := p.cur().Pos
			args := p.parseArguments()
			suffixes = append(suffixes, parsetree.New(parsetree.KindCallExpr, spos, "", nil, args))
		case p.at(token.LBRACK):
			spos := p.cur().Pos
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			suffixes = append(suffixes, parsetree.New(parsetree.KindIndexExpr, spos, "", nil, idx))
		default:
			if len(suffixes) == 0 {
				return atom
			}
			children := append([]parsetree.Node{atom}, suffixes...)
			return parsetree.New(parsetree.KindLeftHandSide, pos, "", nil, children...)
		}
	}
}

func (p *parser) parseArguments() *parsetree.ArgumentsContext {
	pos := p.cur().Pos
	p.expect(token.LPAREN)
	var children []parsetree.Node
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		children = append(children, p.parseExpr())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return parsetree.New(parsetree.KindArguments, pos, "", nil, children...)
}

func (p *parser) parsePrimary() parsetree.Node {
	t := p.cur()
	pos := t.Pos
	switch t.Token {
	case token.INT:
		p.advance()
		return parsetree.New(parsetree.KindLiteralExpr, pos, t.Lit,
			parsetree.LiteralValue{Kind: parsetree.LitInt, Int: t.IntV})
	case token.FLOAT:
		p.advance()
		return parsetree.New(parsetree.KindLiteralExpr, pos, t.Lit,
			parsetree.LiteralValue{Kind: parsetree.LitFloat, Flt: t.FltV})
	case token.STRING:
		p.advance()
		return parsetree.New(parsetree.KindLiteralExpr, pos, t.Lit,
			parsetree.LiteralValue{Kind: parsetree.LitString, Str: t.Lit})
	case token.TRUE, token.FALSE:
		p.advance()
		return parsetree.New(parsetree.KindLiteralExpr, pos, t.Token.String(),
			parsetree.LiteralValue{Kind: parsetree.LitBool, Bool: t.Token == token.TRUE})
	case token.NULL:
		p.advance()
		return parsetree.New(parsetree.KindLiteralExpr, pos, "null", parsetree.LiteralValue{Kind: parsetree.LitNull})
	case token.THIS:
		p.advance()
		return parsetree.New(parsetree.KindThisExpr, pos, "this", nil)
	case token.IDENT:
		p.advance()
		return parsetree.New(parsetree.KindIdentifierExpr, pos, t.Lit, t.Lit)
	case token.NEW:
		p.advance()
		name := p.expect(token.IDENT).Lit
		args := p.parseArguments()
		return parsetree.New(parsetree.KindNewExpr, pos, name, name, args)
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACK:
		p.advance()
		var children []parsetree.Node
		for !p.at(token.RBRACK) && !p.at(token.EOF) {
			children = append(children, p.parseExpr())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACK)
		return parsetree.New(parsetree.KindArrayLiteralExpr, pos, "", nil, children...)
	default:
		p.errorf("expresion inesperada: se encontro %s", t.Token.GoString())
		p.advance()
		p.synchronize()
		return parsetree.New(parsetree.KindLiteralExpr, pos, "", parsetree.LiteralValue{Kind: parsetree.LitNull})
	}
}
