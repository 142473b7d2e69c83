// Package scanner tokenizes Compiscript source text. It is one of the
// external collaborators described in spec §6 (the lexer is not part of the
// semantic/codegen core), but a small, self-contained implementation is
// provided here so the rest of the pipeline is exercisable end-to-end.
package scanner

import (
	"fmt"
	"go/scanner"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/compiscript-lang/compiscript/lang/token"
)

// Error and ErrorList are the diagnostic collection types shared by every
// stage of the pipeline (scanner, parser, analyzer): positions and messages
// are accumulated, never raised as Go errors mid-pass, following the
// convention of re-exporting go/scanner's error list rather than hand
// rolling one.
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError prints each error in err (if it is, or wraps, an ErrorList) to
// w, one per line.
var PrintError = scanner.PrintError

// TokenAndValue pairs a token kind with its scanned literal value and
// position.
type TokenAndValue struct {
	Token token.Token
	Lit   string
	IntV  int64
	FltV  float64
	Pos   token.Pos
}

// ScanAll tokenizes the entire source text of filename, returning every
// token (including a trailing EOF) and any lexical errors encountered. The
// returned error, when non-nil, is a scanner.ErrorList.
func ScanAll(filename string, src []byte) ([]TokenAndValue, error) {
	var (
		s   Scanner
		el  ErrorList
		out []TokenAndValue
	)
	s.Init(filename, src, func(pos token.Position, msg string) { el.Add(pos.ToGoPosition(), msg) })
	for {
		tv := s.Scan()
		out = append(out, tv)
		if tv.Token == token.EOF {
			break
		}
	}
	el.Sort()
	return out, el.Err()
}

// Scanner tokenizes a single source file.
type Scanner struct {
	filename string
	src      []byte
	err      func(pos token.Position, msg string)

	cur  rune // current rune, -1 at EOF
	off  int  // byte offset of cur
	roff int  // byte offset just after cur
	line int
	col  int // column of cur
}

// Init prepares s to scan src, reporting filename in error positions and
// calling errHandler (if non-nil) for every lexical error found.
func (s *Scanner) Init(filename string, src []byte, errHandler func(token.Position, string)) {
	s.filename = filename
	s.src = src
	s.err = errHandler
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0
	s.advance()
}

func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	s.off = s.roff
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) pos() token.Pos { return token.MakePos(s.line, s.col) }

func (s *Scanner) errorf(p token.Pos, format string, args ...any) {
	if s.err == nil {
		return
	}
	s.err(token.Position{Filename: s.filename, Pos: p}, fmt.Sprintf(format, args...))
}

// Scan returns the next token.
func (s *Scanner) Scan() TokenAndValue {
	s.skipWhitespaceAndComments()
	pos := s.pos()

	switch {
	case s.cur == -1:
		return TokenAndValue{Token: token.EOF, Pos: pos}

	case isLetter(s.cur):
		lit := s.ident()
		tok := token.LookupKw(lit)
		return TokenAndValue{Token: tok, Lit: lit, Pos: pos}

	case isDigit(s.cur):
		return s.number(pos)
	}

	r := s.cur
	s.advance()
	switch r {
	case '+':
		return TokenAndValue{Token: token.PLUS, Lit: "+", Pos: pos}
	case '-':
		return TokenAndValue{Token: token.MINUS, Lit: "-", Pos: pos}
	case '*':
		return TokenAndValue{Token: token.STAR, Lit: "*", Pos: pos}
	case '/':
		return TokenAndValue{Token: token.SLASH, Lit: "/", Pos: pos}
	case '%':
		return TokenAndValue{Token: token.PERCENT, Lit: "%", Pos: pos}
	case '.':
		return TokenAndValue{Token: token.DOT, Lit: ".", Pos: pos}
	case ',':
		return TokenAndValue{Token: token.COMMA, Lit: ",", Pos: pos}
	case ';':
		return TokenAndValue{Token: token.SEMI, Lit: ";", Pos: pos}
	case ':':
		return TokenAndValue{Token: token.COLON, Lit: ":", Pos: pos}
	case '?':
		return TokenAndValue{Token: token.QUESTION, Lit: "?", Pos: pos}
	case '(':
		return TokenAndValue{Token: token.LPAREN, Lit: "(", Pos: pos}
	case ')':
		return TokenAndValue{Token: token.RPAREN, Lit: ")", Pos: pos}
	case '[':
		return TokenAndValue{Token: token.LBRACK, Lit: "[", Pos: pos}
	case ']':
		return TokenAndValue{Token: token.RBRACK, Lit: "]", Pos: pos}
	case '{':
		return TokenAndValue{Token: token.LBRACE, Lit: "{", Pos: pos}
	case '}':
		return TokenAndValue{Token: token.RBRACE, Lit: "}", Pos: pos}
	case '=':
		if s.cur == '=' {
			s.advance()
			return TokenAndValue{Token: token.EQL, Lit: "==", Pos: pos}
		}
		return TokenAndValue{Token: token.EQ, Lit: "=", Pos: pos}
	case '!':
		if s.cur == '=' {
			s.advance()
			return TokenAndValue{Token: token.NEQ, Lit: "!=", Pos: pos}
		}
		return TokenAndValue{Token: token.NOT, Lit: "!", Pos: pos}
	case '<':
		if s.cur == '=' {
			s.advance()
			return TokenAndValue{Token: token.LE, Lit: "<=", Pos: pos}
		}
		return TokenAndValue{Token: token.LT, Lit: "<", Pos: pos}
	case '>':
		if s.cur == '=' {
			s.advance()
			return TokenAndValue{Token: token.GE, Lit: ">=", Pos: pos}
		}
		return TokenAndValue{Token: token.GT, Lit: ">", Pos: pos}
	case '&':
		if s.cur == '&' {
			s.advance()
			return TokenAndValue{Token: token.AND, Lit: "&&", Pos: pos}
		}
		s.errorf(pos, "illegal character %#U, did you mean '&&'?", r)
		return TokenAndValue{Token: token.ILLEGAL, Lit: "&", Pos: pos}
	case '|':
		if s.cur == '|' {
			s.advance()
			return TokenAndValue{Token: token.OR, Lit: "||", Pos: pos}
		}
		s.errorf(pos, "illegal character %#U, did you mean '||'?", r)
		return TokenAndValue{Token: token.ILLEGAL, Lit: "|", Pos: pos}
	case '"':
		return s.stringLit(pos)
	default:
		s.errorf(pos, "illegal character %#U", r)
		return TokenAndValue{Token: token.ILLEGAL, Lit: string(r), Pos: pos}
	}
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) number(pos token.Pos) TokenAndValue {
	start := s.off
	isFloat := false
	for isDigit(s.cur) {
		s.advance()
	}
	if s.cur == '.' && isDigit(rune(s.peek())) {
		isFloat = true
		s.advance()
		for isDigit(s.cur) {
			s.advance()
		}
	}
	lit := string(s.src[start:s.off])
	if isFloat {
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			s.errorf(pos, "invalid float literal %q: %s", lit, err)
		}
		return TokenAndValue{Token: token.FLOAT, Lit: lit, FltV: v, Pos: pos}
	}
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		s.errorf(pos, "invalid integer literal %q: %s", lit, err)
	}
	return TokenAndValue{Token: token.INT, Lit: lit, IntV: v, Pos: pos}
}

func (s *Scanner) stringLit(pos token.Pos) TokenAndValue {
	var buf []byte
	for {
		if s.cur == -1 || s.cur == '\n' {
			s.errorf(pos, "string literal not terminated")
			break
		}
		if s.cur == '"' {
			s.advance()
			break
		}
		if s.cur == '\\' {
			s.advance()
			switch s.cur {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case '"':
				buf = append(buf, '"')
			case '\\':
				buf = append(buf, '\\')
			default:
				s.errorf(s.pos(), "unknown escape sequence '\\%c'", s.cur)
				buf = append(buf, byte(s.cur))
			}
			s.advance()
			continue
		}
		buf = append(buf, string(s.cur)...)
		s.advance()
	}
	return TokenAndValue{Token: token.STRING, Lit: string(buf), Pos: pos}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '/' && s.peek() == '/':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		case s.cur == '/' && s.peek() == '*':
			s.advance()
			s.advance()
			for !(s.cur == '*' && s.peek() == '/') && s.cur != -1 {
				s.advance()
			}
			if s.cur != -1 {
				s.advance()
				s.advance()
			}
		default:
			return
		}
	}
}

func isWhitespace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' ||
		r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }
