package scanner_test

import (
	"testing"

	"github.com/compiscript-lang/compiscript/lang/scanner"
	"github.com/compiscript-lang/compiscript/lang/token"
	"github.com/stretchr/testify/require"
)

func TestScanAll(t *testing.T) {
	src := `let x: integer = 1 + 2; // comment
function f(a: integer): boolean { return a >= 1 && true; }`
	toks, err := scanner.ScanAll("t.cps", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EOF, toks[len(toks)-1].Token)

	var kinds []token.Token
	for _, tv := range toks {
		kinds = append(kinds, tv.Token)
	}
	require.Contains(t, kinds, token.LET)
	require.Contains(t, kinds, token.INTEGER)
	require.Contains(t, kinds, token.GE)
	require.Contains(t, kinds, token.AND)
	require.Contains(t, kinds, token.TRUE)
}

func TestScanAllStringEscapes(t *testing.T) {
	toks, err := scanner.ScanAll("t.cps", []byte(`"a\nb"`))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[0].Token)
	require.Equal(t, "a\nb", toks[0].Lit)
}

func TestScanAllIllegalChar(t *testing.T) {
	_, err := scanner.ScanAll("t.cps", []byte(`let x = @;`))
	require.Error(t, err)
}
