package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok <= maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestLookupKw(t *testing.T) {
	for tok := Token(0); tok <= maxToken; tok++ {
		expect := tok.IsKeyword()
		val := LookupKw(tok.String())
		if expect {
			require.Equal(t, tok, val)
		} else {
			require.Equal(t, IDENT, val)
		}
	}
}

func TestIsBinopUnop(t *testing.T) {
	require.True(t, PLUS.IsBinop())
	require.True(t, AND.IsBinop())
	require.False(t, NOT.IsBinop())
	require.True(t, MINUS.IsUnop())
	require.True(t, NOT.IsUnop())
	require.False(t, PLUS.IsUnop())
}

func TestGoString(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "if", IF.GoString())
}
