package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ozanh/lox/token"
)

func TestKindString(t *testing.T) {
	require.Equal(t, "!=", token.BangEqual.String())
	require.Equal(t, "while", token.While.String())
	require.Equal(t, "EOF", token.EOF.String())
	require.Equal(t, "kind(-1)", token.Kind(-1).String())
}

func TestKeywords(t *testing.T) {
	kw := token.Keywords()
	require.Equal(t, []string{
		"and", "class", "else", "false", "for", "fun", "if", "nil",
		"or", "print", "return", "super", "this", "true", "var", "while",
	}, kw)
	require.True(t, token.Class.IsKeyword())
	require.False(t, token.Identifier.IsKeyword())
	require.False(t, token.Error.IsKeyword())
}

func TestSynthetic(t *testing.T) {
	tok := token.NewSynthetic("this", 3)
	require.Equal(t, token.Synthetic, tok.Kind)
	require.Equal(t, "this", tok.String())
	require.Equal(t, 3, tok.Line)
}
