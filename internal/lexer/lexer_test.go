package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropbox/stone/internal/lexer"
)

func tokenTypes(toks []lexer.Token) []lexer.TokenType {
	out := make([]lexer.TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLexIndentationBlock(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a Int64\n    b String\n"
	toks, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors())

	require.Equal(t, []lexer.TokenType{
		lexer.TokenKeyword, lexer.TokenIdent, lexer.TokenNewline,
		lexer.TokenKeyword, lexer.TokenIdent, lexer.TokenNewline,
		lexer.TokenIndent,
		lexer.TokenIdent, lexer.TokenIdent, lexer.TokenNewline,
		lexer.TokenIdent, lexer.TokenIdent, lexer.TokenNewline,
		lexer.TokenDedent,
		lexer.TokenEOF,
	}, tokenTypes(toks))
}

func TestLexDedentToMultipleLevels(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a Int64\n        b String\nc Int64\n"
	toks, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors())

	var indents, dedents int
	for _, typ := range tokenTypes(toks) {
		switch typ {
		case lexer.TokenIndent:
			indents++
		case lexer.TokenDedent:
			dedents++
		}
	}
	require.Equal(t, 2, indents)
	require.Equal(t, 2, dedents)
}

func TestLexInconsistentTabsAndSpaces(t *testing.T) {
	src := "namespace x\n\nstruct P\n \t a Int64\n"
	_, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.True(t, diags.HasErrors())
}

func TestLexUnindentMismatch(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a Int64\n  b Int64\n"
	_, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.True(t, diags.HasErrors())
}

func TestLexStringAndNumberLiterals(t *testing.T) {
	src := `namespace x

alias A = String(min_length=1, max_length=10, pattern="[a-z]+")
`
	toks, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.False(t, diags.HasErrors())

	sawString, sawInt := false, false
	for _, tok := range toks {
		switch tok.Type {
		case lexer.TokenStringLiteral:
			sawString = true
			require.Equal(t, "[a-z]+", tok.Text)
		case lexer.TokenIntLiteral:
			sawInt = true
		}
	}
	require.True(t, sawString)
	require.True(t, sawInt)
}

func TestLexUnrecognizedCharacter(t *testing.T) {
	src := "namespace x\n\nstruct P\n    a @Int64\n"
	_, diags := lexer.Lex("f.stone", []byte(src), 0)
	require.True(t, diags.HasErrors())
}
