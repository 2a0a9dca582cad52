package lexer_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/lexer"
	"github.com/jarrettbillingsley/croc/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []lexer.Token {
	t.Helper()
	file := source.NewFile("lexer_test.croc", src)
	l, err := lexer.NewLexer(file)
	require.NoError(t, err)

	var toks []lexer.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Symbol == lexer.EOFSymbol {
			return toks
		}
	}
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks := lexAll(t, "local x = foo")
	require.Len(t, toks, 5)
	assert.Equal(t, lexer.KwLocal, toks[0].Symbol)
	assert.Equal(t, lexer.IdentSymbol, toks[1].Symbol)
	assert.Equal(t, "x", toks[1].Lexeme)
	assert.Equal(t, lexer.AssignSymbol, toks[2].Symbol)
	assert.Equal(t, lexer.IdentSymbol, toks[3].Symbol)
	assert.Equal(t, "foo", toks[3].Lexeme)
}

func TestLexIntegerLiteralForms(t *testing.T) {
	toks := lexAll(t, "10 0x1F 0b101")
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.IntSymbol, toks[0].Symbol)
	assert.Equal(t, "10", toks[0].PostComment)
	assert.Equal(t, lexer.IntSymbol, toks[1].Symbol)
	assert.Equal(t, "31", toks[1].PostComment)
	assert.Equal(t, lexer.IntSymbol, toks[2].Symbol)
	assert.Equal(t, "5", toks[2].PostComment)
}

func TestLexFloatLiteral(t *testing.T) {
	toks := lexAll(t, "3.25")
	require.Len(t, toks, 2)
	assert.Equal(t, lexer.FloatSymbol, toks[0].Symbol)
	assert.Equal(t, "3.25", toks[0].PostComment)
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\t\""`)
	require.Len(t, toks, 2)
	assert.Equal(t, lexer.StringSymbol, toks[0].Symbol)
	assert.Equal(t, "a\nb\t\"", toks[0].Lexeme)
}

func TestLexUnterminatedStringIsALexError(t *testing.T) {
	file := source.NewFile("lexer_test.croc", `"unterminated`)
	l, err := lexer.NewLexer(file)
	require.NoError(t, err)
	_, err = l.Next()
	require.Error(t, err)
	lexErr, ok := err.(*lexer.LexError)
	require.True(t, ok)
	assert.True(t, lexErr.EOF)
}

func TestLexOperatorsPreferLongestMatch(t *testing.T) {
	toks := lexAll(t, "<= >>> <=>")
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.LeSymbol, toks[0].Symbol)
	assert.Equal(t, lexer.UShrSymbol, toks[1].Symbol)
	assert.Equal(t, lexer.Cmp3Symbol, toks[2].Symbol)
}

func TestLexDocCommentAttachesToNextToken(t *testing.T) {
	toks := lexAll(t, "/// does a thing\nfunction f() {}")
	require.True(t, len(toks) > 0)
	assert.Equal(t, lexer.KwFunction, toks[0].Symbol)
	assert.Equal(t, "does a thing", toks[0].PreComment)
}

func TestLexBlockDocCommentAttachesToNextToken(t *testing.T) {
	toks := lexAll(t, "/** multi\nline doc */\nlocal x = 1")
	require.True(t, len(toks) > 0)
	assert.Equal(t, lexer.KwLocal, toks[0].Symbol)
	assert.NotEmpty(t, toks[0].PreComment)
}

func TestPeekDoesNotConsume(t *testing.T) {
	file := source.NewFile("lexer_test.croc", "local x")
	l, err := lexer.NewLexer(file)
	require.NoError(t, err)

	peeked, err := l.Peek(0)
	require.NoError(t, err)
	assert.Equal(t, lexer.KwLocal, peeked.Symbol)

	next, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, peeked.Symbol, next.Symbol)
	assert.Equal(t, peeked.Lexeme, next.Lexeme)
}

func TestCanInsertSemicolonAfterIdent(t *testing.T) {
	file := source.NewFile("lexer_test.croc", "x\ny")
	l, err := lexer.NewLexer(file)
	require.NoError(t, err)

	_, err = l.Next()
	require.NoError(t, err)
	assert.True(t, l.CanInsertSemicolon())
}
