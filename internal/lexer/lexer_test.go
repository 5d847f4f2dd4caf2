package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlite/internal/token"
)

func TestTokenizeCreateTable(t *testing.T) {
	tokens, err := Tokenize("CREATE TABLE users (id INT PRIMARY KEY, name TEXT);")
	require.NoError(t, err)

	var types []token.Type
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.Type{
		token.CREATE, token.TABLE, token.IDENT, token.LPAREN,
		token.IDENT, token.INT, token.PRIMARY, token.KEY, token.COMMA,
		token.IDENT, token.TEXT, token.RPAREN, token.SEMICOLON, token.EOF,
	}, types)
}

func TestTokenizeKeywordsAreCaseInsensitive(t *testing.T) {
	tokens, err := Tokenize("select * from t")
	require.NoError(t, err)
	assert.Equal(t, token.SELECT, tokens[0].Type)
	assert.Equal(t, "SELECT", tokens[0].Literal)
}

func TestTokenizeIdentifierKeepsOriginalCase(t *testing.T) {
	tokens, err := Tokenize("SELECT MyColumn FROM t")
	require.NoError(t, err)
	assert.Equal(t, "MyColumn", tokens[1].Literal)
}

func TestTokenizeFloatVsInt(t *testing.T) {
	tokens, err := Tokenize("3 3.5")
	require.NoError(t, err)
	assert.Equal(t, token.NUMBER, tokens[0].Type)
	assert.Equal(t, token.FLOAT_LIT, tokens[1].Type)
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`'it\'s a test'`)
	require.NoError(t, err)
	assert.Equal(t, "it's a test", tokens[0].Literal)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`'unterminated`)
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
}

func TestTokenizeComment(t *testing.T) {
	tokens, err := Tokenize("SELECT * FROM t -- trailing comment\nWHERE id = 1")
	require.NoError(t, err)
	var sawComment bool
	for _, tok := range tokens {
		if tok.Literal == "--" {
			sawComment = true
		}
	}
	assert.False(t, sawComment)
	assert.Equal(t, token.WHERE, tokens[4].Type)
}

func TestTokenizeOperators(t *testing.T) {
	tokens, err := Tokenize("= != < <= > >=")
	require.NoError(t, err)
	want := []token.Type{token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE, token.EOF}
	var got []token.Type
	for _, tok := range tokens {
		got = append(got, tok.Type)
	}
	assert.Equal(t, want, got)
}

func TestTokenizeIllegalCharacter(t *testing.T) {
	_, err := Tokenize("SELECT # FROM t")
	require.Error(t, err)
}
