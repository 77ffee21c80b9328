package dbml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	return types
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("Table users {\n  id int [pk, default: -1] // trailing\n}")
	assert.Equal(t, []TokenType{
		IDENT, IDENT, LBRACE, NEWLINE,
		IDENT, IDENT, LBRACK, IDENT, COMMA, IDENT, COLON, MINUS, NUMBER, RBRACK, NEWLINE,
		RBRACE, EOF,
	}, tokenTypes(toks))

	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 16}, toks[4].Pos)
	assert.Equal(t, "id", toks[4].Value)
	assert.Equal(t, 18, toks[4].End)
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		input string
		want  Token
	}{
		{`'input:required'`, Token{Type: STRING, Value: "input:required"}},
		{`"character varying"`, Token{Type: STRING, Value: "character varying"}},
		{`'it\'s'`, Token{Type: STRING, Value: "it's"}},
		{"'''multi\nline'''", Token{Type: STRING, Value: "multi\nline"}},
		{"`now()`", Token{Type: EXPR, Value: "now()"}},
		{"12.50", Token{Type: NUMBER, Value: "12.50"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.want.Type, toks[0].Type)
			assert.Equal(t, tt.want.Value, toks[0].Value)
			assert.Equal(t, len(tt.input), toks[0].End)
		})
	}
}

func TestTokenize_Comments(t *testing.T) {
	toks := Tokenize("a /* b\nc */ d // e\nf")
	assert.Equal(t, []TokenType{IDENT, IDENT, NEWLINE, IDENT, EOF}, tokenTypes(toks))
	assert.Equal(t, "d", toks[1].Value)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 3, toks[3].Pos.Line)
}

func TestTokenize_Unterminated(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"'abc", ErrUnterminatedString},
		{"/* abc", ErrUnterminatedComment},
		{"`abc", ErrUnterminatedExpr},
		{"'''abc", ErrUnterminatedString},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.NotEmpty(t, toks)
			assert.Equal(t, ILLEGAL, toks[0].Type)
			assert.ErrorIs(t, toks[0].Err, tt.err)
			assert.Equal(t, EOF, toks[len(toks)-1].Type)
		})
	}
}
