package dbml

import "fmt"

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	NEWLINE
	IDENT
	NUMBER
	STRING
	EXPR // `backtick expression`
	LBRACE
	RBRACE
	LBRACK
	RBRACK
	LPAREN
	RPAREN
	COMMA
	COLON
	DOT
	GT
	LT
	MINUS
	OTHER
)

var tokenNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	IDENT:   "IDENT",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	EXPR:    "EXPR",
	LBRACE:  "{",
	RBRACE:  "}",
	LBRACK:  "[",
	RBRACK:  "]",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
	COLON:   ":",
	DOT:     ".",
	GT:      ">",
	LT:      "<",
	MINUS:   "-",
	OTHER:   "OTHER",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in the source text. Line and Column are 1-based,
// Offset is the byte offset.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
	Offset int `json:"-" yaml:"-"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit. For STRING and EXPR tokens Value holds the
// unquoted content; End is the byte offset just past the token in the source.
type Token struct {
	Type  TokenType
	Value string
	Pos   Position
	End   int
	Err   error // set on ILLEGAL tokens
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, NUMBER, STRING, EXPR, OTHER, ILLEGAL:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
	return t.Type.String()
}
