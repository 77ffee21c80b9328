package dbml

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer errors carried by ILLEGAL tokens.
var (
	ErrUnterminatedString  = errors.New("dbml: unterminated string")
	ErrUnterminatedComment = errors.New("dbml: unterminated block comment")
	ErrUnterminatedExpr    = errors.New("dbml: unterminated expression")
)

// lexer turns DBML source into tokens. Comments and horizontal whitespace are
// dropped; line breaks are kept as NEWLINE tokens since they separate columns.
type lexer struct {
	input    string
	position int // offset of current
	next     int // offset of the rune after current
	line     int
	column   int
	current  rune
}

// Tokenize scans the whole input. The returned slice always ends with EOF.
func Tokenize(input string) []Token {
	l := &lexer{input: input, line: 1}
	l.readChar()
	tokens := make([]Token, 0, len(input)/4+1)
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
		l.column = 0
	}
	l.position = l.next
	if l.next >= len(l.input) {
		l.current = 0
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.current = r
	l.next += size
	l.column++
}

func (l *lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *lexer) nextToken() Token {
	for {
		switch l.current {
		case ' ', '\t', '\r', '\f', '\v':
			l.readChar()
			continue
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				if tok, ok := l.skipBlockComment(); !ok {
					return tok
				}
				continue
			}
		}
		break
	}

	if l.current == 0 && l.position >= len(l.input) {
		p := l.pos()
		return Token{Type: EOF, Pos: p, End: p.Offset}
	}

	switch l.current {
	case '\n':
		return l.single(NEWLINE)
	case '{':
		return l.single(LBRACE)
	case '}':
		return l.single(RBRACE)
	case '[':
		return l.single(LBRACK)
	case ']':
		return l.single(RBRACK)
	case '(':
		return l.single(LPAREN)
	case ')':
		return l.single(RPAREN)
	case ',':
		return l.single(COMMA)
	case ':':
		return l.single(COLON)
	case '.':
		return l.single(DOT)
	case '>':
		return l.single(GT)
	case '<':
		return l.single(LT)
	case '-':
		return l.single(MINUS)
	case '\'', '"':
		return l.readString(l.current)
	case '`':
		return l.readExpr()
	}

	switch {
	case isIdentStart(l.current):
		return l.readWord()
	case unicode.IsDigit(l.current):
		return l.readNumber()
	}
	return l.single(OTHER)
}

func (l *lexer) single(tt TokenType) Token {
	p := l.pos()
	value := string(l.current)
	l.readChar()
	return Token{Type: tt, Value: value, Pos: p, End: l.position}
}

func (l *lexer) skipLineComment() {
	for l.current != '\n' && !l.eof() {
		l.readChar()
	}
}

func (l *lexer) skipBlockComment() (Token, bool) {
	p := l.pos()
	l.readChar() // '/'
	l.readChar() // '*'
	for !l.eof() {
		if l.current == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return Token{}, true
		}
		l.readChar()
	}
	return Token{Type: ILLEGAL, Value: l.input[p.Offset:], Pos: p, End: len(l.input), Err: ErrUnterminatedComment}, false
}

func (l *lexer) readWord() Token {
	p := l.pos()
	for isIdentPart(l.current) {
		l.readChar()
	}
	return Token{Type: IDENT, Value: l.input[p.Offset:l.position], Pos: p, End: l.position}
}

func (l *lexer) readNumber() Token {
	p := l.pos()
	for unicode.IsDigit(l.current) {
		l.readChar()
	}
	if l.current == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
		for unicode.IsDigit(l.current) {
			l.readChar()
		}
	}
	return Token{Type: NUMBER, Value: l.input[p.Offset:l.position], Pos: p, End: l.position}
}

// readString reads '...', "..." and '''...''' literals. A backslash escapes
// the following character.
func (l *lexer) readString(delimiter rune) Token {
	p := l.pos()
	if delimiter == '\'' && strings.HasPrefix(l.input[l.position:], "'''") {
		return l.readMultiline(p)
	}
	l.readChar()
	var b strings.Builder
	for {
		switch {
		case l.eof(), l.current == '\n':
			return Token{Type: ILLEGAL, Value: l.input[p.Offset:l.position], Pos: p, End: l.position, Err: ErrUnterminatedString}
		case l.current == '\\' && l.peekChar() != 0:
			l.readChar()
		case l.current == delimiter:
			l.readChar()
			return Token{Type: STRING, Value: b.String(), Pos: p, End: l.position}
		}
		b.WriteRune(l.current)
		l.readChar()
	}
}

func (l *lexer) readMultiline(p Position) Token {
	l.readChar()
	l.readChar()
	l.readChar()
	start := l.position
	for !l.eof() {
		if strings.HasPrefix(l.input[l.position:], "'''") {
			value := l.input[start:l.position]
			l.readChar()
			l.readChar()
			l.readChar()
			return Token{Type: STRING, Value: value, Pos: p, End: l.position}
		}
		l.readChar()
	}
	return Token{Type: ILLEGAL, Value: l.input[p.Offset:], Pos: p, End: len(l.input), Err: ErrUnterminatedString}
}

func (l *lexer) readExpr() Token {
	p := l.pos()
	l.readChar()
	start := l.position
	for !l.eof() {
		if l.current == '`' {
			value := l.input[start:l.position]
			l.readChar()
			return Token{Type: EXPR, Value: value, Pos: p, End: l.position}
		}
		l.readChar()
	}
	return Token{Type: ILLEGAL, Value: l.input[p.Offset:], Pos: p, End: len(l.input), Err: ErrUnterminatedExpr}
}

func (l *lexer) eof() bool {
	return l.position >= len(l.input)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
