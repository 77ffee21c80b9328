package dbml

import (
	"errors"
	"fmt"
	"strings"
)

// Option configures Parse.
type Option func(*parser)

// Strict makes Parse report every construct it would otherwise skip, along
// with duplicate declarations and references to undeclared tables or columns.
func Strict() Option {
	return func(p *parser) { p.strict = true }
}

// Parse builds a Schema from DBML text. Parsing is best effort: a column,
// index or reference that does not fit the grammar is dropped and the rest of
// the document is still read. With Strict, each dropped construct is reported
// as a *SyntaxError and the joined errors are returned with the partial
// schema.
func Parse(text string, opts ...Option) (*Schema, error) {
	p := &parser{
		src:    text,
		toks:   Tokenize(text),
		schema: &Schema{},
		refPos: make(map[*Relationship]Position),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.parseSchema()
	p.resolveRefs()
	if p.strict {
		p.validate()
	}
	return p.schema, errors.Join(p.errs...)
}

// Top-level blocks outside the supported subset.
var skippedBlocks = map[string]struct{}{
	"enum":         {},
	"project":      {},
	"tablegroup":   {},
	"tablepartial": {},
	"note":         {},
	"records":      {},
}

type parser struct {
	src    string
	toks   []Token
	pos    int
	strict bool
	errs   []error
	schema *Schema
	refs   []*Relationship // top-level Ref edges
	refPos map[*Relationship]Position
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) Token {
	return p.toks[min(p.pos+n, len(p.toks)-1)]
}

// peekPast returns the first token at or after pos+n that is not a NEWLINE.
func (p *parser) peekPast(n int) Token {
	i := min(p.pos+n, len(p.toks)-1)
	for p.toks[i].Type == NEWLINE {
		i++
	}
	return p.toks[i]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) skip(types ...TokenType) {
	for {
		tt := p.peek().Type
		found := false
		for _, t := range types {
			if tt == t {
				found = true
				break
			}
		}
		if !found {
			return
		}
		p.next()
	}
}

func (p *parser) expect(tt TokenType, context string) bool {
	if tok := p.peek(); tok.Type != tt {
		p.mismatch(tok, "expected %s %s, got %s", tt, context, tok)
		return false
	}
	p.next()
	return true
}

func (p *parser) mismatch(tok Token, format string, args ...any) {
	if !p.strict {
		return
	}
	p.errs = append(p.errs, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...), Cause: tok.Err})
}

func (p *parser) errorAt(pos Position, format string, args ...any) {
	if !p.strict {
		return
	}
	p.errs = append(p.errs, &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// skipLine drops the rest of a malformed line. It stops before a line break,
// a closing brace, or a comma outside brackets. depth is the number of
// brackets already open.
func (p *parser) skipLine(depth int) {
	for {
		switch p.peek().Type {
		case EOF, NEWLINE, RBRACE:
			return
		case COMMA:
			if depth <= 0 {
				return
			}
		case LBRACK, LPAREN:
			depth++
		case RBRACK, RPAREN:
			depth--
		}
		p.next()
	}
}

// skipBlock drops a top-level statement together with its braced body.
func (p *parser) skipBlock() {
	depth := 0
	for {
		switch p.peek().Type {
		case EOF:
			return
		case LBRACE:
			depth++
		case RBRACE:
			depth--
			if depth <= 0 {
				p.next()
				return
			}
		case NEWLINE:
			if depth == 0 && p.peekPast(0).Type != LBRACE {
				return
			}
		}
		p.next()
	}
}

// skipBalanced drops an open token and everything up to its matching close.
func (p *parser) skipBalanced(open, close TokenType) {
	depth := 0
	for {
		tok := p.peek()
		switch tok.Type {
		case EOF:
			return
		case NEWLINE:
			if open == LBRACK {
				return
			}
		case open:
			depth++
		case close:
			depth--
			if depth <= 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

func isKeyword(tok Token, kw string) bool {
	return tok.Type == IDENT && strings.EqualFold(tok.Value, kw)
}

func (p *parser) name() (string, bool) {
	tok := p.peek()
	if tok.Type == IDENT || tok.Type == STRING {
		p.next()
		return tok.Value, true
	}
	return "", false
}

// endpoint reads [schema.]table.column.
func (p *parser) endpoint() (table, column string, ok bool) {
	var parts []string
	for {
		n, ok := p.name()
		if !ok {
			return "", "", false
		}
		parts = append(parts, n)
		if p.peek().Type != DOT {
			break
		}
		p.next()
	}
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}

func (p *parser) parseSchema() {
	for {
		p.skip(NEWLINE)
		tok := p.peek()
		switch {
		case tok.Type == EOF:
			return
		case isKeyword(tok, "table"):
			p.parseTable()
		case isKeyword(tok, "ref"):
			p.parseRef()
		case tok.Type == IDENT:
			if _, ok := skippedBlocks[strings.ToLower(tok.Value)]; !ok {
				p.mismatch(tok, "unexpected %s", tok)
			}
			p.skipBlock()
		default:
			p.mismatch(tok, "unexpected %s", tok)
			p.next()
		}
	}
}

func (p *parser) parseTable() {
	kw := p.next()
	name, ok := p.name()
	if !ok {
		p.mismatch(p.peek(), "expected table name, got %s", p.peek())
		p.skipBlock()
		return
	}
	for p.peek().Type == DOT {
		p.next()
		if name, ok = p.name(); !ok {
			p.mismatch(p.peek(), "expected table name, got %s", p.peek())
			p.skipBlock()
			return
		}
	}
	t := &Table{Name: name, Pos: kw.Pos}
	if isKeyword(p.peek(), "as") {
		p.next()
		if t.Alias, ok = p.name(); !ok {
			p.mismatch(p.peek(), "expected alias for table %s, got %s", name, p.peek())
		}
	}
	if p.peek().Type == LBRACK {
		p.skipBalanced(LBRACK, RBRACK)
	}
	p.skip(NEWLINE)
	if !p.expect(LBRACE, "after table "+name) {
		p.skipBlock()
		return
	}
	p.parseTableBody(t)
	p.addTable(t)
}

func (p *parser) parseTableBody(t *Table) {
	for {
		p.skip(NEWLINE, COMMA)
		tok := p.peek()
		switch {
		case tok.Type == RBRACE:
			p.next()
			return
		case tok.Type == EOF:
			p.mismatch(tok, "unterminated table %s", t.Name)
			return
		case isKeyword(tok, "indexes") && p.peekPast(1).Type == LBRACE:
			p.parseIndexes(t)
		case isKeyword(tok, "note") && (p.peekAt(1).Type == COLON || p.peekPast(1).Type == LBRACE):
			p.skipTableNote()
		default:
			p.parseColumn(t)
		}
	}
}

func (p *parser) skipTableNote() {
	p.next()
	if p.peek().Type == COLON {
		p.next()
		if tok := p.peek(); tok.Type == STRING {
			p.next()
			return
		}
		p.mismatch(p.peek(), "expected note text, got %s", p.peek())
		p.skipLine(0)
		return
	}
	p.skip(NEWLINE)
	p.skipBalanced(LBRACE, RBRACE)
}

func (p *parser) addTable(t *Table) {
	for i, prev := range p.schema.Tables {
		if prev.Name == t.Name {
			p.errorAt(t.Pos, "duplicate table %s (first declared at %s)", t.Name, prev.Pos)
			p.schema.Tables[i] = t
			return
		}
	}
	p.schema.Tables = append(p.schema.Tables, t)
}

func (p *parser) parseColumn(t *Table) {
	start := p.peek()
	name, ok := p.name()
	if !ok {
		p.mismatch(start, "expected column in table %s, got %s", t.Name, start)
		p.skipLine(0)
		return
	}
	rawType, ok := p.columnType()
	if !ok {
		p.mismatch(p.peek(), "expected type for column %s.%s, got %s", t.Name, name, p.peek())
		p.skipLine(0)
		return
	}
	col := &Column{
		Name:     name,
		RawType:  rawType,
		Type:     NormalizeType(rawType),
		Nullable: true,
		Metadata: Metadata{Mode: ModeInput},
		Pos:      start.Pos,
	}
	if p.peek().Type == LBRACK && !p.columnSettings(t, col) {
		p.skipLine(1)
		return
	}
	switch tok := p.peek(); tok.Type {
	case NEWLINE, COMMA, RBRACE, EOF:
	case IDENT, STRING:
		if !p.sameLineColumn() {
			p.mismatch(tok, "unexpected %s after column %s.%s", tok, t.Name, name)
			p.addColumn(t, col)
			p.skipLine(0)
			return
		}
	default:
		p.mismatch(tok, "unexpected %s after column %s.%s", tok, t.Name, name)
		p.skipLine(0)
		return
	}
	p.addColumn(t, col)
}

// sameLineColumn reports whether the tokens following a column on the same
// line declare another column: a name followed by a known type, or by any
// type with a settings list. Other trailing text is dropped.
func (p *parser) sameLineColumn() bool {
	typ := p.peekAt(1)
	if typ.Type != IDENT && typ.Type != STRING {
		return false
	}
	return KnownType(typ.Value) || p.peekAt(2).Type == LBRACK
}

// columnType reads a type name with an optional size specifier and returns it
// as written in the source.
func (p *parser) columnType() (string, bool) {
	tok := p.peek()
	switch tok.Type {
	case STRING:
		p.next()
		return tok.Value, true
	case IDENT:
	default:
		return "", false
	}
	p.next()
	end := tok.End
	for p.peek().Type == DOT && p.peekAt(1).Type == IDENT {
		p.next()
		end = p.next().End
	}
	if p.peek().Type == LPAREN {
		for depth := 0; ; {
			t := p.peek()
			switch t.Type {
			case EOF, NEWLINE, RBRACE, LBRACK, RBRACK:
				return "", false
			case LPAREN:
				depth++
			case RPAREN:
				depth--
			}
			p.next()
			if depth == 0 {
				end = t.End
				break
			}
		}
	}
	return p.src[tok.Pos.Offset:end], true
}

func (p *parser) columnSettings(t *Table, col *Column) bool {
	p.next()
	for {
		switch tok := p.peek(); tok.Type {
		case RBRACK:
			p.next()
			return true
		case EOF, NEWLINE, RBRACE:
			p.mismatch(tok, "unterminated settings for column %s.%s", t.Name, col.Name)
			return false
		}
		if !p.columnSetting(t, col) {
			return false
		}
		switch tok := p.peek(); tok.Type {
		case COMMA:
			p.next()
		case RBRACK:
		case EOF, NEWLINE, RBRACE:
			p.mismatch(tok, "unterminated settings for column %s.%s", t.Name, col.Name)
			return false
		default:
			p.mismatch(tok, "expected , or ] in settings of column %s.%s, got %s", t.Name, col.Name, tok)
			return false
		}
	}
}

func (p *parser) columnSetting(t *Table, col *Column) bool {
	tok := p.peek()
	if tok.Type != IDENT {
		p.mismatch(tok, "unexpected %s in settings of column %s.%s", tok, t.Name, col.Name)
		return false
	}
	p.next()
	switch strings.ToLower(tok.Value) {
	case "not":
		if !isKeyword(p.peek(), "null") {
			p.mismatch(p.peek(), "expected null after not, got %s", p.peek())
			return false
		}
		p.next()
		col.Nullable = false
	case "null":
		col.Nullable = true
	case "pk":
		col.PrimaryKey = true
	case "primary":
		if !isKeyword(p.peek(), "key") {
			p.mismatch(p.peek(), "expected key after primary, got %s", p.peek())
			return false
		}
		p.next()
		col.PrimaryKey = true
	case "increment":
		col.AutoIncrement = true
	case "unique":
		col.Unique = true
	case "default":
		return p.expect(COLON, "after default") && p.defaultValue(col)
	case "note":
		if !p.expect(COLON, "after note") {
			return false
		}
		s := p.peek()
		if s.Type != STRING {
			p.mismatch(s, "expected note text for column %s.%s, got %s", t.Name, col.Name, s)
			return false
		}
		p.next()
		col.Metadata = ParseNote(s.Value)
	case "ref":
		return p.expect(COLON, "after ref") && p.inlineRef(t, col)
	default:
		p.skipSettingValue()
	}
	return true
}

// skipSettingValue drops an unsupported setting such as check: `...`.
func (p *parser) skipSettingValue() {
	depth := 0
	for {
		switch p.peek().Type {
		case EOF, NEWLINE, RBRACE:
			return
		case COMMA, RBRACK:
			if depth == 0 {
				return
			}
			if p.peek().Type == RBRACK {
				depth--
			}
		case LPAREN, LBRACK:
			depth++
		case RPAREN:
			depth--
		}
		p.next()
	}
}

func (p *parser) defaultValue(col *Column) bool {
	tok := p.peek()
	var v string
	switch tok.Type {
	case STRING, NUMBER:
		p.next()
		v = strings.TrimSpace(tok.Value)
	case EXPR:
		p.next()
		v = strings.TrimSpace(tok.Value)
		col.DefaultExpr = true
	case IDENT:
		p.next()
		v = tok.Value
		if p.peek().Type == LPAREN {
			end := tok.End
			for depth := 0; ; {
				t := p.peek()
				if t.Type == EOF || t.Type == NEWLINE {
					p.mismatch(t, "unterminated default for column %s", col.Name)
					return false
				}
				p.next()
				if t.Type == LPAREN {
					depth++
				} else if t.Type == RPAREN {
					depth--
				}
				if depth == 0 {
					end = t.End
					break
				}
			}
			v = p.src[tok.Pos.Offset:end]
			col.DefaultExpr = true
		}
	case MINUS:
		p.next()
		n := p.peek()
		if n.Type != NUMBER {
			p.mismatch(n, "expected number after -, got %s", n)
			return false
		}
		p.next()
		v = "-" + n.Value
	default:
		p.mismatch(tok, "expected default value for column %s, got %s", col.Name, tok)
		return false
	}
	col.Default = &v
	return true
}

func (p *parser) inlineRef(t *Table, col *Column) bool {
	op := p.peek()
	typ := ManyToOne
	switch op.Type {
	case GT:
	case MINUS, LT:
		typ = OneToMany
	default:
		p.mismatch(op, "expected >, - or < in ref of column %s.%s, got %s", t.Name, col.Name, op)
		return false
	}
	p.next()
	table, column, ok := p.endpoint()
	if !ok {
		p.mismatch(p.peek(), "expected table.column in ref of column %s.%s", t.Name, col.Name)
		return false
	}
	col.Reference = &Relationship{
		Type:       typ,
		FromTable:  t.Name,
		FromColumn: col.Name,
		ToTable:    table,
		ToColumn:   column,
	}
	return true
}

func (p *parser) addColumn(t *Table, col *Column) {
	if i := t.columnIndex(col.Name); i >= 0 {
		p.errorAt(col.Pos, "duplicate column %s.%s", t.Name, col.Name)
		t.Columns[i] = col
	} else {
		t.Columns = append(t.Columns, col)
	}
	if col.Reference != nil {
		p.schema.Relationships = append(p.schema.Relationships, col.Reference)
		p.refPos[col.Reference] = col.Pos
	}
}

func (p *parser) parseIndexes(t *Table) {
	p.next()
	p.skip(NEWLINE)
	p.next()
	for {
		p.skip(NEWLINE, COMMA)
		switch tok := p.peek(); tok.Type {
		case RBRACE:
			p.next()
			return
		case EOF:
			p.mismatch(tok, "unterminated indexes of table %s", t.Name)
			return
		}
		idx, ok := p.index(t)
		if !ok {
			p.skipLine(0)
			continue
		}
		t.Indexes = append(t.Indexes, idx)
	}
}

func (p *parser) index(t *Table) (*Index, bool) {
	var cols []string
	switch tok := p.peek(); tok.Type {
	case LPAREN:
		p.next()
	columns:
		for {
			c := p.peek()
			switch c.Type {
			case IDENT, STRING, EXPR:
				p.next()
				cols = append(cols, c.Value)
			default:
				p.mismatch(c, "expected index column in table %s, got %s", t.Name, c)
				return nil, false
			}
			switch sep := p.peek(); sep.Type {
			case COMMA:
				p.next()
			case RPAREN:
				p.next()
				break columns
			default:
				p.mismatch(sep, "expected , or ) in index of table %s, got %s", t.Name, sep)
				return nil, false
			}
		}
	case IDENT, STRING, EXPR:
		p.next()
		cols = []string{tok.Value}
	default:
		p.mismatch(tok, "expected index in table %s, got %s", t.Name, tok)
		return nil, false
	}
	idx := &Index{Columns: cols}
	if p.peek().Type == LBRACK && !p.indexSettings(t, idx) {
		return nil, false
	}
	switch tok := p.peek(); tok.Type {
	case NEWLINE, COMMA, RBRACE, EOF:
	default:
		p.mismatch(tok, "unexpected %s after index in table %s", tok, t.Name)
		return nil, false
	}
	if idx.Name == "" {
		idx.Name = "idx_" + strings.Join(cols, "_")
	}
	return idx, true
}

func (p *parser) indexSettings(t *Table, idx *Index) bool {
	p.next()
	for {
		tok := p.peek()
		switch tok.Type {
		case RBRACK:
			p.next()
			return true
		case IDENT:
			p.next()
			switch strings.ToLower(tok.Value) {
			case "unique", "pk":
				idx.Unique = true
			case "name":
				if !p.expect(COLON, "after name") {
					return false
				}
				n, ok := p.name()
				if !ok {
					p.mismatch(p.peek(), "expected index name in table %s, got %s", t.Name, p.peek())
					return false
				}
				idx.Name = n
			default:
				p.skipSettingValue()
			}
		default:
			p.mismatch(tok, "unexpected %s in index settings of table %s", tok, t.Name)
			return false
		}
		switch sep := p.peek(); sep.Type {
		case COMMA:
			p.next()
		case RBRACK:
		default:
			p.mismatch(sep, "expected , or ] in index settings of table %s, got %s", t.Name, sep)
			return false
		}
	}
}

func (p *parser) parseRef() {
	p.next()
	if tt := p.peek().Type; tt == IDENT || tt == STRING {
		p.next()
	}
	if p.peek().Type == COLON {
		p.next()
		if !p.refLine() {
			p.skipLine(0)
		}
		return
	}
	p.skip(NEWLINE)
	if !p.expect(LBRACE, "after Ref") {
		p.skipBlock()
		return
	}
	for {
		p.skip(NEWLINE, COMMA)
		switch tok := p.peek(); tok.Type {
		case RBRACE:
			p.next()
			return
		case EOF:
			p.mismatch(tok, "unterminated Ref block")
			return
		}
		if !p.refLine() {
			p.skipLine(0)
		}
	}
}

// refLine reads "a.x > b.y". A "<" edge is stored in its many_to_one form.
func (p *parser) refLine() bool {
	start := p.peek()
	ft, fc, ok := p.endpoint()
	if !ok {
		p.mismatch(start, "expected table.column in Ref, got %s", start)
		return false
	}
	op := p.peek()
	if op.Type != GT && op.Type != LT && op.Type != MINUS {
		p.mismatch(op, "expected >, < or - in Ref, got %s", op)
		return false
	}
	p.next()
	tt, tc, ok := p.endpoint()
	if !ok {
		p.mismatch(p.peek(), "expected table.column in Ref, got %s", p.peek())
		return false
	}
	if p.peek().Type == LBRACK {
		p.skipBalanced(LBRACK, RBRACK)
	}
	rel := &Relationship{Type: ManyToOne, FromTable: ft, FromColumn: fc, ToTable: tt, ToColumn: tc}
	switch op.Type {
	case LT:
		rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn = tt, tc, ft, fc
	case MINUS:
		rel.Type = OneToMany
	}
	p.schema.Relationships = append(p.schema.Relationships, rel)
	p.refs = append(p.refs, rel)
	p.refPos[rel] = start.Pos
	return true
}

// resolveRefs attaches top-level Ref edges to their referencing column.
func (p *parser) resolveRefs() {
	for _, r := range p.refs {
		t := p.schema.Table(r.FromTable)
		if t == nil {
			continue
		}
		if c := t.Column(r.FromColumn); c != nil && c.Reference == nil {
			c.Reference = r
		}
	}
}

func (p *parser) validate() {
	for _, r := range p.schema.Relationships {
		pos := p.refPos[r]
		for _, end := range [][2]string{{r.FromTable, r.FromColumn}, {r.ToTable, r.ToColumn}} {
			t := p.schema.Table(end[0])
			switch {
			case t == nil:
				p.errorAt(pos, "reference to unknown table %s", end[0])
			case !t.HasColumn(end[1]):
				p.errorAt(pos, "reference to unknown column %s.%s", end[0], end[1])
			}
		}
	}
	for _, t := range p.schema.Tables {
		for _, idx := range t.Indexes {
			for _, c := range idx.Columns {
				if !t.HasColumn(c) {
					p.errorAt(t.Pos, "index %s references unknown column %s.%s", idx.Name, t.Name, c)
				}
			}
		}
	}
}
