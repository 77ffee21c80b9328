// Package dbml parses the DBML subset used to describe tables, columns,
// indexes and references into a Schema.
//
//	schema      := (table | ref | other)*
//	table       := 'Table' name ['as' name] [settings] '{' (column | indexes | note)* '}'
//	column      := name type ['[' attr (',' attr)* ']']
//	attr        := 'not null' | 'null' | 'pk' | 'primary key' | 'increment' | 'unique'
//	             | 'default:' value | 'note:' string | 'ref:' ('>' | '-' | '<') name '.' name
//	indexes     := 'indexes' '{' (('(' name (',' name)* ')' | name) [settings])* '}'
//	ref         := 'Ref' [name] ':' endpoint ('>' | '-' | '<') endpoint
//
// Columns are separated by line breaks or commas.
package dbml

// Relationship types.
const (
	ManyToOne = "many_to_one"
	OneToMany = "one_to_many"
)

// Column modes set by note directives.
const (
	ModeInput = "input"
	ModeAuto  = "auto"
)

// Auto types set by the auto: directive.
const (
	AutoDB     = "db"
	AutoServer = "server"
)

// Schema is the parsed form of one DBML document.
type Schema struct {
	Tables        []*Table        `json:"tables" yaml:"tables"`
	Relationships []*Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table is a declared table. Columns keep declaration order.
type Table struct {
	Name    string    `json:"name" yaml:"name"`
	Alias   string    `json:"alias,omitempty" yaml:"alias,omitempty"`
	Columns []*Column `json:"columns" yaml:"columns"`
	Indexes []*Index  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	Pos     Position  `json:"-" yaml:"-"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	if i := t.columnIndex(name); i >= 0 {
		return t.Columns[i]
	}
	return nil
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

// PrimaryKeys returns the primary key columns in declaration order.
func (t *Table) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column is a single column declaration.
type Column struct {
	Name          string        `json:"name" yaml:"name"`
	RawType       string        `json:"raw_type" yaml:"raw_type"`
	Type          string        `json:"type" yaml:"type"`
	Nullable      bool          `json:"nullable" yaml:"nullable"`
	PrimaryKey    bool          `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	AutoIncrement bool          `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Unique        bool          `json:"unique,omitempty" yaml:"unique,omitempty"`
	Default       *string       `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultExpr   bool          `json:"default_expr,omitempty" yaml:"default_expr,omitempty"`
	Metadata      Metadata      `json:"metadata" yaml:"metadata"`
	Reference     *Relationship `json:"reference,omitempty" yaml:"reference,omitempty"`
	Pos           Position      `json:"-" yaml:"-"`
}

// Metadata holds the directives found in a column note.
type Metadata struct {
	Mode        string   `json:"mode" yaml:"mode"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	AutoType    string   `json:"auto_type,omitempty" yaml:"auto_type,omitempty"`
	AutoSource  string   `json:"auto_source,omitempty" yaml:"auto_source,omitempty"`
	Validations []string `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// IsInput reports whether the column accepts client input.
func (m Metadata) IsInput() bool { return m.Mode == ModeInput }

// IsAuto reports whether the column is populated automatically.
func (m Metadata) IsAuto() bool { return m.Mode == ModeAuto }

// Index is a named group of columns.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Relationship is a raw reference edge between two columns.
type Relationship struct {
	Type       string `json:"type" yaml:"type"`
	FromTable  string `json:"from_table" yaml:"from_table"`
	FromColumn string `json:"from_column" yaml:"from_column"`
	ToTable    string `json:"to_table" yaml:"to_table"`
	ToColumn   string `json:"to_column" yaml:"to_column"`
}

// IsManyToOne reports whether the edge points from a foreign key to its owner.
func (r *Relationship) IsManyToOne() bool { return r.Type == ManyToOne }
