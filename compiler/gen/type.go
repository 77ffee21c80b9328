package gen

import (
	"errors"
	"fmt"

	"github.com/syssam/dbmlgen/dbml"
	"github.com/syssam/dbmlgen/naming"
)

// Column names with fixed meaning in the generated code.
const (
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
	DeletedAt = "deleted_at"
)

type (
	// Graph holds the nodes of the generation graph, one per table, in
	// declaration order.
	Graph struct {
		*Config
		// Nodes are the types of the graph.
		Nodes []*Type
		// Relations is the analyzed relationship map.
		Relations Relations
		// Schema is the parsed input.
		Schema *dbml.Schema
	}

	// Type is the generation view of one table.
	Type struct {
		*Config
		// Table is the parsed table.
		Table *dbml.Table
		// Name is the model name: Pascal(Singularize(table)).
		Name string
		// BelongsTo and HasMany are the relations of the table.
		BelongsTo []BelongsTo
		HasMany   []HasMany
	}
)

// NewGraph creates a graph for the schema. In strict mode relationships
// pointing at unknown tables or columns and tables sharing a model name are
// reported as errors; otherwise they are logged and generation goes on.
func NewGraph(c *Config, s *dbml.Schema) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if s == nil {
		return nil, NewSchemaError("", "schema cannot be nil")
	}
	c.defaults()
	g := &Graph{
		Config:    c,
		Schema:    s,
		Relations: AnalyzeRelationships(s, c.Inflector),
	}
	var errs []error
	owner := make(map[string]string, len(s.Tables))
	for _, t := range s.Tables {
		typ, err := NewType(c, t)
		if err != nil {
			return nil, err
		}
		rels := g.Relations.For(t.Name)
		typ.BelongsTo, typ.HasMany = rels.BelongsTo, rels.HasMany
		if prev, ok := owner[typ.Name]; ok {
			if c.Strict {
				errs = append(errs, NewSchemaError(t.Name, fmt.Sprintf("model name %s is already used by table %s", typ.Name, prev)))
			} else {
				c.Logger.Warn("tables share a model name; later files overwrite earlier ones", "model", typ.Name, "table", t.Name, "previous", prev)
			}
		}
		owner[typ.Name] = t.Name
		if plural := c.Inflector.Pluralize(c.Inflector.Singularize(t.Name)); plural != t.Name {
			c.Logger.Debug("table name is not a plural the inflector recognizes", "table", t.Name, "model", typ.Name)
		}
		g.Nodes = append(g.Nodes, typ)
	}
	for _, e := range s.Relationships {
		if err := g.checkEdge(e); err != nil {
			if c.Strict {
				errs = append(errs, err)
				continue
			}
			c.Logger.Debug("unresolved relationship", "error", err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

func (g *Graph) checkEdge(e *dbml.Relationship) error {
	from, to := e.FromTable+"."+e.FromColumn, e.ToTable+"."+e.ToColumn
	for _, end := range []struct{ table, column string }{{e.FromTable, e.FromColumn}, {e.ToTable, e.ToColumn}} {
		t := g.Schema.Table(end.table)
		switch {
		case t == nil:
			return NewEdgeError(from, to, "unknown table "+end.table)
		case !t.HasColumn(end.column):
			return NewEdgeError(from, to, "unknown column "+end.table+"."+end.column)
		}
	}
	return nil
}

// Type returns the node of the named table, or nil.
func (g *Graph) Type(table string) *Type {
	for _, t := range g.Nodes {
		if t.Table.Name == table {
			return t
		}
	}
	return nil
}

// NewType creates the type of one table.
func NewType(c *Config, t *dbml.Table) (*Type, error) {
	if t == nil {
		return nil, NewSchemaError("", "table cannot be nil")
	}
	c.defaults()
	name := naming.Pascal(c.Inflector.Singularize(t.Name))
	if name == "" {
		return nil, NewSchemaError(t.Name, "cannot derive a model name")
	}
	return &Type{Config: c, Table: t, Name: name}, nil
}

// TableName returns the table name.
func (t *Type) TableName() string { return t.Table.Name }

// Columns returns the columns in declaration order.
func (t *Type) Columns() []*dbml.Column { return t.Table.Columns }

// PrimaryKey returns the name of the first primary key column, or "id".
func (t *Type) PrimaryKey() string {
	if pks := t.Table.PrimaryKeys(); len(pks) > 0 {
		return pks[0].Name
	}
	return "id"
}

// Fillable returns the names of the input-mode columns.
func (t *Type) Fillable() []string {
	var cols []string
	for _, c := range t.Table.Columns {
		if c.Metadata.IsInput() {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// HasSoftDelete reports whether the table has a deleted_at column.
func (t *Type) HasSoftDelete() bool { return t.Table.HasColumn(DeletedAt) }

// AutoFields returns the columns populated by the server on create.
func (t *Type) AutoFields() []*dbml.Column {
	var cols []*dbml.Column
	for _, c := range t.Table.Columns {
		if c.Metadata.IsAuto() && c.Metadata.AutoType == dbml.AutoServer {
			cols = append(cols, c)
		}
	}
	return cols
}

// HasRelations reports whether the type has any relation.
func (t *Type) HasRelations() bool { return len(t.BelongsTo)+len(t.HasMany) > 0 }

// ServiceName returns the service type name, e.g. PostService.
func (t *Type) ServiceName() string { return t.Name + "Service" }

// ControllerName returns the controller type name, e.g. PostController.
func (t *Type) ControllerName() string { return t.Name + "Controller" }

// MigrationName returns the migration type name, e.g. CreatePostsTable.
func (t *Type) MigrationName() string { return "Create" + naming.Pascal(t.Table.Name) + "Table" }

// Route returns the base path of the controller, e.g. /api/post.
func (t *Type) Route() string { return "/api/" + naming.Camel(t.Inflector.Singularize(t.Table.Name)) }

// RelationMethod returns the accessor name of a relation, e.g. User or
// Posts.
func RelationMethod(name string) string { return naming.Pascal(name) }
