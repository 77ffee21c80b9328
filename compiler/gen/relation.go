package gen

import (
	"strconv"

	"github.com/syssam/dbmlgen/dbml"
	"github.com/syssam/dbmlgen/naming"
)

// BelongsTo is the owning side of a many_to_one edge, seen from the table
// holding the foreign key.
type BelongsTo struct {
	Name       string `json:"name" yaml:"name"`
	Table      string `json:"table" yaml:"table"`
	ForeignKey string `json:"foreign_key" yaml:"foreign_key"`
	OwnerKey   string `json:"owner_key" yaml:"owner_key"`
}

// HasMany is the referenced side of a many_to_one edge.
type HasMany struct {
	Name       string `json:"name" yaml:"name"`
	Table      string `json:"table" yaml:"table"`
	ForeignKey string `json:"foreign_key" yaml:"foreign_key"`
	LocalKey   string `json:"local_key" yaml:"local_key"`
}

// TableRelations lists the relations of one table in discovery order.
type TableRelations struct {
	BelongsTo []BelongsTo `json:"belongs_to,omitempty" yaml:"belongs_to,omitempty"`
	HasMany   []HasMany   `json:"has_many,omitempty" yaml:"has_many,omitempty"`

	taken map[string]bool
}

// Len returns the number of relations.
func (r *TableRelations) Len() int { return len(r.BelongsTo) + len(r.HasMany) }

// reservedMethods are accessor names a relation cannot take. Models embed
// *sql.Table and so promote its field and methods, services define GetAll
// and controllers define GetIndex and GetShow.
var reservedMethods = map[string]bool{
	"Table":     true,
	"Name":      true,
	"Driver":    true,
	"Fillable":  true,
	"Fill":      true,
	"All":       true,
	"Find":      true,
	"Where":     true,
	"Create":    true,
	"Update":    true,
	"Delete":    true,
	"WithCache": true,
	"Index":     true,
	"Show":      true,
}

// claim reserves a relation name on the table. A name already in use, or
// one whose accessor is reserved, is suffixed with the foreign key: a second
// "user" edge through author_id becomes "user_by_author_id" and a "driver"
// edge through driver_id becomes "driver_by_driver_id".
func (r *TableRelations) claim(name, foreignKey string) string {
	if r.taken == nil {
		r.taken = make(map[string]bool)
	}
	if r.taken[name] || reservedMethods[RelationMethod(name)] {
		base := name + "_by_" + foreignKey
		name = base
		for i := 2; r.taken[name]; i++ {
			name = base + "_" + strconv.Itoa(i)
		}
	}
	r.taken[name] = true
	return name
}

// Relations maps table names to their analyzed relations.
type Relations map[string]*TableRelations

// For returns the relations of table, never nil.
func (r Relations) For(table string) *TableRelations {
	if tr, ok := r[table]; ok {
		return tr
	}
	return &TableRelations{}
}

func (r Relations) table(name string) *TableRelations {
	tr, ok := r[name]
	if !ok {
		tr = &TableRelations{}
		r[name] = tr
	}
	return tr
}

// AnalyzeRelationships derives the belongsTo and hasMany lists from the
// many_to_one edges of s. one_to_many edges are ignored. Every table of s
// has an entry. A nil inflector means naming.Simple.
func AnalyzeRelationships(s *dbml.Schema, inf naming.Inflector) Relations {
	if inf == nil {
		inf = naming.Simple{}
	}
	rels := make(Relations, len(s.Tables))
	for _, t := range s.Tables {
		rels.table(t.Name)
	}
	for _, e := range s.Relationships {
		if !e.IsManyToOne() {
			continue
		}
		from := rels.table(e.FromTable)
		from.BelongsTo = append(from.BelongsTo, BelongsTo{
			Name:       from.claim(inf.Singularize(e.ToTable), e.FromColumn),
			Table:      e.ToTable,
			ForeignKey: e.FromColumn,
			OwnerKey:   e.ToColumn,
		})
		name := e.FromTable
		if e.FromTable == e.ToTable {
			name = "children"
		}
		to := rels.table(e.ToTable)
		to.HasMany = append(to.HasMany, HasMany{
			Name:       to.claim(name, e.FromColumn),
			Table:      e.FromTable,
			ForeignKey: e.FromColumn,
			LocalKey:   e.ToColumn,
		})
	}
	return rels
}
