package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbmlgen/dbml"
	"github.com/syssam/dbmlgen/naming"
)

func mustParse(t *testing.T, input string) *dbml.Schema {
	t.Helper()
	s, err := dbml.Parse(input)
	require.NoError(t, err)
	return s
}

func TestAnalyzeRelationships(t *testing.T) {
	s := mustParse(t, `
Table categories { id int [pk, increment] }
Table products { id int [pk, increment], category_id int [ref: > categories.id] }
`)
	rels := AnalyzeRelationships(s, nil)

	assert.Equal(t, []BelongsTo{
		{Name: "category", Table: "categories", ForeignKey: "category_id", OwnerKey: "id"},
	}, rels["products"].BelongsTo)
	assert.Empty(t, rels["products"].HasMany)
	assert.Equal(t, []HasMany{
		{Name: "products", Table: "products", ForeignKey: "category_id", LocalKey: "id"},
	}, rels["categories"].HasMany)
	assert.Empty(t, rels["categories"].BelongsTo)
}

func TestAnalyzeRelationships_SelfReference(t *testing.T) {
	s := mustParse(t, `
Table categories {
  id int [pk, increment]
  parent_id int [null, ref: > categories.id]
}`)
	rels := AnalyzeRelationships(s, naming.Simple{})

	cats := rels["categories"]
	require.Len(t, cats.BelongsTo, 1)
	assert.Equal(t, "category", cats.BelongsTo[0].Name)
	require.Len(t, cats.HasMany, 1)
	assert.Equal(t, HasMany{Name: "children", Table: "categories", ForeignKey: "parent_id", LocalKey: "id"}, cats.HasMany[0])
}

func TestAnalyzeRelationships_Collisions(t *testing.T) {
	s := mustParse(t, `
Table users { id int [pk] }
Table messages {
  id int [pk]
  sender_id int [ref: > users.id]
  recipient_id int [ref: > users.id]
}`)
	rels := AnalyzeRelationships(s, nil)

	var names []string
	for _, b := range rels["messages"].BelongsTo {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"user", "user_by_recipient_id"}, names)

	names = nil
	for _, h := range rels["users"].HasMany {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"messages", "messages_by_recipient_id"}, names)
}

func TestAnalyzeRelationships_ReservedNames(t *testing.T) {
	s := mustParse(t, `
Table drivers { id int [pk] }
Table tables { id int [pk] }
Table trips {
  id int [pk]
  driver_id int [ref: > drivers.id]
  table_id int [ref: > tables.id]
}
Table shows { id int [pk] }
Table episodes { id int [pk], show_id int [ref: > shows.id] }
`)
	rels := AnalyzeRelationships(s, nil)

	var names []string
	for _, b := range rels["trips"].BelongsTo {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"driver_by_driver_id", "table_by_table_id"}, names)
	assert.Equal(t, "show_by_show_id", rels["episodes"].BelongsTo[0].Name)
	assert.Equal(t, "trips", rels["drivers"].HasMany[0].Name)
}

func TestAnalyzeRelationships_OneToManyIgnored(t *testing.T) {
	s := mustParse(t, `
Table users { id int [pk] }
Table profiles { id int [pk], user_id int [ref: - users.id] }
`)
	require.Len(t, s.Relationships, 1)

	rels := AnalyzeRelationships(s, nil)
	assert.Zero(t, rels.For("users").Len())
	assert.Zero(t, rels.For("profiles").Len())
	assert.Zero(t, rels.For("unknown").Len())
}

func TestAnalyzeRelationships_Inflector(t *testing.T) {
	s := mustParse(t, `
Table people { id int [pk] }
Table addresses { id int [pk], person_id int [ref: > people.id] }
`)
	simple := AnalyzeRelationships(s, naming.Simple{})
	assert.Equal(t, "people", simple["addresses"].BelongsTo[0].Name)

	rules := AnalyzeRelationships(s, naming.NewRules())
	assert.Equal(t, "person", rules["addresses"].BelongsTo[0].Name)
}
