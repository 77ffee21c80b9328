package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/dbmlgen/dbml"
)

// TableOptions close every CREATE TABLE statement.
const TableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"

// MigrationDDL returns the statements that create the table of t: the
// CREATE TABLE statement, one CREATE INDEX per index, then one foreign key
// constraint per referencing column.
func MigrationDDL(t *Type) []string {
	stmts := []string{createTable(t.Table)}
	for _, idx := range t.Table.Indexes {
		stmts = append(stmts, createIndex(t.Table.Name, idx))
	}
	for _, c := range t.Table.Columns {
		if c.Reference != nil {
			stmts = append(stmts, foreignKey(c.Reference))
		}
	}
	return stmts
}

// DropDDL returns the statement reverting MigrationDDL.
func DropDDL(t *Type) string {
	return "DROP TABLE IF EXISTS " + t.Table.Name
}

func createTable(t *dbml.Table) string {
	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		lines = append(lines, "  "+columnDDL(c))
	}
	if pks := t.PrimaryKeys(); len(pks) > 0 {
		names := make([]string, len(pks))
		for i, c := range pks {
			names[i] = c.Name
		}
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n) %s", t.Name, strings.Join(lines, ",\n"), TableOptions)
}

func columnDDL(c *dbml.Column) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	timestamp := isTimestamp(c.Name)
	switch c.Name {
	case CreatedAt, DeletedAt:
		b.WriteString("TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
	case UpdatedAt:
		b.WriteString("TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP")
	default:
		b.WriteString(strings.ToUpper(c.RawType))
	}
	// MySQL forces primary key columns to NOT NULL.
	if c.Nullable && !c.PrimaryKey {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if c.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if c.Default != nil && !c.AutoIncrement && !timestamp {
		b.WriteString(" DEFAULT ")
		b.WriteString(FormatDefault(c))
	}
	return b.String()
}

func isTimestamp(name string) bool {
	return name == CreatedAt || name == UpdatedAt || name == DeletedAt
}

// FormatDefault renders the default value of c as a SQL literal. null, true
// and false become NULL, 1 and 0; numbers and expressions are kept as
// written; anything else is quoted.
func FormatDefault(c *dbml.Column) string {
	if c.Default == nil {
		return "NULL"
	}
	v := *c.Default
	if c.DefaultExpr {
		return v
	}
	switch strings.ToLower(v) {
	case "null":
		return "NULL"
	case "true":
		return "1"
	case "false":
		return "0"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func createIndex(table string, idx *dbml.Index) string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, idx.Name, table, strings.Join(idx.Columns, ", "))
}

func foreignKey(r *dbml.Relationship) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE CASCADE",
		r.FromTable, r.FromTable, r.FromColumn, r.FromColumn, r.ToTable, r.ToColumn)
}
