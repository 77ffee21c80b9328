package sql

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/dbmlgen"
	"github.com/syssam/dbmlgen/dialect"
)

// Record is a table row keyed by column name.
type Record map[string]any

// String returns the value stored under key as a string. Missing and NULL
// values yield "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether key holds a non-NULL value.
func (r Record) Has(key string) bool {
	return r[key] != nil
}

// Require returns a ValidationError wrapping ErrRequired for the first of
// keys that is missing, NULL or an empty string.
func (r Record) Require(keys ...string) error {
	for _, k := range keys {
		if !r.Has(k) || r[k] == "" {
			return dbmlgen.NewValidationError(k, dbmlgen.ErrRequired)
		}
	}
	return nil
}

// Table runs record queries against one table. Columns written by Create and
// Update are restricted to the fillable list through Fill by the generated
// services; Table itself accepts any valid column name.
type Table struct {
	drv      dialect.Driver
	name     string
	pk       string
	fillable []string
	cache    dbmlgen.Cache
	ttl      time.Duration
}

// NewTable returns a Table for name with the given primary key column.
func NewTable(drv dialect.Driver, name, pk string, fillable ...string) *Table {
	return &Table{drv: drv, name: name, pk: pk, fillable: fillable}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Driver returns the driver the table runs on.
func (t *Table) Driver() dialect.Driver { return t.drv }

// Fillable returns the mass-assignable columns.
func (t *Table) Fillable() []string { return t.fillable }

// Fill returns the subset of data whose keys are fillable.
func (t *Table) Fill(data Record) Record {
	out := make(Record, len(t.fillable))
	for _, c := range t.fillable {
		if v, ok := data[c]; ok {
			out[c] = v
		}
	}
	return out
}

// All returns every row of the table.
func (t *Table) All(ctx context.Context) ([]Record, error) {
	recs, err := t.query(ctx, "SELECT * FROM "+t.quote(t.name))
	if err != nil {
		return nil, dbmlgen.NewQueryError(t.name, "all", err)
	}
	return recs, nil
}

// Find returns the row whose primary key equals id.
func (t *Table) Find(ctx context.Context, id any) (Record, error) {
	if rec, ok := t.cached(ctx, id); ok {
		return rec, nil
	}
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", t.quote(t.name), t.quote(t.pk), t.placeholder(1))
	recs, err := t.query(ctx, q, id)
	if err != nil {
		return nil, dbmlgen.NewQueryError(t.name, "find", err)
	}
	if len(recs) == 0 {
		return nil, dbmlgen.NewNotFoundErrorWithID(t.name, id)
	}
	t.store(ctx, id, recs[0])
	return recs[0], nil
}

// Where returns the rows whose column equals value.
func (t *Table) Where(ctx context.Context, column string, value any) ([]Record, error) {
	if !isValidIdentifier(column) {
		return nil, dbmlgen.NewQueryError(t.name, "where", fmt.Errorf("invalid column name %q", column))
	}
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s", t.quote(t.name), t.quote(column), t.placeholder(1))
	recs, err := t.query(ctx, q, value)
	if err != nil {
		return nil, dbmlgen.NewQueryError(t.name, "where", err)
	}
	return recs, nil
}

// Create inserts data and returns the new primary key.
func (t *Table) Create(ctx context.Context, data Record) (int64, error) {
	cols, args, err := t.columns(data)
	if err != nil {
		return 0, dbmlgen.NewMutationError(t.name, "create", err)
	}
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.quote(t.name))
	switch {
	case len(cols) > 0:
		quoted := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = t.quote(c)
			marks[i] = t.placeholder(i + 1)
		}
		fmt.Fprintf(&b, " (%s) VALUES (%s)", strings.Join(quoted, ", "), strings.Join(marks, ", "))
	case t.drv.Dialect() == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}

	if t.drv.Dialect() == dialect.Postgres {
		b.WriteString(" RETURNING ")
		b.WriteString(t.quote(t.pk))
		recs, err := t.query(ctx, b.String(), args...)
		if err != nil {
			return 0, t.mutationError("create", err)
		}
		if len(recs) == 0 {
			return 0, nil
		}
		return toInt64(recs[0][t.pk])
	}

	var res sql.Result
	if err := t.drv.Exec(ctx, b.String(), args, &res); err != nil {
		return 0, t.mutationError("create", err)
	}
	return res.LastInsertId()
}

// Update writes data to the row whose primary key equals id and returns the
// number of affected rows. Empty data is a no-op.
func (t *Table) Update(ctx context.Context, id any, data Record) (int64, error) {
	cols, args, err := t.columns(data)
	if err != nil {
		return 0, dbmlgen.NewMutationError(t.name, "update", err)
	}
	if len(cols) == 0 {
		return 0, nil
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = t.quote(c) + " = " + t.placeholder(i+1)
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", t.quote(t.name), strings.Join(sets, ", "), t.quote(t.pk), t.placeholder(len(cols)+1))
	n, err := t.exec(ctx, "update", q, append(args, id)...)
	if err == nil {
		t.evict(ctx, id)
	}
	return n, err
}

// Delete removes the row whose primary key equals id and returns the number
// of affected rows.
func (t *Table) Delete(ctx context.Context, id any) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", t.quote(t.name), t.quote(t.pk), t.placeholder(1))
	n, err := t.exec(ctx, "delete", q, id)
	if err == nil {
		t.evict(ctx, id)
	}
	return n, err
}

func (t *Table) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var res sql.Result
	if err := t.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, t.mutationError(op, err)
	}
	return res.RowsAffected()
}

func (t *Table) mutationError(op string, err error) error {
	if IsConstraintError(err) {
		err = dbmlgen.NewConstraintError(err.Error(), err)
	}
	return dbmlgen.NewMutationError(t.name, op, err)
}

func (t *Table) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	if args == nil {
		args = []any{}
	}
	rows := &Rows{}
	if err := t.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// columns returns the keys of data in sorted order with their values.
func (t *Table) columns(data Record) ([]string, []any, error) {
	cols := make([]string, 0, len(data))
	for c := range data {
		if !isValidIdentifier(c) {
			return nil, nil, fmt.Errorf("invalid column name %q", c)
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = data[c]
	}
	return cols, args, nil
}

func (t *Table) quote(ident string) string {
	return dialect.Quote(t.drv.Dialect(), ident)
}

func (t *Table) placeholder(i int) string {
	if t.drv.Dialect() == dialect.Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

func scanRecords(rows ColumnScanner) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var recs []Record
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = values[i]
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("dialect/sql: unexpected id type %T", v)
}
