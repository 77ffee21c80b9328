package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dbmlgen"
	"github.com/syssam/dbmlgen/dialect"
)

func newMockTable(t *testing.T, name string) (*Table, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTable(OpenDB(name, db), "products", "id", "name", "price"), mock
}

func TestTable_Find(t *testing.T) {
	tbl, mock := newMockTable(t, dialect.MySQL)
	ctx := context.Background()

	mock.ExpectQuery("SELECT * FROM `products` WHERE `id` = ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Pen"))
	rec, err := tbl.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])
	assert.Equal(t, "Pen", rec.String("name"))

	mock.ExpectQuery("SELECT * FROM `products` WHERE `id` = ?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	_, err = tbl.Find(ctx, 2)
	require.Error(t, err)
	assert.True(t, dbmlgen.IsNotFound(err))
	assert.EqualError(t, err, "dbmlgen: products not found (id=2)")

	mock.ExpectQuery("SELECT * FROM `products` WHERE `id` = ?").
		WithArgs(3).
		WillReturnError(errors.New("connection reset"))
	_, err = tbl.Find(ctx, 3)
	assert.EqualError(t, err, "dbmlgen: querying products (find): dialect/sql: query: connection reset")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_AllAndWhere(t *testing.T) {
	tbl, mock := newMockTable(t, dialect.Postgres)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT * FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	all, err := tbl.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mock.ExpectQuery(`SELECT * FROM "products" WHERE "category_id" = $1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id"}).AddRow(int64(7), int64(4)))
	recs, err := tbl.Where(ctx, "category_id", 4)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(7), recs[0]["id"])

	_, err = tbl.Where(ctx, "id; DROP TABLE products", 1)
	assert.ErrorContains(t, err, "invalid column name")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("mysql", func(t *testing.T) {
		tbl, mock := newMockTable(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO `products` (`name`, `price`) VALUES (?, ?)").
			WithArgs("Pen", 2.5).
			WillReturnResult(sqlmock.NewResult(5, 1))
		id, err := tbl.Create(ctx, Record{"price": 2.5, "name": "Pen"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("postgres", func(t *testing.T) {
		tbl, mock := newMockTable(t, dialect.Postgres)
		mock.ExpectQuery(`INSERT INTO "products" ("name") VALUES ($1) RETURNING "id"`).
			WithArgs("Pen").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
		id, err := tbl.Create(ctx, Record{"name": "Pen"})
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		tbl, mock := newMockTable(t, dialect.SQLite)
		mock.ExpectExec(`INSERT INTO "products" DEFAULT VALUES`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		_, err := tbl.Create(ctx, Record{})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("constraint", func(t *testing.T) {
		tbl, mock := newMockTable(t, dialect.MySQL)
		mock.ExpectExec("INSERT INTO `products` (`name`) VALUES (?)").
			WithArgs("Pen").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Pen'"})
		_, err := tbl.Create(ctx, Record{"name": "Pen"})
		require.Error(t, err)
		assert.True(t, dbmlgen.IsConstraintError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTable_UpdateDelete(t *testing.T) {
	tbl, mock := newMockTable(t, dialect.MySQL)
	ctx := context.Background()

	mock.ExpectExec("UPDATE `products` SET `name` = ?, `price` = ? WHERE `id` = ?").
		WithArgs("Ink", 3.0, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := tbl.Update(ctx, 3, Record{"name": "Ink", "price": 3.0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tbl.Update(ctx, 3, Record{})
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec("DELETE FROM `products` WHERE `id` = ?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = tbl.Delete(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Cache(t *testing.T) {
	tbl, mock := newMockTable(t, dialect.MySQL)
	cache := dbmlgen.NewMemoryCache()
	tbl.WithCache(cache, time.Minute)
	ctx := context.Background()

	mock.ExpectQuery("SELECT * FROM `products` WHERE `id` = ?").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(int64(4), "Pen", 1.5))
	rec, err := tbl.Find(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	cached, err := tbl.Find(ctx, 4)
	require.NoError(t, err, "served from the cache without a query")
	assert.Equal(t, rec, cached)
	assert.IsType(t, int64(0), cached["id"])

	mock.ExpectExec("UPDATE `products` SET `name` = ? WHERE `id` = ?").
		WithArgs("Ink", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = tbl.Update(ctx, 4, Record{"name": "Ink"})
	require.NoError(t, err)
	assert.Zero(t, cache.Len())

	mock.ExpectQuery("SELECT * FROM `products` WHERE `id` = ?").
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).AddRow(int64(4), "Ink", 1.5))
	rec, err = tbl.Find(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Ink", rec.String("name"))

	mock.ExpectExec("DELETE FROM `products` WHERE `id` = ?").
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = tbl.Delete(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, cache.Len())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTable_Fill(t *testing.T) {
	tbl := NewTable(nil, "products", "id", "name", "price")
	got := tbl.Fill(Record{"name": "Pen", "id": 4, "is_admin": true})
	assert.Equal(t, Record{"name": "Pen"}, got)
	assert.Equal(t, []string{"name", "price"}, tbl.Fillable())
	assert.Equal(t, "products", tbl.Name())
}

func TestRecord_Require(t *testing.T) {
	rec := Record{"title": "Hello", "body": "", "views": 0}
	assert.NoError(t, rec.Require("title", "views"))
	assert.NoError(t, rec.Require())

	err := rec.Require("title", "body")
	require.Error(t, err)
	assert.True(t, dbmlgen.IsValidationError(err))
	assert.ErrorIs(t, err, dbmlgen.ErrRequired)
	assert.Equal(t, `dbmlgen: validation failed for field "body": required`, err.Error())

	var verr *dbmlgen.ValidationError
	require.ErrorAs(t, rec.Require("author"), &verr)
	assert.Equal(t, "author", verr.Name)
}

func TestRecordString(t *testing.T) {
	rec := Record{"a": "x", "b": []byte("y"), "c": int64(3), "d": nil}
	assert.Equal(t, "x", rec.String("a"))
	assert.Equal(t, "y", rec.String("b"))
	assert.Equal(t, "3", rec.String("c"))
	assert.Equal(t, "", rec.String("d"))
	assert.Equal(t, "", rec.String("missing"))
	assert.True(t, rec.Has("a"))
	assert.False(t, rec.Has("d"))
}

func TestTable_SQLite(t *testing.T) {
	drv, err := Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	drv.DB().SetMaxOpenConns(1)
	ctx := context.Background()

	require.NoError(t, ExecAll(ctx, drv,
		`CREATE TABLE products (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE, price REAL)`,
	))

	tbl := NewTable(drv, "products", "id", "name", "price")
	id, err := tbl.Create(ctx, Record{"name": "Pen", "price": 2.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = tbl.Create(ctx, Record{"name": "Pen"})
	assert.True(t, dbmlgen.IsConstraintError(err), "unique violation: %v", err)

	rec, err := tbl.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pen", rec.String("name"))

	n, err := tbl.Update(ctx, id, Record{"price": 3.0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tbl.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = tbl.Find(ctx, id)
	assert.True(t, dbmlgen.IsNotFound(err))
}

func TestExecAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)

	mock.ExpectExec("CREATE TABLE a (id INT)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b (id INT)").WillReturnError(errors.New("exists"))
	err = ExecAll(context.Background(), drv, "CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)", "CREATE TABLE c (id INT)")
	assert.EqualError(t, err, "dialect/sql: statement 2: dialect/sql: exec: exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsConstraintError(t *testing.T) {
	assert.False(t, IsConstraintError(nil))
	assert.False(t, IsConstraintError(errors.New("timeout")))
	assert.True(t, IsConstraintError(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsConstraintError(errors.New("UNIQUE constraint failed: products.name")))
}
