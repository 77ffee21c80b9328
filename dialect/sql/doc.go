// Package sql is the runtime imported by generated models and migrations.
//
// Driver wraps database/sql for the MySQL, PostgreSQL and SQLite dialects.
// Table runs the record operations of a generated model:
//
//	drv, err := sql.Open(dialect.MySQL, "user:pass@tcp(localhost:3306)/shop")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	products := sql.NewTable(drv, "products", "id", "name", "price")
//	id, err := products.Create(ctx, sql.Record{"name": "Pen", "price": 2.5})
//	rec, err := products.Find(ctx, id)
//
// Identifiers are quoted for the driver dialect and values are always passed
// as placeholders. Find returns a *dbmlgen.NotFoundError for missing rows and
// constraint violations are reported as dbmlgen.ConstraintError.
//
// WithCache puts a dbmlgen.Cache in front of Find.
//
// Generated migrations implement Migration and run their statements through
// ExecAll.
package sql
