// Package dialect defines the driver interfaces used by generated models and
// migrations, along with the supported dialect names.
//
// The following dialects are supported:
//
//   - MySQL: MySQL/MariaDB, the dialect of the generated migration DDL
//   - Postgres: PostgreSQL
//   - SQLite: SQLite (pure Go driver)
//
// Opening a database connection:
//
//	import (
//	    "github.com/syssam/dbmlgen/dialect"
//	    "github.com/syssam/dbmlgen/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.MySQL, "user:pass@tcp(localhost:3306)/shop")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	products := models.NewProduct(drv)
package dialect
