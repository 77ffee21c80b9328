package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlColumnNotNull          = 1048
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsConstraintError reports whether err resulted from a unique, foreign key,
// not null or check constraint violation in any of the supported drivers.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var pe *pq.Error
	if errors.As(err, &pe) {
		switch string(pe.Code) {
		case pgUniqueViolation, pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation:
			return true
		}
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlColumnNotNull, mysqlForeignKeyParent, mysqlForeignKeyChild, mysqlCheckConstraintViolate:
			return true
		}
	}

	// SQLite reports constraint failures by message only.
	return containsAny(err.Error(),
		"UNIQUE constraint failed",
		"FOREIGN KEY constraint failed",
		"NOT NULL constraint failed",
		"CHECK constraint failed",
	)
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
