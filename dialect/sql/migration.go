package sql

import (
	"context"
	"fmt"

	"github.com/syssam/dbmlgen/dialect"
)

// Migration is implemented by the generated Create<Table>Table types.
// Versions sort in generation order.
type Migration interface {
	Version() string
	Up(ctx context.Context, ex dialect.ExecQuerier) error
	Down(ctx context.Context, ex dialect.ExecQuerier) error
}

// ExecAll executes the statements in order and stops at the first failure.
func ExecAll(ctx context.Context, ex dialect.ExecQuerier, stmts ...string) error {
	for i, stmt := range stmts {
		if err := ex.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("dialect/sql: statement %d: %w", i+1, err)
		}
	}
	return nil
}
