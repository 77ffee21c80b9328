package sql

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/dbmlgen/dialect"
)

// DebugDriver wraps a Driver and logs every statement with its duration.
// Statements slower than the threshold are logged at warn level.
type DebugDriver struct {
	*Driver
	logger        *slog.Logger
	slowThreshold time.Duration
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger. Default is slog.Default().
func DebugWithLogger(l *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		d.logger = l
	}
}

// WithSlowThreshold sets the threshold for slow query detection.
// Default is 100ms.
func WithSlowThreshold(threshold time.Duration) DebugOption {
	return func(d *DebugDriver) {
		d.slowThreshold = threshold
	}
}

// NewDebugDriver wraps a Driver with debug logging.
//
//	drv, _ := sql.Open(dialect.MySQL, dsn)
//	products := models.NewProduct(sql.NewDebugDriver(drv, sql.WithSlowThreshold(200*time.Millisecond)))
func NewDebugDriver(drv *Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver:        drv,
		logger:        slog.Default(),
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query executes a query and logs it.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.log(ctx, "query", query, args, start, err)
	return err
}

// Exec executes a statement and logs it.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.log(ctx, "exec", query, args, start, err)
	return err
}

// Tx starts a transaction whose statements are logged.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, driver: d}, nil
}

func (d *DebugDriver) log(ctx context.Context, op, query string, args any, start time.Time, err error) {
	duration := time.Since(start)
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("duration", duration),
	}
	switch {
	case err != nil:
		d.logger.LogAttrs(ctx, slog.LevelError, "statement failed", append(attrs, slog.Any("error", err))...)
	case duration > d.slowThreshold:
		d.logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected", attrs...)
	default:
		d.logger.LogAttrs(ctx, slog.LevelDebug, "statement", attrs...)
	}
}

// DebugTx wraps a transaction with debug logging.
type DebugTx struct {
	dialect.Tx
	driver *DebugDriver
}

// Query executes a query within the transaction and logs it.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.log(ctx, "tx query", query, args, start, err)
	return err
}

// Exec executes a statement within the transaction and logs it.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.log(ctx, "tx exec", query, args, start, err)
	return err
}

var (
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
