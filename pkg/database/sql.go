package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildsync-backend/pkg/apperr"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLDatabase implements DatabaseInterface on top of sqlx for both the
// postgres and the sqlite drivers. Queries are written with '?' and rebound.
type SQLDatabase struct {
	db     *sqlx.DB
	logger *log.Logger
	trace  bool
	now    func() time.Time
}

// NewSQLDatabase wraps an open connection. The driver name of db decides the
// bind style and the dialect specific error handling.
func NewSQLDatabase(db *sqlx.DB, logger *log.Logger) *SQLDatabase {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLDatabase{db: db, logger: logger, now: time.Now}
}

// WithTrace enables query tracing at debug level.
func (d *SQLDatabase) WithTrace(on bool) *SQLDatabase {
	d.trace = on
	return d
}

// DriverName returns "postgres" or "sqlite".
func (d *SQLDatabase) DriverName() string {
	return d.db.DriverName()
}

func (d *SQLDatabase) tracef(query string, args ...interface{}) {
	if !d.trace {
		return
	}
	query = strings.Join(strings.Fields(query), " ")
	d.logger.Debug("trace", "query", query, "args", args)
}

func (d *SQLDatabase) exec(ctx context.Context, e sqlx.ExtContext, query string, args ...interface{}) (sql.Result, error) {
	query = e.Rebind(query)
	d.tracef(query, args...)
	return e.ExecContext(ctx, query, args...)
}

func (d *SQLDatabase) namedExec(ctx context.Context, e sqlx.ExtContext, query string, arg interface{}) (sql.Result, error) {
	d.tracef(query, arg)
	return sqlx.NamedExecContext(ctx, e, query, arg)
}

func (d *SQLDatabase) get(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query = q.Rebind(query)
	d.tracef(query, args...)
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

func (d *SQLDatabase) selectAll(ctx context.Context, q sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	query = q.Rebind(query)
	d.tracef(query, args...)
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// transaction runs fn inside a transaction, rolling back on any error.
func (d *SQLDatabase) transaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return d.transactionWith(ctx, nil, fn)
}

// readTransaction runs fn in a transaction that sees one committed state for
// all of its reads. sqlite needs no options: the single connection keeps
// writers out until the transaction ends.
func (d *SQLDatabase) readTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var opts *sql.TxOptions
	if d.DriverName() == "postgres" {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return d.transactionWith(ctx, opts, fn)
}

func (d *SQLDatabase) transactionWith(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		// ErrTxDone here means the context rolled the transaction back.
		if errors.Is(err, sql.ErrTxDone) && ctx.Err() != nil {
			err = ctx.Err()
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		if errors.Is(rerr, sql.ErrTxDone) {
			return err
		}
		return fmt.Errorf("failed to rollback: %s: %w", err.Error(), rerr)
	}
	return err
}

// expectOne turns a zero-row write into a NotFound error.
func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(kind, id)
	}
	return nil
}

// notFound maps sql.ErrNoRows onto apperr.ErrNotFound.
func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(kind, id)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}

// HealthCheck 健康检查
func (d *SQLDatabase) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close 关闭连接
func (d *SQLDatabase) Close() error {
	return d.db.Close()
}

func (d *SQLDatabase) timestamp() string {
	return d.now().UTC().Format(time.RFC3339Nano)
}

var _ DatabaseInterface = (*SQLDatabase)(nil)
