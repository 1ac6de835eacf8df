package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pgUndefinedColumn = "42703"
	pgUniqueViolation = "23505"
)

// OpenPostgres 创建PostgreSQL数据库实例
func OpenPostgres(ctx context.Context, dsn string, debug bool, logger *log.Logger) (*SQLDatabase, error) {
	// 尝试多种连接策略来解决Vercel Lambda的IPv6问题
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn, // 最后尝试原始DSN
	}

	var err error
	for i, strategy := range strategies {
		logger.Debug("trying connection strategy", "strategy", i+1)

		var db *sqlx.DB
		db, err = sqlx.ConnectContext(ctx, "postgres", strategy)
		if err != nil {
			logger.Warn("connection strategy failed", "strategy", i+1, "err", err)
			continue
		}

		tunePoolParams(db)
		logger.Info("postgres connection established", "strategy", i+1)
		return NewSQLDatabase(db, logger).WithTrace(debug), nil
	}

	// 所有策略都失败了
	return nil, fmt.Errorf("failed to connect to postgres with all strategies: %w", err)
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}
	// key=value DSNs take space separated parameters
	if !strings.Contains(dsn, "://") {
		return dsn + " " + strings.ReplaceAll(params, "&", " ")
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

// tunePoolParams 调整应用侧连接池参数，适合无服务器环境
func tunePoolParams(db *sqlx.DB) {
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)
}

// isMissingColumn reports whether err is the driver's "unknown column" error
// for the given column.
func isMissingColumn(err error, column string) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUndefinedColumn && strings.Contains(pqErr.Message, column)
	}
	msg := err.Error()
	return (strings.Contains(msg, "no such column") || strings.Contains(msg, "has no column named")) &&
		strings.Contains(msg, column)
}

// isDuplicateColumn reports whether err is an ALTER TABLE ADD COLUMN error
// for a column that already exists.
func isDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
