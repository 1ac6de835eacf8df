package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// OpenSQLite opens (creating if needed) an embedded database. ":memory:"
// yields a private in-memory database, which is what the tests use.
func OpenSQLite(ctx context.Context, path string, debug bool, logger *log.Logger) (*SQLDatabase, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection: sqlite serializes writers anyway and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	logger.Debug("sqlite database opened", "path", path)
	return NewSQLDatabase(db, logger).WithTrace(debug), nil
}
