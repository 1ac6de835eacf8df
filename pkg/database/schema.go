package database

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var schemaPatchCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "buildsync",
	Subsystem: "database",
	Name:      "schema_patches_total",
	Help:      "The total number of defensive schema patches applied at runtime",
}, []string{"table", "column"})

// Tables the backend expects to exist after Migrate.
var Tables = []string{
	"organizations",
	"users",
	"projects",
	"project_updates",
	"tasks",
	"task_comments",
	"meetings",
	"invoices",
	"reminders",
	"other_matters",
	"notifications",
}

// migrations are re-run on every start; each statement is idempotent or its
// "already exists" error is tolerated. The DDL sticks to types both drivers
// understand.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		subscription_status TEXT NOT NULL DEFAULT 'trial'
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'worker',
		avatar TEXT NOT NULL DEFAULT '',
		phone TEXT,
		company TEXT,
		password_hash TEXT NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_super_admin BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		client_name TEXT NOT NULL DEFAULT '',
		client_email TEXT,
		client_phone TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		progress INTEGER NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS project_updates (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		author_name TEXT NOT NULL DEFAULT '',
		user_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assigned_to TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		required_date TEXT NOT NULL DEFAULT '',
		completed_at TEXT,
		completion_note TEXT,
		completion_image TEXT,
		completion_images TEXT NOT NULL DEFAULT '[]',
		created_by TEXT,
		attachments TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS task_comments (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		images TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		time TEXT NOT NULL DEFAULT '',
		project_id TEXT,
		attendees TEXT NOT NULL DEFAULT '[]',
		address TEXT,
		description TEXT,
		assigned_to TEXT,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		client_name TEXT NOT NULL DEFAULT '',
		due_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		date TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		project_id TEXT
	)`,
	// added after the first deployments; older databases may still lack it
	`ALTER TABLE invoices ADD COLUMN attachment_url TEXT`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL DEFAULT '',
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		assigned_to TEXT,
		completed_by TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS other_matters (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		title TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		date TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT 'urgent',
		data TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_org ON users (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_org ON projects (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_project_updates_project ON project_updates (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_org ON tasks (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_task_comments_task ON task_comments (task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_org ON meetings (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_org ON invoices (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_org ON reminders (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_other_matters_org ON other_matters (organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (organization_id, user_id)`,
}

// Migrate runs all schema migrations.
func (d *SQLDatabase) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			// Tolerate "duplicate column" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	d.logger.Info("schema migrated", "driver", d.DriverName(), "statements", len(migrations))
	return nil
}

// VerifyTables 验证表是否创建成功
func (d *SQLDatabase) VerifyTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range Tables {
		var n int
		var err error
		if d.DriverName() == "postgres" {
			err = d.get(ctx, d.db, &n,
				`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`, table)
		} else {
			err = d.get(ctx, d.db, &n,
				`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to verify table %s: %w", table, err)
		}
		if n == 0 {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

// patchMissingColumn adds a column that a runtime query found missing.
func (d *SQLDatabase) patchMissingColumn(ctx context.Context, table, column, colType string) error {
	_, err := d.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, colType))
	if err != nil && !isDuplicateColumn(err) {
		return err
	}
	schemaPatchCounter.WithLabelValues(table, column).Inc()
	d.logger.Warn("applied defensive schema patch", "table", table, "column", column)
	return nil
}
