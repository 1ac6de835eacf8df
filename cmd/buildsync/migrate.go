package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:                "migrate",
	Short:              "Apply the schema and verify every table exists",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  chainPreRun(openDatabase),
	PersistentPostRunE: closeDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		l := loggerFromContext(ctx)
		db := databaseFromContext(ctx)

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		// 验证表是否创建成功
		missing, err := db.VerifyTables(ctx)
		if err != nil {
			return fmt.Errorf("verify tables: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("tables missing after migration: %s", strings.Join(missing, ", "))
		}
		l.Info("database setup completed")
		return nil
	},
}

// chainPreRun runs the root pre-run (config and logger) before fn; cobra only
// runs the closest persistent hook.
func chainPreRun(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

// maskPassword 隐藏连接字符串中的密码
func maskPassword(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); !ok {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "***")
	return u.String()
}
