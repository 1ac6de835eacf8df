package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"buildsync-backend/pkg/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:                "serve",
	Short:              "Start the HTTP server",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  chainPreRun(openDatabase),
	PersistentPostRunE: closeDatabase,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := configFromContext(ctx)
		l := loggerFromContext(ctx)
		db := databaseFromContext(ctx)

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}

		srv := &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           server.NewRouter(cfg, db, l),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			l.Info("starting HTTP server", "addr", srv.Addr, "environment", cfg.Environment)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			l.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}
