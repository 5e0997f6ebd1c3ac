package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/api"
	"github.com/gyaneshwarpardhi/advlogic/internal/config"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only HTTP view of the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}
			return a.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides serve.addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr string) error {
	ws, err := a.openWorkspace()
	if err != nil {
		return err
	}

	// ── Hot reload ───────────────────────────────────────────────────────────
	if stop, err := a.catalog.Watch(); err != nil {
		a.logger.Warn("catalog watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stop()
	}
	a.configs.OnChange(func(cfg *config.Config) {
		if a.logLevel != "" {
			return
		}
		if lvl, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			a.level.Set(lvl)
			a.logger.Info("log level changed", "level", lvl)
		}
	})
	if stop, err := a.configs.Watch(); err != nil {
		a.logger.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stop()
	}
	if a.cfg.Serve.WatchDocuments {
		if stop, err := ws.Watch(); err != nil {
			a.logger.Warn("document watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stop()
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.New(ws, a.catalog, a.logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", addr, "project", ws.Dir())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	a.logger.Info("shutting down…")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	a.logger.Info("goodbye")
	return nil
}
