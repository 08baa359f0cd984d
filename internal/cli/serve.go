package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/koustreak/sqlgenius/internal/config"
	"github.com/koustreak/sqlgenius/internal/filestore/minio"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/server"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/koustreak/sqlgenius/internal/setup"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Address = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.address")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)
	ctx = log.WithContext(ctx)

	var library *setup.Library
	if cfg.ObjectStore.Enabled() {
		store, err := minio.New(ctx, &cfg.ObjectStore)
		if err != nil {
			return err
		}
		defer store.Close()
		library = setup.NewLibrary(store, &cfg.ObjectStore)
		log.Infof("object store %s enabled", cfg.ObjectStore.Endpoint)
	}

	sessions := session.NewManager(newDeps(cfg), cfg.Sessions.IdleTTL)
	defer sessions.Close()
	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	srv := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: server.New(server.Options{
			Sessions:       sessions,
			Library:        library,
			Logger:         log,
			MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
			MaxConns:       cfg.Database.MaxConns,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoWith("listening", map[string]any{"addr": cfg.HTTP.Address, "sqlite_path": cfg.Database.SQLitePath})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
