package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tabeth/quickq/config"
	"github.com/tabeth/quickq/logging"
	"github.com/tabeth/quickq/server"
	"github.com/tabeth/quickq/store"
)

func main() {
	cfg := config.MustParse(os.Args[1:])

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("quickq: creating logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("quickq stopped", "error", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metadata, err := openMetadataStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer metadata.Close()

	app := server.New(metadata, store.NewRegistry(), cfg.Hostname, cfg.DefaultQueue, logger)
	if err := app.Bootstrap(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.NewRouter(app, cfg.Timeout, cfg.MaxBodyBytes),

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server starting", "addr", srv.Addr, "hostname", cfg.Hostname, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func openMetadataStore(ctx context.Context, cfg *config.Config) (store.MetadataStore, error) {
	switch cfg.DBDriver {
	case "postgres":
		return store.OpenPostgres(ctx, cfg.DBDSN)
	default:
		return store.OpenSQLite(ctx, cfg.DBPath)
	}
}
