package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"feedapp/app/auth"
	"feedapp/app/config"
	"feedapp/app/logging"
	"feedapp/app/repositories"
	"feedapp/app/repositories/postgres"
	"feedapp/app/routes"
)

// RunAppServer starts the feed API and blocks until SIGINT or SIGTERM.
func RunAppServer(args []string) int {
	fs := newFlagSet("serve")
	configPath := fs.String("config", "", "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("feed service stopped")
		return 1
	}
	return 0
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests within the shutdown timeout.
func serve(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close store")
		}
	}()

	tokens, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		return err
	}

	handler := routes.SetupRoutes(routes.Deps{
		Store:    store,
		Tokens:   tokens,
		Feed:     cfg.Feed,
		Security: cfg.Security,
	})
	srv := routes.NewServer(cfg.Server, handler)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("driver", cfg.Storage.Driver).
			Msg("starting feed service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down feed service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore opens the backend named by the storage driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (repositories.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverBadger:
		store, err := repositories.NewRepository(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
