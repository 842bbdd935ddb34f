package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"menuapi/internal/auth"
	"menuapi/internal/auth/introspection"
	authmetrics "menuapi/internal/auth/metrics"
	menuhandler "menuapi/internal/menu/handler"
	menumetrics "menuapi/internal/menu/metrics"
	menuservice "menuapi/internal/menu/service"
	menustore "menuapi/internal/menu/store"
	"menuapi/internal/platform/config"
	"menuapi/internal/platform/httpserver"
	"menuapi/internal/platform/logger"
	"menuapi/internal/platform/metrics"
	"menuapi/internal/platform/postgres"
	redisclient "menuapi/internal/platform/redis"
	httptransport "menuapi/internal/transport/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := authmetrics.New(reg)
	menuMetrics := menumetrics.New(reg)

	menus, health, closeStores, err := openMenuStore(ctx, cfg, log, menuMetrics)
	if err != nil {
		return err
	}
	defer closeStores()

	client := introspection.NewClient(
		cfg.Identity.IntrospectionURL(),
		introspection.NewHTTPClient(cfg.Identity.IntrospectionTimeout),
		log,
		authMetrics,
	)
	service := menuservice.New(menus,
		menuservice.WithLogger(log),
		menuservice.WithMetrics(menuMetrics),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Config:      cfg,
		Logger:      log,
		Verifier:    auth.NewVerifier(client, cfg.Identity.Issuer, cfg.Identity.Audience),
		AuthMetrics: authMetrics,
		HTTPMetrics: metrics.New(reg),
		Gatherer:    reg,
		Health:      health,
		APIs:        []httptransport.APIRoutes{menuhandler.New(service, log)},
	})

	srv := httpserver.New(cfg.Server, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting menu api",
			"addr", cfg.Server.Addr,
			"env", cfg.Server.Env,
			"auth_mode", cfg.Server.AuthMode,
			"introspection_url", cfg.Identity.IntrospectionURL(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openMenuStore picks Postgres when DATABASE_URL is set and the in-memory
// store otherwise, then layers the Redis cache on top when REDIS_URL is set.
func openMenuStore(ctx context.Context, cfg config.Config, log *slog.Logger, m *menumetrics.Metrics) (menuservice.Store, []httptransport.HealthCheck, func(), error) {
	var (
		backend menustore.Backend
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, menus are kept in memory")
		backend = menustore.NewInMemory()
	} else {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		if err := menustore.Migrate(ctx, db); err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		backend = menustore.NewPostgres(db)
	}
	health := []httptransport.HealthCheck{{Name: "store", Check: backend.Ping}}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		closeAll()
		return nil, nil, nil, err
	}
	if rc == nil {
		return backend, health, closeAll, nil
	}
	closers = append(closers, func() { _ = rc.Close() })
	health = append(health, httptransport.HealthCheck{Name: "redis", Check: rc.Health})
	log.Info("menu cache enabled", "ttl", cfg.Redis.MenuCacheTTL)
	return menustore.NewCached(backend, rc.Client, cfg.Redis.MenuCacheTTL, log, m), health, closeAll, nil
}
