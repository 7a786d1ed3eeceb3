package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/obohub-backend/api/controllers"
	"github.com/angelmondragon/obohub-backend/api/routes"
	"github.com/angelmondragon/obohub-backend/internal/catalog"
	"github.com/angelmondragon/obohub-backend/internal/identity"
	"github.com/angelmondragon/obohub-backend/internal/shop"
	"github.com/angelmondragon/obohub-backend/pkg/auth/session"
	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/db"
	"github.com/angelmondragon/obohub-backend/pkg/env"
	"github.com/angelmondragon/obohub-backend/pkg/instance"
	"github.com/angelmondragon/obohub-backend/pkg/kvstore"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/metrics"
	"github.com/angelmondragon/obohub-backend/pkg/migrate"
	"github.com/angelmondragon/obohub-backend/pkg/redis"
)

const (
	shutdownTimeout    = 15 * time.Second
	sessionSweepPeriod = time.Minute
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]controllers.Pinger{}

	var dbClient *db.Client
	if cfg.Store.UsesSQL() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, dbClient.Close()) }()
		readiness["database"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		readiness["redis"] = redisClient
	}

	store, err := kvstore.Open(cfg.Store, dbClient, redisClient)
	if err != nil {
		return err
	}
	readiness["store"] = store

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	revocations := session.NewMemoryRevocations()
	if redisClient != nil {
		if revocations, err = session.NewRedisRevocations(redisClient); err != nil {
			return err
		}
	}
	verifier := identity.NewVerifier(cfg.Identity, revocations)

	registry, err := shop.NewRegistry(shop.Options{
		Store:       store,
		Logger:      logg,
		Metrics:     metrics.NewShopMetrics(promRegistry),
		SignOut:     verifier,
		IdleTimeout: cfg.Store.SessionIdle,
	}, shop.LogListener(logg.Named("shop")))
	if err != nil {
		return err
	}
	go registry.Run(ctx, sessionSweepPeriod)

	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Catalog:       cat,
		Authenticator: verifier,
		Sessions:      registry,
		HTTPMetrics:   metrics.NewHTTPMetrics(promRegistry),
		Gatherer:      promRegistry,
		Readiness:     readiness,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      instance.ID(),
		"store_backend": cfg.Store.Backend,
		"products":      len(cat.All()),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
