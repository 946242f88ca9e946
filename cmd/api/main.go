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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storereview-backend/api/routes"
	"github.com/angelmondragon/storereview-backend/internal/comments"
	"github.com/angelmondragon/storereview-backend/internal/moderation"
	"github.com/angelmondragon/storereview-backend/internal/products"
	"github.com/angelmondragon/storereview-backend/internal/resubmissions"
	"github.com/angelmondragon/storereview-backend/internal/stores"
	"github.com/angelmondragon/storereview-backend/internal/submissions"
	"github.com/angelmondragon/storereview-backend/pkg/config"
	"github.com/angelmondragon/storereview-backend/pkg/db"
	"github.com/angelmondragon/storereview-backend/pkg/logger"
	"github.com/angelmondragon/storereview-backend/pkg/metrics"
	"github.com/angelmondragon/storereview-backend/pkg/migrate"
	"github.com/angelmondragon/storereview-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Console:     cfg.App.ConsoleLogs(),
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
		logg.Error(runCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(runCtx, cfg.Redis, logg)
		if err != nil {
			logg.Error(runCtx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(runCtx, "redis not configured, idempotency replay disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	moderationMetrics := metrics.NewModerationMetrics(registry)

	storeRepo := stores.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	commentRepo := comments.NewRepository(dbClient.DB())

	submissionService, err := submissions.NewService(submissions.ServiceParams{
		Logger:      logg,
		DB:          dbClient,
		Stores:      storeRepo,
		Products:    productRepo,
		Metrics:     moderationMetrics,
		MaxProducts: cfg.Moderation.MaxProductsPerSubmission,
	})
	requireService(runCtx, logg, "submission", err)

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		Logger:           logg,
		DB:               dbClient,
		Stores:           storeRepo,
		Products:         productRepo,
		Comments:         commentRepo,
		Metrics:          moderationMetrics,
		MinCommentLength: cfg.Moderation.MinCommentLength,
	})
	requireService(runCtx, logg, "moderation", err)

	resubmissionService, err := resubmissions.NewService(resubmissions.ServiceParams{
		Logger:   logg,
		DB:       dbClient,
		Stores:   storeRepo,
		Products: productRepo,
		Comments: commentRepo,
		Metrics:  moderationMetrics,
	})
	requireService(runCtx, logg, "resubmission", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			submissionService,
			moderationService,
			resubmissionService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
