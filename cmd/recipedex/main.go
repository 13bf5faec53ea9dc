package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kitchenops/recipedex/internal/config"
	dbRedis "github.com/kitchenops/recipedex/internal/db/redis"
	logpkg "github.com/kitchenops/recipedex/internal/logger"
	"github.com/kitchenops/recipedex/internal/metrics"
	indexrepo "github.com/kitchenops/recipedex/internal/repository/index"
	reciperepo "github.com/kitchenops/recipedex/internal/repository/recipe"
	searchrepo "github.com/kitchenops/recipedex/internal/repository/search"
	chiTransport "github.com/kitchenops/recipedex/internal/transport/chi"
	healthuc "github.com/kitchenops/recipedex/internal/usecase/health"
	recipeuc "github.com/kitchenops/recipedex/internal/usecase/recipe"
	reindexuc "github.com/kitchenops/recipedex/internal/usecase/reindex"
	searchuc "github.com/kitchenops/recipedex/internal/usecase/search"
	"github.com/kitchenops/recipedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recipedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register catalog metrics explicitly (no init())
	metrics.RegisterCatalogMetrics()

	// Create repositories
	prefix := cfg.Storage.KeyPrefix
	recipeRepo := reciperepo.New(store, prefix)
	indexRepo := indexrepo.New(store, prefix)
	searchRepo := searchrepo.New(store, prefix)

	// The FT index is created eagerly; a failure here is not fatal since a
	// reindex recreates it once the search module is reachable.
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Warn("Search index not ready, reindex will create it", zap.Error(err))
	}

	// Create use case services
	searchTimeout := time.Duration(cfg.Search.TimeoutSec) * time.Second

	recipeSvc := recipeuc.New(recipeRepo, indexRepo).
		WithLimits(cfg.Catalog.DefaultLimit, cfg.Catalog.MaxLimit).
		WithIndexTimeout(searchTimeout)
	searchSvc := searchuc.New(searchRepo).
		WithLimits(cfg.Catalog.DefaultLimit, cfg.Catalog.MaxLimit).
		WithTimeout(searchTimeout)
	reindexSvc := reindexuc.New(recipeRepo, indexRepo).
		WithTimeout(time.Duration(cfg.Search.ReindexTimeoutSec) * time.Second)
	healthSvc := healthuc.New(store)

	// Create chi server
	server := chiTransport.NewServer(recipeSvc, searchSvc, reindexSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Mount(r, chiTransport.BasicAuthMiddleware(cfg.Auth.Users))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			ctx := logpkg.ContextWithLogger(r.Context(), logger)
			ctx = logpkg.With(ctx, zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line -- one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
