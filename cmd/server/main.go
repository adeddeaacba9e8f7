package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abakirov/storefront/config"
	"github.com/abakirov/storefront/internal/email"
	"github.com/abakirov/storefront/internal/health"
	"github.com/abakirov/storefront/internal/infrastructure/postgres"
	ctxlog "github.com/abakirov/storefront/internal/log"
	"github.com/abakirov/storefront/internal/metrics"
	httptransport "github.com/abakirov/storefront/internal/transport/http"
	"github.com/abakirov/storefront/internal/transport/http/handler"
	"github.com/abakirov/storefront/internal/upload"
	"github.com/abakirov/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)

	photos, err := upload.NewProcessor(cfg.UploadDir)
	if err != nil {
		stop()
		log.Fatalf("uploads: %v", err)
	}

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	// Auth
	authUsecase := usecase.NewAuthUsecase(userRepo, sender, []byte(cfg.JWTSecret), cfg.AppBaseURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Stores
	storeUsecase := usecase.NewStoreUsecase(storeRepo, reviewRepo, userRepo)
	storeHandler := handler.NewStoreHandler(storeUsecase, photos, logger)

	// Reviews
	reviewUsecase := usecase.NewReviewUsecase(reviewRepo, storeRepo)
	reviewHandler := handler.NewReviewHandler(reviewUsecase, logger)

	// Accounts & hearts
	accountUsecase := usecase.NewAccountUsecase(userRepo, storeRepo)
	accountHandler := handler.NewAccountHandler(accountUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, cfg.UploadDir, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Logger:    logger,
			JWTKey:    []byte(cfg.JWTSecret),
			UploadDir: cfg.UploadDir,
		}, authHandler, storeHandler, reviewHandler, accountHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
