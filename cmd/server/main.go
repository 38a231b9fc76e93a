package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/psephos-ai/psephos-go/internal/api"
	"github.com/psephos-ai/psephos-go/internal/api/handlers"
	"github.com/psephos-ai/psephos-go/internal/cache"
	"github.com/psephos-ai/psephos-go/internal/config"
	"github.com/psephos-ai/psephos-go/internal/database"
	"github.com/psephos-ai/psephos-go/internal/llm"
	"github.com/psephos-ai/psephos-go/internal/logging"
	"github.com/psephos-ai/psephos-go/internal/services"
	"github.com/psephos-ai/psephos-go/internal/telemetry"
)

// summaryCacheTTL bounds how long completed summaries are served from redis.
const summaryCacheTTL = 24 * time.Hour

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	otlpLogger, err := logging.NewOTLPLogger(logging.OTLPConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: telemetry.ServiceVersion,
		Environment:    cfg.Environment,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize OTLP logging")
	}
	otlpLogger.Logger().Info("service starting", "environment", cfg.Environment)

	shutdownTracing, err := telemetry.InitTracing(cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	// Collaborators and pipeline wiring
	historicalRepo := database.NewHistoricalRepository(db.Pool)
	forecastRepo := database.NewForecastRepository(db.Pool)
	narrativeClient := llm.NewClient(&cfg.LLM, logger)
	notifier := services.NewNotificationService(cfg.Telegram, logger)
	summaryCache := cache.NewRedisSummaryCache(redis.Client, summaryCacheTTL)
	monitor := services.NewResourceMonitor(logger)

	orchestrator := services.NewForecastOrchestrator(
		&cfg.Forecast,
		forecastRepo,
		historicalRepo,
		narrativeClient,
		notifier,
		summaryCache,
		monitor,
		logger,
	)

	forecastHandler := handlers.NewForecastHandler(orchestrator, forecastRepo, summaryCache, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, redis, forecastHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.WithError(err).Warn("Tracing shutdown failed")
	}
	if err := otlpLogger.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("OTLP logger shutdown failed")
	}
	logger.Info("Server exited")
}
