// @title           DevConnector API
// @version         1.0.0
// @description     Developer profiles, posts, likes and comments

// @contact.name   DevConnector Support
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/database"
	"devconnector/internal/middleware"
	"devconnector/internal/monitoring"
	"devconnector/internal/response"
	"devconnector/internal/router"
	"devconnector/internal/services"
	"devconnector/internal/utils/appinfo"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Bootstrap logger until the configuration is loaded
	logger, err := initLogger(os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"), "")
	if err != nil {
		panic(err)
	}

	version := appinfo.GetVersion()
	logger.Info("Starting DevConnector API", zap.String("version", version))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err = initLogger(cfg.Server.Environment, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database (connect, migrate, wait for health)
	initCtx, initCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	dbManager, err := database.InitDB(initCtx, cfg, logger)
	initCancel()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	logger.Info("Database initialized successfully")

	// Create cache
	cacheInstance, err := cache.NewCache(cache.ConfigFromApp(cfg.Cache), logger)
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	serviceCollection, err := services.NewServiceCollection(dbManager, cacheInstance, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Metrics go to the default registry, which already carries the Go and
	// process collectors plus the database query counters.
	httpMetrics := middleware.NewMetrics(prometheus.DefaultRegisterer)
	prometheus.MustRegister(monitoring.NewCollector(dbManager, cacheInstance, version, logger))

	responseBuilder := response.NewBuilder(&response.Config{
		PrettyJSON:         cfg.IsDevelopment(),
		IncludeRequestID:   true,
		MaskInternalErrors: cfg.IsProduction(),
	}, logger)

	handler := router.SetupRouter(router.ServicesFrom(serviceCollection), router.Options{
		Config:          cfg,
		ResponseBuilder: responseBuilder,
		Metrics:         httpMetrics,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          logger,
	})

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", server.Addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("health_check", cfg.Monitoring.HealthCheckPath),
			zap.String("metrics", cfg.Monitoring.MetricsPath),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		logger.Info("Shutting down application...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	// Log final database metrics
	finalMetrics := dbManager.Metrics()
	logger.Info("Final database metrics",
		zap.Int64("total_queries", finalMetrics.QueryCount),
		zap.Int64("errors", finalMetrics.ErrorCount),
		zap.Int64("slow_queries", finalMetrics.SlowQueryCount),
		zap.Duration("uptime", serviceCollection.Uptime()),
	)

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}

	logger.Info("✅ Application stopped")
}

// initLogger builds the structured logger for an environment. Empty level
// and format keep the environment defaults.
func initLogger(env, level, format string) (*zap.Logger, error) {
	var config zap.Config

	switch env {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	switch format {
	case "":
	case "json", "console":
		config.Encoding = format
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
