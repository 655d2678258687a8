package database

import (
	"context"
	"database/sql"
	"devconnector/internal/config"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// 🚀 DATABASE INITIALIZATION
// InitDB connects with exponential backoff, runs migrations and waits for a healthy pool
func InitDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	connect := func() error {
		m, err := NewManager(ctx, &cfg.Database, logger)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}

	if err := backoff.RetryNotify(connect, newRetryPolicy(ctx, &cfg.Database), retryNotifier(logger, "connect")); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if cfg.Database.AutoMigrate {
		migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
		logger.Info("Using migrations path", zap.String("path", migrationsPath))

		migrateOnce := func() error {
			return manager.Migrate(migrationsPath)
		}
		if err := backoff.RetryNotify(migrateOnce, newRetryPolicy(ctx, &cfg.Database), retryNotifier(logger, "migrate")); err != nil {
			manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	healthCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	if err := waitForHealth(healthCtx, manager, logger); err != nil {
		manager.Close()
		return nil, fmt.Errorf("database failed to become healthy: %w", err)
	}

	snapshot := manager.Metrics()
	logger.Info("✅ Database initialization completed",
		zap.Int("open_connections", snapshot.OpenConnections),
		zap.Int64("queries", snapshot.QueryCount),
	)

	return manager, nil
}

// 🔄 RETRY POLICY
func newRetryPolicy(ctx context.Context, cfg *config.DatabaseConfig) backoff.BackOffContext {
	policy := backoff.NewExponentialBackOff()
	if cfg.RetryBackoff > 0 {
		policy.InitialInterval = cfg.RetryBackoff
	}
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = cfg.ConnectTimeout

	var b backoff.BackOff = policy
	if cfg.MaxRetryAttempts > 0 {
		b = backoff.WithMaxRetries(policy, uint64(cfg.MaxRetryAttempts))
	}
	return backoff.WithContext(b, ctx)
}

func retryNotifier(logger *zap.Logger, step string) backoff.Notify {
	return func(err error, next time.Duration) {
		logger.Warn("Database step failed, retrying",
			zap.String("step", step),
			zap.Error(err),
			zap.Duration("retry_in", next),
		)
	}
}

// 🏥 HEALTH WAIT
func waitForHealth(ctx context.Context, manager *Manager, logger *zap.Logger) error {
	check := func() error {
		status := manager.Health(ctx)
		if status.Status == StatusUnhealthy {
			return fmt.Errorf("database unhealthy: %v", status.Errors)
		}
		logger.Info("Database is healthy",
			zap.String("status", status.Status),
			zap.Duration("response_time", status.ResponseTime))
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 5 * time.Second
	return backoff.Retry(check, backoff.WithContext(policy, ctx))
}

// 📁 MIGRATIONS PATH DETECTION
func determineMigrationsPath(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	paths := []string{
		"./migrations",
		"../migrations",
		"../../migrations",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./migrations"
}

// WithTransaction runs fn inside a transaction, rolling back on error or panic
func (m *Manager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := m.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
